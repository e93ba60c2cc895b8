package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/maruel/natural"
	"github.com/pterm/pterm"

	"github.com/ayooluwa/lapse/config"
	"github.com/ayooluwa/lapse/engine"
	"github.com/ayooluwa/lapse/internal/models"
	"github.com/ayooluwa/lapse/internal/timeutil"
	"github.com/ayooluwa/lapse/internal/ui"
)

const noSessionsMsg = "No saved sessions"

// sessionRow is one session flattened for display.
type sessionRow struct {
	Title     string           `json:"title"`
	StartedAt time.Time        `json:"started_at"`
	State     string           `json:"state"`
	Laps      int              `json:"laps"`
	Seconds   int64            `json:"seconds"`
	Selected  bool             `json:"selected"`
	Mode      models.SplitMode `json:"split_mode"`
	LapTimes  map[string]int64 `json:"lap_seconds,omitempty"`
}

// sessionRows flattens every session into display rows, most recent first.
func sessionRows(eng *engine.Engine) []sessionRow {
	now := eng.Now()
	selected := eng.SelectedSessionID()

	sessions := eng.Sessions()
	rows := make([]sessionRow, 0, len(sessions))

	for _, sess := range sessions {
		laps := eng.Laps(sess.ID)

		lapTimes := make(map[string]int64, len(laps))
		for id, secs := range eng.LapSeconds(sess.ID, now) {
			for _, lap := range laps {
				if lap.ID == id {
					lapTimes[lap.Label] = secs
				}
			}
		}

		rows = append(rows, sessionRow{
			Title:     sess.Title,
			StartedAt: sess.StartedAt,
			State:     string(eng.SessionState(sess.ID)),
			Laps:      len(laps),
			Seconds:   int64(eng.ElapsedSession(sess.ID, now) / time.Second),
			Selected:  sess.ID == selected,
			Mode:      eng.Mode(),
			LapTimes:  lapTimes,
		})
	}

	return rows
}

func sortRowsByTitle(rows []sessionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return natural.Less(rows[i].Title, rows[j].Title)
	})
}

func printSessionsJSON(w io.Writer, rows []sessionRow) error {
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, string(b))

	return nil
}

func startedLayout() string {
	if config.Get().Display.TwentyFourHour {
		return "Jan 02, 2006 15:04"
	}

	return "Jan 02, 2006 03:04 PM"
}

// printSessionsTable prints a session table to the command-line.
func printSessionsTable(w io.Writer, rows []sessionRow) {
	layout := startedLayout()

	tableBody := make([][]string, len(rows))

	for i, row := range rows {
		stateText := ui.Yellow(row.State)

		switch models.SessionState(row.State) {
		case models.StateRunning:
			stateText = ui.Green(row.State)
		case models.StateStopped, models.StateFinished:
			stateText = ui.Red(row.State)
		}

		title := row.Title
		if row.Selected {
			title = ui.Highlight(title + " *")
		}

		tableBody[i] = []string{
			fmt.Sprintf("%d", i+1),
			title,
			row.StartedAt.Format(layout),
			fmt.Sprintf("%d", row.Laps),
			timeutil.FormatSeconds(row.Seconds),
			stateText,
		}
	}

	tableBody = append([][]string{
		{"#", "TITLE", "STARTED", "LAPS", "TOTAL", "STATE"},
	}, tableBody...)

	ui.PrintTable(tableBody, w)
}

// listSessions prints out a table of sessions.
func listSessions(rows []sessionRow) error {
	if len(rows) == 0 {
		pterm.Info.Println(noSessionsMsg)
		return nil
	}

	printSessionsTable(os.Stdout, rows)

	return nil
}
