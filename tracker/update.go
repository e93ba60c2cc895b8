package tracker

import (
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"
	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"

	"github.com/ayooluwa/lapse/internal/models"
)

// handleTick refreshes the read-side clock and surfaces any new persistence
// failure, then schedules the next tick at the current cadence.
func (t *Tracker) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	t.now = time.Time(msg)

	if n := t.eng.Notice(); n != nil && n.ID > t.notifiedNotice {
		t.notifiedNotice = n.ID

		if t.settings.Tracking.Notify {
			go func(message string) {
				_ = beeep.Notify("lapse", message, "")
			}(n.Message)
		}
	}

	return t, t.tick()
}

func (t *Tracker) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := t.eng.Now()
	t.now = now

	sessionID := t.eng.SelectedSessionID()

	switch {
	case key.Matches(msg, defaultKeymap.togglePlay):
		if sessionID != "" && t.eng.SessionState(sessionID) == models.StateRunning {
			t.eng.PauseSession(now)
		} else {
			t.eng.StartSession(now)
		}

	case key.Matches(msg, defaultKeymap.newSession):
		t.eng.AddSession(now)

	case key.Matches(msg, defaultKeymap.nextSession):
		t.selectNextSession(now)

	case key.Matches(msg, defaultKeymap.finishLap):
		t.eng.FinishLap(now)

	case key.Matches(msg, defaultKeymap.prevLap):
		t.moveLapSelection(-1, now)

	case key.Matches(msg, defaultKeymap.nextLap):
		t.moveLapSelection(1, now)

	case key.Matches(msg, defaultKeymap.toggleActive):
		if sessionID != "" {
			t.eng.ToggleLapActive(t.eng.SelectedLapID(sessionID), now)
		}

	case key.Matches(msg, defaultKeymap.toggleMode):
		next := models.ModeCheckbox
		if t.eng.Mode() == models.ModeCheckbox {
			next = models.ModeRadio
		}

		t.eng.SetSplitMode(next, now)

	case key.Matches(msg, defaultKeymap.finishSession):
		t.eng.FinishSession(now)
		t.runSessionCmd()

	case key.Matches(msg, defaultKeymap.dismiss):
		if n := t.eng.Notice(); n != nil {
			t.eng.DismissNotice(n.ID)
		}

	case key.Matches(msg, defaultKeymap.quit):
		return t, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	return t, nil
}

// selectNextSession cycles through sessions in order.
func (t *Tracker) selectNextSession(now time.Time) {
	sessions := t.eng.Sessions()
	if len(sessions) < 2 {
		return
	}

	selected := t.eng.SelectedSessionID()

	for i, s := range sessions {
		if s.ID == selected {
			t.eng.SelectSession(sessions[(i+1)%len(sessions)].ID, now)
			return
		}
	}
}

// moveLapSelection selects the lap above or below the current one.
func (t *Tracker) moveLapSelection(dir int, now time.Time) {
	sessionID := t.eng.SelectedSessionID()
	if sessionID == "" {
		return
	}

	laps := t.eng.Laps(sessionID)
	if len(laps) == 0 {
		return
	}

	selected := t.eng.SelectedLapID(sessionID)

	for i, lap := range laps {
		if lap.ID == selected {
			next := i + dir
			if next >= 0 && next < len(laps) {
				t.eng.SelectLap(laps[next].ID, now)
			}

			return
		}
	}
}

// runSessionCmd executes the configured hook command, if any.
func (t *Tracker) runSessionCmd() {
	sessionCmd := t.settings.Tracking.SessionCmd
	if sessionCmd == "" {
		return
	}

	cmdSlice, err := shellquote.Split(sessionCmd)
	if err != nil {
		slog.Error("unable to parse session_cmd option", slog.Any("error", err))
		return
	}

	if len(cmdSlice) == 0 {
		return
	}

	go func() {
		cmd := exec.Command(cmdSlice[0], cmdSlice[1:]...)

		if err := cmd.Run(); err != nil {
			slog.Error("session_cmd failed", slog.Any("error", err))
		}
	}()
}

func (t *Tracker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return t.handleTick(msg)

	case tea.KeyMsg:
		return t.handleKey(msg)

	case tea.WindowSizeMsg:
		t.width = msg.Width

		t.progress.Width = msg.Width - padding*2 - 4
		if t.progress.Width > maxWidth {
			t.progress.Width = maxWidth
		}

		return t, nil

	case progress.FrameMsg:
		progressModel, cmd := t.progress.Update(msg)
		t.progress, _ = progressModel.(progress.Model)

		return t, cmd
	}

	if os.Getenv("LAPSE_DEBUG") != "" {
		slog.Debug(spew.Sdump(msg))
	}

	return t, nil
}
