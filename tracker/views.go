package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayooluwa/lapse/internal/models"
	"github.com/ayooluwa/lapse/internal/timeutil"
)

var (
	baseStyle = lipgloss.NewStyle().Padding(1, padding)

	titleStyle = lipgloss.NewStyle().Bold(true)

	elapsedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1a731a", Dark: "#B0DB43"})

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"})

	selectedLapStyle = lipgloss.NewStyle().Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#8a1f1f", Dark: "#ff5f5f"})
)

func stateLabel(state models.SessionState) string {
	switch state {
	case models.StateRunning:
		return "recording"
	case models.StatePaused:
		return "paused"
	case models.StateStopped:
		return "stopped"
	case models.StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// lapRows renders one line per lap with its reconciled integer seconds, so
// the column always sums to the displayed session total.
func (t *Tracker) lapRows(sessionID string) string {
	laps := t.eng.Laps(sessionID)
	if len(laps) == 0 {
		return ""
	}

	seconds := t.eng.LapSeconds(sessionID, t.now)
	selected := t.eng.SelectedLapID(sessionID)

	active := make(map[string]struct{})
	for _, id := range t.eng.ActiveLapIDs(sessionID) {
		active[id] = struct{}{}
	}

	checkbox := t.eng.Mode() == models.ModeCheckbox

	var s strings.Builder

	for _, lap := range laps {
		marker := "  "
		if lap.ID == selected {
			marker = "▸ "
		}

		var share string

		if checkbox {
			share = "[ ] "
			if _, ok := active[lap.ID]; ok {
				share = "[x] "
			}
		}

		line := fmt.Sprintf(
			"%s%s%-12s %s",
			marker,
			share,
			lap.Label,
			timeutil.FormatSeconds(seconds[lap.ID]),
		)

		if lap.ID == selected {
			line = selectedLapStyle.Render(line)
		}

		s.WriteString(line + "\n")
	}

	return s.String()
}

func (t *Tracker) sessionView(sessionID string) string {
	var s strings.Builder

	sessions := t.eng.Sessions()

	var title string

	for _, sess := range sessions {
		if sess.ID == sessionID {
			title = sess.Title
			break
		}
	}

	state := t.eng.SessionState(sessionID)

	s.WriteString(titleStyle.Render(title))
	s.WriteString(stateStyle.Render(fmt.Sprintf("  [%s]", stateLabel(state))))

	if len(sessions) > 1 {
		s.WriteString(stateStyle.Render(
			fmt.Sprintf("  (%d sessions)", len(sessions)),
		))
	}

	total := int64(t.eng.ElapsedSession(sessionID, t.now) / time.Second)

	s.WriteString("\n\n")
	s.WriteString(elapsedStyle.Render(timeutil.FormatSeconds(total)))
	s.WriteString("\n\n")
	s.WriteString(t.lapRows(sessionID))

	if selected := t.eng.SelectedLapID(sessionID); selected != "" && total > 0 {
		seconds := t.eng.LapSeconds(sessionID, t.now)
		ratio := float64(seconds[selected]) / float64(total)

		s.WriteString("\n")
		s.WriteString(t.progress.ViewAs(ratio))
		s.WriteString("\n")
	}

	s.WriteString(stateStyle.Render(
		fmt.Sprintf("\nsplit mode: %s", t.eng.Mode()),
	))

	return s.String()
}

func (t *Tracker) helpView() string {
	return "\n\n" + t.help.ShortHelpView([]key.Binding{
		defaultKeymap.togglePlay,
		defaultKeymap.finishLap,
		defaultKeymap.newSession,
		defaultKeymap.toggleMode,
		defaultKeymap.quit,
	})
}

func (t *Tracker) View() string {
	var s strings.Builder

	sessionID := t.eng.SelectedSessionID()
	if sessionID == "" {
		s.WriteString("No session yet. Press space to start one.")
	} else {
		s.WriteString(t.sessionView(sessionID))
	}

	if n := t.eng.Notice(); n != nil {
		s.WriteString("\n\n")
		s.WriteString(warnStyle.Render("⚠ " + n.Message + " (d to dismiss)"))
	}

	s.WriteString(t.helpView())

	return baseStyle.Render(s.String())
}
