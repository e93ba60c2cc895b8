// Package tracker renders the live session tracker and forwards every user
// intent to the accounting engine. It owns no accounting state: each tick
// only refreshes the read-side "now" used to derive displayed values.
package tracker

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayooluwa/lapse/config"
	"github.com/ayooluwa/lapse/engine"
	"github.com/ayooluwa/lapse/internal/models"
)

const (
	padding  = 2
	maxWidth = 60
)

// tickMsg carries the instant the tracker clock fired at.
type tickMsg time.Time

// Tracker is the bubbletea model for the live tracker.
type Tracker struct {
	eng      *engine.Engine
	settings *config.Settings

	now      time.Time
	help     help.Model
	progress progress.Model
	width    int

	// notifiedNotice is the last persistence failure already surfaced via a
	// desktop notification.
	notifiedNotice uint64
}

// New returns a tracker bound to the given engine.
func New(eng *engine.Engine, settings *config.Settings) *Tracker {
	return &Tracker{
		eng:      eng,
		settings: settings,
		now:      eng.Now(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// tickInterval picks the cadence for the next tick: a short interval while a
// session is running and the display is animating, a coarse one otherwise.
func (t *Tracker) tickInterval() time.Duration {
	interval := t.settings.Intervals.Idle

	if id := t.eng.SelectedSessionID(); id != "" &&
		t.eng.SessionState(id) == models.StateRunning {
		interval = t.settings.Intervals.Animating
	}

	if interval <= 0 {
		interval = time.Second
	}

	return interval
}

func (t *Tracker) tick() tea.Cmd {
	return tea.Tick(t.tickInterval(), func(at time.Time) tea.Msg {
		return tickMsg(at)
	})
}

func (t *Tracker) Init() tea.Cmd {
	return t.tick()
}
