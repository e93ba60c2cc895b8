package engine

import (
	"time"

	"github.com/ayooluwa/lapse/internal/models"
)

// elapsed returns the wall-clock time consumed by the session at the given
// instant, excluding paused intervals. While paused or stopped the clock is
// clamped to the pause instant.
func (c *sessionContext) elapsed(at time.Time) time.Duration {
	var end time.Time

	switch c.state {
	case models.StateRunning:
		end = at
	case models.StatePaused, models.StateStopped:
		if c.pauseStartedAt != nil {
			end = *c.pauseStartedAt
		} else {
			end = at
		}
	case models.StateFinished:
		if c.session.EndedAt != nil {
			end = *c.session.EndedAt
		} else {
			end = at
		}
	default:
		return 0
	}

	d := end.Sub(c.session.StartedAt) - c.totalPaused
	if d < 0 {
		d = 0
	}

	return d
}

func (c *sessionContext) wholeElapsed(at time.Time) int64 {
	return int64(c.elapsed(at) / time.Second)
}

// Sessions returns every session in order, most recently added first.
func (e *Engine) Sessions() []models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Session, 0, len(e.order))

	for _, id := range e.order {
		if c := e.sessions[id]; c != nil {
			out = append(out, c.session)
		}
	}

	return out
}

// SelectedSessionID returns the id of the selected session, or "".
func (e *Engine) SelectedSessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.selectedID
}

// SessionState returns the state of the given session.
func (e *Engine) SessionState(id string) models.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[id]
	if c == nil {
		return models.StateIdle
	}

	return c.state
}

// Laps returns copies of the session's laps in index order.
func (e *Engine) Laps(sessionID string) []models.Lap {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[sessionID]
	if c == nil {
		return nil
	}

	out := make([]models.Lap, 0, len(c.laps))
	for _, lap := range c.laps {
		out = append(out, *lap)
	}

	return out
}

// SelectedLapID returns the selected lap of the given session, or "".
func (e *Engine) SelectedLapID(sessionID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[sessionID]
	if c == nil {
		return ""
	}

	return c.selectedLapID
}

// ActiveLapIDs returns the sharing set of the given session in lap order.
func (e *Engine) ActiveLapIDs(sessionID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[sessionID]
	if c == nil {
		return nil
	}

	return c.activeIDs()
}

// Mode returns the current split accumulation mode.
func (e *Engine) Mode() models.SplitMode {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.mode
}

// ElapsedSession returns the session's elapsed time at the given instant.
// It is idempotent and performs no distribution.
func (e *Engine) ElapsedSession(sessionID string, at time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[sessionID]
	if c == nil {
		return 0
	}

	return c.elapsed(at)
}

// ElapsedLap returns a lap's whole-second elapsed value at the given
// instant: its distributed total plus, while the session runs, its share of
// the not-yet-flushed delta. The checkpoint and cursor are not mutated.
func (e *Engine) ElapsedLap(sessionID, lapID string, at time.Time) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[sessionID]
	if c == nil {
		return 0
	}

	lap := c.lap(lapID)
	if lap == nil {
		return 0
	}

	secs := lap.AccumulatedSeconds

	if c.state == models.StateRunning {
		delta := c.wholeElapsed(at) - c.lastDistributed
		shares := pendingShares(c.activeOrder(), c.cursor, delta)
		secs += shares[lapID]
	}

	return secs
}

// LapSeconds derives integer per-lap seconds for presentation such that the
// values sum exactly to the session's integer elapsed total. Whole pending
// seconds follow the round-robin shares; any rounding carry left over goes
// to the selected lap first, then to the active lap with the highest index.
func (e *Engine) LapSeconds(sessionID string, at time.Time) map[string]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[sessionID]
	if c == nil {
		return nil
	}

	out := make(map[string]int64, len(c.laps))

	for _, lap := range c.laps {
		out[lap.ID] = lap.AccumulatedSeconds
	}

	total := c.wholeElapsed(at)

	if c.state == models.StateRunning {
		delta := total - c.lastDistributed
		for id, share := range pendingShares(c.activeOrder(), c.cursor, delta) {
			out[id] += share
		}
	}

	var sum int64
	for _, v := range out {
		sum += v
	}

	if leftover := total - sum; leftover > 0 {
		if id := c.carryLap(); id != "" {
			out[id] += leftover
		}
	}

	return out
}

// carryLap picks the lap that receives any presentation-time rounding carry.
func (c *sessionContext) carryLap() string {
	if c.selectedLapID != "" {
		if _, ok := c.active[c.selectedLapID]; ok || len(c.active) == 0 {
			return c.selectedLapID
		}
	}

	order := c.activeOrder()
	if len(order) > 0 {
		return order[len(order)-1].ID
	}

	return c.selectedLapID
}
