package engine

import (
	"time"

	"github.com/ayooluwa/lapse/internal/models"
)

// FinishLap closes the current lap and opens the next one. Under radio mode
// the new lap becomes the sole active lap; under checkbox mode it joins the
// existing active set.
func (e *Engine) FinishLap(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil || c.state != models.StateRunning || c.selectedLapID == "" {
		return
	}

	oldOrder := c.activeIDs()

	c.distribute(at)

	if cur := c.lap(c.selectedLapID); cur != nil && cur.EndedAt == nil {
		endedAt := at
		cur.EndedAt = &endedAt
	}

	lap := e.newLap(c, at)
	c.selectedLapID = lap.ID

	if e.mode == models.ModeRadio {
		c.active = map[string]struct{}{lap.ID: {}}
	} else {
		c.active[lap.ID] = struct{}{}
	}

	c.rebaseCursor(oldOrder)
	e.persist()
}

// SelectLap switches the selected lap. While running this flushes the
// pending distribution for the old active set first; while paused or stopped
// it only changes which lap would accrue time on resume.
func (e *Engine) SelectLap(id string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil || c.lap(id) == nil || c.selectedLapID == id {
		return
	}

	oldOrder := c.activeIDs()

	if c.state == models.StateRunning {
		c.distribute(at)
	}

	c.selectedLapID = id

	if e.mode == models.ModeRadio {
		c.active = map[string]struct{}{id: {}}
	} else {
		// checkbox selection never deactivates others, but the selected lap
		// must be part of the sharing set
		c.active[id] = struct{}{}
	}

	c.rebaseCursor(oldOrder)
	e.persist()
}

// ToggleLapActive adds or removes a lap from the sharing set under checkbox
// mode. The last remaining active lap cannot be deactivated.
func (e *Engine) ToggleLapActive(id string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != models.ModeCheckbox {
		return
	}

	c := e.sessions[e.selectedID]
	if c == nil || c.lap(id) == nil {
		return
	}

	if _, active := c.active[id]; active && len(c.active) == 1 {
		return
	}

	oldOrder := c.activeIDs()

	if c.state == models.StateRunning {
		c.distribute(at)
	}

	if _, active := c.active[id]; active {
		delete(c.active, id)
	} else {
		c.active[id] = struct{}{}
	}

	c.rebaseCursor(oldOrder)
	e.persist()
}

// SetSplitMode switches the process-wide split accumulation mode. Pending
// whole seconds are flushed under the old mode before the active sets and
// cursors are rebuilt under the new one, so no elapsed second is dropped or
// double counted.
func (e *Engine) SetSplitMode(mode models.SplitMode, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !mode.Valid() || mode == e.mode {
		return
	}

	for _, c := range e.sessions {
		if len(c.laps) == 0 {
			continue
		}

		oldOrder := c.activeIDs()

		if c.state == models.StateRunning {
			c.distribute(at)
		}

		if mode == models.ModeRadio {
			if c.selectedLapID != "" {
				c.active = map[string]struct{}{c.selectedLapID: {}}
			}
		} else if len(c.active) == 0 && c.selectedLapID != "" {
			c.active[c.selectedLapID] = struct{}{}
		}

		c.rebaseCursor(oldOrder)
	}

	e.mode = mode
	e.persist()
}

// SetLapLabel renames a lap in the selected session.
func (e *Engine) SetLapLabel(id, label string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil || label == "" {
		return
	}

	lap := c.lap(id)
	if lap == nil {
		return
	}

	lap.Label = label
	e.persist()
}

// SetLapMemo updates a lap's memo in the selected session.
func (e *Engine) SetLapMemo(id, memo string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil {
		return
	}

	lap := c.lap(id)
	if lap == nil {
		return
	}

	lap.Memo = memo
	e.persist()
}

func (c *sessionContext) lap(id string) *models.Lap {
	for _, lap := range c.laps {
		if lap.ID == id {
			return lap
		}
	}

	return nil
}
