package engine

import (
	"time"

	"github.com/ayooluwa/lapse/internal/models"
)

// distributeWhole credits delta whole seconds to the given laps round-robin
// starting at cursor: every lap receives floor(delta/n), and the delta%n laps
// immediately following the cursor receive one extra second. The sum of
// increments equals delta exactly. It returns the advanced cursor.
func distributeWhole(laps []*models.Lap, cursor int, delta int64) int {
	n := len(laps)
	if n == 0 {
		return 0
	}

	cursor = ((cursor % n) + n) % n

	if delta <= 0 {
		return cursor
	}

	base := delta / int64(n)
	extra := int(delta % int64(n))

	for i, lap := range laps {
		inc := base
		if (i-cursor+n)%n < extra {
			inc++
		}

		lap.AccumulatedSeconds += inc
	}

	return (cursor + extra) % n
}

// pendingShares computes, without mutating anything, the share each lap would
// receive if delta whole seconds were distributed now.
func pendingShares(laps []*models.Lap, cursor int, delta int64) map[string]int64 {
	n := len(laps)
	shares := make(map[string]int64, n)

	if n == 0 || delta <= 0 {
		return shares
	}

	cursor = ((cursor % n) + n) % n
	base := delta / int64(n)
	extra := int(delta % int64(n))

	for i, lap := range laps {
		inc := base
		if (i-cursor+n)%n < extra {
			inc++
		}

		shares[lap.ID] = inc
	}

	return shares
}

// distribute converts elapsed time past the checkpoint into permanent
// per-lap increments. With no active laps the checkpoint still advances so
// that time is not credited retroactively once laps reappear.
func (c *sessionContext) distribute(at time.Time) {
	current := c.wholeElapsed(at)
	if current < c.lastDistributed {
		return
	}

	order := c.activeOrder()
	if len(order) == 0 {
		c.lastDistributed = current
		return
	}

	c.cursor = distributeWhole(order, c.cursor, current-c.lastDistributed)
	c.lastDistributed = current
}

// activeOrder returns the active laps in session order, so the round-robin
// order is stable under selection and mode changes.
func (c *sessionContext) activeOrder() []*models.Lap {
	var order []*models.Lap

	for _, lap := range c.laps {
		if _, ok := c.active[lap.ID]; ok {
			order = append(order, lap)
		}
	}

	return order
}

func (c *sessionContext) activeIDs() []string {
	var ids []string

	for _, lap := range c.activeOrder() {
		ids = append(ids, lap.ID)
	}

	return ids
}

// rebaseCursor preserves fairness continuity across a change to the active
// set: the lap that was next in line under the old order stays next in line
// under the new one. If that lap is gone, the old cursor is normalised to
// the new length.
func (c *sessionContext) rebaseCursor(oldOrder []string) {
	newOrder := c.activeIDs()
	if len(newOrder) == 0 {
		c.cursor = 0
		return
	}

	if len(oldOrder) > 0 {
		next := oldOrder[((c.cursor%len(oldOrder))+len(oldOrder))%len(oldOrder)]

		for i, id := range newOrder {
			if id == next {
				c.cursor = i
				return
			}
		}
	}

	c.cursor = ((c.cursor % len(newOrder)) + len(newOrder)) % len(newOrder)
}
