package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ayooluwa/lapse/internal/models"
)

func makeLaps(n int) []*models.Lap {
	laps := make([]*models.Lap, n)
	for i := range laps {
		laps[i] = &models.Lap{
			ID:    fmt.Sprintf("lap-%d", i+1),
			Index: i + 1,
		}
	}

	return laps
}

func TestDistributeWholeExactSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 1000; trial++ {
		n := 1 + rng.Intn(8)
		delta := int64(rng.Intn(2000))
		cursor := rng.Intn(n)

		laps := makeLaps(n)

		newCursor := distributeWhole(laps, cursor, delta)

		var sum int64

		base := delta / int64(n)
		extra := int(delta % int64(n))

		for i, lap := range laps {
			sum += lap.AccumulatedSeconds

			if lap.AccumulatedSeconds < base {
				t.Fatalf(
					"n=%d delta=%d cursor=%d: lap %d got %d, below base %d",
					n, delta, cursor, i, lap.AccumulatedSeconds, base,
				)
			}

			wantExtra := (i-cursor+n)%n < extra
			gotExtra := lap.AccumulatedSeconds == base+1

			if delta > 0 && wantExtra != gotExtra {
				t.Fatalf(
					"n=%d delta=%d cursor=%d: lap %d extra=%v, want %v",
					n, delta, cursor, i, gotExtra, wantExtra,
				)
			}
		}

		if sum != delta {
			t.Fatalf("n=%d delta=%d cursor=%d: sum %d != delta", n, delta, cursor, sum)
		}

		if want := (cursor + extra) % n; newCursor != want {
			t.Fatalf("n=%d delta=%d cursor=%d: new cursor %d, want %d", n, delta, cursor, newCursor, want)
		}
	}
}

func TestDistributeWholeSharesDifferByAtMostOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(6)
		laps := makeLaps(n)
		cursor := 0

		// repeated distributions across a window must stay fair
		for round := 0; round < 20; round++ {
			cursor = distributeWhole(laps, cursor, int64(rng.Intn(50)))
		}

		min, max := laps[0].AccumulatedSeconds, laps[0].AccumulatedSeconds
		for _, lap := range laps[1:] {
			if lap.AccumulatedSeconds < min {
				min = lap.AccumulatedSeconds
			}

			if lap.AccumulatedSeconds > max {
				max = lap.AccumulatedSeconds
			}
		}

		if max-min > 1 {
			t.Fatalf("n=%d: lap shares diverged by %d", n, max-min)
		}
	}
}

func TestPendingSharesMatchesDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(6)
		delta := int64(rng.Intn(500))
		cursor := rng.Intn(n)

		mutated := makeLaps(n)
		preview := makeLaps(n)

		distributeWhole(mutated, cursor, delta)

		shares := pendingShares(preview, cursor, delta)

		for i, lap := range mutated {
			if shares[preview[i].ID] != lap.AccumulatedSeconds {
				t.Fatalf(
					"n=%d delta=%d cursor=%d: preview %d != distributed %d for lap %d",
					n, delta, cursor, shares[preview[i].ID], lap.AccumulatedSeconds, i,
				)
			}
		}

		for _, lap := range preview {
			if lap.AccumulatedSeconds != 0 {
				t.Fatal("pendingShares must not mutate laps")
			}
		}
	}
}

func TestRebaseCursorKeepsNextInLine(t *testing.T) {
	c := &sessionContext{
		active: make(map[string]struct{}),
	}

	laps := makeLaps(4)
	c.laps = laps

	for _, lap := range laps {
		c.active[lap.ID] = struct{}{}
	}

	// lap-3 is next in line
	c.cursor = 2

	old := c.activeIDs()

	// deactivating lap-1 shifts lap-3 to position 1
	delete(c.active, laps[0].ID)
	c.rebaseCursor(old)

	if c.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (lap-3's new position)", c.cursor)
	}

	// removing the next-in-line lap falls back to normalising the cursor
	old = c.activeIDs()

	delete(c.active, laps[2].ID)
	c.rebaseCursor(old)

	if c.cursor < 0 || c.cursor >= len(c.activeIDs()) {
		t.Errorf("cursor %d out of range after fallback", c.cursor)
	}
}

func TestDistributeAdvancesCheckpointWithoutActiveLaps(t *testing.T) {
	c := &sessionContext{
		session: models.Session{StartedAt: at(1000)},
		state:   models.StateRunning,
		active:  make(map[string]struct{}),
	}

	c.distribute(at(1030))

	if c.lastDistributed != 30 {
		t.Errorf("checkpoint = %d, want 30", c.lastDistributed)
	}
}
