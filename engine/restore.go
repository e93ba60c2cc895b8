package engine

import (
	"log/slog"
	"time"

	"github.com/ayooluwa/lapse/internal/models"
	"github.com/ayooluwa/lapse/internal/timeutil"
)

// Reconcile normalises a loaded snapshot before adoption. A session
// persisted as running means the process terminated without an explicit
// stop: it receives one distribution pass up to max(savedAt, restore
// instant) under the mode inferred from its active set, then becomes
// stopped at that instant. All other sessions pass through unchanged.
//
// This is the only place elapsed time is attributed retroactively across a
// restart gap.
func Reconcile(snap *models.Snapshot, at time.Time) *models.Snapshot {
	if snap == nil {
		return nil
	}

	for i := range snap.Sessions {
		s := &snap.Sessions[i]
		if s.State != models.StateRunning {
			continue
		}

		stopAt := timeutil.Max(snap.SavedAt, at)

		reconcileRunning(s, stopAt)

		slog.Info("recovered session left running",
			slog.String("id", s.Session.ID),
			slog.Time("stopped_at", stopAt),
		)
	}

	return snap
}

func reconcileRunning(s *models.SessionSnapshot, stopAt time.Time) {
	elapsed := stopAt.Sub(s.Session.StartedAt) - s.TotalPausedDuration
	if elapsed < 0 {
		elapsed = 0
	}

	current := int64(elapsed / time.Second)

	order := activeSnapshotLaps(s)

	if current > s.LastDistributedWholeSeconds && len(order) > 0 {
		delta := current - s.LastDistributedWholeSeconds
		s.DistributionCursor = distributeWhole(order, s.DistributionCursor, delta)
	}

	if current > s.LastDistributedWholeSeconds {
		s.LastDistributedWholeSeconds = current
	}

	s.State = models.StateStopped
	s.PauseStartedAt = &stopAt
	s.Session.EndedAt = &stopAt
}

// activeSnapshotLaps resolves the sharing set the session had before
// termination. More than one active lap implies checkbox mode; otherwise the
// session was in radio mode and only the selected lap accrues.
func activeSnapshotLaps(s *models.SessionSnapshot) []*models.Lap {
	active := make(map[string]struct{}, len(s.ActiveLapIDs))
	for _, id := range s.ActiveLapIDs {
		active[id] = struct{}{}
	}

	checkbox := len(s.ActiveLapIDs) > 1

	var order []*models.Lap

	for i := range s.Laps {
		lap := &s.Laps[i]

		if checkbox {
			if _, ok := active[lap.ID]; ok {
				order = append(order, lap)
			}

			continue
		}

		if lap.ID == s.SelectedLapID {
			order = append(order, lap)
		}
	}

	if len(order) == 0 && !checkbox {
		// fall back to whatever the persisted active set says
		for i := range s.Laps {
			lap := &s.Laps[i]
			if _, ok := active[lap.ID]; ok {
				order = append(order, lap)
			}
		}
	}

	return order
}
