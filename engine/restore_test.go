package engine

import (
	"testing"
	"time"

	"github.com/ayooluwa/lapse/internal/clock"
	"github.com/ayooluwa/lapse/internal/models"
)

func runningSnapshot(savedAt time.Time) *models.Snapshot {
	lap := models.Lap{
		ID:                 "lap-a",
		SessionID:          "sess-1",
		Index:              1,
		StartedAt:          at(1000),
		Label:              "lap-1",
		AccumulatedSeconds: 30,
	}

	return &models.Snapshot{
		SchemaVersion: 1,
		SavedAt:       savedAt,
		Sessions: []models.SessionSnapshot{
			{
				Session: models.Session{
					ID:        "sess-1",
					Title:     "Sep 1, 2026",
					StartedAt: at(1000),
				},
				Laps:                        []models.Lap{lap},
				SelectedLapID:               "lap-a",
				ActiveLapIDs:                []string{"lap-a"},
				State:                       models.StateRunning,
				LastDistributedWholeSeconds: 30,
			},
		},
		SessionOrder:      []string{"sess-1"},
		SelectedSessionID: "sess-1",
		NextSessionNumber: 2,
	}
}

func TestReconcileStopsRunningSession(t *testing.T) {
	snap := Reconcile(runningSnapshot(at(1030)), at(1100))

	s := snap.Sessions[0]

	if s.State != models.StateStopped {
		t.Fatalf("expected stopped, got %s", s.State)
	}

	if s.PauseStartedAt == nil || !s.PauseStartedAt.Equal(at(1100)) {
		t.Errorf("pause instant = %v, want 1100", s.PauseStartedAt)
	}

	// the 70 seconds between the checkpoint and the restore instant are
	// distributed retroactively
	if got := s.Laps[0].AccumulatedSeconds; got != 100 {
		t.Errorf("lap seconds = %d, want 100", got)
	}

	if s.LastDistributedWholeSeconds != 100 {
		t.Errorf("checkpoint = %d, want 100", s.LastDistributedWholeSeconds)
	}
}

func TestReconcileUsesSavedAtWhenLater(t *testing.T) {
	// a clock that moved backwards across the restart must not shrink the
	// session
	snap := Reconcile(runningSnapshot(at(1200)), at(1100))

	s := snap.Sessions[0]

	if s.PauseStartedAt == nil || !s.PauseStartedAt.Equal(at(1200)) {
		t.Errorf("stop instant = %v, want savedAt 1200", s.PauseStartedAt)
	}

	if got := s.Laps[0].AccumulatedSeconds; got != 200 {
		t.Errorf("lap seconds = %d, want 200", got)
	}
}

func TestReconcileSharesAmongActiveLaps(t *testing.T) {
	snap := runningSnapshot(at(1030))

	second := models.Lap{
		ID:        "lap-b",
		SessionID: "sess-1",
		Index:     2,
		StartedAt: at(1010),
		Label:     "lap-2",
	}

	s := &snap.Sessions[0]
	s.Laps = append(s.Laps, second)
	s.ActiveLapIDs = []string{"lap-a", "lap-b"}

	snap = Reconcile(snap, at(1100))
	s = &snap.Sessions[0]

	total := s.Laps[0].AccumulatedSeconds + s.Laps[1].AccumulatedSeconds
	if total != 100 {
		t.Fatalf("total = %d, want 100", total)
	}

	// 70 pending seconds split between two laps, 35 each
	if s.Laps[0].AccumulatedSeconds != 65 || s.Laps[1].AccumulatedSeconds != 35 {
		t.Errorf(
			"shares = %d/%d, want 65/35",
			s.Laps[0].AccumulatedSeconds, s.Laps[1].AccumulatedSeconds,
		)
	}
}

func TestReconcileIgnoresStoppedSessions(t *testing.T) {
	snap := runningSnapshot(at(1030))
	snap.Sessions[0].State = models.StatePaused
	pausedAt := at(1020)
	snap.Sessions[0].PauseStartedAt = &pausedAt

	snap = Reconcile(snap, at(1100))

	s := snap.Sessions[0]

	if s.State != models.StatePaused {
		t.Errorf("paused session should pass through unchanged, got %s", s.State)
	}

	if s.Laps[0].AccumulatedSeconds != 30 {
		t.Errorf("lap seconds = %d, want unchanged 30", s.Laps[0].AccumulatedSeconds)
	}
}

func TestRestoreAdoptsReconciledSnapshot(t *testing.T) {
	fake := clock.NewFake(at(2000))
	e := New(fake, nil, Options{Mode: models.ModeRadio})

	e.Restore(Reconcile(runningSnapshot(at(1030)), at(1100)))

	if e.SelectedSessionID() != "sess-1" {
		t.Fatalf("selected = %q, want sess-1", e.SelectedSessionID())
	}

	if state := e.SessionState("sess-1"); state != models.StateStopped {
		t.Errorf("state = %s, want stopped", state)
	}

	// frozen at the reconciled stop instant regardless of the read instant
	if got := e.ElapsedSession("sess-1", at(2000)); got != 100*time.Second {
		t.Errorf("elapsed = %v, want 100s", got)
	}

	e.ResumeSession(at(2000))

	if got := e.ElapsedSession("sess-1", at(2030)); got != 130*time.Second {
		t.Errorf("elapsed after resume = %v, want 130s", got)
	}
}
