package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	bolt "go.etcd.io/bbolt"

	"github.com/ayooluwa/lapse/internal/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "lapse.db"))
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func sampleSnapshot() *models.Snapshot {
	started := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	return &models.Snapshot{
		SchemaVersion: 1,
		SavedAt:       started.Add(time.Hour),
		Sessions: []models.SessionSnapshot{
			{
				Session: models.Session{
					ID:        "sess-1",
					Title:     "Sep 1, 2026",
					StartedAt: started,
				},
				Laps: []models.Lap{
					{
						ID:                 "lap-a",
						SessionID:          "sess-1",
						Index:              1,
						StartedAt:          started,
						Label:              "lap-1",
						AccumulatedSeconds: 120,
					},
				},
				SelectedLapID:               "lap-a",
				ActiveLapIDs:                []string{"lap-a"},
				State:                       models.StateStopped,
				LastDistributedWholeSeconds: 120,
				TotalPausedDuration:         30 * time.Second,
			},
		},
		SessionOrder:      []string{"sess-1"},
		SelectedSessionID: "sess-1",
		NextSessionNumber: 2,
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	c := newTestClient(t)

	want := sampleSnapshot()

	if err := c.SaveSnapshot(want); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	c := newTestClient(t)

	got, err := c.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	if got != nil {
		t.Errorf("expected nil snapshot, got %+v", got)
	}
}

func TestSaveNilSnapshotDeletesState(t *testing.T) {
	c := newTestClient(t)

	if err := c.SaveSnapshot(sampleSnapshot()); err != nil {
		t.Fatal(err)
	}

	if err := c.SaveSnapshot(nil); err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	if got != nil {
		t.Errorf("expected state to be deleted, got %+v", got)
	}
}

func TestLoadLegacySnapshot(t *testing.T) {
	c := newTestClient(t)

	// a legacy payload lacks schema_version, saved_at, and session_order
	legacy := sampleSnapshot()
	legacy.SchemaVersion = 0
	legacy.SavedAt = time.Time{}
	legacy.SessionOrder = nil

	value, err := json.Marshal(legacy)
	if err != nil {
		t.Fatal(err)
	}

	err = c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(snapshotKey), value)
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	if got.SchemaVersion != 1 {
		t.Errorf("schema version = %d, want defaulted 1", got.SchemaVersion)
	}

	if got.SavedAt.IsZero() {
		t.Error("saved_at should default to the load time")
	}

	want := []string{"sess-1"}
	if diff := cmp.Diff(want, got.SessionOrder); diff != "" {
		t.Errorf("session order should derive from the session list (-want +got):\n%s", diff)
	}
}

func TestSecondClientRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lapse.db")

	c, err := NewClient(path)
	if err != nil {
		t.Fatal(err)
	}

	defer c.Close()

	_, err = NewClient(path)
	if err == nil {
		t.Fatal("expected the second open to be refused")
	}

	if !errors.Is(err, errAlreadyRunning) {
		t.Errorf("got %v, want %v", err, errAlreadyRunning)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	c := newTestClient(t)

	err := c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(snapshotKey), []byte("{not json"))
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.LoadSnapshot()
	if err == nil {
		t.Fatal("expected an error for corrupt state")
	}
}
