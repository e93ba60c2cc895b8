package store

import "github.com/ayooluwa/lapse/internal/models"

// DB is the snapshot storage interface.
type DB interface {
	// SaveSnapshot persists the full engine state. A nil snapshot deletes any
	// previously persisted state.
	SaveSnapshot(snap *models.Snapshot) error
	// LoadSnapshot returns the persisted state, or nil if none exists.
	LoadSnapshot() (*models.Snapshot, error)
	// Close ends the database connection
	Close() error
	// Open begins a database connection
	Open() error
}
