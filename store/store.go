// Package store connects to the data store and manages persisted snapshots
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayooluwa/lapse/internal/apperr"
	"github.com/ayooluwa/lapse/internal/models"
)

const (
	stateBucket = "state"
	snapshotKey = "snapshot"
)

var pathToDB string

var (
	errAlreadyRunning = &apperr.Error{
		Message: "is lapse already running? Only one instance can be active at a time",
	}

	// ErrCorruptSnapshot indicates an unreadable persisted snapshot. Callers
	// treat it as the absence of prior state.
	ErrCorruptSnapshot = &apperr.Error{
		Message: "persisted snapshot could not be decoded",
	}
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// SaveSnapshot writes the snapshot to the state bucket, or deletes the
// persisted state when snap is nil.
func (c *Client) SaveSnapshot(snap *models.Snapshot) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(stateBucket))

		if snap == nil {
			return b.Delete([]byte(snapshotKey))
		}

		value, err := json.Marshal(snap)
		if err != nil {
			return err
		}

		return b.Put([]byte(snapshotKey), value)
	})
}

// LoadSnapshot retrieves and normalises the persisted snapshot. It returns
// nil when no snapshot has been saved, and ErrCorruptSnapshot when the stored
// bytes cannot be decoded.
func (c *Client) LoadSnapshot() (*models.Snapshot, error) {
	var snap *models.Snapshot

	err := c.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(stateBucket)).Get([]byte(snapshotKey))
		if len(value) == 0 {
			return nil
		}

		snap = &models.Snapshot{}

		err := json.Unmarshal(value, snap)
		if err != nil {
			return ErrCorruptSnapshot.Wrap(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if snap != nil {
		normaliseSnapshot(snap, time.Now())
	}

	return snap, nil
}

// normaliseSnapshot fills in the fields a legacy payload may lack: the schema
// version, the save instant, and the explicit session ordering.
func normaliseSnapshot(snap *models.Snapshot, loadedAt time.Time) {
	if snap.SchemaVersion == 0 {
		snap.SchemaVersion = 1
	}

	if snap.SavedAt.IsZero() {
		snap.SavedAt = loadedAt
	}

	if len(snap.SessionOrder) == 0 && len(snap.Sessions) > 0 {
		order := make([]string, 0, len(snap.Sessions))
		for i := range snap.Sessions {
			order = append(order, snap.Sessions[i].Session.ID)
		}

		snap.SessionOrder = order
	}
}

func (c *Client) Open() error {
	db, err := openDB(pathToDB)
	if err != nil {
		return err
	}

	*c = Client{
		db,
	}

	return nil
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		// a second instance holds the file lock until the 1s timeout expires
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errAlreadyRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	pathToDB = dbPath

	db, err := openDB(pathToDB)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
