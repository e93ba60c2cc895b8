// Package models defines the persisted shapes for sessions, laps, and
// snapshots.
package models

import "time"

// SessionState represents the lifecycle state of a session.
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateRunning SessionState = "running"
	StatePaused  SessionState = "paused"
	StateStopped SessionState = "stopped"
	// StateFinished is a legacy terminal state. It is still decoded from old
	// snapshots but no transition produces it anymore.
	StateFinished SessionState = "finished"
)

// SplitMode controls how elapsed time is shared among laps.
type SplitMode string

const (
	// ModeRadio keeps exactly one lap active at a time.
	ModeRadio SplitMode = "radio"
	// ModeCheckbox lets any non-empty subset of laps share time round-robin.
	ModeCheckbox SplitMode = "checkbox"
)

// Valid reports whether m is a known split mode.
func (m SplitMode) Valid() bool {
	return m == ModeRadio || m == ModeCheckbox
}

// Session is a top-level unit of tracked work.
type Session struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Lap is a named sub-interval of a session. AccumulatedSeconds is
// authoritative once distribution has credited it and only ever grows while
// a session runs.
type Lap struct {
	ID                 string     `json:"id"`
	SessionID          string     `json:"session_id"`
	Index              int        `json:"index"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	AccumulatedSeconds int64      `json:"accumulated_seconds"`
	Label              string     `json:"label"`
	Memo               string     `json:"memo,omitempty"`
}

// SessionSnapshot is the persisted accounting context for one session.
type SessionSnapshot struct {
	Session                     Session       `json:"session"`
	Laps                        []Lap         `json:"laps"`
	SelectedLapID               string        `json:"selected_lap_id,omitempty"`
	ActiveLapIDs                []string      `json:"active_lap_ids,omitempty"`
	State                       SessionState  `json:"state"`
	PauseStartedAt              *time.Time    `json:"pause_started_at,omitempty"`
	LastDistributedWholeSeconds int64         `json:"last_distributed_whole_seconds"`
	DistributionCursor          int           `json:"distribution_cursor"`
	TotalPausedDuration         time.Duration `json:"total_paused_duration"`
}

// Snapshot is the full persisted engine state.
type Snapshot struct {
	SchemaVersion     int               `json:"schema_version"`
	SavedAt           time.Time         `json:"saved_at"`
	Sessions          []SessionSnapshot `json:"sessions"`
	SessionOrder      []string          `json:"session_order"`
	SelectedSessionID string            `json:"selected_session_id,omitempty"`
	NextSessionNumber int               `json:"next_session_number"`
}
