// Package engine owns all session and lap accounting state: the session
// state machines, the whole-second round-robin distribution of elapsed time
// among active laps, pause accounting, and snapshot adoption after a restart.
package engine

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayooluwa/lapse/internal/clock"
	"github.com/ayooluwa/lapse/internal/models"
	"github.com/ayooluwa/lapse/internal/timeutil"
	"github.com/ayooluwa/lapse/store"
)

// sessionContext carries the accounting state for one session beyond its
// public Session/Lap pair. The engine is the sole mutator.
type sessionContext struct {
	session         models.Session
	laps            []*models.Lap
	selectedLapID   string
	active          map[string]struct{}
	state           models.SessionState
	pauseStartedAt  *time.Time
	lastDistributed int64
	cursor          int
	totalPaused     time.Duration
}

// Options configures a new engine.
type Options struct {
	// Mode is the initial split accumulation mode. Defaults to radio.
	Mode models.SplitMode
}

// Engine tracks every session and apportions elapsed time among laps. All
// mutation methods take an explicit instant so the engine is a pure function
// of supplied time; callers use Now for live operation.
type Engine struct {
	mu sync.Mutex

	clock  clock.Clock
	writer *store.Writer
	mode   models.SplitMode

	sessions map[string]*sessionContext
	// order holds session ids, most recently added first.
	order             []string
	selectedID        string
	nextSessionNumber int

	noticeSeq uint64
	notice    *StorageNotice
}

// New creates an engine backed by the given clock and persistence writer.
// The writer may be nil, in which case state is kept in memory only.
func New(clk clock.Clock, w *store.Writer, opts Options) *Engine {
	mode := opts.Mode
	if !mode.Valid() {
		mode = models.ModeRadio
	}

	return &Engine{
		clock:             clk,
		writer:            w,
		mode:              mode,
		sessions:          make(map[string]*sessionContext),
		nextSessionNumber: 1,
	}
}

// Now returns the current instant from the engine's clock.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// AddSession stops any running session, then creates, selects, and
// immediately activates a new session.
func (e *Engine) AddSession(at time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.addSession(at)
	e.persist()

	return id
}

func (e *Engine) addSession(at time.Time) string {
	e.stopRunning(at)

	c := &sessionContext{
		session: models.Session{
			ID:        uuid.NewString(),
			Title:     e.defaultTitle(at),
			StartedAt: at,
		},
		active: make(map[string]struct{}),
		state:  models.StateIdle,
	}

	e.sessions[c.session.ID] = c
	e.order = append([]string{c.session.ID}, e.order...)
	e.selectedID = c.session.ID
	e.nextSessionNumber++

	e.activate(c, at)

	slog.Debug("session added",
		slog.String("id", c.session.ID),
		slog.String("title", c.session.Title),
	)

	return c.session.ID
}

// defaultTitle derives a date-based title, de-duplicated against existing
// same-date titles with an alphabetic suffix.
func (e *Engine) defaultTitle(at time.Time) string {
	base := timeutil.DayTitle(at)

	taken := make(map[string]struct{})

	for _, c := range e.sessions {
		t := c.session.Title
		if t == base || strings.HasPrefix(t, base+" ") {
			taken[t] = struct{}{}
		}
	}

	if _, ok := taken[base]; !ok {
		return base
	}

	for n := 0; ; n++ {
		candidate := base + " " + timeutil.AlphaSuffix(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// activate transitions an idle (or lap-less) session to running with a fresh
// first lap.
func (e *Engine) activate(c *sessionContext, at time.Time) {
	c.session.StartedAt = at
	c.session.EndedAt = nil
	c.laps = nil
	c.active = make(map[string]struct{})
	c.pauseStartedAt = nil
	c.lastDistributed = 0
	c.cursor = 0
	c.totalPaused = 0

	lap := e.newLap(c, at)
	c.selectedLapID = lap.ID
	c.active[lap.ID] = struct{}{}
	c.state = models.StateRunning
}

func (e *Engine) newLap(c *sessionContext, at time.Time) *models.Lap {
	index := 1
	if n := len(c.laps); n > 0 {
		index = c.laps[n-1].Index + 1
	}

	lap := &models.Lap{
		ID:        uuid.NewString(),
		SessionID: c.session.ID,
		Index:     index,
		StartedAt: at,
		Label:     timeutil.LapLabel(index),
	}

	c.laps = append(c.laps, lap)

	return lap
}

// resume transitions a paused or stopped session back to running, excluding
// the gap from elapsed time and rebasing the distribution checkpoint so no
// second is counted twice.
func (e *Engine) resume(c *sessionContext, at time.Time) {
	if c.pauseStartedAt != nil {
		gap := at.Sub(*c.pauseStartedAt)
		if gap > 0 {
			c.totalPaused += gap
		}

		c.pauseStartedAt = nil
	}

	c.session.EndedAt = nil
	c.state = models.StateRunning
	c.lastDistributed = c.wholeElapsed(at)
}

// stopRunning freezes whichever session is currently running, if any.
func (e *Engine) stopRunning(at time.Time) {
	for _, c := range e.sessions {
		if c.state != models.StateRunning {
			continue
		}

		e.stop(c, at)
	}
}

func (e *Engine) stop(c *sessionContext, at time.Time) {
	c.distribute(at)

	stopAt := at
	c.state = models.StateStopped
	c.pauseStartedAt = &stopAt
	c.session.EndedAt = &stopAt
}

// SelectSession switches the selected session. The previously running
// session, if any, is frozen first so its elapsed time stops advancing.
func (e *Engine) SelectSession(id string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == e.selectedID {
		return
	}

	if _, ok := e.sessions[id]; !ok {
		return
	}

	e.stopRunning(at)
	e.selectedID = id
	e.persist()
}

// StartSession starts or resumes the selected session, creating one first if
// none exists. Any other running session is stopped.
func (e *Engine) StartSession(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.sessions) == 0 {
		e.addSession(at)
		e.persist()

		return
	}

	c := e.sessions[e.selectedID]
	if c == nil {
		return
	}

	for _, other := range e.sessions {
		if other != c && other.state == models.StateRunning {
			e.stop(other, at)
		}
	}

	switch c.state {
	case models.StateRunning:
		// already running
	case models.StatePaused, models.StateStopped:
		if len(c.laps) > 0 {
			e.resume(c, at)
		} else {
			e.activate(c, at)
		}
	case models.StateIdle, models.StateFinished:
		e.activate(c, at)
	}

	e.persist()
}

// PauseSession pauses the selected session. Pending whole seconds are flushed
// up to the pause instant first.
func (e *Engine) PauseSession(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil || c.state != models.StateRunning {
		return
	}

	c.distribute(at)

	pausedAt := at
	c.pauseStartedAt = &pausedAt
	c.state = models.StatePaused

	e.persist()
}

// ResumeSession resumes the selected session from paused or stopped.
func (e *Engine) ResumeSession(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil {
		return
	}

	if c.state != models.StatePaused && c.state != models.StateStopped {
		return
	}

	e.stopRunning(at)
	e.resume(c, at)
	e.persist()
}

// FinishSession stops the selected session. Stopping a paused session uses
// the pause instant as the stop instant so its clock does not silently
// advance.
func (e *Engine) FinishSession(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil {
		return
	}

	switch c.state {
	case models.StateRunning:
		e.stop(c, at)
	case models.StatePaused:
		stopAt := *c.pauseStartedAt
		c.state = models.StateStopped
		c.session.EndedAt = &stopAt
	default:
		return
	}

	e.persist()
}

// ResetSelectedSession reinitialises the selected session to idle with no
// laps and zeroed accounting, keeping its id and title.
func (e *Engine) ResetSelectedSession(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[e.selectedID]
	if c == nil {
		return
	}

	resetContext(c, at)
	e.persist()
}

// ClearAllSessions reinitialises every session, preserving ids and titles.
func (e *Engine) ClearAllSessions(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, c := range e.sessions {
		resetContext(c, at)
	}

	e.persist()
}

func resetContext(c *sessionContext, at time.Time) {
	c.session.StartedAt = at
	c.session.EndedAt = nil
	c.laps = nil
	c.selectedLapID = ""
	c.active = make(map[string]struct{})
	c.state = models.StateIdle
	c.pauseStartedAt = nil
	c.lastDistributed = 0
	c.cursor = 0
	c.totalPaused = 0
}

// DeleteSelectedSession removes the selected session and selects the
// previous one in order, if any remain.
func (e *Engine) DeleteSelectedSession(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.selectedID

	c := e.sessions[id]
	if c == nil {
		return
	}

	delete(e.sessions, id)

	pos := -1

	for i, v := range e.order {
		if v == id {
			pos = i
			break
		}
	}

	if pos >= 0 {
		e.order = append(e.order[:pos], e.order[pos+1:]...)
	}

	switch {
	case pos >= 0 && pos < len(e.order):
		e.selectedID = e.order[pos]
	case len(e.order) > 0:
		e.selectedID = e.order[len(e.order)-1]
	default:
		e.selectedID = ""
	}

	e.persist()
}

// DeleteAllSessions removes every session and wipes the persisted state.
func (e *Engine) DeleteAllSessions(time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessions = make(map[string]*sessionContext)
	e.order = nil
	e.selectedID = ""

	if e.writer != nil {
		e.writer.EnqueueClear()
	}
}

// SetSessionTitle renames a session.
func (e *Engine) SetSessionTitle(id, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.sessions[id]
	if c == nil || title == "" {
		return
	}

	c.session.Title = title
	e.persist()
}

// Close flushes the current state synchronously. It is called once, when the
// process is terminating.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.writer == nil {
		return nil
	}

	if len(e.sessions) == 0 {
		return e.writer.ClearNow()
	}

	return e.writer.SaveNow(e.buildSnapshot())
}

// persist enqueues a debounced write of the full current state.
func (e *Engine) persist() {
	if e.writer == nil {
		return
	}

	if len(e.sessions) == 0 {
		e.writer.EnqueueClear()
		return
	}

	e.writer.EnqueueSave(e.buildSnapshot())
}

func (e *Engine) buildSnapshot() *models.Snapshot {
	snap := &models.Snapshot{
		SchemaVersion:     1,
		SavedAt:           e.clock.Now(),
		SessionOrder:      append([]string(nil), e.order...),
		SelectedSessionID: e.selectedID,
		NextSessionNumber: e.nextSessionNumber,
	}

	for _, id := range e.order {
		c := e.sessions[id]
		if c == nil {
			continue
		}

		snap.Sessions = append(snap.Sessions, c.toSnapshot())
	}

	return snap
}

func (c *sessionContext) toSnapshot() models.SessionSnapshot {
	s := models.SessionSnapshot{
		Session:                     c.session,
		SelectedLapID:               c.selectedLapID,
		State:                       c.state,
		LastDistributedWholeSeconds: c.lastDistributed,
		DistributionCursor:          c.cursor,
		TotalPausedDuration:         c.totalPaused,
	}

	if c.pauseStartedAt != nil {
		t := *c.pauseStartedAt
		s.PauseStartedAt = &t
	}

	for _, lap := range c.laps {
		s.Laps = append(s.Laps, *lap)

		if _, ok := c.active[lap.ID]; ok {
			s.ActiveLapIDs = append(s.ActiveLapIDs, lap.ID)
		}
	}

	return s
}

// Restore adopts a reconciled snapshot, replacing all in-memory state.
func (e *Engine) Restore(snap *models.Snapshot) {
	if snap == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessions = make(map[string]*sessionContext)
	e.order = nil
	e.selectedID = ""

	byID := make(map[string]*models.SessionSnapshot)
	for i := range snap.Sessions {
		byID[snap.Sessions[i].Session.ID] = &snap.Sessions[i]
	}

	for _, id := range snap.SessionOrder {
		s := byID[id]
		if s == nil {
			continue
		}

		c := &sessionContext{
			session:         s.Session,
			selectedLapID:   s.SelectedLapID,
			active:          make(map[string]struct{}),
			state:           s.State,
			lastDistributed: s.LastDistributedWholeSeconds,
			cursor:          s.DistributionCursor,
			totalPaused:     s.TotalPausedDuration,
		}

		if s.PauseStartedAt != nil {
			t := *s.PauseStartedAt
			c.pauseStartedAt = &t
		}

		for i := range s.Laps {
			lap := s.Laps[i]
			c.laps = append(c.laps, &lap)
		}

		for _, lapID := range s.ActiveLapIDs {
			c.active[lapID] = struct{}{}
		}

		e.sessions[id] = c
		e.order = append(e.order, id)
	}

	if _, ok := e.sessions[snap.SelectedSessionID]; ok {
		e.selectedID = snap.SelectedSessionID
	} else if len(e.order) > 0 {
		e.selectedID = e.order[0]
	}

	if snap.NextSessionNumber > 0 {
		e.nextSessionNumber = snap.NextSessionNumber
	}
}
