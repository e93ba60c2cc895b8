package engine

import "time"

// StorageNotice is the single most recent persistence failure, kept for the
// shell to display. Only one notice is outstanding at a time; a newer
// failure replaces an older one.
type StorageNotice struct {
	ID         uint64
	Message    string
	OccurredAt time.Time
}

// HandleWriteError records a persistence failure. It is the writer's error
// callback and may run on the writer's timer goroutine.
func (e *Engine) HandleWriteError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.noticeSeq++
	e.notice = &StorageNotice{
		ID:         e.noticeSeq,
		Message:    "saving your sessions failed: " + err.Error(),
		OccurredAt: e.clock.Now(),
	}
}

// Notice returns the outstanding persistence failure, or nil.
func (e *Engine) Notice() *StorageNotice {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.notice == nil {
		return nil
	}

	n := *e.notice

	return &n
}

// DismissNotice clears the outstanding notice if its id matches. A stale id
// is ignored so a dismissal cannot clobber a newer failure.
func (e *Engine) DismissNotice(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.notice != nil && e.notice.ID == id {
		e.notice = nil
	}
}
