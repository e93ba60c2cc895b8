package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayooluwa/lapse/internal/models"
)

// DefaultDebounce is the delay before a queued write is flushed.
const DefaultDebounce = 200 * time.Millisecond

type pendingWrite int

const (
	pendingNone pendingWrite = iota
	pendingSave
	pendingClear
)

// Writer coalesces snapshot writes so that foreground mutations never block
// on I/O. It holds at most one pending write (the latest wins) and flushes it
// after a debounce window on a timer goroutine. The immediate variants cancel
// any pending write and perform the I/O synchronously; they are meant for
// process termination and state wipes only.
type Writer struct {
	db      DB
	onError func(error)

	debounce time.Duration

	mu       sync.Mutex
	pending  pendingWrite
	snapshot *models.Snapshot
	timer    *time.Timer
	// gen increases on every enqueue and on every immediate write, so a
	// flush can tell when the payload it dequeued has been superseded.
	gen uint64

	// wmu serialises the actual db calls; with the generation check in
	// flush, debounced and immediate writes land in the order issued.
	wmu sync.Mutex
}

// NewWriter returns a debounced snapshot writer. onError receives failures
// from debounced flushes; it may be invoked from the timer goroutine.
func NewWriter(db DB, debounce time.Duration, onError func(error)) *Writer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if onError == nil {
		onError = func(error) {}
	}

	return &Writer{
		db:       db,
		debounce: debounce,
		onError:  onError,
	}
}

// EnqueueSave schedules the snapshot to be persisted after the debounce
// window, replacing any pending write.
func (w *Writer) EnqueueSave(snap *models.Snapshot) {
	w.enqueue(pendingSave, snap)
}

// EnqueueClear schedules the persisted state to be deleted after the debounce
// window, replacing any pending write.
func (w *Writer) EnqueueClear() {
	w.enqueue(pendingClear, nil)
}

func (w *Writer) enqueue(kind pendingWrite, snap *models.Snapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = kind
	w.snapshot = snap
	w.gen++

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush runs on the timer goroutine and performs whatever write is pending
// at that point. A write enqueued while a flush awaits the lock wins over the
// one the timer fired for.
func (w *Writer) flush() {
	w.mu.Lock()
	kind := w.pending
	snap := w.snapshot
	gen := w.gen
	w.pending = pendingNone
	w.snapshot = nil
	w.timer = nil
	w.mu.Unlock()

	if kind == pendingNone {
		return
	}

	w.wmu.Lock()

	w.mu.Lock()
	superseded := w.gen != gen
	w.mu.Unlock()

	if superseded {
		// a newer enqueue or an immediate write took over after this payload
		// was dequeued; the newer write is authoritative
		w.wmu.Unlock()
		return
	}

	var err error
	if kind == pendingSave {
		err = w.db.SaveSnapshot(snap)
	} else {
		err = w.db.SaveSnapshot(nil)
	}

	// release before the callback: the error handler may grab locks that a
	// caller of SaveNow or ClearNow is already holding
	w.wmu.Unlock()

	if err != nil {
		slog.Error("debounced snapshot write failed", slog.Any("error", err))
		w.onError(err)
	}
}

// cancelPending drops any queued write and stops the debounce timer.
func (w *Writer) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = pendingNone
	w.snapshot = nil
	w.gen++

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// SaveNow cancels any pending write and persists the snapshot synchronously.
func (w *Writer) SaveNow(snap *models.Snapshot) error {
	w.cancelPending()

	w.wmu.Lock()
	defer w.wmu.Unlock()

	return w.db.SaveSnapshot(snap)
}

// ClearNow cancels any pending write and deletes the persisted state
// synchronously.
func (w *Writer) ClearNow() error {
	w.cancelPending()

	w.wmu.Lock()
	defer w.wmu.Unlock()

	return w.db.SaveSnapshot(nil)
}
