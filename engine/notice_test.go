package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/ayooluwa/lapse/internal/models"
)

func TestNewerNoticeReplacesOlder(t *testing.T) {
	e, _ := newTestEngine(models.ModeRadio)

	if e.Notice() != nil {
		t.Fatal("expected no notice initially")
	}

	e.HandleWriteError(errors.New("disk full"))

	first := e.Notice()
	if first == nil {
		t.Fatal("expected a notice after a write failure")
	}

	if !strings.Contains(first.Message, "disk full") {
		t.Errorf("message = %q, should carry the cause", first.Message)
	}

	e.HandleWriteError(errors.New("still failing"))

	second := e.Notice()
	if second == nil {
		t.Fatal("expected a notice after the second failure")
	}

	if second.ID <= first.ID {
		t.Errorf("notice ids must increase: first %d, second %d", first.ID, second.ID)
	}

	if !strings.Contains(second.Message, "still failing") {
		t.Errorf("message = %q, want the newest failure", second.Message)
	}
}

func TestDismissNoticeIgnoresStaleID(t *testing.T) {
	e, _ := newTestEngine(models.ModeRadio)

	e.HandleWriteError(errors.New("disk full"))
	first := e.Notice()

	e.HandleWriteError(errors.New("still failing"))

	e.DismissNotice(first.ID)

	if e.Notice() == nil {
		t.Fatal("a stale dismissal must not clear a newer notice")
	}

	e.DismissNotice(e.Notice().ID)

	if e.Notice() != nil {
		t.Error("a matching dismissal should clear the notice")
	}
}
