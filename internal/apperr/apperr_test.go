package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if KindOf(Conflict("taken")) != KindConflict {
		t.Error("expected KindConflict")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected KindUnknown for a plain error")
	}

	// Classification survives wrapping.
	wrapped := fmt.Errorf("accepting: %w", NotFound("gone"))
	if KindOf(wrapped) != KindNotFound {
		t.Error("expected KindNotFound through fmt.Errorf wrapping")
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(Invalid("bad price")); got != "bad price" {
		t.Errorf("expected caller message, got %q", got)
	}
	if got := MessageOf(errors.New("sql: something leaked")); got != "internal error" {
		t.Errorf("expected generic message for unclassified error, got %q", got)
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := Wrap(KindConflict, "job is taken", errors.New("cause"))
	if !errors.Is(err, Conflict("")) {
		t.Error("expected errors.Is to match by kind")
	}
	if errors.Is(err, NotFound("")) {
		t.Error("did not expect a kind mismatch to match")
	}
}
