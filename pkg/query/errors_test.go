package query

import (
	"errors"
	"fmt"
	"testing"
)

func TestRewriteError_Is(t *testing.T) {
	err := newError(ErrKindMultiStatement, "only one query is allowed")

	if !errors.Is(err, &RewriteError{Kind: ErrKindMultiStatement}) {
		t.Error("errors.Is should match on kind")
	}
	if errors.Is(err, &RewriteError{Kind: ErrKindParse}) {
		t.Error("errors.Is should not match a different kind")
	}
}

func TestRewriteError_WrappedKind(t *testing.T) {
	inner := newError(ErrKindExplicitFormat, "please don't specify a FORMAT")
	wrapped := fmt.Errorf("handling command: %w", inner)

	if got := KindOf(wrapped); got != ErrKindExplicitFormat {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, ErrKindExplicitFormat)
	}
	if !errors.Is(wrapped, &RewriteError{Kind: ErrKindExplicitFormat}) {
		t.Error("errors.Is should see through wrapping")
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != "" {
		t.Errorf("KindOf(foreign) = %q, want empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
}
