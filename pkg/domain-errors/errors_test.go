package domainerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	t.Run("coded error returns its code", func(t *testing.T) {
		err := New(CodeInvalidPagination, "limit too large")
		if CodeOf(err) != CodeInvalidPagination {
			t.Fatalf("expected %s, got %s", CodeInvalidPagination, CodeOf(err))
		}
	})

	t.Run("wrapped chain preserves code", func(t *testing.T) {
		cause := errors.New("boom")
		err := fmt.Errorf("outer: %w", Wrap(cause, CodeDataUnavailable, "store not loaded"))
		if CodeOf(err) != CodeDataUnavailable {
			t.Fatalf("expected %s, got %s", CodeDataUnavailable, CodeOf(err))
		}
		if !errors.Is(err, cause) {
			t.Fatal("expected cause to survive wrapping")
		}
	})

	t.Run("plain error maps to internal", func(t *testing.T) {
		if CodeOf(errors.New("boom")) != CodeInternal {
			t.Fatal("expected plain errors to map to CodeInternal")
		}
	})
}

func TestIs(t *testing.T) {
	err := Newf(CodeUnknownEntity, "unknown region identifiers: %v", []string{"99"})
	if !Is(err, CodeUnknownEntity) {
		t.Fatal("expected Is to match the carried code")
	}
	if Is(err, CodeBadRequest) {
		t.Fatal("expected Is to reject a different code")
	}
	if !HasCode(err, CodeUnknownEntity) {
		t.Fatal("expected HasCode to agree with Is")
	}
}
