package content

import (
	"errors"
	"testing"
)

func TestErrorKindAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewIoError("writing blob", cause)

	if err.Kind != ErrKindIoError {
		t.Errorf("Kind = %s, want %s", err.Kind, ErrKindIoError)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) should unwrap to the original cause")
	}
	want := "IoError: writing blob: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewManifestCorruptError("neither decoder accepted the bytes", nil)
	want := "ManifestCorrupt: neither decoder accepted the bytes"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.Unwrap() != nil {
		t.Error("Unwrap() of a causeless error should be nil")
	}
}

func TestErrorIsMatchesOnKind(t *testing.T) {
	a := NewChunkerError("short read", nil)
	b := NewChunkerError("a different short read", errors.New("boom"))
	c := NewIoError("unrelated", nil)

	if !errors.Is(a, b) {
		t.Error("two errors of the same Kind should satisfy errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("errors of different Kinds should not satisfy errors.Is")
	}
}

func TestKindOfAndClassifiers(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		kind    ErrKind
		checker func(error) bool
	}{
		{"io", NewIoError("x", nil), ErrKindIoError, IsIoError},
		{"manifest", NewManifestCorruptError("x", nil), ErrKindManifestCorrupt, IsManifestCorrupt},
		{"chunker", NewChunkerError("x", nil), ErrKindChunkerError, IsChunkerError},
		{"integrity", NewIntegrityViolationError("x", nil), ErrKindIntegrityViolation, IsIntegrityViolation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := KindOf(tc.err)
			if !ok || kind != tc.kind {
				t.Fatalf("KindOf = %v, %v; want %v, true", kind, ok, tc.kind)
			}
			if !tc.checker(tc.err) {
				t.Errorf("classifier for %s returned false on a matching error", tc.name)
			}
		})
	}

	if kind, ok := KindOf(errors.New("plain error")); ok {
		t.Errorf("KindOf on a plain error should report ok=false, got kind=%v", kind)
	}
}
