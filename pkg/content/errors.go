package content

import (
	"errors"
	"fmt"
)

// ErrKind classifies an Error without tying callers to a specific
// message string.
type ErrKind string

const (
	// ErrKindIoError covers filesystem or blob-store failures that
	// survived the retry layer.
	ErrKindIoError ErrKind = "IoError"
	// ErrKindManifestCorrupt means neither the text nor binary manifest
	// decoder accepted the bytes on disk.
	ErrKindManifestCorrupt ErrKind = "ManifestCorrupt"
	// ErrKindChunkerError covers failures in the content-defined
	// chunking producer, e.g. a short read on a vanished file.
	ErrKindChunkerError ErrKind = "ChunkerError"
	// ErrKindIntegrityViolation means a read blob's length or digest did
	// not match what the chunk index recorded.
	ErrKindIntegrityViolation ErrKind = "IntegrityViolation"
)

// Error is the single error type surfaced across the backup/restore
// core. It carries a Kind for programmatic classification and wraps the
// underlying cause for errors.Is/As.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

// NewError constructs an Error. cause may be nil.
func NewError(kind ErrKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target shares this error's Kind, so callers can
// write errors.Is(err, &content.Error{Kind: content.ErrKindIoError}).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// NewIoError wraps a filesystem/blob-store error.
func NewIoError(message string, cause error) *Error {
	return NewError(ErrKindIoError, message, cause)
}

// NewManifestCorruptError reports that a manifest could not be decoded
// by either supported encoding.
func NewManifestCorruptError(message string, cause error) *Error {
	return NewError(ErrKindManifestCorrupt, message, cause)
}

// NewChunkerError wraps a content-defined-chunking failure.
func NewChunkerError(message string, cause error) *Error {
	return NewError(ErrKindChunkerError, message, cause)
}

// NewIntegrityViolationError reports a digest/length mismatch on read.
func NewIntegrityViolationError(message string, cause error) *Error {
	return NewError(ErrKindIntegrityViolation, message, cause)
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsIoError reports whether err is an IoError.
func IsIoError(err error) bool { return kindIs(err, ErrKindIoError) }

// IsManifestCorrupt reports whether err is a ManifestCorrupt error.
func IsManifestCorrupt(err error) bool { return kindIs(err, ErrKindManifestCorrupt) }

// IsChunkerError reports whether err is a ChunkerError.
func IsChunkerError(err error) bool { return kindIs(err, ErrKindChunkerError) }

// IsIntegrityViolation reports whether err is an IntegrityViolation.
func IsIntegrityViolation(err error) bool { return kindIs(err, ErrKindIntegrityViolation) }

func kindIs(err error, kind ErrKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
