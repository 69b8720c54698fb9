// Package blobstore implements the on-disk side of content.BlobStore: a
// fan-out local filesystem adapter plus retry and transparent
// compression decorators over it.
package blobstore

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotFound is the sentinel a caller can compare against with
// errors.Is to detect a missing blob, independent of the underlying
// os.PathError.
var ErrNotFound = errors.New("blobstore: blob not found")

type notFoundError struct {
	key   string
	cause error
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("blobstore: blob %q not found: %v", e.key, e.cause)
}

func (e *notFoundError) Unwrap() error { return e.cause }

func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func newNotFoundError(key string, cause error) error {
	return &notFoundError{key: key, cause: cause}
}

// IsNotFound reports whether err indicates a missing blob, whether it
// came from this package's adapters or directly from the filesystem.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || os.IsNotExist(err)
}
