package content

import "io"

// BlobStore is the minimal capability the core needs from object
// storage: write/read opaque byte blobs by key, and a streaming writer
// for restore's sequential reassembly. A local filesystem adapter,
// optionally wrapped with retry and compression decorators, satisfies
// this in package blobstore.
type BlobStore interface {
	// Write idempotently creates or overwrites the blob at key. The
	// core never issues two different payloads for the same key (that
	// invariant is guarded by ChunkIndex), so implementations are free
	// to skip a read-back comparison on overwrite.
	Write(key string, data []byte) error

	// Read returns the full blob at key, or an error for which
	// errors.Is(err, os.ErrNotExist) holds if it is absent.
	Read(key string) ([]byte, error)

	// Writer opens a streaming sink for key, creating parent
	// directories as needed. The caller must Close it.
	Writer(key string) (io.WriteCloser, error)
}
