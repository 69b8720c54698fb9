package blobstore

import (
	"io"
	"os"
	"path/filepath"
)

// LocalFS is a BlobStore backed by a local filesystem directory tree.
// Keys are relative paths (typically content.HashPath(digest)); writes
// create parent directories as needed and land atomically via a
// temp-file-then-rename, matching the manifest's own durable-write
// discipline.
type LocalFS struct {
	Root string
}

// NewLocalFS returns a LocalFS rooted at root. The directory is created
// lazily on first write.
func NewLocalFS(root string) *LocalFS {
	return &LocalFS{Root: root}
}

func (l *LocalFS) abs(key string) string {
	return filepath.Join(l.Root, filepath.FromSlash(key))
}

// Write implements content.BlobStore.
func (l *LocalFS) Write(key string, data []byte) error {
	dest := l.abs(key)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".blob-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Read implements content.BlobStore.
func (l *LocalFS) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(l.abs(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newNotFoundError(key, err)
		}
		return nil, err
	}
	return data, nil
}

// Writer implements content.BlobStore. The returned writer truncates
// any existing file at key; restore always (re)materializes a file from
// scratch.
func (l *LocalFS) Writer(key string) (io.WriteCloser, error) {
	dest := l.abs(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, err
	}
	return os.Create(dest)
}
