package blobstore

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/WebFirstLanguage/hoardback/pkg/content"
)

// ZstdCodec is the Manifest.Codec value a Compressing store writes.
const ZstdCodec = "zstd"

// Compressing wraps a content.BlobStore and transparently zstd-compresses
// every blob on write, decompressing on read. Callers that need the
// codec name for the manifest use ZstdCodec directly.
type Compressing struct {
	Inner content.BlobStore

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressing wraps inner with zstd compression. The returned store
// owns a reusable encoder/decoder pair; Write and Read go through their
// EncodeAll/DecodeAll methods, which klauspost/compress allows to be
// called concurrently, and Writer builds a fresh streaming encoder per
// call, so one store can be shared by several goroutines.
func NewCompressing(inner content.BlobStore) (*Compressing, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: constructing zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("blobstore: constructing zstd decoder: %w", err)
	}
	return &Compressing{Inner: inner, encoder: enc, decoder: dec}, nil
}

// Close releases the underlying encoder/decoder resources.
func (c *Compressing) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

// Write implements content.BlobStore.
func (c *Compressing) Write(key string, data []byte) error {
	return c.Inner.Write(key, c.encoder.EncodeAll(data, nil))
}

// Read implements content.BlobStore.
func (c *Compressing) Read(key string) ([]byte, error) {
	raw, err := c.Inner.Read(key)
	if err != nil {
		return nil, err
	}
	out, err := c.decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, content.NewError(content.ErrKindIntegrityViolation,
			fmt.Sprintf("decompressing blob %q", key), err)
	}
	return out, nil
}

// Writer implements content.BlobStore by wrapping the inner writer with
// a streaming zstd encoder. The returned WriteCloser must be closed to
// flush the final zstd frame before the inner writer is closed.
func (c *Compressing) Writer(key string) (io.WriteCloser, error) {
	inner, err := c.Inner.Writer(key)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(inner)
	if err != nil {
		inner.Close()
		return nil, fmt.Errorf("blobstore: constructing streaming zstd encoder: %w", err)
	}
	return &compressingWriteCloser{enc: enc, inner: inner}, nil
}

type compressingWriteCloser struct {
	enc   *zstd.Encoder
	inner io.WriteCloser
}

func (w *compressingWriteCloser) Write(p []byte) (int, error) {
	return w.enc.Write(p)
}

func (w *compressingWriteCloser) Close() error {
	if err := w.enc.Close(); err != nil {
		w.inner.Close()
		return err
	}
	return w.inner.Close()
}
