package content

import (
	"io"
	"os"

	"github.com/WebFirstLanguage/hoardback/pkg/cdc"
)

// ChunkSizeParams carries the three CDC bounds a FileChunker enforces.
type ChunkSizeParams struct {
	MinSize uint32
	AvgSize uint32
	MaxSize uint32
}

// FileChunker streams a file through content-defined chunking, writing
// each newly observed chunk to a BlobStore and recording it in a
// ChunkIndex, and returns the resulting FileRecord.
type FileChunker struct {
	Store BlobStore
	Index *ChunkIndex
	Sizes ChunkSizeParams
}

// NewFileChunker constructs a FileChunker.
func NewFileChunker(store BlobStore, index *ChunkIndex, sizes ChunkSizeParams) *FileChunker {
	return &FileChunker{Store: store, Index: index, Sizes: sizes}
}

// ChunkFile reads path and chunks it, writing new chunks to the
// BlobStore and appending one FileChunk per emitted chunk — including
// repeats of the same digest at different offsets — to the returned
// FileRecord.
func (fc *FileChunker) ChunkFile(path string) (*FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewIoError("opening file for chunking", err)
	}
	defer f.Close()
	return fc.ChunkReader(path, f)
}

// ChunkReader chunks data from r, labeling the resulting FileRecord with
// recordPath. It is the path BackupEngine drives per regular file.
func (fc *FileChunker) ChunkReader(recordPath string, r io.Reader) (*FileRecord, error) {
	chunker, err := cdc.NewChunker(r, cdc.Config{
		MinSize: fc.Sizes.MinSize,
		AvgSize: fc.Sizes.AvgSize,
		MaxSize: fc.Sizes.MaxSize,
	})
	if err != nil {
		return nil, NewChunkerError("constructing chunker", err)
	}

	rec := NewFileRecord(recordPath)

	for {
		chunk, err := chunker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewChunkerError("reading chunk boundary", err)
		}

		digest := ComputeDigest(chunk.Data)

		if !fc.Index.Contains(digest) {
			if err := fc.Store.Write(HashPath(digest), chunk.Data); err != nil {
				return nil, NewIoError("writing chunk blob", err)
			}
			fc.Index.Insert(Chunk{Digest: digest, Length: uint64(chunk.Length)})
		}

		rec.AddChunk(FileChunk{
			Digest: digest,
			Offset: chunk.Offset,
			Length: uint64(chunk.Length),
		})
	}

	return rec, nil
}
