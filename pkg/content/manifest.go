package content

import (
	"fmt"
)

// CurrentManifestVersion is written into every Manifest produced by this
// package.
const CurrentManifestVersion = 1

// Manifest is the sidecar record of a backup repository: the set of
// known chunks, one FileRecord per backed-up file, and the symlinks
// encountered during the walk.
//
// Version, ChunkMap, Files, Symlinks, and Codec are encoded via the
// custom MarshalJSON/UnmarshalJSON and EncodeMsgpack/DecodeMsgpack pairs
// in codec.go rather than struct tags, so the wire field names
// (chunk_map, file_metadata_map, …) can stay stable independent of the
// in-memory field names.
type Manifest struct {
	Version  uint32
	ChunkMap map[Digest]Chunk
	Files    map[string]*FileRecord
	Symlinks []Symlink
	// Codec records the compression codec (if any) blobs in this
	// repository were written with, so a restore always knows how to
	// read them back regardless of the process's current default.
	Codec string
}

// NewManifest returns an empty Manifest ready to be populated by a
// backup pass.
func NewManifest() *Manifest {
	return &Manifest{
		Version:  CurrentManifestVersion,
		ChunkMap: make(map[Digest]Chunk),
		Files:    make(map[string]*FileRecord),
		Symlinks: nil,
	}
}

// PutFile replaces (or inserts) the FileRecord for a path. A backup
// pass always replaces wholesale on re-encounter, per the source's
// semantics — re-inserting an unchanged file is a recorded no-op.
func (m *Manifest) PutFile(rec *FileRecord) {
	m.Files[rec.Path] = rec
}

// AddSymlink appends a recorded symlink.
func (m *Manifest) AddSymlink(s Symlink) {
	m.Symlinks = append(m.Symlinks, s)
}

// SeedChunkIndex loads the manifest's chunk_map into idx, used at the
// start of an incremental backup pass so unchanged chunks are not
// rewritten.
func (m *Manifest) SeedChunkIndex(idx *ChunkIndex) {
	idx.Load(m.ChunkMap)
}

// SyncChunkIndex copies idx's current contents back into the manifest's
// chunk_map, called once a backup pass has finished mutating idx.
func (m *Manifest) SyncChunkIndex(idx *ChunkIndex) {
	m.ChunkMap = idx.Snapshot()
}

// Verify checks the manifest's internal consistency: invariant (a) from
// §3 — every FileChunk's digest is present in chunk_map with a matching
// length — and invariant (b) — chunk_map never disagrees with itself
// (guaranteed by construction of a Go map, left as a structural check
// for clarity).
func (m *Manifest) Verify() error {
	for path, rec := range m.Files {
		for _, fc := range rec.Chunks {
			chunk, ok := m.ChunkMap[fc.Digest]
			if !ok {
				return NewError(ErrKindManifestCorrupt,
					fmt.Sprintf("file %q references unknown chunk %s", path, fc.Digest), nil)
			}
			if chunk.Length != fc.Length {
				return NewError(ErrKindManifestCorrupt,
					fmt.Sprintf("file %q chunk %s length mismatch: chunk_map has %d, file has %d",
						path, fc.Digest, chunk.Length, fc.Length), nil)
			}
		}
	}
	return nil
}

// Equal reports semantic equality between two manifests: set-equality
// of chunk_map and file_metadata_map, list-equality of symlinks, used by
// round-trip tests (§8 invariant 7) rather than requiring identical
// encoding bytes.
func (m *Manifest) Equal(other *Manifest) bool {
	if other == nil {
		return false
	}
	if m.Version != other.Version || m.Codec != other.Codec {
		return false
	}
	if len(m.ChunkMap) != len(other.ChunkMap) {
		return false
	}
	for d, c := range m.ChunkMap {
		oc, ok := other.ChunkMap[d]
		if !ok || oc != c {
			return false
		}
	}
	if len(m.Files) != len(other.Files) {
		return false
	}
	for path, rec := range m.Files {
		orec, ok := other.Files[path]
		if !ok || !fileRecordsEqual(rec, orec) {
			return false
		}
	}
	if len(m.Symlinks) != len(other.Symlinks) {
		return false
	}
	for i, s := range m.Symlinks {
		if other.Symlinks[i] != s {
			return false
		}
	}
	return true
}

func fileRecordsEqual(a, b *FileRecord) bool {
	if a.Path != b.Path || len(a.Chunks) != len(b.Chunks) {
		return false
	}
	as, bs := a.SortedChunks(), b.SortedChunks()
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
