// Package content implements content-addressed chunk storage: digests,
// content-defined chunking, the chunk index, file fingerprints, and the
// backup manifest data model.
package content

// Chunk is a single unique piece of content tracked by a ChunkIndex.
// Identity is the Digest; a Chunk is immutable after creation.
type Chunk struct {
	Digest Digest `json:"hash"`
	Length uint64 `json:"length"`
}

// FileChunk is one occurrence of a Chunk inside a particular file.
// Offset is the byte position in the source file at which the chunk
// begins; Length is the chunk's byte length.
type FileChunk struct {
	Digest Digest `json:"hash"`
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
}

// Symlink records a symbolic link encountered during a backup walk.
// It is never followed; From and To are recorded verbatim.
type Symlink struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FileRecord is the per-file entry of a Manifest.
//
// Chunks is kept as an ordered slice rather than a digest-keyed map: a
// file that contains the same chunk at two distinct offsets must retain
// both occurrences, which a digest key would silently collapse.
type FileRecord struct {
	Path   string      `json:"path"`
	Chunks []FileChunk `json:"chunks"`
}

// NewFileRecord creates an empty FileRecord for the given path.
func NewFileRecord(path string) *FileRecord {
	return &FileRecord{Path: path}
}

// AddChunk appends a FileChunk occurrence to the record.
func (r *FileRecord) AddChunk(fc FileChunk) {
	r.Chunks = append(r.Chunks, fc)
}

// SortedChunks returns the record's chunks ordered by ascending offset.
// The receiver's slice is not mutated.
func (r *FileRecord) SortedChunks() []FileChunk {
	out := make([]FileChunk, len(r.Chunks))
	copy(out, r.Chunks)
	sortFileChunks(out)
	return out
}

// Size returns the total byte length implied by the record's chunks.
func (r *FileRecord) Size() uint64 {
	var total uint64
	for _, c := range r.Chunks {
		total += c.Length
	}
	return total
}

func sortFileChunks(chunks []FileChunk) {
	// insertion sort: per-file chunk counts are small enough (bounded by
	// file_size/min_size) that this avoids sort.Slice's reflection
	// overhead on the restore hot path.
	for i := 1; i < len(chunks); i++ {
		for j := i; j > 0 && chunks[j-1].Offset > chunks[j].Offset; j-- {
			chunks[j-1], chunks[j] = chunks[j], chunks[j-1]
		}
	}
}
