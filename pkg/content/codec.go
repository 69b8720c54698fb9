package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// ManifestFileName is the canonical on-disk name for the binary-encoded
// manifest; ManifestJSONFileName is the legacy/text form. Both are
// accepted on read.
const (
	ManifestFileName     = "metadata"
	ManifestJSONFileName = "metadata.json"
)

// wireChunkRecord is the on-disk shape of a FileChunk inside a
// FileRecord's "chunks" object.
type wireChunkRecord struct {
	Hash   Digest `json:"hash" msgpack:"hash"`
	Offset uint64 `json:"offset" msgpack:"offset"`
	Length uint64 `json:"length" msgpack:"length"`
}

// wireFileRecord mirrors the schema's file_metadata_map entry. Chunks
// is keyed by decimal offset rather than by digest: this keeps the
// object-shaped wire schema from §6 while fixing the lossy digest-keyed
// collision the source used (see SPEC_FULL.md §D).
type wireFileRecord struct {
	Path   string                     `json:"path" msgpack:"path"`
	Chunks map[string]wireChunkRecord `json:"chunks" msgpack:"chunks"`
}

type wireChunk struct {
	Hash   Digest `json:"hash" msgpack:"hash"`
	Length uint64 `json:"length" msgpack:"length"`
}

type wireManifest struct {
	Version         uint32                    `json:"version" msgpack:"version"`
	Codec           string                    `json:"codec,omitempty" msgpack:"codec,omitempty"`
	ChunkMap        map[Digest]wireChunk      `json:"chunk_map" msgpack:"chunk_map"`
	FileMetadataMap map[string]wireFileRecord `json:"file_metadata_map" msgpack:"file_metadata_map"`
	Symlinks        []Symlink                 `json:"symlinks" msgpack:"symlinks"`
}

func toWire(m *Manifest) wireManifest {
	w := wireManifest{
		Version:         m.Version,
		Codec:           m.Codec,
		ChunkMap:        make(map[Digest]wireChunk, len(m.ChunkMap)),
		FileMetadataMap: make(map[string]wireFileRecord, len(m.Files)),
		Symlinks:        m.Symlinks,
	}
	for d, c := range m.ChunkMap {
		w.ChunkMap[d] = wireChunk{Hash: c.Digest, Length: c.Length}
	}
	for path, rec := range m.Files {
		wfr := wireFileRecord{Path: rec.Path, Chunks: make(map[string]wireChunkRecord, len(rec.Chunks))}
		for _, fc := range rec.Chunks {
			key := fmt.Sprintf("%d", fc.Offset)
			wfr.Chunks[key] = wireChunkRecord{Hash: fc.Digest, Offset: fc.Offset, Length: fc.Length}
		}
		w.FileMetadataMap[path] = wfr
	}
	return w
}

func fromWire(w wireManifest) *Manifest {
	m := &Manifest{
		Version:  w.Version,
		Codec:    w.Codec,
		ChunkMap: make(map[Digest]Chunk, len(w.ChunkMap)),
		Files:    make(map[string]*FileRecord, len(w.FileMetadataMap)),
		Symlinks: w.Symlinks,
	}
	for d, c := range w.ChunkMap {
		m.ChunkMap[d] = Chunk{Digest: c.Hash, Length: c.Length}
	}
	for path, wfr := range w.FileMetadataMap {
		rec := NewFileRecord(wfr.Path)
		for _, wcr := range wfr.Chunks {
			rec.AddChunk(FileChunk{Digest: wcr.Hash, Offset: wcr.Offset, Length: wcr.Length})
		}
		m.Files[path] = rec
	}
	return m
}

// MarshalJSON encodes the manifest in the self-describing text form.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(m))
}

// UnmarshalJSON decodes the manifest from its text form.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var w wireManifest
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = *fromWire(w)
	return nil
}

// EncodeMsgpack encodes the manifest in the compact binary form.
func (m *Manifest) EncodeMsgpack() ([]byte, error) {
	return msgpack.Marshal(toWire(m))
}

// DecodeMsgpack decodes the manifest from its binary form.
func DecodeMsgpack(data []byte) (*Manifest, error) {
	var w wireManifest
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w), nil
}

// LoadManifest reads a manifest from outputRoot. It first tries the
// binary file name, then the JSON file name; within each present file it
// tries text decoding, then binary decoding, per §4.6. A missing
// manifest is not an error: it yields a fresh empty Manifest.
func LoadManifest(root string) (*Manifest, error) {
	data, path, err := readManifestBytes(root)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, NewIoError("reading manifest", err)
	}

	if m, jsonErr := decodeText(data); jsonErr == nil {
		return m, nil
	}
	if m, binErr := DecodeMsgpack(data); binErr == nil {
		return m, nil
	}
	return nil, NewManifestCorruptError(fmt.Sprintf("manifest at %s decodes as neither JSON nor MessagePack", path), nil)
}

func decodeText(data []byte) (*Manifest, error) {
	var w wireManifest
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return fromWire(w), nil
}

func readManifestBytes(root string) ([]byte, string, error) {
	binPath := filepath.Join(root, ManifestFileName)
	if data, err := os.ReadFile(binPath); err == nil {
		return data, binPath, nil
	}
	jsonPath := filepath.Join(root, ManifestJSONFileName)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, jsonPath, err
	}
	return data, jsonPath, nil
}

// SaveManifest writes the manifest to outputRoot as JSON (metadata.json)
// when useJSON is set and as MessagePack (metadata) otherwise,
// atomically: it writes to a temp file
// in the same directory and renames over the final path, so a crash
// mid-write never leaves a truncated manifest in place of a good one.
func SaveManifest(root string, m *Manifest, useJSON bool) error {
	var (
		data []byte
		err  error
		name string
	)
	if useJSON {
		data, err = json.MarshalIndent(toWire(m), "", "  ")
		name = ManifestJSONFileName
	} else {
		data, err = m.EncodeMsgpack()
		name = ManifestFileName
	}
	if err != nil {
		return NewIoError("encoding manifest", err)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return NewIoError("creating repository root", err)
	}

	finalPath := filepath.Join(root, name)
	tmp, err := os.CreateTemp(root, ".manifest-*.tmp")
	if err != nil {
		return NewIoError("creating temp manifest file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return NewIoError("writing temp manifest file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return NewIoError("closing temp manifest file", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return NewIoError("renaming manifest into place", err)
	}
	return nil
}
