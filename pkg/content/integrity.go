package content

import "fmt"

// VerifyChunkBytes checks that data's digest and length match what the
// chunk index recorded, returning an IntegrityViolation error if not.
// RestoreEngine does not call this by default (§4.8: "restore does not
// verify digests after read"); it is exposed for the optional
// integrity-checked restore path.
func VerifyChunkBytes(expected Chunk, data []byte) error {
	if uint64(len(data)) != expected.Length {
		return NewIntegrityViolationError(
			fmt.Sprintf("chunk %s: length mismatch: got %d, want %d", expected.Digest, len(data), expected.Length), nil)
	}
	actual := ComputeDigest(data)
	if actual != expected.Digest {
		return NewIntegrityViolationError(
			fmt.Sprintf("chunk %s: digest mismatch: recomputed %s", expected.Digest, actual), nil)
	}
	return nil
}

// VerifyFileRecord re-reads every chunk a FileRecord references from
// store and verifies its bytes, failing fast on the first mismatch.
func VerifyFileRecord(rec *FileRecord, chunkMap map[Digest]Chunk, store BlobStore) error {
	for _, fc := range rec.Chunks {
		chunk, ok := chunkMap[fc.Digest]
		if !ok {
			return NewIntegrityViolationError(
				fmt.Sprintf("file %q: chunk %s missing from chunk_map", rec.Path, fc.Digest), nil)
		}
		data, err := store.Read(HashPath(fc.Digest))
		if err != nil {
			return NewIoError(fmt.Sprintf("reading chunk %s for verification", fc.Digest), err)
		}
		if err := VerifyChunkBytes(chunk, data); err != nil {
			return err
		}
	}
	return nil
}
