package content

import "testing"

func recordWithChunks(path string, chunks ...FileChunk) *FileRecord {
	r := NewFileRecord(path)
	for _, c := range chunks {
		r.AddChunk(c)
	}
	return r
}

func TestFingerprintStableUnderOrdering(t *testing.T) {
	a := recordWithChunks("f",
		FileChunk{Digest: "aa", Offset: 0, Length: 4},
		FileChunk{Digest: "bb", Offset: 4, Length: 4},
	)
	// same chunks, appended in reverse order
	b := recordWithChunks("f",
		FileChunk{Digest: "bb", Offset: 4, Length: 4},
		FileChunk{Digest: "aa", Offset: 0, Length: 4},
	)

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("fingerprint depends on insertion order, not offset order")
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	a := recordWithChunks("f", FileChunk{Digest: "aa", Offset: 0, Length: 4})
	b := recordWithChunks("f", FileChunk{Digest: "bb", Offset: 0, Length: 4})

	if Fingerprint(a) == Fingerprint(b) {
		t.Fatal("distinct chunk sequences produced equal fingerprints")
	}
}

func TestFingerprintOfEmptyRecord(t *testing.T) {
	r := NewFileRecord("empty")
	fp := Fingerprint(r)
	if len(fp) != DigestHexLen {
		t.Fatalf("fingerprint length = %d, want %d", len(fp), DigestHexLen)
	}
	// empty file must still produce a deterministic fingerprint.
	if fp != Fingerprint(NewFileRecord("empty")) {
		t.Fatal("fingerprint of empty record is not stable")
	}
}
