package content

import "lukechampine.com/blake3"

// Fingerprint computes a stable digest over a FileRecord's chunk
// digests, taken in ascending offset order. Two records with equal
// fingerprints have an equal ordered sequence of chunk digests; used as
// a cheap "did this file change" signal on incremental backup runs.
func Fingerprint(r *FileRecord) Digest {
	h := blake3.New(DigestSize, nil)
	for _, fc := range r.SortedChunks() {
		h.Write([]byte(fc.Digest))
	}
	sum := h.Sum(nil)
	return Digest(hexEncode(sum))
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
