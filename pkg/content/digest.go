package content

import (
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// DigestSize is the length in bytes of the underlying BLAKE3-256 hash.
const DigestSize = 32

// DigestHexLen is the length of a Digest's string form: two hex
// characters per byte.
const DigestHexLen = DigestSize * 2

// Digest is an opaque 256-bit content identifier rendered as a
// 64-character lowercase hexadecimal string. Equality and ordering are
// defined on the string form.
type Digest string

// ComputeDigest hashes data with BLAKE3-256 and returns its Digest.
func ComputeDigest(data []byte) Digest {
	sum := blake3.Sum256(data)
	return Digest(hex.EncodeToString(sum[:]))
}

// ParseDigest validates and normalizes a hex digest string.
func ParseDigest(s string) (Digest, error) {
	if len(s) != DigestHexLen {
		return "", NewError(ErrKindChunkerError, fmt.Sprintf("digest %q has length %d, want %d", s, len(s), DigestHexLen), nil)
	}
	lower := strings.ToLower(s)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", NewError(ErrKindChunkerError, fmt.Sprintf("digest %q is not valid hex", s), err)
	}
	return Digest(lower), nil
}

// IsValid reports whether d is a well-formed 64-character lowercase hex
// digest.
func (d Digest) IsValid() bool {
	if len(d) != DigestHexLen {
		return false
	}
	for _, r := range string(d) {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// String returns the digest's hex form.
func (d Digest) String() string {
	return string(d)
}

// Bytes decodes the digest back to its raw 32 bytes.
func (d Digest) Bytes() ([]byte, error) {
	b, err := hex.DecodeString(string(d))
	if err != nil {
		return nil, NewError(ErrKindChunkerError, "malformed digest", err)
	}
	return b, nil
}

// HashPath derives the fan-out relative path for a digest: the first
// two hex characters become an intermediate directory, bounding the
// number of entries in any one directory of a large repository. The
// function is pure and total over any well-formed Digest.
func HashPath(d Digest) string {
	s := string(d)
	if len(s) < 2 {
		return s
	}
	return s[:2] + "/" + s
}
