package cdc

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

func defaultConfig() Config {
	return Config{MinSize: 256, AvgSize: 1024, MaxSize: 4096}
}

func readAll(t *testing.T, data []byte, cfg Config) []Chunk {
	t.Helper()
	c, err := NewChunker(bytes.NewReader(data), cfg)
	if err != nil {
		t.Fatalf("NewChunker failed: %v", err)
	}
	var chunks []Chunk
	for {
		ch, err := c.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		// Data aliases the internal buffer; copy it out before the next
		// call invalidates it.
		cp := make([]byte, len(ch.Data))
		copy(cp, ch.Data)
		ch.Data = cp
		chunks = append(chunks, ch)
	}
	return chunks
}

func deterministicData(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, n)
	r.Read(data)
	return data
}

func TestChunkerEmptyInput(t *testing.T) {
	chunks := readAll(t, nil, defaultConfig())
	if len(chunks) != 0 {
		t.Fatalf("empty input produced %d chunks, want 0", len(chunks))
	}
}

func TestChunkerBoundsRespected(t *testing.T) {
	cfg := defaultConfig()
	data := deterministicData(256*1024, 1)
	chunks := readAll(t, data, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks over 256KiB of data, got %d", len(chunks))
	}

	var total uint64
	for i, c := range chunks {
		isLast := i == len(chunks)-1
		if !isLast {
			if c.Length < cfg.MinSize || c.Length > cfg.MaxSize {
				t.Fatalf("chunk %d length %d outside [%d, %d]", i, c.Length, cfg.MinSize, cfg.MaxSize)
			}
		} else {
			if c.Length == 0 || c.Length > cfg.MaxSize {
				t.Fatalf("final chunk length %d outside (0, %d]", c.Length, cfg.MaxSize)
			}
		}
		total += uint64(c.Length)
	}
	if total != uint64(len(data)) {
		t.Fatalf("chunks cover %d bytes, want %d", total, len(data))
	}
}

func TestChunkerOffsetsAreContiguous(t *testing.T) {
	data := deterministicData(128*1024, 2)
	chunks := readAll(t, data, defaultConfig())

	var cursor uint64
	for i, c := range chunks {
		if c.Offset != cursor {
			t.Fatalf("chunk %d offset = %d, want %d", i, c.Offset, cursor)
		}
		cursor += uint64(c.Length)
	}
}

func TestChunkerDeterministic(t *testing.T) {
	data := deterministicData(64*1024, 3)
	a := readAll(t, data, defaultConfig())
	b := readAll(t, data, defaultConfig())

	if len(a) != len(b) {
		t.Fatalf("two runs over identical data produced different chunk counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Offset != b[i].Offset || a[i].Length != b[i].Length {
			t.Fatalf("chunk %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestChunkerEditLocality(t *testing.T) {
	data := deterministicData(4*1024*1024, 4)
	before := readAll(t, data, defaultConfig())

	edited := make([]byte, len(data))
	copy(edited, data)
	edited[2*1024*1024] ^= 0xff

	after := readAll(t, edited, defaultConfig())

	beforeDigests := make(map[string]bool, len(before))
	for _, c := range before {
		beforeDigests[string(c.Data)] = true
	}

	shared := 0
	for _, c := range after {
		if beforeDigests[string(c.Data)] {
			shared++
		}
	}
	if shared == 0 {
		t.Fatal("a single-byte edit invalidated every chunk; CDC should localize the change")
	}
	if float64(shared) == float64(len(after)) {
		t.Fatal("edited data produced an identical chunk sequence to the original")
	}
}

func TestChunkerRejectsInvalidBounds(t *testing.T) {
	cases := []Config{
		{MinSize: 0, AvgSize: 1024, MaxSize: 4096},
		{MinSize: 1024, AvgSize: 0, MaxSize: 4096},
		{MinSize: 1024, AvgSize: 2048, MaxSize: 0},
		{MinSize: 4096, AvgSize: 1024, MaxSize: 4096},
		{MinSize: 256, AvgSize: 4096, MaxSize: 1024},
	}
	for _, cfg := range cases {
		if _, err := NewChunker(bytes.NewReader(nil), cfg); err == nil {
			t.Fatalf("expected NewChunker to reject %+v", cfg)
		}
	}
}

func TestChunkerSmallInputProducesSingleChunk(t *testing.T) {
	data := []byte("Hello, world!")
	chunks := readAll(t, data, defaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks for a 13-byte input, want 1", len(chunks))
	}
	if chunks[0].Length != uint32(len(data)) {
		t.Fatalf("chunk length = %d, want %d", chunks[0].Length, len(data))
	}
	if !bytes.Equal(chunks[0].Data, data) {
		t.Fatal("chunk data does not match input")
	}
}
