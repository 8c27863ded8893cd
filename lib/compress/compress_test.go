// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/tx2pack/tx2pack/lib/snapshot"
)

func TestRoundTripNone(t *testing.T) {
	data := []byte("uncompressed data should pass through unchanged")

	compressed, err := Compress(data, snapshot.None())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(compressed, data) {
		t.Fatalf("Compress(None) mutated the data")
	}

	decompressed, err := Decompress(compressed, snapshot.None())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Fatalf("round trip mismatch: got %q, want %q", decompressed, data)
	}
}

func TestRoundTripLZ4(t *testing.T) {
	data := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 200))

	compressed, err := Compress(data, snapshot.LZ4())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Fatalf("expected compression to shrink highly repetitive input")
	}

	decompressed, err := Decompress(compressed, snapshot.LZ4())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Fatal("round trip mismatch")
	}
}

func TestRoundTripLZ4Incompressible(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	compressed, err := Compress(data, snapshot.LZ4())
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	decompressed, err := Decompress(compressed, snapshot.LZ4())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Fatalf("round trip mismatch on tiny input: got %v, want %v", decompressed, data)
	}
}

func TestRoundTripZstdLevels(t *testing.T) {
	data := []byte(strings.Repeat("ECS snapshot component payload filler text. ", 500))

	for _, level := range []int{1, 9, 19} {
		level := level
		t.Run(fmt.Sprintf("level%d", level), func(t *testing.T) {
			compressed, err := Compress(data, snapshot.Zstd(level))
			if err != nil {
				t.Fatalf("Compress level %d: %v", level, err)
			}
			if len(compressed) >= len(data) {
				t.Fatalf("level %d: expected compression to shrink repetitive input", level)
			}

			decompressed, err := Decompress(compressed, snapshot.Zstd(level))
			if err != nil {
				t.Fatalf("Decompress level %d: %v", level, err)
			}
			if !bytes.Equal(decompressed, data) {
				t.Fatalf("level %d: round trip mismatch", level)
			}
		})
	}
}

func TestDecompressLZ4RejectsShortPayload(t *testing.T) {
	if _, err := Decompress([]byte{0x01, 0x02}, snapshot.LZ4()); err == nil {
		t.Fatal("expected an error for a payload shorter than the length prefix")
	}
}

func TestRoundTripEmptyInput(t *testing.T) {
	for _, c := range []snapshot.Compression{snapshot.None(), snapshot.LZ4(), snapshot.Zstd(3)} {
		compressed, err := Compress(nil, c)
		if err != nil {
			t.Fatalf("Compress(%v) on empty input: %v", c.Codec, err)
		}
		decompressed, err := Decompress(compressed, c)
		if err != nil {
			t.Fatalf("Decompress(%v) on empty input: %v", c.Codec, err)
		}
		if len(decompressed) != 0 {
			t.Fatalf("Decompress(%v) on empty input returned %d bytes", c.Codec, len(decompressed))
		}
	}
}
