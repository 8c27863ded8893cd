// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress applies and reverses the compression step of the
// envelope pipeline: none, LZ4 block compression, or zstd at a
// caller-chosen level.
package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// lengthPrefixSize is the width of the little-endian uncompressed-size
// prefix written ahead of every LZ4 payload. pierrec/lz4's block API
// (CompressBlock/UncompressBlock) is not self-describing the way its
// streaming frame API is — the decompressor must already know the
// output size — so the size travels with the payload instead of
// needing to be threaded through from the envelope header separately.
const lengthPrefixSize = 8

// Compress applies c to data and returns the compressed bytes.
func Compress(data []byte, c snapshot.Compression) ([]byte, error) {
	switch c.Codec {
	case snapshot.CompressionNone:
		return data, nil
	case snapshot.CompressionLZ4:
		return compressLZ4(data)
	case snapshot.CompressionZstd:
		return compressZstd(data, c.Level)
	default:
		return nil, compressionErr(fmt.Errorf("unsupported compression codec %q", c.Codec))
	}
}

// Decompress reverses Compress.
func Decompress(data []byte, c snapshot.Compression) ([]byte, error) {
	switch c.Codec {
	case snapshot.CompressionNone:
		return data, nil
	case snapshot.CompressionLZ4:
		return decompressLZ4(data)
	case snapshot.CompressionZstd:
		return decompressZstd(data)
	default:
		return nil, decompressionErr(fmt.Errorf("unsupported compression codec %q", c.Codec))
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	dest := make([]byte, lengthPrefixSize+bound)
	binary.LittleEndian.PutUint64(dest[:lengthPrefixSize], uint64(len(data)))

	written, err := lz4.CompressBlock(data, dest[lengthPrefixSize:], nil)
	if err != nil {
		return nil, compressionErr(fmt.Errorf("lz4: %w", err))
	}
	if written == 0 {
		// CompressBlock reports zero when it determines the input is
		// incompressible. Store it verbatim with a size prefix so
		// decompressLZ4 still knows how to round-trip it.
		dest = dest[:lengthPrefixSize]
		dest = append(dest, data...)
		return dest, nil
	}

	return dest[:lengthPrefixSize+written], nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	if len(data) < lengthPrefixSize {
		return nil, decompressionErr(fmt.Errorf("lz4: payload shorter than the length prefix"))
	}
	uncompressedSize := binary.LittleEndian.Uint64(data[:lengthPrefixSize])
	payload := data[lengthPrefixSize:]

	if uint64(len(payload)) == uncompressedSize {
		// Incompressible path from compressLZ4: payload is the raw
		// bytes, not an LZ4 block.
		return append([]byte(nil), payload...), nil
	}

	dest := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(payload, dest)
	if err != nil {
		return nil, decompressionErr(fmt.Errorf("lz4: %w", err))
	}
	if uint64(read) != uncompressedSize {
		return nil, decompressionErr(fmt.Errorf("lz4: got %d bytes, expected %d", read, uncompressedSize))
	}
	return dest, nil
}

// zstdDecoder is shared across calls; zstd.Decoder is safe for
// concurrent use and initializing one per decode would be wasteful.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

func compressZstd(data []byte, level uint8) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(int(level))))
	if err != nil {
		return nil, compressionErr(fmt.Errorf("zstd: building encoder at level %d: %w", level, err))
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, decompressionErr(fmt.Errorf("zstd: %w", err))
	}
	return result, nil
}

func compressionErr(err error) error {
	return snaperr.Wrap(snaperr.KindCompression, "compression failed", err)
}

func decompressionErr(err error) error {
	return snaperr.Wrap(snaperr.KindDecompression, "decompression failed", err)
}
