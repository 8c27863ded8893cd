// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

// MagicNumber is the fixed 8-byte preamble every envelope begins with.
const MagicNumber = "TX2PACK\x00"

// FormatVersion is the format version this implementation writes and
// the only version it will read (spec: "no schema evolution beyond a
// monotonic format version").
const FormatVersion uint32 = 1

// Format selects the serialization used for a PackedSnapshot's body.
// The header itself is always Binary-encoded regardless of this value
// (spec §4.1, "bootstrap").
type Format uint8

const (
	FormatBinary      Format = 0
	FormatMessagePack Format = 1
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatMessagePack:
		return "messagepack"
	default:
		return "unknown"
	}
}

// CompressionCodec selects the compression algorithm applied to the
// serialized body.
type CompressionCodec uint8

const (
	CompressionNone CompressionCodec = 0
	CompressionLZ4  CompressionCodec = 1
	CompressionZstd CompressionCodec = 2
)

func (c CompressionCodec) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Compression is the {codec, level} pair stored as the header's 2-byte
// compression field. Level is meaningful only for CompressionZstd (1
// to 19); it is ignored for None and LZ4.
type Compression struct {
	Codec CompressionCodec
	Level uint8
}

// None is the identity compression setting.
func None() Compression { return Compression{Codec: CompressionNone} }

// LZ4 selects LZ4 block compression.
func LZ4() Compression { return Compression{Codec: CompressionLZ4} }

// Zstd selects Zstd compression at the given level (1-19).
func Zstd(level int) Compression {
	return Compression{Codec: CompressionZstd, Level: uint8(level)}
}

// HeaderSize is the fixed, on-disk byte size of SnapshotHeader:
//
//	magic(8) + version(4) + format(1) + compression(2) + encrypted(1) +
//	checksum(32) + timestamp(8) + entity_count(8) + component_count(8) +
//	archetype_count(8) + data_offset(8) + data_size(8) = 96
const HeaderSize = 8 + 4 + 1 + 2 + 1 + 32 + 8 + 8 + 8 + 8 + 8 + 8

// SnapshotHeader is the fixed-shape preamble of every envelope. Spec
// §6.
type SnapshotHeader struct {
	Magic           [8]byte
	Version         uint32
	Format          Format
	Compression     Compression
	Encrypted       bool
	Checksum        [32]byte
	Timestamp       int64
	EntityCount     uint64
	ComponentCount  uint64
	ArchetypeCount  uint64
	DataOffset      uint64
	DataSize        uint64
}

// NewHeader returns a header with the magic and version fields set
// and everything else zeroed, ready for a Writer to fill in.
func NewHeader() SnapshotHeader {
	var h SnapshotHeader
	copy(h.Magic[:], MagicNumber)
	h.Version = FormatVersion
	return h
}
