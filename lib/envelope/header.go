// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"encoding/binary"
	"fmt"

	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// EncodeHeader serializes h into its fixed snapshot.HeaderSize-byte
// on-disk form. Field order and widths are fixed by the format; see
// snapshot.HeaderSize's breakdown. DataSize is always the last field,
// so AAD (everything but DataSize) is simply the first
// snapshot.HeaderSize-8 bytes of this encoding.
func EncodeHeader(h snapshot.SnapshotHeader) []byte {
	buf := make([]byte, snapshot.HeaderSize)
	off := 0

	copy(buf[off:off+8], h.Magic[:])
	off += 8

	binary.LittleEndian.PutUint32(buf[off:], h.Version)
	off += 4

	buf[off] = byte(h.Format)
	off++

	buf[off] = byte(h.Compression.Codec)
	buf[off+1] = h.Compression.Level
	off += 2

	if h.Encrypted {
		buf[off] = 1
	}
	off++

	copy(buf[off:off+32], h.Checksum[:])
	off += 32

	binary.LittleEndian.PutUint64(buf[off:], uint64(h.Timestamp))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], h.EntityCount)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], h.ComponentCount)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], h.ArchetypeCount)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], h.DataOffset)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], h.DataSize)
	off += 8

	if off != snapshot.HeaderSize {
		panic(fmt.Sprintf("envelope: header encoder wrote %d bytes, want %d", off, snapshot.HeaderSize))
	}
	return buf
}

// DecodeHeader parses the fixed-size header out of the front of data.
// It always consumes exactly snapshot.HeaderSize bytes, and returns an
// error if data is shorter than that or the magic or version is wrong.
func DecodeHeader(data []byte) (snapshot.SnapshotHeader, error) {
	var h snapshot.SnapshotHeader
	if len(data) < snapshot.HeaderSize {
		return h, headerTooShortErr(len(data))
	}

	off := 0
	copy(h.Magic[:], data[off:off+8])
	off += 8

	h.Version = binary.LittleEndian.Uint32(data[off:])
	off += 4

	h.Format = snapshot.Format(data[off])
	off++

	h.Compression = snapshot.Compression{
		Codec: snapshot.CompressionCodec(data[off]),
		Level: data[off+1],
	}
	off += 2

	h.Encrypted = data[off] != 0
	off++

	copy(h.Checksum[:], data[off:off+32])
	off += 32

	h.Timestamp = int64(binary.LittleEndian.Uint64(data[off:]))
	off += 8
	h.EntityCount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	h.ComponentCount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	h.ArchetypeCount = binary.LittleEndian.Uint64(data[off:])
	off += 8
	h.DataOffset = binary.LittleEndian.Uint64(data[off:])
	off += 8
	h.DataSize = binary.LittleEndian.Uint64(data[off:])
	off += 8

	if string(h.Magic[:]) != snapshot.MagicNumber {
		return h, invalidMagicErr()
	}
	if h.Version != snapshot.FormatVersion {
		return h, versionMismatchErr(h.Version)
	}

	return h, nil
}

// associatedData returns the bytes of an encoded header that are
// bound as AEAD additional authenticated data: every field except
// DataSize, which is not yet known at the point encryption happens
// (it is the size of the ciphertext the encryption step produces).
func associatedData(encodedHeader []byte) []byte {
	return encodedHeader[:snapshot.HeaderSize-8]
}
