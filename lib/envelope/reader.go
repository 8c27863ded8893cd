// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"fmt"
	"os"

	"github.com/tx2pack/tx2pack/lib/codec"
	"github.com/tx2pack/tx2pack/lib/compress"
	"github.com/tx2pack/tx2pack/lib/cryptutil"
	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// Reader decodes a tx2pack envelope back into a snapshot.PackedSnapshot.
// EncryptionKey must be set to read an encrypted envelope and must be
// nil to read an unencrypted one — a mismatch is reported as a
// decryption error rather than silently misreading bytes as
// ciphertext or plaintext.
type Reader struct {
	EncryptionKey *cryptutil.Key
}

// ReadFromBytes parses a complete envelope: header, then the
// decrypt/decompress/deserialize pipeline in reverse of Writer.
func (r *Reader) ReadFromBytes(data []byte) (*snapshot.PackedSnapshot, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	if header.Encrypted && r.EncryptionKey == nil {
		return nil, snaperr.New(snaperr.KindDecryption, "envelope is encrypted but no encryption key was supplied")
	}
	if !header.Encrypted && r.EncryptionKey != nil {
		return nil, snaperr.New(snaperr.KindDecryption, "envelope is not encrypted but an encryption key was supplied")
	}

	start := int(header.DataOffset)
	end := start + int(header.DataSize)
	if start < snapshot.HeaderSize || end > len(data) || end < start {
		return nil, snaperr.New(snaperr.KindInvalidFormat, fmt.Sprintf("envelope data region [%d:%d) is out of bounds for a %d-byte envelope", start, end, len(data)))
	}
	payload := data[start:end]

	var compressed []byte
	if header.Encrypted {
		aad := associatedData(data[:snapshot.HeaderSize])
		compressed, err = cryptutil.Open(payload, r.EncryptionKey, aad)
		if err != nil {
			return nil, snaperr.Wrap(snaperr.KindDecryption, "decrypting envelope body", err)
		}
	} else {
		compressed = payload
	}

	if cryptutil.Checksum(compressed) != header.Checksum {
		return nil, snaperr.ChecksumMismatch()
	}

	body, err := compress.Decompress(compressed, header.Compression)
	if err != nil {
		return nil, err
	}

	packed, err := codec.Decode(body, header.Format)
	if err != nil {
		return nil, err
	}
	if err := snapshot.ValidateStructure(packed); err != nil {
		return nil, err
	}
	packed.Header = header
	return packed, nil
}

// ReadFromFile reads and parses the envelope stored at path.
func (r *Reader) ReadFromFile(path string) (*snapshot.PackedSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, snaperr.IO(err)
	}
	return r.ReadFromBytes(data)
}
