// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope assembles and parses the on-disk tx2pack container:
// header, serialized body, optional compression, optional encryption,
// framed together as a single contiguous byte stream.
package envelope

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tx2pack/tx2pack/lib/codec"
	"github.com/tx2pack/tx2pack/lib/compress"
	"github.com/tx2pack/tx2pack/lib/cryptutil"
	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// Writer encodes a snapshot.PackedSnapshot into a tx2pack envelope.
// The zero value uses FormatBinary with no compression and no
// encryption; set the fields to opt into the others.
type Writer struct {
	Format        snapshot.Format
	Compression   snapshot.Compression
	EncryptionKey *cryptutil.Key
}

// WriteToBytes runs the full pipeline — serialize, compress, checksum,
// optionally encrypt, frame — and returns the complete envelope.
func (w *Writer) WriteToBytes(p *snapshot.PackedSnapshot) ([]byte, error) {
	body, err := codec.Encode(p, w.Format)
	if err != nil {
		return nil, fmt.Errorf("envelope: encoding body: %w", err)
	}

	compressed, err := compress.Compress(body, w.Compression)
	if err != nil {
		return nil, fmt.Errorf("envelope: compressing body: %w", err)
	}

	header := p.Header
	header.Format = w.Format
	header.Compression = w.Compression
	header.Encrypted = w.EncryptionKey != nil
	header.Checksum = cryptutil.Checksum(compressed)
	header.DataOffset = snapshot.HeaderSize

	var payload []byte
	if w.EncryptionKey != nil {
		aad := associatedData(EncodeHeader(header))
		payload, err = cryptutil.Seal(compressed, w.EncryptionKey, aad)
		if err != nil {
			return nil, snaperr.Wrap(snaperr.KindEncryption, "encrypting envelope body", err)
		}
	} else {
		payload = compressed
	}
	header.DataSize = uint64(len(payload))

	out := make([]byte, 0, snapshot.HeaderSize+len(payload))
	out = append(out, EncodeHeader(header)...)
	out = append(out, payload...)
	return out, nil
}

// WriteToFile runs the pipeline and writes the result atomically to
// path: the envelope is written to a temporary file in the same
// directory, fsynced, then renamed over the destination, so readers
// never observe a partially-written file.
func (w *Writer) WriteToFile(path string, p *snapshot.PackedSnapshot) error {
	data, err := w.WriteToBytes(p)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return snaperr.IO(err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return snaperr.IO(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return snaperr.IO(err)
	}
	if err := tmp.Close(); err != nil {
		return snaperr.IO(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return snaperr.IO(err)
	}

	success = true
	return nil
}
