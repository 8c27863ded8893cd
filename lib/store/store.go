// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"

	"github.com/tx2pack/tx2pack/lib/envelope"
	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

const (
	envelopeExt = ".tx2pack"
	metaExt     = ".meta.json"
)

// NewSnapshotID returns a fresh random snapshot id for callers that
// don't need a caller-chosen name.
func NewSnapshotID() string { return uuid.NewString() }

// SnapshotStore persists named snapshots in a flat directory: each
// snapshot id maps to "<id>.tx2pack" (the envelope) and
// "<id>.meta.json" (its sidecar). Both are written atomically via
// temp-file-then-rename, so a reader never observes a partially
// written snapshot.
type SnapshotStore struct {
	root string
}

// NewSnapshotStore opens a store rooted at dir, creating it if it
// does not already exist.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, snaperr.IO(err)
	}
	return &SnapshotStore{root: dir}, nil
}

func (s *SnapshotStore) envelopePath(id string) string { return filepath.Join(s.root, id+envelopeExt) }
func (s *SnapshotStore) metaPath(id string) string { return filepath.Join(s.root, id+metaExt) }

// Save writes p and metadata to disk under id using w's pipeline
// configuration. metadata.ID must equal id — the sidecar always names
// itself after the path it is stored under. If the sidecar write
// fails, the envelope just written is removed so no partial output
// survives the call.
func (s *SnapshotStore) Save(id string, p *snapshot.PackedSnapshot, metadata SnapshotMetadata, w *envelope.Writer) error {
	if metadata.ID != id {
		return snaperr.New(snaperr.KindInvalidFormat,
			"metadata.ID "+metadata.ID+" does not match snapshot id "+id)
	}

	data, err := w.WriteToBytes(p)
	if err != nil {
		return err
	}

	if err := atomicWrite(s.envelopePath(id), data); err != nil {
		return err
	}

	metaBytes, err := json.Marshal(metadata)
	if err != nil {
		_ = removeIfExists(s.envelopePath(id))
		return snaperr.Wrap(snaperr.KindSerialization, "marshaling snapshot metadata", err)
	}
	if err := atomicWrite(s.metaPath(id), metaBytes); err != nil {
		_ = removeIfExists(s.envelopePath(id))
		return err
	}
	return nil
}

// Load reads and decodes both the envelope and its metadata sidecar
// stored under id. Either file missing is reported as SnapshotNotFound.
func (s *SnapshotStore) Load(id string, r *envelope.Reader) (*snapshot.PackedSnapshot, SnapshotMetadata, error) {
	if _, err := os.Stat(s.envelopePath(id)); os.IsNotExist(err) {
		return nil, SnapshotMetadata{}, snaperr.SnapshotNotFound(id)
	}
	if _, err := os.Stat(s.metaPath(id)); os.IsNotExist(err) {
		return nil, SnapshotMetadata{}, snaperr.SnapshotNotFound(id)
	}

	packed, err := r.ReadFromFile(s.envelopePath(id))
	if err != nil {
		return nil, SnapshotMetadata{}, err
	}

	meta, err := s.LoadMetadata(id)
	if err != nil {
		return nil, SnapshotMetadata{}, err
	}
	return packed, meta, nil
}

// LoadMetadata reads the sidecar for id without touching the envelope.
func (s *SnapshotStore) LoadMetadata(id string) (SnapshotMetadata, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return SnapshotMetadata{}, snaperr.SnapshotNotFound(id)
		}
		return SnapshotMetadata{}, snaperr.IO(err)
	}
	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return SnapshotMetadata{}, snaperr.Wrap(snaperr.KindDeserialization, "decoding snapshot metadata", err)
	}
	return meta, nil
}

// List returns every stored snapshot's metadata, sorted by creation
// time and then by id for snapshots created in the same second. The
// directory listing of sidecars is the index — there is no separate
// index file to fall out of sync with the data.
func (s *SnapshotStore) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, snaperr.IO(err)
	}

	var metas []SnapshotMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metaExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), metaExt)
		meta, err := s.LoadMetadata(id)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt != metas[j].CreatedAt {
			return metas[i].CreatedAt < metas[j].CreatedAt
		}
		return metas[i].ID < metas[j].ID
	})
	return metas, nil
}

// Delete removes both files for id. If neither exists, it returns
// SnapshotNotFound rather than succeeding silently; otherwise it
// removes whatever is present.
func (s *SnapshotStore) Delete(id string) error {
	_, envelopeErr := os.Stat(s.envelopePath(id))
	_, metaErr := os.Stat(s.metaPath(id))
	if os.IsNotExist(envelopeErr) && os.IsNotExist(metaErr) {
		return snaperr.SnapshotNotFound(id)
	}

	if err := removeIfExists(s.envelopePath(id)); err != nil {
		return err
	}
	return removeIfExists(s.metaPath(id))
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return snaperr.IO(err)
	}
	return nil
}

// atomicWrite writes data to path via a temp file in the same
// directory, fsynced and renamed into place.
func atomicWrite(path string, data []byte) error {
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
