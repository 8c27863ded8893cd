// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/tx2pack/tx2pack/lib/cryptutil"
	"github.com/tx2pack/tx2pack/lib/envelope"
	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

const (
	envelopeExt = ".tx2pack"
	metaExt     = ".meta.json"
)

type indexEntry struct {
	ParentID  string
	CreatedAt time.Time
}

// Manager persists checkpoints under a root directory and maintains
// an in-memory id → (parent_id, created_at) index, rebuilt from
// sidecar metadata on construction.
//
// If RootKey is set, every checkpoint is encrypted under a key
// derived from RootKey and the checkpoint's own id
// (cryptutil.DeriveCheckpointKey), so that no two checkpoints share
// an encryption key and the manager itself never stores a key.
type Manager struct {
	root        string
	format      snapshot.Format
	compression snapshot.Compression
	rootKey     *cryptutil.Key

	index map[string]indexEntry
}

// Config carries the envelope pipeline settings a Manager writes
// every checkpoint with.
type Config struct {
	Format      snapshot.Format
	Compression snapshot.Compression
	// RootKey, if set, is borrowed (not closed) and used to derive a
	// unique per-checkpoint key for every checkpoint this manager
	// creates or loads.
	RootKey *cryptutil.Key
}

// NewManager opens a checkpoint directory at dir, creating it if
// necessary, and rebuilds its index by scanning "*.meta.json" files.
func NewManager(dir string, cfg Config) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, snaperr.IO(err)
	}

	m := &Manager{
		root:        dir,
		format:      cfg.Format,
		compression: cfg.Compression,
		rootKey:     cfg.RootKey,
		index:       make(map[string]indexEntry),
	}
	if err := m.rebuildIndex(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) rebuildIndex() error {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return snaperr.IO(err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metaExt) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), metaExt)
		meta, err := m.readMetadata(id)
		if err != nil {
			return err
		}
		m.index[id] = indexEntry{ParentID: meta.ParentID, CreatedAt: meta.CreatedAt}
	}
	return nil
}

func (m *Manager) envelopePath(id string) string { return filepath.Join(m.root, id+envelopeExt) }
func (m *Manager) metaPath(id string) string { return filepath.Join(m.root, id+metaExt) }

// CreateCheckpoint persists a new checkpoint. id must not already
// exist. If parentID is non-empty, it must already exist in the
// index.
func (m *Manager) CreateCheckpoint(id string, p *snapshot.PackedSnapshot, parentID string) error {
	if _, exists := m.index[id]; exists {
		return snaperr.InvalidCheckpoint("checkpoint id already exists: " + id)
	}
	if parentID != "" {
		if _, exists := m.index[parentID]; !exists {
			return snaperr.InvalidCheckpoint("parent checkpoint does not exist: " + parentID)
		}
	}

	writer := &envelope.Writer{Format: m.format, Compression: m.compression}
	var derivedKey *cryptutil.Key
	if m.rootKey != nil {
		key, err := cryptutil.DeriveCheckpointKey(m.rootKey, id)
		if err != nil {
			return snaperr.Wrap(snaperr.KindEncryption, "deriving checkpoint key", err)
		}
		derivedKey = key
		defer derivedKey.Close()
		writer.EncryptionKey = derivedKey
	}

	data, err := writer.WriteToBytes(p)
	if err != nil {
		return err
	}

	if err := atomicWrite(m.envelopePath(id), data); err != nil {
		return err
	}

	fingerprint := cryptutil.ComputeFingerprint(data)
	createdAt := time.Now().UTC()
	meta := Metadata{
		ID:          id,
		ParentID:    parentID,
		CreatedAt:   createdAt,
		Fingerprint: hex.EncodeToString(fingerprint[:]),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return snaperr.Wrap(snaperr.KindSerialization, "marshaling checkpoint metadata", err)
	}
	if err := atomicWrite(m.metaPath(id), metaBytes); err != nil {
		return err
	}

	m.index[id] = indexEntry{ParentID: parentID, CreatedAt: createdAt}
	return nil
}

// LoadCheckpoint reads a checkpoint's envelope and metadata.
func (m *Manager) LoadCheckpoint(id string) (*Checkpoint, error) {
	entry, exists := m.index[id]
	if !exists {
		return nil, snaperr.SnapshotNotFound(id)
	}

	meta, err := m.readMetadata(id)
	if err != nil {
		return nil, err
	}

	reader := &envelope.Reader{}
	var derivedKey *cryptutil.Key
	if m.rootKey != nil {
		key, err := cryptutil.DeriveCheckpointKey(m.rootKey, id)
		if err != nil {
			return nil, snaperr.Wrap(snaperr.KindDecryption, "deriving checkpoint key", err)
		}
		derivedKey = key
		defer derivedKey.Close()
		reader.EncryptionKey = derivedKey
	}

	packed, err := reader.ReadFromFile(m.envelopePath(id))
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		ID:          id,
		ParentID:    entry.ParentID,
		CreatedAt:   entry.CreatedAt,
		Fingerprint: fingerprintFromHex(meta.Fingerprint),
		Snapshot:    packed,
	}, nil
}

// DeleteCheckpoint removes a checkpoint's files. Any child checkpoint
// that named id as its parent keeps that parent_id, now pointing at a
// checkpoint that no longer exists — history is preserved read-only
// rather than rewritten.
func (m *Manager) DeleteCheckpoint(id string) error {
	if _, exists := m.index[id]; !exists {
		return snaperr.SnapshotNotFound(id)
	}
	if err := removeIfExists(m.envelopePath(id)); err != nil {
		return err
	}
	if err := removeIfExists(m.metaPath(id)); err != nil {
		return err
	}
	delete(m.index, id)
	return nil
}

// ListCheckpoints returns every checkpoint's metadata, sorted
// ascending by created_at (ties broken by id).
func (m *Manager) ListCheckpoints() ([]Metadata, error) {
	metas := make([]Metadata, 0, len(m.index))
	for id := range m.index {
		meta, err := m.readMetadata(id)
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		if !metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].CreatedAt.Before(metas[j].CreatedAt)
		}
		return metas[i].ID < metas[j].ID
	})
	return metas, nil
}

// Chain walks parent_id links from id to the root, returning ids
// newest first (id itself, then its parent, then its grandparent, and
// so on). Bounds the walk to len(index)+1 steps (the extra step lets a
// chain end at a deleted, no longer indexed parent) and fails with
// InvalidCheckpoint if that bound is exceeded, since a normally
// constructed DAG can never produce a chain longer than the number of
// checkpoints that exist — exceeding it means a cycle, which can only
// come from corrupted metadata.
func (m *Manager) Chain(id string) ([]string, error) {
	if _, exists := m.index[id]; !exists {
		return nil, snaperr.SnapshotNotFound(id)
	}

	chain := []string{id}
	current := id
	for step := 0; ; step++ {
		if step > len(m.index) {
			return nil, snaperr.InvalidCheckpoint("parent chain exceeds the index size, indicating a cycle: " + id)
		}
		entry := m.index[current]
		if entry.ParentID == "" {
			return chain, nil
		}
		chain = append(chain, entry.ParentID)
		current = entry.ParentID
	}
}

// PruneOldCheckpoints retains the keep most recent checkpoints by
// created_at and deletes the rest. keep == 0 deletes everything.
func (m *Manager) PruneOldCheckpoints(keep uint32) error {
	metas, err := m.ListCheckpoints()
	if err != nil {
		return err
	}

	// ListCheckpoints is ascending by created_at; the most recent
	// `keep` entries are the tail of that slice.
	cut := len(metas) - int(keep)
	if cut < 0 {
		cut = 0
	}

	for _, meta := range metas[:cut] {
		if err := m.DeleteCheckpoint(meta.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) readMetadata(id string) (Metadata, error) {
	data, err := os.ReadFile(m.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, snaperr.SnapshotNotFound(id)
		}
		return Metadata{}, snaperr.IO(err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, snaperr.Wrap(snaperr.KindDeserialization, "decoding checkpoint metadata", err)
	}
	return meta, nil
}

func fingerprintFromHex(s string) cryptutil.Fingerprint {
	var fp cryptutil.Fingerprint
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fp
	}
	copy(fp[:], decoded)
	return fp
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return snaperr.IO(err)
	}
	return nil
}

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
