// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "time"

// SnapshotMetadata is the caller-owned JSON sidecar written alongside
// every stored snapshot envelope: identity, provenance, and free-form
// tagging, independent of whatever the envelope header happens to
// record. Invariant: ID matches the sidecar filename stem.
type SnapshotMetadata struct {
	ID            string            `json:"id"`
	Name          *string           `json:"name,omitempty"`
	Description   *string           `json:"description,omitempty"`
	CreatedAt     int64             `json:"created_at"`
	WorldTime     float64           `json:"world_time"`
	SchemaVersion uint32            `json:"schema_version"`
	CustomFields  map[string]string `json:"custom_fields"`
	Tags          []string          `json:"tags"`
}

// NewSnapshotMetadata returns metadata for id with the same defaults
// original_source/src/metadata.rs's SnapshotMetadata::new uses:
// CreatedAt set to now, WorldTime zero, SchemaVersion 1, and empty
// CustomFields/Tags.
func NewSnapshotMetadata(id string) SnapshotMetadata {
	return SnapshotMetadata{
		ID:            id,
		CreatedAt:     time.Now().UTC().Unix(),
		WorldTime:     0,
		SchemaVersion: 1,
		CustomFields:  make(map[string]string),
		Tags:          nil,
	}
}

// WithName sets the metadata's optional display name.
func (m SnapshotMetadata) WithName(name string) SnapshotMetadata {
	m.Name = &name
	return m
}

// WithDescription sets the metadata's optional description.
func (m SnapshotMetadata) WithDescription(description string) SnapshotMetadata {
	m.Description = &description
	return m
}

// WithTag appends a tag.
func (m SnapshotMetadata) WithTag(tag string) SnapshotMetadata {
	m.Tags = append(m.Tags, tag)
	return m
}

// WithCustomField sets a custom key/value pair.
func (m SnapshotMetadata) WithCustomField(key, value string) SnapshotMetadata {
	if m.CustomFields == nil {
		m.CustomFields = make(map[string]string)
	}
	m.CustomFields[key] = value
	return m
}
