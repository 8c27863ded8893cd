// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// msgpackBody is the wire shape written/read by the MessagePack codec.
// It mirrors snapshot.PackedSnapshot but replaces the EntityMetadata
// map with a sorted slice, since map iteration order is not stable and
// MessagePack has no native map-key-ordering guarantee across
// implementations.
type msgpackBody struct {
	Archetypes []snapshot.ComponentArchetype `msgpack:"archetypes"`
	Entities   []msgpackEntity               `msgpack:"entities"`
}

type msgpackEntity struct {
	ID       snapshot.EntityId        `msgpack:"id"`
	Metadata snapshot.EntityMetadata `msgpack:"metadata"`
}

// EncodeMessagePack serializes p's archetypes and entity metadata as
// MessagePack, in the same ComponentID/EntityId sorted order as
// EncodeBinary.
func EncodeMessagePack(p *snapshot.PackedSnapshot) ([]byte, error) {
	body := msgpackBody{
		Archetypes: append([]snapshot.ComponentArchetype(nil), p.Archetypes...),
	}
	sort.Slice(body.Archetypes, func(i, j int) bool {
		return body.Archetypes[i].ComponentID < body.Archetypes[j].ComponentID
	})

	ids := make([]snapshot.EntityId, 0, len(p.EntityMetadata))
	for id := range p.EntityMetadata {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	body.Entities = make([]msgpackEntity, len(ids))
	for i, id := range ids {
		body.Entities[i] = msgpackEntity{ID: id, Metadata: p.EntityMetadata[id]}
	}

	data, err := msgpack.Marshal(body)
	if err != nil {
		return nil, serializationErr("encoding messagepack body", err)
	}
	return data, nil
}

// DecodeMessagePack parses bytes produced by EncodeMessagePack.
func DecodeMessagePack(data []byte) (*snapshot.PackedSnapshot, error) {
	var body msgpackBody
	if err := msgpack.Unmarshal(data, &body); err != nil {
		return nil, deserializationErr("decoding messagepack body", err)
	}

	metadata := make(map[snapshot.EntityId]snapshot.EntityMetadata, len(body.Entities))
	for _, e := range body.Entities {
		metadata[e.ID] = e.Metadata
	}

	return &snapshot.PackedSnapshot{Archetypes: body.Archetypes, EntityMetadata: metadata}, nil
}
