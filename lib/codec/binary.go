// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// EncodeBinary serializes p's archetypes and entity metadata using the
// hand-rolled binary layout: everything is little-endian, strings and
// byte slices are length-prefixed (uint32 length followed by the raw
// bytes), and every repeated section starts with a uint32 count.
//
// Archetypes are written in ComponentID lexicographic order and entity
// metadata in EntityId numeric order, independent of the order they
// were inserted in, so two calls on logically-equal snapshots produce
// identical bytes.
func EncodeBinary(p *snapshot.PackedSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := &binWriter{buf: &buf}

	archetypes := append([]snapshot.ComponentArchetype(nil), p.Archetypes...)
	sort.Slice(archetypes, func(i, j int) bool {
		return archetypes[i].ComponentID < archetypes[j].ComponentID
	})

	w.writeUint32(uint32(len(archetypes)))
	for _, a := range archetypes {
		writeArchetype(w, a)
	}

	entityIDs := make([]snapshot.EntityId, 0, len(p.EntityMetadata))
	for id := range p.EntityMetadata {
		entityIDs = append(entityIDs, id)
	}
	sort.Slice(entityIDs, func(i, j int) bool { return entityIDs[i] < entityIDs[j] })

	w.writeUint32(uint32(len(entityIDs)))
	for _, id := range entityIDs {
		meta := p.EntityMetadata[id]
		w.writeUint64(uint64(id))
		w.writeUint32(meta.Generation)
		w.writeUint32(meta.Flags)
		w.writeString(meta.Name)
	}

	if w.err != nil {
		return nil, serializationErr("encoding binary body", w.err)
	}
	return buf.Bytes(), nil
}

// DecodeBinary parses bytes produced by EncodeBinary.
func DecodeBinary(data []byte) (*snapshot.PackedSnapshot, error) {
	r := &binReader{data: data}

	archetypeCount := r.readUint32()
	archetypes := make([]snapshot.ComponentArchetype, 0, archetypeCount)
	for i := uint32(0); i < archetypeCount && r.err == nil; i++ {
		archetypes = append(archetypes, readArchetype(r))
	}

	entityCount := r.readUint32()
	metadata := make(map[snapshot.EntityId]snapshot.EntityMetadata, entityCount)
	for i := uint32(0); i < entityCount && r.err == nil; i++ {
		id := snapshot.EntityId(r.readUint64())
		metadata[id] = snapshot.EntityMetadata{
			Generation: r.readUint32(),
			Flags:      r.readUint32(),
			Name:       r.readString(),
		}
	}

	if r.err != nil {
		return nil, deserializationErr("decoding binary body", r.err)
	}
	if r.remaining() != 0 {
		return nil, deserializationErr("trailing bytes after binary body", fmt.Errorf("%d bytes unconsumed", r.remaining()))
	}

	return &snapshot.PackedSnapshot{Archetypes: archetypes, EntityMetadata: metadata}, nil
}

func writeArchetype(w *binWriter, a snapshot.ComponentArchetype) {
	w.writeString(string(a.ComponentID))
	w.writeUint32(uint32(len(a.EntityIDs)))
	for _, id := range a.EntityIDs {
		w.writeUint64(uint64(id))
	}
	w.writeByte(byte(a.Data.Kind))
	switch a.Data.Kind {
	case snapshot.ComponentBlob:
		w.writeBytes(a.Data.Blob)
	case snapshot.ComponentStructOfArrays:
		writeSoA(w, a.Data.SoA)
	}
}

func readArchetype(r *binReader) snapshot.ComponentArchetype {
	a := snapshot.ComponentArchetype{ComponentID: snapshot.ComponentId(r.readString())}
	count := r.readUint32()
	a.EntityIDs = make([]snapshot.EntityId, count)
	for i := range a.EntityIDs {
		a.EntityIDs[i] = snapshot.EntityId(r.readUint64())
	}
	kind := snapshot.ComponentKind(r.readByte())
	a.Data.Kind = kind
	switch kind {
	case snapshot.ComponentBlob:
		a.Data.Blob = r.readBytes()
	case snapshot.ComponentStructOfArrays:
		a.Data.SoA = readSoA(r)
	}
	return a
}

func writeSoA(w *binWriter, soa *snapshot.StructOfArraysData) {
	if soa == nil {
		w.writeUint32(0)
		return
	}
	w.writeUint32(uint32(len(soa.FieldNames)))
	for i, name := range soa.FieldNames {
		w.writeString(name)
		w.writeByte(byte(soa.FieldTypes[i]))
		writeFieldArray(w, soa.FieldData[i])
	}
}

func readSoA(r *binReader) *snapshot.StructOfArraysData {
	count := r.readUint32()
	soa := &snapshot.StructOfArraysData{
		FieldNames: make([]string, count),
		FieldTypes: make([]snapshot.FieldType, count),
		FieldData:  make([]snapshot.FieldArray, count),
	}
	for i := uint32(0); i < count; i++ {
		soa.FieldNames[i] = r.readString()
		fieldType := snapshot.FieldType(r.readByte())
		soa.FieldTypes[i] = fieldType
		soa.FieldData[i] = readFieldArray(r, fieldType)
	}
	return soa
}

func writeFieldArray(w *binWriter, f snapshot.FieldArray) {
	w.writeUint32(uint32(f.Len()))
	switch f.Type {
	case snapshot.FieldBool:
		for _, v := range f.Bool {
			w.writeBool(v)
		}
	case snapshot.FieldI8:
		for _, v := range f.I8 {
			w.writeByte(byte(v))
		}
	case snapshot.FieldI16:
		for _, v := range f.I16 {
			w.writeUint16(uint16(v))
		}
	case snapshot.FieldI32:
		for _, v := range f.I32 {
			w.writeUint32(uint32(v))
		}
	case snapshot.FieldI64:
		for _, v := range f.I64 {
			w.writeUint64(uint64(v))
		}
	case snapshot.FieldU8:
		w.writeRaw(f.U8)
	case snapshot.FieldU16:
		for _, v := range f.U16 {
			w.writeUint16(v)
		}
	case snapshot.FieldU32:
		for _, v := range f.U32 {
			w.writeUint32(v)
		}
	case snapshot.FieldU64:
		for _, v := range f.U64 {
			w.writeUint64(v)
		}
	case snapshot.FieldF32:
		for _, v := range f.F32 {
			w.writeUint32(math.Float32bits(v))
		}
	case snapshot.FieldF64:
		for _, v := range f.F64 {
			w.writeUint64(math.Float64bits(v))
		}
	case snapshot.FieldString:
		for _, v := range f.Str {
			w.writeString(v)
		}
	case snapshot.FieldBytes:
		for _, v := range f.Bytes {
			w.writeBytes(v)
		}
	}
}

func readFieldArray(r *binReader, t snapshot.FieldType) snapshot.FieldArray {
	f := snapshot.FieldArray{Type: t}
	n := r.readUint32()
	switch t {
	case snapshot.FieldBool:
		f.Bool = make([]bool, n)
		for i := range f.Bool {
			f.Bool[i] = r.readBool()
		}
	case snapshot.FieldI8:
		f.I8 = make([]int8, n)
		for i := range f.I8 {
			f.I8[i] = int8(r.readByte())
		}
	case snapshot.FieldI16:
		f.I16 = make([]int16, n)
		for i := range f.I16 {
			f.I16[i] = int16(r.readUint16())
		}
	case snapshot.FieldI32:
		f.I32 = make([]int32, n)
		for i := range f.I32 {
			f.I32[i] = int32(r.readUint32())
		}
	case snapshot.FieldI64:
		f.I64 = make([]int64, n)
		for i := range f.I64 {
			f.I64[i] = int64(r.readUint64())
		}
	case snapshot.FieldU8:
		f.U8 = r.readN(int(n))
	case snapshot.FieldU16:
		f.U16 = make([]uint16, n)
		for i := range f.U16 {
			f.U16[i] = r.readUint16()
		}
	case snapshot.FieldU32:
		f.U32 = make([]uint32, n)
		for i := range f.U32 {
			f.U32[i] = r.readUint32()
		}
	case snapshot.FieldU64:
		f.U64 = make([]uint64, n)
		for i := range f.U64 {
			f.U64[i] = r.readUint64()
		}
	case snapshot.FieldF32:
		f.F32 = make([]float32, n)
		for i := range f.F32 {
			f.F32[i] = math.Float32frombits(r.readUint32())
		}
	case snapshot.FieldF64:
		f.F64 = make([]float64, n)
		for i := range f.F64 {
			f.F64[i] = math.Float64frombits(r.readUint64())
		}
	case snapshot.FieldString:
		f.Str = make([]string, n)
		for i := range f.Str {
			f.Str[i] = r.readString()
		}
	case snapshot.FieldBytes:
		f.Bytes = make([][]byte, n)
		for i := range f.Bytes {
			f.Bytes[i] = r.readBytes()
		}
	}
	return f
}

// binWriter accumulates binary.LittleEndian-encoded fields into buf,
// latching the first error so call sites don't need to check one at a
// time.
type binWriter struct {
	buf *bytes.Buffer
	err error
}

func (w *binWriter) writeByte(b byte) {
	if w.err != nil {
		return
	}
	w.err = w.buf.WriteByte(b)
}

func (w *binWriter) writeBool(v bool) {
	if v {
		w.writeByte(1)
	} else {
		w.writeByte(0)
	}
}

func (w *binWriter) writeRaw(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.buf.Write(b)
}

func (w *binWriter) writeUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.writeRaw(b[:])
}

func (w *binWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.writeRaw(b[:])
}

func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.writeRaw(b[:])
}

func (w *binWriter) writeBytes(b []byte) {
	w.writeUint32(uint32(len(b)))
	w.writeRaw(b)
}

func (w *binWriter) writeString(s string) {
	w.writeBytes([]byte(s))
}

// binReader parses binary.LittleEndian-encoded fields out of data,
// latching the first error and turning every subsequent read into a
// no-op that returns the zero value.
type binReader struct {
	data []byte
	pos  int
	err  error
}

func (r *binReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *binReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.remaining() < n {
		r.err = fmt.Errorf("unexpected end of body: need %d bytes, have %d", n, r.remaining())
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *binReader) readByte() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binReader) readBool() bool {
	return r.readByte() != 0
}

func (r *binReader) readUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *binReader) readUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *binReader) readUint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *binReader) readN(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r *binReader) readBytes() []byte {
	n := r.readUint32()
	return r.readN(int(n))
}

func (r *binReader) readString() string {
	return string(r.readBytes())
}
