// Copyright 2026 The jpdict Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package db

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// DB is a loaded database. Every slice is a view over the byte region
// passed to Load; the region must stay mapped and unmodified for as long
// as the DB or anything derived from it is in use.
type DB struct {
	Tags        []TagRaw
	Terms       []TermRaw
	Kanji       []KanjiRaw
	PrefixIndex []TermIndex
	SuffixIndex []TermIndex
	CharIndex   []CharIndex
	VectorData  []U32
	StringList  []StrHandle

	stringData string
}

// Load reconstitutes a database from the bytes produced by Writer.Write,
// typically a memory-mapped file. Sections are reinterpreted in place with
// no copying or per-record decoding.
//
// Load assumes a matching producer. Section bounds are checked against the
// buffer; beyond that the content is trusted, including the UTF-8 validity
// of the string blob.
func Load(data []byte) (*DB, error) {
	// The section order must match rawDB.write.
	db := &DB{}
	var err error

	if db.Tags, data, err = readSection[TagRaw](data); err != nil {
		return nil, errors.Wrap(err, "tags section")
	}
	if db.Terms, data, err = readSection[TermRaw](data); err != nil {
		return nil, errors.Wrap(err, "terms section")
	}
	if db.Kanji, data, err = readSection[KanjiRaw](data); err != nil {
		return nil, errors.Wrap(err, "kanji section")
	}
	if db.PrefixIndex, data, err = readSection[TermIndex](data); err != nil {
		return nil, errors.Wrap(err, "prefix index section")
	}
	if db.SuffixIndex, data, err = readSection[TermIndex](data); err != nil {
		return nil, errors.Wrap(err, "suffix index section")
	}
	if db.CharIndex, data, err = readSection[CharIndex](data); err != nil {
		return nil, errors.Wrap(err, "char index section")
	}
	if db.VectorData, data, err = readSection[U32](data); err != nil {
		return nil, errors.Wrap(err, "vector arena section")
	}
	if db.StringList, data, err = readSection[StrHandle](data); err != nil {
		return nil, errors.Wrap(err, "string list section")
	}

	if len(data) < 4 {
		return nil, errors.Wrap(errInvalidSize, "string blob length")
	}
	blobLen := int(binary.LittleEndian.Uint32(data))
	data = data[4:]
	if len(data) < blobLen {
		return nil, errors.Wrap(errInvalidSize, "string blob")
	}
	db.stringData = yoloString(data[:blobLen])

	return db, nil
}

// String returns the interned string at the given index as a view into the
// loaded blob. An out-of-range index panics.
func (db *DB) String(index uint32) string {
	h := db.StringList[index]
	offset := h.Offset.Uint32()
	return db.stringData[offset : offset+h.Length.Uint32()]
}

// Vector resolves a handle against the vector arena. The sentinel handle
// yields an empty slice.
func (db *DB) Vector(h VecHandle) []U32 {
	length := h.Length.Uint32()
	if length == 0 {
		return nil
	}
	offset := h.Offset.Uint32()
	return db.VectorData[offset : offset+length]
}

// Uint32s decodes a handle's arena slots into a fresh slice. Convenience
// for callers that want plain values rather than the raw LE view.
func (db *DB) Uint32s(h VecHandle) []uint32 {
	raw := db.Vector(h)
	if len(raw) == 0 {
		return nil
	}
	out := make([]uint32, len(raw))
	for i, v := range raw {
		out[i] = v.Uint32()
	}
	return out
}

// Strings decodes a handle's arena slots as interned string indexes.
func (db *DB) Strings(h VecHandle) []string {
	raw := db.Vector(h)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = db.String(v.Uint32())
	}
	return out
}
