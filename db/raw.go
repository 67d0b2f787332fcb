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

import "encoding/binary"

// U32 is a uint32 held as its little-endian byte image. Raw records are
// built exclusively from U32 fields so that a record's memory layout is
// byte-for-byte its serialized form on any host. The byte-array
// representation also keeps raw records free of alignment padding.
type U32 [4]byte

func newU32(v uint32) U32 {
	var u U32
	binary.LittleEndian.PutUint32(u[:], v)
	return u
}

// Uint32 decodes the stored value.
func (u U32) Uint32() uint32 { return binary.LittleEndian.Uint32(u[:]) }

// I32 is an int32 held as the little-endian image of its bit pattern.
type I32 [4]byte

func newI32(v int32) I32 {
	var u I32
	binary.LittleEndian.PutUint32(u[:], uint32(v))
	return u
}

// Int32 decodes the stored value.
func (u I32) Int32() int32 { return int32(binary.LittleEndian.Uint32(u[:])) }

// VecHandle locates a variable-length u32 list inside the vector arena.
// An empty list is always the sentinel handle {0, 0} and addresses no
// arena slots.
type VecHandle struct {
	Offset U32
	Length U32
}

// StrHandle locates an interned string inside the string blob as a byte
// offset and byte length. Handle ranges always fall on UTF-8 character
// boundaries.
type StrHandle struct {
	Offset U32
	Length U32
}

// TagRaw is the serialized form of one tag.
type TagRaw struct {
	Name     U32 // interned string
	Category U32 // interned string
	Order    I32
	Notes    U32 // interned string
}

// TermRaw is the serialized form of one term. String fields are interned
// string indexes; Reading and SearchKey are zero when absent.
type TermRaw struct {
	Expression U32
	Reading    U32
	SearchKey  U32
	Score      I32
	Sequence   U32
	Frequency  U32
	Source     U32
	Glossary   VecHandle // interned strings
	Rules      VecHandle // tag indexes
	TermTags   VecHandle // tag indexes
	DefTags    VecHandle // tag indexes
}

// KanjiRaw is the serialized form of one kanji. Stats is a flattened list
// of alternating (tag index, interned string) pairs, so its length is
// always even.
type KanjiRaw struct {
	Character U32 // code point
	Frequency U32
	Source    U32
	Meanings  VecHandle // interned strings
	Onyomi    VecHandle // interned strings
	Kunyomi   VecHandle // interned strings
	Tags      VecHandle // tag indexes
	Stats     VecHandle
}

// TermIndex is one entry of the prefix or suffix index: an interned key
// string and the position of the term it points at.
type TermIndex struct {
	Key  U32
	Term U32
}

// CharIndex maps one code point to the sorted set of term positions whose
// expression or reading contains it.
type CharIndex struct {
	Character U32
	Indexes   VecHandle
}
