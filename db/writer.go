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

// Package db builds and loads the dictionary lookup database.
//
// The database is produced in one shot: tags are declared first, terms and
// kanji are pushed referencing them, and a final Write call sorts the
// records, builds the search indexes and streams a binary image designed
// to be memory mapped and used in place by Load.
//
// All strings carried by tags, terms and kanji must be interned through
// Intern; records hold only 32-bit string and tag indexes.
package db

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Tag declares one tag. Name, Category and Notes are interned strings.
// A tag's identity is its position in the tag table.
type Tag struct {
	Name     uint32
	Category uint32
	Order    int32
	Notes    uint32
}

// Term is one dictionary term for intake. Reading and SearchKey may be
// zero (absent). Glossary holds interned strings; Rules, TermTags and
// DefTags hold tag indexes.
type Term struct {
	Expression uint32
	Reading    uint32
	SearchKey  uint32
	Score      int32
	Sequence   uint32
	Frequency  uint32
	Source     uint32
	Glossary   []uint32
	Rules      []uint32
	TermTags   []uint32
	DefTags    []uint32
}

// KanjiStat is one (tag, text) pair of auxiliary kanji information. Stat
// is a tag index and Info an interned string.
type KanjiStat struct {
	Stat uint32
	Info uint32
}

// Kanji is one kanji record for intake. Meanings, Onyomi and Kunyomi hold
// interned strings; Tags holds tag indexes.
type Kanji struct {
	Character rune
	Frequency uint32
	Source    uint32
	Meanings  []uint32
	Onyomi    []uint32
	Kunyomi   []uint32
	Tags      []uint32
	Stats     []KanjiStat
}

type strRange struct {
	offset uint32
	length uint32
}

// Writer accumulates the contents of a database and writes its binary
// representation. The zero value is not usable; create writers with
// NewWriter.
//
// A Writer is single-owner and not safe for concurrent use. Write consumes
// the Writer: any intake after it is a programmer error and panics.
type Writer struct {
	logger log.Logger

	terms []Term
	kanji []Kanji

	tags     []Tag
	tagIndex map[string]uint32

	stringList []strRange
	stringData []byte
	stringHash map[string]uint32

	done bool
}

// NewWriter returns an empty Writer. A nil logger silences build logging.
func NewWriter(logger log.Logger) *Writer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	w := &Writer{
		logger:     logger,
		tagIndex:   make(map[string]uint32),
		stringHash: make(map[string]uint32),
	}
	// The empty string is always interned as index zero.
	w.Intern("")
	return w
}

// Intern adds a string to the database and returns its index. Interning
// the same content again returns the original index.
func (w *Writer) Intern(s string) uint32 {
	w.mutable("Intern")
	if i, ok := w.stringHash[s]; ok {
		return i
	}
	index := uint32(len(w.stringList))
	w.stringList = append(w.stringList, strRange{
		offset: uint32(len(w.stringData)),
		length: uint32(len(s)),
	})
	w.stringData = append(w.stringData, s...)
	w.stringHash[s] = index
	return index
}

// Lookup returns an interned string from its index. An out-of-range index
// is a programmer error and panics.
func (w *Writer) Lookup(index uint32) string {
	r := w.stringList[index]
	return yoloString(w.stringData[r.offset : r.offset+r.length])
}

// PushTag appends a tag to the tag table and binds its name for GetTag.
// All tags must be pushed before any term or kanji that references them.
func (w *Writer) PushTag(tag Tag) {
	w.mutable("PushTag")
	w.tagIndex[w.Lookup(tag.Name)] = uint32(len(w.tags))
	w.tags = append(w.tags, tag)
}

// GetTag returns the index of a previously pushed tag. Referencing an
// undeclared tag is a programmer error and panics.
func (w *Writer) GetTag(name string) uint32 {
	i, ok := w.tagIndex[name]
	if !ok {
		panic(fmt.Sprintf("db: tag %q not declared", name))
	}
	return i
}

// GetTags maps a list of tag names to their indexes.
func (w *Writer) GetTags(names []string) []uint32 {
	if len(names) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(names))
	for _, name := range names {
		out = append(out, w.GetTag(name))
	}
	return out
}

// PushTerm appends a term record.
func (w *Writer) PushTerm(term Term) {
	w.mutable("PushTerm")
	w.terms = append(w.terms, term)
}

// PushKanji appends a kanji record.
func (w *Writer) PushKanji(kanji Kanji) {
	w.mutable("PushKanji")
	w.kanji = append(w.kanji, kanji)
}

// NumTerms returns the number of terms pushed so far.
func (w *Writer) NumTerms() int { return len(w.terms) }

// NumKanji returns the number of kanji pushed so far.
func (w *Writer) NumKanji() int { return len(w.kanji) }

// NumTags returns the number of tags pushed so far.
func (w *Writer) NumTags() int { return len(w.tags) }

func (w *Writer) mutable(op string) {
	if w.done {
		panic("db: " + op + " on a consumed Writer")
	}
}

// Write sorts the records, builds the search indexes and writes the
// database image to sink. All scalars are written little-endian; the
// section order matches Load.
//
// Write consumes the Writer. On an I/O error the partial output is not a
// valid database and must be discarded by the caller. The returned
// BuildStats describe the prefix and per-character indexes.
func (w *Writer) Write(sink io.Writer) (BuildStats, error) {
	w.mutable("Write")
	w.done = true

	start := time.Now()

	// Sort terms and kanji by relevance. The sorted positions are the term
	// references used by every index, so this must precede the index build.
	sort.SliceStable(w.terms, func(i, j int) bool {
		a, b := &w.terms[i], &w.terms[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Score > b.Score
	})
	sort.SliceStable(w.kanji, func(i, j int) bool {
		return w.kanji[i].Frequency > w.kanji[j].Frequency
	})

	prefix := w.buildPrefixIndex()
	suffix := w.buildSuffixIndex(prefix)
	chars, stats := w.buildCharIndex()
	stats.IndexEntries = len(prefix)

	level.Debug(w.logger).Log(
		"msg", "built indexes",
		"duration", time.Since(start),
		"entries", len(prefix),
		"chars", stats.DistinctChars,
		"max_per_char", stats.MaxPostings,
	)

	start = time.Now()

	var raw rawDB
	// The arena is filled in kanji, term, char-index order.
	raw.kanji = make([]KanjiRaw, 0, len(w.kanji))
	for _, k := range w.kanji {
		flat := make([]uint32, 0, len(k.Stats)*2)
		for _, s := range k.Stats {
			flat = append(flat, s.Stat, s.Info)
		}
		raw.kanji = append(raw.kanji, KanjiRaw{
			Character: newU32(uint32(k.Character)),
			Frequency: newU32(k.Frequency),
			Source:    newU32(k.Source),
			Meanings:  raw.pushVec(k.Meanings),
			Onyomi:    raw.pushVec(k.Onyomi),
			Kunyomi:   raw.pushVec(k.Kunyomi),
			Tags:      raw.pushVec(k.Tags),
			Stats:     raw.pushVec(flat),
		})
	}

	raw.terms = make([]TermRaw, 0, len(w.terms))
	for _, t := range w.terms {
		raw.terms = append(raw.terms, TermRaw{
			Expression: newU32(t.Expression),
			Reading:    newU32(t.Reading),
			SearchKey:  newU32(t.SearchKey),
			Score:      newI32(t.Score),
			Sequence:   newU32(t.Sequence),
			Frequency:  newU32(t.Frequency),
			Source:     newU32(t.Source),
			Glossary:   raw.pushVec(t.Glossary),
			Rules:      raw.pushVec(t.Rules),
			TermTags:   raw.pushVec(t.TermTags),
			DefTags:    raw.pushVec(t.DefTags),
		})
	}

	raw.tags = make([]TagRaw, 0, len(w.tags))
	for _, t := range w.tags {
		raw.tags = append(raw.tags, TagRaw{
			Name:     newU32(t.Name),
			Category: newU32(t.Category),
			Order:    newI32(t.Order),
			Notes:    newU32(t.Notes),
		})
	}

	raw.prefixIndex = make([]TermIndex, 0, len(prefix))
	for _, e := range prefix {
		raw.prefixIndex = append(raw.prefixIndex, TermIndex{
			Key:  newU32(e.key),
			Term: newU32(e.term),
		})
	}
	raw.suffixIndex = make([]TermIndex, 0, len(suffix))
	for _, e := range suffix {
		raw.suffixIndex = append(raw.suffixIndex, TermIndex{
			Key:  newU32(e.key),
			Term: newU32(e.term),
		})
	}
	raw.charIndex = make([]CharIndex, 0, len(chars))
	for _, e := range chars {
		raw.charIndex = append(raw.charIndex, CharIndex{
			Character: newU32(uint32(e.char)),
			Indexes:   raw.pushVec(e.indexes),
		})
	}

	raw.stringList = make([]StrHandle, 0, len(w.stringList))
	for _, r := range w.stringList {
		raw.stringList = append(raw.stringList, StrHandle{
			Offset: newU32(r.offset),
			Length: newU32(r.length),
		})
	}
	raw.stringData = w.stringData

	err := raw.write(sink)
	if err == nil {
		level.Debug(w.logger).Log("msg", "wrote database", "duration", time.Since(start))
	}
	return stats, err
}

// rawDB is the fully transformed database image just before writing.
type rawDB struct {
	tags        []TagRaw
	terms       []TermRaw
	kanji       []KanjiRaw
	prefixIndex []TermIndex
	suffixIndex []TermIndex
	charIndex   []CharIndex
	vectorData  []U32
	stringList  []StrHandle
	stringData  []byte
}

// pushVec appends a u32 list to the vector arena and returns its handle.
// Empty lists map to the {0, 0} sentinel and consume no arena space.
func (r *rawDB) pushVec(vec []uint32) VecHandle {
	if len(vec) == 0 {
		return VecHandle{}
	}
	offset := uint32(len(r.vectorData))
	for _, v := range vec {
		r.vectorData = append(r.vectorData, newU32(v))
	}
	return VecHandle{
		Offset: newU32(offset),
		Length: newU32(uint32(len(vec))),
	}
}

// write streams the sections in the order Load expects.
func (r *rawDB) write(sink io.Writer) error {
	bufw := bufio.NewWriterSize(sink, 1<<20)

	if err := writeSection(bufw, r.tags); err != nil {
		return err
	}
	if err := writeSection(bufw, r.terms); err != nil {
		return err
	}
	if err := writeSection(bufw, r.kanji); err != nil {
		return err
	}
	if err := writeSection(bufw, r.prefixIndex); err != nil {
		return err
	}
	if err := writeSection(bufw, r.suffixIndex); err != nil {
		return err
	}
	if err := writeSection(bufw, r.charIndex); err != nil {
		return err
	}
	if err := writeSection(bufw, r.vectorData); err != nil {
		return err
	}
	if err := writeSection(bufw, r.stringList); err != nil {
		return err
	}
	if err := writeLen(bufw, len(r.stringData)); err != nil {
		return err
	}
	if _, err := bufw.Write(r.stringData); err != nil {
		return err
	}
	return bufw.Flush()
}
