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
	"sort"
	"strings"

	"github.com/rivo/uniseg"
)

// BuildStats summarize the search indexes built by a Write.
type BuildStats struct {
	// IndexEntries is the number of entries in the prefix (and suffix) index.
	IndexEntries int
	// DistinctChars is the number of distinct code points indexed.
	DistinctChars int
	// TotalPostings is the total number of term references across all
	// per-character entries.
	TotalPostings int
	// MaxPostings is the largest posting list of any single character.
	MaxPostings int
}

type termIndexEntry struct {
	key  uint32
	term uint32
}

type charIndexEntry struct {
	char    rune
	indexes []uint32
}

// buildPrefixIndex maps each term's expression, reading and search key to
// the term's sorted position. Keys are ordered by the byte-wise order of
// their string content so a range scan resolves a prefix query.
func (w *Writer) buildPrefixIndex() []termIndexEntry {
	index := make([]termIndexEntry, 0, len(w.terms))
	for i, t := range w.terms {
		pos := uint32(i)
		index = append(index, termIndexEntry{key: t.Expression, term: pos})
		if t.Reading > 0 {
			index = append(index, termIndexEntry{key: t.Reading, term: pos})
		}
		if t.SearchKey > 0 {
			index = append(index, termIndexEntry{key: t.SearchKey, term: pos})
		}
	}
	sort.SliceStable(index, func(i, j int) bool {
		return w.Lookup(index[i].key) < w.Lookup(index[j].key)
	})
	return index
}

// buildSuffixIndex orders the prefix entries by the grapheme-reversed form
// of each key. A suffix query reverses its needle the same way and scans a
// range, so entries keep the original key index. Reversals are computed
// once per distinct key; recomputing inside the comparator would repeat
// the grapheme segmentation on every comparison.
func (w *Writer) buildSuffixIndex(prefix []termIndexEntry) []termIndexEntry {
	reversed := make(map[uint32]string, len(w.stringList))
	rev := func(key uint32) string {
		if s, ok := reversed[key]; ok {
			return s
		}
		s := reverseGraphemes(w.Lookup(key))
		reversed[key] = s
		return s
	}

	index := make([]termIndexEntry, len(prefix))
	copy(index, prefix)
	sort.SliceStable(index, func(i, j int) bool {
		return rev(index[i].key) < rev(index[j].key)
	})
	return index
}

// reverseGraphemes reverses the order of the grapheme clusters of s.
// Combining marks travel with their base character, which a plain code
// point reversal would break apart.
func reverseGraphemes(s string) string {
	if len(s) < 2 {
		return s
	}
	b := make([]byte, len(s))
	n := len(b)
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		c := g.Str()
		n -= len(c)
		copy(b[n:], c)
	}
	return string(b)
}

// buildCharIndex inverts the terms into one posting list per code point
// appearing in any expression or reading. Posting lists come out sorted
// ascending and deduplicated. The search key is deliberately not indexed
// here: it is a derived form and keeping it out of the contains-query
// surface matches the established file contents.
func (w *Writer) buildCharIndex() ([]charIndexEntry, BuildStats) {
	postings := make(map[rune][]uint32)
	var key strings.Builder
	for i, t := range w.terms {
		pos := uint32(i)
		key.Reset()
		key.WriteString(w.Lookup(t.Expression))
		key.WriteString(w.Lookup(t.Reading))
		for _, chr := range key.String() {
			list := postings[chr]
			if n := len(list); n > 0 && list[n-1] == pos {
				continue
			}
			postings[chr] = append(postings[chr], pos)
		}
	}

	entries := make([]charIndexEntry, 0, len(postings))
	var stats BuildStats
	for chr, list := range postings {
		// Term positions were appended in ascending order with adjacent
		// duplicates skipped; normalize anyway so the invariant never
		// depends on the fill pattern.
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		list = dedupSorted(list)

		entries = append(entries, charIndexEntry{char: chr, indexes: list})
		stats.TotalPostings += len(list)
		if len(list) > stats.MaxPostings {
			stats.MaxPostings = len(list)
		}
	}
	stats.DistinctChars = len(entries)

	sort.Slice(entries, func(i, j int) bool { return entries[i].char < entries[j].char })
	return entries, stats
}

func dedupSorted(list []uint32) []uint32 {
	out := list[:0]
	for i, v := range list {
		if i > 0 && v == list[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
