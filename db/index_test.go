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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReverseGraphemes(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"", ""},
		{"a", "a"},
		{"ab", "ba"},
		{"いぬ", "ぬい"},
		// The combining acute stays attached to its base.
		{"ba\u0301", "a\u0301b"},
		{"a\u0301", "a\u0301"},
	}
	for _, c := range cases {
		require.Equal(t, c.out, reverseGraphemes(c.in), "reverse of %q", c.in)
	}
}

func TestTermRelevanceOrder(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{Expression: w.Intern("a"), Frequency: 0, Score: 9, Sequence: 100})
	w.PushTerm(Term{Expression: w.Intern("b"), Frequency: 5, Score: 1, Sequence: 101})
	w.PushTerm(Term{Expression: w.Intern("c"), Frequency: 5, Score: 2, Sequence: 102})

	db, _ := buildAndLoad(t, w)
	require.Len(t, db.Terms, 3)

	// Frequency descending, then score descending.
	require.Equal(t, uint32(102), db.Terms[0].Sequence.Uint32())
	require.Equal(t, uint32(101), db.Terms[1].Sequence.Uint32())
	require.Equal(t, uint32(100), db.Terms[2].Sequence.Uint32())

	// Every index entry references the sorted positions.
	for _, e := range db.PrefixIndex {
		term := db.Terms[e.Term.Uint32()]
		require.Equal(t, db.String(e.Key.Uint32()), db.String(term.Expression.Uint32()))
	}
}

func TestTermSortStableOnTies(t *testing.T) {
	w := NewWriter(nil)
	for i := 0; i < 5; i++ {
		w.PushTerm(Term{Expression: w.Intern(string(rune('a' + i))), Sequence: uint32(i)})
	}
	db, _ := buildAndLoad(t, w)
	for i := 0; i < 5; i++ {
		require.Equal(t, uint32(i), db.Terms[i].Sequence.Uint32())
	}
}

func TestKanjiFrequencyOrder(t *testing.T) {
	w := NewWriter(nil)
	w.PushKanji(Kanji{Character: '一', Frequency: 10})
	w.PushKanji(Kanji{Character: '二', Frequency: 30})
	w.PushKanji(Kanji{Character: '三', Frequency: 20})

	db, _ := buildAndLoad(t, w)
	require.Len(t, db.Kanji, 3)
	require.Equal(t, uint32('二'), db.Kanji[0].Character.Uint32())
	require.Equal(t, uint32('三'), db.Kanji[1].Character.Uint32())
	require.Equal(t, uint32('一'), db.Kanji[2].Character.Uint32())
}

func TestPrefixIndexByteOrder(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{
		Expression: w.Intern("いぬ"),
		Reading:    w.Intern("イヌ"),
		Glossary:   []uint32{w.Intern("dog")},
	})

	db, stats := buildAndLoad(t, w)
	require.Equal(t, 2, stats.IndexEntries)
	require.Len(t, db.PrefixIndex, 2)

	// Hiragana sorts before katakana in byte order.
	require.Equal(t, "いぬ", db.String(db.PrefixIndex[0].Key.Uint32()))
	require.Equal(t, "イヌ", db.String(db.PrefixIndex[1].Key.Uint32()))
	require.Equal(t, uint32(0), db.PrefixIndex[0].Term.Uint32())
	require.Equal(t, uint32(0), db.PrefixIndex[1].Term.Uint32())

	// The forward byte order holds for the whole index.
	for i := 1; i < len(db.PrefixIndex); i++ {
		a := db.String(db.PrefixIndex[i-1].Key.Uint32())
		b := db.String(db.PrefixIndex[i].Key.Uint32())
		require.LessOrEqual(t, a, b)
	}
}

func TestSearchKeyIndexedForPrefixAndSuffixOnly(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{
		Expression: w.Intern("犬"),
		SearchKey:  w.Intern("いぬ"),
	})

	db, _ := buildAndLoad(t, w)
	require.Len(t, db.PrefixIndex, 2)
	require.Len(t, db.SuffixIndex, 2)

	// The search key never contributes to the per-character index.
	require.Len(t, db.CharIndex, 1)
	require.Equal(t, uint32('犬'), db.CharIndex[0].Character.Uint32())
}

func TestSuffixIndexGraphemeOrder(t *testing.T) {
	w := NewWriter(nil)
	// Grapheme reversal of "ab\u0301" is "b\u0301a", which sorts before
	// "zb" (the reversal of "bz"). A code point reversal would produce
	// "\u0301ba" and invert the order.
	w.PushTerm(Term{Expression: w.Intern("ab\u0301")})
	w.PushTerm(Term{Expression: w.Intern("bz")})

	db, _ := buildAndLoad(t, w)
	require.Len(t, db.SuffixIndex, 2)
	require.Equal(t, "ab\u0301", db.String(db.SuffixIndex[0].Key.Uint32()))
	require.Equal(t, "bz", db.String(db.SuffixIndex[1].Key.Uint32()))
}

func TestSuffixIndexCombiningMarks(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{Expression: w.Intern("ba\u0301")})
	w.PushTerm(Term{Expression: w.Intern("ca")})

	db, _ := buildAndLoad(t, w)
	require.Len(t, db.SuffixIndex, 2)

	// Sorted by the grapheme-reversed forms "ac" < "a\u0301b"; entries
	// keep the forward key.
	require.Equal(t, "ca", db.String(db.SuffixIndex[0].Key.Uint32()))
	require.Equal(t, "ba\u0301", db.String(db.SuffixIndex[1].Key.Uint32()))
}

func TestSuffixIndexSameEntriesAsPrefix(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{Expression: w.Intern("たべる"), Reading: w.Intern("タベル")})
	w.PushTerm(Term{Expression: w.Intern("のむ")})

	db, _ := buildAndLoad(t, w)
	require.Equal(t, len(db.PrefixIndex), len(db.SuffixIndex))

	type entry struct{ key, term uint32 }
	collect := func(index []TermIndex) []entry {
		out := make([]entry, 0, len(index))
		for _, e := range index {
			out = append(out, entry{e.Key.Uint32(), e.Term.Uint32()})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].key != out[j].key {
				return out[i].key < out[j].key
			}
			return out[i].term < out[j].term
		})
		return out
	}
	require.Equal(t, collect(db.PrefixIndex), collect(db.SuffixIndex))
}

func TestCharIndexSingleTerm(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{
		Expression: w.Intern("いぬ"),
		Reading:    w.Intern("イヌ"),
	})

	db, stats := buildAndLoad(t, w)
	require.Equal(t, 4, stats.DistinctChars)
	require.Equal(t, 4, stats.TotalPostings)
	require.Equal(t, 1, stats.MaxPostings)

	require.Len(t, db.CharIndex, 4)
	want := []rune{'い', 'ぬ', 'イ', 'ヌ'}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	for i, chr := range want {
		e := db.CharIndex[i]
		require.Equal(t, uint32(chr), e.Character.Uint32())
		require.Equal(t, []uint32{0}, db.Uint32s(e.Indexes))
	}
}

func TestCharIndexCoversExpressionAndReading(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{Expression: w.Intern("犬"), Reading: w.Intern("いぬ"), Frequency: 2})
	w.PushTerm(Term{Expression: w.Intern("子犬"), Reading: w.Intern("こいぬ"), Frequency: 1})

	db, _ := buildAndLoad(t, w)

	// Reconstruct the expected (char, position) pairs from the sorted terms.
	want := map[rune][]uint32{}
	for i, term := range db.Terms {
		seen := map[rune]bool{}
		for _, chr := range db.String(term.Expression.Uint32()) + db.String(term.Reading.Uint32()) {
			if !seen[chr] {
				seen[chr] = true
				want[chr] = append(want[chr], uint32(i))
			}
		}
	}

	require.Len(t, db.CharIndex, len(want))
	var prev uint32
	for i, e := range db.CharIndex {
		chr := rune(e.Character.Uint32())
		require.Equal(t, want[chr], db.Uint32s(e.Indexes))
		if i > 0 {
			require.Greater(t, e.Character.Uint32(), prev)
		}
		prev = e.Character.Uint32()

		// Posting lists are strictly increasing.
		list := db.Uint32s(e.Indexes)
		for j := 1; j < len(list); j++ {
			require.Greater(t, list[j], list[j-1])
		}
	}
}

func TestCharIndexSharedCharacter(t *testing.T) {
	w := NewWriter(nil)
	w.PushTerm(Term{Expression: w.Intern("ああ"), Frequency: 3})
	w.PushTerm(Term{Expression: w.Intern("あい"), Frequency: 2})
	w.PushTerm(Term{Expression: w.Intern("いう"), Frequency: 1})

	db, stats := buildAndLoad(t, w)
	require.Equal(t, 3, stats.DistinctChars)
	require.Equal(t, 2, stats.MaxPostings)

	byChar := map[rune][]uint32{}
	for _, e := range db.CharIndex {
		byChar[rune(e.Character.Uint32())] = db.Uint32s(e.Indexes)
	}
	require.Equal(t, []uint32{0, 1}, byChar['あ'])
	require.Equal(t, []uint32{1, 2}, byChar['い'])
	require.Equal(t, []uint32{2}, byChar['う'])
}
