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

// Package dict models one source dictionary in its normalized in-memory
// form and decodes the JSON banks it is distributed as. The importer
// consumes these records and feeds them to the database writer.
package dict

// Dict is the fully decoded content of one dictionary archive.
type Dict struct {
	// Title identifies the dictionary and is recorded as the source of
	// every record imported from it.
	Title    string
	Revision string
	Format   int

	Tags  []Tag
	Terms []Term
	Kanji []Kanji

	// TermFrequency maps an expression to its corpus occurrence count,
	// collected from term metadata banks.
	TermFrequency map[string]uint32
	// KanjiFrequency is the kanji counterpart, keyed by character.
	KanjiFrequency map[rune]uint32
}

// Tag is one tag declaration from a tag bank.
type Tag struct {
	Name     string
	Category string
	Order    int32
	Notes    string
}

// Term is one term entry from a term bank. Tag lists hold tag names; they
// are resolved to indexes at import time.
type Term struct {
	Expression     string
	Reading        string
	DefinitionTags []string
	Rules          []string
	Score          int32
	Glossary       []string
	Sequence       uint32
	TermTags       []string
}

// KanjiStat is one entry of a kanji's stats object: a tag name and its
// associated text.
type KanjiStat struct {
	Name string
	Info string
}

// Kanji is one kanji entry from a kanji bank.
type Kanji struct {
	Character rune
	Onyomi    []string
	Kunyomi   []string
	Tags      []string
	Meanings  []string
	Stats     []KanjiStat
}
