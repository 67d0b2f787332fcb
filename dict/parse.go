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

package dict

import (
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseIndex decodes a dictionary's index.json metadata into d.
func ParseIndex(data []byte, d *Dict) error {
	var index struct {
		Title    string `json:"title"`
		Format   int    `json:"format"`
		Version  int    `json:"version"`
		Revision string `json:"revision"`
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return errors.Wrap(err, "decode index")
	}
	d.Title = index.Title
	d.Revision = index.Revision
	d.Format = index.Format
	if d.Format == 0 {
		d.Format = index.Version
	}
	return nil
}

// ParseTagBank decodes one tag bank and appends its rows to d.Tags.
//
// A row is [name, category, order, notes, score].
func ParseTagBank(data []byte, d *Dict) error {
	var rows [][]jsoniter.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return errors.Wrap(err, "decode tag bank")
	}
	for i, row := range rows {
		if len(row) < 4 {
			return errors.Errorf("tag bank row %d: %d fields", i, len(row))
		}
		var tag Tag
		var err error
		if tag.Name, err = decodeString(row[0]); err == nil {
			if tag.Category, err = decodeString(row[1]); err == nil {
				if tag.Order, err = decodeInt32(row[2]); err == nil {
					tag.Notes, err = decodeString(row[3])
				}
			}
		}
		if err != nil {
			return errors.Wrapf(err, "tag bank row %d", i)
		}
		d.Tags = append(d.Tags, tag)
	}
	return nil
}

// ParseTermBank decodes one term bank and appends its rows to d.Terms.
//
// A row is [expression, reading, definition tags, rules, score, glossary,
// sequence, term tags]; tag fields are space-separated names.
func ParseTermBank(data []byte, d *Dict) error {
	var rows [][]jsoniter.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return errors.Wrap(err, "decode term bank")
	}
	for i, row := range rows {
		if len(row) < 8 {
			return errors.Errorf("term bank row %d: %d fields", i, len(row))
		}
		term, err := decodeTermRow(row)
		if err != nil {
			return errors.Wrapf(err, "term bank row %d", i)
		}
		d.Terms = append(d.Terms, term)
	}
	return nil
}

func decodeTermRow(row []jsoniter.RawMessage) (Term, error) {
	var term Term
	expression, err := decodeString(row[0])
	if err != nil {
		return term, err
	}
	reading, err := decodeString(row[1])
	if err != nil {
		return term, err
	}
	defTags, err := decodeTagList(row[2])
	if err != nil {
		return term, err
	}
	rules, err := decodeTagList(row[3])
	if err != nil {
		return term, err
	}
	score, err := decodeInt32(row[4])
	if err != nil {
		return term, err
	}
	var glossary []string
	if err := json.Unmarshal(row[5], &glossary); err != nil {
		return term, errors.Wrap(err, "glossary")
	}
	sequence, err := decodeInt32(row[6])
	if err != nil {
		return term, err
	}
	termTags, err := decodeTagList(row[7])
	if err != nil {
		return term, err
	}
	term = Term{
		Expression:     expression,
		Reading:        reading,
		DefinitionTags: defTags,
		Rules:          rules,
		Score:          score,
		Glossary:       glossary,
		Sequence:       uint32(sequence),
		TermTags:       termTags,
	}
	return term, nil
}

// ParseKanjiBank decodes one kanji bank and appends its rows to d.Kanji.
//
// A row is [character, onyomi, kunyomi, tags, meanings, stats]; reading
// and tag fields are space-separated, stats is an object of tag name to
// text. Rows with an empty character cell are skipped.
func ParseKanjiBank(data []byte, d *Dict) error {
	var rows [][]jsoniter.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return errors.Wrap(err, "decode kanji bank")
	}
	for i, row := range rows {
		if len(row) < 6 {
			return errors.Errorf("kanji bank row %d: %d fields", i, len(row))
		}
		character, err := decodeString(row[0])
		if err != nil {
			return errors.Wrapf(err, "kanji bank row %d", i)
		}
		if character == "" {
			continue
		}
		onyomi, err := decodeTagList(row[1])
		if err != nil {
			return errors.Wrapf(err, "kanji bank row %d", i)
		}
		kunyomi, err := decodeTagList(row[2])
		if err != nil {
			return errors.Wrapf(err, "kanji bank row %d", i)
		}
		tags, err := decodeTagList(row[3])
		if err != nil {
			return errors.Wrapf(err, "kanji bank row %d", i)
		}
		var meanings []string
		if err := json.Unmarshal(row[4], &meanings); err != nil {
			return errors.Wrapf(err, "kanji bank row %d: meanings", i)
		}
		var stats map[string]string
		if err := json.Unmarshal(row[5], &stats); err != nil {
			return errors.Wrapf(err, "kanji bank row %d: stats", i)
		}
		kanji := Kanji{
			Character: []rune(character)[0],
			Onyomi:    onyomi,
			Kunyomi:   kunyomi,
			Tags:      tags,
			Meanings:  meanings,
			Stats:     sortedStats(stats),
		}
		d.Kanji = append(d.Kanji, kanji)
	}
	return nil
}

// ParseTermMetaBank decodes a term metadata bank into d.TermFrequency.
// Rows whose mode is not "freq" are ignored.
func ParseTermMetaBank(data []byte, d *Dict) error {
	rows, err := decodeMetaRows(data)
	if err != nil {
		return errors.Wrap(err, "decode term meta bank")
	}
	if d.TermFrequency == nil {
		d.TermFrequency = make(map[string]uint32, len(rows))
	}
	for _, row := range rows {
		d.TermFrequency[row.key] += row.count
	}
	return nil
}

// ParseKanjiMetaBank decodes a kanji metadata bank into d.KanjiFrequency.
func ParseKanjiMetaBank(data []byte, d *Dict) error {
	rows, err := decodeMetaRows(data)
	if err != nil {
		return errors.Wrap(err, "decode kanji meta bank")
	}
	if d.KanjiFrequency == nil {
		d.KanjiFrequency = make(map[rune]uint32, len(rows))
	}
	for _, row := range rows {
		for _, chr := range row.key {
			d.KanjiFrequency[chr] += row.count
			break
		}
	}
	return nil
}

type metaRow struct {
	key   string
	count uint32
}

func decodeMetaRows(data []byte) ([]metaRow, error) {
	var rows [][]jsoniter.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	out := make([]metaRow, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return nil, errors.Errorf("meta row %d: %d fields", i, len(row))
		}
		key, err := decodeString(row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "meta row %d", i)
		}
		mode, err := decodeString(row[1])
		if err != nil {
			return nil, errors.Wrapf(err, "meta row %d", i)
		}
		if mode != "freq" {
			continue
		}
		count, err := decodeFrequency(row[2])
		if err != nil {
			return nil, errors.Wrapf(err, "meta row %d", i)
		}
		out = append(out, metaRow{key: key, count: count})
	}
	return out, nil
}

// decodeFrequency accepts the shapes frequency data appears in: a bare
// number, a numeric string, or an object carrying a value field.
func decodeFrequency(raw jsoniter.RawMessage) (uint32, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return uint32(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return 0, errors.Wrap(err, "frequency string")
		}
		return uint32(v), nil
	}
	var obj struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, errors.Wrap(err, "frequency value")
	}
	return uint32(obj.Value), nil
}

func decodeString(raw jsoniter.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	err := json.Unmarshal(raw, &s)
	return s, err
}

func decodeInt32(raw jsoniter.RawMessage) (int32, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return int32(n), nil
}

// decodeTagList splits a space-separated name field. Null and empty cells
// yield no names.
func decodeTagList(raw jsoniter.RawMessage) ([]string, error) {
	s, err := decodeString(raw)
	if err != nil {
		return nil, err
	}
	return strings.Fields(s), nil
}

func sortedStats(stats map[string]string) []KanjiStat {
	if len(stats) == 0 {
		return nil
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]KanjiStat, 0, len(names))
	for _, name := range names {
		out = append(out, KanjiStat{Name: name, Info: stats[name]})
	}
	return out
}
