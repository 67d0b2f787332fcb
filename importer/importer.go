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

// Package importer drives a database build: it scans a directory for
// dictionary archives, decodes them and feeds the records to a db.Writer.
package importer

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/jpdict/jpdict/db"
	"github.com/jpdict/jpdict/dict"
)

// Importer accumulates decoded dictionaries and builds one database from
// them. Dictionaries are held in memory until Build so that frequency
// metadata from any archive can apply to records from every other one.
type Importer struct {
	logger log.Logger
	dicts  []*dict.Dict
}

// New returns an empty Importer. A nil logger silences progress logging.
func New(logger log.Logger) *Importer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Importer{logger: logger}
}

// Run imports every archive in dataDir and writes the database to outPath.
// On failure the partial output file is removed.
func (imp *Importer) Run(dataDir, outPath string) error {
	start := time.Now()

	archives, err := findArchives(dataDir)
	if err != nil {
		return err
	}
	level.Info(imp.logger).Log("msg", "importing", "dir", dataDir, "archives", len(archives))

	for _, path := range archives {
		if err := imp.ImportArchive(path); err != nil {
			return errors.Wrapf(err, "import %s", filepath.Base(path))
		}
	}

	f, err := os.Create(outPath)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	w := db.NewWriter(imp.logger)
	imp.Build(w)
	stats, err := w.Write(f)
	if err == nil {
		err = f.Close()
	} else {
		f.Close()
	}
	if err != nil {
		os.Remove(outPath)
		return errors.Wrap(err, "write database")
	}

	level.Info(imp.logger).Log(
		"msg", "import complete",
		"out", outPath,
		"duration", time.Since(start),
		"index_entries", stats.IndexEntries,
		"chars", stats.DistinctChars,
		"max_per_char", stats.MaxPostings,
	)
	return nil
}

// findArchives lists the .zip files of dir, matching the extension
// case-insensitively.
func findArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read data directory")
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// ImportArchive decodes one dictionary archive and queues it for Build.
func (imp *Importer) ImportArchive(path string) error {
	start := time.Now()

	r, err := zip.OpenReader(path)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer r.Close()

	d := &dict.Dict{}
	for _, f := range r.File {
		if err := decodeBank(f, d); err != nil {
			return err
		}
	}

	level.Info(imp.logger).Log(
		"msg", "imported archive",
		"title", d.Title,
		"terms", len(d.Terms),
		"kanji", len(d.Kanji),
		"tags", len(d.Tags),
		"duration", time.Since(start),
	)
	imp.ImportDict(d)
	return nil
}

// ImportDict queues an already decoded dictionary for Build.
func (imp *Importer) ImportDict(d *dict.Dict) {
	imp.dicts = append(imp.dicts, d)
}

func decodeBank(f *zip.File, d *dict.Dict) error {
	name := filepath.Base(f.Name)
	if !strings.HasSuffix(name, ".json") {
		return nil
	}

	var parse func([]byte, *dict.Dict) error
	switch {
	case name == "index.json":
		parse = dict.ParseIndex
	case strings.HasPrefix(name, "tag_bank_"):
		parse = dict.ParseTagBank
	case strings.HasPrefix(name, "term_meta_bank_"):
		parse = dict.ParseTermMetaBank
	case strings.HasPrefix(name, "kanji_meta_bank_"):
		parse = dict.ParseKanjiMetaBank
	case strings.HasPrefix(name, "term_bank_"):
		parse = dict.ParseTermBank
	case strings.HasPrefix(name, "kanji_bank_"):
		parse = dict.ParseKanjiBank
	default:
		return nil
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "open %s", f.Name)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return errors.Wrapf(err, "read %s", f.Name)
	}
	return errors.Wrap(parse(data, d), name)
}

// Build pushes every queued dictionary into w. Frequency metadata is
// merged across dictionaries first so that a standalone frequency
// dictionary applies to terms imported from the others.
func (imp *Importer) Build(w *db.Writer) {
	termFreq := make(map[string]uint32)
	kanjiFreq := make(map[rune]uint32)
	for _, d := range imp.dicts {
		for expr, n := range d.TermFrequency {
			termFreq[expr] += n
		}
		for chr, n := range d.KanjiFrequency {
			kanjiFreq[chr] += n
		}
	}

	declared := map[string]bool{}
	for _, d := range imp.dicts {
		for _, tag := range d.Tags {
			if declared[tag.Name] {
				continue
			}
			declared[tag.Name] = true
			w.PushTag(db.Tag{
				Name:     w.Intern(tag.Name),
				Category: w.Intern(tag.Category),
				Order:    tag.Order,
				Notes:    w.Intern(tag.Notes),
			})
		}
	}

	tags := func(names []string) []uint32 {
		// Source data occasionally references a tag no bank declared;
		// register a bare tag so the reference stays resolvable.
		for _, name := range names {
			if !declared[name] {
				declared[name] = true
				w.PushTag(db.Tag{Name: w.Intern(name)})
			}
		}
		return w.GetTags(names)
	}

	for _, d := range imp.dicts {
		source := w.Intern(d.Title)
		for _, term := range d.Terms {
			w.PushTerm(db.Term{
				Expression: w.Intern(term.Expression),
				Reading:    w.Intern(term.Reading),
				SearchKey:  w.Intern(searchKey(term.Expression, term.Reading)),
				Score:      term.Score,
				Sequence:   term.Sequence,
				Frequency:  termFreq[term.Expression],
				Source:     source,
				Glossary:   internAll(w, term.Glossary),
				Rules:      tags(term.Rules),
				TermTags:   tags(term.TermTags),
				DefTags:    tags(term.DefinitionTags),
			})
		}
		for _, k := range d.Kanji {
			stats := make([]db.KanjiStat, 0, len(k.Stats))
			for _, s := range k.Stats {
				stats = append(stats, db.KanjiStat{
					Stat: tags([]string{s.Name})[0],
					Info: w.Intern(s.Info),
				})
			}
			w.PushKanji(db.Kanji{
				Character: k.Character,
				Frequency: kanjiFreq[k.Character],
				Source:    source,
				Meanings:  internAll(w, k.Meanings),
				Onyomi:    internAll(w, k.Onyomi),
				Kunyomi:   internAll(w, k.Kunyomi),
				Tags:      tags(k.Tags),
				Stats:     stats,
			})
		}
	}
}

func internAll(w *db.Writer, values []string) []uint32 {
	if len(values) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(values))
	for _, v := range values {
		out = append(out, w.Intern(v))
	}
	return out
}

// searchKey derives the extra lookup key for a term: the reading (or the
// expression when no reading exists) folded to hiragana. A key equal to a
// field already indexed adds nothing and is dropped.
func searchKey(expression, reading string) string {
	key := foldKana(reading)
	if key == "" {
		key = foldKana(expression)
	}
	if key == reading || key == expression {
		return ""
	}
	return key
}

// foldKana maps katakana to the corresponding hiragana, leaving every
// other rune untouched.
func foldKana(s string) string {
	fold := func(r rune) rune {
		if r >= 'ァ' && r <= 'ヶ' {
			return r - ('ァ' - 'ぁ')
		}
		return r
	}
	return strings.Map(fold, s)
}
