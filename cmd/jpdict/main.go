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

// The jpdict command builds and inspects dictionary database files.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/edsrzf/mmap-go"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/jpdict/jpdict/db"
	"github.com/jpdict/jpdict/importer"
)

func main() {
	app := kingpin.New(filepath.Base(os.Args[0]), "Tooling for the jpdict lookup database.")
	app.HelpFlag.Short('h')
	logLevel := app.Flag("log.level", "One of: debug, info, warn, error.").
		Default("info").Enum("debug", "info", "warn", "error")

	importCmd := app.Command("import", "Build a database from a directory of dictionary archives.")
	importData := importCmd.Flag("data", "Directory scanned for .zip dictionary archives.").
		Default("data").String()
	importOut := importCmd.Flag("out", "Output database file.").
		Default("jpdict.db").String()

	infoCmd := app.Command("info", "Print a summary of a database file.")
	infoPath := infoCmd.Arg("file", "Database file.").Required().String()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	logger := newLogger(*logLevel)

	var err error
	switch cmd {
	case importCmd.FullCommand():
		err = importer.New(logger).Run(*importData, *importOut)
	case infoCmd.FullCommand():
		err = info(*infoPath)
	}
	if err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func newLogger(lvl string) log.Logger {
	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

// info maps the database file and prints section counts from the loaded
// views without copying any record.
func info(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return errors.Wrap(err, "mmap database")
	}
	defer m.Unmap()

	d, err := db.Load(m)
	if err != nil {
		return errors.Wrap(err, "load database")
	}

	fmt.Printf("%s:\n", path)
	fmt.Printf("  tags:          %d\n", len(d.Tags))
	fmt.Printf("  terms:         %d\n", len(d.Terms))
	fmt.Printf("  kanji:         %d\n", len(d.Kanji))
	fmt.Printf("  prefix index:  %d\n", len(d.PrefixIndex))
	fmt.Printf("  suffix index:  %d\n", len(d.SuffixIndex))
	fmt.Printf("  char index:    %d\n", len(d.CharIndex))
	fmt.Printf("  vector arena:  %d slots\n", len(d.VectorData))
	fmt.Printf("  strings:       %d\n", len(d.StringList))

	for i, term := range d.Terms {
		if i == 5 {
			fmt.Printf("  ...\n")
			break
		}
		fmt.Printf("  term %d: %s [%s] freq=%d\n",
			i,
			d.String(term.Expression.Uint32()),
			d.String(term.Reading.Uint32()),
			term.Frequency.Uint32(),
		)
	}
	return nil
}
