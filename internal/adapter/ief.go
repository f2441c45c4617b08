package adapter

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/catalog"
	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/header"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/record"
)

// dailyWeeklyHistory stores local dates as "2017-05-16 16:17:09"; only the
// date part is used.
const dailyWeeklyHistory catalog.ArtifactID = 58

// maxRecords is one record per slot plus one per alternate run time.
const maxRecords = 3 + 7

// exportSuffixes are removed from a filename to get the artifact name.
var exportSuffixes = []string{".csv", ".xlsx"}

// ief reads per-artifact CSV exports. The artifact is named by the file,
// and the catalog says which header carries each record field.
type ief struct {
	opts   Options
	logger *zap.Logger
	asm    *record.Assembler

	// bufs holds the slot records followed by the alternate run records.
	bufs [maxRecords]model.Record
	out  []*model.Record
}

func newIEF(opts Options) Adapter {
	return &ief{opts: opts, logger: opts.Logger}
}

func (a *ief) Format() delimtext.Format { return delimtext.CSV }

func (a *ief) HasHeader() bool { return true }

func (a *ief) Begin(file string, hdr []string) error {
	a.logger = fileLogger(a.opts.Logger, file)
	a.asm = nil

	name := ArtifactName(file)
	id, ok := a.opts.Catalog.Identify(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownArtifact, name)
	}

	norm := a.opts.Normalizer.WithLogger(a.logger)
	parse := func(text string) model.Epoch {
		return norm.Delimited(text, ' ', '/', ':')
	}
	if id == dailyWeeklyHistory {
		parse = func(text string) model.Epoch {
			return norm.DateOnly(text, ' ', '-', ':')
		}
	}

	a.asm = record.New(record.Config{
		Artifact:  id,
		Artifacts: a.opts.Catalog,
		Fields:    a.opts.Catalog,
		Header:    header.New(hdr),
		ParseTime: parse,
		LogPrefix: "ief-",
		Logger:    a.logger,
	})
	a.logger.Debug("identified artifact",
		zap.String("artifact", name),
		zap.Int("id", int(id)))
	return nil
}

func (a *ief) Process(line int, row []string) []*model.Record {
	a.out = a.out[:0]
	if a.asm == nil {
		return nil
	}

	for i, slot := range catalog.Slots {
		if a.asm.Fill(slot, line, row, &a.bufs[i]) {
			a.out = append(a.out, &a.bufs[i])
		}
	}

	primary := &a.bufs[0]
	if primary.IsZero() {
		return a.out
	}
	for i, role := range catalog.AlternateATimes {
		buf := &a.bufs[len(catalog.Slots)+i]
		if a.asm.FillAlternate(role, row, primary, buf) {
			a.out = append(a.out, buf)
		}
	}
	return a.out
}

// ArtifactName reduces an export path to the artifact display name: the
// directory is dropped, then any .csv and .xlsx suffixes, in any case.
func ArtifactName(path string) string {
	if path == "" {
		return ""
	}
	name := filepath.Base(filepath.ToSlash(path))
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}

	for trimmed := true; trimmed; {
		trimmed = false
		for _, suffix := range exportSuffixes {
			if len(name) >= len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
				name = name[:len(name)-len(suffix)]
				trimmed = true
			}
		}
	}
	return name
}
