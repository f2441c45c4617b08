package adapter

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/header"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timestamp"
)

// Investigator notes use a fixed header:
//
//	Date/Time,Artifact,Details,Source,From,To,Notes
//
// Each row becomes one record whose BTIME is the noted time.
const (
	notesDateTime = "Date/Time"
	notesArtifact = "Artifact"
	notesDetails  = "Details"
	notesSource   = "Source"
	notesFrom     = "From"
	notesTo       = "To"
	notesNotes    = "Notes"
)

type notes struct {
	opts   Options
	logger *zap.Logger
	norm   *timestamp.Normalizer
	hdr    *header.Index
	rec    model.Record
	out    []*model.Record
}

func newNotes(opts Options) Adapter {
	return &notes{opts: opts, logger: opts.Logger, norm: opts.Normalizer}
}

func (a *notes) Format() delimtext.Format { return delimtext.CSV }

func (a *notes) HasHeader() bool { return true }

func (a *notes) Begin(file string, hdr []string) error {
	a.logger = fileLogger(a.opts.Logger, file)
	a.norm = a.opts.Normalizer.WithLogger(a.logger)
	a.hdr = header.New(hdr)
	if !a.hdr.Has(notesDateTime) {
		a.logger.Warn("notes header has no date column", zap.String("column", notesDateTime))
	}
	return nil
}

func (a *notes) Process(line int, row []string) []*model.Record {
	a.out = a.out[:0]
	a.rec.Reset()
	if blank(row) {
		return nil
	}

	value := func(label string) string {
		return unquote(a.hdr.Value(row, label))
	}

	detail := value(notesDetails)
	if n := value(notesNotes); n != "" {
		detail += " [" + n + "]"
	}
	source := value(notesSource)
	if source == "" {
		source = a.opts.Custom1
	}
	artifact := value(notesArtifact)
	if artifact == "" {
		artifact = a.opts.Custom2
	}

	btime := a.norm.Delimited(completeDate(a.hdr.Value(row, notesDateTime), a.opts.Year), ' ', '/', ':')

	a.rec.Detail = detail
	a.rec.Type = artifact
	a.rec.LogSource = "notes-" + source
	a.rec.From = value(notesFrom)
	a.rec.To = value(notesTo)
	a.rec.SetTimes(model.NoTime, model.NoTime, model.NoTime, btime)

	a.out = append(a.out, &a.rec)
	return a.out
}

// completeDate fills in the year of a hand-written "M/D[/Y] ..." date.
// A missing year becomes year; a one- or two-digit year is expanded.
func completeDate(text string, year int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	date, rest, _ := strings.Cut(text, " ")
	parts := strings.Split(date, "/")
	switch {
	case len(parts) == 2 && year > 0:
		parts = append(parts, strconv.Itoa(year))
	case len(parts) == 3 && len(parts[2]) <= 2:
		if y, err := strconv.Atoi(parts[2]); err == nil {
			parts[2] = strconv.Itoa(timestamp.ExpandYear(y))
		}
	default:
		return text
	}

	date = strings.Join(parts, "/")
	if rest == "" {
		return date
	}
	return date + " " + rest
}
