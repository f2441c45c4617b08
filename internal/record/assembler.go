// Package record fills bodyfile records from a data row using the field
// catalog, so one algorithm serves every catalogued export schema.
package record

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/catalog"
	"github.com/cdtdelta/mactimer/internal/header"
	"github.com/cdtdelta/mactimer/internal/model"
)

// TimeFunc converts a timestamp cell to an epoch. It returns model.NoTime
// when the text cannot be converted.
type TimeFunc func(text string) model.Epoch

// Config describes the file an Assembler reads.
type Config struct {
	Artifact  catalog.ArtifactID
	Artifacts catalog.ArtifactLookup
	Fields    catalog.FieldLookup
	Header    *header.Index
	ParseTime TimeFunc
	// LogPrefix is prepended to the artifact's short tag to form LOG-SOURCE.
	LogPrefix string
	Logger    *zap.Logger
}

// Assembler fills records for one artifact in one file. It keeps no per-row
// state; the caller owns the record buffers.
type Assembler struct {
	cfg       Config
	logSource string
	category  string
	timed     map[catalog.Slot]bool
	logger    *zap.Logger
}

var timeRoles = []catalog.Role{catalog.ATime, catalog.MTime, catalog.CTime, catalog.BTime}

// New returns an Assembler for cfg.
func New(cfg Config) *Assembler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Assembler{
		cfg:       cfg,
		logSource: cfg.LogPrefix + cfg.Artifacts.ShortTag(cfg.Artifact),
		category:  cfg.Artifacts.CategoryTag(cfg.Artifact),
		timed:     make(map[catalog.Slot]bool),
		logger:    logger,
	}

	for _, slot := range catalog.Slots {
		for _, role := range timeRoles {
			if label, ok := a.label(slot, role); ok && cfg.Header.Has(label) {
				a.timed[slot] = true
			}
		}
	}
	return a
}

// Fill populates rec for one slot of row. The four timestamps are resolved
// first; when none is positive the record is left empty and Fill returns
// false. Otherwise the remaining fields are filled and Fill returns true.
// Slots are independent: a primary that fails does not prevent a secondary.
func (a *Assembler) Fill(slot catalog.Slot, line int, row []string, rec *model.Record) bool {
	rec.Reset()

	atime := a.time(slot, catalog.ATime, row)
	mtime := a.time(slot, catalog.MTime, row)
	ctime := a.time(slot, catalog.CTime, row)
	btime := a.time(slot, catalog.BTime, row)

	if !atime.Valid() && !mtime.Valid() && !ctime.Valid() && !btime.Valid() {
		if a.timed[slot] {
			a.logger.Warn("no valid time values found",
				zap.Int("line", line),
				zap.Stringer("slot", slot))
		}
		return false
	}

	a.fillText(slot, row, rec)
	rec.SetTimes(atime, mtime, ctime, btime)
	return true
}

// FillAlternate populates rec with a single extra access time taken from
// one of the alternate run-time roles of the primary slot. The text fields
// are copied from base. It returns false when the alternate time is absent.
func (a *Assembler) FillAlternate(role catalog.Role, row []string, base, rec *model.Record) bool {
	rec.Reset()

	atime := a.time(catalog.Primary, role, row)
	if !atime.Valid() {
		return false
	}

	*rec = *base
	rec.SetTimes(atime, model.NoTime, model.NoTime, model.NoTime)
	return true
}

func (a *Assembler) fillText(slot catalog.Slot, row []string, rec *model.Record) {
	var detail strings.Builder
	detail.WriteString(a.value(slot, catalog.Detail, row))
	for _, role := range []catalog.Role{catalog.Detail2, catalog.Detail3, catalog.Detail4} {
		if v := a.value(slot, role, row); v != "" {
			detail.WriteString(" (" + v + ")")
		}
	}

	rec.Hash = a.value(slot, catalog.Hash, row)
	rec.Detail = detail.String()
	rec.Type = a.category
	if v := a.value(slot, catalog.Type, row); v != "" {
		rec.Type = v
	}
	rec.LogSource = a.logSource
	rec.From = a.value(slot, catalog.From, row)
	rec.To = a.value(slot, catalog.To, row)
	rec.Size = a.value(slot, catalog.Size, row)
}

// time resolves one timestamp role. An absent column or an empty cell is
// model.NoTime without a diagnostic.
func (a *Assembler) time(slot catalog.Slot, role catalog.Role, row []string) model.Epoch {
	text := a.value(slot, role, row)
	if text == "" {
		return model.NoTime
	}
	return a.cfg.ParseTime(text)
}

func (a *Assembler) value(slot catalog.Slot, role catalog.Role, row []string) string {
	label, ok := a.label(slot, role)
	if !ok {
		return ""
	}
	return a.cfg.Header.Value(row, label)
}

func (a *Assembler) label(slot catalog.Slot, role catalog.Role) (string, bool) {
	return a.cfg.Fields.LabelFor(catalog.Code(a.cfg.Artifact, slot, role))
}
