package adapter

import (
	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/header"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timestamp"
)

// griffeye reads media triage CSV exports.
type griffeye struct {
	opts   Options
	logger *zap.Logger
	norm   *timestamp.Normalizer
	hdr    *header.Index
	rec    model.Record
	out    []*model.Record
}

func newGriffeye(opts Options) Adapter {
	return &griffeye{opts: opts, logger: opts.Logger, norm: opts.Normalizer}
}

func (a *griffeye) Format() delimtext.Format { return delimtext.CSV }

func (a *griffeye) HasHeader() bool { return true }

func (a *griffeye) Begin(file string, hdr []string) error {
	a.logger = fileLogger(a.opts.Logger, file)
	a.norm = a.opts.Normalizer.WithLogger(a.logger)
	a.hdr = header.New(hdr)
	return nil
}

func (a *griffeye) Process(line int, row []string) []*model.Record {
	a.out = a.out[:0]
	a.rec.Reset()
	if blank(row) {
		return nil
	}

	at := func(label string) model.Epoch {
		return a.norm.Delimited(a.hdr.Value(row, label), ' ', '/', ':')
	}
	btime := at("Created Date")
	atime := at("Last Accessed")
	mtime := at("Last Write Time")
	ctime := at("Exif: CreateDate")

	if !btime.Valid() && !atime.Valid() && !mtime.Valid() && !ctime.Valid() {
		a.logger.Warn("no valid time values found", zap.Int("line", line))
		return nil
	}

	a.rec.Hash = a.hdr.Value(row, "MD5")
	a.rec.Detail = unquote(a.hdr.Value(row, "Directory Path")) + `\` + unquote(a.hdr.Value(row, "File Name"))
	a.rec.Type = "cat" + a.hdr.Value(row, "Category")
	a.rec.LogSource = "griffeye"
	a.rec.Size = a.hdr.Value(row, "File Size")
	a.rec.SetTimes(atime, mtime, ctime, btime)

	a.out = append(a.out, &a.rec)
	return a.out
}
