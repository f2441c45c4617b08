package adapter

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/header"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timestamp"
)

// exiftoolDetail lists the descriptive tags joined into DETAIL, in order.
var exiftoolDetail = []string{"Title", "Subject", "Description", "Creator", "CreatorTool"}

// exiftool reads "exiftool -csv" output. Dates such as
// "2017:05:16 16:17:09-04:00" carry an offset the tool does not always
// apply consistently, so only the date is kept.
type exiftool struct {
	opts   Options
	logger *zap.Logger
	norm   *timestamp.Normalizer
	hdr    *header.Index
	rec    model.Record
	out    []*model.Record
}

func newExifTool(opts Options) Adapter {
	return &exiftool{opts: opts, logger: opts.Logger, norm: opts.Normalizer}
}

func (a *exiftool) Format() delimtext.Format { return delimtext.CSV }

func (a *exiftool) HasHeader() bool { return true }

func (a *exiftool) Begin(file string, hdr []string) error {
	a.logger = fileLogger(a.opts.Logger, file)
	a.norm = a.opts.Normalizer.WithLogger(a.logger)
	a.hdr = header.New(hdr)
	return nil
}

func (a *exiftool) Process(line int, row []string) []*model.Record {
	a.out = a.out[:0]
	a.rec.Reset()
	if blank(row) {
		return nil
	}

	value := func(label string) string {
		return unquote(a.hdr.Value(row, label))
	}
	date := func(label string) model.Epoch {
		return a.norm.DateOnly(a.hdr.Value(row, label), ' ', ':', ':')
	}

	var detail strings.Builder
	for _, label := range exiftoolDetail {
		if v := value(label); v != "" {
			detail.WriteString("[" + v + "] ")
		}
	}

	a.rec.Detail = detail.String()
	a.rec.Type = value("FileName")
	a.rec.LogSource = "exiftool"
	a.rec.From = value("Author")
	a.rec.To = value("Company")
	a.rec.SetTimes(model.NoTime, date("ModifyDate"), date("MetadataDate"), date("CreateDate"))

	a.out = append(a.out, &a.rec)
	return a.out
}
