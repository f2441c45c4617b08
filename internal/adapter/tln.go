package adapter

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/model"
)

// TLN fields:    Time|Source|Host|User|Description
// L2TTLN fields: Time|Source|Host|User|Description|TZ|Notes
const (
	tlnTime = iota
	tlnSource
	tlnHost
	tlnUser
	tlnDescription
	tlnTZ
	tlnNotes
)

// tln reads TLN and L2TTLN timelines. Times are already epoch seconds,
// so only the skew applies.
type tln struct {
	opts   Options
	logger *zap.Logger
	rec    model.Record
	out    []*model.Record
}

func newTLN(opts Options) Adapter {
	return &tln{opts: opts, logger: opts.Logger}
}

func (a *tln) Format() delimtext.Format { return delimtext.Pipe }

// HasHeader is false because the header line is optional; Process skips
// it when present.
func (a *tln) HasHeader() bool { return false }

func (a *tln) Begin(file string, _ []string) error {
	a.logger = fileLogger(a.opts.Logger, file)
	return nil
}

func (a *tln) Process(line int, row []string) []*model.Record {
	a.out = a.out[:0]
	a.rec.Reset()

	if len(row) > 0 && row[tlnTime] == "Time" {
		return nil
	}
	if len(row) != 5 && len(row) != 7 {
		a.logger.Warn("expected 5 or 7 pipe-delimited fields",
			zap.Int("line", line),
			zap.Int("fields", len(row)))
		return nil
	}

	epoch, ok := a.epoch(row[tlnTime], line)
	if !ok {
		return nil
	}

	// Description is "datetime; timestamp_desc; message" when written by
	// log2timeline, free text otherwise.
	source := row[tlnSource]
	detail := row[tlnDescription]
	kind := source
	macb := "...."
	if parts := strings.SplitN(detail, ";", 3); len(parts) >= 2 {
		kind = strings.TrimSpace(parts[1])
		macb = mapTimestampDescToMACB(kind)
		if len(parts) == 3 {
			detail = strings.TrimSpace(parts[2])
		}
	}
	if len(row) == 7 {
		if notes := row[tlnNotes]; notes != "" && notes != "-" {
			detail += " [" + notes + "]"
		}
	}

	a.rec.Detail = detail
	a.rec.Type = kind
	a.rec.LogSource = "tln-" + source
	a.rec.From = row[tlnHost]
	a.rec.To = row[tlnUser]
	a.rec.SetTimes(macbTimes(macb, epoch))

	a.out = append(a.out, &a.rec)
	return a.out
}

func (a *tln) epoch(text string, line int) (model.Epoch, bool) {
	sec, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		a.logger.Warn("invalid timestamp", zap.Int("line", line), zap.String("value", text))
		return model.NoTime, false
	}
	sec += int64(a.opts.Normalizer.Skew())
	if sec <= 0 || sec > model.MaxEpoch {
		a.logger.Warn("timestamp out of range", zap.Int("line", line), zap.String("value", text))
		return model.NoTime, false
	}
	return model.Epoch(sec), true
}

// macbTimes places epoch in the time fields flagged by macb. An event with
// no flag is a plain event and fills all four.
func macbTimes(macb string, epoch model.Epoch) (atime, mtime, ctime, btime model.Epoch) {
	pick := func(i int) model.Epoch {
		if macb == "...." || macb[i] != '.' {
			return epoch
		}
		return model.NoTime
	}
	return pick(1), pick(0), pick(2), pick(3)
}

// mapTimestampDescToMACB maps a timestamp description to MACB notation.
func mapTimestampDescToMACB(tsDesc string) string {
	lower := strings.ToLower(tsDesc)
	macb := [4]byte{'.', '.', '.', '.'}

	if strings.Contains(lower, "modification") || strings.Contains(lower, "modified") ||
		strings.Contains(lower, "written") {
		macb[0] = 'M'
	}
	if strings.Contains(lower, "access") {
		macb[1] = 'A'
	}
	if strings.Contains(lower, "change") || strings.Contains(lower, "metadata") ||
		strings.Contains(lower, "entry") || strings.Contains(lower, "mft") {
		macb[2] = 'C'
	}
	if strings.Contains(lower, "creation") || strings.Contains(lower, "birth") ||
		strings.Contains(lower, "created") {
		macb[3] = 'B'
	}

	return string(macb[:])
}
