package timestamp

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timezone"
)

// Normalizer binds a zone, a clock skew and a logger to the conversion
// functions. Every failure returns model.NoTime; failures on non-empty text
// are logged at warning level. A Normalizer holds no mutable state.
type Normalizer struct {
	tz     *timezone.Context
	skew   int32
	logger *zap.Logger
}

// NewNormalizer returns a Normalizer for the given zone and skew. A nil tz
// means UTC and a nil logger discards diagnostics.
func NewNormalizer(tz *timezone.Context, skew int32, logger *zap.Logger) *Normalizer {
	if tz == nil {
		tz = timezone.UTC()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{tz: tz, skew: skew, logger: logger}
}

// WithLogger returns a copy of n that reports to logger.
func (n *Normalizer) WithLogger(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{tz: n.tz, skew: n.skew, logger: logger}
}

// Zone returns the zone readings are resolved in.
func (n *Normalizer) Zone() *timezone.Context {
	return n.tz
}

// Skew returns the seconds added to every result.
func (n *Normalizer) Skew() int32 {
	return n.skew
}

// Components is FromComponents under the normalizer's policy.
func (n *Normalizer) Components(month, day, year, hour, minute, second string) model.Epoch {
	e, err := FromComponents(month, day, year, hour, minute, second, n.skew, n.tz)
	return n.check(e, err, month+"/"+day+"/"+year+" "+hour+":"+minute+":"+second)
}

// Delimited is FromDelimited under the normalizer's policy.
func (n *Normalizer) Delimited(text string, sep, dateDelim, timeDelim byte) model.Epoch {
	e, err := FromDelimited(text, sep, dateDelim, timeDelim, n.skew, n.tz)
	return n.check(e, err, text)
}

// DateOnly is FromDelimitedDateOnly under the normalizer's policy.
func (n *Normalizer) DateOnly(text string, sep, dateDelim, timeDelim byte) model.Epoch {
	e, err := FromDelimitedDateOnly(text, sep, dateDelim, timeDelim, n.skew, n.tz)
	return n.check(e, err, text)
}

func (n *Normalizer) check(e model.Epoch, err error, text string) model.Epoch {
	if err == nil {
		return e
	}
	if errors.Is(err, ErrEmpty) {
		return model.NoTime
	}
	n.logger.Warn("unable to convert timestamp",
		zap.String("value", text),
		zap.String("zone", n.tz.Rule()),
		zap.Error(err))
	return model.NoTime
}
