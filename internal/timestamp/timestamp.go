// Package timestamp converts date and time text found in exports into
// 32-bit epoch seconds.
//
// The package-level functions are pure and return an error describing why a
// value could not be converted. Normalizer wraps them with the policy used
// by every adapter: failures become model.NoTime and are logged as warnings.
package timestamp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timezone"
)

var (
	// ErrEmpty is returned for empty input text.
	ErrEmpty = errors.New("empty timestamp")

	// ErrSyntax is returned when a date or time component is not an integer.
	ErrSyntax = errors.New("malformed timestamp component")

	// ErrOutOfRange is returned when the result does not fit in an Epoch.
	ErrOutOfRange = errors.New("timestamp outside 32-bit epoch range")
)

// pmMarker is the meridiem token that moves an hour into the afternoon.
const pmMarker = "PM"

// FromComponents converts already separated date and time components. Each
// component must be an unsigned decimal integer. The reading is resolved in tz, then
// skew seconds are added.
func FromComponents(month, day, year, hour, minute, second string, skew int32, tz *timezone.Context) (model.Epoch, error) {
	var v [6]int
	for i, s := range []string{year, month, day, hour, minute, second} {
		n, err := component(s)
		if err != nil {
			return model.NoTime, fmt.Errorf("%w: %q", ErrSyntax, s)
		}
		v[i] = n
	}
	return fromInts(v[0], v[1], v[2], v[3], v[4], v[5], skew, tz)
}

// FromDelimited converts text shaped like "1/10/2009 8:16:10 PM". The text is
// split on sep into date, time and meridiem parts. The date is split on
// dateDelim into month, day and year, and the time on timeDelim into hour,
// minute and second. A missing time part means midnight.
//
// When a meridiem marker is present, exactly "PM" adds twelve hours to any
// hour other than 12, and any other marker, "pm" included, turns hour 12
// into hour 0.
func FromDelimited(text string, sep, dateDelim, timeDelim byte, skew int32, tz *timezone.Context) (model.Epoch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.NoTime, ErrEmpty
	}

	parts := strings.Split(text, string(sep))
	date := split(field(parts, 0), dateDelim)
	clock := field(parts, 1)
	marker := strings.TrimSpace(field(parts, 2))

	hour, minute, second := "0", "0", "0"
	if clock != "" {
		t := split(clock, timeDelim)
		h, err := component(field(t, 0))
		if err != nil {
			return model.NoTime, fmt.Errorf("%w: hour in %q", ErrSyntax, text)
		}
		if marker != "" {
			h = to24Hour(h, marker)
		}
		hour = strconv.Itoa(h)
		minute = field(t, 1)
		second = field(t, 2)
	}

	return FromComponents(field(date, 0), field(date, 1), field(date, 2), hour, minute, second, skew, tz)
}

// FromDelimitedDateOnly splits text the same way as FromDelimited but reads
// the date year first ("2017-05-16", "2017:05:16") and ignores the time,
// returning midnight of that day. Some exports record a time of day that
// mixes local and UTC clocks; only the date can be trusted.
func FromDelimitedDateOnly(text string, sep, dateDelim, timeDelim byte, skew int32, tz *timezone.Context) (model.Epoch, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.NoTime, ErrEmpty
	}

	parts := strings.Split(text, string(sep))
	date := split(field(parts, 0), dateDelim)

	return FromComponents(field(date, 1), field(date, 2), field(date, 0), "0", "0", "0", skew, tz)
}

// ExpandYear maps a two-digit year into the 2000s. Years of 100 or more are
// returned unchanged. There is no century inference, so 99 becomes 2099.
func ExpandYear(year int) int {
	if year < 100 {
		return year + 2000
	}
	return year
}

func fromInts(year, month, day, hour, minute, second int, skew int32, tz *timezone.Context) (model.Epoch, error) {
	if tz == nil {
		tz = timezone.UTC()
	}

	t, err := tz.Resolve(year, month, day, hour, minute, second)
	if err != nil {
		return model.NoTime, err
	}

	sec := t.Unix() + int64(skew)
	if sec < -model.MaxEpoch-1 || sec > model.MaxEpoch {
		return model.NoTime, fmt.Errorf("%w: %d", ErrOutOfRange, sec)
	}
	return model.Epoch(sec), nil
}

// component parses one date or time component. Surrounding space is
// ignored; a sign is not accepted.
func component(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

func to24Hour(hour int, marker string) int {
	if marker == pmMarker {
		if hour != 12 {
			return hour + 12
		}
		return hour
	}
	if hour == 12 {
		return 0
	}
	return hour
}

func split(s string, delim byte) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, string(delim))
}

// field returns parts[i], or "" when the index is out of range.
func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
