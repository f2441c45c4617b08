// Package timezone turns naive wall-clock readings into instants under a
// zone rule supplied on the command line.
package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

var (
	// ErrInvalidRule is returned by New for a rule string that is neither a
	// POSIX-style rule nor a known zone name.
	ErrInvalidRule = errors.New("invalid time zone rule")

	// ErrInvalidLocalTime is returned by Resolve when the wall-clock reading
	// does not exist in the zone, such as a time skipped by a daylight saving
	// change or February 30th.
	ErrInvalidLocalTime = errors.New("local time does not exist in zone")
)

// DefaultRule is the zone used when none is configured.
const DefaultRule = "UTC"

// Context resolves wall-clock readings in a single zone. It is immutable
// after construction and safe to share.
type Context struct {
	rule string
	loc  *time.Location
}

// UTC returns a Context for Coordinated Universal Time.
func UTC() *Context {
	return &Context{rule: DefaultRule, loc: time.UTC}
}

// New builds a Context from a rule string. Accepted forms:
//
//	""                            UTC
//	"UTC", "GMT", "Z"             UTC
//	"GMT-5", "EST-5EDT,M4.1.0,M10.1.0"
//	                              POSIX-style rule, offset added to UTC
//	"America/New_York"            zone database name
//
// In POSIX-style rules a negative offset is west of Greenwich, so
// "EST-5EDT" is five hours behind UTC with daylight saving one hour ahead
// of that.
func New(ruleStr string) (*Context, error) {
	s := strings.TrimSpace(ruleStr)
	switch strings.ToUpper(s) {
	case "", "UTC", "GMT", "Z", "UCT":
		c := UTC()
		if s != "" {
			c.rule = s
		}
		return c, nil
	}

	if strings.Contains(s, "/") && !strings.Contains(s, ",") {
		loc, err := time.LoadLocation(s)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidRule, s, err)
		}
		return &Context{rule: s, loc: loc}, nil
	}

	r, err := parseRule(s)
	if err != nil {
		// Zone database names without a slash, such as "Japan".
		if loc, lerr := time.LoadLocation(s); lerr == nil {
			return &Context{rule: s, loc: loc}, nil
		}
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRule, s, err)
	}

	loc, err := time.LoadLocationFromTZData(s, tzifFromRule(r.posix()))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRule, s, err)
	}
	return &Context{rule: s, loc: loc}, nil
}

// Rule returns the rule string the Context was built from.
func (c *Context) Rule() string {
	return c.rule
}

// Location returns the zone as a *time.Location.
func (c *Context) Location() *time.Location {
	return c.loc
}

// Resolve returns the instant at which clocks in the zone read the given
// date and time. Readings that the zone never shows, including out of range
// components, return ErrInvalidLocalTime. During the repeated hour at the
// end of daylight saving one of the two instants is returned.
func (c *Context) Resolve(year, month, day, hour, minute, second int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, c.Location())

	if t.Year() != year || int(t.Month()) != month || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d %02d:%02d:%02d in %s",
			ErrInvalidLocalTime, year, month, day, hour, minute, second, c.rule)
	}
	return t, nil
}
