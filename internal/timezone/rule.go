package timezone

import (
	"fmt"
	"strconv"
	"strings"
)

// rule is a parsed zone rule in the command-line convention, where the
// offset is added to UTC: "EST-5EDT,M4.1.0,M10.1.0" is five hours behind
// UTC and "GMT+2" is two hours ahead.
type rule struct {
	stdName   string
	stdOffset int // seconds east of UTC
	dstName   string
	dstOffset int // seconds east of UTC; only meaningful when hasDSTOff
	hasDSTOff bool
	dates     string // the ",start[/time],end[/time]" part, passed through
}

// parseRule parses a POSIX-style zone rule. The offset sign follows the
// command-line convention (east of UTC is positive), not the C library one.
func parseRule(s string) (*rule, error) {
	r := &rule{}
	rest := s

	name, rest, err := parseName(rest)
	if err != nil {
		return nil, fmt.Errorf("standard zone name: %w", err)
	}
	r.stdName = name

	off, rest, ok := parseOffset(rest)
	if !ok {
		return nil, fmt.Errorf("missing offset after %q", name)
	}
	r.stdOffset = off

	if rest == "" {
		return r, nil
	}

	if rest[0] != ',' {
		name, rest, err = parseName(rest)
		if err != nil {
			return nil, fmt.Errorf("daylight zone name: %w", err)
		}
		r.dstName = name

		if off, after, ok := parseOffset(rest); ok {
			r.dstOffset = off
			r.hasDSTOff = true
			rest = after
		}
	}

	if rest != "" {
		if rest[0] != ',' || r.dstName == "" {
			return nil, fmt.Errorf("unexpected %q", rest)
		}
		if err := checkDates(rest[1:]); err != nil {
			return nil, err
		}
		r.dates = rest
	}

	return r, nil
}

// posix renders the rule in C library form, which counts offsets west of
// UTC as positive.
func (r *rule) posix() string {
	var b strings.Builder
	b.WriteString(quoteName(r.stdName))
	b.WriteString(formatOffset(-r.stdOffset))
	if r.dstName != "" {
		b.WriteString(quoteName(r.dstName))
		if r.hasDSTOff {
			b.WriteString(formatOffset(-r.dstOffset))
		}
		b.WriteString(r.dates)
	}
	return b.String()
}

func parseName(s string) (string, string, error) {
	if strings.HasPrefix(s, "<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return "", "", fmt.Errorf("unterminated quoted name in %q", s)
		}
		name := s[1:end]
		if len(name) < 3 {
			return "", "", fmt.Errorf("name %q shorter than three characters", name)
		}
		return name, s[end+1:], nil
	}

	i := 0
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	if i < 3 {
		return "", "", fmt.Errorf("name %q shorter than three letters", s[:i])
	}
	return s[:i], s[i:], nil
}

// parseOffset reads [+-]hh[:mm[:ss]] and returns it in seconds.
func parseOffset(s string) (int, string, bool) {
	if s == "" {
		return 0, s, false
	}

	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}

	var parts [3]int
	for i := 0; i < 3; i++ {
		j := 0
		for j < len(s) && j < 2 && isDigit(s[j]) {
			j++
		}
		if j == 0 {
			if i == 0 {
				return 0, s, false
			}
			break
		}
		parts[i], _ = strconv.Atoi(s[:j])
		s = s[j:]
		if i < 2 && strings.HasPrefix(s, ":") && len(s) > 1 && isDigit(s[1]) {
			s = s[1:]
			continue
		}
		break
	}

	if parts[0] > 24 || parts[1] > 59 || parts[2] > 59 {
		return 0, s, false
	}
	return sign * (parts[0]*3600 + parts[1]*60 + parts[2]), s, true
}

// checkDates validates "start[/time],end[/time]" where each date is Jn, n,
// or Mm.w.d.
func checkDates(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fmt.Errorf("expected start and end dates, got %q", s)
	}
	for _, p := range parts {
		date, at, hasTime := strings.Cut(p, "/")
		if err := checkDate(date); err != nil {
			return err
		}
		if hasTime {
			if _, rest, ok := parseOffset(at); !ok || rest != "" {
				return fmt.Errorf("invalid transition time %q", at)
			}
		}
	}
	return nil
}

func checkDate(s string) error {
	switch {
	case strings.HasPrefix(s, "M"):
		f := strings.Split(s[1:], ".")
		if len(f) != 3 {
			return fmt.Errorf("invalid month rule %q", s)
		}
		limits := [3][2]int{{1, 12}, {1, 5}, {0, 6}}
		for i, v := range f {
			n, err := strconv.Atoi(v)
			if err != nil || n < limits[i][0] || n > limits[i][1] {
				return fmt.Errorf("invalid month rule %q", s)
			}
		}
	case strings.HasPrefix(s, "J"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 1 || n > 365 {
			return fmt.Errorf("invalid julian day %q", s)
		}
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 365 {
			return fmt.Errorf("invalid day %q", s)
		}
	}
	return nil
}

func formatOffset(sec int) string {
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	h, m, s := sec/3600, sec/60%60, sec%60
	switch {
	case s != 0:
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	default:
		return fmt.Sprintf("%s%d", sign, h)
	}
}

func quoteName(name string) string {
	for i := 0; i < len(name); i++ {
		if !isAlpha(name[i]) {
			return "<" + name + ">"
		}
	}
	return name
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
