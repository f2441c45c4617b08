// Package query builds parameterized WHERE fragments for selecting stored
// timeline records.
package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cdtdelta/mactimer/internal/model"
)

// Dialect is the SQL syntax a predicate is rendered in.
type Dialect interface {
	// Placeholder returns the parameter placeholder for a 1-based index.
	Placeholder(index int) string
	// QuoteColumn quotes a column name where the dialect needs it.
	QuoteColumn(name string) string
}

// Logic determines how multiple predicates are combined.
type Logic int

const (
	AND Logic = iota
	OR
)

// Operator represents a SQL comparison operator.
type Operator string

const (
	Equal    Operator = "="
	NotEqual Operator = "!="
	Like     Operator = "LIKE"
	NotLike  Operator = "NOT LIKE"
)

var validOperators = map[Operator]bool{
	Equal: true, NotEqual: true, Like: true, NotLike: true,
}

// TextFields are the record columns a Simple predicate may compare.
var TextFields = model.Fields[:7:7]

// TimeFields are the epoch columns matched by TimeRange.
var TimeFields = model.Fields[7:]

// Predicate is a single filter condition or a composite of conditions.
// Values are always passed as parameters.
type Predicate struct {
	kind  predicateKind
	field string
	op    Operator
	value string
	from  model.Epoch
	to    model.Epoch
	left  *Predicate
	right *Predicate
	logic Logic
}

type predicateKind int

const (
	predSimple predicateKind = iota + 1
	predTime
	predComposite
)

// Simple creates a predicate that compares a text field to a value. Like
// and NotLike match the value anywhere in the field.
// Returns nil if the field name is invalid or the operator is unrecognized.
func Simple(field string, op Operator, value string) *Predicate {
	if !slices.Contains(TextFields, field) || !validOperators[op] {
		return nil
	}
	return &Predicate{kind: predSimple, field: field, op: op, value: value}
}

// TimeRange matches records with at least one time inside [from, to].
// An invalid bound leaves that side open; with both invalid it returns nil.
func TimeRange(from, to model.Epoch) *Predicate {
	if !from.Valid() && !to.Valid() {
		return nil
	}
	return &Predicate{kind: predTime, from: from, to: to}
}

// Combine joins predicates with the given logic. Nil predicates are
// skipped; it returns nil when nothing is left and the predicate itself
// when only one is.
func Combine(preds []*Predicate, logic Logic) *Predicate {
	var result *Predicate
	for _, p := range preds {
		switch {
		case p == nil:
		case result == nil:
			result = p
		default:
			result = &Predicate{kind: predComposite, left: result, right: p, logic: logic}
		}
	}
	return result
}

// Where renders the predicate for d. first is the index of the first
// placeholder, so the fragment can follow other parameters.
func (p *Predicate) Where(d Dialect, first int) (string, []any) {
	if p == nil {
		return "", nil
	}
	next := first
	return p.render(d, &next)
}

func (p *Predicate) render(d Dialect, next *int) (string, []any) {
	placeholder := func() string {
		s := d.Placeholder(*next)
		*next++
		return s
	}

	switch p.kind {
	case predSimple:
		value := p.value
		if p.op == Like || p.op == NotLike {
			value = "%" + value + "%"
		}
		return fmt.Sprintf("(%s %s %s)", d.QuoteColumn(p.field), p.op, placeholder()), []any{value}

	case predTime:
		var terms []string
		var args []any
		for _, f := range TimeFields {
			col := d.QuoteColumn(f)
			switch {
			case p.from.Valid() && p.to.Valid():
				terms = append(terms, fmt.Sprintf("%s BETWEEN %s AND %s", col, placeholder(), placeholder()))
				args = append(args, int64(p.from), int64(p.to))
			case p.from.Valid():
				terms = append(terms, fmt.Sprintf("%s >= %s", col, placeholder()))
				args = append(args, int64(p.from))
			default:
				terms = append(terms, fmt.Sprintf("%s <= %s", col, placeholder()))
				args = append(args, int64(p.to))
			}
		}
		return "(" + strings.Join(terms, " OR ") + ")", args

	case predComposite:
		leftSQL, leftArgs := p.left.render(d, next)
		rightSQL, rightArgs := p.right.render(d, next)

		logicStr := "AND"
		if p.logic == OR {
			logicStr = "OR"
		}
		return fmt.Sprintf("(%s %s %s)", leftSQL, logicStr, rightSQL), append(leftArgs, rightArgs...)

	default:
		return "", nil
	}
}

// Parse reads a filter expression of the form field OP value, where OP is
// one of "=", "!=", "~" (contains) or "!~" (does not contain).
func Parse(expr string) (*Predicate, error) {
	i := strings.IndexAny(expr, "!=~")
	if i < 0 {
		return nil, fmt.Errorf("filter %q has no operator", expr)
	}

	field := strings.TrimSpace(expr[:i])
	rest := expr[i:]

	var op Operator
	switch {
	case strings.HasPrefix(rest, "!="):
		op, rest = NotEqual, rest[2:]
	case strings.HasPrefix(rest, "!~"):
		op, rest = NotLike, rest[2:]
	case strings.HasPrefix(rest, "~"):
		op, rest = Like, rest[1:]
	case strings.HasPrefix(rest, "="):
		op, rest = Equal, rest[1:]
	default:
		return nil, fmt.Errorf("filter %q has no operator", expr)
	}

	p := Simple(field, op, strings.TrimSpace(rest))
	if p == nil {
		return nil, fmt.Errorf("filter %q: unknown field %s (fields: %s)",
			expr, strconv.Quote(field), strings.Join(TextFields, ", "))
	}
	return p, nil
}
