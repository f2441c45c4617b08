package model

import (
	"math"
	"strconv"
)

// Epoch is a timestamp in seconds since 1970-01-01 UTC, limited to 32 bits
// for compatibility with the bodyfile format.
type Epoch int32

// NoTime marks a timestamp that could not be parsed or was never set.
// Only values greater than zero are treated as valid, so epoch 0 is
// indistinguishable from NoTime.
const NoTime Epoch = -1

// MaxEpoch is the last second representable in an Epoch.
const MaxEpoch = math.MaxInt32

// Valid reports whether e is a usable timestamp.
func (e Epoch) Valid() bool {
	return e > 0
}

// String renders a valid epoch as decimal seconds and anything else as "".
func (e Epoch) String() string {
	if !e.Valid() {
		return ""
	}
	return strconv.FormatInt(int64(e), 10)
}

// Fields is the ordered list of columns in a bodyfile line.
// Used for the output header, database columns, and field validation.
var Fields = []string{
	"hash", "detail", "type", "log_source", "from", "to",
	"size", "atime", "mtime", "ctime", "btime",
}

// Record is a single timeline entry in bodyfile order:
//
//	HASH|DETAIL|TYPE|LOG-SOURCE|FROM|TO|SIZE|ATIME|MTIME|CTIME|BTIME
//
// Every field is text on the wire; time fields hold decimal epoch seconds
// or are empty.
type Record struct {
	Hash      string `json:"hash" db:"hash"`
	Detail    string `json:"detail" db:"detail"`
	Type      string `json:"type" db:"type"`
	LogSource string `json:"log_source" db:"log_source"`
	From      string `json:"from" db:"from"`
	To        string `json:"to" db:"to"`
	Size      string `json:"size" db:"size"`
	ATime     string `json:"atime" db:"atime"`
	MTime     string `json:"mtime" db:"mtime"`
	CTime     string `json:"ctime" db:"ctime"`
	BTime     string `json:"btime" db:"btime"`
}

// Values returns the record's fields in bodyfile order.
func (r *Record) Values() []string {
	return []string{
		r.Hash, r.Detail, r.Type, r.LogSource, r.From, r.To,
		r.Size, r.ATime, r.MTime, r.CTime, r.BTime,
	}
}

// SetTimes fills the four time fields, leaving invalid epochs empty.
func (r *Record) SetTimes(atime, mtime, ctime, btime Epoch) {
	r.ATime = atime.String()
	r.MTime = mtime.String()
	r.CTime = ctime.String()
	r.BTime = btime.String()
}

// HasTime reports whether at least one time field holds a positive epoch.
func (r *Record) HasTime() bool {
	for _, v := range []string{r.ATime, r.MTime, r.CTime, r.BTime} {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return true
		}
	}
	return false
}

// IsZero reports whether nothing has been written to the record.
func (r *Record) IsZero() bool {
	return *r == Record{}
}

// Reset clears the record so the same buffer can be reused for the next row.
func (r *Record) Reset() {
	*r = Record{}
}
