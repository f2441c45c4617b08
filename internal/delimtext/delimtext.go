// Package delimtext reads delimited export files one row at a time.
//
// Two layouts are supported: comma-separated text as written by spreadsheet
// exporters (quoted fields, possibly sloppy), and pipe-separated TLN lines.
// Input is decoded to UTF-8 first, honoring a UTF-8 or UTF-16 byte order
// mark, and NUL bytes are removed before parsing.
package delimtext

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format selects the row layout.
type Format int

const (
	// CSV is comma-separated text with optional double-quote qualifiers.
	CSV Format = iota
	// Pipe is one record per line with '|' between fields.
	Pipe
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case Pipe:
		return "pipe"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// maxLine bounds a single pipe-separated line.
const maxLine = 1024 * 1024

// Reader returns the rows of one input.
type Reader interface {
	// Next returns the next row. It returns io.EOF after the last row. The
	// slice may be reused by the following call.
	Next() ([]string, error)
	// Line returns the 1-based line number of the row last returned.
	Line() int
}

// NewReader returns a Reader over r in the given format.
func NewReader(r io.Reader, format Format) Reader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	clean := newNullStripper(decoded)

	if format == Pipe {
		scanner := bufio.NewScanner(clean)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
		return &pipeReader{scanner: scanner}
	}

	cr := csv.NewReader(clean)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1 // allow variable field counts
	cr.ReuseRecord = true
	return &csvReader{r: cr}
}

// Open opens path on fs for reading.
func Open(fs afero.Fs, path string) (io.ReadCloser, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

type csvReader struct {
	r    *csv.Reader
	line int
}

func (c *csvReader) Next() ([]string, error) {
	row, err := c.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading row: %w", err)
	}
	c.line, _ = c.r.FieldPos(0)
	return row, nil
}

func (c *csvReader) Line() int {
	return c.line
}

type pipeReader struct {
	scanner *bufio.Scanner
	line    int
	row     []string
}

// Next skips blank lines and trims whitespace around each field.
func (p *pipeReader) Next() ([]string, error) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" {
			continue
		}

		p.row = p.row[:0]
		for _, field := range strings.Split(text, "|") {
			p.row = append(p.row, strings.TrimSpace(field))
		}
		return p.row, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", p.line+1, err)
	}
	return nil, io.EOF
}

func (p *pipeReader) Line() int {
	return p.line
}

// nullStripper wraps a reader and strips null bytes from the stream.
// Some exporters pad cells with NULs, which csv.Reader rejects.
type nullStripper struct {
	r io.Reader
}

func newNullStripper(r io.Reader) io.Reader {
	return &nullStripper{r: r}
}

func (ns *nullStripper) Read(p []byte) (int, error) {
	for {
		n, err := ns.r.Read(p)
		if n > 0 {
			kept := 0
			for _, b := range p[:n] {
				if b != 0 {
					p[kept] = b
					kept++
				}
			}
			n = kept
		}
		// A chunk of only NULs must not look like a zero-length read.
		if n > 0 || err != nil {
			return n, err
		}
	}
}
