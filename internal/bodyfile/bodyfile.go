// Package bodyfile writes timeline records in the pipe-delimited bodyfile
// layout read by mactime:
//
//	HASH|DETAIL|TYPE|LOG-SOURCE|FROM|TO|SIZE|ATIME|MTIME|CTIME|BTIME
package bodyfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cdtdelta/mactimer/internal/model"
)

// Delimiter separates fields on a line.
const Delimiter = '|'

// substitute replaces the delimiter inside a field value.
var substitute = strings.NewReplacer("|", "-", "\r\n", " ", "\n", " ", "\r", " ")

// Writer writes records to an underlying stream. Output is buffered; call
// Flush when done.
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record as a single line. A '|' inside any field becomes
// '-' and line breaks become spaces so each record stays on one line.
func (w *Writer) Write(rec *model.Record) error {
	if _, err := w.w.WriteString(Format(rec)); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	w.count++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Format renders one record as a line without the trailing newline.
func Format(rec *model.Record) string {
	values := rec.Values()
	for i, v := range values {
		values[i] = substitute.Replace(v)
	}
	return strings.Join(values, string(Delimiter))
}
