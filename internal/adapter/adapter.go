// Package adapter turns the rows of one export format into bodyfile
// records. Each format is registered under the type name given on the
// command line.
package adapter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/catalog"
	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timestamp"
)

var (
	// ErrUnknownType is returned by New for an unregistered type name.
	ErrUnknownType = errors.New("unknown input type")

	// ErrUnknownArtifact is returned by Begin when a file does not match
	// any catalogued export.
	ErrUnknownArtifact = errors.New("unknown artifact")
)

// Catalog is the lookup surface the catalog-driven adapters need.
type Catalog interface {
	catalog.ArtifactLookup
	catalog.FieldLookup
}

// Options carries run-wide settings into every adapter.
type Options struct {
	Normalizer *timestamp.Normalizer
	Catalog    Catalog
	// Year completes dates that were written without one.
	Year int
	// Custom1 and Custom2 are free values from the command line. The notes
	// adapter uses them for an empty Source and Artifact.
	Custom1 string
	Custom2 string
	Logger  *zap.Logger
}

// Adapter converts rows of one input format.
//
// The pipeline calls Begin once per file and then Process once per data
// row. Records returned by Process are owned by the adapter and are only
// valid until the next call.
type Adapter interface {
	// Format is the row layout the adapter reads.
	Format() delimtext.Format
	// HasHeader reports whether the first row of a file is a header row
	// that must be passed to Begin rather than Process.
	HasHeader() bool
	// Begin prepares for a new file. header is nil when HasHeader is false.
	Begin(file string, header []string) error
	// Process converts one row into zero or more records.
	Process(line int, row []string) []*model.Record
}

// Factory builds an adapter from run options.
type Factory func(opts Options) Adapter

var registry = map[string]Factory{
	"exiftool": newExifTool,
	"griffeye": newGriffeye,
	"ief":      newIEF,
	"notes":    newNotes,
	"tln":      newTLN,
}

// New returns the adapter registered under name.
func New(name string, opts Options) (Adapter, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownType, name, strings.Join(Types(), ", "))
	}
	if opts.Normalizer == nil {
		opts.Normalizer = timestamp.NewNormalizer(nil, 0, opts.Logger)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return factory(opts), nil
}

// Types returns the registered type names in sorted order.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fileLogger scopes diagnostics to one input file.
func fileLogger(logger *zap.Logger, file string) *zap.Logger {
	if file == "" {
		file = "<stdin>"
	}
	return logger.With(zap.String("file", file))
}

// unquote strips double-quote qualifiers left around a cell.
func unquote(s string) string {
	return strings.Trim(s, `"`)
}

// blank reports whether every cell of row is empty or whitespace.
func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
