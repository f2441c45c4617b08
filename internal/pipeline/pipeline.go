// Package pipeline drives one conversion run: it reads each input in turn,
// hands rows to the adapter, and writes the records that pass validation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/adapter"
	"github.com/cdtdelta/mactimer/internal/bodyfile"
	"github.com/cdtdelta/mactimer/internal/database"
	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/model"
)

// DefaultBatchSize is the number of records sent to the store per transaction.
const DefaultBatchSize = 1000

// ErrInputsFailed is returned by Run when at least one input could not be
// read to the end.
var ErrInputsFailed = errors.New("some inputs failed")

// Options configures a Runner.
type Options struct {
	// Fs is where named inputs are opened. Defaults to the OS filesystem.
	Fs afero.Fs
	// Stdin is read when no inputs are named. Defaults to os.Stdin.
	Stdin io.Reader
	// Store, when set, receives a copy of every written record.
	Store     database.Store
	RunID     uuid.UUID
	BatchSize int
	// Normalize collapses runs of whitespace in text fields.
	Normalize bool
	Logger    *zap.Logger
}

// Stats summarizes a run.
type Stats struct {
	Files   int
	Failed  int
	Rows    int
	Written int
	Dropped int
}

// Runner converts inputs with one adapter. A Runner is used for a single
// run and is not safe for concurrent use.
type Runner struct {
	adapter adapter.Adapter
	out     *bodyfile.Writer
	opts    Options
	logger  *zap.Logger

	batch []database.Entry
	stats Stats
}

// New returns a Runner that writes to out.
func New(a adapter.Adapter, out *bodyfile.Writer, opts Options) *Runner {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{adapter: a, out: out, opts: opts, logger: opts.Logger}
}

// Run converts each named input in order, or stdin when names is empty.
// A failing input is logged and skipped; Run then returns ErrInputsFailed
// after the remaining inputs are done. Cancellation of ctx stops the run
// between rows.
func (r *Runner) Run(ctx context.Context, names []string) (Stats, error) {
	if len(names) == 0 {
		names = []string{""}
	}

	var runErr error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		r.stats.Files++
		if err := r.runFile(ctx, name); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				runErr = err
				break
			}
			r.stats.Failed++
			r.logger.Error("skipping input", zap.String("file", displayName(name)), zap.Error(err))
		}
	}

	if err := r.flushStore(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	if err := r.out.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr == nil && r.stats.Failed > 0 {
		runErr = fmt.Errorf("%w: %d of %d", ErrInputsFailed, r.stats.Failed, r.stats.Files)
	}

	r.logger.Info("run complete",
		zap.Int("files", r.stats.Files),
		zap.Int("failed", r.stats.Failed),
		zap.Int("rows", r.stats.Rows),
		zap.Int("written", r.stats.Written),
		zap.Int("dropped", r.stats.Dropped))
	return r.stats, runErr
}

func (r *Runner) runFile(ctx context.Context, name string) error {
	var in io.Reader
	if name == "" {
		in = r.opts.Stdin
	} else {
		f, err := delimtext.Open(r.opts.Fs, name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rows := delimtext.NewReader(in, r.adapter.Format())
	logger := r.logger.With(zap.String("file", displayName(name)))

	var hdr []string
	if r.adapter.HasHeader() {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			logger.Warn("input is empty")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading header: %w", err)
		}
		hdr = append([]string(nil), row...)
	}
	if err := r.adapter.Begin(name, hdr); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		r.stats.Rows++

		line := rows.Line()
		for _, rec := range r.adapter.Process(line, row) {
			if err := r.emit(ctx, logger, name, line, rec); err != nil {
				return err
			}
		}
	}
}

// emit validates one record and sends it to the writer and store. An empty
// record is skipped silently; a record with no valid time is dropped with
// a warning.
func (r *Runner) emit(ctx context.Context, logger *zap.Logger, name string, line int, rec *model.Record) error {
	if rec.IsZero() {
		return nil
	}
	if r.opts.Normalize {
		normalize(rec)
	}
	if !rec.HasTime() {
		r.stats.Dropped++
		logger.Warn("record has no valid time", zap.Int("line", line), zap.String("detail", rec.Detail))
		return nil
	}

	if err := r.out.Write(rec); err != nil {
		return err
	}
	r.stats.Written = r.out.Count()

	if r.opts.Store == nil {
		return nil
	}
	r.batch = append(r.batch, database.Entry{SourceFile: displayName(name), Line: line, Record: *rec})
	if len(r.batch) >= r.opts.BatchSize {
		return r.flushStore(ctx)
	}
	return nil
}

func (r *Runner) flushStore(ctx context.Context) error {
	if r.opts.Store == nil || len(r.batch) == 0 {
		return nil
	}
	_, err := r.opts.Store.InsertRecords(ctx, r.opts.RunID, r.batch)
	r.batch = r.batch[:0]
	if err != nil {
		return fmt.Errorf("storing records: %w", err)
	}
	return nil
}

// normalize trims text fields and collapses internal whitespace runs to a
// single space.
func normalize(rec *model.Record) {
	for _, f := range []*string{&rec.Hash, &rec.Detail, &rec.Type, &rec.LogSource, &rec.From, &rec.To, &rec.Size} {
		*f = strings.Join(strings.Fields(*f), " ")
	}
}

func displayName(name string) string {
	if name == "" {
		return "<stdin>"
	}
	return name
}
