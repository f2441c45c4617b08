package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cdtdelta/mactimer/internal/adapter"
	"github.com/cdtdelta/mactimer/internal/bodyfile"
	"github.com/cdtdelta/mactimer/internal/database"
	"github.com/cdtdelta/mactimer/internal/model"
)

const notesHeader = "Date/Time,Artifact,Details,Source,From,To,Notes\n"

type fixture struct {
	fs   afero.Fs
	out  bytes.Buffer
	logs *observer.ObservedLogs
	opts Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	f := &fixture{fs: afero.NewMemMapFs(), logs: logs}
	f.opts = Options{Fs: f.fs, Logger: zap.New(core)}
	return f
}

func (f *fixture) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, name, []byte(content), 0o644))
}

func (f *fixture) run(t *testing.T, typ string, names ...string) (Stats, error) {
	t.Helper()
	a, err := adapter.New(typ, adapter.Options{Year: 2009, Logger: f.opts.Logger})
	require.NoError(t, err)
	return New(a, bodyfile.NewWriter(&f.out), f.opts).Run(context.Background(), names)
}

func (f *fixture) lines() []string {
	return strings.Split(strings.TrimSuffix(f.out.String(), "\n"), "\n")
}

func TestRun_WritesRecordsInInputOrder(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/a.tln", "1231618570|FILE|H|U|first\n1231575370|FILE|H|U|second\n")
	f.write(t, "/b.tln", "1231546570|REG|H|U|third\n")

	stats, err := f.run(t, "tln", "/a.tln", "/b.tln")
	require.NoError(t, err)

	assert.Equal(t, Stats{Files: 2, Rows: 3, Written: 3}, stats)
	lines := f.lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "|first|FILE|tln-FILE|H|U||1231618570|1231618570|1231618570|1231618570", lines[0])
	assert.Contains(t, lines[1], "|second|")
	assert.Contains(t, lines[2], "|third|")
}

func TestRun_ReadsStdinWhenNoInputs(t *testing.T) {
	f := newFixture(t)
	f.opts.Stdin = strings.NewReader("1231618570|FILE|H|U|piped\n")

	stats, err := f.run(t, "tln")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)
	assert.Contains(t, f.out.String(), "|piped|")
}

func TestRun_DropsRecordsWithoutTime(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/notes.csv", notesHeader+
		"1/10/2009 8:16:10 PM,call,Phoned,case,,,\n"+
		"someday,call,Unknown,case,,,\n")

	stats, err := f.run(t, "notes", "/notes.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Dropped)
	require.Len(t, f.lines(), 1)
	assert.Contains(t, f.lines()[0], "|Phoned|")

	dropped := f.logs.FilterMessage("record has no valid time").All()
	require.Len(t, dropped, 1)
	assert.Equal(t, "/notes.csv", dropped[0].ContextMap()["file"])
	assert.Equal(t, int64(3), dropped[0].ContextMap()["line"])
}

func TestRun_ContinuesPastMissingInput(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/good.tln", "1231618570|FILE|H|U|kept\n")

	stats, err := f.run(t, "tln", "/missing.tln", "/good.tln")
	require.ErrorIs(t, err, ErrInputsFailed)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Written)
	assert.Contains(t, f.out.String(), "|kept|")
	assert.Equal(t, 1, f.logs.FilterMessage("skipping input").Len())
}

func TestRun_UnknownArtifactFailsFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/Mystery Export.csv", "A,B\n1,2\n")

	stats, err := f.run(t, "ief", "/Mystery Export.csv")
	require.ErrorIs(t, err, ErrInputsFailed)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, f.out.String())
}

func TestRun_EmptyInputWithHeader(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/notes.csv", "")

	stats, err := f.run(t, "notes", "/notes.csv")
	require.NoError(t, err)
	assert.Zero(t, stats.Written)
	assert.Equal(t, 1, f.logs.FilterMessage("input is empty").Len())
}

func TestRun_Normalize(t *testing.T) {
	f := newFixture(t)
	f.opts.Normalize = true
	f.write(t, "/notes.csv", notesHeader+
		"1/10/2009 8:16:10 PM,call,\"Phoned   the\t office\",case,,,\n")

	_, err := f.run(t, "notes", "/notes.csv")
	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "|Phoned the office|")
}

func TestRun_Canceled(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/a.tln", "1231618570|FILE|H|U|first\n")

	a, err := adapter.New("tln", adapter.Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := New(a, bodyfile.NewWriter(&f.out), f.opts).Run(ctx, []string{"/a.tln"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Written)
}

func TestRun_StoresRecords(t *testing.T) {
	f := newFixture(t)
	f.write(t, "/a.tln", "1231618570|FILE|H|U|first\n1231575370|FILE|H|U|second\n1231546570|FILE|H|U|third\n")

	store, err := database.CreateSQLite(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()

	run := database.Run{ID: uuid.New(), Started: time.Now(), Type: "tln", Zone: "UTC"}
	require.NoError(t, store.BeginRun(context.Background(), run))

	f.opts.Store = store
	f.opts.RunID = run.ID
	f.opts.BatchSize = 2

	_, err = f.run(t, "tln", "/a.tln")
	require.NoError(t, err)

	entries, err := store.QueryRecords(context.Background(), run.ID, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/a.tln", entries[0].SourceFile)
	assert.Equal(t, 1, entries[0].Line)
	assert.Equal(t, 3, entries[2].Line)
	assert.Equal(t, "third", entries[2].Record.Detail)
}

func TestNormalize(t *testing.T) {
	rec := model.Record{Detail: "  a \r\n b  ", From: "x\ty", ATime: "1"}
	normalize(&rec)
	assert.Equal(t, model.Record{Detail: "a b", From: "x y", ATime: "1"}, rec)
}
