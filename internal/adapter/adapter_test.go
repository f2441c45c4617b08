package adapter

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cdtdelta/mactimer/internal/delimtext"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timestamp"
	"github.com/cdtdelta/mactimer/internal/timezone"
)

// harness feeds text through an adapter the way the pipeline does and
// collects copies of every record produced.
type harness struct {
	opts Options
	logs *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	return &harness{
		opts: Options{
			Normalizer: timestamp.NewNormalizer(nil, 0, logger),
			Year:       2009,
			Logger:     logger,
		},
		logs: logs,
	}
}

func (h *harness) run(t *testing.T, typ, file, input string) ([]model.Record, error) {
	t.Helper()

	a, err := New(typ, h.opts)
	require.NoError(t, err)

	r := delimtext.NewReader(strings.NewReader(input), a.Format())
	var hdr []string
	if a.HasHeader() {
		row, err := r.Next()
		require.NoError(t, err)
		hdr = append([]string(nil), row...)
	}
	if err := a.Begin(file, hdr); err != nil {
		return nil, err
	}

	var out []model.Record
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		for _, rec := range a.Process(r.Line(), row) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New("squid", Options{})
	require.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "exiftool, griffeye, ief, notes, tln")
}

func TestTypes(t *testing.T) {
	assert.Equal(t, []string{"exiftool", "griffeye", "ief", "notes", "tln"}, Types())
}

func TestNew_Defaults(t *testing.T) {
	for _, typ := range Types() {
		a, err := New(typ, Options{})
		require.NoError(t, err, typ)
		assert.NotNil(t, a, typ)
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Chrome Web History.csv", "Chrome Web History"},
		{"/cases/01/Chrome Web History.xlsx.csv", "Chrome Web History"},
		{`C:\exports\Chrome Web History.CSV`, "Chrome Web History"},
		{"Firefox Downloads.XLSX", "Firefox Downloads"},
		{"Firefox Downloads", "Firefox Downloads"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactName(tt.path))
		})
	}
}

func TestBlank(t *testing.T) {
	assert.True(t, blank(nil))
	assert.True(t, blank([]string{"", " ", "\t"}))
	assert.False(t, blank([]string{"", "x"}))
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a", unquote(`"a"`))
	assert.Equal(t, `a "b" c`, unquote(`a "b" c`))
}

func TestNormalizerZoneFlowsThrough(t *testing.T) {
	h := newHarness(t)
	tz, err := timezone.New("GMT-5")
	require.NoError(t, err)
	h.opts.Normalizer = timestamp.NewNormalizer(tz, 0, h.opts.Logger)

	input := "Created Date,File Name,Directory Path\n" +
		"01/10/2009 03:16:10 PM,a.jpg,C:\\pics\n"
	recs, err := h.run(t, "griffeye", "export.csv", input)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1231618570", recs[0].BTime)
}
