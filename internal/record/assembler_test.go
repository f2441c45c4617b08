package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cdtdelta/mactimer/internal/catalog"
	"github.com/cdtdelta/mactimer/internal/header"
	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/timestamp"
)

const testCatalog = `
artifacts:
  - name: "Downloads"
    id: 7
    short: "fox"
    category: "download"
    fields:
      - {label: "Name", slot: primary, role: detail}
      - {label: "Path", slot: primary, role: detail2}
      - {label: "Note", slot: primary, role: detail3}
      - {label: "Bytes", slot: primary, role: size}
      - {label: "Digest", slot: primary, role: hash}
      - {label: "Visited", slot: primary, role: atime}
      - {label: "Started", slot: primary, role: btime}
      - {label: "Run 2", slot: primary, role: atime2}
      - {label: "Run 3", slot: primary, role: atime3}
      - {label: "Referrer", slot: secondary, role: detail}
      - {label: "Started", slot: secondary, role: btime}
      - {label: "Kind", slot: secondary, role: type}
`

type fixture struct {
	asm  *Assembler
	logs *observer.ObservedLogs
}

func newFixture(t *testing.T, hdr []string) fixture {
	t.Helper()

	c, err := catalog.Load(strings.NewReader(testCatalog))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	norm := timestamp.NewNormalizer(nil, 0, logger)

	asm := New(Config{
		Artifact:  7,
		Artifacts: c,
		Fields:    c,
		Header:    header.New(hdr),
		ParseTime: func(text string) model.Epoch { return norm.Delimited(text, ' ', '/', ':') },
		LogPrefix: "ief-",
		Logger:    logger,
	})
	return fixture{asm: asm, logs: logs}
}

var fullHeader = []string{"Referrer", "Started", "Name", "Visited", "Path", "Bytes", "Digest", "Note", "Kind", "Run 2", "Run 3"}

func TestFill_Primary(t *testing.T) {
	f := newFixture(t, fullHeader)
	row := []string{"http://ref", "01/10/2009 08:16:10 PM", "a.zip", "01/10/2009 12:16:10 PM", `C:\dl`, "42", "abc", "", "", "", ""}

	var rec model.Record
	require.True(t, f.asm.Fill(catalog.Primary, 2, row, &rec))

	assert.Equal(t, model.Record{
		Hash:      "abc",
		Detail:    `a.zip (C:\dl)`,
		Type:      "download",
		LogSource: "ief-fox",
		Size:      "42",
		ATime:     "1231589770",
		BTime:     "1231618570",
	}, rec)
	assert.Zero(t, f.logs.Len())
}

func TestFill_SecondaryIsIndependent(t *testing.T) {
	f := newFixture(t, fullHeader)
	row := []string{"http://ref", "01/10/2009 08:16:10 PM", "a.zip", "not a date", "", "", "", "", "redirect", "", ""}

	var primary, secondary model.Record
	assert.True(t, f.asm.Fill(catalog.Primary, 3, row, &primary), "btime alone passes the gate")
	require.True(t, f.asm.Fill(catalog.Secondary, 3, row, &secondary))

	assert.Equal(t, "", primary.ATime)
	assert.Equal(t, "http://ref", secondary.Detail)
	assert.Equal(t, "redirect", secondary.Type)
	assert.Equal(t, "1231618570", secondary.BTime)
	assert.Equal(t, 1, f.logs.FilterMessage("unable to convert timestamp").Len())
}

func TestFill_GateFails(t *testing.T) {
	f := newFixture(t, fullHeader)
	row := []string{"http://ref", "", "a.zip", "garbage", "", "", "", "", "", "", ""}

	var rec model.Record
	rec.Detail = "stale"
	assert.False(t, f.asm.Fill(catalog.Primary, 9, row, &rec))
	assert.True(t, rec.IsZero(), "a failed slot leaves the record empty")

	gate := f.logs.FilterMessage("no valid time values found").All()
	require.Len(t, gate, 1)
	assert.Equal(t, int64(9), gate[0].ContextMap()["line"])
	assert.Equal(t, "primary", gate[0].ContextMap()["slot"])
}

func TestFill_UndefinedSlotIsSilent(t *testing.T) {
	f := newFixture(t, fullHeader)
	row := make([]string, len(fullHeader))

	var rec model.Record
	assert.False(t, f.asm.Fill(catalog.Tertiary, 4, row, &rec))
	assert.Zero(t, f.logs.Len())
}

func TestFill_PermutedHeaderSameRecord(t *testing.T) {
	hdrA := []string{"Name", "Visited"}
	hdrB := []string{"Visited", "Name"}
	rowA := []string{"x", "01/10/2009 08:16:10"}
	rowB := []string{"01/10/2009 08:16:10", "x"}

	var a, b model.Record
	require.True(t, newFixture(t, hdrA).asm.Fill(catalog.Primary, 2, rowA, &a))
	require.True(t, newFixture(t, hdrB).asm.Fill(catalog.Primary, 2, rowB, &b))
	assert.Equal(t, a, b)
	assert.Equal(t, "1231575370", a.ATime)
}

func TestFill_ShortRow(t *testing.T) {
	f := newFixture(t, fullHeader)

	var rec model.Record
	require.True(t, f.asm.Fill(catalog.Primary, 5, []string{"", "01/10/2009 08:16:10", "a.zip"}, &rec))
	assert.Equal(t, "a.zip", rec.Detail)
	assert.Equal(t, "", rec.Size)
}

func TestFillAlternate(t *testing.T) {
	f := newFixture(t, fullHeader)
	row := []string{"", "", "run.exe", "01/10/2009 08:16:10 PM", "", "", "", "", "", "01/10/2009 12:16:10 AM", ""}

	var base, alt model.Record
	require.True(t, f.asm.Fill(catalog.Primary, 2, row, &base))

	require.True(t, f.asm.FillAlternate(catalog.ATime2, row, &base, &alt))
	assert.Equal(t, "run.exe", alt.Detail)
	assert.Equal(t, "1231546570", alt.ATime)
	assert.Equal(t, "", alt.BTime)

	assert.False(t, f.asm.FillAlternate(catalog.ATime3, row, &base, &alt))
	assert.True(t, alt.IsZero())
}
