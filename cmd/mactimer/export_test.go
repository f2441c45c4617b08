package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdtdelta/mactimer/internal/model"
)

const exportInput = "1231618570|FILE|HOST|admin|Opened report\n" +
	"1231575370|REG|HOST|SYSTEM|Key written\n" +
	"1494892800|FILE|HOST|admin|Later file\n"

func storedRun(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.db")
	ta := newTestApp(exportInput)
	require.NoError(t, ta.execute("-t", "tln", "--store", path))
	return path
}

func runSub(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ta := newTestApp("")
	cmd := newRootCmd(ta.app)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return ta.out.String(), err
}

func TestExport_All(t *testing.T) {
	path := storedRun(t)

	out, err := runSub(t, "export", "--store", path)
	require.NoError(t, err)

	direct := newTestApp(exportInput)
	require.NoError(t, direct.execute("-t", "tln"))
	assert.Equal(t, direct.out.String(), out)
}

func TestExport_Filters(t *testing.T) {
	path := storedRun(t)

	out, err := runSub(t, "export", "--store", path, "-w", "type=FILE", "--before", "2010-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "|Opened report|")

	out, err = runSub(t, "export", "--store", path, "-w", "to=SYSTEM", "-w", "detail~later", "--any")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestExport_Errors(t *testing.T) {
	path := storedRun(t)

	_, err := runSub(t, "export")
	assert.ErrorContains(t, err, "--store is required")

	_, err = runSub(t, "export", "--store", path, "-w", "colour=red")
	assert.ErrorContains(t, err, "unknown field")

	_, err = runSub(t, "export", "--store", path, "--run", "not-a-uuid")
	assert.ErrorContains(t, err, "not-a-uuid")
}

func TestRuns(t *testing.T) {
	path := storedRun(t)

	out, err := runSub(t, "runs", "--store", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.Contains(t, lines[1], "tln")
	assert.True(t, strings.HasSuffix(lines[1], "3"))
}

func TestRuns_RecordsZoneAndSkew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.db")
	ta := newTestApp(exportInput)
	require.NoError(t, ta.execute("-t", "tln", "-z", "EST-5EDT", "-s", "-3600", "--store", path))

	out, err := runSub(t, "runs", "--store", path)
	require.NoError(t, err)
	assert.Contains(t, out, "EST-5EDT")
	assert.Contains(t, out, "-3600")
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Epoch
		wantErr bool
	}{
		{"", model.NoTime, false},
		{"1231618570", 1231618570, false},
		{"2009-01-10T20:16:10Z", 1231618570, false},
		{"2009-01-10T15:16:10-05:00", 1231618570, false},
		{"0", model.NoTime, true},
		{"99999999999", model.NoTime, true},
		{"yesterday", model.NoTime, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBound(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
