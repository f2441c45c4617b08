package timezone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule_Posix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GMT-5", "GMT5"},
		{"GMT+2", "GMT-2"},
		{"EST-5EDT,M4.1.0,M10.1.0", "EST5EDT,M4.1.0,M10.1.0"},
		{"EST-05EDT-04,M3.2.0/2:00,M11.1.0/2:00", "EST5EDT4,M3.2.0/2:00,M11.1.0/2:00"},
		{"IST+5:30", "IST-5:30"},
		{"<+0330>+3:30", "<+0330>-3:30"},
		{"CET+1CEST,M3.5.0,M10.5.0/3", "CET-1CEST,M3.5.0,M10.5.0/3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := parseRule(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.posix())
		})
	}
}

func TestParseRule_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"AB-1",
		"GMT",
		"GMT-5x",
		"EST-5EDT,J0,M10.1.0",
		"EST-5EDT,M4.6.0,M10.1.0",
		"EST-5EDT,M4.1.0/xx,M10.1.0",
		"<AB-1",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := parseRule(in)
			assert.Error(t, err)
		})
	}
}

func TestTZifFromRule_Header(t *testing.T) {
	blob := tzifFromRule("GMT5")

	require.True(t, len(blob) > 44)
	assert.Equal(t, "TZif2", string(blob[:5]))
	assert.Equal(t, "\nGMT5\n", string(blob[len(blob)-6:]))
}
