package timezone

import (
	"bytes"
	"encoding/binary"
)

// tzifFromRule builds a minimal version 2 TZif blob with no transitions and
// the given POSIX rule as its footer. With no transitions the time package
// evaluates the footer rule for every instant, which is how a bare rule
// string becomes a *time.Location.
func tzifFromRule(posix string) []byte {
	var buf bytes.Buffer

	// The v1 block is skipped by readers that understand v2, but it must be
	// well formed for them to find the v2 header.
	writeTZifBlock(&buf)
	writeTZifBlock(&buf)

	buf.WriteByte('\n')
	buf.WriteString(posix)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// writeTZifBlock writes a header and a data block holding a single UTC
// zone type. The v1 and v2 blocks only differ in the width of transition
// times, and there are none.
func writeTZifBlock(buf *bytes.Buffer) {
	abbrev := []byte("UTC\x00")

	buf.WriteString("TZif")
	buf.WriteByte('2')
	buf.Write(make([]byte, 15))

	counts := []uint32{
		0,                   // isutcnt
		0,                   // isstdcnt
		0,                   // leapcnt
		0,                   // timecnt
		1,                   // typecnt
		uint32(len(abbrev)), // charcnt
	}
	for _, c := range counts {
		binary.Write(buf, binary.BigEndian, c)
	}

	// ttinfo: utoff, isdst, abbrind
	binary.Write(buf, binary.BigEndian, int32(0))
	buf.WriteByte(0)
	buf.WriteByte(0)

	buf.Write(abbrev)
}
