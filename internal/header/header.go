// Package header maps column labels to positions in the header row of the
// file being read, so field extraction never depends on column order.
package header

// ColumnIndex returns the position of label in row. Matching is exact and
// the first matching column wins.
func ColumnIndex(row []string, label string) (int, bool) {
	for i, col := range row {
		if col == label {
			return i, true
		}
	}
	return -1, false
}

// Index is a header row prepared for repeated lookups.
type Index struct {
	columns map[string]int
}

// New indexes a header row. Each label resolves to the column ColumnIndex
// reports for it.
func New(row []string) *Index {
	ix := &Index{columns: make(map[string]int, len(row))}
	for _, col := range row {
		if _, seen := ix.columns[col]; seen {
			continue
		}
		ix.columns[col], _ = ColumnIndex(row, col)
	}
	return ix
}

// Column returns the position of label.
func (ix *Index) Column(label string) (int, bool) {
	i, ok := ix.columns[label]
	return i, ok
}

// Has reports whether any column carries label.
func (ix *Index) Has(label string) bool {
	_, ok := ix.Column(label)
	return ok
}

// Value returns the cell of row under label. It returns "" when the label
// is empty or absent, or the row is too short.
func (ix *Index) Value(row []string, label string) string {
	if label == "" {
		return ""
	}
	i, ok := ix.Column(label)
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
