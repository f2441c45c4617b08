package database

import (
	"strings"

	"github.com/cdtdelta/mactimer/internal/model"
)

// Table names.
const (
	recordTable = "bodyfile"
	runTable    = "bodyfile_run"
)

// Dialect abstracts all database-specific SQL generation.
// Each database backend (SQLite, PostgreSQL) implements this interface.
type Dialect interface {
	// DriverName returns the database/sql driver name (e.g. "sqlite", "pgx").
	DriverName() string

	// DSN returns the data source name for opening a connection.
	// For SQLite this is the file path; for PostgreSQL a connection string.
	DSN(pathOrConnStr string) string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	// SQLite: "?" (ignoring index), PostgreSQL: "$1", "$2", etc.
	Placeholder(index int) string

	// IDColumn returns the row identifier column name.
	// SQLite: "rowid" (implicit), PostgreSQL: "id" (explicit serial).
	IDColumn() string

	// QuoteColumn returns the column name quoted where the dialect needs it.
	QuoteColumn(name string) string

	// SchemaCheckColumnSQL returns a SQL query that counts how many times a
	// column appears in a table's schema.
	SchemaCheckColumnSQL(table, column string) string

	// CreateRecordTableSQL returns the DDL for the record table.
	CreateRecordTableSQL() string

	// CreateRunTableSQL returns the DDL for the run table.
	CreateRunTableSQL() string

	// SanitizeText prepares a text value for storage.
	SanitizeText(s string) string
}

// recordColumns are the stored columns of a record, in insert order.
func recordColumns() []string {
	return append([]string{"run_id", "source_file", "line"}, model.Fields...)
}

// runColumns are the stored columns of a run, in insert order.
var runColumns = []string{"run_id", "started", "type", "zone", "skew"}

// insertSQL builds a parameterized INSERT for table and columns.
func insertSQL(d Dialect, table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteColumn(c)
		marks[i] = d.Placeholder(i + 1)
	}
	return "INSERT INTO " + table + " (" + strings.Join(quoted, ", ") +
		") VALUES (" + strings.Join(marks, ", ") + ")"
}

// selectColumns returns columns quoted and comma separated.
func selectColumns(d Dialect, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteColumn(c)
	}
	return strings.Join(quoted, ", ")
}
