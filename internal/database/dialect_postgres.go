package database

import (
	"fmt"
	"strings"
)

// PostgresDialect implements the Dialect interface for PostgreSQL databases.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string             { return "pgx" }
func (d *PostgresDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *PostgresDialect) Placeholder(index int) string    { return fmt.Sprintf("$%d", index) }
func (d *PostgresDialect) IDColumn() string                { return "id" }
func (d *PostgresDialect) QuoteColumn(name string) string  { return quoteReserved(name) }

// SanitizeText strips null bytes (0x00). SQLite stores these fine but
// PostgreSQL rejects them with "invalid byte sequence for encoding UTF8".
func (d *PostgresDialect) SanitizeText(s string) string {
	if strings.ContainsRune(s, '\x00') {
		return strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

func (d *PostgresDialect) SchemaCheckColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM information_schema.columns WHERE table_name='%s' AND column_name='%s'",
		table, column)
}

func (d *PostgresDialect) CreateRecordTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS bodyfile (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT, source_file TEXT, line INT,
		hash TEXT, detail TEXT, type TEXT, log_source TEXT,
		"from" TEXT, "to" TEXT, size TEXT,
		atime BIGINT, mtime BIGINT, ctime BIGINT, btime BIGINT
	)`
}

func (d *PostgresDialect) CreateRunTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS bodyfile_run (
		run_id TEXT PRIMARY KEY, started TEXT, type TEXT, zone TEXT, skew INT
	)`
}
