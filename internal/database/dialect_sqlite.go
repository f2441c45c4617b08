package database

import "fmt"

// SQLiteDialect implements the Dialect interface for SQLite databases.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string             { return "sqlite" }
func (d *SQLiteDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *SQLiteDialect) Placeholder(index int) string    { return "?" }
func (d *SQLiteDialect) IDColumn() string                { return "rowid" }
func (d *SQLiteDialect) QuoteColumn(name string) string  { return quoteReserved(name) }
func (d *SQLiteDialect) SanitizeText(s string) string    { return s }

func (d *SQLiteDialect) SchemaCheckColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name='%s'", table, column)
}

func (d *SQLiteDialect) CreateRecordTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS bodyfile (
		run_id TEXT, source_file TEXT, line INT,
		hash TEXT, detail TEXT, type TEXT, log_source TEXT,
		"from" TEXT, "to" TEXT, size TEXT,
		atime INT, mtime INT, ctime INT, btime INT
	)`
}

func (d *SQLiteDialect) CreateRunTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS bodyfile_run (
		run_id TEXT PRIMARY KEY, started TEXT, type TEXT, zone TEXT, skew INT
	)`
}

// quoteReserved wraps SQL keywords used as column names in double quotes.
// Both SQLite and PostgreSQL accept double-quoted identifiers.
func quoteReserved(name string) string {
	switch name {
	case "from", "to":
		return `"` + name + `"`
	default:
		return name
	}
}
