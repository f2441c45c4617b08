package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cdtdelta/mactimer/internal/model"
	"github.com/cdtdelta/mactimer/internal/query"

	_ "modernc.org/sqlite"
)

// startedLayout sorts lexically in time order.
const startedLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoSchema is returned when opening a database that has no record table.
var ErrNoSchema = errors.New("database has no bodyfile table")

// sqlStore implements Store over database/sql for any Dialect.
type sqlStore struct {
	path    string
	conn    *sql.DB
	dialect Dialect
}

// SQLiteStore keeps records in a SQLite file.
// It implements the Store interface.
type SQLiteStore struct {
	sqlStore
}

// OpenSQLite opens an existing SQLite record database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	s, err := openSQL(&SQLiteDialect{}, path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{*s}, nil
}

// CreateSQLite creates the record schema in a SQLite file, creating the
// file if needed. An existing schema is kept so runs can be appended.
func CreateSQLite(path string) (*SQLiteStore, error) {
	s, err := createSQL(&SQLiteDialect{}, path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{*s}, nil
}

func openSQL(d Dialect, pathOrConnStr string) (*sqlStore, error) {
	conn, err := sql.Open(d.DriverName(), d.DSN(pathOrConnStr))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the connection works
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &sqlStore{path: pathOrConnStr, conn: conn, dialect: d}

	var count int
	if err := conn.QueryRow(d.SchemaCheckColumnSQL(recordTable, "run_id")).Scan(&count); err != nil {
		conn.Close()
		return nil, fmt.Errorf("checking schema: %w", err)
	}
	if count == 0 {
		conn.Close()
		return nil, ErrNoSchema
	}
	return s, nil
}

func createSQL(d Dialect, pathOrConnStr string) (*sqlStore, error) {
	conn, err := sql.Open(d.DriverName(), d.DSN(pathOrConnStr))
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	s := &sqlStore{path: pathOrConnStr, conn: conn, dialect: d}
	if err := s.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// createSchema builds the record and run tables. No indexes are created;
// records are stored in arrival order.
func (s *sqlStore) createSchema() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.dialect.CreateRecordTableSQL()); err != nil {
		return fmt.Errorf("creating %s table: %w", recordTable, err)
	}
	if _, err := tx.Exec(s.dialect.CreateRunTableSQL()); err != nil {
		return fmt.Errorf("creating %s table: %w", runTable, err)
	}

	return tx.Commit()
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Path returns the file path or connection string of the database.
func (s *sqlStore) Path() string {
	return s.path
}

// Conn returns the underlying *sql.DB connection.
func (s *sqlStore) Conn() *sql.DB {
	return s.conn
}

func (s *sqlStore) BeginRun(ctx context.Context, run Run) error {
	_, err := s.conn.ExecContext(ctx, insertSQL(s.dialect, runTable, runColumns),
		run.ID.String(),
		run.Started.UTC().Format(startedLayout),
		s.dialect.SanitizeText(run.Type),
		s.dialect.SanitizeText(run.Zone),
		run.Skew,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// InsertRecords inserts a batch of entries inside a single transaction.
func (s *sqlStore) InsertRecords(ctx context.Context, runID uuid.UUID, entries []Entry) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL(s.dialect, recordTable, recordColumns()))
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	id := runID.String()
	inserted := 0
	for i := range entries {
		e := &entries[i]
		r := &e.Record
		_, err := stmt.ExecContext(ctx,
			id, s.dialect.SanitizeText(e.SourceFile), e.Line,
			s.dialect.SanitizeText(r.Hash),
			s.dialect.SanitizeText(r.Detail),
			s.dialect.SanitizeText(r.Type),
			s.dialect.SanitizeText(r.LogSource),
			s.dialect.SanitizeText(r.From),
			s.dialect.SanitizeText(r.To),
			s.dialect.SanitizeText(r.Size),
			epochValue(r.ATime), epochValue(r.MTime), epochValue(r.CTime), epochValue(r.BTime),
		)
		if err != nil {
			return inserted, fmt.Errorf("inserting record %d: %w", inserted+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("committing transaction: %w", err)
	}

	return inserted, nil
}

// CountRecords returns the number of records stored for a run.
func (s *sqlStore) CountRecords(ctx context.Context, runID uuid.UUID) (int64, error) {
	stmt := "SELECT COUNT(" + s.dialect.IDColumn() + ") FROM " + recordTable +
		" WHERE run_id = " + s.dialect.Placeholder(1)

	var count int64
	err := s.conn.QueryRowContext(ctx, stmt, runID.String()).Scan(&count)
	return count, err
}

// QueryRecords returns a run's records matching filter in insertion order.
// A limit of 0 returns every match.
func (s *sqlStore) QueryRecords(ctx context.Context, runID uuid.UUID, filter *query.Predicate, limit, offset int) ([]Entry, error) {
	stmt := "SELECT " + selectColumns(s.dialect, recordColumns()[1:]) + " FROM " + recordTable +
		" WHERE run_id = " + s.dialect.Placeholder(1)
	args := []any{runID.String()}

	if where, whereArgs := filter.Where(s.dialect, 2); where != "" {
		stmt += " AND " + where
		args = append(args, whereArgs...)
	}
	stmt += " ORDER BY " + s.dialect.IDColumn()

	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
		if offset > 0 {
			stmt += fmt.Sprintf(" OFFSET %d", offset)
		}
	}

	rows, err := s.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Runs lists every run in the database in the order they started.
func (s *sqlStore) Runs(ctx context.Context) ([]Run, error) {
	stmt := "SELECT " + selectColumns(s.dialect, runColumns) + " FROM " + runTable + " ORDER BY started"

	rows, err := s.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var id, started string
		var run Run
		if err := rows.Scan(&id, &started, &run.Type, &run.Zone, &run.Skew); err != nil {
			return nil, err
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		if run.Started, err = time.Parse(startedLayout, started); err != nil {
			return nil, fmt.Errorf("run %s start time: %w", id, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var atime, mtime, ctime, btime sql.NullInt64
		r := &e.Record
		if err := rows.Scan(
			&e.SourceFile, &e.Line,
			&r.Hash, &r.Detail, &r.Type, &r.LogSource, &r.From, &r.To, &r.Size,
			&atime, &mtime, &ctime, &btime,
		); err != nil {
			return nil, err
		}
		r.ATime = epochText(atime)
		r.MTime = epochText(mtime)
		r.CTime = epochText(ctime)
		r.BTime = epochText(btime)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// epochValue converts a record time field to a nullable integer.
func epochValue(s string) any {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || !model.Epoch(n).Valid() {
		return nil
	}
	return n
}

func epochText(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
