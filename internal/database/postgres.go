package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps records in a PostgreSQL database.
// It implements the Store interface.
type PostgresStore struct {
	sqlStore
}

// OpenPostgres opens an existing PostgreSQL record database.
func OpenPostgres(connStr string) (*PostgresStore, error) {
	s, err := openSQL(&PostgresDialect{}, connStr)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{*s}, nil
}

// CreatePostgres creates the record schema on a PostgreSQL database.
// The database itself must already exist; this creates the tables.
func CreatePostgres(connStr string) (*PostgresStore, error) {
	s, err := createSQL(&PostgresDialect{}, connStr)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{*s}, nil
}
