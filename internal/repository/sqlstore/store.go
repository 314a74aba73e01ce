// Package sqlstore implements the user and complaint stores on database/sql.
// The same statements run on MySQL and SQLite: placeholders are '?',
// timestamps are fixed-width UTC text (lexically ordered), and ids are UUIDs.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
)

// tsLayout is also a valid MySQL DATETIME(6) literal.
const tsLayout = "2006-01-02 15:04:05.000000"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL,
		created_at    CHAR(26)     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS complaints (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		bus_number     VARCHAR(64)  NOT NULL,
		route_number   VARCHAR(64)  NOT NULL,
		complaint_type VARCHAR(128) NOT NULL,
		description    TEXT         NOT NULL,
		location       VARCHAR(255) NOT NULL,
		trip_date      CHAR(10)     NOT NULL,
		status         VARCHAR(32)  NOT NULL,
		remarks        TEXT         NOT NULL,
		user_email     VARCHAR(255) NOT NULL,
		created_at     CHAR(26)     NOT NULL,
		updated_at     CHAR(26)     NOT NULL,
		UNIQUE (bus_number, route_number, complaint_type, trip_date)
	)`,
}

// Store is a UserStore and ComplaintStore over one *sql.DB.
type Store struct {
	db *sql.DB
}

var (
	_ repository.UserStore      = (*Store)(nil)
	_ repository.ComplaintStore = (*Store)(nil)
)

func New(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func formatTS(t time.Time) string { return t.UTC().Format(tsLayout) }

func parseTS(s string) (time.Time, error) {
	return time.ParseInLocation(tsLayout, strings.TrimSpace(s), time.UTC)
}

// isUniqueViolation recognizes duplicate-key errors from both drivers.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}
