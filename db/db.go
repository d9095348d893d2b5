package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn   *sql.DB
	logger *log.Logger
}

// NewDB opens a Postgres connection and makes sure the schema exists
func NewDB(ctx context.Context, connStr string, logger *log.Logger) (*DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	if logger == nil {
		logger = log.Default()
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, logger: logger.With("component", "db")}

	if err := db.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// schemaStatements create the tables if they don't exist
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scrape_runs (
		id SERIAL PRIMARY KEY,
		base_url TEXT NOT NULL,
		column_names TEXT[] NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		rows_fetched INTEGER NOT NULL DEFAULT 0,
		rows_saved INTEGER NOT NULL DEFAULT 0,
		stop_reason VARCHAR(20) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT valid_stop_reason CHECK (stop_reason IN ('empty_page', 'repeat_page', 'page_limit', 'canceled'))
	)`,
	`CREATE TABLE IF NOT EXISTS sponsor_rows (
		id SERIAL PRIMARY KEY,
		run_id INTEGER NOT NULL REFERENCES scrape_runs(id) ON DELETE CASCADE,
		row_index INTEGER NOT NULL,
		cells TEXT[] NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sponsor_rows_run_id ON sponsor_rows(run_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	db.logger.Debug("database schema initialized")
	return nil
}
