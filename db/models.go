package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"h1b-scraper/models"

	"github.com/lib/pq"
)

// Run represents one scrape stored in the database
type Run struct {
	ID          int64
	BaseURL     string
	Columns     []string
	Pages       int
	RowsFetched int
	RowsSaved   int
	StopReason  string
	CreatedAt   time.Time
}

// CreateRun records a finished pagination run and returns its ID
func (db *DB) CreateRun(ctx context.Context, run Run) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO scrape_runs (base_url, column_names, pages, rows_fetched, stop_reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, run.BaseURL, pq.Array(run.Columns), run.Pages, run.RowsFetched, run.StopReason).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, id int64) (*Run, error) {
	var run Run
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, base_url, column_names, pages, rows_fetched, rows_saved, stop_reason, created_at
		FROM scrape_runs
		WHERE id = $1
	`, id).Scan(
		&run.ID, &run.BaseURL, pq.Array(&run.Columns), &run.Pages,
		&run.RowsFetched, &run.RowsSaved, &run.StopReason, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRunRows returns the stored rows of a run in their original order.
// Missing cells come back invalid.
func (db *DB) GetRunRows(ctx context.Context, runID int64) ([][]sql.NullString, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT cells FROM sponsor_rows WHERE run_id = $1 ORDER BY row_index
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]sql.NullString
	for rows.Next() {
		var cells []sql.NullString
		if err := rows.Scan(pq.Array(&cells)); err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// RunSink stores a table under an existing run
type RunSink struct {
	db    *DB
	runID int64
}

// Sink returns a sink that writes rows for the given run
func (db *DB) Sink(runID int64) *RunSink {
	return &RunSink{db: db, runID: runID}
}

// Name implements sheets.Sink
func (s *RunSink) Name() string {
	return fmt.Sprintf("postgres:run-%d", s.runID)
}

// WriteTable implements sheets.Sink. All rows are inserted in one transaction
// and the run's saved row count is updated.
func (s *RunSink) WriteTable(ctx context.Context, t *models.Table) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sponsor_rows (run_id, row_index, cells) VALUES ($1, $2, $3)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, s.runID, i, pq.Array(cellValues(row))); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE scrape_runs SET rows_saved = $1 WHERE id = $2`, len(t.Rows), s.runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return tx.Commit()
}

// cellValues maps cells to nullable strings, missing cells become NULL
func cellValues(row []models.Cell) []sql.NullString {
	out := make([]sql.NullString, len(row))
	for i, c := range row {
		out[i] = sql.NullString{String: c.Value, Valid: c.Valid}
	}
	return out
}
