package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GroupPath represents one table row for database insertion
type GroupPath struct {
	RowIndex   int
	GroupID    int64
	Path       string
	Attributes map[string]string
}

// ImportRun describes a recorded import
type ImportRun struct {
	RunID      string
	SourceFile string
	ImportedAt time.Time
	RowCount   int
}

// ImportGroupPaths records a new import run and swaps the stored table
// for rows, both in one transaction. Earlier runs stay listed in import_runs.
func (db *DB) ImportGroupPaths(ctx context.Context, sourceFile string, importedAt time.Time, rows []GroupPath) (string, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runID := uuid.New().String()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO import_runs (run_id, source_file, imported_at_utc, row_count) VALUES (?, ?, ?, ?)",
		runID, sourceFile, importedAt.UTC().Format(time.RFC3339), len(rows),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create import run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_paths"); err != nil {
		return "", fmt.Errorf("failed to clear group paths: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO group_paths (row_index, group_id, path, attributes, run_id) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		attrs, err := encodeAttributes(row.Attributes)
		if err != nil {
			return "", err
		}
		if _, err := stmt.ExecContext(ctx, row.RowIndex, row.GroupID, row.Path, attrs, runID); err != nil {
			return "", fmt.Errorf("failed to insert group %d (row %d): %w", row.GroupID, row.RowIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// LatestImportRun returns the most recent import, or nil when nothing was imported
func (db *DB) LatestImportRun(ctx context.Context) (*ImportRun, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, source_file, imported_at_utc, row_count
		FROM import_runs
		ORDER BY imported_at_utc DESC, rowid DESC
		LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var run ImportRun
	var importedAt string
	if err := rows.Scan(&run.RunID, &run.SourceFile, &importedAt, &run.RowCount); err != nil {
		return nil, fmt.Errorf("failed to scan import run: %w", err)
	}
	if run.ImportedAt, err = parseImportedAt(importedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

func encodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to encode attributes: %w", err)
	}
	return string(data), nil
}

func parseImportedAt(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid imported_at_utc %q: %w", value, err)
	}
	return t, nil
}
