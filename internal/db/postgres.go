package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDB is the Postgres flavour of the path store, read by
// repository.PostgresGroupRepository
type PostgresDB struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a connection pool to databaseURL
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Connected to Postgres path store")
	return &PostgresDB{pool: pool}, nil
}

// Close closes the connection pool
func (p *PostgresDB) Close() error {
	p.pool.Close()
	return nil
}

// EnsureSchema applies the embedded schema; without arguments pgx uses the
// simple protocol, so the multi-statement script runs as one Exec
func (p *PostgresDB) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ImportGroupPaths records a new import run and bulk-loads rows with COPY,
// replacing the previous table in the same transaction
func (p *PostgresDB) ImportGroupPaths(ctx context.Context, sourceFile string, importedAt time.Time, rows []GroupPath) (string, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	runID := uuid.New().String()
	_, err = tx.Exec(ctx,
		"INSERT INTO import_runs (run_id, source_file, imported_at_utc, row_count) VALUES ($1, $2, $3, $4)",
		runID, sourceFile, importedAt.UTC().Format(time.RFC3339), len(rows),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create import run: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM group_paths"); err != nil {
		return "", fmt.Errorf("failed to clear group paths: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"group_paths"},
		[]string{"row_index", "group_id", "path", "attributes", "run_id"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			attrs, err := encodeAttributes(rows[i].Attributes)
			if err != nil {
				return nil, err
			}
			return []any{int32(rows[i].RowIndex), rows[i].GroupID, rows[i].Path, attrs, runID}, nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to copy group paths: %w", err)
	}
	if int(copied) != len(rows) {
		return "", fmt.Errorf("copied %d of %d group paths", copied, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// LatestImportRun returns the most recent import, or nil when nothing was imported
func (p *PostgresDB) LatestImportRun(ctx context.Context) (*ImportRun, error) {
	var run ImportRun
	var importedAt string
	err := p.pool.QueryRow(ctx, `
		SELECT run_id, source_file, imported_at_utc, row_count
		FROM import_runs
		ORDER BY imported_at_utc DESC
		LIMIT 1
	`).Scan(&run.RunID, &run.SourceFile, &importedAt, &run.RowCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}

	if run.ImportedAt, err = parseImportedAt(importedAt); err != nil {
		return nil, err
	}
	return &run, nil
}
