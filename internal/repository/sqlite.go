package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eliaswendt/mcfp-optimizer/internal/models"
)

// ErrGroupNotFound is returned when no stored row carries the group id
var ErrGroupNotFound = errors.New("group id not found")

// SQLiteDB wraps a read-only SQL database connection for SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens the path store written by import-paths
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *SQLiteDB) GetDB() *sql.DB {
	return s.db
}

// SQLiteGroupRepository reads group paths from SQLite
type SQLiteGroupRepository struct {
	db *sql.DB
}

// NewSQLiteGroupRepository creates a new SQLiteGroupRepository
func NewSQLiteGroupRepository(db *sql.DB) *SQLiteGroupRepository {
	return &SQLiteGroupRepository{db: db}
}

// GetGroupPath returns the first stored row for groupID
func (r *SQLiteGroupRepository) GetGroupPath(ctx context.Context, groupID int64) (*models.GroupRow, error) {
	query := `
		SELECT path, attributes
		FROM group_paths
		WHERE group_id = ?
		ORDER BY row_index
		LIMIT 1
	`

	var path, attrs string
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(&path, &attrs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to query group path: %w", err)
	}

	return newGroupRow(groupID, path, attrs)
}

// Ping checks database connectivity
func (r *SQLiteGroupRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func newGroupRow(groupID int64, path, attrs string) (*models.GroupRow, error) {
	row := &models.GroupRow{GroupID: groupID, Path: path}
	if err := json.Unmarshal([]byte(attrs), &row.Attributes); err != nil {
		return nil, fmt.Errorf("invalid attributes for group %d: %w", groupID, err)
	}
	if len(row.Attributes) == 0 {
		row.Attributes = nil
	}
	return row, nil
}
