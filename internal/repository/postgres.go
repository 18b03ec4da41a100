package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eliaswendt/mcfp-optimizer/internal/models"
)

// PostgresGroupRepository reads group paths from a Postgres copy of the path store
type PostgresGroupRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGroupRepository(databaseURL string) (*PostgresGroupRepository, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresGroupRepository{pool: pool}, nil
}

func (r *PostgresGroupRepository) Close() {
	r.pool.Close()
}

func (r *PostgresGroupRepository) GetGroupPath(ctx context.Context, groupID int64) (*models.GroupRow, error) {
	query := `
		SELECT path, attributes
		FROM group_paths
		WHERE group_id = $1
		ORDER BY row_index
		LIMIT 1
	`

	var path, attrs string
	err := r.pool.QueryRow(ctx, query, groupID).Scan(&path, &attrs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to query group path: %w", err)
	}

	return newGroupRow(groupID, path, attrs)
}

func (r *PostgresGroupRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
