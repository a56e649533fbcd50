package nodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/dbx"
	"github.com/dmitrijs2005/tutorsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, path string) (*models.Node, error) {
	query := `SELECT path, value, updated_at FROM nodes WHERE path=$1`

	n := &models.Node{}
	err := r.db.QueryRowContext(ctx, query, path).Scan(&n.Path, &n.Value, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select node: %w", err)
	}

	return n, nil
}

// Set overwrites the node at path. Concurrent writers race; the last
// statement to commit wins.
func (r *PostgresRepository) Set(ctx context.Context, path string, value []byte) error {
	query := `INSERT INTO nodes (path, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (path)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, path, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, path string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE path=$1`, path)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
