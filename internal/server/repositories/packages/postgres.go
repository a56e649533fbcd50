package packages

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

func (r *PostgresRepository) Create(ctx context.Context, p *models.DeploymentPackage) error {
	query := `INSERT INTO packages (id, version, storage_key, upload_status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, p.ID, p.Version, p.StorageKey, p.UploadStatus).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert package: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, id string) error {
	query := `UPDATE packages SET upload_status='completed' WHERE id=$1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update package: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	switch rowsAffected {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", rowsAffected)
	}
}

// Latest returns the newest completed package.
func (r *PostgresRepository) Latest(ctx context.Context) (*models.DeploymentPackage, error) {
	query := `SELECT id, version, storage_key, upload_status, created_at FROM packages
		WHERE upload_status='completed'
		ORDER BY created_at DESC
		LIMIT 1`

	p := &models.DeploymentPackage{}
	err := r.db.QueryRowContext(ctx, query).Scan(&p.ID, &p.Version, &p.StorageKey, &p.UploadStatus, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select package: %w", err)
	}
	return p, nil
}
