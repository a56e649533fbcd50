package packages

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_SetsCreatedAt(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT INTO packages \(id, version, storage_key, upload_status\).*RETURNING created_at$`).
		WithArgs("id1", "1700", "packages/k", models.UploadStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	p := &models.DeploymentPackage{ID: "id1", Version: "1700", StorageKey: "packages/k", UploadStatus: models.UploadStatusPending}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT INTO packages`).WillReturnError(errors.New("dup"))

	err := repo.Create(context.Background(), &models.DeploymentPackage{ID: "x"})
	assert.ErrorContains(t, err, "failed to insert package")
}

func TestMarkUploaded(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
		anyErr  bool
	}{
		{name: "ok", rows: 1},
		{name: "missing", rows: 0, wantErr: common.ErrorNotFound},
		{name: "too many", rows: 2, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectExec(`UPDATE packages SET upload_status='completed' WHERE id=\$1`).
				WithArgs("id1").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := repo.MarkUploaded(context.Background(), "id1")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT id, version, storage_key, upload_status, created_at FROM packages.*WHERE upload_status='completed'.*LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "storage_key", "upload_status", "created_at"}).
			AddRow("id9", "1800", "packages/9", "completed", now))

	p, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1800", p.Version)
	assert.Equal(t, "packages/9", p.StorageKey)
}

func TestLatest_None(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT id, version`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
