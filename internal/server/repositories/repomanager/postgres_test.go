package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/nodes"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/packages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m := NewPostgresRepositoryManager()

	var _ nodes.Repository = m.Nodes(db)
	var _ packages.Repository = m.Packages(db)
	assert.NotNil(t, m.Nodes(db))
	assert.NotNil(t, m.Packages(db))
}

func TestRunMigrations_UsesPgxAndEmbeddedFiles(t *testing.T) {
	db := newDB(t)

	orig := migrate
	t.Cleanup(func() { migrate = orig })

	var gotDialect, gotDir string
	var files []string
	migrate = func(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
		gotDialect, gotDir = dialect, dir
		files, _ = fs.Glob(fsys, "*.sql")
		return nil
	}

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, "pgx", gotDialect)
	assert.Equal(t, ".", gotDir)
	assert.Equal(t, []string{"00001_nodes.sql", "00002_packages.sql"}, files)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)

	orig := migrate
	t.Cleanup(func() { migrate = orig })
	migrate = func(context.Context, *sql.DB, string, fs.FS, string) error { return errors.New("boom") }

	assert.EqualError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db), "boom")
}
