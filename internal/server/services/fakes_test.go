package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/dbx"
	"github.com/dmitrijs2005/tutorsync/internal/server/models"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/nodes"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/packages"
)

type fakeNodes struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func (f *fakeNodes) Get(_ context.Context, path string) (*models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[path]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Node{Path: path, Value: v}, nil
}

func (f *fakeNodes) Set(_ context.Context, path string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.data[path] = value
	return nil
}

func (f *fakeNodes) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[path]; !ok {
		return common.ErrorNotFound
	}
	delete(f.data, path)
	return nil
}

type fakePackages struct {
	created  []*models.DeploymentPackage
	uploaded []string
	latest   *models.DeploymentPackage
	err      error
}

func (f *fakePackages) Create(_ context.Context, p *models.DeploymentPackage) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakePackages) MarkUploaded(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.uploaded = append(f.uploaded, id)
	return nil
}

func (f *fakePackages) Latest(context.Context) (*models.DeploymentPackage, error) {
	if f.latest == nil {
		return nil, common.ErrorNotFound
	}
	return f.latest, nil
}

type fakeRepoManager struct {
	nodes    *fakeNodes
	packages *fakePackages
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{nodes: &fakeNodes{data: map[string][]byte{}}, packages: &fakePackages{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Nodes(dbx.DBTX) nodes.Repository              { return m.nodes }
func (m *fakeRepoManager) Packages(dbx.DBTX) packages.Repository        { return m.packages }
