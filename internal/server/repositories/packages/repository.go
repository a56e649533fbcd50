// Package packages keeps the registry of uploaded deployment packages.
package packages

import (
	"context"

	"github.com/dmitrijs2005/tutorsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.DeploymentPackage) error
	MarkUploaded(ctx context.Context, id string) error
	Latest(ctx context.Context) (*models.DeploymentPackage, error)
}
