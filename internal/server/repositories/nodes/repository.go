// Package nodes persists the realtime store tree.
package nodes

import (
	"context"

	"github.com/dmitrijs2005/tutorsync/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, path string) (*models.Node, error)
	Set(ctx context.Context, path string, value []byte) error
	Delete(ctx context.Context, path string) error
}
