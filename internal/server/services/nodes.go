package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/server/repositories/repomanager"
)

// forbiddenPathChars may not appear in a node path segment; clients sanitize
// keys before writing.
const forbiddenPathChars = ".#$[]"

type NodeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNodeService(db *sql.DB, repomanager repomanager.RepositoryManager) *NodeService {
	return &NodeService{db: db, repomanager: repomanager}
}

// ValidatePath rejects empty paths, empty segments and forbidden characters.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", common.ErrorValidation)
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return fmt.Errorf("%w: empty segment in %q", common.ErrorValidation, path)
		}
		if strings.ContainsAny(seg, forbiddenPathChars) {
			return fmt.Errorf("%w: %q contains one of %q", common.ErrorValidation, path, forbiddenPathChars)
		}
	}
	return nil
}

func (s *NodeService) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	n, err := s.repomanager.Nodes(s.db).Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return n.Value, nil
}

// Set replaces the whole value at path. Writing JSON null removes the node.
func (s *NodeService) Set(ctx context.Context, path string, value []byte) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: value at %q is not JSON", common.ErrorValidation, path)
	}

	repo := s.repomanager.Nodes(s.db)
	if strings.TrimSpace(string(value)) == "null" {
		if err := repo.Delete(ctx, path); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return nil
	}
	return repo.Set(ctx, path, value)
}
