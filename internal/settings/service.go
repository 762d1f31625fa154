package settings

import (
	"context"
	"errors"

	"github.com/dentalog/dentalog/internal/shared"
)

// Service handles settings business logic with read-or-create-default
// semantics: the first read materialises the defaults.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get returns the user's settings, creating the default row when missing.
func (s *Service) Get(ctx context.Context, ownerID int64) (*Settings, error) {
	stored, err := s.repo.Get(ctx, ownerID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return s.repo.Upsert(ctx, ownerID, Defaults())
}

// Update persists the user's panel toggles.
func (s *Service) Update(ctx context.Context, ownerID int64, next Settings) (*Settings, error) {
	return s.repo.Upsert(ctx, ownerID, next)
}
