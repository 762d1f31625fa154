package presets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dentalog/dentalog/internal/platform/httpx"
	"github.com/dentalog/dentalog/internal/records"
)

// Service handles preset business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all presets owned by the user.
func (s *Service) List(ctx context.Context, ownerID int64) ([]Preset, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Save captures the given filter state under a name.
func (s *Service) Save(ctx context.Context, ownerID int64, name string, state records.FilterState) (*Preset, error) {
	in, err := ToInput(name, state)
	if err != nil {
		if errors.Is(err, ErrEmptyName) {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		return nil, err
	}
	return s.repo.Create(ctx, ownerID, in)
}

// Load resolves a preset back into filter state.
func (s *Service) Load(ctx context.Context, ownerID int64, id string) (records.FilterState, error) {
	p, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return records.FilterState{}, err
	}
	return FromPreset(*p), nil
}

// Rename replaces a preset's name, reusing the trimmed-name validation.
func (s *Service) Rename(ctx context.Context, ownerID int64, id, name string) (*Preset, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, ErrEmptyName)
	}
	return s.repo.Rename(ctx, ownerID, id, trimmed)
}

// Delete removes a preset. No cascading effects on records.
func (s *Service) Delete(ctx context.Context, ownerID int64, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}
