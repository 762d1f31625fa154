package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dentalog/dentalog/internal/i18n"
	"github.com/dentalog/dentalog/internal/platform/httpx"
)

// Service coordinates record persistence with the pure filtering pipeline
// and the summary cache.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService wires a repository with the cache helper.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List fetches the owner's record set and runs the filter pipeline over it,
// returning the visible subset together with its summary.
func (s *Service) List(ctx context.Context, ownerID int64, state FilterState) ([]Record, SummaryTotals, error) {
	recs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, SummaryTotals{}, err
	}
	filtered := Filter(recs, state)
	return filtered, Summarize(filtered), nil
}

// Summary computes the summary for the owner's filtered record set, serving
// from the versioned cache when warm.
func (s *Service) Summary(ctx context.Context, ownerID int64, state FilterState) (SummaryTotals, error) {
	key, err := s.cache.SummaryKey(ctx, ownerID, state)
	if err != nil {
		return SummaryTotals{}, err
	}
	var totals SummaryTotals
	err = s.cache.FetchJSON(ctx, key, &totals, func(ctx context.Context) (interface{}, error) {
		recs, err := s.repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return Summarize(Filter(recs, state)), nil
	})
	if err != nil {
		return SummaryTotals{}, err
	}
	return totals, nil
}

// Get returns one record owned by the user.
func (s *Service) Get(ctx context.Context, ownerID int64, id string) (*Record, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// SelectByIDs returns the owner's records matching ids, in stored list
// order. IDs the owner does not hold are skipped rather than erroring, so a
// selection that raced a delete still exports the surviving rows.
func (s *Service) SelectByIDs(ctx context.Context, ownerID int64, ids []string) ([]Record, error) {
	recs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = struct{}{}
		}
	}
	selected := make([]Record, 0, len(wanted))
	for _, rec := range recs {
		if _, ok := wanted[rec.ID]; ok {
			selected = append(selected, rec)
		}
	}
	return selected, nil
}

// Create validates and stores a new record.
func (s *Service) Create(ctx context.Context, ownerID int64, rec Record) (*Record, error) {
	if err := validateRecord(&rec); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, ownerID, rec)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Bump(ctx, ownerID)
	return created, nil
}

// Update validates and rewrites an existing record.
func (s *Service) Update(ctx context.Context, ownerID int64, rec Record) (*Record, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: record id required", httpx.ErrValidation)
	}
	if err := validateRecord(&rec); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, ownerID, rec)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Bump(ctx, ownerID)
	return updated, nil
}

// Delete removes a record. There are no cascading effects.
func (s *Service) Delete(ctx context.Context, ownerID int64, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	_ = s.cache.Bump(ctx, ownerID)
	return nil
}

// validateRecord enforces the domain invariants and normalises optional
// fields in place: custom material entries with blank names are dropped, and
// quantities can never be negative.
func validateRecord(rec *Record) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: name required", httpx.ErrValidation)
	}
	if strings.TrimSpace(rec.Surname) == "" {
		return fmt.Errorf("%w: surname required", httpx.ErrValidation)
	}
	if _, err := time.Parse(i18n.ISODate, rec.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", httpx.ErrValidation)
	}
	if rec.Money < 0 {
		return fmt.Errorf("%w: money must not be negative", httpx.ErrValidation)
	}
	for _, key := range MaterialKeys {
		if rec.MaterialCount(key) < 0 {
			return fmt.Errorf("%w: %s must not be negative", httpx.ErrValidation, key)
		}
	}
	kept := rec.CustomMaterials[:0]
	for _, item := range rec.CustomMaterials {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		if item.Qty < 0 {
			return fmt.Errorf("%w: custom material qty must not be negative", httpx.ErrValidation)
		}
		kept = append(kept, CustomMaterial{Name: name, Qty: item.Qty})
	}
	rec.CustomMaterials = kept
	return nil
}
