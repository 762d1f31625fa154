package settings

import (
	"context"
	"testing"

	"github.com/dentalog/dentalog/internal/shared"
)

type mockRepo struct {
	stored  map[int64]Settings
	upserts int
}

func newMockRepo() *mockRepo {
	return &mockRepo{stored: make(map[int64]Settings)}
}

func (m *mockRepo) Get(ctx context.Context, ownerID int64) (*Settings, error) {
	s, ok := m.stored[ownerID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (m *mockRepo) Upsert(ctx context.Context, ownerID int64, s Settings) (*Settings, error) {
	m.upserts++
	m.stored[ownerID] = s
	return &s, nil
}

func TestGetCreatesDefaultsOnFirstRead(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	got, err := svc.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !got.ShowSummary || !got.ShowFilters || !got.ShowTable {
		t.Fatalf("defaults should show everything: %+v", got)
	}
	if repo.upserts != 1 {
		t.Fatalf("expected defaults to be persisted, upserts=%d", repo.upserts)
	}

	if _, err := svc.Get(ctx, 7); err != nil {
		t.Fatalf("second get error: %v", err)
	}
	if repo.upserts != 1 {
		t.Fatalf("second read should not rewrite defaults, upserts=%d", repo.upserts)
	}
}

func TestUpdatePersistsToggles(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	next := Settings{ShowSummary: false, ShowFilters: true, ShowTable: true}
	got, err := svc.Update(ctx, 7, next)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if got.ShowSummary {
		t.Fatalf("summary toggle not persisted: %+v", got)
	}

	stored, err := svc.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if stored.ShowSummary {
		t.Fatalf("stored settings wrong: %+v", stored)
	}
}
