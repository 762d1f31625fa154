package export

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dentalog/dentalog/internal/records"
	"github.com/dentalog/dentalog/internal/shared"
)

type stubRepo struct {
	records     []records.Record
	listStarted chan struct{}
	listRelease chan struct{}
}

func (s *stubRepo) ListByOwner(ctx context.Context, ownerID int64) ([]records.Record, error) {
	if s.listStarted != nil {
		s.listStarted <- struct{}{}
	}
	if s.listRelease != nil {
		<-s.listRelease
	}
	return s.records, nil
}

func (s *stubRepo) Get(ctx context.Context, ownerID int64, id string) (*records.Record, error) {
	for _, rec := range s.records {
		if rec.ID == id {
			copied := rec
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) Create(ctx context.Context, ownerID int64, rec records.Record) (*records.Record, error) {
	return &rec, nil
}

func (s *stubRepo) Update(ctx context.Context, ownerID int64, rec records.Record) (*records.Record, error) {
	return &rec, nil
}

func (s *stubRepo) Delete(ctx context.Context, ownerID int64, id string) error {
	return nil
}

func newExportRouter(repo *stubRepo) http.Handler {
	service := records.NewService(repo, records.NewCache(nil, 0))
	handler := NewHandler(slog.Default(), service, &PDFExporter{}, "Test Clinic", "Test Manager")
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func exportRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	sess := &shared.Session{ID: "test-session"}
	sess.SetUser("7")
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestExportCSVSelectedIDs(t *testing.T) {
	repo := &stubRepo{records: []records.Record{
		{ID: "a", Name: "John", Surname: "Doe", Mobile: "1", Date: "2024-03-10", Money: 100},
		{ID: "b", Name: "Ann", Surname: "Smith", Mobile: "2", Date: "2024-03-12", Money: 50},
		{ID: "c", Name: "Nino", Surname: "Beridze", Mobile: "3", Date: "2024-03-14", Money: 75},
	}}
	router := newExportRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, exportRequest("/export/records.csv?ids=c,a"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	if !strings.Contains(body, "John") || !strings.Contains(body, "Nino") {
		t.Fatalf("selected records missing from csv:\n%s", body)
	}
	if strings.Contains(body, "Ann") {
		t.Fatalf("unselected record leaked into csv:\n%s", body)
	}
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
}

func TestExportCSVWithoutIDsUsesFilterState(t *testing.T) {
	repo := &stubRepo{records: []records.Record{
		{ID: "a", Name: "John", Surname: "Doe", Date: "2024-03-10", Money: 100},
		{ID: "b", Name: "Ann", Surname: "Smith", Date: "2024-03-12", Money: 50},
	}}
	router := newExportRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, exportRequest("/export/records.csv?search=ann"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Ann") || strings.Contains(body, "John") {
		t.Fatalf("filter not applied:\n%s", body)
	}
}

func TestExportRejectsConcurrentDuplicate(t *testing.T) {
	repo := &stubRepo{
		records:     []records.Record{{ID: "a", Name: "John", Surname: "Doe", Date: "2024-03-10"}},
		listStarted: make(chan struct{}),
		listRelease: make(chan struct{}),
	}
	router := newExportRouter(repo)

	firstDone := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, exportRequest("/export/records.csv"))
		firstDone <- rec.Code
	}()

	// The first export holds the slot while its repository read is parked.
	// The duplicate is rejected before it ever reaches the repository.
	<-repo.listStarted

	second := httptest.NewRecorder()
	router.ServeHTTP(second, exportRequest("/export/records.csv"))
	if second.Code != http.StatusConflict {
		t.Fatalf("duplicate trigger: status %d: %s", second.Code, second.Body.String())
	}

	close(repo.listRelease)
	if code := <-firstDone; code != http.StatusOK {
		t.Fatalf("first export: status %d", code)
	}
}
