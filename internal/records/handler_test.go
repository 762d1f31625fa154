package records

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dentalog/dentalog/internal/shared"
)

func newTestRouter(t *testing.T, repo RepositoryPort) (*Handler, http.Handler) {
	t.Helper()
	handler := NewHandler(slog.Default(), newTestService(t, repo))
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		handler.MountRoutes(r)
	})
	return handler, r
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	sess := &shared.Session{ID: "test-session"}
	sess.SetUser("7")
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestQuickRangeEndpoint(t *testing.T) {
	handler, router := newTestRouter(t, &mockRepo{})
	handler.WithNow(func() time.Time {
		return time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/filters/quick-range?kind=week", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		DateFrom       string `json:"date_from"`
		DateTo         string `json:"date_to"`
		ClearSelection bool   `json:"clear_selection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DateFrom != "2024-03-10" || resp.DateTo != "2024-03-16" {
		t.Fatalf("week range: %s..%s", resp.DateFrom, resp.DateTo)
	}
	if resp.ClearSelection {
		t.Fatal("week should not clear the selection")
	}
}

func TestQuickRangeClearEndpoint(t *testing.T) {
	_, router := newTestRouter(t, &mockRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/filters/quick-range?kind=clear", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		DateFrom       string `json:"date_from"`
		DateTo         string `json:"date_to"`
		ClearSelection bool   `json:"clear_selection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DateFrom != "" || resp.DateTo != "" || !resp.ClearSelection {
		t.Fatalf("clear response: %+v", resp)
	}
}

func TestQuickRangeRejectsUnknownKind(t *testing.T) {
	_, router := newTestRouter(t, &mockRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/filters/quick-range?kind=year", ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestListEndpointFiltersAndSummarises(t *testing.T) {
	repo := &mockRepo{records: []Record{
		{ID: "1", Name: "John", Surname: "Doe", Date: "2024-03-10", Money: 100, Keramika: 2},
		{ID: "2", Name: "Ann", Surname: "Smith", Date: "2024-03-12", Money: 50},
	}}
	_, router := newTestRouter(t, repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/records?search=doe", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Records []Record      `json:"records"`
		Summary SummaryTotals `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].ID != "1" {
		t.Fatalf("records: %+v", resp.Records)
	}
	if resp.Summary.Count != 1 || resp.Summary.TotalMoney != 100 {
		t.Fatalf("summary: %+v", resp.Summary)
	}
}

func TestListEndpointRequiresAuth(t *testing.T) {
	_, router := newTestRouter(t, &mockRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestCreateEndpointValidation(t *testing.T) {
	_, router := newTestRouter(t, &mockRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/records", `{"name":"","surname":"Doe","date":"2024-03-10"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Fields["Name"] == "" {
		t.Fatalf("expected field message for name: %+v", problem.Fields)
	}
}

func TestCreateEndpoint(t *testing.T) {
	repo := &mockRepo{}
	_, router := newTestRouter(t, repo)

	body := `{"name":"Ann","surname":"Smith","date":"2024-03-12","money":80,"keramika":1,"custom_materials":[{"name":"Implant","qty":1}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/records", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.created) != 1 || repo.created[0].Name != "Ann" {
		t.Fatalf("repo state: %+v", repo.created)
	}
}
