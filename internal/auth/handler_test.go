package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/dentalog/dentalog/internal/auth"
	"github.com/dentalog/dentalog/internal/platform/httpx"
	"github.com/dentalog/dentalog/internal/shared"
	_ "github.com/dentalog/dentalog/testing"
)

type stubRepo struct {
	user            *auth.User
	sessions        map[string]int64
	deletedSessions []string
	createUserErr   error
}

func newStubRepo(user *auth.User) *stubRepo {
	return &stubRepo{user: user, sessions: make(map[string]int64)}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrInvalidCredentials
	}
	return s.user, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, email, passwordHash string) (*auth.User, error) {
	if s.createUserErr != nil {
		return nil, s.createUserErr
	}
	return &auth.User{ID: 99, Email: email, PasswordHash: passwordHash, IsActive: true}, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deletedSessions = append(s.deletedSessions, id)
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(slog.Default(), auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func serveWithSession(t *testing.T, sessionManager *shared.SessionManager, handle http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handle(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func testUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{ID: 1, Email: "manager@test.local", PasswordHash: string(hashed), IsActive: true}
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo(testUser(t, "correctpass1"))
	handler, sessionManager := newAuthHandler(t, repo)

	body := `{"email":"manager@test.local","password":"correctpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, sess := serveWithSession(t, sessionManager, handler.HandleLoginForTest, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status %d: %s", res.Code, res.Body.String())
	}

	var resp struct {
		UserID    string `json:"user_id"`
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "1" {
		t.Fatalf("user id: %q", resp.UserID)
	}
	if resp.CSRFToken == "" {
		t.Fatal("csrf token missing")
	}
	if sess.User() != "1" {
		t.Fatalf("session user: %q", sess.User())
	}
	if repo.sessions[sess.ID] != 1 {
		t.Fatalf("server session not registered: %v", repo.sessions)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo(testUser(t, "correctpass1"))
	handler, sessionManager := newAuthHandler(t, repo)

	body := `{"email":"manager@test.local","password":"wrongpass99"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, sess := serveWithSession(t, sessionManager, handler.HandleLoginForTest, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", res.Code, res.Body.String())
	}
	if sess.User() != "" {
		t.Fatalf("session should stay anonymous, got %q", sess.User())
	}
}

func TestLoginValidation(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, newStubRepo(nil))

	body := `{"email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, sessionManager, handler.HandleLoginForTest, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status %d", res.Code)
	}
	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem.Fields["Email"] == "" || problem.Fields["Password"] == "" {
		t.Fatalf("field messages: %+v", problem.Fields)
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newStubRepo(nil)
	handler, sessionManager := newAuthHandler(t, repo)

	body := `{"email":"new@test.local","password":"freshpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, sessionManager, handler.HandleRegisterForTest, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", res.Code, res.Body.String())
	}
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "99" {
		t.Fatalf("user id: %q", resp.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubRepo(nil)
	repo.createUserErr = httpx.ErrDuplicate
	handler, sessionManager := newAuthHandler(t, repo)

	body := `{"email":"taken@test.local","password":"freshpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, sessionManager, handler.HandleRegisterForTest, req)
	if res.Code != http.StatusConflict {
		t.Fatalf("status %d: %s", res.Code, res.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, newStubRepo(nil))

	body := `{"email":"nope","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, _ := serveWithSession(t, sessionManager, handler.HandleRegisterForTest, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status %d", res.Code)
	}
	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problem.Fields["Email"] == "" || problem.Fields["Password"] == "" {
		t.Fatalf("field messages: %+v", problem.Fields)
	}
}

func TestLoginRotatesSessionID(t *testing.T) {
	repo := newStubRepo(testUser(t, "correctpass1"))
	handler, sessionManager := newAuthHandler(t, repo)

	body := `{"email":"manager@test.local","password":"correctpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	anonymousID := sess.ID
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	if err := sessionManager.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("status %d: %s", res.Code, res.Body.String())
	}
	if sess.ID == anonymousID {
		t.Fatal("session kept its pre-login id")
	}
	if repo.sessions[sess.ID] != 1 {
		t.Fatalf("server session not registered under the new id: %v", repo.sessions)
	}
	if _, leaked := repo.sessions[anonymousID]; leaked {
		t.Fatalf("pre-login id should never reach the session table: %v", repo.sessions)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := newStubRepo(testUser(t, "correctpass1"))
	handler, sessionManager := newAuthHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	res, sess := serveWithSession(t, sessionManager, handler.HandleLogoutForTest, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("status %d", res.Code)
	}
	if len(repo.deletedSessions) != 1 || repo.deletedSessions[0] != sess.ID {
		t.Fatalf("server session not removed: %v", repo.deletedSessions)
	}
}
