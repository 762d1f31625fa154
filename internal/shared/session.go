package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sessions expire this long after login no matter how active they are.
const sessionMaxLifetime = 30 * 24 * time.Hour

const sessionKeyPrefix = "dentalog:session:"

// SessionManager stores cookie sessions in Redis. Cookie values carry an
// HMAC of the session ID so forged IDs are rejected before a lookup.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session is the per-request view of one stored session.
type Session struct {
	ID        string
	data      map[string]string
	userID    string
	issuedAt  time.Time
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionRecord struct {
	UserID   string            `json:"user_id"`
	Data     map[string]string `json:"data,omitempty"`
	IssuedAt int64             `json:"issued_at"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load resolves the request's session, returning a fresh anonymous one when
// the cookie is absent, forged, expired, or unknown to the store.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.fresh(), nil
		}
		return nil, err
	}

	id, ok := sm.verifyCookieValue(cookie.Value)
	if !ok {
		return sm.fresh(), nil
	}

	raw, err := sm.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		sess := sm.fresh()
		sess.ID = id
		return sess, nil
	}
	if err != nil {
		return nil, err
	}

	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}

	issued := time.Unix(rec.IssuedAt, 0)
	if rec.IssuedAt > 0 && time.Since(issued) > sessionMaxLifetime {
		_ = sm.client.Del(ctx, sessionKeyPrefix+id).Err()
		return sm.fresh(), nil
	}

	return &Session{
		ID:       id,
		data:     rec.Data,
		userID:   rec.UserID,
		issuedAt: issued,
	}, nil
}

// Commit flushes pending session changes to Redis and emits cookie headers.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sessionKeyPrefix+sess.ID).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, sm.cookie("", -1, time.Time{}))
		return nil
	}

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	if sess.dirty || sess.isNew {
		issued := sess.issuedAt
		if issued.IsZero() {
			issued = time.Now()
			sess.issuedAt = issued
		}
		data, err := json.Marshal(sessionRecord{
			UserID:   sess.userID,
			Data:     sess.data,
			IssuedAt: issued.Unix(),
		})
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sessionKeyPrefix+sess.ID, data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	http.SetCookie(w, sm.cookie(sm.signCookieValue(sess.ID), 0, time.Now().Add(sm.ttl)))
	return nil
}

// Rotate discards the session's stored identity after a privilege change.
// The old Redis record is deleted, a new ID is assigned, and the CSRF token
// is dropped so a fresh one gets minted for the new ID.
func (sm *SessionManager) Rotate(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errors.New("session: nothing to rotate")
	}
	if sess.ID != "" {
		if err := sm.client.Del(ctx, sessionKeyPrefix+sess.ID).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
	}
	sess.ID = uuid.NewString()
	sess.issuedAt = time.Now()
	sess.Delete(CSRFSessionKey)
	sess.dirty = true
	return nil
}

// Destroy schedules the session for deletion on commit.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess != nil {
		sess.destroyed = true
	}
}

// TTL is the rolling session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName is the session cookie identifier.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Set stores a key-value pair on the session.
func (s *Session) Set(key, value string) {
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.data[key] = value
	s.dirty = true
}

// Get retrieves a stored value, "" when absent.
func (s *Session) Get(key string) string {
	return s.data[key]
}

// Delete removes a stored value.
func (s *Session) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

// SetUser binds the session to a user ID.
func (s *Session) SetUser(id string) {
	s.userID = id
	s.dirty = true
}

// User is the bound user ID, "" for anonymous sessions.
func (s *Session) User() string {
	return s.userID
}

func (sm *SessionManager) fresh() *Session {
	return &Session{
		ID:       uuid.NewString(),
		data:     make(map[string]string),
		issuedAt: time.Now(),
		isNew:    true,
		dirty:    true,
	}
}

func (sm *SessionManager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (sm *SessionManager) signCookieValue(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) verifyCookieValue(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	want := strings.TrimPrefix(sm.signCookieValue(id), id+".")
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}
	return id, true
}
