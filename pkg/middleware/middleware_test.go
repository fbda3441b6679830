package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"schoolbook/pkg/logger"
	"schoolbook/pkg/model"
)

type mockResolver struct {
	users map[string]model.User
}

func (m mockResolver) User(id string) (model.User, bool) {
	u, ok := m.users[id]
	return u, ok
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %q", rec.Body.String())
	}
	return body.Code
}

func TestSession(t *testing.T) {
	resolver := mockResolver{users: map[string]model.User{
		"parent1": {ID: "parent1", Role: model.RoleParent},
	}}

	var got model.Session
	h := Session(resolver, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		userID     string
		wantStatus int
	}{
		{"known user", "parent1", http.StatusNoContent},
		{"unknown user", "ghost", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = model.Session{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me/bookings", nil)
			if tt.userID != "" {
				req.Header.Set(UserIDHeader, tt.userID)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNoContent && got.User.ID != tt.userID {
				t.Errorf("session user = %q, want %q", got.User.ID, tt.userID)
			}
			if tt.wantStatus == http.StatusUnauthorized && decodeCode(t, rec) != "UNAUTHORIZED" {
				t.Errorf("code = %q", decodeCode(t, rec))
			}
		})
	}
}

func TestIdempotency(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"n":`+strconv.Itoa(int(n))+`}`)
	}))

	send := func(user, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{}"))
		req.Header.Set(UserIDHeader, user)
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("parent1", "k1")
	replay := send("parent1", "k1")
	if calls.Load() != 1 {
		t.Fatalf("handler called %d times, want 1", calls.Load())
	}
	if replay.Code != http.StatusCreated || replay.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %q, want %d %q", replay.Code, replay.Body.String(), first.Code, first.Body.String())
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replayed response is not marked")
	}

	send("parent2", "k1")
	if calls.Load() != 2 {
		t.Errorf("same key from another user should not replay, calls = %d", calls.Load())
	}

	send("parent1", "")
	send("parent1", "")
	if calls.Load() != 4 {
		t.Errorf("requests without a key should always run, calls = %d", calls.Load())
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "Idempotency-Key")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))

	for n := 0; n < 2; n++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", "k1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("handler called %d times, want 2", calls.Load())
	}
}

func TestInMemoryIdempotencyStore_Expires(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	defer store.Stop()

	store.Set("k", &CachedResponse{StatusCode: http.StatusOK})
	time.Sleep(5 * time.Millisecond)
	if _, ok := store.Get("k"); ok {
		t.Error("expired entry was returned")
	}
	store.Stop()
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"json post", http.MethodPost, "{}", "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, "a=b", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing type", http.MethodPost, "{}", "", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	h := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rec.Code != http.StatusOK {
		t.Errorf("small body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("much too large")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if decodeCode(t, rec) != "INTERNAL_ERROR" {
		t.Errorf("code = %q", decodeCode(t, rec))
	}
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if decodeCode(t, rec) != "TIMEOUT" {
		t.Errorf("code = %q, status = %d", decodeCode(t, rec), rec.Code)
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("request id = %q / %q, want caller's id", seen, rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not valid!")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if len(seen) != 32 {
		t.Errorf("generated request id = %q", seen)
	}
}

func TestRateLimit(t *testing.T) {
	resolver := mockResolver{users: map[string]model.User{
		"parent1": {ID: "parent1", Role: model.RoleParent},
		"parent2": {ID: "parent2", Role: model.RoleParent},
	}}
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	limiter := NewUserRateLimiter(2, time.Minute, SessionUserID, logger.Discard())
	limiter.now = func() time.Time { return now }
	t.Cleanup(limiter.Stop)

	var calls atomic.Int32
	h := Session(resolver, logger.Discard())(RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})))

	do := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/summary", nil)
		req.Header.Set(UserIDHeader, userID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("parent1"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, rec.Code)
		}
	}

	rec := do("parent1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the allowance, got %d", rec.Code)
	}
	if code := decodeCode(t, rec); code != "RATE_LIMITED" {
		t.Errorf("expected RATE_LIMITED, got %s", code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Errorf("expected Retry-After 30, got %q", got)
	}

	if rec := do("parent2"); rec.Code != http.StatusNoContent {
		t.Errorf("another user should have its own allowance, got %d", rec.Code)
	}

	now = now.Add(30 * time.Second)
	if rec := do("parent1"); rec.Code != http.StatusNoContent {
		t.Errorf("half a window should refill one request, got %d", rec.Code)
	}
	if rec := do("parent1"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the refilled request, got %d", rec.Code)
	}

	if calls.Load() != 4 {
		t.Errorf("handler called %d times, want 4", calls.Load())
	}
}

func TestUserRateLimiter_AnonymousAndEviction(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	limiter := NewUserRateLimiter(1, time.Minute, nil, logger.Discard())
	limiter.now = func() time.Time { return now }
	t.Cleanup(limiter.Stop)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("") {
			t.Fatal("requests without a key should not be limited")
		}
	}

	if !limiter.Allow("teacher1") || limiter.Allow("teacher1") {
		t.Fatal("expected exactly one request in the window")
	}

	now = now.Add(2 * time.Minute)
	limiter.evictIdle()
	limiter.mu.Lock()
	remaining := len(limiter.limiters)
	limiter.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected idle callers to be evicted, %d left", remaining)
	}

	limiter.Stop()
	limiter.Stop()
}
