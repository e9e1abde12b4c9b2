package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/atelier/internal/metrics"
	"github.com/hitoshi/atelier/internal/middleware"
	"github.com/hitoshi/atelier/internal/model"
)

// mockSessionFinder はmiddleware.SessionFinderのモック。
type mockSessionFinder struct {
	sessions map[string]*model.Session
}

func (m *mockSessionFinder) FindByID(_ context.Context, id string) (*model.Session, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, nil
}

// mockHealthChecker はHealthCheckerのモック。
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(_ context.Context) error { return m.err }

// newTestRouter はテスト用のルーターを組み立てる。
func newTestRouter(t *testing.T, health HealthChecker) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	registry := prometheus.NewRegistry()
	metrics.NewCollector(registry)

	return NewRouter(&RouterDeps{
		HealthChecker: health,
		SessionFinder: &mockSessionFinder{sessions: map[string]*model.Session{
			"valid-session": {ID: "valid-session", UserID: "user-123"},
		}},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		FeedService:       &mockFeedService{},
		RecommendService:  &mockRecommendService{},
		MetricsGatherer:   registry,
	})
}

// TestRouter_HealthOK はヘルスチェックが認証なしで200を返すことをテストする。
func TestRouter_HealthOK(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestRouter_HealthUnavailable はDB接続不可の場合に503を返すことをテストする。
func TestRouter_HealthUnavailable(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

// TestRouter_MetricsExposed は/metricsが認証なしで公開されることをテストする。
func TestRouter_MetricsExposed(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

// TestRouter_FeedRequiresSession はセッションなしのフィード取得が
// 401になることをテストする。
func TestRouter_FeedRequiresSession(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestRouter_FeedWithValidSession は有効なセッションCookieでフィードが
// 取得できることをテストする。
func TestRouter_FeedWithValidSession(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	cases := []string{"/api/feed/home", "/api/feed/foryou", "/api/recommendations"}
	for _, path := range cases {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}

// TestRouter_CORSHeaders はCORSヘッダーが全ルートに付与されることをテストする。
func TestRouter_CORSHeaders(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
	}
}

// TestRouter_PreflightRequest はOPTIONSプリフライトが204で応答されることをテストする。
func TestRouter_PreflightRequest(t *testing.T) {
	router := newTestRouter(t, &mockHealthChecker{})

	req := httptest.NewRequest(http.MethodOptions, "/api/feed/home", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
