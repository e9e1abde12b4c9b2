package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/atelier/internal/model"
)

// mockSessionFinder はSessionFinderのモック。
type mockSessionFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

// TestSessionMiddleware_ValidSession は有効なセッションでユーザーIDが
// コンテキストに注入されることをテストする。
func TestSessionMiddleware_ValidSession(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(_ context.Context, id string) (*model.Session, error) {
			if id != "session-abc" {
				t.Errorf("session id = %q, want %q", id, "session-abc")
			}
			return &model.Session{ID: id, UserID: "user-123"}, nil
		},
	}

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Fatalf("UserIDFromContext returned error: %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	})

	handler := NewSessionMiddleware(finder)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-abc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUserID != "user-123" {
		t.Errorf("user id = %q, want %q", gotUserID, "user-123")
	}
}

// TestSessionMiddleware_MissingCookie はCookieなしのリクエストが
// 401になることをテストする。
func TestSessionMiddleware_MissingCookie(t *testing.T) {
	handler := NewSessionMiddleware(&mockSessionFinder{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestSessionMiddleware_ExpiredSession は期限切れセッション（nil）が
// 401になることをテストする。
func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(_ context.Context, _ string) (*model.Session, error) {
			return nil, nil
		},
	}

	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "stale-session"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestSessionMiddleware_FinderError はセッション検索エラーが
// 401になることをテストする。
func TestSessionMiddleware_FinderError(t *testing.T) {
	finder := &mockSessionFinder{
		findByIDFn: func(_ context.Context, _ string) (*model.Session, error) {
			return nil, errors.New("接続が切断されました")
		},
	}

	handler := NewSessionMiddleware(finder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed/home", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "session-abc"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestUserIDFromContext_Missing はユーザーIDのないコンテキストで
// エラーが返ることをテストする。
func TestUserIDFromContext_Missing(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	if err == nil {
		t.Error("expected error for a context without user ID")
	}
}

// TestContextWithUserID は注入したユーザーIDが取り出せることをテストする。
func TestContextWithUserID(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-999")
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext returned error: %v", err)
	}
	if userID != "user-999" {
		t.Errorf("user id = %q, want %q", userID, "user-999")
	}
}
