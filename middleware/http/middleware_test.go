package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func echoHandler(t *testing.T, gotID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := HouseholdID(r.Context())
		if !ok {
			t.Error("expected household ID in context")
		}
		*gotID = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_HeaderExtraction(t *testing.T) {
	var gotID string
	handler := Middleware(Config{})(echoHandler(t, &gotID))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(DefaultHeader, "hh-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "hh-123" {
		t.Errorf("expected hh-123, got %q", gotID)
	}
}

func TestMiddleware_CookieFallback(t *testing.T) {
	var gotID string
	handler := Middleware(Config{})(echoHandler(t, &gotID))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCookie, Value: "hh-456"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "hh-456" {
		t.Errorf("expected hh-456, got %q", gotID)
	}
}

func TestMiddleware_HeaderWinsOverCookie(t *testing.T) {
	var gotID string
	handler := Middleware(Config{})(echoHandler(t, &gotID))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(DefaultHeader, "from-header")
	r.AddCookie(&http.Cookie{Name: DefaultCookie, Value: "from-cookie"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if gotID != "from-header" {
		t.Errorf("expected from-header, got %q", gotID)
	}
}

func TestMiddleware_Unauthorized(t *testing.T) {
	handler := Middleware(Config{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestMiddleware_OnUnauthorizedHook(t *testing.T) {
	called := false
	handler := Middleware(Config{
		OnUnauthorized: func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusForbidden)
		},
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("expected OnUnauthorized to be called")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestMiddleware_Resolver(t *testing.T) {
	var gotID string
	handler := Middleware(Config{
		GetHouseholdID: FromCookie("session"),
		Resolve: func(_ context.Context, raw string) (string, error) {
			if raw == "tok-abc" {
				return "hh-789", nil
			}
			return "", nil
		},
	})(echoHandler(t, &gotID))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "tok-abc"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if gotID != "hh-789" {
		t.Errorf("expected hh-789, got %q", gotID)
	}

	// Unknown token resolves to empty, which is unauthorized
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: "session", Value: "tok-unknown"})
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, r2)

	if w2.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown token, got %d", w2.Code)
	}
}

func TestMiddleware_ResolverError(t *testing.T) {
	handler := Middleware(Config{
		GetHouseholdID: FromHeader(DefaultHeader),
		Resolve: func(context.Context, string) (string, error) {
			return "", fmt.Errorf("session store down")
		},
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler should not be called")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(DefaultHeader, "anything")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandlerFunc(t *testing.T) {
	var gotID string
	wrapped := HandlerFunc(Config{})(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = HouseholdID(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(DefaultHeader, "hh-1")
	wrapped(httptest.NewRecorder(), r)

	if gotID != "hh-1" {
		t.Errorf("expected hh-1, got %q", gotID)
	}
}

func TestHouseholdID_Missing(t *testing.T) {
	if _, ok := HouseholdID(context.Background()); ok {
		t.Error("expected no household ID in empty context")
	}
}
