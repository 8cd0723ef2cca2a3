package gin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gongin "github.com/gin-gonic/gin"

	orbythttp "github.com/PapaJax20/orbyt/middleware/http"
)

func runRequest(t *testing.T, cfg Config, prepare func(*http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()

	gongin.SetMode(gongin.TestMode)
	router := gongin.New()
	var gotID string
	router.GET("/", Middleware(cfg), func(c *gongin.Context) {
		gotID, _ = HouseholdID(c)
		c.Status(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if prepare != nil {
		prepare(r)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w, gotID
}

func TestMiddleware_Header(t *testing.T) {
	w, gotID := runRequest(t, Config{}, func(r *http.Request) {
		r.Header.Set(orbythttp.DefaultHeader, "hh-1")
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "hh-1" {
		t.Errorf("expected hh-1, got %q", gotID)
	}
}

func TestMiddleware_Cookie(t *testing.T) {
	w, gotID := runRequest(t, Config{}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: orbythttp.DefaultCookie, Value: "hh-2"})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "hh-2" {
		t.Errorf("expected hh-2, got %q", gotID)
	}
}

func TestMiddleware_Unauthorized(t *testing.T) {
	w, _ := runRequest(t, Config{}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestMiddleware_OnUnauthorizedHook(t *testing.T) {
	cfg := Config{
		OnUnauthorized: func(c *gongin.Context) {
			c.Status(http.StatusTeapot)
		},
	}
	w, _ := runRequest(t, cfg, nil)

	if w.Code != http.StatusTeapot {
		t.Errorf("expected custom status, got %d", w.Code)
	}
}

func TestMiddleware_Resolver(t *testing.T) {
	cfg := Config{
		Resolve: func(_ context.Context, raw string) (string, error) {
			if raw == "tok-abc" {
				return "hh-789", nil
			}
			return "", nil
		},
	}

	w, gotID := runRequest(t, cfg, func(r *http.Request) {
		r.Header.Set(orbythttp.DefaultHeader, "tok-abc")
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotID != "hh-789" {
		t.Errorf("expected hh-789, got %q", gotID)
	}

	w, _ = runRequest(t, cfg, func(r *http.Request) {
		r.Header.Set(orbythttp.DefaultHeader, "tok-unknown")
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unresolved credential, got %d", w.Code)
	}
}

func TestMiddleware_ResolverError(t *testing.T) {
	cfg := Config{
		Resolve: func(context.Context, string) (string, error) {
			return "", errors.New("lookup failed")
		},
	}
	w, _ := runRequest(t, cfg, func(r *http.Request) {
		r.Header.Set(orbythttp.DefaultHeader, "tok-abc")
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestMiddleware_RequestContextInjection(t *testing.T) {
	gongin.SetMode(gongin.TestMode)
	router := gongin.New()
	var ctxID string
	router.GET("/", Middleware(Config{}), func(c *gongin.Context) {
		ctxID, _ = orbythttp.HouseholdID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(orbythttp.DefaultHeader, "hh-3")
	router.ServeHTTP(httptest.NewRecorder(), r)

	if ctxID != "hh-3" {
		t.Errorf("expected hh-3 in request context, got %q", ctxID)
	}
}
