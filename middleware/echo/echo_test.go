package echo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	orbythttp "github.com/PapaJax20/orbyt/middleware/http"
)

func runRequest(t *testing.T, cfg Config, prepare func(*http.Request)) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	var gotID string
	e.GET("/", func(c echo.Context) error {
		gotID, _ = HouseholdID(c)
		return c.NoContent(http.StatusOK)
	}, Middleware(cfg))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if prepare != nil {
		prepare(r)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)
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
		OnUnauthorized: func(c echo.Context) error {
			return c.NoContent(http.StatusTeapot)
		},
	}
	w, _ := runRequest(t, cfg, nil)

	if w.Code != http.StatusTeapot {
		t.Errorf("expected custom status, got %d", w.Code)
	}
}

func TestMiddleware_RequestContextInjection(t *testing.T) {
	e := echo.New()
	var ctxID string
	e.GET("/", func(c echo.Context) error {
		ctxID, _ = orbythttp.HouseholdID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}, Middleware(Config{}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(orbythttp.DefaultHeader, "hh-3")
	e.ServeHTTP(httptest.NewRecorder(), r)

	if ctxID != "hh-3" {
		t.Errorf("expected hh-3 in request context, got %q", ctxID)
	}
}
