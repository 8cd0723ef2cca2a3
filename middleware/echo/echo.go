// Package echo provides Echo middleware for household context resolution
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	orbythttp "github.com/PapaJax20/orbyt/middleware/http"
)

// HouseholdExtractor extracts the raw household credential from an Echo
// context. Return empty string if the request carries none.
type HouseholdExtractor func(c echo.Context) string

// ContextValueKey is the Echo context key the resolved household ID is
// stored under (via c.Set), in addition to the request context.
const ContextValueKey = "HouseholdID"

// Config holds middleware configuration
type Config struct {
	// GetHouseholdID extracts the raw household credential (optional).
	// If nil, checks the X-Household-ID header and then the orbyt_household
	// cookie.
	GetHouseholdID HouseholdExtractor

	// Resolve optionally maps the raw credential to a household ID
	Resolve orbythttp.Resolver

	// OnUnauthorized is called when no household can be resolved
	// If nil, returns 401 Unauthorized
	OnUnauthorized func(c echo.Context) error

	// OnError is called when the resolver fails
	// If nil, returns 500 Internal Server Error
	OnError func(c echo.Context, err error) error
}

// Middleware creates an Echo middleware that resolves the household context
// and injects it into both the Echo context and the request context.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.GetHouseholdID == nil {
		cfg.GetHouseholdID = FirstOf(
			FromHeader(orbythttp.DefaultHeader),
			FromCookie(orbythttp.DefaultCookie),
		)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := cfg.GetHouseholdID(c)
			if raw == "" {
				return unauthorized(cfg, c)
			}

			householdID := raw
			if cfg.Resolve != nil {
				resolved, err := cfg.Resolve(c.Request().Context(), raw)
				if err != nil {
					if cfg.OnError != nil {
						return cfg.OnError(c, err)
					}
					return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
				}
				householdID = resolved
			}
			if householdID == "" {
				return unauthorized(cfg, c)
			}

			c.Set(ContextValueKey, householdID)
			ctx := orbythttp.WithHouseholdID(c.Request().Context(), householdID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func unauthorized(cfg Config, c echo.Context) error {
	if cfg.OnUnauthorized != nil {
		return cfg.OnUnauthorized(c)
	}
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}

// HouseholdID returns the resolved household ID from an Echo context, if any
func HouseholdID(c echo.Context) (string, bool) {
	if str, ok := c.Get(ContextValueKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// Convenience extractors

// FromHeader returns a HouseholdExtractor that reads a header
func FromHeader(headerName string) HouseholdExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(headerName)
	}
}

// FromCookie returns a HouseholdExtractor that reads a cookie value
func FromCookie(cookieName string) HouseholdExtractor {
	return func(c echo.Context) string {
		cookie, err := c.Cookie(cookieName)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// FromParam returns a HouseholdExtractor that reads a route parameter
func FromParam(paramName string) HouseholdExtractor {
	return func(c echo.Context) string {
		return c.Param(paramName)
	}
}

// FromQuery returns a HouseholdExtractor that reads a query parameter
func FromQuery(queryName string) HouseholdExtractor {
	return func(c echo.Context) string {
		return c.QueryParam(queryName)
	}
}

// FirstOf returns a HouseholdExtractor that tries each extractor in order
// and returns the first non-empty result
func FirstOf(extractors ...HouseholdExtractor) HouseholdExtractor {
	return func(c echo.Context) string {
		for _, extract := range extractors {
			if v := extract(c); v != "" {
				return v
			}
		}
		return ""
	}
}
