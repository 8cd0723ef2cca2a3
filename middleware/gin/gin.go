// Package gin provides Gin middleware for household context resolution
package gin

import (
	"net/http"

	gongin "github.com/gin-gonic/gin"

	orbythttp "github.com/PapaJax20/orbyt/middleware/http"
)

// HouseholdExtractor extracts the raw household credential from a Gin context.
// Return empty string if the request carries none.
type HouseholdExtractor func(c *gongin.Context) string

// ContextValueKey is the Gin context key the resolved household ID is stored
// under (via c.Set), in addition to the request context.
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
	OnUnauthorized func(c *gongin.Context)

	// OnError is called when the resolver fails
	// If nil, returns 500 Internal Server Error
	OnError func(c *gongin.Context, err error)
}

// Middleware creates a Gin middleware that resolves the household context
// and injects it into both the Gin context and the request context.
func Middleware(cfg Config) gongin.HandlerFunc {
	if cfg.GetHouseholdID == nil {
		cfg.GetHouseholdID = FirstOf(
			FromHeader(orbythttp.DefaultHeader),
			FromCookie(orbythttp.DefaultCookie),
		)
	}

	return func(c *gongin.Context) {
		raw := cfg.GetHouseholdID(c)
		if raw == "" {
			unauthorized(cfg, c)
			return
		}

		householdID := raw
		if cfg.Resolve != nil {
			resolved, err := cfg.Resolve(c.Request.Context(), raw)
			if err != nil {
				if cfg.OnError != nil {
					cfg.OnError(c, err)
				} else {
					c.JSON(http.StatusInternalServerError, gongin.H{"error": "Internal Server Error"})
				}
				c.Abort()
				return
			}
			householdID = resolved
		}
		if householdID == "" {
			unauthorized(cfg, c)
			return
		}

		c.Set(ContextValueKey, householdID)
		ctx := orbythttp.WithHouseholdID(c.Request.Context(), householdID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func unauthorized(cfg Config, c *gongin.Context) {
	if cfg.OnUnauthorized != nil {
		cfg.OnUnauthorized(c)
	} else {
		c.JSON(http.StatusUnauthorized, gongin.H{"error": "Unauthorized"})
	}
	c.Abort()
}

// HouseholdID returns the resolved household ID from a Gin context, if any
func HouseholdID(c *gongin.Context) (string, bool) {
	if val, exists := c.Get(ContextValueKey); exists {
		if str, ok := val.(string); ok && str != "" {
			return str, true
		}
	}
	return "", false
}

// Convenience extractors

// FromHeader returns a HouseholdExtractor that reads a header
func FromHeader(headerName string) HouseholdExtractor {
	return func(c *gongin.Context) string {
		return c.GetHeader(headerName)
	}
}

// FromCookie returns a HouseholdExtractor that reads a cookie value
func FromCookie(cookieName string) HouseholdExtractor {
	return func(c *gongin.Context) string {
		v, err := c.Cookie(cookieName)
		if err != nil {
			return ""
		}
		return v
	}
}

// FromParam returns a HouseholdExtractor that reads a route parameter
func FromParam(paramName string) HouseholdExtractor {
	return func(c *gongin.Context) string {
		return c.Param(paramName)
	}
}

// FromQuery returns a HouseholdExtractor that reads a query parameter
func FromQuery(queryName string) HouseholdExtractor {
	return func(c *gongin.Context) string {
		return c.Query(queryName)
	}
}

// FirstOf returns a HouseholdExtractor that tries each extractor in order
// and returns the first non-empty result
func FirstOf(extractors ...HouseholdExtractor) HouseholdExtractor {
	return func(c *gongin.Context) string {
		for _, extract := range extractors {
			if v := extract(c); v != "" {
				return v
			}
		}
		return ""
	}
}
