// Package fiber provides Fiber middleware for household context resolution
package fiber

import (
	"github.com/gofiber/fiber/v2"

	orbythttp "github.com/PapaJax20/orbyt/middleware/http"
)

// HouseholdExtractor extracts the raw household credential from a Fiber
// context. Return empty string if the request carries none.
type HouseholdExtractor func(c *fiber.Ctx) string

// ContextValueKey is the Fiber locals key the resolved household ID is
// stored under.
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
	OnUnauthorized func(c *fiber.Ctx) error

	// OnError is called when the resolver fails
	// If nil, returns 500 Internal Server Error
	OnError func(c *fiber.Ctx, err error) error
}

// Middleware creates a Fiber middleware that resolves the household context
// and stores it in the request locals.
func Middleware(cfg Config) fiber.Handler {
	if cfg.GetHouseholdID == nil {
		cfg.GetHouseholdID = FirstOf(
			FromHeader(orbythttp.DefaultHeader),
			FromCookie(orbythttp.DefaultCookie),
		)
	}

	return func(c *fiber.Ctx) error {
		raw := cfg.GetHouseholdID(c)
		if raw == "" {
			return unauthorized(cfg, c)
		}

		householdID := raw
		if cfg.Resolve != nil {
			resolved, err := cfg.Resolve(c.UserContext(), raw)
			if err != nil {
				if cfg.OnError != nil {
					return cfg.OnError(c, err)
				}
				return c.Status(fiber.StatusInternalServerError).
					JSON(fiber.Map{"error": "Internal Server Error"})
			}
			householdID = resolved
		}
		if householdID == "" {
			return unauthorized(cfg, c)
		}

		c.Locals(ContextValueKey, householdID)
		return c.Next()
	}
}

func unauthorized(cfg Config, c *fiber.Ctx) error {
	if cfg.OnUnauthorized != nil {
		return cfg.OnUnauthorized(c)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

// HouseholdID returns the resolved household ID from the request locals, if any
func HouseholdID(c *fiber.Ctx) (string, bool) {
	if str, ok := c.Locals(ContextValueKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// Convenience extractors

// FromHeader returns a HouseholdExtractor that reads a header
func FromHeader(headerName string) HouseholdExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(headerName)
	}
}

// FromCookie returns a HouseholdExtractor that reads a cookie value
func FromCookie(cookieName string) HouseholdExtractor {
	return func(c *fiber.Ctx) string {
		return c.Cookies(cookieName)
	}
}

// FromParam returns a HouseholdExtractor that reads a route parameter
func FromParam(paramName string) HouseholdExtractor {
	return func(c *fiber.Ctx) string {
		return c.Params(paramName)
	}
}

// FromQuery returns a HouseholdExtractor that reads a query parameter
func FromQuery(queryName string) HouseholdExtractor {
	return func(c *fiber.Ctx) string {
		return c.Query(queryName)
	}
}

// FirstOf returns a HouseholdExtractor that tries each extractor in order
// and returns the first non-empty result
func FirstOf(extractors ...HouseholdExtractor) HouseholdExtractor {
	return func(c *fiber.Ctx) string {
		for _, extract := range extractors {
			if v := extract(c); v != "" {
				return v
			}
		}
		return ""
	}
}
