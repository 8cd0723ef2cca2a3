// Package http provides HTTP middleware for household context resolution
package http

import (
	"context"
	"net/http"
)

// HouseholdExtractor extracts the raw household credential from a request.
// Return empty string if the request carries none.
type HouseholdExtractor func(r *http.Request) string

// Resolver turns the raw extracted value (a session token, an opaque
// cookie value) into a household ID. Return empty string when the
// credential does not map to a household.
type Resolver func(ctx context.Context, raw string) (string, error)

const (
	// DefaultHeader is the header checked by the default extractor
	DefaultHeader = "X-Household-ID"

	// DefaultCookie is the cookie checked by the default extractor
	DefaultCookie = "orbyt_household"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// HouseholdIDKey is the context key for the resolved household ID
	HouseholdIDKey ContextKey = "orbyt:householdID"
)

// Config holds middleware configuration
type Config struct {
	// GetHouseholdID extracts the raw household credential from the request.
	// If nil, checks the X-Household-ID header and then the orbyt_household
	// cookie.
	GetHouseholdID HouseholdExtractor

	// Resolve optionally maps the raw credential to a household ID
	// (e.g. session token lookup). If nil, the raw value is used as-is.
	Resolve Resolver

	// OnUnauthorized is called when no household can be resolved
	// If nil, returns 401 Unauthorized
	OnUnauthorized func(w http.ResponseWriter, r *http.Request)

	// OnError is called when the resolver fails
	// If nil, returns 500 Internal Server Error
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware creates an HTTP middleware that resolves the household context
// and injects it into the request context for downstream handlers.
func Middleware(config Config) func(http.Handler) http.Handler {
	if config.GetHouseholdID == nil {
		config.GetHouseholdID = FirstOf(FromHeader(DefaultHeader), FromCookie(DefaultCookie))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := config.GetHouseholdID(r)
			if raw == "" {
				unauthorized(config, w, r)
				return
			}

			householdID := raw
			if config.Resolve != nil {
				resolved, err := config.Resolve(r.Context(), raw)
				if err != nil {
					if config.OnError != nil {
						config.OnError(w, r, err)
					} else {
						http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					}
					return
				}
				householdID = resolved
			}
			if householdID == "" {
				unauthorized(config, w, r)
				return
			}

			ctx := WithHouseholdID(r.Context(), householdID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HandlerFunc creates an HTTP middleware that resolves the household context
// (HandlerFunc version)
func HandlerFunc(config Config) func(http.HandlerFunc) http.HandlerFunc {
	middleware := Middleware(config)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			middleware(next).ServeHTTP(w, r)
		}
	}
}

func unauthorized(config Config, w http.ResponseWriter, r *http.Request) {
	if config.OnUnauthorized != nil {
		config.OnUnauthorized(w, r)
		return
	}
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// Common extractors for convenience

// FromHeader returns a HouseholdExtractor that reads a header
func FromHeader(headerName string) HouseholdExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromCookie returns a HouseholdExtractor that reads a cookie value
func FromCookie(cookieName string) HouseholdExtractor {
	return func(r *http.Request) string {
		c, err := r.Cookie(cookieName)
		if err != nil {
			return ""
		}
		return c.Value
	}
}

// FromQuery returns a HouseholdExtractor that reads a query parameter
func FromQuery(queryName string) HouseholdExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(queryName)
	}
}

// FirstOf returns a HouseholdExtractor that tries each extractor in order
// and returns the first non-empty result
func FirstOf(extractors ...HouseholdExtractor) HouseholdExtractor {
	return func(r *http.Request) string {
		for _, extract := range extractors {
			if v := extract(r); v != "" {
				return v
			}
		}
		return ""
	}
}

// WithHouseholdID adds the household ID to a context
func WithHouseholdID(ctx context.Context, householdID string) context.Context {
	return context.WithValue(ctx, HouseholdIDKey, householdID)
}

// HouseholdID returns the household ID stored in the context, if any
func HouseholdID(ctx context.Context) (string, bool) {
	householdID, ok := ctx.Value(HouseholdIDKey).(string)
	return householdID, ok && householdID != ""
}
