package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// Config holds configuration for the agenda API handler
type Config struct {
	// Service is the agenda service instance (required)
	Service *agenda.Service

	// GetHouseholdID extracts the household ID from an HTTP request (required)
	// Similar to middleware/http pattern
	GetHouseholdID func(*http.Request) string

	// GetEventID extracts the event ID from an HTTP request.
	// Required only when the DeleteEvent handler is routed; typically wired
	// to the router's path-parameter accessor (e.g. chi.URLParam).
	GetEventID func(*http.Request) string

	// ExchangeCode trades an authorization code for a session token.
	// Required only when the AuthCallback handler is routed.
	ExchangeCode func(ctx context.Context, code string) (string, error)

	// LoginURL is where AuthCallback redirects when the exchange fails
	LoginURL string

	// SettingsURL is the deep link IntegrationCallback forwards provider
	// results to
	SettingsURL string

	// SessionCookie is the name of the cookie AuthCallback sets.
	// Defaults to "orbyt_session".
	SessionCookie string

	// OnError handles errors (auth, internal, etc.)
	// If nil, uses default error handling
	OnError func(http.ResponseWriter, *http.Request, error)

	// Logger is optional structured logging for handler failures.
	// If nil, logging is disabled.
	Logger agenda.Logger
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Service == nil {
		return fmt.Errorf("service is required")
	}
	if c.GetHouseholdID == nil {
		return fmt.Errorf("getHouseholdID is required")
	}
	return nil
}

// Helper functions for common household ID extraction patterns

// FromHeader returns a GetHouseholdID function that extracts the ID from a header
func FromHeader(headerName string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromContext returns a GetHouseholdID function that extracts the ID from
// request context. Uses the same context key pattern as middleware/http.
func FromContext(key interface{}) func(*http.Request) string {
	return func(r *http.Request) string {
		if householdID, ok := r.Context().Value(key).(string); ok {
			return householdID
		}
		return ""
	}
}
