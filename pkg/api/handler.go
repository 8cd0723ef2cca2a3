// Package api provides HTTP handlers for the agenda surface: the agenda
// query endpoint, series deletion, and the OAuth redirect callbacks.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

const defaultSessionCookie = "orbyt_session"

// Handler provides HTTP endpoints for agenda queries and auth callbacks
type Handler struct {
	config   Config
	validate *validator.Validate
}

// NewHandler creates a new agenda API handler with the given configuration
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.SessionCookie == "" {
		config.SessionCookie = defaultSessionCookie
	}
	if config.Logger == nil {
		config.Logger = &agenda.NoopLogger{}
	}
	return &Handler{
		config:   config,
		validate: validator.New(),
	}, nil
}

// GetAgenda returns the merged agenda for a household over a query window
func (h *Handler) GetAgenda(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	householdID := h.config.GetHouseholdID(r)
	if householdID == "" {
		h.handleError(w, r, fmt.Errorf("household ID not found"), http.StatusUnauthorized)
		return
	}

	req := agendaQuery{
		HouseholdID: householdID,
		From:        q.Get("from"),
		To:          q.Get("to"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	// Formats already checked by validation
	hid, _ := uuid.Parse(req.HouseholdID)
	from, _ := time.Parse(time.RFC3339, req.From)
	to, _ := time.Parse(time.RFC3339, req.To)

	inc := agenda.Include{
		Bills:     parseFlag(q.Get("include_bills"), true),
		Tasks:     parseFlag(q.Get("include_tasks"), true),
		Birthdays: parseFlag(q.Get("include_birthdays"), true),
	}

	items, err := h.config.Service.Agenda(ctx, hid, agenda.Window{Start: from, End: to}, inc)
	if err != nil {
		if errors.Is(err, agenda.ErrInvalidWindow) {
			h.handleError(w, r, err, http.StatusBadRequest)
			return
		}
		h.config.Logger.Error("agenda query failed",
			agenda.Field{Key: "household_id", Value: req.HouseholdID},
			agenda.Field{Key: "error", Value: err.Error()})
		h.handleError(w, r, fmt.Errorf("failed to query agenda"), http.StatusInternalServerError)
		return
	}

	resp := AgendaResponse{
		HouseholdID: req.HouseholdID,
		From:        from,
		To:          to,
		Items:       make([]AgendaItem, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, AgendaItem{
			ID:       it.ID,
			Type:     it.Type,
			Title:    it.Title,
			Start:    it.Start,
			End:      it.End,
			AllDay:   it.AllDay,
			SourceID: it.SourceID.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteEvent removes one instance, the remaining tail, or the whole series
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if h.config.GetEventID == nil {
		h.handleError(w, r, fmt.Errorf("event routing not configured"), http.StatusInternalServerError)
		return
	}
	if h.config.GetHouseholdID(r) == "" {
		h.handleError(w, r, fmt.Errorf("household ID not found"), http.StatusUnauthorized)
		return
	}

	req := deleteEventRequest{
		EventID: h.config.GetEventID(r),
		Date:    q.Get("date"),
		Mode:    q.Get("mode"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	eventID, _ := uuid.Parse(req.EventID)
	date, _ := time.Parse(time.RFC3339, req.Date)

	err := h.config.Service.DeleteEvent(ctx, eventID, agenda.DeleteMode(req.Mode), date)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, agenda.ErrEventNotFound):
		h.handleError(w, r, err, http.StatusNotFound)
	case errors.Is(err, agenda.ErrSeriesDeleted):
		h.handleError(w, r, err, http.StatusGone)
	case errors.Is(err, agenda.ErrInvalidDeleteMode):
		h.handleError(w, r, err, http.StatusBadRequest)
	default:
		h.config.Logger.Error("event delete failed",
			agenda.Field{Key: "event_id", Value: req.EventID},
			agenda.Field{Key: "error", Value: err.Error()})
		h.handleError(w, r, fmt.Errorf("failed to delete event"), http.StatusInternalServerError)
	}
}

// AuthCallback completes the auth flow: exchanges the code for a session
// token, sets the session cookie and redirects to the requested page. Any
// failure redirects back to the login page instead of rendering an error.
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	loginURL := h.config.LoginURL
	if loginURL == "" {
		loginURL = "/login"
	}

	code := r.URL.Query().Get("code")
	if code == "" || h.config.ExchangeCode == nil {
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	token, err := h.config.ExchangeCode(r.Context(), code)
	if err != nil {
		h.config.Logger.Warn("auth code exchange failed",
			agenda.Field{Key: "error", Value: err.Error()})
		http.Redirect(w, r, loginURL, http.StatusFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.config.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	next := r.URL.Query().Get("next")
	if next == "" || next[0] != '/' {
		// Only same-origin relative redirects
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// IntegrationCallback forwards a provider's OAuth result (code, state or
// error) to the settings deep link, where the client finishes the connect
// flow. The provider name is carried through so settings knows which
// integration the result belongs to.
func (h *Handler) IntegrationCallback(provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settingsURL := h.config.SettingsURL
		if settingsURL == "" {
			settingsURL = "/settings"
		}

		q := r.URL.Query()
		forward := url.Values{}
		forward.Set("provider", provider)
		for _, key := range []string{"code", "state", "error", "error_description"} {
			if v := q.Get(key); v != "" {
				forward.Set(key, v)
			}
		}

		sep := "?"
		if hasQuery(settingsURL) {
			sep = "&"
		}
		http.Redirect(w, r, settingsURL+sep+forward.Encode(), http.StatusFound)
	}
}

func hasQuery(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.RawQuery != ""
}

// parseFlag interprets a boolean query parameter, falling back when absent
// or malformed.
func parseFlag(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// writeValidationError translates validator errors into a per-field payload
func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed"})
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
}

// handleError handles errors with appropriate HTTP status codes
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if h.config.OnError != nil {
		h.config.OnError(w, r, err)
		return
	}
	writeJSON(w, statusCode, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Response already sent; nothing useful to do
		_ = err
	}
}
