package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
	"github.com/PapaJax20/orbyt/pkg/feed"
)

// GetAgendaICS serves the agenda window as an iCalendar feed, for calendar
// apps subscribing to the household agenda.
func (h *Handler) GetAgendaICS(w http.ResponseWriter, r *http.Request) {
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

	hid, _ := uuid.Parse(req.HouseholdID)
	from, _ := time.Parse(time.RFC3339, req.From)
	to, _ := time.Parse(time.RFC3339, req.To)

	items, err := h.config.Service.Agenda(ctx, hid, agenda.Window{Start: from, End: to}, agenda.Include{
		Bills:     parseFlag(q.Get("include_bills"), true),
		Tasks:     parseFlag(q.Get("include_tasks"), true),
		Birthdays: parseFlag(q.Get("include_birthdays"), true),
	})
	if err != nil {
		if errors.Is(err, agenda.ErrInvalidWindow) {
			h.handleError(w, r, err, http.StatusBadRequest)
			return
		}
		h.config.Logger.Error("agenda feed query failed",
			agenda.Field{Key: "household_id", Value: req.HouseholdID},
			agenda.Field{Key: "error", Value: err.Error()})
		h.handleError(w, r, fmt.Errorf("failed to query agenda"), http.StatusInternalServerError)
		return
	}

	cal := feed.Export(items, "Household Agenda")
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		// Response already streaming; nothing useful to do
		_ = err
	}
}
