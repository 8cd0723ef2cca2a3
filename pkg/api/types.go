package api

import (
	"time"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// agendaQuery is the validated shape of a GET /v1/agenda request.
type agendaQuery struct {
	HouseholdID string `validate:"required,uuid4"`
	From        string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	To          string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// deleteEventRequest is the validated shape of a DELETE /v1/events/{id} request.
type deleteEventRequest struct {
	EventID string `validate:"required,uuid4"`
	Date    string `validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Mode    string `validate:"required,oneof=this this_and_future all"`
}

// AgendaItem is the wire representation of a single agenda entry
type AgendaItem struct {
	ID       string          `json:"id"`
	Type     agenda.ItemType `json:"type"`
	Title    string          `json:"title"`
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	AllDay   bool            `json:"all_day"`
	SourceID string          `json:"source_id"`
}

// AgendaResponse is the body of a successful agenda query
type AgendaResponse struct {
	HouseholdID string       `json:"household_id"`
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	Items       []AgendaItem `json:"items"`
}

// ErrorResponse is the body of any failed request
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
