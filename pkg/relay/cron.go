package relay

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/PapaJax20/orbyt/pkg/agenda"
	"github.com/PapaJax20/orbyt/pkg/relay/internal"
)

// authorized verifies the Bearer secret on a cron callback. Comparison is
// constant-time; an empty configured secret rejects everything.
func (rl *Relay) authorized(r *http.Request) bool {
	if rl.config.CronSecret == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(rl.config.CronSecret)) == 1
}

// HandleCronSync runs the finance sweep when triggered by the scheduler.
// Per-item failures are reported in the counts, not the status code; only a
// failure to enumerate the batch is a 500.
func (rl *Relay) HandleCronSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rl.authorized(r) {
		_ = internal.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	synced, failed, err := rl.FinanceSweep(r.Context())
	if err != nil {
		rl.config.Logger.Error("finance sweep failed", agenda.Field{Key: "error", Value: err.Error()})
		_ = internal.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	_ = internal.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"synced":  synced,
		"errors":  failed,
	})
}

// HandleCronCalendar runs the calendar catch-up sweep.
func (rl *Relay) HandleCronCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rl.authorized(r) {
		_ = internal.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	synced, failed, err := rl.CalendarSweep(r.Context())
	if err != nil {
		rl.config.Logger.Error("calendar sweep failed", agenda.Field{Key: "error", Value: err.Error()})
		_ = internal.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	_ = internal.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"synced":  synced,
		"errors":  failed,
	})
}

// HandleCronRenew runs the subscription renewal sweep.
func (rl *Relay) HandleCronRenew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !rl.authorized(r) {
		_ = internal.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	renewed, failed, err := rl.RenewSweep(r.Context())
	if err != nil {
		rl.config.Logger.Error("renewal sweep failed", agenda.Field{Key: "error", Value: err.Error()})
		_ = internal.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	_ = internal.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"renewed": renewed,
		"errors":  failed,
	})
}
