package relay

import (
	"net/http"

	"github.com/PapaJax20/orbyt/pkg/agenda"
	"github.com/PapaJax20/orbyt/pkg/relay/internal"
)

const (
	headerChannelID     = "X-Goog-Channel-Id"
	headerResourceID    = "X-Goog-Resource-Id"
	headerResourceState = "X-Goog-Resource-State"
	headerMessageNumber = "X-Goog-Message-Number"

	resourceStateSync = "sync"
)

// HandleGooglePush processes Google calendar push notifications. The
// provider retries non-2xx responses with backoff and eventually drops the
// channel, so every failure past basic request validation is logged and
// acknowledged rather than surfaced; the periodic sweep covers anything a
// dropped notification would have synced.
func (rl *Relay) HandleGooglePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channelID := r.Header.Get(headerChannelID)
	resourceID := r.Header.Get(headerResourceID)
	if channelID == "" || resourceID == "" {
		rl.config.Metrics.RecordWebhook("google", "bad_request")
		_ = internal.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "missing channel headers"})
		return
	}

	// The handshake sent at channel registration carries no change.
	if r.Header.Get(headerResourceState) == resourceStateSync {
		rl.config.Metrics.RecordWebhook("google", "handshake")
		rl.ack(w)
		return
	}

	if rl.seenNotification(r, channelID, resourceID) {
		rl.config.Metrics.RecordWebhook("google", "duplicate")
		rl.ack(w)
		return
	}

	sub, err := rl.store.GetSubscription(r.Context(), channelID, resourceID)
	if err == agenda.ErrSubscriptionNotFound {
		// Stale or foreign channel: nothing of ours to sync.
		rl.config.Metrics.RecordWebhook("google", "unknown_channel")
		rl.ack(w)
		return
	}
	if err != nil {
		rl.config.Logger.Error("subscription lookup failed",
			agenda.Field{Key: "channel_id", Value: channelID},
			agenda.Field{Key: "error", Value: err.Error()},
		)
		rl.config.Metrics.RecordWebhook("google", "error")
		rl.ack(w)
		return
	}

	if err := rl.calendar.SyncAccount(r.Context(), sub.AccountID); err != nil {
		rl.config.Logger.Error("calendar sync failed",
			agenda.Field{Key: "account_id", Value: sub.AccountID.String()},
			agenda.Field{Key: "error", Value: err.Error()},
		)
		rl.config.Metrics.RecordWebhook("google", "error")
		rl.ack(w)
		return
	}

	rl.config.Metrics.RecordWebhook("google", "success")
	rl.ack(w)
}

// seenNotification applies best-effort dedupe on the per-channel message
// number. No deduper, no message number, or a deduper error all mean
// "process it": syncs are idempotent, so a duplicate is cheaper than a miss.
func (rl *Relay) seenNotification(r *http.Request, channelID, resourceID string) bool {
	if rl.deduper == nil {
		return false
	}
	msg := r.Header.Get(headerMessageNumber)
	if msg == "" {
		return false
	}

	seen, err := rl.deduper.Seen(r.Context(), channelID+"|"+resourceID+"|"+msg, rl.config.DedupeTTL)
	if err != nil {
		rl.config.Logger.Warn("notification dedupe failed",
			agenda.Field{Key: "channel_id", Value: channelID},
			agenda.Field{Key: "error", Value: err.Error()},
		)
		return false
	}
	return seen
}

func (rl *Relay) ack(w http.ResponseWriter) {
	_ = internal.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
