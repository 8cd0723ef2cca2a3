package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v83"

	"github.com/PapaJax20/orbyt/pkg/agenda"
	"github.com/PapaJax20/orbyt/pkg/relay/internal"
)

// HandleStripeWebhook processes Stripe billing events for household premium
// subscriptions. Signature verification gates everything; unknown event
// types are acknowledged without action so new Stripe features never break
// the endpoint.
func (rl *Relay) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rl.config.StripeWebhookSecret == "" {
		http.Error(w, "webhook not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := internal.ReadBodyStrict(w, r, maxWebhookBodyBytes)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, "invalid payload", http.StatusBadRequest)
		}
		rl.config.Metrics.RecordWebhook("stripe", "bad_request")
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	event, err := stripe.ConstructEvent(body, sig, rl.config.StripeWebhookSecret)
	if err != nil {
		rl.config.Metrics.RecordWebhook("stripe", "auth_failed")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := rl.processStripeEvent(r.Context(), &event); err != nil {
		rl.config.Logger.Error("stripe event processing failed",
			agenda.Field{Key: "event_type", Value: string(event.Type)},
			agenda.Field{Key: "error", Value: err.Error()},
		)
		rl.config.Metrics.RecordWebhook("stripe", "error")
		http.Error(w, "failed to process webhook", http.StatusInternalServerError)
		return
	}

	rl.config.Metrics.RecordWebhook("stripe", "success")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// processStripeEvent maps billing lifecycle events to premium-state changes.
func (rl *Relay) processStripeEvent(ctx context.Context, event *stripe.Event) error {
	if rl.billing == nil {
		return nil
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to unmarshal checkout session: %w", err)
		}
		householdID := session.Metadata["household_id"]
		if householdID == "" {
			return fmt.Errorf("metadata.household_id missing on checkout session %s", session.ID)
		}
		return rl.billing.SetPremium(ctx, householdID, true)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to unmarshal subscription: %w", err)
		}
		householdID := sub.Metadata["household_id"]
		if householdID == "" {
			return fmt.Errorf("metadata.household_id missing on subscription %s", sub.ID)
		}
		return rl.billing.SetPremium(ctx, householdID, false)

	default:
		// Unknown event type - ignore silently
		return nil
	}
}
