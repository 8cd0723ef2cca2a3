package relay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// FinanceSweep syncs every active linked financial account, sequentially, in
// stable id order. One bad item never stops the batch: failures are counted
// and the sweep moves on. The returned error is reserved for failing to
// enumerate the batch at all.
func (rl *Relay) FinanceSweep(ctx context.Context) (synced, failed int, err error) {
	started := time.Now()

	items, err := rl.store.ListActiveFinanceItems(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, item := range items {
		cursor, syncErr := rl.finance.SyncItem(ctx, item)
		if syncErr == ErrAuthRevoked {
			// The user must relink; keep the item out of future sweeps.
			if deactErr := rl.store.DeactivateFinanceItem(ctx, item.ID); deactErr != nil {
				rl.config.Logger.Error("finance item deactivation failed",
					agenda.Field{Key: "item_id", Value: item.ID.String()},
					agenda.Field{Key: "error", Value: deactErr.Error()},
				)
			}
			rl.config.Logger.Warn("finance item auth revoked",
				agenda.Field{Key: "item_id", Value: item.ID.String()},
			)
			failed++
			continue
		}
		if syncErr != nil {
			rl.config.Logger.Error("finance item sync failed",
				agenda.Field{Key: "item_id", Value: item.ID.String()},
				agenda.Field{Key: "error", Value: syncErr.Error()},
			)
			failed++
			continue
		}

		if cursor != item.Cursor {
			if saveErr := rl.store.SaveFinanceCursor(ctx, item.ID, cursor); saveErr != nil {
				rl.config.Logger.Error("finance cursor save failed",
					agenda.Field{Key: "item_id", Value: item.ID.String()},
					agenda.Field{Key: "error", Value: saveErr.Error()},
				)
				failed++
				continue
			}
		}
		synced++
	}

	rl.config.Metrics.RecordSweep("finance", synced, failed, time.Since(started))
	rl.config.Logger.Info("finance sweep complete",
		agenda.Field{Key: "synced", Value: synced},
		agenda.Field{Key: "errors", Value: failed},
	)
	return synced, failed, nil
}

// CalendarSweep re-syncs every account with a registered push channel. Push
// notifications can be dropped by the provider; the sweep is the catch-up
// path. Accounts watched by more than one channel sync once.
func (rl *Relay) CalendarSweep(ctx context.Context) (synced, failed int, err error) {
	started := time.Now()

	subs, err := rl.store.ListSubscriptions(ctx)
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[uuid.UUID]bool, len(subs))
	for _, sub := range subs {
		if seen[sub.AccountID] {
			continue
		}
		seen[sub.AccountID] = true

		if syncErr := rl.calendar.SyncAccount(ctx, sub.AccountID); syncErr != nil {
			rl.config.Logger.Error("calendar account sync failed",
				agenda.Field{Key: "account_id", Value: sub.AccountID.String()},
				agenda.Field{Key: "error", Value: syncErr.Error()},
			)
			failed++
			continue
		}
		synced++
	}

	rl.config.Metrics.RecordSweep("calendar", synced, failed, time.Since(started))
	rl.config.Logger.Info("calendar sweep complete",
		agenda.Field{Key: "synced", Value: synced},
		agenda.Field{Key: "errors", Value: failed},
	)
	return synced, failed, nil
}

// RenewSweep re-registers push channels that expire within the configured
// lookahead. Channels already expired are not renewed here; registration of
// fresh channels happens when the account syncs.
func (rl *Relay) RenewSweep(ctx context.Context) (renewed, failed int, err error) {
	started := time.Now()
	now := time.Now().UTC()

	subs, err := rl.store.ListSubscriptionsExpiring(ctx, now, now.Add(rl.config.RenewalLookahead))
	if err != nil {
		return 0, 0, err
	}

	for _, sub := range subs {
		next, renewErr := rl.calendar.RenewSubscription(ctx, sub)
		if renewErr != nil {
			rl.config.Logger.Error("subscription renewal failed",
				agenda.Field{Key: "channel_id", Value: sub.ChannelID},
				agenda.Field{Key: "error", Value: renewErr.Error()},
			)
			failed++
			continue
		}
		if err := rl.store.PutSubscription(ctx, next); err != nil {
			rl.config.Logger.Error("subscription save failed",
				agenda.Field{Key: "channel_id", Value: next.ChannelID},
				agenda.Field{Key: "error", Value: err.Error()},
			)
			failed++
			continue
		}
		renewed++
	}

	rl.config.Metrics.RecordSweep("renewal", renewed, failed, time.Since(started))
	rl.config.Logger.Info("renewal sweep complete",
		agenda.Field{Key: "renewed", Value: renewed},
		agenda.Field{Key: "errors", Value: failed},
	)
	return renewed, failed, nil
}
