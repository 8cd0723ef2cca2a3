// Package postgres provides a PostgreSQL implementation of the agenda.Store interface.
// Recurring series are stored as compact rule rows; expansion happens in the
// aggregator, so queries here stay simple single-table reads and upserts.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// Storage implements agenda.Store using PostgreSQL
type Storage struct {
	pool   *pgxpool.Pool
	config Config
}

// Config holds PostgreSQL storage configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// New creates a new PostgreSQL storage adapter
func New(ctx context.Context, config Config) (*Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{pool: pool, config: config}, nil
}

// Close closes the PostgreSQL connection pool
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks the PostgreSQL connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ListEvents implements agenda.Store
func (s *Storage) ListEvents(ctx context.Context, householdID uuid.UUID, w agenda.Window) ([]agenda.Event, error) {
	// Non-repeating rows outside the window are filtered here; repeating
	// rows are kept unless their end bound falls before the window, since
	// only expansion can tell whether they land inside it.
	rows, err := s.pool.Query(ctx,
		`SELECT id, household_id, title, start_at, end_at, all_day, rule, repeat_until, deleted, created_at, updated_at
			FROM events
			WHERE household_id = $1
			  AND deleted = FALSE
			  AND (repeat_until IS NULL OR repeat_until > $2 OR start_at >= $2)
			  AND (rule <> '' OR (start_at <= $3 AND end_at >= $2))`,
		householdID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []agenda.Event
	for rows.Next() {
		var ev agenda.Event
		if err := rows.Scan(
			&ev.ID, &ev.HouseholdID, &ev.Title, &ev.StartAt, &ev.EndAt,
			&ev.AllDay, &ev.Rule, &ev.RepeatUntil, &ev.Deleted,
			&ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListExceptions implements agenda.Store
func (s *Storage) ListExceptions(ctx context.Context, householdID uuid.UUID) ([]agenda.EventException, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT x.event_id, x.instance_date
			FROM event_exceptions x
			JOIN events e ON e.id = x.event_id
			WHERE e.household_id = $1`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer rows.Close()

	var out []agenda.EventException
	for rows.Next() {
		var exc agenda.EventException
		if err := rows.Scan(&exc.EventID, &exc.Date); err != nil {
			return nil, fmt.Errorf("failed to scan exception: %w", err)
		}
		out = append(out, exc)
	}
	return out, rows.Err()
}

// ListBills implements agenda.Store
func (s *Storage) ListBills(ctx context.Context, householdID uuid.UUID) ([]agenda.Bill, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, household_id, name, amount_cents, due_day, rule, first_due_at
			FROM bills WHERE household_id = $1`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var out []agenda.Bill
	for rows.Next() {
		var b agenda.Bill
		if err := rows.Scan(&b.ID, &b.HouseholdID, &b.Name, &b.AmountCents, &b.DueDay, &b.Rule, &b.FirstDueAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListTasks implements agenda.Store
func (s *Storage) ListTasks(ctx context.Context, householdID uuid.UUID) ([]agenda.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, household_id, title, due_at, rule, done
			FROM tasks WHERE household_id = $1 AND done = FALSE AND due_at IS NOT NULL`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []agenda.Task
	for rows.Next() {
		var t agenda.Task
		if err := rows.Scan(&t.ID, &t.HouseholdID, &t.Title, &t.DueAt, &t.Rule, &t.Done); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListContacts implements agenda.Store
func (s *Storage) ListContacts(ctx context.Context, householdID uuid.UUID) ([]agenda.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, household_id, name, birth_month, birth_day, birth_year
			FROM contacts
			WHERE household_id = $1 AND birth_month IS NOT NULL AND birth_day IS NOT NULL`,
		householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var out []agenda.Contact
	for rows.Next() {
		var c agenda.Contact
		if err := rows.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.BirthMonth, &c.BirthDay, &c.BirthYear); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetEvent implements agenda.Store
func (s *Storage) GetEvent(ctx context.Context, id uuid.UUID) (*agenda.Event, error) {
	var ev agenda.Event

	err := s.pool.QueryRow(ctx,
		`SELECT id, household_id, title, start_at, end_at, all_day, rule, repeat_until, deleted, created_at, updated_at
			FROM events WHERE id = $1`,
		id).Scan(
		&ev.ID, &ev.HouseholdID, &ev.Title, &ev.StartAt, &ev.EndAt,
		&ev.AllDay, &ev.Rule, &ev.RepeatUntil, &ev.Deleted,
		&ev.CreatedAt, &ev.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, agenda.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &ev, nil
}

// PutEvent implements agenda.Store
func (s *Storage) PutEvent(ctx context.Context, ev *agenda.Event) error {
	if ev == nil || ev.ID == uuid.Nil {
		return fmt.Errorf("invalid event")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO events (id, household_id, title, start_at, end_at, all_day, rule, repeat_until, deleted, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), NOW())
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				start_at = EXCLUDED.start_at,
				end_at = EXCLUDED.end_at,
				all_day = EXCLUDED.all_day,
				rule = EXCLUDED.rule,
				repeat_until = EXCLUDED.repeat_until,
				deleted = EXCLUDED.deleted,
				updated_at = NOW()`,
		ev.ID, ev.HouseholdID, ev.Title, ev.StartAt, ev.EndAt,
		ev.AllDay, ev.Rule, ev.RepeatUntil, ev.Deleted, nullableTime(ev.CreatedAt),
	)

	if err != nil {
		return fmt.Errorf("failed to put event: %w", err)
	}

	return nil
}

// AddException implements agenda.Store
func (s *Storage) AddException(ctx context.Context, exc agenda.EventException) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO event_exceptions (event_id, instance_date)
			VALUES ($1, $2)
			ON CONFLICT (event_id, instance_date) DO NOTHING`,
		exc.EventID, exc.Date.UTC())

	if err != nil {
		return fmt.Errorf("failed to add exception: %w", err)
	}

	return nil
}

// DeleteEvent implements agenda.Store
func (s *Storage) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		//nolint:errcheck // Rollback error is safe to ignore if transaction was committed
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM event_exceptions WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete exceptions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return tx.Commit(ctx)
}

// GetSubscription implements agenda.Store
func (s *Storage) GetSubscription(ctx context.Context, channelID, resourceID string) (*agenda.Subscription, error) {
	var sub agenda.Subscription

	err := s.pool.QueryRow(ctx,
		`SELECT channel_id, resource_id, provider, account_id, expires_at
			FROM push_subscriptions
			WHERE channel_id = $1 AND resource_id = $2`,
		channelID, resourceID).Scan(
		&sub.ChannelID, &sub.ResourceID, &sub.Provider, &sub.AccountID, &sub.ExpiresAt,
	)

	if err == pgx.ErrNoRows {
		return nil, agenda.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &sub, nil
}

// PutSubscription implements agenda.Store
func (s *Storage) PutSubscription(ctx context.Context, sub *agenda.Subscription) error {
	if sub == nil || sub.ChannelID == "" || sub.ResourceID == "" {
		return fmt.Errorf("invalid subscription")
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO push_subscriptions (channel_id, resource_id, provider, account_id, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (channel_id, resource_id) DO UPDATE SET
				provider = EXCLUDED.provider,
				account_id = EXCLUDED.account_id,
				expires_at = EXCLUDED.expires_at`,
		sub.ChannelID, sub.ResourceID, sub.Provider, sub.AccountID, sub.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("failed to put subscription: %w", err)
	}

	return nil
}

// ListSubscriptions implements agenda.Store
func (s *Storage) ListSubscriptions(ctx context.Context) ([]agenda.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT channel_id, resource_id, provider, account_id, expires_at
			FROM push_subscriptions
			ORDER BY channel_id, resource_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []agenda.Subscription
	for rows.Next() {
		var sub agenda.Subscription
		if err := rows.Scan(&sub.ChannelID, &sub.ResourceID, &sub.Provider, &sub.AccountID, &sub.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ListSubscriptionsExpiring implements agenda.Store
func (s *Storage) ListSubscriptionsExpiring(ctx context.Context, from, to time.Time) ([]agenda.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT channel_id, resource_id, provider, account_id, expires_at
			FROM push_subscriptions
			WHERE expires_at >= $1 AND expires_at <= $2
			ORDER BY expires_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	defer rows.Close()

	var out []agenda.Subscription
	for rows.Next() {
		var sub agenda.Subscription
		if err := rows.Scan(&sub.ChannelID, &sub.ResourceID, &sub.Provider, &sub.AccountID, &sub.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ListActiveFinanceItems implements agenda.Store
func (s *Storage) ListActiveFinanceItems(ctx context.Context) ([]agenda.FinanceItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, household_id, provider, access_ref, cursor, active
			FROM finance_items WHERE active = TRUE
			ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list finance items: %w", err)
	}
	defer rows.Close()

	var out []agenda.FinanceItem
	for rows.Next() {
		var it agenda.FinanceItem
		if err := rows.Scan(&it.ID, &it.HouseholdID, &it.Provider, &it.AccessRef, &it.Cursor, &it.Active); err != nil {
			return nil, fmt.Errorf("failed to scan finance item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetFinanceItem implements agenda.Store
func (s *Storage) GetFinanceItem(ctx context.Context, id uuid.UUID) (*agenda.FinanceItem, error) {
	var it agenda.FinanceItem

	err := s.pool.QueryRow(ctx,
		`SELECT id, household_id, provider, access_ref, cursor, active
			FROM finance_items WHERE id = $1`,
		id).Scan(&it.ID, &it.HouseholdID, &it.Provider, &it.AccessRef, &it.Cursor, &it.Active)

	if err == pgx.ErrNoRows {
		return nil, agenda.ErrFinanceItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get finance item: %w", err)
	}

	return &it, nil
}

// SaveFinanceCursor implements agenda.Store
func (s *Storage) SaveFinanceCursor(ctx context.Context, itemID uuid.UUID, cursor string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE finance_items SET cursor = $1 WHERE id = $2`,
		cursor, itemID)
	if err != nil {
		return fmt.Errorf("failed to save cursor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return agenda.ErrFinanceItemNotFound
	}
	return nil
}

// DeactivateFinanceItem implements agenda.Store
func (s *Storage) DeactivateFinanceItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE finance_items SET active = FALSE WHERE id = $1`,
		itemID)
	if err != nil {
		return fmt.Errorf("failed to deactivate finance item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return agenda.ErrFinanceItemNotFound
	}
	return nil
}

// nullableTime maps the zero time to NULL so column defaults apply
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
