package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// PostgresPlanRepository stores event plans in PostgreSQL using JSONB
// documents for the anchor and result.
type PostgresPlanRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPlanRepository creates a repository backed by the given pool.
func NewPostgresPlanRepository(pool *pgxpool.Pool) *PostgresPlanRepository {
	return &PostgresPlanRepository{pool: pool}
}

// EnsureSchema creates the plan table and indexes if missing.
func (r *PostgresPlanRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS event_plans (
	id UUID PRIMARY KEY,
	event_name TEXT NOT NULL,
	anchor JSONB NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	result JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_plans_event_name ON event_plans(event_name);
CREATE INDEX IF NOT EXISTS idx_event_plans_fingerprint ON event_plans(fingerprint);
`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating event_plans schema: %w", err)
	}
	return nil
}

// Save inserts or updates a plan.
func (r *PostgresPlanRepository) Save(ctx context.Context, plan *domain.EventPlan) error {
	anchorJSON, err := json.Marshal(plan.Anchor())
	if err != nil {
		return fmt.Errorf("marshalling anchor: %w", err)
	}

	var resultJSON []byte
	if plan.HasResult() {
		resultJSON, err = json.Marshal(plan.Result())
		if err != nil {
			return fmt.Errorf("marshalling result: %w", err)
		}
	}

	const query = `
INSERT INTO event_plans (id, event_name, anchor, fingerprint, result, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	event_name = EXCLUDED.event_name,
	anchor = EXCLUDED.anchor,
	fingerprint = EXCLUDED.fingerprint,
	result = EXCLUDED.result,
	updated_at = EXCLUDED.updated_at
`
	_, err = r.pool.Exec(ctx, query,
		plan.ID(),
		plan.EventName(),
		anchorJSON,
		plan.Fingerprint(),
		resultJSON,
		plan.CreatedAt().UTC(),
		plan.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving plan %s: %w", plan.ID(), err)
	}
	return nil
}

// FindByID returns a plan by id, or (nil, nil) when absent.
func (r *PostgresPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventPlan, error) {
	const query = `
SELECT id, event_name, anchor, fingerprint, result, created_at, updated_at
FROM event_plans WHERE id = $1
`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// FindByEventName returns the most recent plan for an event name, or
// (nil, nil) when absent.
func (r *PostgresPlanRepository) FindByEventName(ctx context.Context, eventName string) (*domain.EventPlan, error) {
	const query = `
SELECT id, event_name, anchor, fingerprint, result, created_at, updated_at
FROM event_plans WHERE event_name = $1
ORDER BY created_at DESC LIMIT 1
`
	return r.scanOne(r.pool.QueryRow(ctx, query, eventName))
}

// List returns all stored plans, newest first.
func (r *PostgresPlanRepository) List(ctx context.Context) ([]*domain.EventPlan, error) {
	const query = `
SELECT id, event_name, anchor, fingerprint, result, created_at, updated_at
FROM event_plans ORDER BY created_at DESC, id
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.EventPlan
	for rows.Next() {
		plan, err := scanPgPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Delete removes a plan.
func (r *PostgresPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM event_plans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting plan %s: %w", id, err)
	}
	return nil
}

func (r *PostgresPlanRepository) scanOne(row pgx.Row) (*domain.EventPlan, error) {
	plan, err := scanPgPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return plan, err
}

func scanPgPlan(row pgx.Row) (*domain.EventPlan, error) {
	var (
		id          uuid.UUID
		eventName   string
		anchorJSON  []byte
		fingerprint string
		resultJSON  []byte
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &eventName, &anchorJSON, &fingerprint, &resultJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var anchor domain.EventAnchor
	if err := json.Unmarshal(anchorJSON, &anchor); err != nil {
		return nil, fmt.Errorf("unmarshalling anchor for plan %s: %w", id, err)
	}

	var result *domain.ExtendedTaskList
	if len(resultJSON) > 0 {
		result = &domain.ExtendedTaskList{}
		if err := json.Unmarshal(resultJSON, result); err != nil {
			return nil, fmt.Errorf("unmarshalling result for plan %s: %w", id, err)
		}
	}

	return domain.RehydratePlan(id, eventName, anchor, fingerprint, result, createdAt, updatedAt), nil
}
