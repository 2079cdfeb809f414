package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/gala/internal/planning/domain"
)

// SQLitePlanRepository stores event plans in SQLite. The anchor and the
// computed result are stored as JSON documents; the row carries the
// queryable columns.
type SQLitePlanRepository struct {
	db *sql.DB
}

// NewSQLitePlanRepository creates a repository backed by the given handle.
func NewSQLitePlanRepository(db *sql.DB) *SQLitePlanRepository {
	return &SQLitePlanRepository{db: db}
}

// EnsureSchema creates the plan table and indexes if missing.
func (r *SQLitePlanRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS event_plans (
	id TEXT PRIMARY KEY,
	event_name TEXT NOT NULL,
	anchor TEXT NOT NULL,
	fingerprint TEXT NOT NULL DEFAULT '',
	result TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_plans_event_name ON event_plans(event_name);
CREATE INDEX IF NOT EXISTS idx_event_plans_fingerprint ON event_plans(fingerprint);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating event_plans schema: %w", err)
	}
	return nil
}

// Save inserts or updates a plan.
func (r *SQLitePlanRepository) Save(ctx context.Context, plan *domain.EventPlan) error {
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
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	event_name = excluded.event_name,
	anchor = excluded.anchor,
	fingerprint = excluded.fingerprint,
	result = excluded.result,
	updated_at = excluded.updated_at
`
	_, err = r.db.ExecContext(ctx, query,
		plan.ID().String(),
		plan.EventName(),
		string(anchorJSON),
		plan.Fingerprint(),
		nullableString(resultJSON),
		plan.CreatedAt().UTC(),
		plan.UpdatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving plan %s: %w", plan.ID(), err)
	}
	return nil
}

// FindByID returns a plan by id, or (nil, nil) when absent.
func (r *SQLitePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.EventPlan, error) {
	const query = `
SELECT id, event_name, anchor, fingerprint, result, created_at, updated_at
FROM event_plans WHERE id = ?
`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id.String()))
}

// FindByEventName returns the most recent plan for an event name, or
// (nil, nil) when absent.
func (r *SQLitePlanRepository) FindByEventName(ctx context.Context, eventName string) (*domain.EventPlan, error) {
	const query = `
SELECT id, event_name, anchor, fingerprint, result, created_at, updated_at
FROM event_plans WHERE event_name = ?
ORDER BY created_at DESC LIMIT 1
`
	return r.scanOne(r.db.QueryRowContext(ctx, query, eventName))
}

// List returns all stored plans, newest first.
func (r *SQLitePlanRepository) List(ctx context.Context) ([]*domain.EventPlan, error) {
	const query = `
SELECT id, event_name, anchor, fingerprint, result, created_at, updated_at
FROM event_plans ORDER BY created_at DESC, id
`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plans []*domain.EventPlan
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Delete removes a plan.
func (r *SQLitePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM event_plans WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting plan %s: %w", id, err)
	}
	return nil
}

func (r *SQLitePlanRepository) scanOne(row *sql.Row) (*domain.EventPlan, error) {
	plan, err := scanPlan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return plan, err
}

// scanPlan rehydrates a plan from one row; shared by single-row and
// multi-row reads.
func scanPlan(scan func(dest ...any) error) (*domain.EventPlan, error) {
	var (
		idStr       string
		eventName   string
		anchorJSON  string
		fingerprint string
		resultJSON  sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := scan(&idStr, &eventName, &anchorJSON, &fingerprint, &resultJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing plan id %q: %w", idStr, err)
	}

	var anchor domain.EventAnchor
	if err := json.Unmarshal([]byte(anchorJSON), &anchor); err != nil {
		return nil, fmt.Errorf("unmarshalling anchor for plan %s: %w", id, err)
	}

	var result *domain.ExtendedTaskList
	if resultJSON.Valid && resultJSON.String != "" {
		result = &domain.ExtendedTaskList{}
		if err := json.Unmarshal([]byte(resultJSON.String), result); err != nil {
			return nil, fmt.Errorf("unmarshalling result for plan %s: %w", id, err)
		}
	}

	return domain.RehydratePlan(id, eventName, anchor, fingerprint, result, createdAt, updatedAt), nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
