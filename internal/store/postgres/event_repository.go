// Copyright 2026 The VenueCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/venuecore/venuecore/internal/events"
)

// EventRepository implements events.Repository
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, tenant_id, title, description, status, owner_id, starts_at, ends_at, created_at, updated_at`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var e events.Event
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Title, &e.Description, &e.Status, &e.OwnerID,
		&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &e, nil
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, e *events.Event) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO events (id, tenant_id, title, description, status, owner_id, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		e.ID, e.TenantID, e.Title, e.Description, e.Status, e.OwnerID, e.StartsAt, e.EndsAt,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID within a tenant
func (r *EventRepository) GetByID(ctx context.Context, tenantID, id string) (*events.Event, error) {
	return scanEvent(r.db.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

// Update replaces event fields
func (r *EventRepository) Update(ctx context.Context, e *events.Event) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE events SET
			title = $3, description = $4, status = $5, starts_at = $6, ends_at = $7, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, e.TenantID, e.ID, e.Title, e.Description, e.Status, e.StartsAt, e.EndsAt)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.pool.Exec(ctx,
		`DELETE FROM events WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

// ListByTenant retrieves a tenant's events
func (r *EventRepository) ListByTenant(ctx context.Context, tenantID string) ([]*events.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE tenant_id = $1 ORDER BY starts_at`, tenantID)
}

// ListByOwner retrieves events owned by a user within a tenant
func (r *EventRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*events.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE tenant_id = $1 AND owner_id = $2 ORDER BY starts_at`,
		tenantID, ownerID)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*events.Event, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var out []*events.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
