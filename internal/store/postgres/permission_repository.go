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

	"github.com/venuecore/venuecore/internal/rbac"
)

// PermissionRepository implements rbac.PermissionRepository
type PermissionRepository struct {
	db *DB
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Upsert inserts a permission or updates the displayable fields of the
// existing row with the same name. The (module, action, scope) triple
// of a stored row is never rewritten; the name keys the row, so
// concurrent seeders converge on one row per name.
func (r *PermissionRepository) Upsert(ctx context.Context, p *rbac.Permission) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO permissions (id, name, display_name, module, action, scope, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`,
		p.ID, p.Name, p.DisplayName, p.Module, string(p.Action), string(p.Scope), p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert permission: %w", err)
	}
	return nil
}

// GetByName retrieves a permission by its canonical name
func (r *PermissionRepository) GetByName(ctx context.Context, name string) (*rbac.Permission, error) {
	var p rbac.Permission
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name, display_name, module, action, scope, is_active, created_at, updated_at
		FROM permissions
		WHERE name = $1
	`, name).Scan(
		&p.ID, &p.Name, &p.DisplayName, &p.Module, &p.Action, &p.Scope,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rbac.ErrPermissionNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &p, nil
}

// List retrieves the full catalog
func (r *PermissionRepository) List(ctx context.Context) ([]*rbac.Permission, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, display_name, module, action, scope, is_active, created_at, updated_at
		FROM permissions
		ORDER BY module, action, scope
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var perms []*rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(
			&p.ID, &p.Name, &p.DisplayName, &p.Module, &p.Action, &p.Scope,
			&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, &p)
	}
	return perms, rows.Err()
}
