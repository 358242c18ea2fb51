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

// RoleRepository implements rbac.RoleRepository
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

const roleColumns = `id, tenant_id, name, description, role_type, is_system_role, is_active, level, permissions, created_at, updated_at`

func scanRole(row pgx.Row) (*rbac.Role, error) {
	var role rbac.Role
	err := row.Scan(
		&role.ID, &role.TenantID, &role.Name, &role.Description, &role.RoleType,
		&role.IsSystemRole, &role.IsActive, &role.Level, &role.Permissions,
		&role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to scan role: %w", err)
	}
	return &role, nil
}

// Create creates a new role
func (r *RoleRepository) Create(ctx context.Context, role *rbac.Role) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO roles (id, tenant_id, name, description, role_type, is_system_role, is_active, level, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`,
		role.ID, role.TenantID, role.Name, role.Description, string(role.RoleType),
		role.IsSystemRole, role.IsActive, role.Level, role.Permissions,
	).Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*rbac.Role, error) {
	return scanRole(r.db.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
}

// GetByName retrieves a role by name within a tenant
func (r *RoleRepository) GetByName(ctx context.Context, tenantID, name string) (*rbac.Role, error) {
	return scanRole(r.db.pool.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 AND name = $2`, tenantID, name))
}

// Update replaces role fields
func (r *RoleRepository) Update(ctx context.Context, role *rbac.Role) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE roles SET
			name = $2,
			description = $3,
			is_active = $4,
			level = $5,
			permissions = $6,
			updated_at = NOW()
		WHERE id = $1
	`,
		role.ID, role.Name, role.Description, role.IsActive, role.Level, role.Permissions,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}
	return nil
}

// Delete removes a role
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}
	return nil
}

// ListByTenant retrieves a tenant's roles ordered by level descending
func (r *RoleRepository) ListByTenant(ctx context.Context, tenantID string) ([]*rbac.Role, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 ORDER BY level DESC, name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*rbac.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Upsert creates-or-updates a role keyed by (tenant_id, name).
// Provisioning relies on this: the role's permission set and metadata
// follow the template, while the stored row keeps its identity. The
// role's ID is rewritten to the stored row's ID.
func (r *RoleRepository) Upsert(ctx context.Context, role *rbac.Role) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO roles (id, tenant_id, name, description, role_type, is_system_role, is_active, level, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, name) DO UPDATE SET
			description = EXCLUDED.description,
			role_type = EXCLUDED.role_type,
			is_system_role = EXCLUDED.is_system_role,
			is_active = EXCLUDED.is_active,
			level = EXCLUDED.level,
			permissions = EXCLUDED.permissions,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`,
		role.ID, role.TenantID, role.Name, role.Description, string(role.RoleType),
		role.IsSystemRole, role.IsActive, role.Level, role.Permissions,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert role: %w", err)
	}
	return nil
}
