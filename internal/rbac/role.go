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

package rbac

import (
	"context"
	"time"
)

// RoleType is the denormalized classification carried on a user's role
// binding. Owner is special-cased by the decision procedure.
type RoleType string

const (
	RoleTypeOwner   RoleType = "owner"
	RoleTypeManager RoleType = "manager"
	RoleTypeStaff   RoleType = "staff"
	RoleTypeViewer  RoleType = "viewer"
	RoleTypeCustom  RoleType = "custom"
)

// Role is a tenant-scoped bundle of permission names. System roles are
// created at provisioning and are immutable: neither their identity nor
// their permission set can change, and they cannot be deleted.
type Role struct {
	ID           string
	TenantID     string
	Name         string
	Description  string
	RoleType     RoleType
	IsSystemRole bool
	IsActive     bool
	// Level orders roles for presentation (0-100, highest privilege
	// first). It plays no part in permission derivation.
	Level       int
	Permissions []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasPermission reports exact membership of a permission name in the
// role's set. No scope implication: events.read.all does not grant
// events.read.own.
func (r *Role) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// RoleRepository defines the interface for role persistence.
type RoleRepository interface {
	// Create creates a new role.
	Create(ctx context.Context, role *Role) error

	// GetByID retrieves a role by ID.
	GetByID(ctx context.Context, id string) (*Role, error)

	// GetByName retrieves a role by name within a tenant.
	GetByName(ctx context.Context, tenantID, name string) (*Role, error)

	// Update replaces role fields.
	Update(ctx context.Context, role *Role) error

	// Delete removes a role.
	Delete(ctx context.Context, id string) error

	// ListByTenant retrieves a tenant's roles ordered by level descending.
	ListByTenant(ctx context.Context, tenantID string) ([]*Role, error)

	// Upsert creates-or-updates a role keyed by (tenant_id, name).
	// Provisioning relies on this for idempotent, concurrency-safe
	// default role creation.
	Upsert(ctx context.Context, role *Role) error
}

// RoleUserCounter reports how many users currently reference a role.
// Implemented by the user store; the registry needs only the count.
type RoleUserCounter interface {
	CountByRole(ctx context.Context, roleID string) (int, error)
}
