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
	"strings"
	"time"
)

// Action is the operation a permission authorizes.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
	ActionExport Action = "export"
)

// Scope qualifies which resources an action applies to.
// "own" and "all" are distinct permission identities, never implied
// by one another; holding events.read.all says nothing about
// events.read.own.
type Scope string

const (
	ScopeOwn  Scope = "own"
	ScopeTeam Scope = "team"
	ScopeAll  Scope = "all"
)

// Permission is a catalog entry. Its name is the canonical identity:
// once seeded, a name is never rebound to a different
// (module, action, scope) triple. Entries are deactivated, not deleted.
type Permission struct {
	ID          string
	Name        string
	DisplayName string
	Module      string
	Action      Action
	Scope       Scope
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PermissionDef is a static catalog definition, loaded at process start.
type PermissionDef struct {
	Name        string
	DisplayName string
	Module      string
	Action      Action
	Scope       Scope
}

// PermissionName builds the canonical dotted name for a triple.
// The "all" scope is the default and is still spelled out, so that
// names stay unambiguous: events.read.all vs events.read.own.
func PermissionName(module string, action Action, scope Scope) string {
	return strings.Join([]string{module, string(action), string(scope)}, ".")
}

// PermissionRepository defines the interface for catalog persistence.
type PermissionRepository interface {
	// Upsert inserts the permission or, when the name already exists,
	// updates displayable fields only. Keyed by name; safe to call
	// concurrently.
	Upsert(ctx context.Context, p *Permission) error

	// GetByName retrieves a permission by its canonical name.
	GetByName(ctx context.Context, name string) (*Permission, error)

	// List retrieves the full catalog.
	List(ctx context.Context) ([]*Permission, error)
}
