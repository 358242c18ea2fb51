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
	"errors"
	"fmt"
)

// Principal is the authorization view of an authenticated user, loaded
// once per request. It carries the role binding and the grant/revoke
// overlay; it never carries a resolved permission snapshot, so every
// check resolves fresh and an edit takes effect on the next request.
type Principal struct {
	UserID   string
	TenantID string
	RoleID   string
	RoleType RoleType
	Granted  []string
	Revoked  []string
}

// IsOwner reports whether the principal bypasses permission checks
// entirely.
func (p Principal) IsOwner() bool {
	return p.RoleType == RoleTypeOwner
}

// DenialReason classifies why a check denied. Denials are normal
// negative results of the decision function, not errors.
type DenialReason string

const (
	// DenialUnknownPermission: the checked name does not exist in the
	// catalog. Fail closed.
	DenialUnknownPermission DenialReason = "unknown_permission"

	// DenialMissingPermission: the name exists but is not in the
	// principal's effective set.
	DenialMissingPermission DenialReason = "missing_permission"

	// DenialNotOwner: an own-scoped check failed the caller-supplied
	// ownership predicate.
	DenialNotOwner DenialReason = "not_resource_owner"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

func allow() Decision                   { return Decision{Allowed: true} }
func deny(reason DenialReason) Decision { return Decision{Allowed: false, Reason: reason} }

// OwnershipFn is the caller-supplied ownership predicate: it compares
// the resource's owner against the principal using data the caller
// holds. The resolver never inspects resources itself.
type OwnershipFn func(ctx context.Context) (bool, error)

// Resolver computes effective permission sets and answers authorization
// checks. Resolution is a pure, read-only computation over the loaded
// principal, the role store, and the in-memory catalog index; concurrent
// checks need no locking.
type Resolver struct {
	roles   RoleRepository
	catalog *Catalog
}

// NewResolver creates a resolver.
func NewResolver(roles RoleRepository, catalog *Catalog) *Resolver {
	return &Resolver{roles: roles, catalog: catalog}
}

// EffectivePermissions computes (role ∪ granted) \ revoked, deduplicated
// by permission name. A dangling or inactive role binding degrades to an
// empty role-derived set instead of failing the request.
func (r *Resolver) EffectivePermissions(ctx context.Context, p Principal) (map[string]struct{}, error) {
	effective := make(map[string]struct{})

	if p.RoleID != "" {
		role, err := r.roles.GetByID(ctx, p.RoleID)
		switch {
		case errors.Is(err, ErrRoleNotFound):
			// Dangling reference: role deleted out from under the user.
		case err != nil:
			return nil, fmt.Errorf("failed to load role: %w", err)
		case role.IsActive:
			for _, name := range role.Permissions {
				effective[name] = struct{}{}
			}
		}
	}

	for _, name := range p.Granted {
		effective[name] = struct{}{}
	}

	// Revocation always wins, against role and grant alike.
	for _, name := range p.Revoked {
		delete(effective, name)
	}

	return effective, nil
}

// HasPermission reports whether the principal holds the named
// permission. Owner bypass short-circuits before the catalog lookup:
// owners are never denied, even for names the catalog has never seen.
// For everyone else an unknown name fails closed.
func (r *Resolver) HasPermission(ctx context.Context, p Principal, permission string) (bool, error) {
	d, err := r.Check(ctx, p, permission)
	if err != nil {
		return false, err
	}
	return d.Allowed, nil
}

// Check answers the authorization question with a structured decision.
func (r *Resolver) Check(ctx context.Context, p Principal, permission string) (Decision, error) {
	if p.IsOwner() {
		return allow(), nil
	}

	if _, ok := r.catalog.Lookup(permission); !ok {
		return deny(DenialUnknownPermission), nil
	}

	effective, err := r.EffectivePermissions(ctx, p)
	if err != nil {
		return Decision{}, err
	}

	if _, ok := effective[permission]; ok {
		return allow(), nil
	}
	return deny(DenialMissingPermission), nil
}

// CheckScoped runs the canonical own/all two-step for a module+action:
// the all-scoped permission authorizes outright; otherwise the
// own-scoped permission combined with the caller's ownership predicate
// decides. The predicate is only invoked when needed.
func (r *Resolver) CheckScoped(ctx context.Context, p Principal, module string, action Action, owns OwnershipFn) (Decision, error) {
	d, err := r.Check(ctx, p, PermissionName(module, action, ScopeAll))
	if err != nil {
		return Decision{}, err
	}
	if d.Allowed {
		return d, nil
	}

	d, err = r.Check(ctx, p, PermissionName(module, action, ScopeOwn))
	if err != nil {
		return Decision{}, err
	}
	if !d.Allowed {
		return d, nil
	}

	if owns == nil {
		return deny(DenialNotOwner), nil
	}
	ok, err := owns(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("ownership check failed: %w", err)
	}
	if !ok {
		return deny(DenialNotOwner), nil
	}
	return allow(), nil
}
