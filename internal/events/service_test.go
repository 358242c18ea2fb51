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

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/venuecore/venuecore/internal/rbac"
)

type memEventRepo struct {
	byID map[string]*Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{byID: make(map[string]*Event)}
}

func (m *memEventRepo) Create(ctx context.Context, e *Event) error {
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, tenantID, id string) (*Event, error) {
	if e, ok := m.byID[id]; ok && e.TenantID == tenantID {
		return e, nil
	}
	return nil, ErrEventNotFound
}

func (m *memEventRepo) Update(ctx context.Context, e *Event) error {
	if _, ok := m.byID[e.ID]; !ok {
		return ErrEventNotFound
	}
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *memEventRepo) Delete(ctx context.Context, tenantID, id string) error {
	if e, ok := m.byID[id]; ok && e.TenantID == tenantID {
		delete(m.byID, id)
		return nil
	}
	return ErrEventNotFound
}

func (m *memEventRepo) ListByTenant(ctx context.Context, tenantID string) ([]*Event, error) {
	var out []*Event
	for _, e := range m.byID {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEventRepo) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*Event, error) {
	var out []*Event
	for _, e := range m.byID {
		if e.TenantID == tenantID && e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memPermRepo struct {
	byName map[string]*rbac.Permission
}

func (m *memPermRepo) Upsert(ctx context.Context, p *rbac.Permission) error {
	if _, ok := m.byName[p.Name]; !ok {
		clone := *p
		m.byName[p.Name] = &clone
	}
	return nil
}

func (m *memPermRepo) GetByName(ctx context.Context, name string) (*rbac.Permission, error) {
	if p, ok := m.byName[name]; ok {
		return p, nil
	}
	return nil, rbac.ErrPermissionNotFound
}

func (m *memPermRepo) List(ctx context.Context) ([]*rbac.Permission, error) {
	out := make([]*rbac.Permission, 0, len(m.byName))
	for _, p := range m.byName {
		out = append(out, p)
	}
	return out, nil
}

type memRoleRepo struct {
	byID map[string]*rbac.Role
}

func (m *memRoleRepo) Create(ctx context.Context, role *rbac.Role) error {
	m.byID[role.ID] = role
	return nil
}

func (m *memRoleRepo) GetByID(ctx context.Context, id string) (*rbac.Role, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return nil, rbac.ErrRoleNotFound
}

func (m *memRoleRepo) GetByName(ctx context.Context, tenantID, name string) (*rbac.Role, error) {
	return nil, rbac.ErrRoleNotFound
}
func (m *memRoleRepo) Update(ctx context.Context, role *rbac.Role) error { return nil }
func (m *memRoleRepo) Delete(ctx context.Context, id string) error       { return nil }
func (m *memRoleRepo) ListByTenant(ctx context.Context, tenantID string) ([]*rbac.Role, error) {
	return nil, nil
}
func (m *memRoleRepo) Upsert(ctx context.Context, role *rbac.Role) error { return nil }

func newTestService(t *testing.T) (*Service, *memEventRepo) {
	t.Helper()
	catalog := rbac.NewCatalog(&memPermRepo{byName: make(map[string]*rbac.Permission)})
	if _, err := catalog.Seed(context.Background(), rbac.DefaultPermissionDefs()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	roles := &memRoleRepo{byID: map[string]*rbac.Role{
		"role-staff": {
			ID:       "role-staff",
			TenantID: "tenant-1",
			Name:     "Staff",
			RoleType: rbac.RoleTypeStaff,
			IsActive: true,
			Permissions: []string{
				"events.create.all",
				"events.read.all",
				"events.update.own",
			},
		},
		"role-manager": {
			ID:       "role-manager",
			TenantID: "tenant-1",
			Name:     "Manager",
			RoleType: rbac.RoleTypeManager,
			IsActive: true,
			Permissions: []string{
				"events.read.all",
				"events.update.all",
				"events.delete.all",
			},
		},
	}}
	repo := newMemEventRepo()
	return NewService(repo, rbac.NewResolver(roles, catalog)), repo
}

func staffPrincipal(userID string) rbac.Principal {
	return rbac.Principal{
		UserID:   userID,
		TenantID: "tenant-1",
		RoleID:   "role-staff",
		RoleType: rbac.RoleTypeStaff,
	}
}

// TestPurpose: Validates own/all scope narrowing on event updates through the service layer.
// Scope: Unit Test
// Security: Resource-level authorization (own-scope confinement)
// Expected: A staff member with events.update.own edits their own event but not a colleague's; a manager with events.update.all edits both.
// Test Case ID: EVT-01
func TestEvents_Service_UpdateScopeEnforcement(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice := staffPrincipal("user-alice")
	bob := staffPrincipal("user-bob")
	manager := rbac.Principal{
		UserID:   "user-mgr",
		TenantID: "tenant-1",
		RoleID:   "role-manager",
		RoleType: rbac.RoleTypeManager,
	}

	event, err := svc.CreateEvent(ctx, alice, "Spring Gala", "", time.Now(), time.Now().Add(4*time.Hour))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	revised := "Spring Gala (rev)"
	if _, err := svc.UpdateEvent(ctx, alice, event.ID, EventPatch{Title: &revised}); err != nil {
		t.Errorf("owner update should succeed, got %v", err)
	}

	hijacked := "Hijacked"
	if _, err := svc.UpdateEvent(ctx, bob, event.ID, EventPatch{Title: &hijacked}); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("non-owner staff update err = %v, want ErrNotAuthorized", err)
	}

	final, confirmed := "Spring Gala (final)", StatusConfirmed
	if _, err := svc.UpdateEvent(ctx, manager, event.ID, EventPatch{Title: &final, Status: &confirmed}); err != nil {
		t.Errorf("all-scope update should succeed, got %v", err)
	}
}

// TestPurpose: Validates patch semantics on event updates: nil fields are untouched, an empty description clears, an empty title is rejected.
// Scope: Unit Test
// Expected: A description-only patch clears the text and keeps the title; a patch with an empty title fails without writing.
// Test Case ID: EVT-04
func TestEvents_Service_PatchFieldSemantics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice := staffPrincipal("user-alice")
	event, err := svc.CreateEvent(ctx, alice, "Gala", "black tie", time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	empty := ""
	updated, err := svc.UpdateEvent(ctx, alice, event.ID, EventPatch{Description: &empty})
	if err != nil {
		t.Fatalf("clearing update failed: %v", err)
	}
	if updated.Description != "" {
		t.Errorf("description = %q, want cleared", updated.Description)
	}
	if updated.Title != "Gala" {
		t.Errorf("title = %q, a nil patch field must not change it", updated.Title)
	}

	if _, err := svc.UpdateEvent(ctx, alice, event.ID, EventPatch{Title: &empty}); err == nil {
		t.Error("an explicit empty title should be rejected")
	}
	got, err := svc.GetEvent(ctx, alice, event.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "Gala" {
		t.Errorf("title = %q, rejected patch must not write", got.Title)
	}
}

// TestPurpose: Validates that event listing narrows to owned events for own-scope readers and denies users with no read permission.
// Scope: Unit Test
// Expected: All-scope staff see every event; an own-scope-only principal sees only their events; a viewer with nothing is denied.
// Test Case ID: EVT-02
func TestEvents_Service_ListNarrowing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alice := staffPrincipal("user-alice")
	bob := staffPrincipal("user-bob")

	if _, err := svc.CreateEvent(ctx, alice, "Gala", "", time.Now(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.CreateEvent(ctx, bob, "Wedding", "", time.Now(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Staff hold events.read.all: the full tenant is visible.
	all, err := svc.ListEvents(ctx, alice)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all-scope list = %d events, want 2", len(all))
	}

	// A principal narrowed to own-scope reads sees only their events.
	ownOnly := rbac.Principal{
		UserID:   "user-alice",
		TenantID: "tenant-1",
		Granted:  []string{"events.read.own"},
	}
	own, err := svc.ListEvents(ctx, ownOnly)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(own) != 1 || own[0].Title != "Gala" {
		t.Errorf("own-scope list = %v, want only Gala", own)
	}

	// No read permission at all: denied.
	if _, err := svc.ListEvents(ctx, rbac.Principal{UserID: "user-x", TenantID: "tenant-1"}); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("list err = %v, want ErrNotAuthorized", err)
	}
}

// TestPurpose: Validates that deletion requires the all-scoped permission even for the event's owner.
// Scope: Unit Test
// Expected: Staff owner cannot delete; manager with events.delete.all can.
// Test Case ID: EVT-03
func TestEvents_Service_DeleteRequiresAllScope(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	alice := staffPrincipal("user-alice")
	event, err := svc.CreateEvent(ctx, alice, "Gala", "", time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteEvent(ctx, alice, event.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("owner delete err = %v, want ErrNotAuthorized", err)
	}

	manager := rbac.Principal{
		UserID:   "user-mgr",
		TenantID: "tenant-1",
		RoleID:   "role-manager",
		RoleType: rbac.RoleTypeManager,
	}
	if err := svc.DeleteEvent(ctx, manager, event.ID); err != nil {
		t.Errorf("manager delete failed: %v", err)
	}
	if _, ok := repo.byID[event.ID]; ok {
		t.Error("event should be gone after delete")
	}
}
