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
	"fmt"
	"time"

	"github.com/venuecore/venuecore/internal/id"
	"github.com/venuecore/venuecore/internal/rbac"
)

// Service provides event management with own/all scope enforcement.
// All-scoped callers operate on any event in the tenant; own-scoped
// callers only on events they own. The ownership predicate handed to
// the resolver closes over the already-loaded event row.
type Service struct {
	repo     Repository
	resolver *rbac.Resolver
}

// NewService creates a new event service
func NewService(repo Repository, resolver *rbac.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// CreateEvent creates an event owned by the caller.
func (s *Service) CreateEvent(ctx context.Context, p rbac.Principal, title, description string, startsAt, endsAt time.Time) (*Event, error) {
	d, err := s.resolver.Check(ctx, p, rbac.PermissionName(rbac.ModuleEvents, rbac.ActionCreate, rbac.ScopeAll))
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, ErrNotAuthorized
	}

	if title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("event must end after it starts")
	}

	event := &Event{
		ID:          id.NewUUIDv7(),
		TenantID:    p.TenantID,
		Title:       title,
		Description: description,
		Status:      StatusDraft,
		OwnerID:     p.UserID,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// GetEvent retrieves an event the caller may read.
func (s *Service) GetEvent(ctx context.Context, p rbac.Principal, eventID string) (*Event, error) {
	event, err := s.repo.GetByID(ctx, p.TenantID, eventID)
	if err != nil {
		return nil, err
	}

	d, err := s.resolver.CheckScoped(ctx, p, rbac.ModuleEvents, rbac.ActionRead, ownedBy(event, p))
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, ErrNotAuthorized
	}
	return event, nil
}

// EventPatch carries partial updates for UpdateEvent. Nil fields are
// left untouched; a non-nil Description may be empty to clear it.
type EventPatch struct {
	Title       *string
	Description *string
	Status      *string
}

// UpdateEvent patches an event the caller may edit.
func (s *Service) UpdateEvent(ctx context.Context, p rbac.Principal, eventID string, patch EventPatch) (*Event, error) {
	event, err := s.repo.GetByID(ctx, p.TenantID, eventID)
	if err != nil {
		return nil, err
	}

	d, err := s.resolver.CheckScoped(ctx, p, rbac.ModuleEvents, rbac.ActionUpdate, ownedBy(event, p))
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, ErrNotAuthorized
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("event title is required")
		}
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Status != nil {
		event.Status = *patch.Status
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event. Deletion is all-scoped only; there is
// no own-scoped delete in the catalog.
func (s *Service) DeleteEvent(ctx context.Context, p rbac.Principal, eventID string) error {
	d, err := s.resolver.Check(ctx, p, rbac.PermissionName(rbac.ModuleEvents, rbac.ActionDelete, rbac.ScopeAll))
	if err != nil {
		return err
	}
	if !d.Allowed {
		return ErrNotAuthorized
	}
	return s.repo.Delete(ctx, p.TenantID, eventID)
}

// ListEvents returns the events visible to the caller: the whole tenant
// for all-scope readers, the caller's own events for own-scope readers.
func (s *Service) ListEvents(ctx context.Context, p rbac.Principal) ([]*Event, error) {
	d, err := s.resolver.Check(ctx, p, rbac.PermissionName(rbac.ModuleEvents, rbac.ActionRead, rbac.ScopeAll))
	if err != nil {
		return nil, err
	}
	if d.Allowed {
		return s.repo.ListByTenant(ctx, p.TenantID)
	}

	d, err = s.resolver.Check(ctx, p, rbac.PermissionName(rbac.ModuleEvents, rbac.ActionRead, rbac.ScopeOwn))
	if err != nil {
		return nil, err
	}
	if d.Allowed {
		return s.repo.ListByOwner(ctx, p.TenantID, p.UserID)
	}
	return nil, ErrNotAuthorized
}

func ownedBy(event *Event, p rbac.Principal) rbac.OwnershipFn {
	return func(ctx context.Context) (bool, error) {
		return event.OwnerID == p.UserID, nil
	}
}
