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
	"time"
)

// Domain errors
var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotAuthorized = errors.New("not authorized for this event")
)

// Status constants
const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Event is a booked occasion at a venue. OwnerID is the staff member
// responsible for it; own-scoped permissions narrow to events where the
// caller is that owner.
type Event struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	OwnerID     string    `json:"owner_id"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository defines the interface for event persistence
type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, tenantID, id string) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, tenantID, id string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Event, error)
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*Event, error)
}
