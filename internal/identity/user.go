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

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/venuecore/venuecore/internal/rbac"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet security requirements")
	ErrAccountLocked      = errors.New("account is locked")
	ErrUserInactive       = errors.New("user is deactivated")
	ErrTenantMismatch     = errors.New("role belongs to a different tenant")
)

// User represents a user identity within a tenant. Every user belongs
// to exactly one tenant; there is no cross-tenant identity.
//
// The role binding is stored by reference (RoleID) plus a denormalized
// RoleType so the owner bypass never needs a role fetch. Custom carries
// the per-user grant/revoke overlay on top of the bound role.
type User struct {
	ID                  string
	TenantID            string
	Email               string
	EmailVerified       bool
	Profile             Profile
	RoleID              string
	RoleType            rbac.RoleType
	Custom              CustomPermissions
	IsActive            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           *time.Time
}

// Profile represents user profile information
type Profile struct {
	GivenName  string
	FamilyName string
	FullName   string
	Locale     string
	Timezone   string
}

// CustomPermissions is the per-user overlay: permission names granted
// on top of the role and names revoked from it. A name may sit in both
// sets; revocation wins at resolution time.
type CustomPermissions struct {
	Granted []string
	Revoked []string
}

// Principal converts the user into its authorization view.
func (u *User) Principal() rbac.Principal {
	return rbac.Principal{
		UserID:   u.ID,
		TenantID: u.TenantID,
		RoleID:   u.RoleID,
		RoleType: u.RoleType,
		Granted:  u.Custom.Granted,
		Revoked:  u.Custom.Revoked,
	}
}

// Credentials represents user authentication credentials
type Credentials struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user identity
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email within a tenant
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)

	// Update updates user information
	Update(ctx context.Context, user *User) error

	// UpdateRoleBinding rebinds the user's role reference
	UpdateRoleBinding(ctx context.Context, userID, roleID string, roleType rbac.RoleType) error

	// UpdateCustomPermissions replaces the user's grant/revoke overlay
	UpdateCustomPermissions(ctx context.Context, userID string, custom CustomPermissions) error

	// UpdateLockout updates user lockout status
	UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error

	// Delete soft-deletes a user
	Delete(ctx context.Context, id string) error

	// ListByTenant retrieves a tenant's users
	ListByTenant(ctx context.Context, tenantID string) ([]*User, error)

	// CountByRole reports how many users are bound to a role
	CountByRole(ctx context.Context, roleID string) (int, error)

	// AddCredentials adds credentials for a user
	AddCredentials(ctx context.Context, credentials *Credentials) error

	// GetCredentials retrieves user credentials
	GetCredentials(ctx context.Context, userID string) (*Credentials, error)

	// UpdatePassword updates user password
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
}
