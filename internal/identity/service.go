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
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/venuecore/venuecore/internal/audit"
	"github.com/venuecore/venuecore/internal/id"
	"github.com/venuecore/venuecore/internal/rbac"
)

// PasswordHasher handles password hashing using Argon2id
type PasswordHasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// NewPasswordHasher creates a new password hasher with Argon2id
func NewPasswordHasher(memory, iterations uint32, parallelism uint8, saltLength, keyLength uint32) *PasswordHasher {
	return &PasswordHasher{
		memory:      memory,
		iterations:  iterations,
		parallelism: parallelism,
		saltLength:  saltLength,
		keyLength:   keyLength,
	}
}

// Hash hashes a password using Argon2id
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		h.iterations,
		h.memory,
		h.parallelism,
		h.keyLength,
	)

	// Encode as: $argon2id$v=19$m=memory,t=iterations,p=parallelism$salt$hash
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.iterations,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify verifies a password against a hash
func (h *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	// Format: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	sections := strings.Split(strings.TrimPrefix(encodedHash, "$"), "$")
	if len(sections) != 5 || sections[0] != "argon2id" {
		return false, fmt.Errorf("invalid hash format: got %d sections", len(sections))
	}

	var version int
	if _, err := fmt.Sscanf(sections[1], "v=%d", &version); err != nil {
		return false, fmt.Errorf("invalid version: %w", err)
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(sections[2], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("invalid parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[3])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	actualHash := argon2.IDKey(
		[]byte(password),
		salt,
		iterations,
		memory,
		parallelism,
		uint32(len(expectedHash)),
	)

	return subtle.ConstantTimeCompare(actualHash, expectedHash) == 1, nil
}

// Service provides identity-related business logic: user lifecycle,
// credential handling, role bindings and the per-user permission
// overlay.
type Service struct {
	repo               UserRepository
	roles              rbac.RoleRepository
	catalog            *rbac.Catalog
	hasher             *PasswordHasher
	auditLogger        audit.Logger
	lockoutMaxAttempts int
	lockoutDuration    time.Duration
}

// NewService creates a new identity service
func NewService(
	repo UserRepository,
	roles rbac.RoleRepository,
	catalog *rbac.Catalog,
	hasher *PasswordHasher,
	auditLogger audit.Logger,
	lockoutMaxAttempts int,
	lockoutDuration time.Duration,
) *Service {
	return &Service{
		repo:               repo,
		roles:              roles,
		catalog:            catalog,
		hasher:             hasher,
		auditLogger:        auditLogger,
		lockoutMaxAttempts: lockoutMaxAttempts,
		lockoutDuration:    lockoutDuration,
	}
}

// ProvisionIdentity creates a new user identity without credentials or
// a role binding. The caller binds a role afterwards via SetRole (or
// tenant provisioning does, for the creator).
func (s *Service) ProvisionIdentity(ctx context.Context, tenantID, email string, profile Profile) (*User, error) {
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	existing, err := s.repo.GetByEmail(ctx, tenantID, email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	user := &User{
		ID:            id.NewUUIDv7(),
		TenantID:      tenantID,
		Email:         email,
		EmailVerified: false,
		Profile:       profile,
		IsActive:      true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: tenantID,
		ActorID:  user.ID,
		Resource: email,
	})

	return user, nil
}

// AddPassword adds a password credential to an existing user
func (s *Service) AddPassword(ctx context.Context, userID, password string) error {
	if !isStrongPassword(password) {
		return ErrWeakPassword
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	credentials := &Credentials{
		UserID:       userID,
		PasswordHash: passwordHash,
	}

	if err := s.repo.AddCredentials(ctx, credentials); err != nil {
		return fmt.Errorf("failed to add credentials: %w", err)
	}

	return nil
}

// Authenticate authenticates a user with email and password
func (s *Service) Authenticate(ctx context.Context, tenantID, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, tenantID, email)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantID,
			Resource: email,
			Metadata: map[string]any{"reason": "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive || user.DeletedAt != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantID,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{"reason": "user_inactive"},
		})
		return nil, ErrInvalidCredentials
	}

	if user.LockedUntil != nil && user.LockedUntil.After(time.Now()) {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantID,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{"reason": "locked_out"},
		})
		return nil, ErrAccountLocked
	}

	credentials, err := s.repo.GetCredentials(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, credentials.PasswordHash)
	if err != nil || !valid {
		newAttempts := user.FailedLoginAttempts + 1
		var newLockedUntil *time.Time

		if newAttempts >= s.lockoutMaxAttempts {
			until := time.Now().Add(s.lockoutDuration)
			newLockedUntil = &until
			s.auditLogger.Log(ctx, audit.Event{
				Type:     audit.TypeUserLocked,
				TenantID: tenantID,
				ActorID:  user.ID,
				Resource: "login",
				Metadata: map[string]any{"attempts": newAttempts},
			})
		}

		_ = s.repo.UpdateLockout(ctx, user.ID, newAttempts, newLockedUntil)

		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: tenantID,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{
				"reason":   "invalid_password",
				"attempts": newAttempts,
			},
		})

		return nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		_ = s.repo.UpdateLockout(ctx, user.ID, 0, nil)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		TenantID: tenantID,
		ActorID:  user.ID,
		Resource: "login",
	})

	return user, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetByEmail retrieves a user by email within a tenant
func (s *Service) GetByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, tenantID, email)
}

// ListUsers retrieves a tenant's users
func (s *Service) ListUsers(ctx context.Context, tenantID string) ([]*User, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// Principal loads a user and converts it to its authorization view.
// Inactive and soft-deleted users yield no principal.
func (s *Service) Principal(ctx context.Context, userID string) (rbac.Principal, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return rbac.Principal{}, ErrUserNotFound
	}
	if !user.IsActive || user.DeletedAt != nil {
		return rbac.Principal{}, ErrUserInactive
	}
	return user.Principal(), nil
}

// SetRole rebinds a user to a role in the same tenant. The denormalized
// role type on the binding is taken from the role itself, so an owner
// binding can only come from an owner role.
func (s *Service) SetRole(ctx context.Context, actorID, userID, roleID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role.TenantID != user.TenantID {
		return ErrTenantMismatch
	}

	if err := s.repo.UpdateRoleBinding(ctx, userID, role.ID, role.RoleType); err != nil {
		return fmt.Errorf("failed to update role binding: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserRoleChanged,
		TenantID: user.TenantID,
		ActorID:  actorID,
		Resource: user.Email,
		Metadata: map[string]any{"role_id": role.ID, "role_name": role.Name},
	})

	return nil
}

// GrantPermission adds a permission name to the user's granted overlay.
// The reference must resolve in the catalog. Granting does not clear a
// standing revocation of the same name; the revocation keeps winning
// until it is lifted.
func (s *Service) GrantPermission(ctx context.Context, actorID, userID, permission string) error {
	return s.mutateOverlay(ctx, actorID, userID, permission, audit.TypePermissionGranted,
		func(c *CustomPermissions) {
			c.Granted = appendUnique(c.Granted, permission)
		})
}

// RevokePermission adds a permission name to the user's revoked
// overlay, removing it from the effective set whether it came from the
// role or a direct grant.
func (s *Service) RevokePermission(ctx context.Context, actorID, userID, permission string) error {
	return s.mutateOverlay(ctx, actorID, userID, permission, audit.TypePermissionRevoked,
		func(c *CustomPermissions) {
			c.Revoked = appendUnique(c.Revoked, permission)
		})
}

// ClearPermission removes a permission name from both overlay sets,
// restoring the role's verdict for that name.
func (s *Service) ClearPermission(ctx context.Context, actorID, userID, permission string) error {
	return s.mutateOverlay(ctx, actorID, userID, permission, audit.TypePermissionCleared,
		func(c *CustomPermissions) {
			c.Granted = remove(c.Granted, permission)
			c.Revoked = remove(c.Revoked, permission)
		})
}

func (s *Service) mutateOverlay(ctx context.Context, actorID, userID, permission, auditType string, apply func(*CustomPermissions)) error {
	if unknown, ok := s.catalog.Contains([]string{permission}); !ok {
		return fmt.Errorf("%w: %s", rbac.ErrInvalidPermission, unknown)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	custom := user.Custom
	apply(&custom)

	if err := s.repo.UpdateCustomPermissions(ctx, userID, custom); err != nil {
		return fmt.Errorf("failed to update permission overlay: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     auditType,
		TenantID: user.TenantID,
		ActorID:  actorID,
		Resource: user.Email,
		Metadata: map[string]any{"permission": permission},
	})

	return nil
}

// UpdateProfile updates user profile information
func (s *Service) UpdateProfile(ctx context.Context, userID string, profile Profile) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	user.Profile = profile
	return s.repo.Update(ctx, user)
}

// ChangePassword changes user password
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	credentials, err := s.repo.GetCredentials(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	valid, err := s.hasher.Verify(oldPassword, credentials.PasswordHash)
	if err != nil || !valid {
		return ErrInvalidCredentials
	}

	if !isStrongPassword(newPassword) {
		return ErrWeakPassword
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:    audit.TypePasswordChanged,
		ActorID: userID,
	})

	return nil
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func remove(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// Helper functions
func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return len(email) >= 3 && len(email) < 255 && at > 0 && at < len(email)-1
}

func isStrongPassword(password string) bool {
	return len(password) >= 8
}
