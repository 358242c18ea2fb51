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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/venuecore/venuecore/internal/identity"
	"github.com/venuecore/venuecore/internal/rbac"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, tenant_id, email, email_verified,
	given_name, family_name, full_name, locale, timezone,
	role_id, role_type, granted_permissions, revoked_permissions,
	is_active, failed_login_attempts, locked_until,
	created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*identity.User, error) {
	var user identity.User
	var roleID sql.NullString
	var lockedUntil, deletedAt sql.NullTime

	err := row.Scan(
		&user.ID, &user.TenantID, &user.Email, &user.EmailVerified,
		&user.Profile.GivenName, &user.Profile.FamilyName, &user.Profile.FullName,
		&user.Profile.Locale, &user.Profile.Timezone,
		&roleID, &user.RoleType, &user.Custom.Granted, &user.Custom.Revoked,
		&user.IsActive, &user.FailedLoginAttempts, &lockedUntil,
		&user.CreatedAt, &user.UpdatedAt, &deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if roleID.Valid {
		user.RoleID = roleID.String
	}
	if lockedUntil.Valid {
		user.LockedUntil = &lockedUntil.Time
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return &user, nil
}

// nullableID maps an empty ID string to SQL NULL for the role_id FK.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// Create creates a new user identity
func (r *UserRepository) Create(ctx context.Context, user *identity.User) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO users (
			id, tenant_id, email, email_verified,
			given_name, family_name, full_name, locale, timezone,
			role_id, role_type, granted_permissions, revoked_permissions,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		user.ID, user.TenantID, user.Email, user.EmailVerified,
		user.Profile.GivenName, user.Profile.FamilyName, user.Profile.FullName,
		user.Profile.Locale, user.Profile.Timezone,
		nullableID(user.RoleID), string(user.RoleType),
		emptyIfNil(user.Custom.Granted), emptyIfNil(user.Custom.Revoked),
		user.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func emptyIfNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id))
}

// GetByEmail retrieves a user by email within a tenant
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND email = $2 AND deleted_at IS NULL`,
		tenantID, email))
}

// Update updates user information
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET
			email = $3,
			email_verified = $4,
			given_name = $5,
			family_name = $6,
			full_name = $7,
			locale = $8,
			timezone = $9,
			is_active = $10,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`,
		user.ID, user.TenantID, user.Email, user.EmailVerified,
		user.Profile.GivenName, user.Profile.FamilyName, user.Profile.FullName,
		user.Profile.Locale, user.Profile.Timezone, user.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateRoleBinding rebinds the user's role reference
func (r *UserRepository) UpdateRoleBinding(ctx context.Context, userID, roleID string, roleType rbac.RoleType) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET role_id = $2, role_type = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, userID, nullableID(roleID), string(roleType))
	if err != nil {
		return fmt.Errorf("failed to update role binding: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateCustomPermissions replaces the user's grant/revoke overlay
func (r *UserRepository) UpdateCustomPermissions(ctx context.Context, userID string, custom identity.CustomPermissions) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET granted_permissions = $2, revoked_permissions = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, userID, emptyIfNil(custom.Granted), emptyIfNil(custom.Revoked))
	if err != nil {
		return fmt.Errorf("failed to update permission overlay: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateLockout updates user lockout status
func (r *UserRepository) UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE users
		SET failed_login_attempts = $1, locked_until = $2, updated_at = NOW()
		WHERE id = $3
	`, failedAttempts, lockedUntil, userID)
	if err != nil {
		return fmt.Errorf("failed to update user lockout status: %w", err)
	}
	return nil
}

// Delete soft-deletes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// ListByTenant retrieves a tenant's users
func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountByRole reports how many users are bound to a role. Soft-deleted
// users do not hold the role open.
func (r *UserRepository) CountByRole(ctx context.Context, roleID string) (int, error) {
	var count int
	err := r.db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE role_id = $1 AND deleted_at IS NULL
	`, roleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count role assignments: %w", err)
	}
	return count, nil
}

// AddCredentials adds credentials for a user
func (r *UserRepository) AddCredentials(ctx context.Context, credentials *identity.Credentials) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`, credentials.UserID, credentials.PasswordHash, now)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}
	credentials.UpdatedAt = now
	return nil
}

// GetCredentials retrieves user credentials
func (r *UserRepository) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	var creds identity.Credentials
	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, password_hash, updated_at
		FROM credentials
		WHERE user_id = $1
	`, userID).Scan(&creds.UserID, &creds.PasswordHash, &creds.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return &creds, nil
}

// UpdatePassword updates user password
func (r *UserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE credentials SET password_hash = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}
