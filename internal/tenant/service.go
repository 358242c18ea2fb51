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

package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuecore/venuecore/internal/audit"
	"github.com/venuecore/venuecore/internal/id"
	"github.com/venuecore/venuecore/internal/identity"
	"github.com/venuecore/venuecore/internal/observability/logger"
	"github.com/venuecore/venuecore/internal/rbac"
)

// IdentityService is the slice of the identity service provisioning
// needs: creating the venue owner and binding them to the owner role.
type IdentityService interface {
	ProvisionIdentity(ctx context.Context, tenantID, email string, profile identity.Profile) (*identity.User, error)
	AddPassword(ctx context.Context, userID, password string) error
	SetRole(ctx context.Context, actorID, userID, roleID string) error
}

// Service provides tenant lifecycle and provisioning
type Service struct {
	repo        Repository
	roles       rbac.RoleRepository
	catalog     *rbac.Catalog
	users       IdentityService
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, roles rbac.RoleRepository, catalog *rbac.Catalog, users IdentityService, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		roles:       roles,
		catalog:     catalog,
		users:       users,
		auditLogger: auditLogger,
	}
}

// CreateTenant creates a venue and provisions it: the permission
// catalog is seeded, the default roles are stamped in, and the creator
// is bound as owner. Either the tenant comes out fully provisioned or
// it does not exist; a partial failure rolls the tenant row back.
func (s *Service) CreateTenant(ctx context.Context, name, ownerEmail, ownerPassword string, ownerProfile identity.Profile) (*Tenant, *identity.User, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("tenant name is required")
	}
	if ownerEmail == "" {
		return nil, nil, fmt.Errorf("owner email is required")
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, nil, ErrTenantAlreadyExists
	}

	now := time.Now()
	tenant := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	owner, err := s.provisionWithOwner(ctx, tenant.ID, ownerEmail, ownerPassword, ownerProfile)
	if err != nil {
		s.rollback(ctx, tenant.ID)
		return nil, nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantProvisioned,
		TenantID: tenant.ID,
		ActorID:  owner.ID,
		Resource: tenant.Name,
	})

	return tenant, owner, nil
}

func (s *Service) provisionWithOwner(ctx context.Context, tenantID, ownerEmail, ownerPassword string, ownerProfile identity.Profile) (*identity.User, error) {
	ownerRoleID, err := s.Provision(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.ProvisionIdentity(ctx, tenantID, ownerEmail, ownerProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to provision owner identity: %w", err)
	}
	if ownerPassword != "" {
		if err := s.users.AddPassword(ctx, owner.ID, ownerPassword); err != nil {
			return nil, fmt.Errorf("failed to set owner password: %w", err)
		}
	}
	if err := s.users.SetRole(ctx, owner.ID, owner.ID, ownerRoleID); err != nil {
		return nil, fmt.Errorf("failed to bind owner role: %w", err)
	}

	return owner, nil
}

// Provision seeds the permission catalog and upserts the default role
// set for a tenant, returning the owner role ID. Safe to run again on
// an existing tenant: roles are keyed by (tenant, name), and because
// the owner template expands the ALL sentinel against the current
// catalog snapshot, re-provisioning folds permissions added since the
// last run into the owner role.
func (s *Service) Provision(ctx context.Context, tenantID string) (string, error) {
	if _, err := s.catalog.Seed(ctx, rbac.DefaultPermissionDefs()); err != nil {
		return "", fmt.Errorf("failed to seed permission catalog: %w", err)
	}
	snapshot := s.catalog.Snapshot()

	var ownerRoleID string
	for _, tpl := range rbac.DefaultRoleTemplates() {
		role := &rbac.Role{
			ID:           id.NewUUIDv7(),
			TenantID:     tenantID,
			Name:         tpl.Name,
			Description:  tpl.Description,
			RoleType:     tpl.RoleType,
			IsSystemRole: true,
			IsActive:     true,
			Level:        tpl.Level,
			Permissions:  tpl.ResolvePermissions(snapshot),
		}
		// Upsert rewrites role.ID to the stored row's ID when the role
		// already exists.
		if err := s.roles.Upsert(ctx, role); err != nil {
			return "", fmt.Errorf("failed to provision role %s: %w", tpl.Name, err)
		}
		if tpl.InitialOwner {
			ownerRoleID = role.ID
		}
	}
	if ownerRoleID == "" {
		return "", fmt.Errorf("no owner template in default role set")
	}

	slog.InfoContext(ctx, "tenant provisioned",
		logger.Component("tenant"),
		logger.TenantID(tenantID),
		slog.Int("permissions", len(snapshot)),
	)

	return ownerRoleID, nil
}

// rollback removes a half-provisioned tenant row.
func (s *Service) rollback(ctx context.Context, tenantID string) {
	if err := s.repo.Delete(ctx, tenantID); err != nil {
		slog.ErrorContext(ctx, "failed to roll back tenant",
			logger.Component("tenant"),
			logger.TenantID(tenantID),
			logger.Error(err),
		)
	}
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetTenantByName retrieves a tenant by name
func (s *Service) GetTenantByName(ctx context.Context, name string) (*Tenant, error) {
	return s.repo.GetByName(ctx, name)
}

// ListTenants lists tenants with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// DeactivateTenant marks a tenant inactive. Data is retained; requests
// authenticated against the tenant are refused at the transport layer.
func (s *Service) DeactivateTenant(ctx context.Context, actorID, tenantID string) error {
	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}
	t.Status = StatusInactive
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("failed to deactivate tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeactivated,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: t.Name,
	})

	return nil
}
