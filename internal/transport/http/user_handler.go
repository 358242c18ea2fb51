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

package http

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/venuecore/venuecore/internal/identity"
	"github.com/venuecore/venuecore/internal/rbac"
)

// UserResponse is the wire shape of a user. Credentials and lockout
// state never leave the service.
type UserResponse struct {
	ID       string           `json:"id"`
	Email    string           `json:"email"`
	Profile  identity.Profile `json:"profile"`
	RoleID   string           `json:"role_id,omitempty"`
	RoleType string           `json:"role_type,omitempty"`
	Granted  []string         `json:"granted_permissions"`
	Revoked  []string         `json:"revoked_permissions"`
	IsActive bool             `json:"is_active"`
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Profile:  u.Profile,
		RoleID:   u.RoleID,
		RoleType: string(u.RoleType),
		Granted:  u.Custom.Granted,
		Revoked:  u.Custom.Revoked,
		IsActive: u.IsActive,
	}
}

// tenantUser loads a user and hides it behind 404 when it belongs to a
// different tenant.
func (h *Handler) tenantUser(w http.ResponseWriter, r *http.Request) (*identity.User, bool) {
	p, _ := GetPrincipal(r.Context())

	user, err := h.identityService.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil || user.TenantID != p.TenantID {
		respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}

// ListUsers lists the venue's users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	users, err := h.identityService.ListUsers(r.Context(), p.TenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, out)
}

// InviteUserRequest represents staff invitation data
type InviteUserRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	RoleID     string `json:"role_id"`
}

// InviteUser provisions a staff member in the caller's venue and
// optionally binds a role right away.
func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	var req InviteUserRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	profile := identity.Profile{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		FullName:   req.GivenName + " " + req.FamilyName,
	}

	user, err := h.identityService.ProvisionIdentity(r.Context(), p.TenantID, req.Email, profile)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		default:
			respondError(w, http.StatusInternalServerError, "failed to provision user")
		}
		return
	}

	if req.Password != "" {
		if err := h.identityService.AddPassword(r.Context(), user.ID, req.Password); err != nil {
			respondError(w, http.StatusBadRequest, "failed to set password: "+err.Error())
			return
		}
	}

	if req.RoleID != "" {
		if err := h.identityService.SetRole(r.Context(), p.UserID, user.ID, req.RoleID); err != nil {
			h.respondRoleBindingError(w, err)
			return
		}
		user.RoleID = req.RoleID
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role_id": user.RoleID,
	})
}

// SetUserRoleRequest represents a role binding change
type SetUserRoleRequest struct {
	RoleID string `json:"role_id" validate:"required"`
}

// SetUserRole rebinds a user's role.
func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	user, ok := h.tenantUser(w, r)
	if !ok {
		return
	}

	var req SetUserRoleRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.identityService.SetRole(r.Context(), p.UserID, user.ID, req.RoleID); err != nil {
		h.respondRoleBindingError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"user_id": user.ID,
		"role_id": req.RoleID,
	})
}

// OverlayRequest names a permission for a grant or revoke overlay change
type OverlayRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// GrantUserPermission adds a permission to the user's granted overlay.
func (h *Handler) GrantUserPermission(w http.ResponseWriter, r *http.Request) {
	h.mutateOverlay(w, r, h.identityService.GrantPermission)
}

// RevokeUserPermission adds a permission to the user's revoked overlay.
// Revocations dominate: the name is subtracted from the effective set
// even when the role or a grant supplies it.
func (h *Handler) RevokeUserPermission(w http.ResponseWriter, r *http.Request) {
	h.mutateOverlay(w, r, h.identityService.RevokePermission)
}

func (h *Handler) mutateOverlay(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, actorID, userID, permission string) error) {
	p, _ := GetPrincipal(r.Context())

	user, ok := h.tenantUser(w, r)
	if !ok {
		return
	}

	var req OverlayRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := apply(r.Context(), p.UserID, user.ID, req.Permission); err != nil {
		if errors.Is(err, rbac.ErrInvalidPermission) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update permission overlay")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"user_id":    user.ID,
		"permission": req.Permission,
	})
}

// ClearUserPermission removes a permission from both overlay sets,
// returning the user to their role's default for that name.
func (h *Handler) ClearUserPermission(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	user, ok := h.tenantUser(w, r)
	if !ok {
		return
	}

	permission := chi.URLParam(r, "permission")
	if err := h.identityService.ClearPermission(r.Context(), p.UserID, user.ID, permission); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update permission overlay")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"user_id":    user.ID,
		"permission": permission,
	})
}

// GetUserPermissions returns a user's effective permission set.
func (h *Handler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.tenantUser(w, r)
	if !ok {
		return
	}

	effective, err := h.resolver.EffectivePermissions(r.Context(), user.Principal())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to resolve permissions")
		return
	}

	names := make([]string, 0, len(effective))
	for name := range effective {
		names = append(names, name)
	}
	sort.Strings(names)

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     user.ID,
		"role_id":     user.RoleID,
		"permissions": names,
	})
}

func (h *Handler) respondRoleBindingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrRoleNotFound), errors.Is(err, identity.ErrTenantMismatch):
		respondError(w, http.StatusBadRequest, "role not found in this venue")
	case errors.Is(err, identity.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	default:
		respondError(w, http.StatusInternalServerError, "failed to set role")
	}
}
