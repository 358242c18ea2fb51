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
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/venuecore/venuecore/internal/rbac"
)

// RoleResponse is the wire shape of a role.
type RoleResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	RoleType     string    `json:"role_type"`
	IsSystemRole bool      `json:"is_system_role"`
	IsActive     bool      `json:"is_active"`
	Level        int       `json:"level"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRoleResponse(role *rbac.Role) RoleResponse {
	return RoleResponse{
		ID:           role.ID,
		Name:         role.Name,
		Description:  role.Description,
		RoleType:     string(role.RoleType),
		IsSystemRole: role.IsSystemRole,
		IsActive:     role.IsActive,
		Level:        role.Level,
		Permissions:  role.Permissions,
		CreatedAt:    role.CreatedAt,
		UpdatedAt:    role.UpdatedAt,
	}
}

// tenantRole loads a role and hides it behind 404 when it belongs to a
// different tenant. IDs are global; visibility is not.
func (h *Handler) tenantRole(w http.ResponseWriter, r *http.Request) (*rbac.Role, bool) {
	p, _ := GetPrincipal(r.Context())

	role, err := h.roleRegistry.GetRole(r.Context(), chi.URLParam(r, "roleID"))
	if err != nil || role.TenantID != p.TenantID {
		respondError(w, http.StatusNotFound, "role not found")
		return nil, false
	}
	return role, true
}

// ListRoles lists the venue's roles, highest level first.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	roles, err := h.roleRegistry.ListRoles(r.Context(), p.TenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}

	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toRoleResponse(role))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetRole retrieves one role.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, ok := h.tenantRole(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(role))
}

// CreateRoleRequest represents custom role creation data
type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Level       int      `json:"level" validate:"gte=0,lte=100"`
}

// CreateRole creates a custom role in the caller's venue.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	var req CreateRoleRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	role, err := h.roleRegistry.CreateRole(r.Context(), p.TenantID, req.Name, req.Description, req.Permissions, req.Level)
	if err != nil {
		h.respondRoleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toRoleResponse(role))
}

// UpdateRoleRequest carries a partial role update. Absent fields are
// left untouched; a present permissions list replaces the set wholesale.
type UpdateRoleRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Permissions *[]string `json:"permissions"`
	Level       *int      `json:"level"`
	IsActive    *bool     `json:"is_active"`
}

// UpdateRole patches a custom role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	role, ok := h.tenantRole(w, r)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Level != nil && (*req.Level < 0 || *req.Level > 100) {
		respondError(w, http.StatusBadRequest, "role level must be between 0 and 100")
		return
	}

	updated, err := h.roleRegistry.UpdateRole(r.Context(), role.ID, rbac.RolePatch{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		Level:       req.Level,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.respondRoleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

// DeleteRole deletes a custom role no user references.
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	role, ok := h.tenantRole(w, r)
	if !ok {
		return
	}

	if err := h.roleRegistry.DeleteRole(r.Context(), role.ID); err != nil {
		h.respondRoleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "role deleted",
	})
}

func (h *Handler) respondRoleError(w http.ResponseWriter, err error) {
	var inUse *rbac.RoleInUseError
	switch {
	case errors.Is(err, rbac.ErrRoleNotFound):
		respondError(w, http.StatusNotFound, "role not found")
	case errors.Is(err, rbac.ErrDuplicateRoleName):
		respondError(w, http.StatusConflict, "a role with this name already exists")
	case errors.Is(err, rbac.ErrSystemRoleImmutable):
		respondError(w, http.StatusForbidden, "system roles cannot be modified or deleted")
	case errors.Is(err, rbac.ErrInvalidPermission):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &inUse):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":          "role is still assigned to users",
			"assigned_users": inUse.Count,
		})
	default:
		respondError(w, http.StatusInternalServerError, "role operation failed")
	}
}
