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
	"log/slog"
	"net/http"

	"github.com/venuecore/venuecore/internal/identity"
	"github.com/venuecore/venuecore/internal/observability/logger"
	"github.com/venuecore/venuecore/internal/tenant"
)

// CreateTenantRequest represents venue signup data. The creator becomes
// the venue's owner.
type CreateTenantRequest struct {
	Name          string `json:"name" validate:"required"`
	OwnerEmail    string `json:"owner_email" validate:"required,email"`
	OwnerPassword string `json:"owner_password" validate:"required,min=8"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// CreateTenant provisions a new venue: catalog seeding, default roles
// and the owner account happen in one shot, rolled back together on
// failure.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	profile := identity.Profile{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		FullName:   req.GivenName + " " + req.FamilyName,
	}

	tn, owner, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.OwnerEmail, req.OwnerPassword, profile)
	if err != nil {
		switch {
		case errors.Is(err, tenant.ErrTenantAlreadyExists):
			respondError(w, http.StatusConflict, "a venue with this name already exists")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "password does not meet security requirements")
		default:
			slog.ErrorContext(r.Context(), "failed to provision venue", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to provision venue")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"tenant": tn,
		"owner": map[string]any{
			"user_id": owner.ID,
			"email":   owner.Email,
			"role_id": owner.RoleID,
		},
	})
}

// GetTenant returns the caller's venue.
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	tn, err := h.tenantService.GetTenant(r.Context(), p.TenantID)
	if err != nil {
		respondError(w, http.StatusNotFound, "venue not found")
		return
	}

	respondJSON(w, http.StatusOK, tn)
}

// DeactivateTenant deactivates the caller's venue.
func (h *Handler) DeactivateTenant(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	if err := h.tenantService.DeactivateTenant(r.Context(), p.UserID, p.TenantID); err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "venue not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to deactivate venue")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "venue deactivated",
	})
}
