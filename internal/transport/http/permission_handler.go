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
	"net/http"
)

// PermissionResponse is the wire shape of a catalog entry.
type PermissionResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Module      string `json:"module"`
	Action      string `json:"action"`
	Scope       string `json:"scope"`
	IsActive    bool   `json:"is_active"`
}

// ListPermissions returns the permission catalog. The catalog is
// platform-wide and identical for every tenant.
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.catalog.List()

	out := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionResponse{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Module:      p.Module,
			Action:      string(p.Action),
			Scope:       string(p.Scope),
			IsActive:    p.IsActive,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
