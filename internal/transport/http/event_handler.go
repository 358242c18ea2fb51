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

	"github.com/venuecore/venuecore/internal/events"
)

// CreateEventRequest represents event creation data
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

// CreateEvent creates an event owned by the caller.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req CreateEventRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), p, req.Title, req.Description, req.StartsAt, req.EndsAt)
	if err != nil {
		h.respondEventError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// GetEvent retrieves one event the caller may read.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	event, err := h.eventService.GetEvent(r.Context(), p, chi.URLParam(r, "eventID"))
	if err != nil {
		h.respondEventError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// UpdateEventRequest carries a partial event update. Absent fields are
// left untouched; an empty description clears the stored one.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft confirmed cancelled"`
}

// UpdateEvent patches an event the caller may edit.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	var req UpdateEventRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), p, chi.URLParam(r, "eventID"), events.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.respondEventError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent removes an event.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	if err := h.eventService.DeleteEvent(r.Context(), p, chi.URLParam(r, "eventID")); err != nil {
		h.respondEventError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "event deleted",
	})
}

// ListEvents lists the events visible to the caller.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipal(r.Context())

	list, err := h.eventService.ListEvents(r.Context(), p)
	if err != nil {
		h.respondEventError(w, err)
		return
	}
	if list == nil {
		list = []*events.Event{}
	}

	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) respondEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, events.ErrNotAuthorized):
		respondError(w, http.StatusForbidden, "permission denied")
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
