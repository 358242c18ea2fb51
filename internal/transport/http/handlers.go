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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/venuecore/venuecore/internal/audit"
	"github.com/venuecore/venuecore/internal/events"
	"github.com/venuecore/venuecore/internal/identity"
	"github.com/venuecore/venuecore/internal/observability/logger"
	"github.com/venuecore/venuecore/internal/observability/metrics"
	"github.com/venuecore/venuecore/internal/rbac"
	"github.com/venuecore/venuecore/internal/tenant"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	tenantService   *tenant.Service
	roleRegistry    *rbac.Registry
	resolver        *rbac.Resolver
	catalog         *rbac.Catalog
	eventService    *events.Service
	tokens          *TokenIssuer
	auditLogger     audit.Logger
	authzMetrics    *metrics.AuthzMetrics
	validate        *validator.Validate
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	tenantService *tenant.Service,
	roleRegistry *rbac.Registry,
	resolver *rbac.Resolver,
	catalog *rbac.Catalog,
	eventService *events.Service,
	tokens *TokenIssuer,
	auditLogger audit.Logger,
	authzMetrics *metrics.AuthzMetrics,
) *Handler {
	return &Handler{
		identityService: identityService,
		tenantService:   tenantService,
		roleRegistry:    roleRegistry,
		resolver:        resolver,
		catalog:         catalog,
		eventService:    eventService,
		tokens:          tokens,
		auditLogger:     auditLogger,
		authzMetrics:    authzMetrics,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: venue signup and login
		r.Post("/tenants", h.CreateTenant)
		r.Post("/auth/login", h.Login)

		// Everything else requires an authenticated principal.
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.GetCurrentUser)
			r.Post("/auth/change-password", h.ChangePassword)
			r.Put("/user/profile", h.UpdateProfile)

			// The catalog is platform reference data, readable by any
			// authenticated user (role editors need it to build roles).
			r.Get("/permissions", h.ListPermissions)

			r.Route("/tenant", func(r chi.Router) {
				r.With(h.RequirePermission(rbac.PermissionName(rbac.ModuleTenant, rbac.ActionRead, rbac.ScopeAll))).
					Get("/", h.GetTenant)
				r.With(h.RequirePermission(rbac.PermissionName(rbac.ModuleTenant, rbac.ActionManage, rbac.ScopeAll))).
					Delete("/", h.DeactivateTenant)
			})

			r.Route("/roles", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(h.RequirePermission(rbac.PermissionName(rbac.ModuleRoles, rbac.ActionRead, rbac.ScopeAll)))
					r.Get("/", h.ListRoles)
					r.Get("/{roleID}", h.GetRole)
				})
				r.Group(func(r chi.Router) {
					r.Use(h.RequirePermission(rbac.PermissionName(rbac.ModuleRoles, rbac.ActionManage, rbac.ScopeAll)))
					r.Post("/", h.CreateRole)
					r.Put("/{roleID}", h.UpdateRole)
					r.Delete("/{roleID}", h.DeleteRole)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(h.RequirePermission(rbac.PermissionName(rbac.ModuleUsers, rbac.ActionRead, rbac.ScopeAll)))
					r.Get("/", h.ListUsers)
					r.Get("/{userID}/permissions", h.GetUserPermissions)
				})
				r.With(h.RequirePermission(rbac.PermissionName(rbac.ModuleUsers, rbac.ActionCreate, rbac.ScopeAll))).
					Post("/", h.InviteUser)
				r.Group(func(r chi.Router) {
					r.Use(h.RequirePermission(rbac.PermissionName(rbac.ModuleUsers, rbac.ActionManage, rbac.ScopeAll)))
					r.Put("/{userID}/role", h.SetUserRole)
					r.Post("/{userID}/permissions/grant", h.GrantUserPermission)
					r.Post("/{userID}/permissions/revoke", h.RevokeUserPermission)
					r.Delete("/{userID}/permissions/{permission}", h.ClearUserPermission)
				})
			})

			// Event routes carry no permission middleware: the event
			// service resolves own/all scoping per resource.
			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.ListEvents)
				r.Post("/", h.CreateEvent)
				r.Get("/{eventID}", h.GetEvent)
				r.Put("/{eventID}", h.UpdateEvent)
				r.Delete("/{eventID}", h.DeleteEvent)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "venuecore",
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	TenantID string `json:"tenant_id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a user and issues an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.TenantID, req.Email, req.Password)
	if err != nil {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeLoginFailed,
			TenantID:  req.TenantID,
			Resource:  req.Email,
			IPAddress: getIPAddress(r),
			UserAgent: r.UserAgent(),
			Metadata:  map[string]any{"reason": "invalid_credentials"},
		})
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeLoginSuccess,
		TenantID:  user.TenantID,
		ActorID:   user.ID,
		Resource:  "token",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user_id": user.ID,
		"email":   user.Email,
		"role_id": user.RoleID,
	})
}

// GetCurrentUser returns the authenticated user with their effective
// permission set, resolved fresh for this request.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.identityService.GetUser(r.Context(), p.UserID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	effective, err := h.resolver.EffectivePermissions(r.Context(), p)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to resolve permissions",
			logger.Error(err), logger.UserID(p.UserID))
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
		"tenant_id":   user.TenantID,
		"email":       user.Email,
		"profile":     user.Profile,
		"role_id":     user.RoleID,
		"role_type":   user.RoleType,
		"permissions": names,
	})
}

// UpdateProfile updates the caller's profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var profile identity.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.identityService.UpdateProfile(r.Context(), p.UserID, profile); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "profile updated successfully",
	})
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ChangePassword changes the caller's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := GetPrincipal(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req ChangePasswordRequest
	if msg, ok := h.decodeValid(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.identityService.ChangePassword(r.Context(), p.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			respondError(w, http.StatusUnauthorized, "invalid old password")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "new password does not meet security requirements")
		default:
			respondError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password changed successfully",
	})
}

// Helper functions

// decodeValid decodes the JSON body into dst and runs struct validation.
// On failure it returns a client-safe message and false.
func (h *Handler) decodeValid(r *http.Request, dst any) (string, bool) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "invalid request body", false
	}
	if err := h.validate.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return "invalid request body", false
		}
		return "validation failed: " + err.Error(), false
	}
	return "", true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
