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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/venuecore/venuecore/internal/audit"
	"github.com/venuecore/venuecore/internal/observability/logger"
	"github.com/venuecore/venuecore/internal/tenant"
)

// Tenant Context Principles:
// 1. Tenant context derives EXCLUSIVELY from the verified token subject
// 2. Privileges derive from the permission catalog, never from role names
// 3. No header or query parameter may select a tenant
//
// Anti-Patterns (FORBIDDEN):
// - Magic tenant IDs (e.g., "default", "system", "platform")
// - X-Tenant-ID style headers on authenticated routes
// - Hardcoded role-name checks (use permission checks)

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Log request start
			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware validates the bearer token and attaches the resolved
// principal to the request context. The principal is rebuilt from
// storage on every request; the token carries identity only, never
// permissions, so role and overlay changes apply immediately.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		userID, tenantID, err := h.tokens.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		principal, err := h.identityService.Principal(r.Context(), userID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		// The tenant claim must match the stored binding. Tokens minted
		// before an account change do not carry stale tenant context.
		if principal.TenantID != tenantID {
			slog.WarnContext(r.Context(), "token tenant claim mismatch",
				logger.UserID(userID),
				logger.TenantID(tenantID),
			)
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		// A deactivated venue refuses all authenticated requests. Data
		// is retained but unreachable until reactivation.
		tn, err := h.tenantService.GetTenant(r.Context(), principal.TenantID)
		if err != nil || tn.Status != tenant.StatusActive {
			respondError(w, http.StatusForbidden, "venue is deactivated")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// RequirePermission guards a route with a single all-scope permission
// check. Denials return 403 with a structured reason, are audited, and
// counted. Routes needing own/all narrowing do their checks in the
// service layer instead.
func (h *Handler) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			decision, err := h.resolver.Check(r.Context(), p, permission)
			if err != nil {
				slog.ErrorContext(r.Context(), "authorization check failed",
					logger.Error(err),
					logger.UserID(p.UserID),
					logger.Permission(permission),
				)
				respondError(w, http.StatusInternalServerError, "authorization check failed")
				return
			}

			if h.authzMetrics != nil {
				h.authzMetrics.RecordDecision(r.Context(), permission, decision.Allowed, string(decision.Reason))
			}

			if !decision.Allowed {
				h.auditLogger.Log(r.Context(), audit.Event{
					Type:      audit.TypeAuthzDenied,
					TenantID:  p.TenantID,
					ActorID:   p.UserID,
					Resource:  permission,
					IPAddress: getIPAddress(r),
					Metadata:  map[string]any{"reason": string(decision.Reason)},
				})
				respondJSON(w, http.StatusForbidden, map[string]string{
					"error":  "permission denied",
					"reason": string(decision.Reason),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
