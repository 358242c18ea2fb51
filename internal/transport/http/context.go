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

	"github.com/venuecore/venuecore/internal/rbac"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal attaches the authenticated principal to the context.
// Set exclusively by AuthMiddleware; handlers must never synthesize a
// principal from request data.
func WithPrincipal(ctx context.Context, p rbac.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal retrieves the authenticated principal from context.
func GetPrincipal(ctx context.Context) (rbac.Principal, bool) {
	p, ok := ctx.Value(principalKey).(rbac.Principal)
	return p, ok
}
