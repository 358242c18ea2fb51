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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuecore/venuecore/internal/audit"
	"github.com/venuecore/venuecore/internal/events"
	"github.com/venuecore/venuecore/internal/identity"
	"github.com/venuecore/venuecore/internal/observability/metrics"
	"github.com/venuecore/venuecore/internal/rbac"
	"github.com/venuecore/venuecore/internal/tenant"
)

// In-memory repositories backing the full router. Tests run single
// request at a time; no locking needed.

type memUserRepo struct {
	byID  map[string]*identity.User
	creds map[string]*identity.Credentials
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:  make(map[string]*identity.User),
		creds: make(map[string]*identity.Credentials),
	}
}

func (m *memUserRepo) Create(ctx context.Context, user *identity.User) error {
	clone := *user
	m.byID[user.ID] = &clone
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*identity.User, error) {
	if u, ok := m.byID[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*identity.User, error) {
	for _, u := range m.byID {
		if u.TenantID == tenantID && u.Email == email && u.DeletedAt == nil {
			clone := *u
			return &clone, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (m *memUserRepo) Update(ctx context.Context, user *identity.User) error {
	clone := *user
	m.byID[user.ID] = &clone
	return nil
}

func (m *memUserRepo) UpdateRoleBinding(ctx context.Context, userID, roleID string, roleType rbac.RoleType) error {
	u, ok := m.byID[userID]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.RoleID = roleID
	u.RoleType = roleType
	return nil
}

func (m *memUserRepo) UpdateCustomPermissions(ctx context.Context, userID string, custom identity.CustomPermissions) error {
	u, ok := m.byID[userID]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.Custom = custom
	return nil
}

func (m *memUserRepo) UpdateLockout(ctx context.Context, userID string, failedAttempts int, lockedUntil *time.Time) error {
	u, ok := m.byID[userID]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.FailedLoginAttempts = failedAttempts
	u.LockedUntil = lockedUntil
	return nil
}

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	u, ok := m.byID[id]
	if !ok {
		return identity.ErrUserNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (m *memUserRepo) ListByTenant(ctx context.Context, tenantID string) ([]*identity.User, error) {
	var out []*identity.User
	for _, u := range m.byID {
		if u.TenantID == tenantID && u.DeletedAt == nil {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memUserRepo) CountByRole(ctx context.Context, roleID string) (int, error) {
	count := 0
	for _, u := range m.byID {
		if u.RoleID == roleID && u.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *memUserRepo) AddCredentials(ctx context.Context, credentials *identity.Credentials) error {
	clone := *credentials
	m.creds[credentials.UserID] = &clone
	return nil
}

func (m *memUserRepo) GetCredentials(ctx context.Context, userID string) (*identity.Credentials, error) {
	if c, ok := m.creds[userID]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	c, ok := m.creds[userID]
	if !ok {
		return identity.ErrUserNotFound
	}
	c.PasswordHash = passwordHash
	return nil
}

type memRoleRepo struct {
	byID map[string]*rbac.Role
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{byID: make(map[string]*rbac.Role)}
}

func (m *memRoleRepo) Create(ctx context.Context, role *rbac.Role) error {
	clone := *role
	m.byID[role.ID] = &clone
	return nil
}

func (m *memRoleRepo) GetByID(ctx context.Context, id string) (*rbac.Role, error) {
	if r, ok := m.byID[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, rbac.ErrRoleNotFound
}

func (m *memRoleRepo) GetByName(ctx context.Context, tenantID, name string) (*rbac.Role, error) {
	for _, r := range m.byID {
		if r.TenantID == tenantID && r.Name == name {
			clone := *r
			return &clone, nil
		}
	}
	return nil, rbac.ErrRoleNotFound
}

func (m *memRoleRepo) Update(ctx context.Context, role *rbac.Role) error {
	if _, ok := m.byID[role.ID]; !ok {
		return rbac.ErrRoleNotFound
	}
	clone := *role
	m.byID[role.ID] = &clone
	return nil
}

func (m *memRoleRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return rbac.ErrRoleNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memRoleRepo) ListByTenant(ctx context.Context, tenantID string) ([]*rbac.Role, error) {
	var out []*rbac.Role
	for _, r := range m.byID {
		if r.TenantID == tenantID {
			clone := *r
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level > out[j].Level })
	return out, nil
}

func (m *memRoleRepo) Upsert(ctx context.Context, role *rbac.Role) error {
	for _, existing := range m.byID {
		if existing.TenantID == role.TenantID && existing.Name == role.Name {
			existing.Description = role.Description
			existing.RoleType = role.RoleType
			existing.IsSystemRole = role.IsSystemRole
			existing.IsActive = role.IsActive
			existing.Level = role.Level
			existing.Permissions = append([]string(nil), role.Permissions...)
			role.ID = existing.ID
			return nil
		}
	}
	clone := *role
	m.byID[role.ID] = &clone
	return nil
}

type memPermRepo struct {
	byName map[string]*rbac.Permission
}

func newMemPermRepo() *memPermRepo {
	return &memPermRepo{byName: make(map[string]*rbac.Permission)}
}

func (m *memPermRepo) Upsert(ctx context.Context, p *rbac.Permission) error {
	if existing, ok := m.byName[p.Name]; ok {
		existing.DisplayName = p.DisplayName
		existing.IsActive = p.IsActive
		p.ID = existing.ID
		return nil
	}
	clone := *p
	m.byName[p.Name] = &clone
	return nil
}

func (m *memPermRepo) GetByName(ctx context.Context, name string) (*rbac.Permission, error) {
	if p, ok := m.byName[name]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, rbac.ErrPermissionNotFound
}

func (m *memPermRepo) List(ctx context.Context) ([]*rbac.Permission, error) {
	out := make([]*rbac.Permission, 0, len(m.byName))
	for _, p := range m.byName {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

type memTenantRepo struct {
	byID map[string]*tenant.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{byID: make(map[string]*tenant.Tenant)}
}

func (m *memTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	clone := *t
	m.byID[t.ID] = &clone
	return nil
}

func (m *memTenantRepo) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	if t, ok := m.byID[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *memTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	for _, t := range m.byID {
		if t.Name == name {
			clone := *t
			return &clone, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *memTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error {
	if _, ok := m.byID[t.ID]; !ok {
		return tenant.ErrTenantNotFound
	}
	clone := *t
	m.byID[t.ID] = &clone
	return nil
}

func (m *memTenantRepo) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memTenantRepo) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	var out []*tenant.Tenant
	for _, t := range m.byID {
		clone := *t
		out = append(out, &clone)
	}
	return out, nil
}

type memEventRepo struct {
	byID map[string]*events.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{byID: make(map[string]*events.Event)}
}

func (m *memEventRepo) Create(ctx context.Context, e *events.Event) error {
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, tenantID, id string) (*events.Event, error) {
	if e, ok := m.byID[id]; ok && e.TenantID == tenantID {
		clone := *e
		return &clone, nil
	}
	return nil, events.ErrEventNotFound
}

func (m *memEventRepo) Update(ctx context.Context, e *events.Event) error {
	if _, ok := m.byID[e.ID]; !ok {
		return events.ErrEventNotFound
	}
	clone := *e
	m.byID[e.ID] = &clone
	return nil
}

func (m *memEventRepo) Delete(ctx context.Context, tenantID, id string) error {
	if e, ok := m.byID[id]; ok && e.TenantID == tenantID {
		delete(m.byID, id)
		return nil
	}
	return events.ErrEventNotFound
}

func (m *memEventRepo) ListByTenant(ctx context.Context, tenantID string) ([]*events.Event, error) {
	var out []*events.Event
	for _, e := range m.byID {
		if e.TenantID == tenantID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memEventRepo) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*events.Event, error) {
	var out []*events.Event
	for _, e := range m.byID {
		if e.TenantID == tenantID && e.OwnerID == ownerID {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

// testServer wires the full stack over in-memory repositories.
type testServer struct {
	router *chi.Mux
	tokens *TokenIssuer
	roles  *memRoleRepo
	users  *memUserRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	userRepo := newMemUserRepo()
	roleRepo := newMemRoleRepo()
	permRepo := newMemPermRepo()
	tenantRepo := newMemTenantRepo()
	eventRepo := newMemEventRepo()

	catalog := rbac.NewCatalog(permRepo)
	auditLogger := audit.NewSlogLogger()
	// Deliberately weak parameters; these tests hash real passwords.
	hasher := identity.NewPasswordHasher(1024, 1, 1, 16, 16)

	identityService := identity.NewService(userRepo, roleRepo, catalog, hasher, auditLogger, 5, 15*time.Minute)
	tenantService := tenant.NewService(tenantRepo, roleRepo, catalog, identityService, auditLogger)
	registry := rbac.NewRegistry(roleRepo, catalog, userRepo, auditLogger)
	resolver := rbac.NewResolver(roleRepo, catalog)
	eventService := events.NewService(eventRepo, resolver)

	meter, err := metrics.New(context.Background(), metrics.Config{Enabled: false}, "test")
	require.NoError(t, err)
	authzMetrics, err := metrics.NewAuthzMetrics(meter)
	require.NoError(t, err)

	tokens := NewTokenIssuer("test-signing-secret", "venuecore-test", time.Hour)
	h := NewHandler(identityService, tenantService, registry, resolver, catalog, eventService, tokens, auditLogger, authzMetrics)

	return &testServer{
		router: NewRouter(h, NewRateLimiter(1000, 1000)),
		tokens: tokens,
		roles:  roleRepo,
		users:  userRepo,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// signup provisions a venue and returns (tenantID, ownerToken).
func (ts *testServer) signup(t *testing.T, name, email, password string) (string, string) {
	t.Helper()
	w := ts.do(t, "POST", "/api/v1/tenants", "", CreateTenantRequest{
		Name:          name,
		OwnerEmail:    email,
		OwnerPassword: password,
		GivenName:     "Test",
		FamilyName:    "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeBody[struct {
		Tenant tenant.Tenant `json:"tenant"`
	}](t, w)
	return created.Tenant.ID, ts.login(t, created.Tenant.ID, email, password)
}

func (ts *testServer) login(t *testing.T, tenantID, email, password string) string {
	t.Helper()
	w := ts.do(t, "POST", "/api/v1/auth/login", "", LoginRequest{
		TenantID: tenantID,
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeBody[struct {
		Token string `json:"token"`
	}](t, w).Token
}

// roleID resolves a system role's ID by name for a tenant.
func (ts *testServer) roleID(t *testing.T, tenantID, name string) string {
	t.Helper()
	role, err := ts.roles.GetByName(context.Background(), tenantID, name)
	require.NoError(t, err)
	return role.ID
}

// invite provisions a staff member with a role and returns their token.
func (ts *testServer) invite(t *testing.T, ownerToken, tenantID, email, roleName string) string {
	t.Helper()
	w := ts.do(t, "POST", "/api/v1/users", ownerToken, InviteUserRequest{
		Email:    email,
		Password: "staff-password-1",
		RoleID:   ts.roleID(t, tenantID, roleName),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return ts.login(t, tenantID, email, "staff-password-1")
}

// TestPurpose: Validates the end-to-end signup flow: venue provisioning, owner login, and identity readback with resolved permissions.
// Scope: HTTP Integration Test (in-memory stores)
// Expected: Signup returns 201 with the owner bound to the Owner role; /auth/me shows the full catalog as the owner's effective set.
// Test Case ID: API-01
func TestAPI_SignupLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	tenantID, token := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")

	w := ts.do(t, "GET", "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	me := decodeBody[struct {
		TenantID    string   `json:"tenant_id"`
		RoleType    string   `json:"role_type"`
		Permissions []string `json:"permissions"`
	}](t, w)

	assert.Equal(t, tenantID, me.TenantID)
	assert.Equal(t, string(rbac.RoleTypeOwner), me.RoleType)
	assert.Len(t, me.Permissions, len(rbac.DefaultPermissionDefs()))

	// Duplicate venue name is rejected.
	w = ts.do(t, "POST", "/api/v1/tenants", "", CreateTenantRequest{
		Name:          "Harbor Hall",
		OwnerEmail:    "other@harborhall.test",
		OwnerPassword: "super-secret-2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestPurpose: Validates that permission listing is available to any authenticated user and reflects the seeded catalog.
// Scope: HTTP Integration Test
// Expected: A viewer-level user can list the catalog; the count matches the static definitions.
// Test Case ID: API-02
func TestAPI_ListPermissions(t *testing.T) {
	ts := newTestServer(t)
	tenantID, ownerToken := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")
	viewerToken := ts.invite(t, ownerToken, tenantID, "viewer@harborhall.test", "Viewer")

	w := ts.do(t, "GET", "/api/v1/permissions", viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	perms := decodeBody[[]PermissionResponse](t, w)
	assert.Len(t, perms, len(rbac.DefaultPermissionDefs()))
}

// TestPurpose: Validates event CRUD over HTTP with own/all scope narrowing between two staff members.
// Scope: HTTP Integration Test
// Security: Resource-level authorization (own-scope confinement)
// Expected: A staff member edits their own event but gets 403 on a colleague's; the owner sees both in the tenant listing.
// Test Case ID: API-03
func TestAPI_EventScoping(t *testing.T) {
	ts := newTestServer(t)
	tenantID, ownerToken := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")

	managerToken := ts.invite(t, ownerToken, tenantID, "manager@harborhall.test", "Manager")
	staffToken := ts.invite(t, ownerToken, tenantID, "staff@harborhall.test", "Staff")

	start := time.Now().Add(24 * time.Hour)
	w := ts.do(t, "POST", "/api/v1/events", managerToken, CreateEventRequest{
		Title:    "Spring Gala",
		StartsAt: start,
		EndsAt:   start.Add(4 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decodeBody[events.Event](t, w)

	// Staff hold events.update.own only: a colleague's event is off-limits.
	hijacked := "Hijacked"
	w = ts.do(t, "PUT", "/api/v1/events/"+event.ID, staffToken, UpdateEventRequest{Title: &hijacked})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The manager edits any event in the venue.
	confirmed := events.StatusConfirmed
	w = ts.do(t, "PUT", "/api/v1/events/"+event.ID, managerToken, UpdateEventRequest{Status: &confirmed})
	assert.Equal(t, http.StatusOK, w.Code)

	// Owner bypass: no explicit event permission needed.
	w = ts.do(t, "GET", "/api/v1/events", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]events.Event](t, w), 1)
}

// TestPurpose: Validates the per-user overlay over HTTP: grant extends a role, revoke dominates it, clear restores the role default.
// Scope: HTTP Integration Test
// Expected: A viewer granted events.create.all can create events until the grant is cleared; a revoked role permission disappears from the effective set.
// Test Case ID: API-04
func TestAPI_PermissionOverlay(t *testing.T) {
	ts := newTestServer(t)
	tenantID, ownerToken := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")
	viewerToken := ts.invite(t, ownerToken, tenantID, "viewer@harborhall.test", "Viewer")

	viewer, err := ts.users.GetByEmail(context.Background(), tenantID, "viewer@harborhall.test")
	require.NoError(t, err)

	start := time.Now().Add(24 * time.Hour)
	createReq := CreateEventRequest{Title: "Tasting", StartsAt: start, EndsAt: start.Add(time.Hour)}

	// Viewers cannot create events.
	w := ts.do(t, "POST", "/api/v1/events", viewerToken, createReq)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Grant the permission directly to the user.
	w = ts.do(t, "POST", "/api/v1/users/"+viewer.ID+"/permissions/grant", ownerToken,
		OverlayRequest{Permission: "events.create.all"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "POST", "/api/v1/events", viewerToken, createReq)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Granting an unknown name is rejected before any state change.
	w = ts.do(t, "POST", "/api/v1/users/"+viewer.ID+"/permissions/grant", ownerToken,
		OverlayRequest{Permission: "events.launch.all"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Revoke a role-sourced permission: it vanishes from the effective set.
	w = ts.do(t, "POST", "/api/v1/users/"+viewer.ID+"/permissions/revoke", ownerToken,
		OverlayRequest{Permission: "events.read.all"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "GET", "/api/v1/users/"+viewer.ID+"/permissions", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	effective := decodeBody[struct {
		Permissions []string `json:"permissions"`
	}](t, w)
	assert.NotContains(t, effective.Permissions, "events.read.all")
	assert.Contains(t, effective.Permissions, "events.create.all")

	// Clear the grant: creation privileges disappear again.
	w = ts.do(t, "DELETE", "/api/v1/users/"+viewer.ID+"/permissions/events.create.all", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "POST", "/api/v1/events", viewerToken, createReq)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// TestPurpose: Validates that deactivating a venue cuts off all authenticated access while retaining data.
// Scope: HTTP Integration Test
// Expected: After DELETE /tenant, previously valid tokens are refused with 403.
// Test Case ID: API-05
func TestAPI_TenantDeactivation(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")

	w := ts.do(t, "DELETE", "/api/v1/tenant", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/api/v1/auth/me", ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
