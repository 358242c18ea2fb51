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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates the HTTP error mapping of the role registry: duplicate names, system-role immutability, unknown permission references and in-use deletion.
// Scope: HTTP Integration Test
// Expected: 409 for duplicates and in-use deletes (with the assignment count), 403 for system roles, 400 for unknown permission names.
// Test Case ID: RH-01
func TestRoles_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	tenantID, ownerToken := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")

	// Duplicate name within the tenant (system roles count too).
	w := ts.do(t, "POST", "/api/v1/roles", ownerToken, CreateRoleRequest{Name: "Manager", Level: 10})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown permission reference is rejected before any state change.
	w = ts.do(t, "POST", "/api/v1/roles", ownerToken, CreateRoleRequest{
		Name:        "Security",
		Permissions: []string{"events.read.all", "missiles.launch.all"},
		Level:       30,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// System roles are immutable.
	managerID := ts.roleID(t, tenantID, "Manager")
	name := "Renamed"
	w = ts.do(t, "PUT", "/api/v1/roles/"+managerID, ownerToken, UpdateRoleRequest{Name: &name})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, "DELETE", "/api/v1/roles/"+managerID, ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A custom role bound to users cannot be deleted; the response
	// carries the assignment count.
	w = ts.do(t, "POST", "/api/v1/roles", ownerToken, CreateRoleRequest{
		Name:        "Security",
		Permissions: []string{"events.read.all"},
		Level:       30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	role := decodeBody[RoleResponse](t, w)

	ts.invite(t, ownerToken, tenantID, "guard@harborhall.test", "Security")

	w = ts.do(t, "DELETE", "/api/v1/roles/"+role.ID, ownerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decodeBody[struct {
		AssignedUsers int `json:"assigned_users"`
	}](t, w)
	assert.Equal(t, 1, conflict.AssignedUsers)
}

// TestPurpose: Validates cross-tenant role invisibility over HTTP: role IDs from another venue behave as if they do not exist.
// Scope: HTTP Integration Test
// Security: Multi-tenant isolation (CWE-284)
// Expected: Reading, updating or deleting another tenant's role returns 404, never 403.
// Test Case ID: RH-02
func TestRoles_CrossTenantInvisibility(t *testing.T) {
	ts := newTestServer(t)
	tenantA, _ := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")
	_, ownerB := ts.signup(t, "Cliff House", "owner@cliffhouse.test", "super-secret-2")

	foreignRole := ts.roleID(t, tenantA, "Manager")

	w := ts.do(t, "GET", "/api/v1/roles/"+foreignRole, ownerB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	name := "Taken Over"
	w = ts.do(t, "PUT", "/api/v1/roles/"+foreignRole, ownerB, UpdateRoleRequest{Name: &name})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "DELETE", "/api/v1/roles/"+foreignRole, ownerB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestPurpose: Validates role listing and creation through the full router, including level ordering.
// Scope: HTTP Integration Test
// Expected: A new venue lists its four system roles highest level first; a created custom role appears in subsequent listings.
// Test Case ID: RH-03
func TestRoles_ListAndCreate(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.signup(t, "Harbor Hall", "owner@harborhall.test", "super-secret-1")

	w := ts.do(t, "GET", "/api/v1/roles", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	roles := decodeBody[[]RoleResponse](t, w)
	require.Len(t, roles, 4)
	assert.Equal(t, "Owner", roles[0].Name)
	for i := 1; i < len(roles); i++ {
		assert.Less(t, roles[i].Level, roles[i-1].Level)
	}

	w = ts.do(t, "POST", "/api/v1/roles", ownerToken, CreateRoleRequest{
		Name:        "Security",
		Description: "Door and floor staff",
		Permissions: []string{"events.read.all", "tasks.read.own"},
		Level:       30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[RoleResponse](t, w)
	assert.False(t, created.IsSystemRole)
	assert.Equal(t, "custom", created.RoleType)

	w = ts.do(t, "GET", "/api/v1/roles", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]RoleResponse](t, w), 5)
}
