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

package rbac

// PermissionsAll is the template sentinel meaning "every permission in
// the catalog". It is resolved to the concrete name list at
// provisioning time; it never appears in a stored role.
const PermissionsAll = "ALL"

// RoleTemplate describes a default role stamped into every new tenant.
type RoleTemplate struct {
	Name         string
	Description  string
	Level        int
	RoleType     RoleType
	Permissions  []string
	InitialOwner bool
}

// DefaultRoleTemplates returns the system role set provisioned for each
// tenant. Owner carries the ALL sentinel so a catalog extended between
// deployments still yields a complete owner role on the next
// provisioning run.
func DefaultRoleTemplates() []RoleTemplate {
	return []RoleTemplate{
		{
			Name:         "Owner",
			Description:  "Full access to everything in the venue",
			Level:        100,
			RoleType:     RoleTypeOwner,
			Permissions:  []string{PermissionsAll},
			InitialOwner: true,
		},
		{
			Name:        "Manager",
			Description: "Runs day-to-day operations",
			Level:       80,
			RoleType:    RoleTypeManager,
			Permissions: []string{
				PermissionName(ModuleEvents, ActionCreate, ScopeAll),
				PermissionName(ModuleEvents, ActionRead, ScopeAll),
				PermissionName(ModuleEvents, ActionUpdate, ScopeAll),
				PermissionName(ModuleEvents, ActionDelete, ScopeAll),
				PermissionName(ModuleEvents, ActionExport, ScopeAll),
				PermissionName(ModuleClients, ActionCreate, ScopeAll),
				PermissionName(ModuleClients, ActionRead, ScopeAll),
				PermissionName(ModuleClients, ActionUpdate, ScopeAll),
				PermissionName(ModuleClients, ActionDelete, ScopeAll),
				PermissionName(ModulePartners, ActionCreate, ScopeAll),
				PermissionName(ModulePartners, ActionRead, ScopeAll),
				PermissionName(ModulePartners, ActionUpdate, ScopeAll),
				PermissionName(ModulePayments, ActionCreate, ScopeAll),
				PermissionName(ModulePayments, ActionRead, ScopeAll),
				PermissionName(ModulePayments, ActionUpdate, ScopeAll),
				PermissionName(ModuleFinance, ActionRead, ScopeAll),
				PermissionName(ModuleTasks, ActionCreate, ScopeAll),
				PermissionName(ModuleTasks, ActionRead, ScopeAll),
				PermissionName(ModuleTasks, ActionUpdate, ScopeAll),
				PermissionName(ModuleTasks, ActionDelete, ScopeAll),
				PermissionName(ModuleUsers, ActionCreate, ScopeAll),
				PermissionName(ModuleUsers, ActionRead, ScopeAll),
				PermissionName(ModuleUsers, ActionUpdate, ScopeAll),
				PermissionName(ModuleRoles, ActionRead, ScopeAll),
				PermissionName(ModuleTenant, ActionRead, ScopeAll),
			},
		},
		{
			Name:        "Staff",
			Description: "Works assigned events and tasks",
			Level:       50,
			RoleType:    RoleTypeStaff,
			Permissions: []string{
				PermissionName(ModuleEvents, ActionRead, ScopeAll),
				PermissionName(ModuleEvents, ActionUpdate, ScopeOwn),
				PermissionName(ModuleClients, ActionRead, ScopeOwn),
				PermissionName(ModuleTasks, ActionCreate, ScopeAll),
				PermissionName(ModuleTasks, ActionRead, ScopeOwn),
				PermissionName(ModuleTasks, ActionUpdate, ScopeOwn),
			},
		},
		{
			Name:        "Viewer",
			Description: "Read-only visibility into the venue",
			Level:       20,
			RoleType:    RoleTypeViewer,
			Permissions: []string{
				PermissionName(ModuleEvents, ActionRead, ScopeAll),
				PermissionName(ModuleClients, ActionRead, ScopeAll),
				PermissionName(ModuleTasks, ActionRead, ScopeAll),
			},
		},
	}
}

// ResolvePermissions expands a template's permission list against a
// catalog snapshot, replacing the ALL sentinel with the full name list.
// Expansion happens once, at provisioning time; the stored role holds
// concrete names only.
func (t RoleTemplate) ResolvePermissions(snapshot []string) []string {
	for _, name := range t.Permissions {
		if name == PermissionsAll {
			out := make([]string, len(snapshot))
			copy(out, snapshot)
			return out
		}
	}
	out := make([]string, len(t.Permissions))
	copy(out, t.Permissions)
	return out
}
