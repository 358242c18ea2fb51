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

// Catalog modules.
const (
	ModuleEvents   = "events"
	ModuleClients  = "clients"
	ModulePartners = "partners"
	ModulePayments = "payments"
	ModuleFinance  = "finance"
	ModuleTasks    = "tasks"
	ModuleUsers    = "users"
	ModuleRoles    = "roles"
	ModuleTenant   = "tenant"
)

func def(module string, action Action, scope Scope, display string) PermissionDef {
	return PermissionDef{
		Name:        PermissionName(module, action, scope),
		DisplayName: display,
		Module:      module,
		Action:      action,
		Scope:       scope,
	}
}

// DefaultPermissionDefs is the static catalog definition list, loaded at
// process start. Not user-editable at runtime.
func DefaultPermissionDefs() []PermissionDef {
	return []PermissionDef{
		// Events
		def(ModuleEvents, ActionCreate, ScopeAll, "Create events"),
		def(ModuleEvents, ActionRead, ScopeAll, "View all events"),
		def(ModuleEvents, ActionRead, ScopeOwn, "View own events"),
		def(ModuleEvents, ActionUpdate, ScopeAll, "Edit all events"),
		def(ModuleEvents, ActionUpdate, ScopeOwn, "Edit own events"),
		def(ModuleEvents, ActionDelete, ScopeAll, "Delete events"),
		def(ModuleEvents, ActionExport, ScopeAll, "Export event schedules"),

		// Clients
		def(ModuleClients, ActionCreate, ScopeAll, "Create clients"),
		def(ModuleClients, ActionRead, ScopeAll, "View all clients"),
		def(ModuleClients, ActionRead, ScopeOwn, "View own clients"),
		def(ModuleClients, ActionUpdate, ScopeAll, "Edit all clients"),
		def(ModuleClients, ActionUpdate, ScopeOwn, "Edit own clients"),
		def(ModuleClients, ActionDelete, ScopeAll, "Delete clients"),

		// Partners
		def(ModulePartners, ActionCreate, ScopeAll, "Create partners"),
		def(ModulePartners, ActionRead, ScopeAll, "View partners"),
		def(ModulePartners, ActionUpdate, ScopeAll, "Edit partners"),
		def(ModulePartners, ActionDelete, ScopeAll, "Delete partners"),

		// Payments
		def(ModulePayments, ActionCreate, ScopeAll, "Record payments"),
		def(ModulePayments, ActionRead, ScopeAll, "View payments"),
		def(ModulePayments, ActionUpdate, ScopeAll, "Edit payments"),
		def(ModulePayments, ActionDelete, ScopeAll, "Void payments"),
		def(ModulePayments, ActionExport, ScopeAll, "Export payment records"),

		// Finance
		def(ModuleFinance, ActionRead, ScopeAll, "View finance reports"),
		def(ModuleFinance, ActionManage, ScopeAll, "Manage finance settings"),
		def(ModuleFinance, ActionExport, ScopeAll, "Export finance reports"),

		// Tasks
		def(ModuleTasks, ActionCreate, ScopeAll, "Create tasks"),
		def(ModuleTasks, ActionRead, ScopeAll, "View all tasks"),
		def(ModuleTasks, ActionRead, ScopeOwn, "View own tasks"),
		def(ModuleTasks, ActionUpdate, ScopeAll, "Edit all tasks"),
		def(ModuleTasks, ActionUpdate, ScopeOwn, "Edit own tasks"),
		def(ModuleTasks, ActionDelete, ScopeAll, "Delete tasks"),

		// Users
		def(ModuleUsers, ActionCreate, ScopeAll, "Invite users"),
		def(ModuleUsers, ActionRead, ScopeAll, "View users"),
		def(ModuleUsers, ActionUpdate, ScopeAll, "Edit users"),
		def(ModuleUsers, ActionDelete, ScopeAll, "Remove users"),
		def(ModuleUsers, ActionManage, ScopeAll, "Manage user permissions"),

		// Roles
		def(ModuleRoles, ActionRead, ScopeAll, "View roles"),
		def(ModuleRoles, ActionManage, ScopeAll, "Manage roles"),

		// Tenant settings
		def(ModuleTenant, ActionRead, ScopeAll, "View venue settings"),
		def(ModuleTenant, ActionManage, ScopeAll, "Manage venue settings"),
	}
}
