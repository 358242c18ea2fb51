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

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrPermissionNotFound = errors.New("permission not found")
	ErrRoleNotFound       = errors.New("role not found")

	// ErrPermissionConflict indicates a catalog definition reuses an
	// existing name for a different (module, action, scope) triple.
	// Seeding rejects the whole batch rather than silently rebinding
	// an identity.
	ErrPermissionConflict = errors.New("permission name bound to a different module/action/scope")

	// ErrDuplicateRoleName indicates a role name collision within a tenant.
	ErrDuplicateRoleName = errors.New("role name already exists in tenant")

	// ErrSystemRoleImmutable indicates an attempted mutation or deletion
	// of a platform-defined role.
	ErrSystemRoleImmutable = errors.New("system role cannot be modified or deleted")

	// ErrInvalidPermission indicates a role or overlay mutation referenced
	// a permission identity absent from the catalog. Rejected before any
	// state change.
	ErrInvalidPermission = errors.New("permission does not exist in catalog")
)

// RoleInUseError blocks role deletion while users still reference the
// role. Count lets callers report how many.
type RoleInUseError struct {
	Count int
}

func (e *RoleInUseError) Error() string {
	return fmt.Sprintf("role is assigned to %d user(s)", e.Count)
}
