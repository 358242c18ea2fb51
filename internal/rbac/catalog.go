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
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/venuecore/venuecore/internal/id"
	"github.com/venuecore/venuecore/internal/observability/logger"
)

// Catalog maintains the fixed universe of permission identities: the
// persistent catalog rows plus an immutable in-memory index keyed by
// name. The index is rebuilt only on Seed/Reload, never per request,
// so authorization checks resolve names without touching storage.
type Catalog struct {
	repo PermissionRepository

	mu     sync.RWMutex
	byName map[string]*Permission
}

// NewCatalog creates a catalog service. The index is empty until
// Seed or Reload runs.
func NewCatalog(repo PermissionRepository) *Catalog {
	return &Catalog{
		repo:   repo,
		byName: make(map[string]*Permission),
	}
}

// Seed idempotently creates-or-updates one Permission per definition,
// keyed by name. Insert-if-absent, otherwise update displayable fields;
// a name is never rebound to a different triple. Upsert keying makes
// concurrent seeding converge without external locking.
//
// A definition whose name collides with an existing permission of a
// different (module, action, scope) is a configuration error: the whole
// batch is rejected before any write.
func (c *Catalog) Seed(ctx context.Context, defs []PermissionDef) ([]*Permission, error) {
	// Sync the index with storage first: a freshly constructed catalog
	// must detect collisions with rows written by an earlier process,
	// not only identities it indexed itself.
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	if err := c.validateDefs(ctx, defs); err != nil {
		return nil, err
	}

	seeded := make([]*Permission, 0, len(defs))
	for _, def := range defs {
		p := &Permission{
			ID:          id.NewUUIDv7(),
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Module:      def.Module,
			Action:      def.Action,
			Scope:       def.Scope,
			IsActive:    true,
		}
		if err := c.repo.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to seed permission %s: %w", def.Name, err)
		}
		seeded = append(seeded, p)
	}

	if err := c.Reload(ctx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "permission catalog seeded",
		logger.Component("rbac"),
		slog.Int("definitions", len(defs)),
	)

	// Return the stored rows so provisioning sees resolved identities,
	// including rows that predate this call.
	resolved := make([]*Permission, 0, len(seeded))
	for _, p := range seeded {
		stored, ok := c.Lookup(p.Name)
		if !ok {
			return nil, fmt.Errorf("seeded permission %s missing after reload", p.Name)
		}
		resolved = append(resolved, stored)
	}
	return resolved, nil
}

// validateDefs rejects intra-batch duplicates and collisions with
// already-stored identities before any write happens.
func (c *Catalog) validateDefs(ctx context.Context, defs []PermissionDef) error {
	seen := make(map[string]PermissionDef, len(defs))
	for _, def := range defs {
		if def.Name == "" || def.Module == "" || def.Action == "" {
			return fmt.Errorf("%w: incomplete definition %q", ErrInvalidPermission, def.Name)
		}
		if prev, ok := seen[def.Name]; ok {
			if prev.Module != def.Module || prev.Action != def.Action || prev.Scope != def.Scope {
				return fmt.Errorf("%w: %s", ErrPermissionConflict, def.Name)
			}
			continue
		}
		seen[def.Name] = def
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, def := range seen {
		existing, ok := c.byName[name]
		if !ok {
			continue
		}
		if existing.Module != def.Module || existing.Action != def.Action || existing.Scope != def.Scope {
			return fmt.Errorf("%w: %s", ErrPermissionConflict, name)
		}
	}
	return nil
}

// Reload rebuilds the in-memory index from storage. Called after
// seeding; also the hook for an explicit reseed event.
func (c *Catalog) Reload(ctx context.Context) error {
	perms, err := c.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load permission catalog: %w", err)
	}

	index := make(map[string]*Permission, len(perms))
	for _, p := range perms {
		index[p.Name] = p
	}

	c.mu.Lock()
	c.byName = index
	c.mu.Unlock()
	return nil
}

// Lookup resolves a permission name against the in-memory index.
// Inactive entries resolve too; deactivation affects effective sets via
// role contents, not identity resolution.
func (c *Catalog) Lookup(name string) (*Permission, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// Contains reports whether every name resolves in the catalog,
// returning the first unknown name otherwise.
func (c *Catalog) Contains(names []string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, name := range names {
		if _, ok := c.byName[name]; !ok {
			return name, false
		}
	}
	return "", true
}

// Snapshot returns all currently indexed permission names. Used to
// expand the ALL sentinel at provisioning time.
func (c *Catalog) Snapshot() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	return names
}

// List returns all indexed permissions for catalog listings.
func (c *Catalog) List() []*Permission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	perms := make([]*Permission, 0, len(c.byName))
	for _, p := range c.byName {
		perms = append(perms, p)
	}
	return perms
}
