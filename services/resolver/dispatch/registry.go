// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatch

import (
	"sort"
	"sync"
)

// Registry manages callable registration and lookup.
//
// The intended lifecycle is: populate at startup, then share read-only
// across all resolutions. Register and Unregister stay available for
// tests and for processes that assemble the registry dynamically before
// serving, but nothing in the resolver mutates it.
//
// Thread Safety:
//
//	Registry is fully thread-safe. All methods can be called
//	concurrently.
type Registry struct {
	mu sync.RWMutex

	// byName maps function names to callables.
	byName map[string]Callable
}

// NewRegistry creates a new empty callable registry.
//
// Outputs:
//
//	*Registry - Empty registry ready for registration
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Callable),
	}
}

// Register adds a callable to the registry.
//
// Description:
//
//	Registers a callable under its Name(). If a callable with the same
//	name is already registered, it is replaced.
//
// Inputs:
//
//	c - The callable to register. Nil callables are ignored.
//
// Thread Safety: This method is safe for concurrent use.
//
// Example:
//
//	registry := NewRegistry()
//	registry.Register(IdentitySum())
//	registry.Register(Mean())
func (r *Registry) Register(c Callable) {
	if c == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[c.Name()] = c
}

// Get returns a callable by name.
//
// Inputs:
//
//	name - The function name
//
// Outputs:
//
//	Callable - The registered callable, or nil if not found
//	bool - True if the callable was found
//
// Thread Safety: This method is safe for concurrent use.
func (r *Registry) Get(name string) (Callable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byName[name]
	return c, ok
}

// Names returns all registered function names, sorted.
//
// Outputs:
//
//	[]string - All function names
//
// Thread Safety: This method is safe for concurrent use.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered callables.
//
// Thread Safety: This method is safe for concurrent use.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Unregister removes a callable from the registry.
//
// Inputs:
//
//	name - The function name to remove
//
// Outputs:
//
//	bool - True if the callable was found and removed
//
// Thread Safety: This method is safe for concurrent use.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	return true
}
