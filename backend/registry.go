// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/upscale"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// Native > Software (Software is the fallback).
	backendPriority = []string{BackendNative, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get creates the backend registered under name.
func Get(name string) (upscale.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrBackendNotAvailable, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q returned no backend", ErrBackendNotAvailable, name)
	}
	return b, nil
}

// Default returns the best available backend based on priority.
// Priority order: native > software, then the remaining names in sorted
// order. Factories that fail are skipped and their errors collected.
func Default() (upscale.Backend, error) {
	names := Available()
	order := make([]string, 0, len(names))
	for _, name := range backendPriority {
		if slices.Contains(names, name) {
			order = append(order, name)
		}
	}
	for _, name := range names {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	if len(order) == 0 {
		return nil, ErrNoBackends
	}

	var errs []error
	for _, name := range order {
		b, err := Get(name)
		if err == nil {
			return b, nil
		}
		upscale.Logger().Debug("backend: skipping unavailable backend", "name", name, "error", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// MustDefault returns the default backend or panics.
func MustDefault() upscale.Backend {
	b, err := Default()
	if err != nil {
		panic("backend: no backend available: " + err.Error())
	}
	return b
}
