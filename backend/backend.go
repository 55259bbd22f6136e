// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/upscale"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU reference backend.
	BackendSoftware = "software"
	// BackendNative is the name of the shared-library backend loaded via FFI.
	BackendNative = "native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoBackends is returned by Default when nothing is registered.
	ErrNoBackends = errors.New("backend: no backend registered")
)

// Factory creates a backend instance. A factory returns an error wrapping
// ErrBackendNotAvailable when its backend cannot run on this machine, for
// example because the vendor library is missing.
type Factory func() (upscale.Backend, error)
