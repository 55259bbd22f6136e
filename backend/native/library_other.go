// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !darwin && !linux

package native

import (
	"fmt"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend"
)

// Library is an opened vendor library. It cannot be created on this
// platform.
type Library struct{}

// Path returns an empty string.
func (l *Library) Path() string { return "" }

// Close does nothing.
func (l *Library) Close() error { return nil }

// DefaultLibraryName returns an empty string on this platform.
func DefaultLibraryName() string { return "" }

// Open always fails with ErrUnsupportedPlatform.
func Open(path string) (*Backend, error) {
	return nil, fmt.Errorf("%w: %w", ErrLibraryNotLoaded, ErrUnsupportedPlatform)
}

func init() {
	backend.Register(backend.BackendNative, func() (upscale.Backend, error) {
		return nil, fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, ErrUnsupportedPlatform)
	})
}
