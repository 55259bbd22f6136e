// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"

	"github.com/gogpu/upscale"
)

// Package errors for the native backend.
var (
	// ErrLibraryNotLoaded is returned when the vendor library cannot be
	// opened. It matches upscale.StatusLibraryNotLoaded.
	ErrLibraryNotLoaded = upscale.NewStatusError(upscale.StatusLibraryNotLoaded, "native: library not loaded")

	// ErrMissingSymbol is returned when the library lacks a required export.
	ErrMissingSymbol = errors.New("native: missing symbol")

	// ErrContextInUse is returned by BindErrorContext while another live
	// Upscaler owns the library.
	ErrContextInUse = errors.New("native: library already bound to another upscaler")

	// ErrUnsupportedPlatform is returned on platforms without dynamic
	// loading support.
	ErrUnsupportedPlatform = errors.New("native: dynamic loading not supported on this platform")
)
