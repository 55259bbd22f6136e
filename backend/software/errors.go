// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import "errors"

// Package errors for the software backend.
var (
	// ErrZeroExtent is returned when a texture with a zero dimension is requested.
	ErrZeroExtent = errors.New("software: zero texture extent")

	// ErrNotImage is returned when a texture was not created by an Allocator.
	ErrNotImage = errors.New("software: texture is not a software image")

	// ErrNoErrorContext is returned by InjectError before the backend was
	// bound to an Upscaler.
	ErrNoErrorContext = errors.New("software: no error context bound")
)
