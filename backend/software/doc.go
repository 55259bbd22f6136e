// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides the CPU reference upscaling backend.
//
// The backend registers itself as "software" on import and is always
// available. It exists for tests, headless tools and hosts without a vendor
// library; the filters are references, not production reconstruction.
//
//	b := software.New()
//	u, err := upscale.New(b, upscale.WithAllocator(b.Allocator()))
//
// Slot buffers are images created by Allocator. Hosts draw the scene into
// the input color image returned by ImageOf and read the output color
// image after Execute.
package software
