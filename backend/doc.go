// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend provides a name-keyed registry of upscale.Backend
// implementations.
//
// Backends register a Factory from init(), so importing a backend package
// is enough to make it selectable:
//
//	import _ "github.com/gogpu/upscale/backend/software"
//	import _ "github.com/gogpu/upscale/backend/native"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b, err := backend.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	u, err := upscale.New(b, upscale.WithAllocator(alloc))
//
// The native backend is preferred when its vendor library loads; the
// software reference backend is the fallback.
//
// # Available Backends
//
//   - "native": vendor upscaler library loaded at runtime (darwin, linux)
//   - "software": CPU reference filters, always available
package backend
