// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render connects an upscale.Upscaler to a host render pipeline.
//
// # Device Handoff
//
// The host owns the GPU device and hands it over through DeviceHandle
// (gpucontext.DeviceProvider). Providers that also expose the wgpu HAL
// device (HalDevice() any) can back the slot buffers directly:
//
//	alloc, err := render.NewHALAllocatorFromProvider(provider,
//	    render.WithMemoryBudget(256<<20))
//	u, err := upscale.New(b, upscale.WithAllocator(alloc))
//
// # Render Paths
//
// A Host implements the per-frame hooks. Driver sequences them for the
// Upscaler's render path:
//
//   - RenderPathLegacy: the host also implements TargetSwapper and the
//     camera target is swapped for the input color slot around the color
//     pass.
//   - RenderPathScriptableGraph: the host implements GraphRecorder; slot
//     buffers are imported after recreation and the upscale is recorded as
//     a graph pass.
//   - RenderPathCompatibilityGraph: as above, but buffers are imported every
//     frame.
package render
