// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native adapts a vendor upscaler library to upscale.Backend.
//
// The library is loaded at runtime with purego, so no cgo toolchain is
// needed. It must export the C ABI below; statuses use the upscale.Status
// bit layout and resolutions are packed with upscale.Resolution.Pack
// (width in the high 32 bits).
//
//	bool     upscale_is_supported(uint32_t technique);
//	uint32_t upscale_status(uint32_t technique);
//	uint32_t upscale_set_technique(uint32_t technique);
//	uint32_t upscale_set_framebuffer(uint64_t output, uint32_t quality, bool hdr);
//	uint64_t upscale_recommended_resolution(uint64_t output, uint32_t quality, bool hdr);
//	uint64_t upscale_min_resolution(uint64_t output, uint32_t quality, bool hdr);
//	uint64_t upscale_max_resolution(uint64_t output, uint32_t quality, bool hdr);
//	void     upscale_set_sharpness(float sharpness);
//	void     upscale_set_input_resolution(uint64_t input);
//	void     upscale_set_jitter(double x, double y);
//	void     upscale_reset_history(void);
//	void     upscale_register_buffer(uint32_t slot, uintptr_t handle, uint32_t format);
//	uint32_t upscale_prepare(void);
//	uint32_t upscale_upscale(void);
//	void     upscale_set_error_callback(void (*cb)(uint32_t ctx, uint32_t status, const char *msg), uint32_t ctx);
//
// The error callback may fire on any thread. It is routed to the owning
// Upscaler through upscale.DispatchError.
//
// The ABI has no instance handle, so the library serves one Upscaler at a
// time. upscale.New fails with ErrContextInUse for a second Upscaler until
// the first is closed.
//
// Importing the package registers the "native" backend. Its factory opens
// the library named by UPSCALE_NATIVE_LIBRARY, or DefaultLibraryName, and
// reports backend.ErrBackendNotAvailable when it cannot be loaded.
package native
