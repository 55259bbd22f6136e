// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/upscale"
)

// stubBackend accepts every technique and recommends half the output.
type stubBackend struct {
	upscales   int
	prepares   int
	upscaleErr error
	registered map[upscale.Slot]uintptr
}

func newStubBackend() *stubBackend {
	return &stubBackend{registered: map[upscale.Slot]uintptr{}}
}

func (b *stubBackend) Name() string {
	return "stub"
}

func (b *stubBackend) IsSupported(upscale.Technique) bool {
	return true
}

func (b *stubBackend) Status(upscale.Technique) upscale.Status {
	return upscale.StatusSuccess
}

func (b *stubBackend) SetTechnique(t upscale.Technique) upscale.Status {
	if !t.Enabled() {
		return upscale.StatusNoUpscalerSet
	}
	return upscale.StatusSuccess
}

func (b *stubBackend) SetFramebufferSettings(upscale.Resolution, upscale.Quality, bool) upscale.Status {
	return upscale.StatusSuccess
}

func (b *stubBackend) RecommendedInputResolution(out upscale.Resolution, _ upscale.Quality, _ bool) upscale.Resolution {
	return upscale.Res(out.Width/2, out.Height/2)
}

func (b *stubBackend) MinInputResolution(out upscale.Resolution, _ upscale.Quality, _ bool) upscale.Resolution {
	return upscale.Res(out.Width/2, out.Height/2)
}

func (b *stubBackend) MaxInputResolution(out upscale.Resolution, _ upscale.Quality, _ bool) upscale.Resolution {
	return out
}

func (b *stubBackend) SetSharpness(float32)                  {}
func (b *stubBackend) SetInputResolution(upscale.Resolution) {}
func (b *stubBackend) SetJitter(upscale.Vec2)                {}
func (b *stubBackend) ResetHistory()                         {}

func (b *stubBackend) RegisterBuffer(slot upscale.Slot, handle uintptr, _ gputypes.TextureFormat) {
	b.registered[slot] = handle
}

func (b *stubBackend) Prepare() error {
	b.prepares++
	return nil
}

func (b *stubBackend) Upscale() error {
	b.upscales++
	return b.upscaleErr
}

// createNoopDevice creates a noop device for testing.
func createNoopDevice(t *testing.T) hal.Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device
}

// halDeviceProvider exposes a HAL device the way host frameworks do.
type halDeviceProvider struct {
	device hal.Device
}

func (p halDeviceProvider) HalDevice() any { return p.device }
func (p halDeviceProvider) HalQueue() any  { return nil }
