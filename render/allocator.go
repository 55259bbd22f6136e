// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/upscale"
)

// Allocator errors.
var (
	// ErrNilDevice is returned by NewHALAllocator for a nil device.
	ErrNilDevice = errors.New("render: device must not be nil")

	// ErrMemoryBudgetExceeded is returned when an allocation would exceed
	// the configured budget. It is reported as upscale.StatusOutOfGPUMemory.
	ErrMemoryBudgetExceeded = errors.New("render: memory budget exceeded")

	// ErrAllocatorClosed is returned when allocating after Close.
	ErrAllocatorClosed = errors.New("render: allocator closed")
)

// MemoryStats contains slot buffer memory usage.
type MemoryStats struct {
	// BudgetBytes is the configured budget; zero means unlimited.
	BudgetBytes uint64

	UsedBytes uint64
	PeakBytes uint64

	TextureCount int

	// Allocations and Releases count CreateTexture and DestroyTexture calls
	// over the allocator's lifetime.
	Allocations uint64
	Releases    uint64
}

// Utilization returns the fraction of the budget in use, or 0 without a
// budget.
func (s MemoryStats) Utilization() float64 {
	if s.BudgetBytes == 0 {
		return 0
	}
	return float64(s.UsedBytes) / float64(s.BudgetBytes)
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d MB, %d textures, %d allocs, %d releases]",
		s.Utilization()*100,
		s.UsedBytes/(1024*1024),
		s.BudgetBytes/(1024*1024),
		s.TextureCount,
		s.Allocations,
		s.Releases)
}

// HALTexture is a slot buffer created on a wgpu HAL device.
type HALTexture struct {
	tex  hal.Texture
	view hal.TextureView
	req  upscale.TextureRequest
	size uint64
}

// NativeHandle returns the HAL texture handle.
func (t *HALTexture) NativeHandle() uintptr { return t.tex.NativeHandle() }

// Texture returns the underlying HAL texture.
func (t *HALTexture) Texture() hal.Texture { return t.tex }

// View returns the default view of the texture.
func (t *HALTexture) View() hal.TextureView { return t.view }

// Request returns the request the texture was created for.
func (t *HALTexture) Request() upscale.TextureRequest { return t.req }

// AllocatorOption configures a HALAllocator.
type AllocatorOption func(*HALAllocator)

// WithMemoryBudget limits the total size of live slot buffers.
func WithMemoryBudget(bytes uint64) AllocatorOption {
	return func(a *HALAllocator) {
		a.budget = bytes
	}
}

// HALAllocator implements upscale.Allocator over a hal.Device and tracks
// the memory held by slot buffers.
//
// HALAllocator is safe for concurrent use.
type HALAllocator struct {
	mu sync.Mutex

	device hal.Device

	budget uint64
	used   uint64
	peak   uint64

	textures    map[*HALTexture]struct{}
	allocations uint64
	releases    uint64

	closed bool
}

var _ upscale.Allocator = (*HALAllocator)(nil)

// NewHALAllocator creates an allocator on device.
func NewHALAllocator(device hal.Device, opts ...AllocatorOption) (*HALAllocator, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	a := &HALAllocator{
		device:   device,
		textures: make(map[*HALTexture]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// NewHALAllocatorFromProvider creates an allocator on the device shared by
// a host provider. The provider must implement HalDevice() any.
func NewHALAllocatorFromProvider(provider any, opts ...AllocatorOption) (*HALAllocator, error) {
	device, err := HALDevice(provider)
	if err != nil {
		return nil, err
	}
	return NewHALAllocator(device, opts...)
}

// slotUsage returns the texture usage for a slot.
func slotUsage(slot upscale.Slot) gputypes.TextureUsage {
	switch slot {
	case upscale.SlotInputColor:
		return gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	case upscale.SlotOutputColor:
		return gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc
	default:
		return gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding
	}
}

// CreateTexture creates a 2D texture and its default view for req.
func (a *HALAllocator) CreateTexture(req upscale.TextureRequest) (upscale.Texture, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrAllocatorClosed
	}

	size := uint64(req.Extent.Width) * uint64(req.Extent.Height) * BytesPerPixel(req.Format)
	if a.budget > 0 && a.used+size > a.budget {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d of %d in use: %w",
			ErrMemoryBudgetExceeded, req.Label, size, a.used, a.budget, upscale.StatusOutOfGPUMemory.Err())
	}

	tex, err := a.device.CreateTexture(&hal.TextureDescriptor{
		Label:         req.Label,
		Size:          hal.Extent3D{Width: req.Extent.Width, Height: req.Extent.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        req.Format,
		Usage:         slotUsage(req.Slot),
	})
	if err != nil {
		return nil, fmt.Errorf("render: create %s texture: %w", req.Label, err)
	}
	view, err := a.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: req.Label + "_view",
	})
	if err != nil {
		a.device.DestroyTexture(tex)
		return nil, fmt.Errorf("render: create %s view: %w", req.Label, err)
	}

	t := &HALTexture{tex: tex, view: view, req: req, size: size}
	a.textures[t] = struct{}{}
	a.used += size
	a.peak = max(a.peak, a.used)
	a.allocations++
	return t, nil
}

// DestroyTexture destroys a texture created by this allocator. Foreign or
// already destroyed textures are ignored.
func (a *HALAllocator) DestroyTexture(tex upscale.Texture) {
	t, ok := tex.(*HALTexture)
	if !ok {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, live := a.textures[t]; !live {
		return
	}
	a.destroy(t)
}

func (a *HALAllocator) destroy(t *HALTexture) {
	if t.view != nil {
		a.device.DestroyTextureView(t.view)
	}
	a.device.DestroyTexture(t.tex)
	delete(a.textures, t)
	a.used -= t.size
	a.releases++
}

// Stats returns current memory statistics.
func (a *HALAllocator) Stats() MemoryStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return MemoryStats{
		BudgetBytes:  a.budget,
		UsedBytes:    a.used,
		PeakBytes:    a.peak,
		TextureCount: len(a.textures),
		Allocations:  a.allocations,
		Releases:     a.releases,
	}
}

// Close destroys every live texture. The device is owned by the host and
// stays open.
func (a *HALAllocator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for t := range a.textures {
		a.destroy(t)
	}
	a.closed = true
}
