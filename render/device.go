// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The upscaler RECEIVES the device from the host, it does NOT create one, so
// slot buffers live on the same device as the host's render targets.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoHALDevice is returned when a provider does not expose HAL types.
var ErrNoHALDevice = errors.New("render: provider does not expose a HAL device")

// halProvider is implemented by device providers that expose the wgpu HAL
// device next to the gpucontext interfaces.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HALDevice extracts the hal.Device from a provider implementing
// HalDevice() any.
func HALDevice(provider any) (hal.Device, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHALDevice, hp.HalDevice())
	}
	return device, nil
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used by hosts that run the software backend without a GPU.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// BytesPerPixel returns the storage size of one texel of format. Unknown
// formats count as four bytes.
func BytesPerPixel(format gputypes.TextureFormat) uint64 {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}
