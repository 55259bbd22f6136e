// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestHALDevice(t *testing.T) {
	device := createNoopDevice(t)

	tests := []struct {
		name     string
		provider any
		wantErr  bool
	}{
		{"nil", nil, true},
		{"null handle", NullDeviceHandle{}, true},
		{"nil hal device", halDeviceProvider{}, true},
		{"hal device", halDeviceProvider{device: device}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HALDevice(tt.provider)
			if tt.wantErr {
				if !errors.Is(err, ErrNoHALDevice) {
					t.Errorf("HALDevice() error = %v, want ErrNoHALDevice", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("HALDevice() error = %v", err)
			}
			if got != device {
				t.Error("HALDevice() returned a different device")
			}
		})
	}
}
