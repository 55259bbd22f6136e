// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/gogpu/upscale"
)

// mapAllocator hands out handle-only textures.
type mapAllocator struct {
	next uintptr
	live map[uintptr]bool
}

type handleTexture uintptr

func (h handleTexture) NativeHandle() uintptr { return uintptr(h) }

func (a *mapAllocator) CreateTexture(upscale.TextureRequest) (upscale.Texture, error) {
	a.next++
	a.live[a.next] = true
	return handleTexture(a.next), nil
}

func (a *mapAllocator) DestroyTexture(tex upscale.Texture) {
	delete(a.live, tex.NativeHandle())
}

// recordingHost logs every hook call.
type recordingHost struct {
	info      upscale.FrameInfo
	events    []string
	renderErr error
}

func (h *recordingHost) BeforeFrame() upscale.FrameInfo {
	h.events = append(h.events, "before")
	return h.info
}

func (h *recordingHost) ConfigureResources(res *upscale.Resources, _ upscale.Frame) error {
	h.events = append(h.events, "configure")
	return nil
}

func (h *recordingHost) RenderScene(f upscale.Frame) error {
	h.events = append(h.events, "render "+f.InputResolution.String())
	return h.renderErr
}

func (h *recordingHost) Present(_ upscale.Frame, upscaled bool) error {
	h.events = append(h.events, fmt.Sprintf("present %t", upscaled))
	return nil
}

func (h *recordingHost) take() []string {
	e := h.events
	h.events = nil
	return e
}

type legacyHost struct {
	recordingHost
	target upscale.Texture
}

func (h *legacyHost) SwapTarget(input upscale.Texture) {
	h.target = input
	h.events = append(h.events, "swap")
}

func (h *legacyHost) RestoreTarget() {
	h.target = nil
	h.events = append(h.events, "restore")
}

type graphHost struct {
	recordingHost
	imports int
}

func (h *graphHost) ImportTexture(upscale.Slot, upscale.Texture) {
	h.imports++
}

func (h *graphHost) AddPass(name string, run func() error) error {
	h.events = append(h.events, "pass "+name)
	return run()
}

func newDriverUpscaler(t *testing.T, b upscale.Backend, path upscale.RenderPath, cfg upscale.Configuration) *upscale.Upscaler {
	t.Helper()
	u, err := upscale.New(b,
		upscale.WithAllocator(&mapAllocator{live: map[uintptr]bool{}}),
		upscale.WithRenderPath(path),
		upscale.WithConfiguration(cfg),
	)
	if err != nil {
		t.Fatalf("upscale.New() error = %v", err)
	}
	t.Cleanup(func() { _ = u.Close() })
	return u
}

func TestNewDriverChecksHooks(t *testing.T) {
	tests := []struct {
		path upscale.RenderPath
		host Host
		ok   bool
	}{
		{upscale.RenderPathLegacy, &recordingHost{}, false},
		{upscale.RenderPathLegacy, &legacyHost{}, true},
		{upscale.RenderPathScriptableGraph, &legacyHost{}, false},
		{upscale.RenderPathScriptableGraph, &graphHost{}, true},
		{upscale.RenderPathCompatibilityGraph, &graphHost{}, true},
		{upscale.RenderPath(9), &graphHost{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.path.String(), func(t *testing.T) {
			u := newDriverUpscaler(t, newStubBackend(), tt.path, upscale.DefaultConfiguration())
			_, err := NewDriver(tt.host, u)
			if tt.ok && err != nil {
				t.Errorf("NewDriver() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrHostPath) {
				t.Errorf("NewDriver() error = %v, want ErrHostPath", err)
			}
		})
	}
}

func TestDriverLegacySequence(t *testing.T) {
	b := newStubBackend()
	u := newDriverUpscaler(t, b, upscale.RenderPathLegacy, upscale.DefaultConfiguration())
	host := &legacyHost{recordingHost: recordingHost{info: upscale.FrameInfo{Viewport: upscale.Res(1920, 1080)}}}
	d, err := NewDriver(host, u)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	if _, err := d.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	want := []string{"before", "configure", "swap", "render 960x540", "restore", "present true"}
	if got := host.take(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if b.prepares != 1 || b.upscales != 1 {
		t.Errorf("prepares/upscales = %d/%d, want 1/1", b.prepares, b.upscales)
	}

	if _, err := d.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	want = []string{"before", "swap", "render 960x540", "restore", "present true"}
	if got := host.take(); !slices.Equal(got, want) {
		t.Errorf("second frame events = %v, want %v", got, want)
	}
}

func TestDriverDisabledRendersNative(t *testing.T) {
	cfg := upscale.DefaultConfiguration()
	cfg.Technique = upscale.TechniqueDisabled
	b := newStubBackend()
	u := newDriverUpscaler(t, b, upscale.RenderPathLegacy, cfg)
	host := &legacyHost{recordingHost: recordingHost{info: upscale.FrameInfo{Viewport: upscale.Res(1920, 1080)}}}
	d, err := NewDriver(host, u)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	if _, err := d.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	want := []string{"before", "render 1920x1080", "present false"}
	if got := host.take(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if b.upscales != 0 {
		t.Errorf("upscales = %d, want 0", b.upscales)
	}
}

func TestDriverGraphImports(t *testing.T) {
	tests := []struct {
		path        upscale.RenderPath
		wantImports int
	}{
		{upscale.RenderPathScriptableGraph, 4},
		{upscale.RenderPathCompatibilityGraph, 12},
	}
	for _, tt := range tests {
		t.Run(tt.path.String(), func(t *testing.T) {
			b := newStubBackend()
			u := newDriverUpscaler(t, b, tt.path, upscale.DefaultConfiguration())
			host := &graphHost{recordingHost: recordingHost{info: upscale.FrameInfo{Viewport: upscale.Res(1280, 720)}}}
			d, err := NewDriver(host, u)
			if err != nil {
				t.Fatalf("NewDriver() error = %v", err)
			}
			for range 3 {
				if _, err := d.Frame(); err != nil {
					t.Fatalf("Frame() error = %v", err)
				}
			}
			if host.imports != tt.wantImports {
				t.Errorf("imports = %d, want %d", host.imports, tt.wantImports)
			}
			if b.upscales != 3 {
				t.Errorf("upscales = %d, want 3", b.upscales)
			}
		})
	}
}

func TestDriverUpscaleFailurePresentsNative(t *testing.T) {
	b := newStubBackend()
	b.upscaleErr = upscale.NewStatusError(upscale.StatusCriticalInternalError, "lost")
	u := newDriverUpscaler(t, b, upscale.RenderPathLegacy, upscale.DefaultConfiguration())
	host := &legacyHost{recordingHost: recordingHost{info: upscale.FrameInfo{Viewport: upscale.Res(1920, 1080)}}}
	d, err := NewDriver(host, u)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	_, err = d.Frame()
	if upscale.StatusOf(err) != upscale.StatusCriticalInternalError {
		t.Fatalf("Frame() error = %v, want CriticalInternalError", err)
	}
	events := host.take()
	if events[len(events)-1] != "present false" {
		t.Errorf("events = %v, want native presentation", events)
	}

	// The queued failure disables upscaling on the next frame.
	f, err := d.Frame()
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if f.Technique != upscale.TechniqueDisabled {
		t.Errorf("Technique = %s, want Disabled", f.Technique)
	}
}

func TestDriverClosed(t *testing.T) {
	u := newDriverUpscaler(t, newStubBackend(), upscale.RenderPathLegacy, upscale.DefaultConfiguration())
	d, err := NewDriver(&legacyHost{}, u)
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := d.Frame(); !errors.Is(err, upscale.ErrClosed) {
		t.Errorf("Frame() after Close error = %v, want ErrClosed", err)
	}
}
