// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend"
)

// api holds the bound library entry points.
type api struct {
	isSupported        func(technique uint32) bool
	status             func(technique uint32) uint32
	setTechnique       func(technique uint32) uint32
	setFramebuffer     func(output uint64, quality uint32, hdr bool) uint32
	recommended        func(output uint64, quality uint32, hdr bool) uint64
	minResolution      func(output uint64, quality uint32, hdr bool) uint64
	maxResolution      func(output uint64, quality uint32, hdr bool) uint64
	setSharpness       func(sharpness float32)
	setInputResolution func(input uint64)
	setJitter          func(x, y float64)
	resetHistory       func()
	registerBuffer     func(slot uint32, handle uintptr, format uint32)
	prepare            func() uint32
	upscale            func() uint32
	setErrorCallback   func(cb uintptr, ctx uint32)
}

// Backend forwards upscale.Backend calls to the vendor library.
type Backend struct {
	api      *api
	lib      *Library
	callback uintptr
}

func newBackend(a *api, lib *Library, callback uintptr) *Backend {
	return &Backend{api: a, lib: lib, callback: callback}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendNative }

// Library returns the loaded library.
func (b *Backend) Library() *Library { return b.lib }

func (b *Backend) IsSupported(t upscale.Technique) bool {
	return b.api.isSupported(uint32(t))
}

func (b *Backend) Status(t upscale.Technique) upscale.Status {
	return upscale.Status(b.api.status(uint32(t)))
}

func (b *Backend) SetTechnique(t upscale.Technique) upscale.Status {
	return upscale.Status(b.api.setTechnique(uint32(t)))
}

func (b *Backend) SetFramebufferSettings(output upscale.Resolution, q upscale.Quality, hdr bool) upscale.Status {
	return upscale.Status(b.api.setFramebuffer(output.Pack(), uint32(q), hdr))
}

func (b *Backend) RecommendedInputResolution(output upscale.Resolution, q upscale.Quality, hdr bool) upscale.Resolution {
	return upscale.UnpackResolution(b.api.recommended(output.Pack(), uint32(q), hdr))
}

func (b *Backend) MinInputResolution(output upscale.Resolution, q upscale.Quality, hdr bool) upscale.Resolution {
	return upscale.UnpackResolution(b.api.minResolution(output.Pack(), uint32(q), hdr))
}

func (b *Backend) MaxInputResolution(output upscale.Resolution, q upscale.Quality, hdr bool) upscale.Resolution {
	return upscale.UnpackResolution(b.api.maxResolution(output.Pack(), uint32(q), hdr))
}

func (b *Backend) SetSharpness(sharpness float32) {
	b.api.setSharpness(sharpness)
}

func (b *Backend) SetInputResolution(input upscale.Resolution) {
	b.api.setInputResolution(input.Pack())
}

func (b *Backend) SetJitter(j upscale.Vec2) {
	b.api.setJitter(j.X, j.Y)
}

func (b *Backend) ResetHistory() {
	b.api.resetHistory()
}

func (b *Backend) RegisterBuffer(slot upscale.Slot, handle uintptr, format gputypes.TextureFormat) {
	b.api.registerBuffer(uint32(slot), handle, uint32(format))
}

func (b *Backend) Prepare() error {
	return upscale.Status(b.api.prepare()).Err()
}

func (b *Backend) Upscale() error {
	return upscale.Status(b.api.upscale()).Err()
}

// The library keeps one global state, so one Upscaler owns it at a time.
var (
	ownerMu sync.Mutex
	owner   upscale.ContextID
)

// BindErrorContext installs the process-wide error callback with id as its
// context. It fails with ErrContextInUse while the previous owner is still
// registered.
func (b *Backend) BindErrorContext(id upscale.ContextID) error {
	ownerMu.Lock()
	defer ownerMu.Unlock()
	if owner != 0 && owner != id {
		if _, live := upscale.LookupContext(owner); live {
			return fmt.Errorf("%w: context %d", ErrContextInUse, owner)
		}
	}
	b.api.setErrorCallback(b.callback, uint32(id))
	owner = id
	return nil
}

var (
	_ upscale.Backend            = (*Backend)(nil)
	_ upscale.ErrorContextBinder = (*Backend)(nil)
)
