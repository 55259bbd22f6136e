// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/upscale"
)

// Image is a CPU-backed slot buffer.
type Image struct {
	handle uintptr
	req    upscale.TextureRequest
	img    draw.Image
}

// NativeHandle returns the handle the backend resolves through its
// Allocator.
func (t *Image) NativeHandle() uintptr { return t.handle }

// Image returns the pixel storage.
func (t *Image) Image() draw.Image { return t.img }

// Request returns the request the image was created for.
func (t *Image) Request() upscale.TextureRequest { return t.req }

// Allocator creates images for the upscaler slots and resolves the handles
// registered with the software backend. It implements upscale.Allocator.
type Allocator struct {
	mu   sync.Mutex
	next uintptr
	live map[uintptr]*Image
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{live: make(map[uintptr]*Image)}
}

// newImage picks the storage for a slot format. Float formats are stored
// as 16-bit fixed point.
func newImage(format gputypes.TextureFormat, r image.Rectangle) draw.Image {
	switch format {
	case gputypes.TextureFormatRGBA16Float, gputypes.TextureFormatRG16Float:
		return image.NewRGBA64(r)
	case gputypes.TextureFormatDepth32Float:
		return image.NewGray16(r)
	case gputypes.TextureFormatR8Unorm:
		return image.NewGray(r)
	default:
		return image.NewRGBA(r)
	}
}

// CreateTexture allocates an image of req.Extent.
func (a *Allocator) CreateTexture(req upscale.TextureRequest) (upscale.Texture, error) {
	if req.Extent.IsZero() {
		return nil, fmt.Errorf("%w: %s %s", ErrZeroExtent, req.Slot, req.Extent)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.next++
	t := &Image{
		handle: a.next,
		req:    req,
		img:    newImage(req.Format, image.Rect(0, 0, int(req.Extent.Width), int(req.Extent.Height))),
	}
	a.live[t.handle] = t
	return t, nil
}

// DestroyTexture forgets tex. Unknown textures are ignored.
func (a *Allocator) DestroyTexture(tex upscale.Texture) {
	if tex == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.live, tex.NativeHandle())
}

// Lookup returns the live image registered under handle.
func (a *Allocator) Lookup(handle uintptr) (*Image, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.live[handle]
	return t, ok
}

// Live returns the number of live images.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// ImageOf returns the pixel storage behind a texture created by an
// Allocator.
func ImageOf(tex upscale.Texture) (draw.Image, error) {
	t, ok := tex.(*Image)
	if !ok || t == nil {
		return nil, fmt.Errorf("%w: %T", ErrNotImage, tex)
	}
	return t.img, nil
}

var _ upscale.Allocator = (*Allocator)(nil)
