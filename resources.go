package upscale

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TextureRequest describes one slot allocation.
type TextureRequest struct {
	Label  string
	Slot   Slot
	Extent Resolution
	Format gputypes.TextureFormat
}

// Texture is a GPU buffer created by an Allocator.
type Texture interface {
	// NativeHandle returns the handle registered with the backend.
	NativeHandle() uintptr
}

// Allocator creates and destroys GPU textures for the resource slots.
// render.HALAllocator implements it over a wgpu HAL device.
type Allocator interface {
	CreateTexture(req TextureRequest) (Texture, error)
	DestroyTexture(tex Texture)
}

// Slot formats.
var (
	ColorFormatSDR     = gputypes.TextureFormatRGBA8Unorm
	ColorFormatHDR     = gputypes.TextureFormatRGBA16Float
	DepthFormat        = gputypes.TextureFormatDepth32Float
	MotionVectorFormat = gputypes.TextureFormatRG16Float
)

// ColorFormat returns the color slot format for the HDR flag.
func ColorFormat(hdr bool) gputypes.TextureFormat {
	if hdr {
		return ColorFormatHDR
	}
	return ColorFormatSDR
}

// slotState is one owned buffer plus the extent and format it was created
// for, so it can be compared against a requirement without asking the
// allocator.
type slotState struct {
	tex    Texture
	extent Resolution
	format gputypes.TextureFormat
}

// ResourceDirty holds the configuration changes that can invalidate slots.
type ResourceDirty struct {
	Technique   bool
	Quality     bool
	HDR         bool
	Resolution  bool
	DynamicMode bool
}

// Any reports whether any flag is set.
func (d ResourceDirty) Any() bool {
	return d.Technique || d.Quality || d.HDR || d.Resolution || d.DynamicMode
}

// ResourceRequirements is what the slots must look like this frame.
type ResourceRequirements struct {
	Technique Technique
	Quality   Quality
	HDR       bool

	// Render is the allocation size of input color, depth and motion
	// vectors. Dynamic tiers pass the resolution ceiling.
	Render Resolution

	// Output is the allocation size of the output color slot.
	Output Resolution
}

// Resources owns the input color, depth, motion vector and output color
// buffers of one Upscaler.
//
// Every Manage call frees the existing buffer before allocating, so a slot
// never holds two buffers at once. Any recreation marks the frame outdated.
type Resources struct {
	alloc   Allocator
	backend Backend
	slots   [slotCount]slotState

	outdated bool
}

// NewResources creates an empty resource set.
func NewResources(alloc Allocator, backend Backend) *Resources {
	return &Resources{alloc: alloc, backend: backend}
}

// Outdated reports whether any slot was recreated or destroyed since the
// last ClearOutdated.
func (r *Resources) Outdated() bool {
	return r.outdated
}

// ClearOutdated resets the per-frame outdated flag.
func (r *Resources) ClearOutdated() {
	r.outdated = false
}

// Texture returns the buffer held in slot, or nil.
func (r *Resources) Texture(slot Slot) Texture {
	return r.slots[slot].tex
}

// Extent returns the extent the slot was created for.
func (r *Resources) Extent(slot Slot) Resolution {
	return r.slots[slot].extent
}

// Format returns the format the slot was created for.
func (r *Resources) Format(slot Slot) gputypes.TextureFormat {
	return r.slots[slot].format
}

// Empty reports whether no slot holds a buffer.
func (r *Resources) Empty() bool {
	for i := range r.slots {
		if r.slots[i].tex != nil {
			return false
		}
	}
	return true
}

// ManageInputColor recreates the input color slot.
func (r *Resources) ManageInputColor(t Technique, q Quality, extent Resolution, hdr bool) (bool, error) {
	return r.manage(SlotInputColor, t, q, extent, ColorFormat(hdr))
}

// ManageDepth recreates the depth slot.
func (r *Resources) ManageDepth(t Technique, q Quality, extent Resolution) (bool, error) {
	return r.manage(SlotDepth, t, q, extent, DepthFormat)
}

// ManageMotionVectors recreates the motion vector slot.
func (r *Resources) ManageMotionVectors(t Technique, q Quality, extent Resolution) (bool, error) {
	return r.manage(SlotMotionVectors, t, q, extent, MotionVectorFormat)
}

// ManageOutputColor recreates the output color slot.
func (r *Resources) ManageOutputColor(t Technique, q Quality, extent Resolution, hdr bool) (bool, error) {
	return r.manage(SlotOutputColor, t, q, extent, ColorFormat(hdr))
}

// manage releases the slot and, for an active technique, allocates a new
// buffer and registers it with the backend. It reports whether the slot
// changed: created, recreated, or destroyed.
func (r *Resources) manage(slot Slot, t Technique, q Quality, extent Resolution, format gputypes.TextureFormat) (bool, error) {
	existed := r.release(slot)
	if !t.Enabled() {
		if existed {
			r.outdated = true
		}
		return existed, nil
	}
	if extent.IsZero() {
		return existed, fmt.Errorf("upscale: %s buffer has zero extent", slot)
	}

	tex, err := r.alloc.CreateTexture(TextureRequest{
		Label:  "upscale_" + slot.String(),
		Slot:   slot,
		Extent: extent,
		Format: format,
	})
	if err != nil {
		if existed {
			r.outdated = true
		}
		return existed, fmt.Errorf("upscale: create %s buffer %s: %w", slot, extent, err)
	}
	r.slots[slot] = slotState{tex: tex, extent: extent, format: format}
	r.backend.RegisterBuffer(slot, tex.NativeHandle(), format)
	r.outdated = true

	Logger().Debug("upscale: buffer created",
		"slot", slot, "extent", extent, "format", format, "technique", t, "quality", q)
	return true, nil
}

// release frees the slot's buffer and unregisters it. It reports whether a
// buffer existed.
func (r *Resources) release(slot Slot) bool {
	s := &r.slots[slot]
	if s.tex == nil {
		return false
	}
	r.backend.RegisterBuffer(slot, 0, gputypes.TextureFormatUndefined)
	r.alloc.DestroyTexture(s.tex)
	*s = slotState{}
	return true
}

// ReleaseAll frees every slot. It reports whether anything was released.
func (r *Resources) ReleaseAll() bool {
	released := false
	for _, slot := range Slots {
		if r.release(slot) {
			released = true
		}
	}
	if released {
		r.outdated = true
	}
	return released
}

// matches reports whether slot already satisfies the requirement.
func (r *Resources) matches(slot Slot, t Technique, extent Resolution, format gputypes.TextureFormat) bool {
	s := r.slots[slot]
	if !t.Enabled() {
		return s.tex == nil
	}
	return s.tex != nil && s.extent == extent && s.format == format
}

// Update re-provisions the slots whose dirty condition fired or whose
// snapshot no longer matches req, and reports whether anything changed.
//
// On allocation failure every slot is released before the error is
// returned, so a frame never ends with a partially provisioned set.
func (r *Resources) Update(dirty ResourceDirty, req ResourceRequirements) (bool, error) {
	color := ColorFormat(req.HDR)
	common := dirty.Resolution || dirty.Technique || dirty.Quality

	steps := []struct {
		slot  Slot
		dirty bool
		run   func() (bool, error)
	}{
		{SlotInputColor, common || dirty.HDR || dirty.DynamicMode || !r.matches(SlotInputColor, req.Technique, req.Render, color),
			func() (bool, error) { return r.ManageInputColor(req.Technique, req.Quality, req.Render, req.HDR) }},
		{SlotDepth, common || !r.matches(SlotDepth, req.Technique, req.Render, DepthFormat),
			func() (bool, error) { return r.ManageDepth(req.Technique, req.Quality, req.Render) }},
		{SlotMotionVectors, common || !r.matches(SlotMotionVectors, req.Technique, req.Render, MotionVectorFormat),
			func() (bool, error) { return r.ManageMotionVectors(req.Technique, req.Quality, req.Render) }},
		{SlotOutputColor, common || dirty.HDR || !r.matches(SlotOutputColor, req.Technique, req.Output, color),
			func() (bool, error) { return r.ManageOutputColor(req.Technique, req.Quality, req.Output, req.HDR) }},
	}

	changed := false
	for _, step := range steps {
		if !step.dirty {
			continue
		}
		c, err := step.run()
		changed = changed || c
		if err != nil {
			r.ReleaseAll()
			return true, err
		}
	}
	return changed, nil
}
