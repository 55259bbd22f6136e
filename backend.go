package upscale

import "github.com/gogpu/gputypes"

// Slot identifies one of the buffers shared with the backend.
type Slot uint8

const (
	SlotInputColor Slot = iota
	SlotDepth
	SlotMotionVectors
	SlotOutputColor

	slotCount
)

// Slots lists every slot in registration order.
var Slots = [slotCount]Slot{SlotInputColor, SlotDepth, SlotMotionVectors, SlotOutputColor}

// String returns the slot name.
func (s Slot) String() string {
	switch s {
	case SlotInputColor:
		return "InputColor"
	case SlotDepth:
		return "Depth"
	case SlotMotionVectors:
		return "MotionVectors"
	case SlotOutputColor:
		return "OutputColor"
	default:
		return "Unknown"
	}
}

// Backend is the port to the upscaling implementation. The core never calls
// platform interop directly; FFI adapters and the software reference backend
// implement this interface.
//
// All methods are called from the render thread.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// IsSupported reports whether the technique can run on this device.
	IsSupported(t Technique) bool

	// Status returns the readiness of the technique.
	Status(t Technique) Status

	// SetTechnique selects the active technique.
	SetTechnique(t Technique) Status

	// SetFramebufferSettings configures output resolution, quality and HDR.
	SetFramebufferSettings(output Resolution, q Quality, hdr bool) Status

	// RecommendedInputResolution returns the render resolution for a fixed
	// tier. A zero result means no guidance is available.
	RecommendedInputResolution(output Resolution, q Quality, hdr bool) Resolution

	// MinInputResolution and MaxInputResolution bound dynamic tiers.
	MinInputResolution(output Resolution, q Quality, hdr bool) Resolution
	MaxInputResolution(output Resolution, q Quality, hdr bool) Resolution

	SetSharpness(sharpness float32)
	SetInputResolution(input Resolution)

	// SetJitter receives the jitter of the current frame in pixels.
	SetJitter(jitter Vec2)

	// ResetHistory invalidates the temporal history.
	ResetHistory()

	// RegisterBuffer hands a slot's native handle and format to the backend.
	// A zero handle unregisters the slot.
	RegisterBuffer(slot Slot, handle uintptr, format gputypes.TextureFormat)

	// Prepare re-issues the backend's command setup after buffers changed.
	Prepare() error

	// Upscale reconstructs the output from the registered buffers.
	Upscale() error
}

// ErrorContextBinder is implemented by backends that report per-frame
// errors asynchronously. The backend passes id back to DispatchError from
// whatever thread it runs on. A backend that can serve only one Upscaler
// at a time returns an error and New fails.
type ErrorContextBinder interface {
	BindErrorContext(id ContextID) error
}

// TechniqueLister is implemented by backends that can enumerate their
// supported techniques without probing each one.
type TechniqueLister interface {
	SupportedTechniques() []Technique
}

// SupportedTechniques returns the techniques b supports, in preference
// order.
func SupportedTechniques(b Backend) []Technique {
	if tl, ok := b.(TechniqueLister); ok {
		return tl.SupportedTechniques()
	}
	var out []Technique
	for _, t := range Techniques {
		if b.IsSupported(t) {
			out = append(out, t)
		}
	}
	return out
}
