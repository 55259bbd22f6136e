// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend"
)

var errNoTechnique = upscale.NewStatusError(upscale.StatusGenericError, "software: no technique selected")

// historyWeight is the share of the accumulated history kept per frame by
// the temporal filter.
const historyWeight = 0.5

// Backend is the CPU reference implementation of upscale.Backend.
//
// Spatial techniques resample the input with a Catmull-Rom kernel.
// Temporal techniques resample bilinearly with the frame jitter removed and
// blend the result into an output-sized history. Slot handles are resolved
// through the backend's Allocator, so the Upscaler must allocate with it:
//
//	b := software.New()
//	u, err := upscale.New(b, upscale.WithAllocator(b.Allocator()))
type Backend struct {
	alloc     *Allocator
	supported map[upscale.Technique]bool
	readiness map[upscale.Technique]upscale.Status

	technique upscale.Technique
	output    upscale.Resolution
	quality   upscale.Quality
	hdr       bool
	sharpness float32
	input     upscale.Resolution
	jitter    upscale.Vec2

	buffers  [len(upscale.Slots)]uintptr
	prepared bool
	history  *image.RGBA64

	errorCtx upscale.ContextID

	upscales int
	resets   int
}

// Option configures a Backend.
type Option func(*Backend)

// WithTechniques replaces the supported technique set. The default is FSR1
// and FSR2.
func WithTechniques(ts ...upscale.Technique) Option {
	return func(b *Backend) {
		b.supported = make(map[upscale.Technique]bool, len(ts))
		for _, t := range ts {
			if t.Enabled() {
				b.supported[t] = true
			}
		}
	}
}

// WithStatus makes a supported technique report s as its readiness, for
// example StatusDriverOutOfDate. SetTechnique fails with s.
func WithStatus(t upscale.Technique, s upscale.Status) Option {
	return func(b *Backend) {
		b.readiness[t] = s
	}
}

// WithAllocator shares an existing Allocator.
func WithAllocator(a *Allocator) Option {
	return func(b *Backend) {
		if a != nil {
			b.alloc = a
		}
	}
}

// New creates a software backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		alloc: NewAllocator(),
		supported: map[upscale.Technique]bool{
			upscale.TechniqueFSR1: true,
			upscale.TechniqueFSR2: true,
		},
		readiness: make(map[upscale.Technique]upscale.Status),
		sharpness: 0.5,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func init() {
	backend.Register(backend.BackendSoftware, func() (upscale.Backend, error) {
		return New(), nil
	})
}

// Allocator returns the allocator whose handles the backend resolves.
func (b *Backend) Allocator() *Allocator { return b.alloc }

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendSoftware }

// IsSupported reports whether t is in the supported set.
func (b *Backend) IsSupported(t upscale.Technique) bool { return b.supported[t] }

// SupportedTechniques returns the supported set in preference order.
func (b *Backend) SupportedTechniques() []upscale.Technique {
	var out []upscale.Technique
	for _, t := range upscale.Techniques {
		if b.supported[t] {
			out = append(out, t)
		}
	}
	return out
}

// Status returns the readiness of t.
func (b *Backend) Status(t upscale.Technique) upscale.Status {
	switch {
	case !t.Enabled():
		return upscale.StatusNoUpscalerSet
	case !b.supported[t]:
		return upscale.StatusDeviceNotSupported
	}
	if s, ok := b.readiness[t]; ok {
		return s
	}
	return upscale.StatusSuccess
}

// SetTechnique selects t. Switching technique drops the history.
func (b *Backend) SetTechnique(t upscale.Technique) upscale.Status {
	if !t.Enabled() {
		b.technique = upscale.TechniqueDisabled
		b.history = nil
		return upscale.StatusNoUpscalerSet
	}
	if !b.supported[t] {
		return upscale.StatusUnsupportedTechnique
	}
	if s := b.Status(t); s.Failed() {
		return s
	}
	if t != b.technique {
		b.history = nil
	}
	b.technique = t
	return upscale.StatusSuccess
}

// SetFramebufferSettings stores the output resolution, quality and HDR flag.
func (b *Backend) SetFramebufferSettings(output upscale.Resolution, q upscale.Quality, hdr bool) upscale.Status {
	if output.IsZero() {
		return upscale.StatusInvalidOutputResolution
	}
	if q > upscale.QualityUltraPerformance {
		return upscale.StatusInvalidQuality
	}
	if output != b.output || hdr != b.hdr {
		b.history = nil
	}
	b.output, b.quality, b.hdr = output, q, hdr
	return upscale.StatusSuccess
}

// AutoQuality returns the fixed tier QualityAuto resolves to for output.
func AutoQuality(output upscale.Resolution) upscale.Quality {
	switch {
	case output.Height >= 2160:
		return upscale.QualityPerformance
	case output.Height >= 1440:
		return upscale.QualityBalanced
	default:
		return upscale.QualityQuality
	}
}

// RecommendedInputResolution divides output by the tier ratio.
func (b *Backend) RecommendedInputResolution(output upscale.Resolution, q upscale.Quality, _ bool) upscale.Resolution {
	if q == upscale.QualityAuto {
		q = AutoQuality(output)
	}
	ratio := q.Ratio()
	if ratio <= 0 {
		return upscale.Resolution{}
	}
	return upscale.Res(
		uint32(math.Round(float64(output.Width)/ratio)),
		uint32(math.Round(float64(output.Height)/ratio)),
	)
}

// MinInputResolution returns half the output, rounded up.
func (b *Backend) MinInputResolution(output upscale.Resolution, _ upscale.Quality, _ bool) upscale.Resolution {
	return output.ScaleCeil(upscale.V2(upscale.MinDynamicScale, upscale.MinDynamicScale))
}

// MaxInputResolution returns the output resolution.
func (b *Backend) MaxInputResolution(output upscale.Resolution, _ upscale.Quality, _ bool) upscale.Resolution {
	return output
}

func (b *Backend) SetSharpness(s float32) {
	b.sharpness = min(max(s, 0), 1)
}

func (b *Backend) SetInputResolution(input upscale.Resolution) {
	b.input = input
}

func (b *Backend) SetJitter(j upscale.Vec2) {
	b.jitter = j
}

func (b *Backend) ResetHistory() {
	b.history = nil
	b.resets++
}

// RegisterBuffer records the handle of a slot. The format is implied by the
// image behind the handle.
func (b *Backend) RegisterBuffer(slot upscale.Slot, handle uintptr, _ gputypes.TextureFormat) {
	if int(slot) >= len(b.buffers) {
		return
	}
	b.buffers[slot] = handle
	b.prepared = false
}

// BindErrorContext stores the ID used by InjectError.
func (b *Backend) BindErrorContext(id upscale.ContextID) error {
	b.errorCtx = id
	return nil
}

// InjectError reports status asynchronously to the bound Upscaler, the way
// a native backend does from its own thread. It may be called from any
// goroutine.
func (b *Backend) InjectError(status upscale.Status, message string) error {
	if b.errorCtx == 0 {
		return ErrNoErrorContext
	}
	return upscale.DispatchError(b.errorCtx, status, message)
}

// required returns the slots the active technique reads or writes.
func (b *Backend) required() []upscale.Slot {
	if b.technique.Temporal() {
		return upscale.Slots[:]
	}
	return []upscale.Slot{upscale.SlotInputColor, upscale.SlotOutputColor}
}

func (b *Backend) image(slot upscale.Slot) (*Image, error) {
	img, ok := b.alloc.Lookup(b.buffers[slot])
	if !ok {
		return nil, upscale.NewStatusError(upscale.StatusGenericError,
			fmt.Sprintf("software: %s buffer not registered", slot))
	}
	return img, nil
}

// Prepare checks that every buffer the technique needs is registered.
func (b *Backend) Prepare() error {
	if !b.technique.Enabled() {
		return errNoTechnique
	}
	for _, slot := range b.required() {
		if _, err := b.image(slot); err != nil {
			return err
		}
	}
	b.prepared = true
	return nil
}

// Upscale reconstructs the output color slot from the input color slot.
func (b *Backend) Upscale() error {
	if !b.technique.Enabled() {
		return errNoTechnique
	}
	if !b.prepared {
		if err := b.Prepare(); err != nil {
			return err
		}
	}
	in, err := b.image(upscale.SlotInputColor)
	if err != nil {
		return err
	}
	out, err := b.image(upscale.SlotOutputColor)
	if err != nil {
		return err
	}

	src := image.Rect(0, 0, int(b.input.Width), int(b.input.Height)).Intersect(in.img.Bounds())
	dstRect := image.Rect(0, 0, int(b.output.Width), int(b.output.Height)).Intersect(out.img.Bounds())
	if src.Empty() || dstRect.Empty() {
		return upscale.NewStatusError(upscale.StatusInvalidInputResolution,
			fmt.Sprintf("software: input %s or output %s is empty", b.input, b.output))
	}

	if !b.technique.Temporal() {
		draw.CatmullRom.Scale(out.img, dstRect, in.img, src, draw.Src, nil)
		b.upscales++
		return nil
	}

	cur := image.NewRGBA64(dstRect)
	draw.BiLinear.Transform(cur, b.transform(src, dstRect), in.img, src, draw.Src, nil)
	b.accumulate(cur)
	draw.Draw(out.img, dstRect, b.history, dstRect.Min, draw.Src)
	b.upscales++
	return nil
}

// transform maps input pixels to output pixels with the jitter offset
// removed. The scene was rendered shifted by -jitter pixels.
func (b *Backend) transform(src, dst image.Rectangle) f64.Aff3 {
	sx := float64(dst.Dx()) / float64(src.Dx())
	sy := float64(dst.Dy()) / float64(src.Dy())
	return f64.Aff3{
		sx, 0, float64(dst.Min.X) - sx*(float64(src.Min.X)-b.jitter.X),
		0, sy, float64(dst.Min.Y) - sy*(float64(src.Min.Y)-b.jitter.Y),
	}
}

// accumulate blends cur into the history, replacing it when the history is
// empty or sized differently.
func (b *Backend) accumulate(cur *image.RGBA64) {
	if b.history == nil || b.history.Rect != cur.Rect {
		b.history = cur
		return
	}
	h := b.history.Pix
	for i := 0; i+1 < len(h); i += 2 {
		hv := float64(uint16(h[i])<<8 | uint16(h[i+1]))
		cv := float64(uint16(cur.Pix[i])<<8 | uint16(cur.Pix[i+1]))
		v := uint16(math.Round(hv*historyWeight + cv*(1-historyWeight)))
		h[i], h[i+1] = byte(v>>8), byte(v)
	}
}

// Technique returns the selected technique.
func (b *Backend) Technique() upscale.Technique { return b.technique }

// Output returns the configured output resolution.
func (b *Backend) Output() upscale.Resolution { return b.output }

// Input returns the last input resolution pushed by the Upscaler.
func (b *Backend) Input() upscale.Resolution { return b.input }

// Jitter returns the jitter of the current frame in pixels.
func (b *Backend) Jitter() upscale.Vec2 { return b.jitter }

// Sharpness returns the configured sharpness.
func (b *Backend) Sharpness() float32 { return b.sharpness }

// Upscales returns the number of completed upscales.
func (b *Backend) Upscales() int { return b.upscales }

// HistoryResets returns the number of ResetHistory calls.
func (b *Backend) HistoryResets() int { return b.resets }

var (
	_ upscale.Backend            = (*Backend)(nil)
	_ upscale.ErrorContextBinder = (*Backend)(nil)
	_ upscale.TechniqueLister    = (*Backend)(nil)
)
