package upscale

import (
	"fmt"
	"math"
	"time"
)

// Resolution is a width/height pair in pixels.
type Resolution struct {
	Width, Height uint32
}

// Res is a convenience function to create a Resolution.
func Res(width, height uint32) Resolution {
	return Resolution{Width: width, Height: height}
}

// String returns the resolution as "WxH".
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// IsZero reports whether either dimension is zero.
func (r Resolution) IsZero() bool {
	return r.Width == 0 || r.Height == 0
}

// Fits reports whether r is no larger than limit on each axis.
func (r Resolution) Fits(limit Resolution) bool {
	return r.Width <= limit.Width && r.Height <= limit.Height
}

// Min returns the component-wise minimum.
func (r Resolution) Min(o Resolution) Resolution {
	return Resolution{Width: min(r.Width, o.Width), Height: min(r.Height, o.Height)}
}

// Clamp clamps each component into [lo, hi]. Components of hi that are
// smaller than lo win, so the result never exceeds hi.
func (r Resolution) Clamp(lo, hi Resolution) Resolution {
	return Resolution{
		Width:  min(max(r.Width, lo.Width), hi.Width),
		Height: min(max(r.Height, lo.Height), hi.Height),
	}
}

// ScaleCeil returns ceil(r * s) per axis.
func (r Resolution) ScaleCeil(s Vec2) Resolution {
	return Resolution{
		Width:  uint32(math.Ceil(float64(r.Width) * s.X)),
		Height: uint32(math.Ceil(float64(r.Height) * s.Y)),
	}
}

// Vec2 returns the resolution as floats.
func (r Resolution) Vec2() Vec2 {
	return Vec2{X: float64(r.Width), Y: float64(r.Height)}
}

// Pack encodes the resolution as two 32-bit values in one 64-bit word,
// width in the low half and height in the high half.
func (r Resolution) Pack() uint64 {
	return uint64(r.Height)<<32 | uint64(r.Width)
}

// UnpackResolution decodes the 64-bit form produced by Pack.
func UnpackResolution(v uint64) Resolution {
	return Resolution{Width: uint32(v), Height: uint32(v >> 32)}
}

// UpscalingFactor returns output/input per axis. A zero input yields (1, 1).
func UpscalingFactor(input, output Resolution) Vec2 {
	if input.IsZero() {
		return Vec2{X: 1, Y: 1}
	}
	return Vec2{
		X: float64(output.Width) / float64(input.Width),
		Y: float64(output.Height) / float64(input.Height),
	}
}

// Dynamic scale bounds.
const (
	MinDynamicScale = 0.5
	MaxDynamicScale = 1.0
)

// Closed-loop controller step bounds for QualityDynamicAuto.
const (
	minControllerStep = 0.01
	maxControllerStep = 100.0
)

type recommendationKey struct {
	technique Technique
	output    Resolution
	quality   Quality
	hdr       bool
}

// ResolutionPolicy derives the input (render) resolution from the output
// resolution, quality tier and dynamic scale.
//
// Fixed tiers use the backend recommendation, cached until technique,
// output resolution, quality or HDR change. Dynamic tiers compute
// ceil(output * scale) clamped into the backend bounds.
type ResolutionPolicy struct {
	backend Backend

	cacheKey   recommendationKey
	cacheValue Resolution
	cached     bool

	// scale is the live dynamic-auto factor.
	scale Vec2

	targetFrameTime time.Duration

	lastBounds [2]Resolution
	input      Resolution
}

// NewResolutionPolicy creates a policy bound to a backend. A zero target
// frame time falls back to 60 Hz.
func NewResolutionPolicy(backend Backend, targetFrameTime time.Duration) *ResolutionPolicy {
	if targetFrameTime <= 0 {
		targetFrameTime = time.Second / 60
	}
	return &ResolutionPolicy{
		backend:         backend,
		scale:           Vec2{X: MaxDynamicScale, Y: MaxDynamicScale},
		targetFrameTime: targetFrameTime,
	}
}

// SetTargetFrameTime changes the dynamic-auto target.
func (p *ResolutionPolicy) SetTargetFrameTime(d time.Duration) {
	if d > 0 {
		p.targetFrameTime = d
	}
}

// TargetFrameTime returns the dynamic-auto target.
func (p *ResolutionPolicy) TargetFrameTime() time.Duration {
	return p.targetFrameTime
}

// Scale returns the current dynamic-auto scale factor.
func (p *ResolutionPolicy) Scale() Vec2 {
	return p.scale
}

// Input returns the last resolved input resolution.
func (p *ResolutionPolicy) Input() Resolution {
	return p.input
}

// Bounds returns the backend minimum and maximum input resolution for the
// current output resolution, as last queried.
func (p *ResolutionPolicy) Bounds() (lo, hi Resolution) {
	return p.lastBounds[0], p.lastBounds[1]
}

// Invalidate drops the cached recommendation.
func (p *ResolutionPolicy) Invalidate() {
	p.cached = false
}

// Resolve returns the input resolution for cfg and whether it differs from
// the previous result. frameTime is the previous frame's wall-clock delta
// and drives the dynamic-auto controller, which runs on every call.
//
// When the backend has no guidance (zero recommendation), the previous input
// resolution is retained, or the output resolution if there is none yet.
func (p *ResolutionPolicy) Resolve(cfg Configuration, frameTime time.Duration) (input Resolution, changed bool) {
	if cfg.Quality == QualityDynamicAuto {
		p.step(frameTime)
	}

	next, ok := p.compute(cfg)
	if !ok {
		next = p.input
		if next.IsZero() {
			next = cfg.OutputResolution
		}
	}
	next = next.Min(cfg.OutputResolution)
	changed = next != p.input
	p.input = next
	return next, changed
}

// step runs one iteration of the dynamic-auto controller.
func (p *ResolutionPolicy) step(frameTime time.Duration) {
	if frameTime <= 0 {
		return
	}
	// target/measured: a frame slower than target lowers the scale.
	ratio := float64(p.targetFrameTime) / float64(frameTime)
	ratio = clampFloat(ratio, minControllerStep, maxControllerStep)
	p.scale = p.scale.Mul(ratio).Clamp(MinDynamicScale, MaxDynamicScale)
}

func (p *ResolutionPolicy) compute(cfg Configuration) (Resolution, bool) {
	out := cfg.OutputResolution
	if !cfg.Technique.Enabled() {
		return out, true
	}

	switch cfg.Quality {
	case QualityDynamicManual:
		lo, hi, ok := p.bounds(cfg)
		if !ok {
			return Resolution{}, false
		}
		// An explicit input resolution wins when no scale was requested.
		if !cfg.InputResolution.IsZero() && cfg.DynamicScale.IsZero() {
			return cfg.InputResolution.Clamp(lo, hi), true
		}
		return out.ScaleCeil(cfg.EffectiveDynamicScale()).Clamp(lo, hi), true

	case QualityDynamicAuto:
		lo, hi, ok := p.bounds(cfg)
		if !ok {
			return Resolution{}, false
		}
		return out.ScaleCeil(p.scale).Clamp(lo, hi), true

	default:
		key := recommendationKey{technique: cfg.Technique, output: out, quality: cfg.Quality, hdr: cfg.HDR}
		if p.cached && p.cacheKey == key {
			return p.cacheValue, true
		}
		rec := p.backend.RecommendedInputResolution(out, cfg.Quality, cfg.HDR)
		if rec.IsZero() {
			Logger().Debug("upscale: backend returned no input resolution guidance",
				"technique", cfg.Technique, "quality", cfg.Quality, "output", out)
			return Resolution{}, false
		}
		p.cacheKey, p.cacheValue, p.cached = key, rec, true
		return rec, true
	}
}

func (p *ResolutionPolicy) bounds(cfg Configuration) (lo, hi Resolution, ok bool) {
	lo = p.backend.MinInputResolution(cfg.OutputResolution, cfg.Quality, cfg.HDR)
	hi = p.backend.MaxInputResolution(cfg.OutputResolution, cfg.Quality, cfg.HDR)
	if hi.IsZero() {
		return lo, hi, false
	}
	hi = hi.Min(cfg.OutputResolution)
	p.lastBounds = [2]Resolution{lo, hi}
	return lo, hi, true
}

// Ceiling returns the largest input resolution the policy may produce for
// cfg. Dynamic tiers allocate render buffers at this size so per-frame scale
// changes never reallocate.
func (p *ResolutionPolicy) Ceiling(cfg Configuration) Resolution {
	if !cfg.Quality.Dynamic() || !cfg.Technique.Enabled() {
		return p.input
	}
	_, hi, ok := p.bounds(cfg)
	if !ok {
		return p.input
	}
	return hi
}
