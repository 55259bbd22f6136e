package upscale

import (
	"fmt"
	"log/slog"
	"math"
)

// DiffFlags records which tracked attributes differ between the active and
// desired configuration. It is computed once per frame and never mutated
// outside reconciliation.
type DiffFlags struct {
	Technique             bool
	Quality               bool
	HDR                   bool
	Sharpness             bool
	OutputResolution      bool
	InputResolution       bool
	DynamicResolutionMode bool
}

// Any reports whether any attribute differs.
func (d DiffFlags) Any() bool {
	return d.Technique || d.Quality || d.HDR || d.Sharpness ||
		d.OutputResolution || d.InputResolution || d.DynamicResolutionMode
}

// Resources maps the flags onto the resource slots' dirty conditions.
func (d DiffFlags) Resources() ResourceDirty {
	return ResourceDirty{
		Technique:   d.Technique,
		Quality:     d.Quality,
		HDR:         d.HDR,
		Resolution:  d.OutputResolution || d.InputResolution,
		DynamicMode: d.DynamicResolutionMode,
	}
}

// Diff compares active against desired. The input resolution and dynamic
// scale are only tracked in QualityDynamicManual, the one tier where the
// caller sets them; elsewhere they are computed.
func Diff(active, desired Configuration) DiffFlags {
	d := DiffFlags{
		Technique:             active.Technique != desired.Technique,
		Quality:               active.Quality != desired.Quality,
		HDR:                   active.HDR != desired.HDR,
		Sharpness:             active.Sharpness != desired.Sharpness,
		OutputResolution:      active.OutputResolution != desired.OutputResolution,
		DynamicResolutionMode: active.Quality.Dynamic() != desired.Quality.Dynamic(),
	}
	if desired.Quality == QualityDynamicManual {
		d.InputResolution = active.InputResolution != desired.InputResolution ||
			active.DynamicScale != desired.DynamicScale
	}
	return d
}

// reconciler validates desired configurations and pushes committed ones to
// the backend.
type reconciler struct {
	backend Backend
	log     *slog.Logger
}

// validate checks desired against backend capability and numeric ranges.
// It returns the auto-corrected configuration on success. Sharpness is
// clamped with a warning and never fails; a disabled technique always
// passes.
func (r *reconciler) validate(desired Configuration, previousSharpness float32) (Configuration, Status, string) {
	cfg := desired
	cfg.Sharpness = r.correctSharpness(desired.Sharpness, previousSharpness)

	// DynamicScale is kept as requested so re-enabling restores it.
	if !cfg.Technique.Enabled() {
		return cfg, StatusNoUpscalerSet, ""
	}

	if !r.backend.IsSupported(cfg.Technique) {
		return desired, StatusUnsupportedTechnique,
			fmt.Sprintf("technique %s is not supported by backend %s", cfg.Technique, r.backend.Name())
	}
	if st := r.backend.Status(cfg.Technique); st.Failed() {
		return desired, st, fmt.Sprintf("technique %s is not ready", cfg.Technique)
	}
	if cfg.Quality > QualityUltraPerformance {
		return desired, StatusInvalidQuality, fmt.Sprintf("unknown quality tier %d", cfg.Quality)
	}
	if cfg.OutputResolution.IsZero() {
		return desired, StatusInvalidOutputResolution,
			fmt.Sprintf("output resolution %s is empty", cfg.OutputResolution)
	}
	if !cfg.DynamicScale.IsZero() {
		s := cfg.DynamicScale
		if !s.IsFinite() || s.X <= 0 || s.Y <= 0 {
			return desired, StatusInvalidDynamicScale,
				fmt.Sprintf("dynamic scale (%g, %g) is out of bounds", s.X, s.Y)
		}
		cfg.DynamicScale = s.Clamp(MinDynamicScale, MaxDynamicScale)
	}
	return cfg, StatusSuccess, ""
}

func (r *reconciler) correctSharpness(s, previous float32) float32 {
	switch {
	case math.IsNaN(float64(s)):
		r.log.Warn("upscale: sharpness is NaN, keeping previous value", "previous", previous)
		return previous
	case s < 0:
		r.log.Warn("upscale: sharpness clamped", "requested", s, "applied", 0)
		return 0
	case s > 1:
		r.log.Warn("upscale: sharpness clamped", "requested", s, "applied", 1)
		return 1
	}
	return s
}

// push applies cfg to the backend. The technique and framebuffer settings
// are pushed only when they changed relative to prev, unless force is set.
func (r *reconciler) push(prev, cfg Configuration, force bool) (Status, string) {
	if force || prev.Technique != cfg.Technique {
		if st := r.backend.SetTechnique(cfg.Technique); st.Failed() {
			return st, fmt.Sprintf("backend rejected technique %s", cfg.Technique)
		}
	}
	if !cfg.Technique.Enabled() {
		return StatusNoUpscalerSet, ""
	}
	if force || prev.Technique != cfg.Technique || prev.OutputResolution != cfg.OutputResolution ||
		prev.Quality != cfg.Quality || prev.HDR != cfg.HDR {
		if st := r.backend.SetFramebufferSettings(cfg.OutputResolution, cfg.Quality, cfg.HDR); st.Failed() {
			return st, fmt.Sprintf("backend rejected framebuffer settings %s %s hdr=%t",
				cfg.OutputResolution, cfg.Quality, cfg.HDR)
		}
	}
	if force || prev.Sharpness != cfg.Sharpness || prev.Technique != cfg.Technique {
		r.backend.SetSharpness(cfg.Sharpness)
	}
	return StatusSuccess, ""
}

// commit pushes cfg and, if the backend refuses any part of it, pushes prev
// back so the backend never keeps a partial configuration.
func (r *reconciler) commit(prev, cfg Configuration) (Status, string) {
	st, msg := r.push(prev, cfg, false)
	if !st.Failed() {
		return st, msg
	}
	if rb, _ := r.push(cfg, prev, true); rb.Failed() {
		r.log.Warn("upscale: rollback to previous configuration failed",
			"status", rb, "technique", prev.Technique)
	}
	return st, msg
}
