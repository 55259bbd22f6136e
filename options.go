package upscale

import (
	"log/slog"
	"time"
)

// Option configures an Upscaler during creation.
//
// Example:
//
//	u, err := upscale.New(backend,
//	    upscale.WithAllocator(alloc),
//	    upscale.WithConfiguration(cfg),
//	    upscale.WithErrorHandler(handler),
//	)
type Option func(*options)

// options holds optional configuration for Upscaler creation.
type options struct {
	allocator       Allocator
	desired         Configuration
	handler         ErrorHandler
	path            RenderPath
	targetFrameTime time.Duration
	logger          *slog.Logger
}

// defaultOptions returns the default options.
func defaultOptions() options {
	return options{
		desired:         DefaultConfiguration(),
		path:            RenderPathLegacy,
		targetFrameTime: time.Second / 60,
	}
}

// WithAllocator sets the GPU allocator for the resource slots. New fails
// with ErrNilAllocator without one.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithConfiguration sets the initial desired configuration.
func WithConfiguration(cfg Configuration) Option {
	return func(o *options) {
		o.desired = cfg
	}
}

// WithErrorHandler registers the error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithRenderPath records the host's render path.
func WithRenderPath(p RenderPath) Option {
	return func(o *options) {
		o.path = p
	}
}

// WithTargetFrameTime sets the frame time QualityDynamicAuto aims for.
func WithTargetFrameTime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.targetFrameTime = d
		}
	}
}

// WithRefreshRate sets the dynamic-auto target to one frame at hz.
func WithRefreshRate(hz float64) Option {
	return func(o *options) {
		if hz > 0 {
			o.targetFrameTime = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithLogger overrides the package logger for one Upscaler.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
