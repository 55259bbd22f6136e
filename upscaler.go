package upscale

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Common errors.
var (
	// ErrNilBackend is returned by New when no backend is given.
	ErrNilBackend = errors.New("upscale: backend must not be nil")

	// ErrNilAllocator is returned by New when no allocator is configured.
	ErrNilAllocator = errors.New("upscale: allocator must not be nil")

	// ErrClosed is returned when an Upscaler is used after Close.
	ErrClosed = errors.New("upscale: upscaler is closed")
)

// FrameInfo is the per-frame state supplied by the render host before
// culling and rendering.
type FrameInfo struct {
	// Viewport is the camera's output resolution.
	Viewport Resolution

	// HDR reports whether the camera renders to an HDR target.
	HDR bool

	// FrameTime is the wall-clock duration of the previous frame.
	FrameTime time.Duration
}

// Frame is the outcome of BeginFrame: what the host must render and what
// Execute will do.
type Frame struct {
	Index     uint64
	Technique Technique
	Status    Status

	// Diff lists the attributes that differed at the start of the frame.
	Diff DiffFlags

	// InputResolution is the resolution the scene must be rendered at.
	InputResolution  Resolution
	OutputResolution Resolution

	// Jitter is the offset to apply to the projection this frame.
	Jitter Jitter

	// ResourceOutdated reports that slot buffers were recreated; hosts must
	// rebind them and Execute runs the backend Prepare step.
	ResourceOutdated bool

	// HistoryReset reports that the backend history was invalidated.
	HistoryReset bool
}

// Upscaling reports whether the frame goes through the backend.
func (f Frame) Upscaling() bool {
	return f.Technique.Enabled()
}

// Upscaler is the runtime state core for one camera/viewport context.
//
// Each frame, BeginFrame reconciles the desired configuration against the
// active one, resolves the input resolution, re-provisions GPU buffers when
// required and advances the jitter sequence. Execute then runs the backend.
//
// Upscaler is not safe for concurrent use, with the single exception of
// ReportError, which may be called from any thread.
type Upscaler struct {
	backend   Backend
	path      RenderPath
	logger    *slog.Logger
	rec       reconciler
	recovery  errorRecovery
	policy    *ResolutionPolicy
	resources *Resources
	jitter    JitterSequence

	desired Configuration
	active  Configuration
	status  Status

	pending      atomic.Pointer[StatusError]
	pushedInput  Resolution
	resetPending bool
	frame        uint64
	id           ContextID
	closed       bool
}

// New creates an Upscaler bound to backend. The active configuration starts
// disabled; the desired configuration is applied on the first BeginFrame.
func New(backend Backend, opts ...Option) (*Upscaler, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.allocator == nil {
		return nil, ErrNilAllocator
	}

	u := &Upscaler{
		backend:   backend,
		path:      o.path,
		logger:    o.logger,
		policy:    NewResolutionPolicy(backend, o.targetFrameTime),
		resources: NewResources(o.allocator, backend),
		desired:   o.desired,
		status:    StatusNoUpscalerSet,
	}
	u.rec = reconciler{backend: backend, log: u.log()}
	u.recovery = errorRecovery{handler: o.handler, log: u.log()}
	u.id = registerContext(u)
	if b, ok := backend.(ErrorContextBinder); ok {
		if err := b.BindErrorContext(u.id); err != nil {
			unregisterContext(u.id)
			return nil, fmt.Errorf("upscale: bind error context: %w", err)
		}
	}
	return u, nil
}

func (u *Upscaler) log() *slog.Logger {
	if u.logger != nil {
		return u.logger
	}
	return Logger()
}

// ID returns the context ID used for asynchronous error delivery.
func (u *Upscaler) ID() ContextID {
	return u.id
}

// Backend returns the backend.
func (u *Upscaler) Backend() Backend {
	return u.backend
}

// RenderPath returns the host render path the Upscaler was created for.
func (u *Upscaler) RenderPath() RenderPath {
	return u.path
}

// Desired returns the mutable desired configuration. Changes take effect on
// the next BeginFrame. OutputResolution and HDR are overwritten from
// FrameInfo each frame.
func (u *Upscaler) Desired() *Configuration {
	return &u.desired
}

// Active returns the committed configuration.
func (u *Upscaler) Active() Configuration {
	return u.active
}

// ActiveStatus returns the status of the last reconciliation.
func (u *Upscaler) ActiveStatus() Status {
	return u.status
}

// RecoveryState returns the error recovery state.
func (u *Upscaler) RecoveryState() RecoveryState {
	return u.recovery.state
}

// SupportedTechniques lists the techniques the backend supports.
func (u *Upscaler) SupportedTechniques() []Technique {
	return SupportedTechniques(u.backend)
}

// Resources returns the slot buffers.
func (u *Upscaler) Resources() *Resources {
	return u.resources
}

// Policy returns the resolution policy.
func (u *Upscaler) Policy() *ResolutionPolicy {
	return u.policy
}

// JitterSequence returns the jitter state. Hosts only read it.
func (u *Upscaler) JitterSequence() *JitterSequence {
	return &u.jitter
}

// SetErrorHandler registers h, replacing any previous handler. Nil removes
// the handler.
func (u *Upscaler) SetErrorHandler(h ErrorHandler) {
	u.recovery.handler = h
}

// ResetHistory invalidates the backend history at the next BeginFrame, for
// example after a scene cut.
func (u *Upscaler) ResetHistory() {
	u.resetPending = true
}

// ReportError records an asynchronous backend failure. It is safe to call
// from any thread and only stores the error; recovery runs at the next
// BeginFrame. A later report replaces an unprocessed one.
func (u *Upscaler) ReportError(status Status, message string) {
	if !status.Failed() {
		return
	}
	u.pending.Store(NewStatusError(status, message))
}

// BeginFrame runs the per-frame pre-render work in order: reconcile
// settings, resolve the input resolution, manage resources, then regenerate
// and apply jitter.
func (u *Upscaler) BeginFrame(info FrameInfo) (Frame, error) {
	if u.closed {
		return Frame{}, ErrClosed
	}
	u.frame++
	u.resources.ClearOutdated()

	u.desired.OutputResolution = info.Viewport
	u.desired.HDR = info.HDR

	prev := u.active
	diff := Diff(u.active, u.desired)

	failure := u.pending.Swap(nil)
	next, commit := u.active, false
	if failure == nil && diff.Any() {
		cfg, st, msg := u.validate(u.desired)
		if st.Failed() {
			failure = NewStatusError(st, msg)
		} else {
			next, commit = cfg, true
		}
	}
	if failure != nil {
		next, commit = u.recovery.resolve(failure, &u.desired, u.validate), true
	}
	if commit {
		u.commit(prev, next)
	}

	u.active.InputResolution, _ = u.policy.Resolve(u.active, info.FrameTime)
	u.desired.InputResolution = u.active.InputResolution

	if err := u.provision(prev); err != nil {
		u.jitter.Reset()
		return u.frameResult(diff, Jitter{}), err
	}

	// Provisioning may have changed the configuration through recovery.
	input := u.active.InputResolution
	if u.active.Technique.Enabled() && (input != u.pushedInput || prev.Technique != u.active.Technique) {
		u.backend.SetInputResolution(input)
		u.pushedInput = input
	}

	reset := false
	if u.active.Technique.Enabled() && (u.resources.Outdated() || u.resetPending || prev.Technique != u.active.Technique) {
		u.backend.ResetHistory()
		reset = true
	}
	u.resetPending = false

	var j Jitter
	switch {
	case prev.Technique.Enabled() && !u.active.Technique.Enabled():
		u.jitter.Reset()
	case u.active.Technique.Temporal():
		u.jitter.Generate(UpscalingFactor(input, u.active.OutputResolution))
		j = u.jitter.Apply(input)
		u.backend.SetJitter(j.Backend)
	}

	f := u.frameResult(diff, j)
	f.HistoryReset = reset
	return f, nil
}

func (u *Upscaler) frameResult(diff DiffFlags, j Jitter) Frame {
	return Frame{
		Index:            u.frame,
		Technique:        u.active.Technique,
		Status:           u.status,
		Diff:             diff,
		InputResolution:  u.active.InputResolution,
		OutputResolution: u.active.OutputResolution,
		Jitter:           j,
		ResourceOutdated: u.resources.Outdated(),
	}
}

func (u *Upscaler) validate(cfg Configuration) (Configuration, Status, string) {
	return u.rec.validate(cfg, u.active.Sharpness)
}

// commit pushes next to the backend and makes it active. A backend refusal
// goes through recovery once; if the recovered configuration is refused as
// well, the technique is forced off.
func (u *Upscaler) commit(prev, next Configuration) {
	st, msg := u.rec.commit(prev, next)
	if st.Failed() {
		next = u.recovery.resolve(NewStatusError(st, msg), &u.desired, u.validate)
		st, msg = u.rec.commit(prev, next)
		if st.Failed() {
			u.log().Warn("upscale: backend refused recovered configuration, disabling",
				"status", st, "message", msg)
			next = u.recovery.disable(st, &u.desired, u.validate)
			st = u.commitDisabled(prev, next)
		}
	}

	u.active = next
	u.desired.Sharpness = next.Sharpness
	u.desired.DynamicScale = next.DynamicScale
	u.status = st
	if next.Technique.Enabled() {
		u.recovery.recovered()
	}
	u.log().Info("upscale: configuration committed",
		"technique", next.Technique, "quality", next.Quality,
		"output", next.OutputResolution, "hdr", next.HDR, "status", st)
}

// commitDisabled pushes a disabled configuration. Disabling is defined to
// always succeed; a backend complaint is logged and ignored.
func (u *Upscaler) commitDisabled(prev, next Configuration) Status {
	if st, msg := u.rec.push(prev, next, true); st.Failed() {
		u.log().Warn("upscale: backend reported failure while disabling",
			"status", st, "message", msg)
	}
	return StatusNoUpscalerSet
}

// provision brings the slot buffers in line with the active configuration.
// An allocation failure is routed through recovery and provisioning is
// retried once with the recovered configuration; if that fails too, every
// buffer is released and the technique forced off.
func (u *Upscaler) provision(prev Configuration) error {
	err := u.updateResources(prev)
	if err == nil {
		return nil
	}

	st := StatusOf(err)
	if !st.Failed() || st == StatusUnknownError {
		st = StatusOutOfGPUMemory
	}
	u.log().Warn("upscale: buffer provisioning failed", "status", st, "error", err)
	next := u.recovery.resolve(NewStatusError(st, err.Error()), &u.desired, u.validate)
	u.commit(u.active, next)
	u.active.InputResolution, _ = u.policy.Resolve(u.active, 0)
	u.desired.InputResolution = u.active.InputResolution

	if err = u.updateResources(prev); err == nil {
		return nil
	}
	u.resources.ReleaseAll()
	next = u.recovery.disable(st, &u.desired, u.validate)
	u.commit(u.active, next)
	u.active.InputResolution = u.active.OutputResolution
	u.desired.InputResolution = u.active.InputResolution
	return fmt.Errorf("upscale: provisioning failed twice, upscaling disabled: %w", err)
}

func (u *Upscaler) updateResources(prev Configuration) error {
	cur := u.active
	render := cur.InputResolution
	if cur.Quality.Dynamic() {
		render = u.policy.Ceiling(cur)
	}
	dirty := ResourceDirty{
		Technique:   prev.Technique != cur.Technique,
		Quality:     prev.Quality != cur.Quality,
		HDR:         prev.HDR != cur.HDR,
		Resolution:  prev.OutputResolution != cur.OutputResolution,
		DynamicMode: prev.Quality.Dynamic() != cur.Quality.Dynamic(),
	}
	// Dynamic tiers allocate at the ceiling, so per-frame input changes
	// must not reallocate. Fixed tiers are caught by the snapshot check.
	_, err := u.resources.Update(dirty, ResourceRequirements{
		Technique: cur.Technique,
		Quality:   cur.Quality,
		HDR:       cur.HDR,
		Render:    render,
		Output:    cur.OutputResolution,
	})
	return err
}

// Execute runs the backend for f. It is a no-op when upscaling is off.
// When the frame's buffers were recreated, the backend Prepare step runs
// before the upscale. Failures are also queued for recovery at the next
// BeginFrame.
func (u *Upscaler) Execute(f Frame) error {
	if u.closed {
		return ErrClosed
	}
	if !f.Upscaling() || !u.active.Technique.Enabled() {
		return nil
	}
	if f.ResourceOutdated {
		if err := u.backend.Prepare(); err != nil {
			u.queueFailure(err)
			return fmt.Errorf("upscale: prepare: %w", err)
		}
	}
	if err := u.backend.Upscale(); err != nil {
		u.queueFailure(err)
		return fmt.Errorf("upscale: %w", err)
	}
	return nil
}

func (u *Upscaler) queueFailure(err error) {
	st := StatusOf(err)
	if !st.Failed() {
		st = StatusGenericError
	}
	u.ReportError(st, err.Error())
}

// Close releases every buffer, turns the backend technique off and
// unregisters the context ID.
func (u *Upscaler) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	u.resources.ReleaseAll()
	u.jitter.Reset()
	if u.active.Technique.Enabled() {
		u.backend.SetTechnique(TechniqueDisabled)
	}
	unregisterContext(u.id)
	return nil
}
