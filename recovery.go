package upscale

import "log/slog"

// ErrorHandler is invoked once per failure occurrence. It may modify desired
// to request a different configuration; leaving it untouched gives up and
// the technique is disabled.
type ErrorHandler func(status Status, message string, desired *Configuration)

// RecoveryState is the state of the error recovery protocol.
type RecoveryState uint8

const (
	// RecoveryNominal means the active configuration is healthy.
	RecoveryNominal RecoveryState = iota

	// RecoveryPendingCallback means a failure is being resolved.
	RecoveryPendingCallback

	// RecoveryDisabled means the last failure forced the technique off.
	// Re-enabling a technique in the desired configuration leaves it.
	RecoveryDisabled
)

// String returns the state name.
func (s RecoveryState) String() string {
	switch s {
	case RecoveryNominal:
		return "Nominal"
	case RecoveryPendingCallback:
		return "PendingCallback"
	case RecoveryDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// validateFunc re-runs settings validation on a candidate configuration.
type validateFunc func(Configuration) (Configuration, Status, string)

// occurrence identifies a handled failure: the status together with the
// configuration the protocol settled on. The input resolution is left out
// because it is recomputed every frame.
type occurrence struct {
	status Status
	config Configuration
}

func newOccurrence(status Status, cfg Configuration) *occurrence {
	cfg.InputResolution = Resolution{}
	return &occurrence{status: status, config: cfg}
}

func (o *occurrence) matches(status Status, cfg Configuration) bool {
	cfg.InputResolution = Resolution{}
	return o != nil && o.status == status && o.config == cfg
}

// errorRecovery resolves failures from settings validation and from
// asynchronous render errors through the same handler.
type errorRecovery struct {
	state   RecoveryState
	handler ErrorHandler
	last    *occurrence
	log     *slog.Logger
}

// resolve runs the protocol for one failure and returns the configuration
// to commit. desired is updated in place: by the handler, or by forcing the
// technique off.
func (e *errorRecovery) resolve(failure *StatusError, desired *Configuration, validate validateFunc) Configuration {
	e.state = RecoveryPendingCallback

	if e.last.matches(failure.Status, *desired) {
		e.log.Warn("upscale: failure repeated without a configuration change, disabling",
			"status", failure.Status, "message", failure.Message)
		return e.disable(failure.Status, desired, validate)
	}

	if e.handler == nil {
		e.log.Warn("upscale: unresolved error, disabling upscaling",
			"status", failure.Status, "message", failure.Message,
			"recoverable", failure.Status.Recoverable())
		return e.disable(failure.Status, desired, validate)
	}

	before := *desired
	e.handler(failure.Status, failure.Message, desired)
	if *desired == before {
		e.log.Warn("upscale: error handler made no change, disabling upscaling",
			"status", failure.Status, "message", failure.Message)
		return e.disable(failure.Status, desired, validate)
	}

	cfg, st, msg := validate(*desired)
	if st.Failed() {
		e.log.Warn("upscale: configuration from error handler is invalid, disabling upscaling",
			"status", st, "message", msg)
		return e.disable(failure.Status, desired, validate)
	}

	*desired = cfg
	e.log.Info("upscale: error handler resolved failure",
		"status", failure.Status, "technique", cfg.Technique, "quality", cfg.Quality)
	e.state = RecoveryNominal
	e.last = newOccurrence(failure.Status, cfg)
	return cfg
}

// disable forces desired.Technique off. Disabling always validates.
func (e *errorRecovery) disable(status Status, desired *Configuration, validate validateFunc) Configuration {
	desired.Technique = TechniqueDisabled
	cfg, _, _ := validate(*desired)
	*desired = cfg
	e.state = RecoveryDisabled
	e.last = newOccurrence(status, cfg)
	return cfg
}

// recovered marks a successful commit of an enabled technique.
func (e *errorRecovery) recovered() {
	e.state = RecoveryNominal
}
