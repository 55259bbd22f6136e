// Package upscale is the runtime state core of a temporal/spatial image
// upscaler.
//
// # Overview
//
// A render host renders the scene at a lower input resolution and asks a
// backend (FSR1, FSR2, DLSS, XeSS or the software reference) to reconstruct
// the output resolution. This package owns everything between the host and
// the backend that must stay consistent frame to frame:
//
//   - settings reconciliation between a desired and an active Configuration
//   - input resolution policy for fixed and dynamic quality tiers
//   - lifecycle of the four GPU buffers shared with the backend
//   - the sub-pixel jitter sequence used by temporal techniques
//   - one-shot error recovery through an ErrorHandler
//
// # Quick Start
//
//	b, _ := backend.Default()
//	u, err := upscale.New(b, upscale.WithAllocator(alloc))
//	if err != nil {
//	    return err
//	}
//	defer u.Close()
//
//	for each frame {
//	    f, err := u.BeginFrame(upscale.FrameInfo{Viewport: vp, FrameTime: dt})
//	    // render at f.InputResolution with f.Jitter.Projection applied
//	    err = u.Execute(f)
//	}
//
// # Frame Order
//
// BeginFrame runs reconciliation, resolution, resource management and
// jitter in that order. Resource management needs the committed input
// resolution, and jitter needs the committed technique and factor.
//
// # Error Recovery
//
// Validation failures, backend refusals, allocation failures and errors the
// backend reports asynchronously (DispatchError, ReportError) are all routed
// through the same handler. The handler may rewrite the desired
// configuration once per failure; if it does not, or the same failure
// repeats for the same configuration, the technique falls back to
// TechniqueDisabled, which is always valid.
//
// # Packages
//
//   - backend: name-keyed backend registry
//   - backend/software: image-based reference backend
//   - backend/native: dynamic-library adapter for vendor SDKs
//   - render: host integration and HAL texture allocation
//   - rules: expression-based error handlers
package upscale
