// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/upscale"
)

// Host is one render pipeline integration. A Driver calls its hooks once
// per frame on the render thread, in order: BeforeFrame, ConfigureResources
// (only when slot buffers were recreated), RenderScene, Present.
type Host interface {
	// BeforeFrame runs before culling and returns the camera state.
	BeforeFrame() upscale.FrameInfo

	// ConfigureResources binds recreated slot buffers into the pipeline.
	ConfigureResources(res *upscale.Resources, f upscale.Frame) error

	// RenderScene runs the main color pass at f.InputResolution with
	// f.Jitter.Projection added to the projection matrix.
	RenderScene(f upscale.Frame) error

	// Present composites the frame. upscaled reports whether the output
	// color slot holds the result; otherwise the scene was rendered at
	// output resolution into the host's own target.
	Present(f upscale.Frame, upscaled bool) error
}

// TargetSwapper is implemented by hosts on upscale.RenderPathLegacy. The
// camera target is swapped for the input color slot around the main color
// pass.
type TargetSwapper interface {
	SwapTarget(input upscale.Texture)
	RestoreTarget()
}

// GraphRecorder is implemented by hosts on the graph render paths.
type GraphRecorder interface {
	// ImportTexture makes a slot buffer visible to the render graph.
	ImportTexture(slot upscale.Slot, tex upscale.Texture)

	// AddPass records a pass that runs after the main color pass.
	AddPass(name string, run func() error) error
}

// ErrHostPath is returned by NewDriver when the host lacks the hooks its
// render path needs.
var ErrHostPath = errors.New("render: host does not support render path")

// pathStrategy runs the color pass and upscale for one render path.
type pathStrategy interface {
	run(d *Driver, f upscale.Frame) (upscaled bool, err error)
}

// Driver sequences one Host and one Upscaler.
type Driver struct {
	host     Host
	u        *upscale.Upscaler
	strategy pathStrategy
}

// NewDriver selects the strategy for u's render path and checks that host
// implements the hooks it needs.
func NewDriver(host Host, u *upscale.Upscaler) (*Driver, error) {
	d := &Driver{host: host, u: u}
	switch p := u.RenderPath(); p {
	case upscale.RenderPathLegacy:
		sw, ok := host.(TargetSwapper)
		if !ok {
			return nil, fmt.Errorf("%w %s: missing TargetSwapper", ErrHostPath, p)
		}
		d.strategy = legacyPath{swapper: sw}
	case upscale.RenderPathScriptableGraph, upscale.RenderPathCompatibilityGraph:
		rec, ok := host.(GraphRecorder)
		if !ok {
			return nil, fmt.Errorf("%w %s: missing GraphRecorder", ErrHostPath, p)
		}
		d.strategy = &graphPath{recorder: rec, reimport: p == upscale.RenderPathCompatibilityGraph}
	default:
		return nil, fmt.Errorf("%w %s", ErrHostPath, p)
	}
	return d, nil
}

// Upscaler returns the driven Upscaler.
func (d *Driver) Upscaler() *upscale.Upscaler {
	return d.u
}

// Frame runs one frame. Upscale failures do not stop presentation: the
// frame is presented at native quality and the error, already queued for
// recovery at the next frame, is returned.
func (d *Driver) Frame() (upscale.Frame, error) {
	f, err := d.u.BeginFrame(d.host.BeforeFrame())
	if errors.Is(err, upscale.ErrClosed) {
		return f, err
	}
	if err != nil {
		upscale.Logger().Warn("render: frame setup degraded", "frame", f.Index, "error", err)
	}

	if f.ResourceOutdated {
		if err := d.host.ConfigureResources(d.u.Resources(), f); err != nil {
			return f, fmt.Errorf("render: configure resources: %w", err)
		}
	}

	upscaled, runErr := d.strategy.run(d, f)
	if runErr != nil {
		upscale.Logger().Warn("render: upscale failed, presenting native frame",
			"frame", f.Index, "technique", f.Technique, "error", runErr)
	}
	if err := d.host.Present(f, upscaled && runErr == nil); err != nil {
		return f, errors.Join(runErr, fmt.Errorf("render: present: %w", err))
	}
	return f, runErr
}

// Close closes the Upscaler.
func (d *Driver) Close() error {
	return d.u.Close()
}

// legacyPath swaps the camera target before and after the color pass.
type legacyPath struct {
	swapper TargetSwapper
}

func (p legacyPath) run(d *Driver, f upscale.Frame) (bool, error) {
	if !f.Upscaling() {
		return false, d.host.RenderScene(f)
	}
	p.swapper.SwapTarget(d.u.Resources().Texture(upscale.SlotInputColor))
	err := d.host.RenderScene(f)
	p.swapper.RestoreTarget()
	if err != nil {
		return false, err
	}
	return true, d.u.Execute(f)
}

// graphPath imports the slot buffers into the host's render graph and
// records the upscale as a pass. The scriptable graph keeps imports across
// frames and re-imports only after recreation; the compatibility graph
// works on per-frame render-target handles and re-imports every frame.
type graphPath struct {
	recorder GraphRecorder
	reimport bool
	imported bool
}

func (p *graphPath) run(d *Driver, f upscale.Frame) (bool, error) {
	if !f.Upscaling() {
		p.imported = false
		return false, d.host.RenderScene(f)
	}
	if p.reimport || f.ResourceOutdated || !p.imported {
		res := d.u.Resources()
		for _, slot := range upscale.Slots {
			p.recorder.ImportTexture(slot, res.Texture(slot))
		}
		p.imported = true
	}
	if err := d.host.RenderScene(f); err != nil {
		return false, err
	}
	err := p.recorder.AddPass("upscale", func() error {
		return d.u.Execute(f)
	})
	return err == nil, err
}
