//go:build !headless

package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/render"
)

// game drives one upscaled frame per ebiten tick.
//
// Keys: 0-4 select Disabled, FSR1, FSR2, DLSS, XeSS; Q cycles the quality
// tier; R resets the history.
type game struct {
	driver *render.Driver
	host   *sceneHost
	window *ebiten.Image
	last   time.Time
}

var techniqueKeys = map[ebiten.Key]upscale.Technique{
	ebiten.Key0: upscale.TechniqueDisabled,
	ebiten.Key1: upscale.TechniqueFSR1,
	ebiten.Key2: upscale.TechniqueFSR2,
	ebiten.Key3: upscale.TechniqueDLSS,
	ebiten.Key4: upscale.TechniqueXeSS,
}

func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	u := g.driver.Upscaler()
	for key, t := range techniqueKeys {
		if inpututil.IsKeyJustPressed(key) {
			u.Desired().Technique = t
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		d := u.Desired()
		d.Quality = (d.Quality + 1) % (upscale.QualityUltraPerformance + 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		u.ResetHistory()
	}

	now := time.Now()
	if !g.last.IsZero() {
		g.host.frameTime = now.Sub(g.last)
	}
	g.last = now

	f, err := g.driver.Frame()
	if err != nil {
		upscale.Logger().Warn("demo: frame failed", "frame", f.Index, "error", err)
	}
	ebiten.SetWindowTitle(f.Technique.String() + " " + u.Active().Quality.String() +
		" " + f.InputResolution.String() + " -> " + f.OutputResolution.String())
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	frame := g.host.Frame()
	if frame == nil {
		return
	}
	b := frame.Bounds()
	if g.window == nil || g.window.Bounds() != b {
		g.window = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.window.WritePixels(frame.Pix)
	screen.DrawImage(g.window, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.host.Resize(upscale.Res(uint32(outsideWidth), uint32(outsideHeight)))
	return outsideWidth, outsideHeight
}

func runWindow(d *render.Driver, host *sceneHost) error {
	ebiten.SetWindowSize(int(host.size.Width), int(host.size.Height))
	ebiten.SetWindowTitle("upscaledemo")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetWindowClosingHandled(true)
	return ebiten.RunGame(&game{driver: d, host: host})
}
