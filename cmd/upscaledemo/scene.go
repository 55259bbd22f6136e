package main

import (
	"image"
	"image/color"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend/software"
)

// sceneHost renders a procedural scene on the CPU and presents into frame.
// It runs on the legacy render path: the upscaler swaps its input color
// slot in as the render target.
type sceneHost struct {
	u      *upscale.Upscaler
	size   upscale.Resolution
	hdr    bool
	frame  *image.RGBA
	target draw.Image

	frameTime time.Duration
	elapsed   float64
}

func newSceneHost(u *upscale.Upscaler, size upscale.Resolution, hdr bool) *sceneHost {
	return &sceneHost{u: u, size: size, hdr: hdr}
}

// Resize changes the output resolution from the next frame on.
func (h *sceneHost) Resize(size upscale.Resolution) {
	if !size.IsZero() {
		h.size = size
	}
}

// Frame returns the presented image.
func (h *sceneHost) Frame() *image.RGBA { return h.frame }

func (h *sceneHost) BeforeFrame() upscale.FrameInfo {
	if h.frame == nil || h.frame.Rect.Dx() != int(h.size.Width) || h.frame.Rect.Dy() != int(h.size.Height) {
		h.frame = image.NewRGBA(image.Rect(0, 0, int(h.size.Width), int(h.size.Height)))
	}
	h.elapsed += h.frameTime.Seconds()
	return upscale.FrameInfo{Viewport: h.size, HDR: h.hdr, FrameTime: h.frameTime}
}

func (h *sceneHost) ConfigureResources(res *upscale.Resources, f upscale.Frame) error {
	upscale.Logger().Debug("demo: slot buffers recreated",
		"frame", f.Index, "input", res.Extent(upscale.SlotInputColor), "output", res.Extent(upscale.SlotOutputColor))
	return nil
}

func (h *sceneHost) SwapTarget(input upscale.Texture) {
	img, err := software.ImageOf(input)
	if err != nil {
		upscale.Logger().Warn("demo: input color slot is not a CPU image", "error", err)
		return
	}
	h.target = img
}

func (h *sceneHost) RestoreTarget() {
	h.target = nil
}

// RenderScene draws at f.InputResolution. Pixel (x, y) samples the scene
// at (x+0.5+p.x, y+0.5+p.y), the projection jitter of the frame.
func (h *sceneHost) RenderScene(f upscale.Frame) error {
	dst := draw.Image(h.frame)
	if h.target != nil {
		dst = h.target
	}
	w, ht := int(f.InputResolution.Width), int(f.InputResolution.Height)
	p := f.Jitter.Pixel
	for y := 0; y < ht; y++ {
		v := (float64(y) + 0.5 + p.Y) / float64(ht)
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5 + p.X) / float64(w)
			dst.Set(x, y, shade(u, v, h.elapsed))
		}
	}
	return nil
}

func (h *sceneHost) Present(_ upscale.Frame, upscaled bool) error {
	if !upscaled {
		return nil
	}
	out, err := software.ImageOf(h.u.Resources().Texture(upscale.SlotOutputColor))
	if err != nil {
		return err
	}
	draw.Draw(h.frame, h.frame.Bounds(), out, image.Point{}, draw.Src)
	return nil
}

// shade returns the scene color at normalized coordinates (u, v): a
// checkerboard under an orbiting disc.
func shade(u, v, t float64) color.RGBA {
	cx := 0.5 + 0.3*math.Cos(t)
	cy := 0.5 + 0.3*math.Sin(t)
	if (u-cx)*(u-cx)+(v-cy)*(v-cy) < 0.01 {
		return color.RGBA{R: 240, G: 180, B: 40, A: 255}
	}
	if (int(u*16)+int(v*9))%2 == 0 {
		return color.RGBA{R: 30, G: 40, B: 70, A: 255}
	}
	return color.RGBA{R: 200, G: 210, B: 230, A: 255}
}
