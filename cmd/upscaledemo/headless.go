package main

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/render"
)

// runHeadless renders frames with a fixed frame time and writes the last
// presented frame to path.
func runHeadless(d *render.Driver, host *sceneHost, frames int, frameTime time.Duration, path string) error {
	host.frameTime = frameTime
	for i := 0; i < frames; i++ {
		f, err := d.Frame()
		if err != nil {
			upscale.Logger().Warn("demo: frame failed", "frame", f.Index, "error", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(file, host.Frame()); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return file.Close()
}
