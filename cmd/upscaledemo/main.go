// Command upscaledemo renders a procedural scene through the upscaler with
// the software backend. It opens a window by default; -frames renders
// headless and writes the last frame as PNG.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/upscale"
	"github.com/gogpu/upscale/backend"
	"github.com/gogpu/upscale/backend/software"
	"github.com/gogpu/upscale/render"
	"github.com/gogpu/upscale/rules"

	_ "github.com/gogpu/upscale/backend/native"
)

func main() {
	var (
		width     = flag.Int("width", 1280, "output width")
		height    = flag.Int("height", 720, "output height")
		technique = flag.String("technique", "FSR2", "technique: Disabled, FSR1, FSR2, DLSS, XeSS")
		quality   = flag.String("quality", "Quality", "quality tier, e.g. Performance or DynamicAuto")
		sharpness = flag.Float64("sharpness", 0.5, "sharpness in [0, 1]")
		hdr       = flag.Bool("hdr", false, "render to an HDR target")
		frames    = flag.Int("frames", 0, "render this many frames headless and exit")
		output    = flag.String("output", "upscaledemo.png", "PNG written after a headless run")
		fallback  = flag.Bool("rules", true, "install the default fallback rules")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	upscale.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := configuration(*technique, *quality, float32(*sharpness), *hdr)
	if err != nil {
		log.Fatal(err)
	}
	if *width <= 0 || *height <= 0 {
		log.Fatalf("invalid size %dx%d", *width, *height)
	}
	size := upscale.Res(uint32(*width), uint32(*height))

	b, err := softwareBackend()
	if err != nil {
		log.Fatal(err)
	}

	opts := []upscale.Option{
		upscale.WithAllocator(b.Allocator()),
		upscale.WithConfiguration(cfg),
		upscale.WithRenderPath(upscale.RenderPathLegacy),
		upscale.WithRefreshRate(60),
	}
	if *fallback {
		set, err := rules.Compile(rules.DefaultRules()...)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, upscale.WithErrorHandler(set.Handler()))
	}
	u, err := upscale.New(b, opts...)
	if err != nil {
		log.Fatal(err)
	}

	host := newSceneHost(u, size, *hdr)
	d, err := render.NewDriver(host, u)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	if *frames > 0 {
		if err := runHeadless(d, host, *frames, time.Second/60, *output); err != nil {
			log.Fatal(err)
		}
		log.Printf("Demo saved to %s (%s)\n", *output, size)
		return
	}
	if err := runWindow(d, host); err != nil {
		log.Fatal(err)
	}
}

// configuration builds the desired configuration from flag values.
func configuration(technique, quality string, sharpness float32, hdr bool) (upscale.Configuration, error) {
	cfg := upscale.DefaultConfiguration()
	t, ok := upscale.ParseTechnique(technique)
	if !ok {
		return cfg, fmt.Errorf("unknown technique %q", technique)
	}
	q, ok := upscale.ParseQuality(quality)
	if !ok {
		return cfg, fmt.Errorf("unknown quality %q", quality)
	}
	cfg.Technique, cfg.Quality, cfg.Sharpness, cfg.HDR = t, q, sharpness, hdr
	return cfg, nil
}

// softwareBackend returns the registered software backend. The demo draws
// into CPU images, so a native backend is reported and skipped.
func softwareBackend() (*software.Backend, error) {
	if b, err := backend.Default(); err == nil && b.Name() != backend.BackendSoftware {
		upscale.Logger().Info("native backend available; the demo host uses the software backend",
			"backends", backend.Available())
	}
	b, err := backend.Get(backend.BackendSoftware)
	if err != nil {
		return nil, err
	}
	sb, ok := b.(*software.Backend)
	if !ok {
		return nil, fmt.Errorf("backend %s is %T", b.Name(), b)
	}
	return sb, nil
}
