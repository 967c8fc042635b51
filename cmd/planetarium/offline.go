package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/taigrr/planetarium/pkg/config"
	"github.com/taigrr/planetarium/pkg/render"
)

// drawsPerFrame is the number of Draw calls in Scene.Draw.
const drawsPerFrame = 2

func workerCount(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// renderPNG draws a single frame and writes it to out.Path.
func renderPNG(ctx context.Context, scene *Scene, out config.OutputConfig, view View) error {
	start := time.Now()
	fb := render.NewFramebuffer(out.Width, out.Height)
	p := render.NewPipeline(fb, workerCount(out.Workers))

	bar := progressbar.Default(int64(drawsPerFrame*p.Bands()), "rendering")
	p.OnBand = func() { _ = bar.Add(1) }

	if err := scene.Draw(ctx, p, view); err != nil {
		return err
	}
	_ = bar.Finish()

	if err := fb.SavePNG(out.Path); err != nil {
		return fmt.Errorf("save %s: %w", out.Path, err)
	}
	slog.Info("rendered",
		"path", out.Path,
		"width", out.Width,
		"height", out.Height,
		"mode", view.Mode,
		"triangles", p.Stats.Triangles,
		"culled", p.Stats.TrianglesCulled,
		"fragments", p.Stats.Fragments,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
