// planetarium - procedural planet renderer
// Renders a noise-shaded planet over a starfield, either to a PNG or live in
// the terminal.
//
// Controls:
//
//	Arrows/WASD - Orbit the planet
//	+/-         - Zoom in/out
//	M           - Cycle shading mode (surface, wireframe, overlay)
//	L           - Toggle lighting
//	R           - Reset view
//	?           - Toggle HUD overlay
//	Q/Esc       - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/taigrr/planetarium/pkg/config"
	"github.com/taigrr/planetarium/pkg/shade"
)

// options holds the raw command-line values. Only flags the user actually
// set override the config file.
type options struct {
	configPath string
	mode       string
	output     string
	size       string
	model      string
	skybox     string
	light      string
	noLight    bool
	workers    int
	dumpConfig bool
	saveConfig string
	logLevel   string
	verbose    bool
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("planetarium", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML config (default ./"+config.DefaultFilename+" if present)")
	fs.StringVar(&opts.mode, "mode", "", "Shading mode: "+modeList())
	fs.StringVar(&opts.output, "o", "", "Render one frame to this PNG instead of starting the viewer")
	fs.StringVar(&opts.size, "size", "", "Output size WxH for -o")
	fs.StringVar(&opts.model, "model", "", "Load the planet from a .glb/.gltf file")
	fs.StringVar(&opts.skybox, "skybox", "", "Skybox image in a 4x3 horizontal cross layout")
	fs.StringVar(&opts.light, "light", "", "Light position x,y,z")
	fs.BoolVar(&opts.noLight, "no-light", false, "Disable the Lambert term")
	fs.IntVar(&opts.workers, "workers", 0, "Render goroutines (0 = GOMAXPROCS)")
	fs.BoolVar(&opts.dumpConfig, "dump-config", false, "Print the effective config as YAML and exit")
	fs.StringVar(&opts.saveConfig, "save-config", "", "Write the effective config to this YAML file and exit")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.verbose, "v", false, "Shorthand for -log-level debug")
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "planetarium - procedural planet renderer\n\n")
		fmt.Fprintf(out, "Usage: planetarium [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nControls:\n")
		fmt.Fprintf(out, "  Arrows/WASD - Orbit\n")
		fmt.Fprintf(out, "  +/-         - Zoom in/out\n")
		fmt.Fprintf(out, "  M           - Cycle shading mode\n")
		fmt.Fprintf(out, "  L           - Toggle lighting\n")
		fmt.Fprintf(out, "  R           - Reset view\n")
		fmt.Fprintf(out, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(out, "  Q/Esc       - Quit\n")
	}
	return fs
}

func main() {
	var opts options
	fs := newFlagSet(&opts)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger, err := newLogger(os.Stderr, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if done, err := exportConfig(os.Stdout, opts, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	} else if done {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	scene, err := NewScene(cfg)
	if err != nil {
		return err
	}
	view := View{Mode: cfg.ShadingMode(), Light: cfg.Lighting()}
	slog.Info("scene ready",
		"mesh", scene.Planet.Name,
		"triangles", scene.Planet.TriangleCount(),
		"mode", view.Mode,
	)
	if cfg.Output.Path != "" {
		return renderPNG(ctx, scene, cfg.Output, view)
	}
	return runViewer(ctx, scene, view, workerCount(cfg.Output.Workers))
}

// exportConfig handles -save-config and -dump-config. It reports whether
// the program should exit instead of rendering.
func exportConfig(w io.Writer, opts options, cfg config.Config) (bool, error) {
	if opts.saveConfig != "" {
		if err := config.Save(opts.saveConfig, cfg); err != nil {
			return true, err
		}
		slog.Info("config saved", "path", opts.saveConfig)
	}
	if opts.dumpConfig {
		return true, cfg.Encode(w)
	}
	return opts.saveConfig != "", nil
}

// modeList names every shading mode for usage text.
func modeList() string {
	modes := shade.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

func newLogger(w io.Writer, opts options) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if opts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// loadConfig reads the config file, then applies every flag the user set.
func loadConfig(fs *flag.FlagSet, opts options) (config.Config, error) {
	cfg := config.Default()
	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultFilename); err == nil {
			path = config.DefaultFilename
		}
	}
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
		slog.Debug("loaded config", "path", path)
	}

	var errs []error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = opts.mode
		case "o":
			cfg.Output.Path = opts.output
		case "size":
			w, h, err := parseSize(opts.size)
			if err != nil {
				errs = append(errs, fmt.Errorf("-size: %w", err))
				return
			}
			cfg.Output.Width, cfg.Output.Height = w, h
		case "model":
			cfg.Planet.Model = opts.model
		case "skybox":
			cfg.Skybox.Path = opts.skybox
		case "light":
			p, err := parseVec3(opts.light)
			if err != nil {
				errs = append(errs, fmt.Errorf("-light: %w", err))
				return
			}
			cfg.Light.Position = p
			cfg.Light.Enabled = true
		case "no-light":
			cfg.Light.Enabled = !opts.noLight
		case "workers":
			cfg.Output.Workers = opts.workers
		}
	})
	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// parseSize parses "WxH".
func parseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not WxH", config.ErrInvalidSize, s)
	}
	if width, err = strconv.Atoi(strings.TrimSpace(ws)); err != nil {
		return 0, 0, fmt.Errorf("%w: width: %w", config.ErrInvalidSize, err)
	}
	if height, err = strconv.Atoi(strings.TrimSpace(hs)); err != nil {
		return 0, 0, fmt.Errorf("%w: height: %w", config.ErrInvalidSize, err)
	}
	return width, height, nil
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("%q is not x,y,z", s)
	}
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return v, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = f
	}
	return v, nil
}

// modeLabel is the HUD name of a shading mode.
func modeLabel(m shade.Mode) string {
	return strings.ToUpper(m.String()[:1]) + m.String()[1:]
}
