package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/planetarium/pkg/render"
)

const (
	targetFPS  = 30
	orbitStep  = 0.15 // radians per key press
	zoomFactor = 1.15
	maxPitch   = 1.45
)

// SpringAxis eases Position toward Target with a critically damped spring.
type SpringAxis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

// NewSpringAxis creates an axis at rest at v.
func NewSpringAxis(v float64) SpringAxis {
	return SpringAxis{
		Position: v,
		Target:   v,
		// Frequency 6.0 = quick but smooth, damping 1.0 = no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(targetFPS), 6.0, 1.0),
	}
}

// Update advances the spring by one frame.
func (a *SpringAxis) Update() {
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
}

// Settled reports whether the axis is at rest on its target.
func (a *SpringAxis) Settled() bool {
	return math.Abs(a.Position-a.Target) < 1e-4 && math.Abs(a.velocity) < 1e-4
}

// OrbitState holds the sprung camera orbit.
type OrbitState struct {
	Yaw, Pitch, Distance SpringAxis
	home                 [3]float64
}

// NewOrbitState starts the orbit at the camera's current placement.
func NewOrbitState(cam *render.Camera) *OrbitState {
	return &OrbitState{
		Yaw:      NewSpringAxis(cam.Yaw),
		Pitch:    NewSpringAxis(cam.Pitch),
		Distance: NewSpringAxis(cam.Distance),
		home:     [3]float64{cam.Yaw, cam.Pitch, cam.Distance},
	}
}

// Reset eases back to the starting placement.
func (o *OrbitState) Reset() {
	o.Yaw.Target, o.Pitch.Target, o.Distance.Target = o.home[0], o.home[1], o.home[2]
}

// Orbit moves the yaw and pitch targets.
func (o *OrbitState) Orbit(dYaw, dPitch float64) {
	o.Yaw.Target += dYaw
	o.Pitch.Target = max(-maxPitch, min(maxPitch, o.Pitch.Target+dPitch))
}

// Zoom scales the distance target.
func (o *OrbitState) Zoom(factor float64) {
	o.Distance.Target = max(1.2, min(20, o.Distance.Target*factor))
}

// Settled reports whether every axis is at rest.
func (o *OrbitState) Settled() bool {
	return o.Yaw.Settled() && o.Pitch.Settled() && o.Distance.Settled()
}

// Update advances all axes and applies them to cam.
func (o *OrbitState) Update(cam *render.Camera) {
	o.Yaw.Update()
	o.Pitch.Update()
	o.Distance.Update()
	cam.SetOrbit(o.Distance.Position, o.Yaw.Position, o.Pitch.Position)
}

// HUD renders an overlay with scene info and controls
type HUD struct {
	name      string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
	visible   bool
}

// NewHUD creates a new HUD
func NewHUD(name string, polyCount int) *HUD {
	return &HUD{
		name:      name,
		polyCount: polyCount,
		fpsTime:   time.Now(),
		visible:   true,
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD overlay directly to the terminal
func (h *HUD) Render(width, height int, view View) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// Always clear the HUD rows (so toggling off works)
	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !h.visible {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)
	titleCol := max((width-len(h.name)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.name, reset)
	polyCol := max(width-16, 1)
	fmt.Printf("%s%s%s%s %d tris %s", moveTo(1, polyCol), bgBlack, fgCyan, bold, h.polyCount, reset)

	light := "[ ]"
	if view.Light.Enabled {
		light = "[✓]"
	}
	fmt.Printf("%s%s%s M: %s  L: %s light %s", moveTo(height, 1), bgBlack, fgWhite, modeLabel(view.Mode), light, reset)
}

// runViewer renders frames to the terminal until ctx is done or the user
// quits. Input events are handled on the render goroutine between frames.
func runViewer(ctx context.Context, scene *Scene, view View, workers int) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	termRenderer := render.NewTerminalRenderer(term, width, height)
	fbWidth, fbHeight := termRenderer.FramebufferSize()
	pipeline := render.NewPipeline(render.NewFramebuffer(fbWidth, fbHeight), workers)

	orbit := NewOrbitState(scene.Camera)
	hud := NewHUD(scene.Planet.Name, scene.Planet.TriangleCount())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Frames are only redrawn after input or while the orbit is moving.
	dirty := true
	handle := func(ev uv.Event) {
		dirty = true
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			width, height = ev.Width, ev.Height
			term.Erase()
			term.Resize(width, height)
			termRenderer = render.NewTerminalRenderer(term, width, height)
			fbWidth, fbHeight = termRenderer.FramebufferSize()
			pipeline.Resize(render.NewFramebuffer(fbWidth, fbHeight))

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "q", "ctrl+c"):
				cancel()
			case ev.MatchString("w", "up"):
				orbit.Orbit(0, orbitStep)
			case ev.MatchString("s", "down"):
				orbit.Orbit(0, -orbitStep)
			case ev.MatchString("a", "left"):
				orbit.Orbit(-orbitStep, 0)
			case ev.MatchString("d", "right"):
				orbit.Orbit(orbitStep, 0)
			case ev.MatchString("+", "="):
				orbit.Zoom(1 / zoomFactor)
			case ev.MatchString("-", "_"):
				orbit.Zoom(zoomFactor)
			case ev.MatchString("m"):
				view.Mode = view.Mode.Next()
			case ev.MatchString("l"):
				view.Light.Enabled = !view.Light.Enabled
			case ev.MatchString("r"):
				orbit.Reset()
			case ev.MatchString("?", "shift+/"):
				hud.visible = !hud.visible
			}
		}
	}

	frame := time.NewTicker(time.Second / targetFPS)
	defer frame.Stop()
	events := term.Events()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			handle(ev)
			continue
		case <-frame.C:
		}

		if !dirty && orbit.Settled() {
			continue
		}
		dirty = false

		orbit.Update(scene.Camera)
		if err := scene.Draw(ctx, pipeline, view); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		termRenderer.Render(pipeline.Framebuffer())
		if err := termRenderer.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, view)
	}
}
