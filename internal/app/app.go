// Package app wires the window, renderer and viewing session into the
// interactive catalog viewer and runs its main loop.
package app

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/config"
	"github.com/Faultbox/meshvault/internal/engine/render"
	"github.com/Faultbox/meshvault/internal/engine/window"
	"github.com/Faultbox/meshvault/internal/logger"
	"github.com/Faultbox/meshvault/internal/viewer"
)

// App is the running viewer application.
type App struct {
	cfg      *config.Config
	win      *window.Window
	renderer *render.Renderer
	session  *viewer.Session

	// Model rotation: the locators given on the command line.
	models  []string
	current int

	pending *pendingLoad
}

// pendingLoad tracks an in-flight model load so decode failures can retry
// once through the transcode endpoint.
type pendingLoad struct {
	load    *viewer.Load
	locator string
	retried bool
}

// New creates the window, GL renderer and viewing session.
func New(cfg *config.Config, models []string) (*App, error) {
	win, err := window.New(window.Config{
		Title:      "meshvault",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := render.New(cfg.Viewer.Background)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	opts := viewer.DefaultOptions()
	opts.FOVDegrees = cfg.Viewer.FOVDegrees
	opts.TargetSize = cfg.Viewer.TargetSize
	opts.DistanceFactor = cfg.Viewer.DistanceFactor
	opts.Background = cfg.Viewer.Background

	session := viewer.New(renderer, opts)
	if err := session.Init(win); err != nil {
		renderer.Release()
		win.Close()
		return nil, fmt.Errorf("initializing session: %w", err)
	}

	return &App{
		cfg:      cfg,
		win:      win,
		renderer: renderer,
		session:  session,
		models:   models,
	}, nil
}

// Close tears the application down. Safe to call after a partial run.
func (a *App) Close() {
	if a.session != nil {
		a.session.Dispose()
	}
	if a.win != nil {
		a.win.Close()
	}
}

// Run shows the first model and loops until the window closes.
func (a *App) Run() error {
	if len(a.models) > 0 {
		a.showModel(a.current)
	}

	for {
		if !a.win.PollEvents(window.Input{
			Drag:  a.onDrag,
			Wheel: a.onWheel,
			Key:   a.onKey,
		}) {
			return nil
		}

		a.checkPending()

		a.win.RunFrame()
		a.win.SwapBuffers()
	}
}

func (a *App) onDrag(dx, dy float32) {
	if cam := a.session.Camera(); cam != nil {
		cam.HandleDrag(dx, dy)
	}
}

func (a *App) onWheel(delta float32) {
	if cam := a.session.Camera(); cam != nil {
		cam.HandleZoom(delta)
	}
}

func (a *App) onKey(code sdl.Scancode) {
	switch code {
	case sdl.SCANCODE_R:
		a.session.ResetView()
	case sdl.SCANCODE_TAB:
		if len(a.models) > 1 {
			a.current = (a.current + 1) % len(a.models)
			a.showModel(a.current)
		}
	}
}

func (a *App) showModel(i int) {
	locator := a.models[i]
	logger.Info("selecting model",
		zap.String("locator", locator),
		zap.Int("index", i))
	a.pending = &pendingLoad{
		load:    a.session.LoadModel(locator, formatHint(locator)),
		locator: locator,
	}
}

// checkPending observes the in-flight load without blocking. A failed load
// is retried once through the transcode endpoint, which serves a GLB
// rendition of the source file.
func (a *App) checkPending() {
	if a.pending == nil {
		return
	}
	select {
	case <-a.pending.load.Done():
	default:
		return
	}

	p := a.pending
	a.pending = nil

	err := p.load.Err()
	if err == nil || p.load.Stale() {
		return
	}

	endpoint := a.cfg.Transcode.Endpoint
	if p.retried || endpoint == "" {
		logger.Error("model load failed",
			zap.String("locator", p.locator), zap.Error(err))
		return
	}

	logger.Warn("decode failed, retrying via transcode endpoint",
		zap.String("locator", p.locator), zap.Error(err))
	a.pending = &pendingLoad{
		load:    a.session.LoadModel(transcodeURL(endpoint, p.locator), "glb"),
		locator: p.locator,
		retried: true,
	}
}

// transcodeURL builds the endpoint request for a GLB rendition of src.
func transcodeURL(endpoint, src string) string {
	return endpoint + "?src=" + url.QueryEscape(src)
}

// formatHint derives a decoder hint from the locator's extension. Unknown
// extensions fall through the decoder registry's own fallback.
func formatHint(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		locator = u.Path
	}
	return strings.TrimPrefix(filepath.Ext(locator), ".")
}
