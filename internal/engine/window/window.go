// Package window handles SDL2 window and OpenGL context creation, and
// surfaces frame scheduling and resize notifications to the viewer.
package window

import (
	"fmt"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Input receives user interaction from the event loop. Nil callbacks are
// skipped.
type Input struct {
	// Drag is called with mouse motion deltas while the left button is held.
	Drag func(dx, dy float32)
	// Wheel is called with vertical scroll steps.
	Wheel func(delta float32)
	// Key is called with the pressed key's scancode.
	Key func(code sdl.Scancode)
}

// Window wraps an SDL2 window and OpenGL context.
type Window struct {
	config    Config
	sdlWindow *sdl.Window
	glContext sdl.GLContext

	frameQueue []func(now time.Time)

	resizeSubs map[int]func(w, h int)
	nextSubID  int

	dragging bool
}

// New creates a window with an OpenGL 4.1 core context.
func New(cfg Config) (*Window, error) {
	w := &Window{
		config:     cfg,
		resizeSubs: make(map[int]func(int, int)),
	}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Set OpenGL attributes BEFORE creating window.
	// 4.1 core profile is the max supported on macOS.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if cfg.VSync {
		if err := sdl.GLSetSwapInterval(1); err != nil {
			logger.Warn("failed to enable VSync", zap.Error(err))
		}
	} else {
		sdl.GLSetSwapInterval(0)
	}

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)

	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	logger.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// SwapBuffers swaps the OpenGL buffers.
func (w *Window) SwapBuffers() {
	w.sdlWindow.GLSwap()
}

// Size returns the drawable size in pixels, which differs from the window
// size on high-DPI displays.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}

// RequestFrame queues fn to run on the next RunFrame call.
func (w *Window) RequestFrame(fn func(now time.Time)) {
	w.frameQueue = append(w.frameQueue, fn)
}

// RunFrame runs every queued frame callback once. Callbacks queued while
// running are held for the next frame.
func (w *Window) RunFrame() {
	queued := w.frameQueue
	w.frameQueue = nil
	now := time.Now()
	for _, fn := range queued {
		fn(now)
	}
}

// OnResize subscribes to drawable size changes. The returned cancel removes
// the subscription.
func (w *Window) OnResize(fn func(width, height int)) func() {
	id := w.nextSubID
	w.nextSubID++
	w.resizeSubs[id] = fn
	return func() {
		delete(w.resizeSubs, id)
	}
}

// PollEvents drains the SDL event queue, dispatching input to in and resize
// events to subscribers. Returns false when the window should close.
func (w *Window) PollEvents(in Input) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return false

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				width, height := w.Size()
				for _, sub := range w.resizeSubs {
					sub(width, height)
				}
			}

		case *sdl.MouseButtonEvent:
			if e.Button == sdl.BUTTON_LEFT {
				w.dragging = e.State == sdl.PRESSED
			}

		case *sdl.MouseMotionEvent:
			if w.dragging && in.Drag != nil {
				in.Drag(float32(e.XRel), float32(e.YRel))
			}

		case *sdl.MouseWheelEvent:
			if in.Wheel != nil {
				in.Wheel(float32(e.Y))
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN {
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					return false
				}
				if in.Key != nil {
					in.Key(e.Keysym.Scancode)
				}
			}
		}
	}
	return true
}
