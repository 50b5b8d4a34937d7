package viewer

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/engine/camera"
	"github.com/Faultbox/meshvault/internal/logger"
	"github.com/Faultbox/meshvault/internal/scene"
	"github.com/Faultbox/meshvault/pkg/math"
)

// State is the session lifecycle phase.
type State int

const (
	Uninitialized State = iota
	Active
	Disposed
)

// ErrNotActive is returned by operations invoked outside the Active state.
var ErrNotActive = errors.New("viewer: session not active")

// Session owns one viewing episode from Init to Dispose: the scene tree,
// camera, render loop scheduling, and the lifetime of every GPU resource
// the displayed model holds. All methods and internal callbacks run on the
// surface's main thread; only the decode step of a load runs elsewhere.
type Session struct {
	state    State
	opts     Options
	renderer Renderer
	surface  Surface

	cam     *camera.Orbit
	root    *scene.Node
	model   *scene.Node  // current model subtree, nil when none (at most one)
	frame   scene.Bounds // centered post-scale bounds of the current model
	tracker Tracker

	generation  uint64
	completions chan *loadResult

	// Guards accepting; the only session state the decode goroutine reads.
	deliverMu sync.Mutex
	accepting bool

	aspect   float32
	lastTick time.Time
	running  bool

	cancelResize func()
}

// New creates a session in the Uninitialized state. The renderer is owned
// by the session once Init succeeds and is released on Dispose.
func New(renderer Renderer, opts Options) *Session {
	return &Session{
		renderer:    renderer,
		opts:        opts,
		completions: make(chan *loadResult, completionBacklog),
		accepting:   true,
	}
}

// Init binds the session to a render surface, builds the scene, and starts
// the render loop. A session that is already Active must be disposed first;
// there is no implicit re-init.
func (s *Session) Init(surface Surface) error {
	if s.state == Active {
		return errors.New("viewer: session already active, dispose first")
	}
	if s.state == Disposed {
		return errors.New("viewer: session disposed")
	}

	s.surface = surface
	s.root = buildSceneRoot()
	s.cam = camera.NewOrbit()

	w, h := surface.Size()
	if w > 0 && h > 0 {
		s.aspect = float32(w) / float32(h)
		s.renderer.Resize(w, h)
	} else {
		s.aspect = 1
	}
	s.cancelResize = surface.OnResize(s.handleResize)

	s.state = Active
	s.running = true
	s.ResetView()
	surface.RequestFrame(s.tick)

	logger.Info("viewer session initialized",
		zap.Int("width", w), zap.Int("height", h))
	return nil
}

// buildSceneRoot assembles the fixed furniture every session starts with:
// ambient fill, two directional key lights, and the ground grid.
func buildSceneRoot() *scene.Node {
	root := scene.NewGroup("session")
	root.Attach(scene.NewLight("ambient", scene.Light{
		Kind:      scene.LightAmbient,
		Color:     [3]float32{1, 1, 1},
		Intensity: 0.4,
	}))
	root.Attach(scene.NewLight("key", scene.Light{
		Kind:      scene.LightDirectional,
		Color:     [3]float32{1, 1, 1},
		Intensity: 0.6,
		Direction: math.Vec3{X: 0.5, Y: 1, Z: 0.5}.Normalize(),
	}))
	root.Attach(scene.NewLight("fill", scene.Light{
		Kind:      scene.LightDirectional,
		Color:     [3]float32{1, 1, 1},
		Intensity: 0.3,
		Direction: math.Vec3{X: -0.5, Y: 0.8, Z: -0.5}.Normalize(),
	}))
	root.Attach(scene.NewHelper("grid"))
	return root
}

// ResetView recomputes the camera pose: framed on the current model when
// one is present, otherwise the fixed default pose. Synchronous.
func (s *Session) ResetView() {
	if s.state != Active {
		return
	}
	var f Framing
	if s.model != nil {
		f = frameBounds(s.frame, s.opts)
	} else {
		f = defaultFraming(s.opts)
	}
	s.cam.LookFrom(f.Position, f.Target)
}

// Camera exposes the orbit camera for input handling while Active.
func (s *Session) Camera() *camera.Orbit {
	return s.cam
}

// State reports the lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Dispose stops the render loop, releases the current model and all GPU
// state, and transitions to Disposed. Idempotent; a second call is a no-op.
func (s *Session) Dispose() {
	if s.state != Active {
		return
	}
	s.state = Disposed
	s.running = false
	s.abandonPending()

	if s.cancelResize != nil {
		s.cancelResize()
		s.cancelResize = nil
	}
	s.detachModel()
	s.renderer.Release()
	s.root = nil
	s.cam = nil
	s.surface = nil

	logger.Info("viewer session disposed",
		zap.Int("model disposals", s.tracker.Disposals()))
}

// detachModel removes the current model from the scene and releases its
// resources as one step; no state is observable where the subtree is
// attached but orphaned.
func (s *Session) detachModel() {
	if s.model == nil {
		return
	}
	s.root.Detach(s.model)
	s.tracker.DisposeSubtree(s.model)
	s.model = nil
	s.frame = scene.Bounds{}
}

// ModelDisposals reports how many model subtrees this session has released.
func (s *Session) ModelDisposals() int {
	return s.tracker.Disposals()
}
