package viewer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/decode"
	"github.com/Faultbox/meshvault/internal/logger"
	"github.com/Faultbox/meshvault/internal/scene"
)

// completionBacklog bounds the completions channel. Loads outnumbering it
// before a single frame runs would be pathological; overflow fails the load
// rather than blocking the decode goroutine.
const completionBacklog = 64

// Load is the completion of one loadModel call. Callers may block on Done
// and then inspect Err and Stale.
type Load struct {
	done  chan struct{}
	err   error
	stale bool
}

// Done is closed once the load has settled: applied, failed, or discarded
// as stale.
func (l *Load) Done() <-chan struct{} {
	return l.done
}

// Err reports the load failure, valid after Done is closed. A stale load
// reports no error.
func (l *Load) Err() error {
	return l.err
}

// Stale reports whether the result was discarded because a newer load
// superseded this one.
func (l *Load) Stale() bool {
	return l.stale
}

func (l *Load) settle(err error, stale bool) {
	l.err = err
	l.stale = stale
	close(l.done)
}

func failedLoad(err error) *Load {
	l := &Load{done: make(chan struct{})}
	l.settle(err, false)
	return l
}

// loadResult carries a finished decode back to the render loop.
type loadResult struct {
	generation uint64
	node       *scene.Node
	err        error
	load       *Load
}

// LoadModel replaces the displayed model with the one behind locator.
// The current model is detached and disposed synchronously before the new
// decode starts; the decode itself runs off-thread and its result is
// applied on a later render tick. A newer LoadModel call supersedes any
// in-flight one: the superseded result settles as stale and never touches
// the scene.
func (s *Session) LoadModel(locator, formatHint string) *Load {
	if s.state != Active {
		return failedLoad(ErrNotActive)
	}

	s.generation++
	gen := s.generation
	s.detachModel()

	decoder, tag := decode.Lookup(formatHint)
	logger.Info("loading model",
		zap.String("locator", locator),
		zap.String("format", tag),
		zap.Uint64("generation", gen))

	load := &Load{done: make(chan struct{})}
	go func() {
		node, err := fetchAndDecode(decoder, locator)
		s.deliver(&loadResult{generation: gen, node: node, err: err, load: load})
	}()
	return load
}

// deliver hands a finished decode to the render loop. Once the session has
// stopped accepting, the result settles as stale right here so a caller
// blocked on Done is never stranded by a dispose.
func (s *Session) deliver(r *loadResult) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if !s.accepting {
		r.load.settle(nil, true)
		return
	}
	select {
	case s.completions <- r:
	default:
		r.load.settle(errors.New("viewer: completion backlog full"), false)
	}
}

// abandonPending stops accepting completions and settles everything already
// queued as stale. Runs once, from Dispose.
func (s *Session) abandonPending() {
	s.deliverMu.Lock()
	s.accepting = false
	s.deliverMu.Unlock()

	for {
		select {
		case r := <-s.completions:
			r.load.settle(nil, true)
		default:
			return
		}
	}
}

func fetchAndDecode(decoder decode.Decoder, locator string) (*scene.Node, error) {
	src, err := decode.Fetch(context.Background(), locator)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(src)
}

// drainCompletions applies every decode result that arrived since the last
// tick. Runs on the render loop.
func (s *Session) drainCompletions() {
	for {
		select {
		case r := <-s.completions:
			s.applyResult(r)
		default:
			return
		}
	}
}

func (s *Session) applyResult(r *loadResult) {
	// Results from a superseded generation (or a disposed session) are
	// discarded without touching the scene. No GPU resources exist yet at
	// this point, so discarding is free.
	if r.generation != s.generation || s.state != Active {
		r.load.settle(nil, true)
		logger.Debug("discarding stale load result",
			zap.Uint64("generation", r.generation))
		return
	}
	if r.err != nil {
		r.load.settle(r.err, false)
		logger.Warn("model load failed", zap.Error(r.err))
		return
	}

	placement, frame, degenerate := normalizePlacement(scene.TreeBounds(r.node), s.opts.TargetSize)
	if degenerate {
		logger.Warn("degenerate model bounds, displaying unnormalized")
	}
	r.node.Translation = placement.Translation
	r.node.Scale = placement.Scale

	if err := s.renderer.Upload(r.node); err != nil {
		r.load.settle(err, false)
		logger.Error("mesh upload failed", zap.Error(err))
		return
	}

	s.root.Attach(r.node)
	s.model = r.node
	s.frame = frame
	s.ResetView()
	r.load.settle(nil, false)
}
