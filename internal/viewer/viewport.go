package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshvault/internal/logger"
)

// handleResize reacts to surface size changes: updates the projection
// aspect and resizes the render target. Zero-size notifications (hidden or
// collapsed surface) are ignored so the projection never degenerates. Runs
// synchronously inside the surface's notification dispatch.
func (s *Session) handleResize(w, h int) {
	if s.state != Active {
		return
	}
	if w <= 0 || h <= 0 {
		logger.Debug("ignoring zero-size surface notification",
			zap.Int("width", w), zap.Int("height", h))
		return
	}
	s.aspect = float32(w) / float32(h)
	s.renderer.Resize(w, h)
}
