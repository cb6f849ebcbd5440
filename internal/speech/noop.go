package speech

import (
	"github.com/hammamikhairi/ottovoice/internal/domain"
	"github.com/hammamikhairi/ottovoice/internal/logger"
)

// Compile-time interface check.
var _ domain.AudioPlayer = (*NoOpPlayer)(nil)

// NoOpPlayer discards audio. Used when voice output is disabled or no
// audio device is available. Clips "end" immediately.
type NoOpPlayer struct {
	log *logger.Logger
}

// NewNoOpPlayer creates a player that plays nothing.
func NewNoOpPlayer(log *logger.Logger) *NoOpPlayer {
	return &NoOpPlayer{log: log}
}

// Play drops the audio and reports the clip as ended.
func (n *NoOpPlayer) Play(audio []byte, onEnded func()) error {
	n.log.Debug("speech no-op: would play %d bytes", len(audio))
	if onEnded != nil {
		go onEnded()
	}
	return nil
}

// Stop does nothing.
func (n *NoOpPlayer) Stop() {}
