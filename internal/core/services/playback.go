package services

import (
	"sync"

	"watchparty/internal/core/domain"

	"go.uber.org/zap"
)

// PlaybackSync holds a client's view of the shared playback clock. Conflict
// handling is last-writer-wins on lastUpdated; only the host issues playback
// commands by policy, but nothing enforces that, so two clients both believing
// themselves host resolve on wall clocks and can visibly rubber-band. Known
// limitation, kept as-is.
type PlaybackSync struct {
	mu      sync.Mutex
	current domain.PlaybackState
	logger  *zap.SugaredLogger
}

func NewPlaybackSync(logger *zap.SugaredLogger) *PlaybackSync {
	return &PlaybackSync{logger: logger}
}

// Apply adopts an incoming state only if it is strictly newer than the one
// held; anything else is discarded as stale and the call is a no-op. Returns
// whether the state was adopted.
func (p *PlaybackSync) Apply(in domain.PlaybackState) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !in.NewerThan(p.current) {
		return false
	}

	p.current = in
	p.logger.Debugw("playback adopted",
		"current_time", in.CurrentTime,
		"is_playing", in.IsPlaying,
		"updated_by", in.UpdatedBy,
	)
	return true
}

// Current returns the playback state this client holds.
func (p *PlaybackSync) Current() domain.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
