package services

import (
	"context"
	"sync"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/pkg/utils"

	"go.uber.org/zap"
)

// SessionConfig shapes one client's view of a room.
type SessionConfig struct {
	RoomID            domain.RoomID
	UserID            domain.UserID
	PresenceThreshold time.Duration
	MaxNotifications  int
	HeartbeatInterval time.Duration
	TTL               time.Duration // zero means domain.DefaultRoomTTL
}

// Session is the in-memory room projection a single client holds, rebuilt
// from backend change callbacks. It drives presence diffing and playback
// adoption; it never shares memory with other clients. The store is the
// only synchronization medium.
type Session struct {
	backend ports.Backend
	cfg     SessionConfig

	presence *PresenceTracker
	playback *PlaybackSync

	mu      sync.RWMutex
	room    *domain.Room
	lastErr error

	unsub     ports.Unsubscribe
	stop      chan struct{}
	closeOnce sync.Once

	logger *zap.SugaredLogger
}

func NewSession(backend ports.Backend, cfg SessionConfig, metrics *MetricsService, logger *zap.SugaredLogger) *Session {
	return &Session{
		backend:  backend,
		cfg:      cfg,
		presence: NewPresenceTracker(cfg.UserID, cfg.PresenceThreshold, cfg.MaxNotifications, metrics, logger),
		playback: NewPlaybackSync(logger),
		stop:     make(chan struct{}),
		logger:   logger,
	}
}

// Start subscribes to the room and begins heartbeating. The subscription
// delivers the current record immediately, so a joining client adopts the
// room's playback clock without issuing a write of its own. A room past its
// TTL is rejected up front; expiry is computed, the record may still exist.
func (s *Session) Start(ctx context.Context) error {
	ttl := s.cfg.TTL
	if ttl <= 0 {
		ttl = domain.DefaultRoomTTL
	}
	room, err := s.backend.GetRoom(ctx, s.cfg.RoomID)
	if err != nil {
		return err
	}
	if room.IsExpired(utils.Now(), ttl) {
		return domain.ErrRoomExpired
	}

	unsub, err := s.backend.Subscribe(ctx, s.cfg.RoomID, s.onChange)
	if err != nil {
		return err
	}
	s.unsub = unsub

	go s.heartbeatLoop(ctx)
	return nil
}

func (s *Session) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.backend.Heartbeat(ctx, s.cfg.RoomID, s.cfg.UserID); err != nil {
				s.logger.Warnw("heartbeat dropped", "room_id", s.cfg.RoomID, "error", err)
			}
		}
	}
}

func (s *Session) onChange(room *domain.Room, err error) {
	if err != nil {
		// Stale-but-available: the last known projection stays usable.
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.logger.Warnw("subscription fault", "room_id", s.cfg.RoomID, "error", err)
		return
	}

	room.RecomputeHostFlags()
	now := utils.Now()
	s.presence.Observe(room, now)
	s.playback.Apply(room.Playback)

	s.mu.Lock()
	s.room = room
	s.lastErr = nil
	s.mu.Unlock()
}

// Snapshot returns the last room state this client observed, which may be
// stale after a subscription fault (see Err).
func (s *Session) Snapshot() *domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// Err reports the most recent subscription fault, or nil while healthy.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Playback returns the playback state this client holds after LWW filtering.
func (s *Session) Playback() domain.PlaybackState {
	return s.playback.Current()
}

// IsHost reports whether the local user currently holds playback authority.
func (s *Session) IsHost() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room != nil && s.room.HostID == s.cfg.UserID
}

// Timeline merges persisted messages with local presence notifications into
// the rendered chat order.
func (s *Session) Timeline() []TimelineEntry {
	s.mu.RLock()
	room := s.room
	s.mu.RUnlock()

	if room == nil {
		return nil
	}
	return MergeTimeline(room.Messages, s.presence.Notifications())
}

// Close tears the session down: unsubscribing and clearing the user's own
// presence entry happen together, otherwise a ghost member lingers until the
// heartbeat threshold ages it out. Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		if s.unsub != nil {
			s.unsub()
		}
		err = s.backend.LeaveRoom(ctx, s.cfg.RoomID, s.cfg.UserID)
	})
	return err
}
