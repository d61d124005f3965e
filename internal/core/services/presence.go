package services

import (
	"fmt"
	"sync"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/pkg/utils"

	"go.uber.org/zap"
)

// PresenceTracker derives join/leave notifications from heartbeat timestamps.
// Detection is edge-triggered: a user active in two consecutive snapshots
// produces nothing, only transitions into or out of the active set do.
type PresenceTracker struct {
	mu sync.Mutex

	localUser  domain.UserID
	threshold  time.Duration
	maxPending int

	prevActive map[domain.UserID]string
	seeded     bool

	notifications []domain.Notification

	metrics *MetricsService
	logger  *zap.SugaredLogger
}

func NewPresenceTracker(
	localUser domain.UserID,
	threshold time.Duration,
	maxPending int,
	metrics *MetricsService,
	logger *zap.SugaredLogger,
) *PresenceTracker {
	return &PresenceTracker{
		localUser:  localUser,
		threshold:  threshold,
		maxPending: maxPending,
		prevActive: make(map[domain.UserID]string),
		metrics:    metrics,
		logger:     logger,
	}
}

// ActiveUsers returns the members whose latest heartbeat falls within the
// threshold. Users who never heartbeated are excluded: "present but stalled"
// is not "present and live".
func ActiveUsers(room *domain.Room, now time.Time, threshold time.Duration) []*domain.User {
	var active []*domain.User
	for _, u := range room.Users {
		if u.ActiveAt(now, threshold) {
			active = append(active, u)
		}
	}
	return active
}

// Observe diffs the snapshot's active set against the previous one and emits
// one notification per transition edge, excluding the local user. The first
// snapshot seeds the baseline silently so a late joiner is not greeted with a
// "joined" line for everyone already in the room.
func (t *PresenceTracker) Observe(room *domain.Room, now time.Time) []domain.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := make(map[domain.UserID]string)
	for _, u := range ActiveUsers(room, now, t.threshold) {
		if u.ID == t.localUser {
			continue
		}
		current[u.ID] = u.Name
	}

	if !t.seeded {
		t.seeded = true
		t.prevActive = current
		return nil
	}

	var emitted []domain.Notification
	for id, name := range current {
		if _, ok := t.prevActive[id]; !ok {
			emitted = append(emitted, t.notify(fmt.Sprintf("%s joined the party", name), now))
		}
	}
	for id, name := range t.prevActive {
		if _, ok := current[id]; !ok {
			emitted = append(emitted, t.notify(fmt.Sprintf("%s left the party", name), now))
		}
	}

	t.prevActive = current

	if len(emitted) > 0 {
		t.notifications = append(t.notifications, emitted...)
		if len(t.notifications) > t.maxPending {
			t.notifications = t.notifications[len(t.notifications)-t.maxPending:]
		}
		t.logger.Debugw("presence transitions", "count", len(emitted))
	}

	return emitted
}

// Notifications returns the retained notifications, capped at maxPending.
func (t *PresenceTracker) Notifications() []domain.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.Notification, len(t.notifications))
	copy(out, t.notifications)
	return out
}

func (t *PresenceTracker) notify(text string, now time.Time) domain.Notification {
	t.metrics.PresenceNotified()
	return domain.Notification{
		ID:        utils.GenerateNotificationID(),
		Message:   text,
		Timestamp: now.UnixMilli(),
	}
}
