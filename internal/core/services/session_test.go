package services

import (
	"context"
	"testing"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sessionConfig() SessionConfig {
	return SessionConfig{
		RoomID:            testRoomID,
		UserID:            domain.UserID("user_1700000000009_joiner000"),
		PresenceThreshold: time.Minute,
		MaxNotifications:  5,
		HeartbeatInterval: time.Hour, // never ticks inside a test
	}
}

func subscribedBackend(t *testing.T) (*MockBackend, *ports.ChangeHandler) {
	t.Helper()
	backend := new(MockBackend)
	backend.On("GetRoom", mock.Anything, testRoomID).Return(&domain.Room{
		ID:        testRoomID,
		CreatedAt: utils.NowMillis(),
		HostID:    testUserID,
		Users:     map[domain.UserID]*domain.User{},
		Messages:  map[domain.MessageID]*domain.Message{},
	}, nil)
	handler := new(ports.ChangeHandler)
	backend.On("Subscribe", mock.Anything, testRoomID, mock.Anything).Run(func(args mock.Arguments) {
		*handler = args.Get(2).(ports.ChangeHandler)
	}).Return(ports.Unsubscribe(func() {}), nil)
	return backend, handler
}

func TestSessionStartRejectsExpiredRoom(t *testing.T) {
	backend := new(MockBackend)
	backend.On("GetRoom", mock.Anything, testRoomID).Return(&domain.Room{
		ID:        testRoomID,
		CreatedAt: utils.NowMillis() - (5 * time.Hour).Milliseconds(),
		HostID:    testUserID,
		Users:     map[domain.UserID]*domain.User{},
		Messages:  map[domain.MessageID]*domain.Message{},
	}, nil)

	session := NewSession(backend, sessionConfig(), newTestMetrics(), testLogger())
	err := session.Start(context.Background())

	assert.ErrorIs(t, err, domain.ErrRoomExpired)
	backend.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionAdoptsPlaybackWithoutWriting(t *testing.T) {
	backend, handler := subscribedBackend(t)

	session := NewSession(backend, sessionConfig(), newTestMetrics(), testLogger())
	assert.NoError(t, session.Start(context.Background()))

	// The first snapshot carries a running clock; the joiner adopts it as-is
	(*handler)(&domain.Room{
		ID:        testRoomID,
		CreatedAt: utils.NowMillis(),
		HostID:    testUserID,
		Users:     map[domain.UserID]*domain.User{},
		Messages:  map[domain.MessageID]*domain.Message{},
		Playback:  domain.PlaybackState{CurrentTime: 120, IsPlaying: true, LastUpdated: 5000, UpdatedBy: testUserID},
	}, nil)

	playback := session.Playback()
	assert.Equal(t, float64(120), playback.CurrentTime)
	assert.True(t, playback.IsPlaying)
	assert.False(t, session.IsHost())

	backend.AssertNotCalled(t, "UpdatePlayback", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionKeepsStaleStateOnFault(t *testing.T) {
	backend, handler := subscribedBackend(t)

	session := NewSession(backend, sessionConfig(), newTestMetrics(), testLogger())
	assert.NoError(t, session.Start(context.Background()))

	(*handler)(&domain.Room{
		ID:        testRoomID,
		CreatedAt: utils.NowMillis(),
		HostID:    testUserID,
		Users:     map[domain.UserID]*domain.User{},
		Messages:  map[domain.MessageID]*domain.Message{},
	}, nil)
	assert.NotNil(t, session.Snapshot())
	assert.NoError(t, session.Err())

	// A subscription fault surfaces as an error, not as lost state
	(*handler)(nil, domain.ErrConnectionLost)
	assert.NotNil(t, session.Snapshot())
	assert.ErrorIs(t, session.Err(), domain.ErrConnectionLost)
}

func TestSessionTimelineMergesPresence(t *testing.T) {
	backend, handler := subscribedBackend(t)
	cfg := sessionConfig()

	session := NewSession(backend, cfg, newTestMetrics(), testLogger())
	assert.NoError(t, session.Start(context.Background()))

	now := utils.Now()
	base := &domain.Room{
		ID:        testRoomID,
		CreatedAt: now.UnixMilli(),
		HostID:    testUserID,
		Users:     map[domain.UserID]*domain.User{},
		Messages: map[domain.MessageID]*domain.Message{
			"m1": {ID: "m1", UserID: testUserID, UserName: "Alice", Text: "hi", Timestamp: now.UnixMilli() - 1000},
		},
	}
	(*handler)(base, nil)

	// Alice heartbeats into the active set on the next snapshot
	withAlice := &domain.Room{
		ID:        base.ID,
		CreatedAt: base.CreatedAt,
		HostID:    base.HostID,
		Users: map[domain.UserID]*domain.User{
			testUserID: {ID: testUserID, Name: "Alice", LastSeen: utils.NowMillis()},
		},
		Messages: base.Messages,
	}
	(*handler)(withAlice, nil)

	timeline := session.Timeline()
	assert.Len(t, timeline, 2)
	assert.Equal(t, EntryMessage, timeline[0].Kind)
	assert.Equal(t, EntryNotification, timeline[1].Kind)
	assert.Equal(t, "Alice joined the party", timeline[1].Notification.Message)
}

func TestSessionCloseClearsPresenceOnce(t *testing.T) {
	backend, _ := subscribedBackend(t)
	cfg := sessionConfig()
	backend.On("LeaveRoom", mock.Anything, testRoomID, cfg.UserID).Return(nil)

	session := NewSession(backend, cfg, newTestMetrics(), testLogger())
	assert.NoError(t, session.Start(context.Background()))

	assert.NoError(t, session.Close(context.Background()))
	assert.NoError(t, session.Close(context.Background()))

	backend.AssertNumberOfCalls(t, "LeaveRoom", 1)
}
