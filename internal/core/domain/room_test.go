package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpiredBoundary(t *testing.T) {
	now := time.Now()
	room := &Room{ID: "room_1700000000000_aaaaaaaaa", CreatedAt: now.Add(-4 * time.Hour).UnixMilli()}

	// Exactly at the TTL the room is still usable; one millisecond past it is not
	assert.False(t, room.IsExpired(now, DefaultRoomTTL))
	assert.True(t, room.IsExpired(now.Add(time.Millisecond), DefaultRoomTTL))
}

func TestNewerThan(t *testing.T) {
	a := PlaybackState{LastUpdated: 1000}
	b := PlaybackState{LastUpdated: 2000}

	assert.True(t, b.NewerThan(a))
	assert.False(t, a.NewerThan(b))
	assert.False(t, a.NewerThan(a)) // equal timestamps are stale
}

func TestRecomputeHostFlags(t *testing.T) {
	room := &Room{
		ID:     "room_1700000000000_aaaaaaaaa",
		HostID: "user_1700000000001_aaaaaaaaa",
		Users: map[UserID]*User{
			"user_1700000000001_aaaaaaaaa": {ID: "user_1700000000001_aaaaaaaaa", IsHost: false},
			"user_1700000000002_bbbbbbbbb": {ID: "user_1700000000002_bbbbbbbbb", IsHost: true},
		},
	}

	room.RecomputeHostFlags()
	assert.True(t, room.Users["user_1700000000001_aaaaaaaaa"].IsHost)
	assert.False(t, room.Users["user_1700000000002_bbbbbbbbb"].IsHost)
}

func TestHostAfterLeaving(t *testing.T) {
	room := &Room{HostID: "user_1700000000001_aaaaaaaaa", Users: map[UserID]*User{}}
	assert.Nil(t, room.Host())
}

func TestNextHostPrefersLongestJoined(t *testing.T) {
	room := &Room{
		Users: map[UserID]*User{
			"user_1700000000002_bbbbbbbbb": {ID: "user_1700000000002_bbbbbbbbb", JoinedAt: 2000},
			"user_1700000000003_ccccccccc": {ID: "user_1700000000003_ccccccccc", JoinedAt: 1000},
			"user_1700000000004_ddddddddd": {ID: "user_1700000000004_ddddddddd", JoinedAt: 3000},
		},
	}

	next, ok := room.NextHost()
	assert.True(t, ok)
	assert.Equal(t, UserID("user_1700000000003_ccccccccc"), next)
}

func TestNextHostTieBreaksOnID(t *testing.T) {
	room := &Room{
		Users: map[UserID]*User{
			"user_1700000000002_bbbbbbbbb": {ID: "user_1700000000002_bbbbbbbbb", JoinedAt: 1000},
			"user_1700000000001_aaaaaaaaa": {ID: "user_1700000000001_aaaaaaaaa", JoinedAt: 1000},
		},
	}

	next, ok := room.NextHost()
	assert.True(t, ok)
	assert.Equal(t, UserID("user_1700000000001_aaaaaaaaa"), next)
}

func TestNextHostEmptyRoom(t *testing.T) {
	room := &Room{Users: map[UserID]*User{}}
	_, ok := room.NextHost()
	assert.False(t, ok)
}

func TestValidateRejectsBrokenRecords(t *testing.T) {
	valid := func() *Room {
		return &Room{
			ID:        "room_1700000000000_aaaaaaaaa",
			CreatedAt: 1700000000000,
			Users: map[UserID]*User{
				"user_1700000000001_aaaaaaaaa": {ID: "user_1700000000001_aaaaaaaaa"},
			},
			Messages: map[MessageID]*Message{
				"msg_1700000000000_aaaaaa": {ID: "msg_1700000000000_aaaaaa"},
			},
		}
	}

	assert.NoError(t, valid().Validate())

	r := valid()
	r.ID = ""
	assert.ErrorIs(t, r.Validate(), ErrMalformedRecord)

	r = valid()
	r.CreatedAt = 0
	assert.ErrorIs(t, r.Validate(), ErrMalformedRecord)

	r = valid()
	r.Users["user_1700000000002_bbbbbbbbb"] = &User{ID: "user_1700000000001_aaaaaaaaa"}
	assert.ErrorIs(t, r.Validate(), ErrMalformedRecord)

	r = valid()
	r.Messages["msg_1700000000000_bbbbbb"] = nil
	assert.ErrorIs(t, r.Validate(), ErrMalformedRecord)
}

func TestActiveAt(t *testing.T) {
	now := time.Now()

	fresh := &User{ID: "u", LastSeen: now.Add(-30 * time.Second).UnixMilli()}
	stale := &User{ID: "u", LastSeen: now.Add(-2 * time.Minute).UnixMilli()}
	silent := &User{ID: "u"}

	assert.True(t, fresh.ActiveAt(now, time.Minute))
	assert.False(t, stale.ActiveAt(now, time.Minute))
	assert.False(t, silent.ActiveAt(now, time.Minute))
}

func TestIsSystem(t *testing.T) {
	assert.True(t, (&Message{UserID: SystemUserID}).IsSystem())
	assert.False(t, (&Message{UserID: "user_1700000000001_aaaaaaaaa"}).IsSystem())
}
