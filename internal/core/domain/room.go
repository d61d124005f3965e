package domain

import (
	"time"
)

type RoomID string
type UserID string
type MessageID string

// SystemUserID authors seeded messages such as the room welcome line.
const SystemUserID UserID = "system"

// DefaultRoomTTL is how long a room stays usable after creation.
const DefaultRoomTTL = 4 * time.Hour

// Movie is the read-only catalog reference a room is created for. The engine
// never writes back to the catalog; StreamURL is handed to the player as-is.
type Movie struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Poster    string `json:"poster"`
	StreamURL string `json:"videoUrl"`
}

// PlaybackState is the shared playback clock. Conflicts resolve
// last-writer-wins on LastUpdated (epoch milliseconds).
type PlaybackState struct {
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
	LastUpdated int64   `json:"lastUpdated"`
	UpdatedBy   UserID  `json:"updatedBy"`
}

// NewerThan reports whether p supersedes other. Equal timestamps are stale.
func (p PlaybackState) NewerThan(other PlaybackState) bool {
	return p.LastUpdated > other.LastUpdated
}

type Room struct {
	ID        RoomID                 `json:"id"`
	Movie     Movie                  `json:"movie"`
	Playback  PlaybackState          `json:"playback"`
	Users     map[UserID]*User       `json:"users"`
	Messages  map[MessageID]*Message `json:"messages"`
	CreatedAt int64                  `json:"createdAt"`
	HostID    UserID                 `json:"hostId"`
}

// IsExpired computes expiry from creation time alone; nothing in the store
// enforces it, every reader must check.
func (r *Room) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-r.CreatedAt > ttl.Milliseconds()
}

// Host returns the host's user entry. A nil result is transient: host
// departure promotes a successor, see NextHost.
func (r *Room) Host() *User {
	return r.Users[r.HostID]
}

// NextHost picks the host's successor once the current host's entry is gone:
// the longest-joined remaining member, ties broken by id so every client
// promotes the same one. Reports false when the room has no members left.
func (r *Room) NextHost() (UserID, bool) {
	var best *User
	for _, u := range r.Users {
		if best == nil || u.JoinedAt < best.JoinedAt || (u.JoinedAt == best.JoinedAt && u.ID < best.ID) {
			best = u
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

// RecomputeHostFlags derives IsHost from HostID for every member. Stored
// flags are never trusted; this runs on every read from the store.
func (r *Room) RecomputeHostFlags() {
	for id, u := range r.Users {
		u.IsHost = id == r.HostID
	}
}

// Validate rejects structurally broken records read back from the store.
func (r *Room) Validate() error {
	if r.ID == "" {
		return ErrMalformedRecord
	}
	if r.CreatedAt <= 0 {
		return ErrMalformedRecord
	}
	for id, u := range r.Users {
		if u == nil || u.ID != id {
			return ErrMalformedRecord
		}
	}
	for id, m := range r.Messages {
		if m == nil || m.ID != id {
			return ErrMalformedRecord
		}
	}
	return nil
}

// CreatedRoom is what room creation hands back to the calling UI.
type CreatedRoom struct {
	Room   *Room  `json:"room"`
	RoomID RoomID `json:"roomId"`
	UserID UserID `json:"userId"`
}
