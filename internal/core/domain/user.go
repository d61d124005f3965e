package domain

import "time"

// User is a room member. LastSeen is a heartbeat timestamp (epoch millis)
// refreshed only by the owning client; zero means no heartbeat yet, which is
// distinct from a stale one.
type User struct {
	ID       UserID `json:"id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
	JoinedAt int64  `json:"joinedAt"`
	LastSeen int64  `json:"lastSeen,omitempty"`
}

// ActiveAt reports whether the user's latest heartbeat falls within the
// threshold. A user who never heartbeated is never active.
func (u *User) ActiveAt(now time.Time, threshold time.Duration) bool {
	if u.LastSeen == 0 {
		return false
	}
	return now.UnixMilli()-u.LastSeen <= threshold.Milliseconds()
}
