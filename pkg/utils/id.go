package utils

import (
	"crypto/rand"
	"fmt"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomBase36 returns n random base36 characters.
func randomBase36(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	out := make([]byte, n)
	for i := range b {
		out[i] = base36Alphabet[int(b[i])%len(base36Alphabet)]
	}
	return string(out)
}

// generateID builds ids of the wire form <prefix>_<epochMillis>_<suffix>.
// Client-generated ids avoid any dependence on store-assigned keys.
func generateID(prefix string, suffixLen int) string {
	return fmt.Sprintf("%s_%d_%s", prefix, Now().UnixMilli(), randomBase36(suffixLen))
}

// GenerateRoomID generates an id like room_1719868000000_k3j9x2m1q.
func GenerateRoomID() string {
	return generateID("room", 9)
}

// GenerateUserID generates an id like user_1719868000000_k3j9x2m1q.
func GenerateUserID() string {
	return generateID("user", 9)
}

// GenerateMessageID generates an id like msg_1719868000000_k3j9x2.
func GenerateMessageID() string {
	return generateID("msg", 6)
}

// GenerateNotificationID generates an id for a local presence notification.
func GenerateNotificationID() string {
	return generateID("notif", 6)
}
