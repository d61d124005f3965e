package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// RoomIDRegex validates the generated room id format. Anything else is
	// rejected before a store lookup is even attempted.
	RoomIDRegex = regexp.MustCompile(`^room_\d{13}_[0-9a-z]{9}$`)

	// UserIDRegex validates the generated user id format.
	UserIDRegex = regexp.MustCompile(`^user_\d{13}_[0-9a-z]{9}$`)

	// MessageIDRegex validates the client-generated message id format.
	MessageIDRegex = regexp.MustCompile(`^msg_\d{13}_[0-9a-z]{6}$`)

	// SlugRegex validates catalog movie slugs.
	SlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// ValidateRoomID validates a room id against the generation format.
func ValidateRoomID(roomID string) error {
	if roomID == "" {
		return fmt.Errorf("room id is required")
	}
	if !RoomIDRegex.MatchString(roomID) {
		return fmt.Errorf("invalid room id format")
	}
	return nil
}

// ValidateUserID validates a user id against the generation format.
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if !UserIDRegex.MatchString(userID) {
		return fmt.Errorf("invalid user id format")
	}
	return nil
}

// ValidateMessageID validates a message id against the generation format.
func ValidateMessageID(messageID string) error {
	if messageID == "" {
		return fmt.Errorf("message id is required")
	}
	if !MessageIDRegex.MatchString(messageID) {
		return fmt.Errorf("invalid message id format")
	}
	return nil
}

// ValidateUserName validates a display name.
func ValidateUserName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > 50 {
		return fmt.Errorf("name is too long (max 50 characters)")
	}
	return nil
}

// ValidateMessageText validates chat message text.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	if len(text) > 2000 {
		return fmt.Errorf("message text is too long (max 2000 characters)")
	}
	return nil
}

// ValidateSlug validates a catalog movie slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("movie slug is required")
	}
	if len(slug) > 100 {
		return fmt.Errorf("movie slug is too long (max 100 characters)")
	}
	if !SlugRegex.MatchString(slug) {
		return fmt.Errorf("invalid movie slug format")
	}
	return nil
}
