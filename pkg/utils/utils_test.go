package utils

import (
	"regexp"
	"testing"
	"time"
)

func TestGeneratedIDFormats(t *testing.T) {
	tests := []struct {
		name    string
		gen     func() string
		pattern string
	}{
		{"room id", GenerateRoomID, `^room_\d{13}_[0-9a-z]{9}$`},
		{"user id", GenerateUserID, `^user_\d{13}_[0-9a-z]{9}$`},
		{"message id", GenerateMessageID, `^msg_\d{13}_[0-9a-z]{6}$`},
		{"notification id", GenerateNotificationID, `^notif_\d{13}_[0-9a-z]{6}$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := regexp.MustCompile(tt.pattern)
			for i := 0; i < 20; i++ {
				id := tt.gen()
				if !re.MatchString(id) {
					t.Errorf("generated id %q does not match %s", id, tt.pattern)
				}
			}
		})
	}
}

func TestGeneratedIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRoomID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNowMillisRoundTrip(t *testing.T) {
	ms := NowMillis()
	back := MillisToTime(ms)
	if back.UnixMilli() != ms {
		t.Errorf("MillisToTime(NowMillis()) = %d, want %d", back.UnixMilli(), ms)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Alice", "Alice"},
		{"trims whitespace", "  Alice  ", "Alice"},
		{"strips control chars", "Al\x00ice\x07", "Alice"},
		{"keeps newlines", "line1\nline2", "line1\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeString(tt.input); got != tt.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("hello world", 8); got != "hello..." {
		t.Errorf("TruncateString() = %q", got)
	}
	if got := TruncateString("hi", 8); got != "hi" {
		t.Errorf("TruncateString() = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.50s"},
		{90 * time.Second, "1m30s"},
		{4 * time.Hour, "4h0m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
