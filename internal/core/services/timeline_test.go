package services

import (
	"testing"

	"watchparty/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func timelineMessages(timestamps ...int64) map[domain.MessageID]*domain.Message {
	msgs := make(map[domain.MessageID]*domain.Message, len(timestamps))
	for i, ts := range timestamps {
		id := domain.MessageID(string(rune('a' + i)))
		msgs[id] = &domain.Message{ID: id, UserID: testUserID, UserName: "Alice", Text: "hi", Timestamp: ts}
	}
	return msgs
}

func TestMergeTimelineInterleavesByTimestamp(t *testing.T) {
	msgs := timelineMessages(5, 2, 8)
	notes := []domain.Notification{{ID: "n1", Message: "Bob joined the party", Timestamp: 6}}

	entries := MergeTimeline(msgs, notes)
	assert.Len(t, entries, 4)

	timestamps := make([]int64, len(entries))
	for i, e := range entries {
		timestamps[i] = e.Timestamp
	}
	assert.Equal(t, []int64{2, 5, 6, 8}, timestamps)

	assert.Equal(t, EntryNotification, entries[2].Kind)
	assert.Equal(t, "Bob joined the party", entries[2].Notification.Message)
}

func TestMergeTimelineEmpty(t *testing.T) {
	assert.Empty(t, MergeTimeline(nil, nil))
}

func TestRelevantMessagesFiltersSystem(t *testing.T) {
	msgs := map[domain.MessageID]*domain.Message{
		"m1": {ID: "m1", UserID: domain.SystemUserID, UserName: "System", Text: "Welcome!", Timestamp: 1},
		"m2": {ID: "m2", UserID: testUserID, UserName: "Alice", Text: "hello", Timestamp: 3},
		"m3": {ID: "m3", UserID: testUserID, UserName: "Alice", Text: "first", Timestamp: 2},
	}

	out := RelevantMessages(msgs)
	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, "hello", out[1].Text)
}
