package services

import (
	"sort"

	"watchparty/internal/core/domain"
)

type TimelineEntryKind string

const (
	EntryMessage      TimelineEntryKind = "message"
	EntryNotification TimelineEntryKind = "notification"
)

// TimelineEntry is one row of the rendered chat timeline: either a persisted
// message or a local synthetic presence notification.
type TimelineEntry struct {
	Kind         TimelineEntryKind    `json:"kind"`
	Timestamp    int64                `json:"timestamp"`
	Message      *domain.Message      `json:"message,omitempty"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

// MergeTimeline folds messages and notifications into one display timeline,
// stable-sorted by timestamp ascending. Ties are left unbroken; message ids
// carry random suffixes, so collisions are cosmetic at worst.
func MergeTimeline(msgs map[domain.MessageID]*domain.Message, notes []domain.Notification) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(msgs)+len(notes))

	for _, m := range msgs {
		entries = append(entries, TimelineEntry{
			Kind:      EntryMessage,
			Timestamp: m.Timestamp,
			Message:   m,
		})
	}
	for i := range notes {
		entries = append(entries, TimelineEntry{
			Kind:         EntryNotification,
			Timestamp:    notes[i].Timestamp,
			Notification: &notes[i],
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})

	return entries
}

// RelevantMessages returns the member-authored messages in timestamp order.
// System-authored lines still render in the timeline but carry no "who said
// what" weight.
func RelevantMessages(msgs map[domain.MessageID]*domain.Message) []*domain.Message {
	out := make([]*domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.IsSystem() {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	return out
}
