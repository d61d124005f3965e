package domain

// ReplyRef is a denormalized copy of the message being replied to, captured at
// send time so rendering a reply never needs a second store read.
type ReplyRef struct {
	MessageID MessageID `json:"messageId"`
	UserID    UserID    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
}

// Message is an append-only chat entry. Once written it is never mutated or
// deleted by the engine.
type Message struct {
	ID        MessageID `json:"id"`
	UserID    UserID    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	Timestamp int64     `json:"timestamp"`
	VideoTime *float64  `json:"videoTime,omitempty"`
	ReplyTo   *ReplyRef `json:"replyTo,omitempty"`
}

// IsSystem reports whether the message was seeded by the engine rather than a
// member. System messages render in the timeline but are excluded from the
// "who said what" relevance set.
func (m *Message) IsSystem() bool {
	return m.UserID == SystemUserID
}

// Notification is a synthetic presence line ("Bob joined the party") produced
// locally from heartbeat diffs. It is never persisted.
type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
