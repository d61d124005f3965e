package ports

import (
	"context"

	"watchparty/internal/core/domain"
)

// ChangeHandler receives a fresh room snapshot on every observed store change.
// A non-nil err with a nil room signals a subscription fault (connection lost,
// room deleted); the caller keeps its last known state.
type ChangeHandler func(room *domain.Room, err error)

// Unsubscribe stops further change callbacks. Safe to call more than once.
type Unsubscribe func()

// Backend is the shared-state store adapter. Two implementations exist: a
// push-notified networked store (redis) and a polled single-device store
// (memory). They are selected at construction and never mixed at runtime.
//
// All writes are fire-and-forget from the client's point of view: completion
// is observed through the client's own subscription echoing the write back.
type Backend interface {
	// CreateRoom persists an already-built initial room record.
	CreateRoom(ctx context.Context, room *domain.Room) error

	// GetRoom loads and validates the full room record.
	GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)

	// Subscribe delivers the current record immediately, then a snapshot per
	// observed change. Late subscribers see the latest value, not every
	// intermediate one. Returns domain.ErrRoomNotFound if no record exists
	// and domain.ErrNotConfigured if the store was never initialized.
	Subscribe(ctx context.Context, id domain.RoomID, onChange ChangeHandler) (Unsubscribe, error)

	// JoinRoom writes the users/{userID} entry, the unit of presence.
	// Rejoining with a retained userID resets joinedAt and lastSeen.
	JoinRoom(ctx context.Context, id domain.RoomID, userID domain.UserID, userName string) error

	// LeaveRoom clears the users/{userID} entry. Idempotent: leaving twice,
	// or leaving an already-removed user, is a no-op.
	LeaveRoom(ctx context.Context, id domain.RoomID, userID domain.UserID) error

	// Heartbeat refreshes the user's own lastSeen. No-op for absent users.
	Heartbeat(ctx context.Context, id domain.RoomID, userID domain.UserID) error

	// SendMessage appends one message under the messages subtree.
	SendMessage(ctx context.Context, id domain.RoomID, msg *domain.Message) error

	// UpdatePlayback overwrites the shared playback clock.
	UpdatePlayback(ctx context.Context, id domain.RoomID, state domain.PlaybackState) error

	// ListRooms returns every stored room, expired ones included. Used by the
	// out-of-band sweep only.
	ListRooms(ctx context.Context) ([]*domain.Room, error)

	DeleteRoom(ctx context.Context, id domain.RoomID) error

	// Ping reports store reachability for health checks.
	Ping(ctx context.Context) error

	Close() error
}
