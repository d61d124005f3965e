package ports

import (
	"context"

	"watchparty/internal/core/domain"
)

// CatalogResolver is the read-only movie lookup collaborator. The engine
// treats the catalog as opaque and never writes back.
type CatalogResolver interface {
	Resolve(ctx context.Context, slug string) (*domain.Movie, error)
}

// SendMessageParams carries everything needed to author one chat message.
// ReplyTo, when set, names the message being replied to; the service resolves
// and denormalizes the original at send time.
type SendMessageParams struct {
	UserID    domain.UserID
	UserName  string
	Text      string
	VideoTime *float64
	ReplyTo   domain.MessageID
}

// RoomService owns the room lifecycle: creation, validated lookup, membership
// writes, playback writes and TTL sweeping.
type RoomService interface {
	// CreateRoom resolves the movie, generates room and host IDs, seeds the
	// welcome message and writes the initial record.
	CreateRoom(ctx context.Context, slug, hostName string) (*domain.CreatedRoom, error)

	// GetRoom rejects malformed IDs before any lookup and treats rooms past
	// TTL as unusable even when the record is still physically present.
	GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)

	// JoinRoom admits a user; a blank userID gets a fresh one, a retained
	// userID rejoins the same identity.
	JoinRoom(ctx context.Context, id domain.RoomID, userID domain.UserID, userName string) (domain.UserID, error)

	LeaveRoom(ctx context.Context, id domain.RoomID, userID domain.UserID) error

	Heartbeat(ctx context.Context, id domain.RoomID, userID domain.UserID) error

	SendMessage(ctx context.Context, id domain.RoomID, params SendMessageParams) (*domain.Message, error)

	UpdatePlayback(ctx context.Context, id domain.RoomID, currentTime float64, isPlaying bool, by domain.UserID) error

	// SweepExpired deletes every room past TTL and reports how many went.
	SweepExpired(ctx context.Context) (int, error)

	// ShareLink builds the shareable URL for a room.
	ShareLink(origin string, id domain.RoomID) string
}
