package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/pkg/tracing"
	"watchparty/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoomBackend is the shared networked store. The room core (identity, movie,
// playback) lives as one JSON value; users and messages are hashes so each
// client exclusively writes its own users/{id} entry and its own authored
// messages. Every mutation publishes the changed field name on the room's
// pub/sub channel and subscribers re-read the full record, which gives
// late joiners the latest value rather than every intermediate one.
type RoomBackend struct {
	client *redis.Client
	prefix string
	logger *zap.SugaredLogger
}

// roomCore is the singly-written part of the record. Users and messages are
// stored under their own subtrees so they can update in either order relative
// to playback across clients.
type roomCore struct {
	ID        domain.RoomID        `json:"id"`
	Movie     domain.Movie         `json:"movie"`
	Playback  domain.PlaybackState `json:"playback"`
	CreatedAt int64                `json:"createdAt"`
	HostID    domain.UserID        `json:"hostId"`
}

func NewRoomBackend(client *redis.Client, logger *zap.SugaredLogger) ports.Backend {
	return &RoomBackend{
		client: client,
		prefix: "watchparty:room:",
		logger: logger,
	}
}

func (b *RoomBackend) coreKey(id domain.RoomID) string     { return b.prefix + string(id) }
func (b *RoomBackend) usersKey(id domain.RoomID) string    { return b.prefix + string(id) + ":users" }
func (b *RoomBackend) messagesKey(id domain.RoomID) string { return b.prefix + string(id) + ":messages" }
func (b *RoomBackend) eventsChannel(id domain.RoomID) string {
	return b.prefix + string(id) + ":events"
}
func (b *RoomBackend) indexKey() string { return "watchparty:rooms" }

// publish fans the change out; a failed publish only delays observers until
// their next read, so it is logged and dropped.
func (b *RoomBackend) publish(ctx context.Context, id domain.RoomID, field string) {
	if err := b.client.Publish(ctx, b.eventsChannel(id), field).Err(); err != nil {
		b.logger.Warnw("failed to publish room change", "room_id", id, "field", field, "error", err)
	}
}

func (b *RoomBackend) CreateRoom(ctx context.Context, room *domain.Room) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "create_room", string(room.ID))
	defer span.End()

	core := roomCore{
		ID:        room.ID,
		Movie:     room.Movie,
		Playback:  room.Playback,
		CreatedAt: room.CreatedAt,
		HostID:    room.HostID,
	}
	data, err := json.Marshal(core)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.coreKey(room.ID), data, 0)
	pipe.SAdd(ctx, b.indexKey(), string(room.ID))
	for id, u := range room.Users {
		userData, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		pipe.HSet(ctx, b.usersKey(room.ID), string(id), userData)
	}
	for id, m := range room.Messages {
		msgData, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		pipe.HSet(ctx, b.messagesKey(room.ID), string(id), msgData)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to create room in Redis: %w", err)
	}

	b.publish(ctx, room.ID, "room")
	return nil
}

func (b *RoomBackend) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	ctx, span := tracing.TraceStoreOperation(ctx, "get_room", string(id))
	defer span.End()

	data, err := b.client.Get(ctx, b.coreKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to get room from Redis: %w", err)
	}

	var core roomCore
	if err := json.Unmarshal([]byte(data), &core); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	room := &domain.Room{
		ID:        core.ID,
		Movie:     core.Movie,
		Playback:  core.Playback,
		CreatedAt: core.CreatedAt,
		HostID:    core.HostID,
		Users:     make(map[domain.UserID]*domain.User),
		Messages:  make(map[domain.MessageID]*domain.Message),
	}

	users, err := b.client.HGetAll(ctx, b.usersKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room users from Redis: %w", err)
	}
	for field, raw := range users {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID != domain.UserID(field) {
			// Malformed entries are rejected rather than trusted.
			b.logger.Warnw("skipping malformed user entry", "room_id", id, "user_id", field)
			continue
		}
		room.Users[u.ID] = &u
	}

	messages, err := b.client.HGetAll(ctx, b.messagesKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room messages from Redis: %w", err)
	}
	for field, raw := range messages {
		var m domain.Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil || m.ID != domain.MessageID(field) {
			b.logger.Warnw("skipping malformed message entry", "room_id", id, "message_id", field)
			continue
		}
		room.Messages[m.ID] = &m
	}

	if err := room.Validate(); err != nil {
		return nil, err
	}
	return room, nil
}

func (b *RoomBackend) Subscribe(ctx context.Context, id domain.RoomID, onChange ports.ChangeHandler) (ports.Unsubscribe, error) {
	if b.client == nil {
		return nil, domain.ErrNotConfigured
	}

	room, err := b.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.Background())
	pubsub := b.client.Subscribe(subCtx, b.eventsChannel(id))

	// Current record first, then one snapshot per observed change.
	onChange(room, nil)

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					onChange(nil, domain.ErrConnectionLost)
					return
				}
				fresh, err := b.GetRoom(subCtx, id)
				if err != nil {
					if errors.Is(err, domain.ErrRoomNotFound) {
						onChange(nil, err)
					} else {
						onChange(nil, fmt.Errorf("%w: %v", domain.ErrConnectionLost, err))
					}
					continue
				}
				onChange(fresh, nil)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := pubsub.Close(); err != nil {
				b.logger.Warnw("failed to close subscription", "room_id", id, "error", err)
			}
		})
	}, nil
}

func (b *RoomBackend) JoinRoom(ctx context.Context, id domain.RoomID, userID domain.UserID, userName string) error {
	now := utils.NowMillis()
	user := domain.User{
		ID:       userID,
		Name:     userName,
		JoinedAt: now,
		LastSeen: now,
	}
	data, err := json.Marshal(&user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := b.client.HSet(ctx, b.usersKey(id), string(userID), data).Err(); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	b.publish(ctx, id, "users")
	return nil
}

func (b *RoomBackend) LeaveRoom(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	// HDel of an absent field is a no-op, which makes leave idempotent.
	if err := b.client.HDel(ctx, b.usersKey(id), string(userID)).Err(); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if err := b.promoteHostIfLeft(ctx, id, userID); err != nil {
		return err
	}

	b.publish(ctx, id, "users")
	return nil
}

// promoteHostIfLeft hands playback authority to the longest-joined remaining
// member when the departing user was the host. hostId must never point at a
// missing entry while members remain.
func (b *RoomBackend) promoteHostIfLeft(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	data, err := b.client.Get(ctx, b.coreKey(id)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get room from Redis: %w", err)
	}

	var core roomCore
	if err := json.Unmarshal([]byte(data), &core); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if core.HostID != userID {
		return nil
	}

	users, err := b.client.HGetAll(ctx, b.usersKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to get room users from Redis: %w", err)
	}
	remaining := &domain.Room{Users: make(map[domain.UserID]*domain.User, len(users))}
	for field, raw := range users {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID != domain.UserID(field) {
			b.logger.Warnw("skipping malformed user entry", "room_id", id, "user_id", field)
			continue
		}
		remaining.Users[u.ID] = &u
	}

	next, ok := remaining.NextHost()
	if !ok {
		return nil
	}

	core.HostID = next
	updated, err := json.Marshal(core)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	if err := b.client.Set(ctx, b.coreKey(id), updated, 0).Err(); err != nil {
		return fmt.Errorf("failed to promote host: %w", err)
	}

	b.logger.Infow("host left, promoted successor", "room_id", id, "host_id", next)
	b.publish(ctx, id, "room")
	return nil
}

func (b *RoomBackend) Heartbeat(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	raw, err := b.client.HGet(ctx, b.usersKey(id), string(userID)).Result()
	if err == redis.Nil {
		// Heartbeat for a user who already left is a no-op.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read presence entry: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	user.LastSeen = utils.NowMillis()
	data, err := json.Marshal(&user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := b.client.HSet(ctx, b.usersKey(id), string(userID), data).Err(); err != nil {
		return fmt.Errorf("failed to refresh presence: %w", err)
	}

	b.publish(ctx, id, "users")
	return nil
}

func (b *RoomBackend) SendMessage(ctx context.Context, id domain.RoomID, msg *domain.Message) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "send_message", string(id))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// The client-generated id doubles as the subtree key; append-only, no
	// mutation or deletion path exists.
	if err := b.client.HSet(ctx, b.messagesKey(id), string(msg.ID), data).Err(); err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	b.publish(ctx, id, "messages")
	return nil
}

func (b *RoomBackend) UpdatePlayback(ctx context.Context, id domain.RoomID, state domain.PlaybackState) error {
	ctx, span := tracing.TraceStoreOperation(ctx, "update_playback", string(id))
	defer span.End()

	data, err := b.client.Get(ctx, b.coreKey(id)).Result()
	if err == redis.Nil {
		return domain.ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get room from Redis: %w", err)
	}

	var core roomCore
	if err := json.Unmarshal([]byte(data), &core); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}

	core.Playback = state
	updated, err := json.Marshal(core)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}
	if err := b.client.Set(ctx, b.coreKey(id), updated, 0).Err(); err != nil {
		tracing.RecordError(ctx, err)
		return fmt.Errorf("failed to update playback: %w", err)
	}

	b.publish(ctx, id, "playback")
	return nil
}

func (b *RoomBackend) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	ids, err := b.client.SMembers(ctx, b.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms from Redis: %w", err)
	}

	var rooms []*domain.Room
	for _, idStr := range ids {
		room, err := b.GetRoom(ctx, domain.RoomID(idStr))
		if err != nil {
			// Skip rooms that no longer exist or fail to decode.
			continue
		}
		rooms = append(rooms, room)
	}

	return rooms, nil
}

func (b *RoomBackend) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.coreKey(id), b.usersKey(id), b.messagesKey(id))
	pipe.SRem(ctx, b.indexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete room from Redis: %w", err)
	}

	b.publish(ctx, id, "room")
	return nil
}

func (b *RoomBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RoomBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}
