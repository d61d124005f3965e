package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/pkg/utils"

	"go.uber.org/zap"
)

// RoomBackend is the local single-device store: each room is one serialized
// record, and subscriptions poll it on a fixed interval instead of being
// push-notified. Useful for a party running entirely on one device and for
// tests.
type RoomBackend struct {
	mu           sync.RWMutex
	records      map[domain.RoomID][]byte
	pollInterval time.Duration
	logger       *zap.SugaredLogger
}

func NewRoomBackend(pollInterval time.Duration, logger *zap.SugaredLogger) *RoomBackend {
	return &RoomBackend{
		records:      make(map[domain.RoomID][]byte),
		pollInterval: pollInterval,
		logger:       logger,
	}
}

func (b *RoomBackend) load(id domain.RoomID) (*domain.Room, error) {
	b.mu.RLock()
	data, exists := b.records[id]
	b.mu.RUnlock()

	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if room.Users == nil {
		room.Users = make(map[domain.UserID]*domain.User)
	}
	if room.Messages == nil {
		room.Messages = make(map[domain.MessageID]*domain.Message)
	}
	if err := room.Validate(); err != nil {
		return nil, err
	}
	return &room, nil
}

func (b *RoomBackend) store(room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	b.mu.Lock()
	b.records[room.ID] = data
	b.mu.Unlock()
	return nil
}

// mutate applies fn to the deserialized record and writes it back whole; the
// record is the unit of storage here, not its subtrees.
func (b *RoomBackend) mutate(id domain.RoomID, fn func(*domain.Room) error) error {
	room, err := b.load(id)
	if err != nil {
		return err
	}
	if err := fn(room); err != nil {
		return err
	}
	return b.store(room)
}

func (b *RoomBackend) CreateRoom(ctx context.Context, room *domain.Room) error {
	b.mu.RLock()
	_, exists := b.records[room.ID]
	b.mu.RUnlock()
	if exists {
		return fmt.Errorf("room already exists: %s", room.ID)
	}
	return b.store(room)
}

func (b *RoomBackend) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	return b.load(id)
}

// Subscribe polls on a fixed interval and invokes onChange with the
// deserialized record whenever one is present. Edge-triggered consumers
// tolerate the repeated identical snapshots.
func (b *RoomBackend) Subscribe(ctx context.Context, id domain.RoomID, onChange ports.ChangeHandler) (ports.Unsubscribe, error) {
	room, err := b.load(id)
	if err != nil {
		return nil, err
	}

	onChange(room, nil)

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(b.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				room, err := b.load(id)
				if err != nil {
					continue
				}
				onChange(room, nil)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}, nil
}

func (b *RoomBackend) JoinRoom(ctx context.Context, id domain.RoomID, userID domain.UserID, userName string) error {
	return b.mutate(id, func(room *domain.Room) error {
		now := utils.NowMillis()
		room.Users[userID] = &domain.User{
			ID:       userID,
			Name:     userName,
			JoinedAt: now,
			LastSeen: now,
		}
		return nil
	})
}

func (b *RoomBackend) LeaveRoom(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	err := b.mutate(id, func(room *domain.Room) error {
		// Deleting an absent entry is a no-op, so double-leave never errors.
		delete(room.Users, userID)

		// Host departure promotes a successor so hostId never points at a
		// missing entry while members remain.
		if userID == room.HostID {
			if next, ok := room.NextHost(); ok {
				room.HostID = next
			}
		}
		return nil
	})
	if errors.Is(err, domain.ErrRoomNotFound) {
		return nil
	}
	return err
}

func (b *RoomBackend) Heartbeat(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	return b.mutate(id, func(room *domain.Room) error {
		if u, ok := room.Users[userID]; ok {
			u.LastSeen = utils.NowMillis()
		}
		return nil
	})
}

func (b *RoomBackend) SendMessage(ctx context.Context, id domain.RoomID, msg *domain.Message) error {
	return b.mutate(id, func(room *domain.Room) error {
		room.Messages[msg.ID] = msg
		return nil
	})
}

func (b *RoomBackend) UpdatePlayback(ctx context.Context, id domain.RoomID, state domain.PlaybackState) error {
	return b.mutate(id, func(room *domain.Room) error {
		room.Playback = state
		return nil
	})
}

func (b *RoomBackend) ListRooms(ctx context.Context) ([]*domain.Room, error) {
	b.mu.RLock()
	ids := make([]domain.RoomID, 0, len(b.records))
	for id := range b.records {
		ids = append(ids, id)
	}
	b.mu.RUnlock()

	var rooms []*domain.Room
	for _, id := range ids {
		room, err := b.load(id)
		if err != nil {
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (b *RoomBackend) DeleteRoom(ctx context.Context, id domain.RoomID) error {
	b.mu.Lock()
	delete(b.records, id)
	b.mu.Unlock()
	return nil
}

func (b *RoomBackend) Ping(ctx context.Context) error {
	return nil
}

func (b *RoomBackend) Close() error {
	return nil
}
