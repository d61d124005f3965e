package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	"watchparty/pkg/retry"
	"watchparty/pkg/utils"
	"watchparty/pkg/validation"

	"go.uber.org/zap"
)

type roomService struct {
	backend  ports.Backend
	catalog  ports.CatalogResolver
	metrics  *MetricsService
	ttl      time.Duration
	retryCfg retry.Config
	logger   *zap.SugaredLogger
}

func NewRoomService(
	backend ports.Backend,
	catalog ports.CatalogResolver,
	metrics *MetricsService,
	ttl time.Duration,
	logger *zap.SugaredLogger,
) ports.RoomService {
	retryCfg := retry.DefaultConfig()
	retryCfg.NonRetryableErrors = []error{domain.ErrNotConfigured, domain.ErrMovieNotFound}

	return &roomService{
		backend:  backend,
		catalog:  catalog,
		metrics:  metrics,
		ttl:      ttl,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, slug, hostName string) (*domain.CreatedRoom, error) {
	hostName = utils.SanitizeString(hostName)
	if err := validation.ValidateUserName(hostName); err != nil {
		return nil, fmt.Errorf("invalid host name: %w", err)
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, fmt.Errorf("invalid movie slug: %w", err)
	}

	movie, err := s.catalog.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	roomID := domain.RoomID(utils.GenerateRoomID())
	hostID := domain.UserID(utils.GenerateUserID())
	now := utils.NowMillis()

	welcome := &domain.Message{
		ID:        domain.MessageID(utils.GenerateMessageID()),
		UserID:    domain.SystemUserID,
		UserName:  "System",
		Text:      fmt.Sprintf("Welcome to the watch party for %s! Share the room link to invite friends.", movie.Title),
		Timestamp: now,
	}

	room := &domain.Room{
		ID:    roomID,
		Movie: *movie,
		Playback: domain.PlaybackState{
			CurrentTime: 0,
			IsPlaying:   false,
			LastUpdated: now,
			UpdatedBy:   hostID,
		},
		Users: map[domain.UserID]*domain.User{
			hostID: {ID: hostID, Name: hostName, IsHost: true, JoinedAt: now, LastSeen: now},
		},
		Messages:  map[domain.MessageID]*domain.Message{welcome.ID: welcome},
		CreatedAt: now,
		HostID:    hostID,
	}

	// Room creation gates the whole session, so it runs under retry. Chat
	// and playback writes below do not.
	if err := retry.Retry(ctx, s.retryCfg, func() error {
		return s.backend.CreateRoom(ctx, room)
	}); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.metrics.RoomCreated()
	s.logger.Infow("room created",
		"room_id", roomID,
		"movie", movie.Slug,
		"host", hostName,
	)

	return &domain.CreatedRoom{Room: room, RoomID: roomID, UserID: hostID}, nil
}

func (s *roomService) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	// Malformed ids are rejected before any store round-trip.
	if err := validation.ValidateRoomID(string(id)); err != nil {
		return nil, domain.ErrInvalidRoomID
	}

	room, err := s.backend.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	// Expiry is computed, not enforced: the record may still be physically
	// present, the room is unusable regardless.
	if room.IsExpired(utils.Now(), s.ttl) {
		return nil, domain.ErrRoomExpired
	}

	room.RecomputeHostFlags()
	return room, nil
}

func (s *roomService) JoinRoom(ctx context.Context, id domain.RoomID, userID domain.UserID, userName string) (domain.UserID, error) {
	userName = utils.SanitizeString(userName)
	if err := validation.ValidateUserName(userName); err != nil {
		return "", fmt.Errorf("invalid user name: %w", err)
	}

	if _, err := s.GetRoom(ctx, id); err != nil {
		return "", err
	}

	// A client that retained its id rejoins the same identity; joinedAt and
	// lastSeen start fresh either way.
	if userID == "" {
		userID = domain.UserID(utils.GenerateUserID())
	} else if err := validation.ValidateUserID(string(userID)); err != nil {
		return "", fmt.Errorf("invalid user id: %w", err)
	}

	if err := s.backend.JoinRoom(ctx, id, userID, userName); err != nil {
		return "", err
	}

	s.logger.Infow("user joined", "room_id", id, "user_id", userID)
	return userID, nil
}

func (s *roomService) LeaveRoom(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	if err := validation.ValidateRoomID(string(id)); err != nil {
		return domain.ErrInvalidRoomID
	}
	// Idempotent all the way down: an unmount racing an explicit leave must
	// never surface an error.
	return s.backend.LeaveRoom(ctx, id, userID)
}

func (s *roomService) Heartbeat(ctx context.Context, id domain.RoomID, userID domain.UserID) error {
	if err := validation.ValidateRoomID(string(id)); err != nil {
		return domain.ErrInvalidRoomID
	}
	return s.backend.Heartbeat(ctx, id, userID)
}

func (s *roomService) SendMessage(ctx context.Context, id domain.RoomID, params ports.SendMessageParams) (*domain.Message, error) {
	if err := validation.ValidateRoomID(string(id)); err != nil {
		return nil, domain.ErrInvalidRoomID
	}

	text := utils.SanitizeString(params.Text)
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	msg := &domain.Message{
		ID:        domain.MessageID(utils.GenerateMessageID()),
		UserID:    params.UserID,
		UserName:  params.UserName,
		Text:      text,
		Timestamp: utils.NowMillis(),
		VideoTime: params.VideoTime,
	}

	// Replies are resolved at send time: the original's author and text are
	// copied in so rendering never needs a second store read.
	if params.ReplyTo != "" {
		if room, err := s.backend.GetRoom(ctx, id); err == nil {
			if orig, ok := room.Messages[params.ReplyTo]; ok {
				msg.ReplyTo = &domain.ReplyRef{
					MessageID: orig.ID,
					UserID:    orig.UserID,
					UserName:  orig.UserName,
					Text:      orig.Text,
				}
			}
		}
	}

	if err := s.backend.SendMessage(ctx, id, msg); err != nil {
		// Fire-and-forget: the failed write is logged and dropped, not queued.
		s.metrics.DroppedWrite("send_message")
		s.logger.Warnw("dropped chat message", "room_id", id, "error", err)
		return nil, err
	}

	s.metrics.MessageSent()
	return msg, nil
}

func (s *roomService) UpdatePlayback(ctx context.Context, id domain.RoomID, currentTime float64, isPlaying bool, by domain.UserID) error {
	if err := validation.ValidateRoomID(string(id)); err != nil {
		return domain.ErrInvalidRoomID
	}

	state := domain.PlaybackState{
		CurrentTime: currentTime,
		IsPlaying:   isPlaying,
		LastUpdated: utils.NowMillis(),
		UpdatedBy:   by,
	}

	if err := s.backend.UpdatePlayback(ctx, id, state); err != nil {
		s.metrics.DroppedWrite("update_playback")
		s.logger.Warnw("dropped playback update", "room_id", id, "error", err)
		return err
	}

	s.metrics.PlaybackUpdated()
	return nil
}

func (s *roomService) SweepExpired(ctx context.Context) (int, error) {
	rooms, err := retry.RetryWithResult(ctx, s.retryCfg, func() ([]*domain.Room, error) {
		return s.backend.ListRooms(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list rooms: %w", err)
	}

	removed, active := 0, 0
	for _, room := range rooms {
		if !room.IsExpired(utils.Now(), s.ttl) {
			active++
			continue
		}
		if err := s.backend.DeleteRoom(ctx, room.ID); err != nil {
			s.logger.Warnw("failed to delete expired room", "room_id", room.ID, "error", err)
			continue
		}
		removed++
	}

	s.metrics.RoomsSwept(removed)
	s.metrics.SetActiveRooms(active)
	s.logger.Infow("expired room sweep finished", "removed", removed, "active", active)
	return removed, nil
}

func (s *roomService) ShareLink(origin string, id domain.RoomID) string {
	return strings.TrimRight(origin, "/") + "/watch-party/" + string(id)
}
