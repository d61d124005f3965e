package signal

import (
	"encoding/json"
	"net/http"
	"time"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	apperrors "watchparty/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServerEvent is one frame pushed to a connected UI client.
type ServerEvent struct {
	Type string       `json:"type"`
	Room *domain.Room `json:"room,omitempty"`
	Code string       `json:"code,omitempty"`
}

// ClientCommand is the only inbound frame: a heartbeat keeping the member's
// presence entry fresh.
type ClientCommand struct {
	Type string `json:"type"`
}

// WebSocketServer bridges browser clients onto the store subscription: each
// connection holds one subscription and receives a full room snapshot per
// observed change.
type WebSocketServer struct {
	backend     ports.Backend
	roomService ports.RoomService

	pingInterval time.Duration
	pongTimeout  time.Duration
	writeTimeout time.Duration

	logger *zap.SugaredLogger
}

func NewWebSocketServer(backend ports.Backend, roomService ports.RoomService, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		backend:      backend,
		roomService:  roomService,
		pingInterval: 30 * time.Second,
		pongTimeout:  60 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// HandleRoomSocket serves GET /ws/:id?userId=... Closing the socket tears the
// subscription down and, when a userId was given, clears that presence entry
// too. The two must happen together or a ghost member lingers.
func (s *WebSocketServer) HandleRoomSocket(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))
	userID := domain.UserID(c.Query("userId"))

	// Reject bad ids and expired rooms before paying for the upgrade.
	if _, err := s.roomService.GetRoom(c.Request.Context(), roomID); err != nil {
		appErr := apperrors.FromDomain(err)
		c.JSON(appErr.HTTPStatus, gin.H{"error": string(appErr.Code), "message": appErr.Message})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "room_id", roomID, "error", err)
		return
	}

	outbound := make(chan ServerEvent, 16)

	unsub, err := s.backend.Subscribe(c.Request.Context(), roomID, func(room *domain.Room, err error) {
		var event ServerEvent
		if err != nil {
			event = ServerEvent{Type: "error", Code: string(apperrors.FromDomain(err).Code)}
		} else {
			room.RecomputeHostFlags()
			event = ServerEvent{Type: "room_update", Room: room}
		}

		select {
		case outbound <- event:
		default:
			// A slow consumer misses intermediate snapshots, not the
			// connection. The next change carries the latest value anyway.
			s.logger.Debugw("dropping snapshot for slow consumer", "room_id", roomID)
		}
	})
	if err != nil {
		appErr := apperrors.FromDomain(err)
		s.writeEvent(conn, ServerEvent{Type: "error", Code: string(appErr.Code)})
		conn.Close()
		return
	}

	done := make(chan struct{})
	go s.writeLoop(conn, roomID, outbound, done)

	s.readLoop(c, conn, roomID, userID)

	// Teardown: subscription and presence entry go together.
	close(done)
	unsub()
	if userID != "" {
		if err := s.backend.LeaveRoom(c.Request.Context(), roomID, userID); err != nil {
			s.logger.Warnw("failed to clear presence on disconnect", "room_id", roomID, "user_id", userID, "error", err)
		}
	}
	conn.Close()
}

func (s *WebSocketServer) writeLoop(conn *websocket.Conn, roomID domain.RoomID, outbound <-chan ServerEvent, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case event := <-outbound:
			if err := s.writeEvent(conn, event); err != nil {
				s.logger.Debugw("websocket write failed", "room_id", roomID, "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *WebSocketServer) writeEvent(conn *websocket.Conn, event ServerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *WebSocketServer) readLoop(c *gin.Context, conn *websocket.Conn, roomID domain.RoomID, userID domain.UserID) {
	conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd ClientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.logger.Debugw("ignoring malformed client frame", "room_id", roomID)
			continue
		}

		if cmd.Type == "heartbeat" && userID != "" {
			if err := s.backend.Heartbeat(c.Request.Context(), roomID, userID); err != nil {
				s.logger.Warnw("heartbeat dropped", "room_id", roomID, "user_id", userID, "error", err)
			}
		}
	}
}
