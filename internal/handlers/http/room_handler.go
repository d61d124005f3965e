package http

import (
	"net/http"

	"watchparty/internal/core/domain"
	"watchparty/internal/core/ports"
	apperrors "watchparty/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoomHandler struct {
	roomService ports.RoomService
	origin      string
	logger      *zap.SugaredLogger
}

func NewRoomHandler(roomService ports.RoomService, origin string, logger *zap.SugaredLogger) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
		origin:      origin,
		logger:      logger,
	}
}

func (h *RoomHandler) SetupRoutes(router *gin.Engine, chatLimiter gin.HandlerFunc) {
	api := router.Group("/api/v1")
	{
		api.POST("/rooms", h.CreateRoom)
		api.GET("/rooms/:id", h.GetRoom)
		api.POST("/rooms/:id/join", h.JoinRoom)
		api.POST("/rooms/:id/leave", h.LeaveRoom)
		api.POST("/rooms/:id/heartbeat", h.Heartbeat)
		api.POST("/rooms/:id/messages", chatLimiter, h.SendMessage)
		api.PUT("/rooms/:id/playback", h.UpdatePlayback)
	}
}

func (h *RoomHandler) respondError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Errorw("request failed",
			"path", c.Request.URL.Path,
			"code", appErr.Code,
			"error", err,
		)
	}
	c.JSON(appErr.HTTPStatus, gin.H{
		"error":   string(appErr.Code),
		"message": appErr.Message,
	})
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Slug     string `json:"slug" binding:"required"`
		HostName string `json:"hostName" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.roomService.CreateRoom(c.Request.Context(), req.Slug, req.HostName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"room":      created.Room,
		"roomId":    created.RoomID,
		"userId":    created.UserID,
		"shareLink": h.roomService.ShareLink(h.origin, created.RoomID),
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	room, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":      room,
		"shareLink": h.roomService.ShareLink(h.origin, room.ID),
	})
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	var req struct {
		UserID   string `json:"userId"`
		UserName string `json:"userName" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.roomService.JoinRoom(c.Request.Context(), roomID, domain.UserID(req.UserID), req.UserName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"status": "joined",
	})
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roomService.LeaveRoom(c.Request.Context(), roomID, domain.UserID(req.UserID)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

func (h *RoomHandler) Heartbeat(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.roomService.Heartbeat(c.Request.Context(), roomID, domain.UserID(req.UserID)); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *RoomHandler) SendMessage(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	var req struct {
		UserID    string   `json:"userId" binding:"required"`
		UserName  string   `json:"userName" binding:"required"`
		Text      string   `json:"text" binding:"required"`
		VideoTime *float64 `json:"videoTime"`
		ReplyTo   string   `json:"replyTo"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.roomService.SendMessage(c.Request.Context(), roomID, ports.SendMessageParams{
		UserID:    domain.UserID(req.UserID),
		UserName:  req.UserName,
		Text:      req.Text,
		VideoTime: req.VideoTime,
		ReplyTo:   domain.MessageID(req.ReplyTo),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *RoomHandler) UpdatePlayback(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	var req struct {
		UserID      string  `json:"userId" binding:"required"`
		CurrentTime float64 `json:"currentTime"`
		IsPlaying   bool    `json:"isPlaying"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.roomService.UpdatePlayback(c.Request.Context(), roomID, req.CurrentTime, req.IsPlaying, domain.UserID(req.UserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
