package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"watchparty/pkg/config"

	"github.com/gin-gonic/gin"
)

func chatRouter(cfg *config.Config, t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/messages", NewChatRateLimitMiddleware(cfg), func(c *gin.Context) {
		// The middleware must restore the body for the handler
		var req struct {
			UserID string `json:"userId"`
		}
		if err := c.BindJSON(&req); err != nil || req.UserID == "" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func sendChat(router *gin.Engine, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	body := `{"userId":"` + userID + `","userName":"Alice","text":"hi"}`
	req, _ := http.NewRequest(http.MethodPost, "/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// Two members behind the same IP must not share one chat budget.
func TestChatRateLimitMiddleware_KeysOnUserID(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.Chat.MessagesPerSecond = 1
	cfg.RateLimiting.Chat.Burst = 1

	router := chatRouter(cfg, t)

	if w := sendChat(router, "user_1700000000001_aaaaaaaaa"); w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for first member, got %d", w.Code)
	}
	if w := sendChat(router, "user_1700000000002_bbbbbbbbb"); w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for second member behind same IP, got %d", w.Code)
	}
}

func TestChatRateLimitMiddleware_ThrottlesPerMember(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.Chat.MessagesPerSecond = 1
	cfg.RateLimiting.Chat.Burst = 1

	router := chatRouter(cfg, t)

	if w := sendChat(router, "user_1700000000001_aaaaaaaaa"); w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for first send, got %d", w.Code)
	}
	if w := sendChat(router, "user_1700000000001_aaaaaaaaa"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 for immediate second send, got %d", w.Code)
	}
}

func TestChatRateLimitMiddleware_Disabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RateLimiting.Enabled = false

	router := chatRouter(cfg, t)

	for i := 0; i < 5; i++ {
		if w := sendChat(router, "user_1700000000001_aaaaaaaaa"); w.Code != http.StatusOK {
			t.Fatalf("expected status 200 with limiting disabled, got %d", w.Code)
		}
	}
}
