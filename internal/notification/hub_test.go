package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWSServer(t *testing.T, hub *Hub, jwtService *jwt.Service) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewWSHandler(hub, jwtService, []string{"http://localhost:3000"}, nil).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notifications/ws"
}

func TestHub_DeliversToConnectedUser(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	jwtService := jwt.New("test-secret", time.Hour)
	url := startWSServer(t, hub, jwtService)

	token, err := jwtService.GenerateToken(5, "USER")
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.isOnline(5) }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Send(context.Background(), 5, domain.NotifPaymentAccepted, map[string]any{"payment_code": "p-1"}))

	var ev Event
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, domain.NotifPaymentAccepted, ev.Type)
	assert.Equal(t, "p-1", ev.Data["payment_code"])
}

func TestHub_OfflineUserIsNotAnError(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Send(context.Background(), 99, domain.NotifPaymentExpired, nil))
	assert.False(t, hub.SendToUser(99, "x"))
	assert.Zero(t, hub.OnlineCount())
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	jwtService := jwt.New("test-secret", time.Hour)
	url := startWSServer(t, hub, jwtService)

	token, _ := jwtService.GenerateToken(6, "USER")
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.isOnline(6) }, time.Second, 5*time.Millisecond)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	assert.Eventually(t, func() bool { return !hub.isOnline(6) }, time.Second, 5*time.Millisecond)
}

func TestWSHandler_RejectsBadRequests(t *testing.T) {
	hub := NewHub()
	jwtService := jwt.New("test-secret", time.Hour)
	url := startWSServer(t, hub, jwtService)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, _ := jwtService.GenerateToken(7, "USER")
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err = websocket.DefaultDialer.Dial(url+"?token="+token, header)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, hub.isOnline(7))
}
