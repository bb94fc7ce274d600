package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/notification"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealth_ReportsWebsocketClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	hub := notification.NewHub()
	defer hub.Close()
	jwtService := jwt.New("test-secret", time.Hour)

	r := gin.New()
	r.GET("/healthz", Health(db, hub))
	notification.NewWSHandler(hub, jwtService, nil, nil).RegisterRoutes(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	status, body := getHealth(t, srv.URL)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["websocket_clients"])

	token, err := jwtService.GenerateToken(5, "USER")
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notifications/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool {
		_, body := getHealth(t, srv.URL)
		return body["websocket_clients"] == float64(1)
	}, time.Second, 10*time.Millisecond)
}

func TestHealth_WithoutHubOmitsClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)

	r := gin.New()
	r.GET("/healthz", Health(db, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	status, body := getHealth(t, srv.URL)
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "websocket_clients")
}

func TestHealth_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	r := gin.New()
	r.GET("/healthz", Health(db, notification.NewHub()))
	srv := httptest.NewServer(r)
	defer srv.Close()

	status, body := getHealth(t, srv.URL)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["status"])
}
