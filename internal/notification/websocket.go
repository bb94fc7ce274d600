package notification

import (
	"net/http"
	"slices"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/jwt"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	upgrader   websocket.Upgrader
	loggerf    func(format string, args ...interface{})
}

// NewWSHandler accepts browser connections from allowedOrigins only.
// Requests without an Origin header are always accepted.
func NewWSHandler(hub *Hub, jwtService *jwt.Service, allowedOrigins []string, loggerf func(format string, args ...interface{})) *WSHandler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		loggerf:    loggerf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications/ws", h.HandleWebSocket)
}

// HandleWebSocket godoc
// @Summary Subscribe to live notifications
// @Description Browsers cannot set headers on websocket requests, so the access token travels in the query.
// @Tags Notifications
// @Param token query string true "Access token"
// @Success 101
// @Router /notifications/ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_MISSING", "token query parameter is required")
		return
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	userID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.loggerf("level=error msg=websocket upgrade failed user_id=%d err=%v", userID, err)
		return
	}

	h.hub.Register(userID, conn)
	h.loggerf("level=info msg=websocket connected user_id=%d", userID)
	defer func() {
		h.hub.Unregister(userID, conn)
		h.loggerf("level=info msg=websocket disconnected user_id=%d", userID)
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(conn, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.loggerf("level=error msg=websocket read failed user_id=%d err=%v", userID, err)
			}
			return
		}
	}
}

func pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
