package bootstrap

import (
	"net/http"

	"github.com/RachdianZulkarnain/final-project-api/internal/notification"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health pings the database and reports live websocket clients. hub may be
// nil when the process serves no websockets.
func Health(db *gorm.DB, hub *notification.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		body := gin.H{"status": "ok"}
		if hub != nil {
			body["websocket_clients"] = hub.OnlineCount()
		}
		c.JSON(http.StatusOK, body)
	}
}
