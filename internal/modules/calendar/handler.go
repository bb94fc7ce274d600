package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	now     func() time.Time
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/calendar")
	g.GET("/rooms/:roomId", h.GetRoomCalendar)
	g.POST("/compare", h.Compare)
	g.GET("/properties/:propertyId/comparison", h.GetPropertyComparison)
}

// GetRoomCalendar godoc
// @Summary      Room calendar
// @Description  Daily price and availability of a room for one month
// @Tags         Calendar
// @Produce      json
// @Param        roomId path int true "Room ID"
// @Param        month query string false "Month as YYYY-MM, defaults to the current month"
// @Success      200 {object} MonthCalendar
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /calendar/rooms/{roomId} [get]
func (h *Handler) GetRoomCalendar(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomId"), 10, 64)
	if err != nil || roomID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}
	month, err := ParseMonth(c.Query("month"), h.now())
	if err != nil {
		response.FromError(c, err)
		return
	}

	cal, err := h.service.Generate(c.Request.Context(), roomID, month)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cal)
}

// Compare godoc
// @Summary      Compare room prices
// @Description  Minimum, maximum and average effective price per room over a date window
// @Tags         Calendar
// @Accept       json
// @Produce      json
// @Param        body body CompareRequest true "Rooms and window"
// @Success      200 {array} RoomPriceComparison
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /calendar/compare [post]
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}
	start, end, err := ParseWindow(req.StartDate, req.EndDate)
	if err != nil {
		response.FromError(c, err)
		return
	}

	data, err := h.service.Compare(c.Request.Context(), req.RoomIDs, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, data)
}

// GetPropertyComparison godoc
// @Summary      Property monthly price comparison
// @Tags         Calendar
// @Produce      json
// @Param        propertyId path int true "Property ID"
// @Param        month query string false "Month as YYYY-MM, defaults to the current month"
// @Success      200 {object} PropertyComparison
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /calendar/properties/{propertyId}/comparison [get]
func (h *Handler) GetPropertyComparison(c *gin.Context) {
	propertyID, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || propertyID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}
	month, err := ParseMonth(c.Query("month"), h.now())
	if err != nil {
		response.FromError(c, err)
		return
	}

	data, err := h.service.PropertyMonthlyComparison(c.Request.Context(), propertyID, month)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, data)
}
