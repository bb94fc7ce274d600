package nonavailability

import (
	"net/http"
	"strconv"

	"github.com/RachdianZulkarnain/final-project-api/internal/middleware"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind JWTAuth and TenantOnly.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/room-non-availabilities")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Create godoc
// @Summary      Block a room for a date range
// @Tags         Room Non-Availability
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateRequest true "Block"
// @Success      201 {object} domain.RoomNonAvailability
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /room-non-availabilities [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	block, err := h.service.Create(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, block)
}

// Update godoc
// @Summary      Update room non-availability
// @Tags         Room Non-Availability
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Non-availability ID"
// @Param        body body UpdateRequest true "Fields to change"
// @Success      200 {object} domain.RoomNonAvailability
// @Router       /room-non-availabilities/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	block, err := h.service.Update(c.Request.Context(), middleware.ActorFrom(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, block)
}

// Delete godoc
// @Summary      Delete room non-availability
// @Tags         Room Non-Availability
// @Security     BearerAuth
// @Produce      json
// @Param        id path int true "Non-availability ID"
// @Success      200 {object} domain.RoomNonAvailability
// @Router       /room-non-availabilities/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	block, err := h.service.Delete(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, block)
}

// List godoc
// @Summary      List non-availabilities of the tenant's rooms
// @Tags         Room Non-Availability
// @Security     BearerAuth
// @Produce      json
// @Param        room_id query int false "Room ID"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date query string false "YYYY-MM-DD"
// @Param        search query string false "Room name or reason"
// @Param        page query int false "Page" default(1)
// @Param        take query int false "Page size" default(10)
// @Param        sort_by query string false "createdAt|updatedAt|startDate|endDate|reason"
// @Param        sort_order query string false "asc|desc" default(asc)
// @Success      200 {object} ListResult
// @Router       /room-non-availabilities [get]
func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}
	if errs := validator.Validate(q); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", errs)
		return
	}

	res, err := h.service.List(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Data, res.Meta)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid non-availability ID")
		return 0, false
	}
	return id, true
}
