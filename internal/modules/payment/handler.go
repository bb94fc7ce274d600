package payment

import (
	"net/http"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/middleware"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	loggerf func(format string, args ...interface{})
}

func NewHandler(service *Service, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, loggerf: loggerf}
}

// RegisterProtectedRoutes expects rg to be behind JWTAuth.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/payments")
	g.POST("", h.CreatePayment)
	g.GET("/:uuid", h.GetPayment)
	g.POST("/:uuid/proof", middleware.RequireRole(domain.RoleUser), h.UploadProof)
	g.PATCH("/:uuid", middleware.TenantOnly(), h.UpdatePayment)
	g.GET("", middleware.TenantOnly(), h.ListTenantPayments)
}

// RegisterInternalRoutes exposes operator actions; rg must be behind
// InternalTokenAuth.
func (h *Handler) RegisterInternalRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/:uuid/expire", h.ExpirePayment)
}

// CreatePayment godoc
// @Summary      Book a room
// @Description  Reserves one unit of the room and opens a payment awaiting proof
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body body CreateRequest true "Booking"
// @Success      201 {object} domain.Payment
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.loggerf("level=error msg=invalid create payment payload err=%v", err)
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.CreatePayment(c.Request.Context(), middleware.ActorFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// UploadProof godoc
// @Summary      Upload payment proof
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        uuid path string true "Payment UUID"
// @Param        body body UploadProofRequest true "Proof"
// @Success      200 {object} domain.Payment
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /payments/{uuid}/proof [post]
func (h *Handler) UploadProof(c *gin.Context) {
	var req UploadProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.UploadProof(c.Request.Context(), middleware.ActorFrom(c), c.Param("uuid"), req.PaymentProof)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UpdatePayment godoc
// @Summary      Accept or reject a payment
// @Tags         Payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        uuid path string true "Payment UUID"
// @Param        body body UpdateRequest true "Decision"
// @Success      200 {object} domain.Payment
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /payments/{uuid} [patch]
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.UpdatePayment(c.Request.Context(), middleware.ActorFrom(c), c.Param("uuid"), req.Type)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// GetPayment godoc
// @Summary      Get payment
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        uuid path string true "Payment UUID"
// @Success      200 {object} domain.Payment
// @Failure      404 {object} ErrorResponse
// @Router       /payments/{uuid} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	p, err := h.service.GetPayment(c.Request.Context(), middleware.ActorFrom(c), c.Param("uuid"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// ListTenantPayments godoc
// @Summary      Payments on the tenant's rooms
// @Tags         Payments
// @Security     BearerAuth
// @Produce      json
// @Param        q query string false "Payment code, payer, room or property"
// @Param        status query string false "Payment status"
// @Param        page query int false "Page" default(1)
// @Param        take query int false "Page size" default(10)
// @Param        sort_by query string false "createdAt|updatedAt|expiredAt|totalPrice|status"
// @Param        sort_order query string false "asc|desc" default(desc)
// @Success      200 {object} ListResult
// @Router       /payments [get]
func (h *Handler) ListTenantPayments(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}
	if errs := validator.Validate(q); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", errs)
		return
	}

	res, err := h.service.ListTenantPayments(c.Request.Context(), middleware.ActorFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Data, res.Meta)
}

// ExpirePayment godoc
// @Summary      Expire a payment now
// @Description  Runs the expiration step for one payment. It does nothing unless the payment is still unpaid and past its deadline.
// @Tags         Internal
// @Produce      json
// @Param        uuid path string true "Payment UUID"
// @Success      200 {object} ExpireResponse
// @Router       /internal/payments/{uuid}/expire [post]
func (h *Handler) ExpirePayment(c *gin.Context) {
	id := c.Param("uuid")
	expired, err := h.service.ExpirePayment(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.loggerf("level=info msg=manual payment expiration uuid=%s expired=%t", id, expired)
	response.Success(c, http.StatusOK, ExpireResponse{UUID: id, Expired: expired})
}
