package payments

import (
	"net/http"

	"food-delivery-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// CreateCheckoutSessionRequest represents the body of
// POST /create-checkout-session.
type CreateCheckoutSessionRequest struct {
	OrderID       string `json:"order_id" validate:"required,uuid"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
}

// Handler handles HTTP requests for payment checkout and verification.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (h *Handler) CreateCheckoutSession(c echo.Context) error {
	var req CreateCheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	resp, err := h.svc.CreateCheckoutSession(c.Request().Context(), req.OrderID, req.CustomerEmail)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, resp)
}

// VerifyPayment handles GET /verify-payment/:sessionId.
func (h *Handler) VerifyPayment(c echo.Context) error {
	resp, err := h.svc.VerifyPayment(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, resp)
}
