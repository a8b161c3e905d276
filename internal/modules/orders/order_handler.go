package orders

import (
	"net/http"
	"time"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/internal/policy"
	"food-delivery-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// CreateOrder handles POST /orders. Authentication is optional: an attached
// token links the order to the user, an anonymous request leaves user_id nil.
func (h *Handler) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	order, err := h.svc.Create(c.Request().Context(), utils.OptionalUserID(c), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, order)
}

// GetOrder handles GET /orders/:id.
func (h *Handler) GetOrder(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	order, err := h.svc.Get(c.Request().Context(), c.Param("id"), policy.Actor{UserID: userID, Role: role})
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, order)
}

// ListMyOrders handles GET /orders/myorders.
func (h *Handler) ListMyOrders(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	orders, err := h.svc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, orders)
}

// ListRestaurantOrders handles GET /orders/restaurant/:id (admin only,
// enforced at the route). An optional ?status= narrows the listing.
func (h *Handler) ListRestaurantOrders(c echo.Context) error {
	var status *models.OrderStatus
	if s := c.QueryParam("status"); s != "" {
		st := models.OrderStatus(s)
		status = &st
	}

	orders, err := h.svc.ListForRestaurant(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, orders)
}

// ListOrdersByCity handles GET /orders/by-city/:city. The parameter may be a
// city ID or a plain name.
func (h *Handler) ListOrdersByCity(c echo.Context) error {
	orders, err := h.svc.ListByCity(c.Request().Context(), c.Param("city"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, orders)
}

// ListDeliveries handles GET /orders, the administrative delivery listing.
// Query parameters: status, city, restaurant, from, to (RFC 3339 dates).
func (h *Handler) ListDeliveries(c echo.Context) error {
	f := models.DeliveryFilters{
		CityName:     c.QueryParam("city"),
		RestaurantID: c.QueryParam("restaurant"),
	}
	if s := c.QueryParam("status"); s != "" {
		st := models.OrderStatus(s)
		f.Status = &st
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return utils.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' date")
		}
		f.CreatedAfter = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return utils.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' date")
		}
		f.CreatedBefore = &t
	}

	deliveries, err := h.svc.ListDeliveries(c.Request().Context(), f)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, deliveries)
}

// UpdateOrderStatus handles PATCH /orders/:id, the guarded transition path.
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	var req models.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	order, err := h.svc.UpdateStatusWithGuard(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, order)
}

// UpdatePaymentStatus handles PUT /orders/:id/payment (admin only, enforced
// at the route). Unlike the PATCH path it carries no transition guard.
func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	var req models.UpdatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	order, err := h.svc.AdminForceUpdatePaymentStatus(c.Request().Context(), c.Param("id"), req.PaymentStatus)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, order)
}
