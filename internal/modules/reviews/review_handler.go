package reviews

import (
	"net/http"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/internal/policy"
	"food-delivery-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for reviews.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// CreateReview handles POST /restaurants/:id/reviews.
func (h *Handler) CreateReview(c echo.Context) error {
	userID, _, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	review, err := h.svc.Create(c.Request().Context(), c.Param("id"), &userID, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusCreated, review)
}

// UpdateReview handles PATCH /reviews/:id.
func (h *Handler) UpdateReview(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	var req models.UpdateReviewRequest
	if err := c.Bind(&req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := utils.GetValidator().Validate(req); err != nil {
		return utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	}

	review, err := h.svc.Update(c.Request().Context(), c.Param("id"),
		policy.Actor{UserID: userID, Role: role}, req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, review)
}

// DeleteReview handles DELETE /reviews/:id.
func (h *Handler) DeleteReview(c echo.Context) error {
	userID, role, err := utils.ExtractUserInfo(c)
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), c.Param("id"),
		policy.Actor{UserID: userID, Role: role}); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRestaurantReviews handles GET /restaurants/:id/reviews.
func (h *Handler) ListRestaurantReviews(c echo.Context) error {
	reviews, err := h.svc.ListForRestaurant(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, reviews)
}
