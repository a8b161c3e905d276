package restaurants

import (
	"net/http"
	"strconv"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/pkg/utils"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for restaurant and city discovery.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// GetRestaurant handles GET /restaurants/:id.
func (h *Handler) GetRestaurant(c echo.Context) error {
	rest, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, rest)
}

// ListRestaurants handles GET /restaurants with ?q=, ?city=, or
// ?lat=&lng=&max_distance= filters.
func (h *Handler) ListRestaurants(c echo.Context) error {
	page, limit := utils.GetPageLimit(c)
	q := models.RestaurantQuery{
		City:   c.QueryParam("city"),
		Search: c.QueryParam("q"),
		Page:   page,
		Limit:  limit,
	}
	if latStr, lngStr := c.QueryParam("lat"), c.QueryParam("lng"); latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			return utils.RespondWithError(c, http.StatusBadRequest, "Invalid coordinates")
		}
		q.Lat, q.Lng = &lat, &lng
		if md := c.QueryParam("max_distance"); md != "" {
			q.MaxDistance, _ = strconv.ParseFloat(md, 64)
		}
	}

	restaurants, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, restaurants)
}

// GetMenu handles GET /restaurants/:id/menu.
func (h *Handler) GetMenu(c echo.Context) error {
	menu, err := h.svc.GetMenu(c.Request().Context(), c.Param("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, menu)
}

// ListCities handles GET /cities.
func (h *Handler) ListCities(c echo.Context) error {
	cities, err := h.svc.ListCities(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, cities)
}

// ListCategories handles GET /categories.
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return utils.RespondWithJSON(c, http.StatusOK, categories)
}
