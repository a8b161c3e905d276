package utils

import (
	"errors"
	"net/http"

	"food-delivery-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// Development mode includes the detailed error string in responses; it is
// toggled once at startup from config.
var includeErrorDetail = true

// SetProductionMode hides internal error detail from responses.
func SetProductionMode(production bool) {
	includeErrorDetail = !production
}

// RespondWithJSON writes a JSON success response.
func RespondWithJSON(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, payload)
}

// RespondWithError writes a JSON error body with the given message.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// HandleServiceError maps a service-layer error onto the HTTP status codes
// used across the API. Unknown errors become 500 with the detail string
// included only outside production mode.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, models.ErrInvalidInput):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrValidation):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		return RespondWithError(c, http.StatusUnauthorized, "You are not allowed to perform this action")
	case errors.Is(err, models.ErrConflict):
		return RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrExternalService):
		return RespondWithError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		return RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
	default:
		c.Logger().Error(err)
		resp := models.ErrorResponse{Message: "Internal server error"}
		if includeErrorDetail {
			resp.Detail = err.Error()
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}
}
