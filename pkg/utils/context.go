package utils

import (
	"net/http"

	"food-delivery-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// ExtractUserInfo reads the authenticated user's ID and role from the echo
// context, where the JWT middleware placed them. Handlers behind the auth
// middleware can rely on both being present.
func ExtractUserInfo(c echo.Context) (userID string, role models.Role, err error) {
	id, ok := c.Get("userID").(string)
	if !ok || id == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication")
	}
	r, _ := c.Get("userRole").(models.Role)
	if r == "" {
		r = models.RoleCustomer
	}
	return id, r, nil
}

// OptionalUserID returns the authenticated user's ID when a valid token was
// presented, or nil for anonymous requests. Used by routes with optional auth.
func OptionalUserID(c echo.Context) *string {
	if id, ok := c.Get("userID").(string); ok && id != "" {
		return &id
	}
	return nil
}
