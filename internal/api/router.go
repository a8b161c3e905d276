package api

import (
	"net/http"

	"food-delivery-backend/internal/api/middleware"
	"food-delivery-backend/internal/modules/orders"
	"food-delivery-backend/internal/modules/payments"
	"food-delivery-backend/internal/modules/restaurants"
	"food-delivery-backend/internal/modules/reviews"
	"food-delivery-backend/internal/modules/users"
	"food-delivery-backend/internal/policy"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	userHandler *users.Handler,
	orderHandler *orders.Handler,
	paymentHandler *payments.Handler,
	reviewHandler *reviews.Handler,
	restaurantHandler *restaurants.Handler,
) {
	authRequired := middleware.JWTAuth(jwtSecret)
	authOptional := middleware.OptionalJWTAuth(jwtSecret)

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Food delivery marketplace API"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
	}

	e.GET("/profile", userHandler.GetMyProfile, authRequired)

	// --- Restaurant Discovery ---
	e.GET("/restaurants", restaurantHandler.ListRestaurants)
	e.GET("/restaurants/:id", restaurantHandler.GetRestaurant)
	e.GET("/restaurants/:id/menu", restaurantHandler.GetMenu)
	e.GET("/restaurants/:id/reviews", reviewHandler.ListRestaurantReviews)
	e.GET("/cities", restaurantHandler.ListCities)
	e.GET("/categories", restaurantHandler.ListCategories)

	// --- Order Routes ---
	// Static segments are registered before /orders/:id so echo does not
	// swallow "myorders" as an order ID.
	e.POST("/orders", orderHandler.CreateOrder, authOptional)
	e.GET("/orders/myorders", orderHandler.ListMyOrders, authRequired)
	e.GET("/orders/by-city/:city", orderHandler.ListOrdersByCity, authRequired)
	e.GET("/orders/restaurant/:id", orderHandler.ListRestaurantOrders,
		authRequired, middleware.RequireAction(policy.ActionListRestaurantOrders))
	e.GET("/orders", orderHandler.ListDeliveries,
		authRequired, middleware.RequireAction(policy.ActionListDeliveries))
	e.GET("/orders/:id", orderHandler.GetOrder, authRequired)
	e.PATCH("/orders/:id", orderHandler.UpdateOrderStatus, authRequired)
	e.PUT("/orders/:id/payment", orderHandler.UpdatePaymentStatus,
		authRequired, middleware.RequireAction(policy.ActionForcePaymentStatus))

	// --- Payment Routes ---
	e.POST("/create-checkout-session", paymentHandler.CreateCheckoutSession, authRequired)
	e.GET("/verify-payment/:sessionId", paymentHandler.VerifyPayment, authRequired)

	// --- Review Routes ---
	e.POST("/restaurants/:id/reviews", reviewHandler.CreateReview, authRequired)
	e.PATCH("/reviews/:id", reviewHandler.UpdateReview, authRequired)
	e.DELETE("/reviews/:id", reviewHandler.DeleteReview, authRequired)
}
