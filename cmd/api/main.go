package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-delivery-backend/internal/api"
	"food-delivery-backend/internal/config"
	"food-delivery-backend/internal/modules/orders"
	"food-delivery-backend/internal/modules/payments"
	"food-delivery-backend/internal/modules/restaurants"
	"food-delivery-backend/internal/modules/reviews"
	"food-delivery-backend/internal/modules/users"
	"food-delivery-backend/internal/platform/events"
	"food-delivery-backend/internal/platform/search"
	"food-delivery-backend/pkg/email"
	"food-delivery-backend/pkg/logging"
	"food-delivery-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	utils.SetProductionMode(cfg.IsProduction())

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// --- Database Connection ---
	dbConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to parse database configuration: %v", err)
	}
	dbPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	logger.Info("connected to database")

	// --- Platform Collaborators ---
	var publisher *events.Producer
	if brokers := cfg.BrokerList(); len(brokers) > 0 {
		publisher = events.NewProducer(brokers, cfg.KafkaOrderTopic)
		defer publisher.Close()
	}

	var searcher *search.Client
	if cfg.ElasticsearchURL != "" {
		searcher, err = search.NewClient(cfg.ElasticsearchURL)
		if err != nil {
			log.Fatalf("Unable to create search client: %v", err)
		}
	}

	var emailer *email.SESV2Sender
	if cfg.EmailSender != "" {
		emailer, err = email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailSender, logger)
		if err != nil {
			log.Fatalf("Unable to create email sender: %v", err)
		}
	}

	templates, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Unable to parse email templates: %v", err)
	}

	// --- Dependency Injection ---
	userRepo := users.NewRepository(dbPool)
	userService := users.NewService(userRepo, cfg.JWTSecret)
	userHandler := users.NewHandler(userService)

	restaurantRepo := restaurants.NewRepository(dbPool)
	restaurantService := restaurants.NewService(restaurantRepo, searcherOrNil(searcher))
	restaurantHandler := restaurants.NewHandler(restaurantService)

	reviewRepo := reviews.NewRepository(dbPool)
	reviewService := reviews.NewService(reviewRepo, restaurantRepo)
	reviewHandler := reviews.NewHandler(reviewService)

	orderRepo := orders.NewRepository(dbPool)
	orderService := orders.NewService(orderRepo, restaurantRepo, restaurantService, userRepo,
		publisherOrNil(publisher), emailerOrNil(emailer), templates)
	orderHandler := orders.NewHandler(orderService)

	paymentProvider := payments.NewStripeClient(cfg.StripeSecretKey)
	paymentService := payments.NewService(orderRepo, paymentProvider, cfg.ClientOrigin,
		publisherOrNil(publisher), emailerOrNil(emailer), templates)
	paymentHandler := payments.NewHandler(paymentService)

	api.SetupRoutes(e, cfg.JWTSecret,
		userHandler,
		orderHandler,
		paymentHandler,
		reviewHandler,
		restaurantHandler,
	)

	// --- Start Server with graceful shutdown ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	logger.Info("server exiting")
}

// A nil *T stored in a non-nil interface would defeat the services' nil
// checks, so optional collaborators are converted explicitly.

func publisherOrNil(p *events.Producer) orders.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func emailerOrNil(s *email.SESV2Sender) orders.Emailer {
	if s == nil {
		return nil
	}
	return s
}

func searcherOrNil(c *search.Client) restaurants.Searcher {
	if c == nil {
		return nil
	}
	return c
}
