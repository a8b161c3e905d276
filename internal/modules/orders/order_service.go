package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/internal/platform/events"
	"food-delivery-backend/internal/policy"
	"food-delivery-backend/pkg/email"
	"food-delivery-backend/pkg/logging"
)

// RestaurantDirectory is the slice of the restaurant module the order
// lifecycle needs: existence checks and the city→restaurant join.
type RestaurantDirectory interface {
	FindByID(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	IDsByCity(ctx context.Context, cityID string) ([]string, error)
}

// CityResolver resolves a city reference that may be either a city ID or a
// plain display name (resolve-or-fallback).
type CityResolver interface {
	ResolveCityRef(ctx context.Context, ref string) (*models.City, error)
}

// CustomerDirectory looks up users for delivery-listing enrichment.
type CustomerDirectory interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// EventPublisher publishes order lifecycle events. Publishing is best-effort:
// a broker failure is logged, never surfaced to the caller.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType, orderID string, payload interface{}) error
}

// Emailer sends transactional mail.
type Emailer interface {
	SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error
}

// ServiceInterface defines the contract of the order lifecycle manager.
type ServiceInterface interface {
	Create(ctx context.Context, userID *string, req models.CreateOrderRequest) (*models.Order, error)
	Get(ctx context.Context, orderID string, actor policy.Actor) (*models.Order, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Order, error)
	ListForRestaurant(ctx context.Context, restaurantID string, status *models.OrderStatus) ([]*models.Order, error)
	ListByCity(ctx context.Context, cityRef string) ([]*models.Order, error)
	UpdateStatusWithGuard(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	AdminForceUpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error)
	ListDeliveries(ctx context.Context, f models.DeliveryFilters) ([]*models.DeliveryOrder, error)
}

// Service implements the order lifecycle.
type Service struct {
	repo        RepositoryInterface
	restaurants RestaurantDirectory
	cities      CityResolver
	customers   CustomerDirectory
	publisher   EventPublisher
	emailer     Emailer
	templates   *email.TemplateManager
}

func NewService(
	repo RepositoryInterface,
	restaurants RestaurantDirectory,
	cities CityResolver,
	customers CustomerDirectory,
	publisher EventPublisher,
	emailer Emailer,
	templates *email.TemplateManager,
) *Service {
	return &Service{
		repo:        repo,
		restaurants: restaurants,
		cities:      cities,
		customers:   customers,
		publisher:   publisher,
		emailer:     emailer,
		templates:   templates,
	}
}

// Create validates and persists a new order with paymentStatus=pending and
// status=preparing.
func (s *Service) Create(ctx context.Context, userID *string, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", models.ErrInvalidInput)
	}

	restaurant, err := s.restaurants.FindByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: restaurant does not exist", models.ErrInvalidInput)
		}
		return nil, fmt.Errorf("service.Create: %w", err)
	}

	// total = subtotal + deliveryFee must hold for every order we persist.
	if math.Abs(req.Total-(req.Subtotal+req.DeliveryFee)) > 0.005 {
		return nil, fmt.Errorf("%w: total must equal subtotal plus delivery fee", models.ErrValidation)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			Price:      it.Price,
			TotalPrice: it.Price * float64(it.Quantity),
			MenuItemID: it.MenuItemID,
			OptionIDs:  it.OptionIDs,
		})
	}

	order := &models.Order{
		RestaurantID:          req.RestaurantID,
		UserID:                userID,
		Items:                 items,
		Subtotal:              req.Subtotal,
		DeliveryFee:           req.DeliveryFee,
		Total:                 req.Total,
		Address:               req.Address,
		PaymentMethod:         req.PaymentMethod,
		PaymentStatus:         models.PaymentStatusPending,
		Status:                models.OrderStatusPreparing,
		EstimatedDeliveryTime: req.EstimatedDeliveryTime,
		DroneDelivery:         buildDroneDelivery(req.DroneDelivery),
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}

	s.publish(ctx, events.TypeOrderCreated, created.ID, map[string]interface{}{
		"restaurant_id": created.RestaurantID,
		"total":         created.Total,
	})
	s.sendConfirmationEmail(created, restaurant.Name)

	return created, nil
}

func buildDroneDelivery(req *models.CreateDroneDeliveryRequest) *models.DroneDelivery {
	if req == nil {
		return nil
	}
	dd := &models.DroneDelivery{
		OriginLat: req.OriginLat,
		OriginLng: req.OriginLng,
		DestLat:   req.DestLat,
		DestLng:   req.DestLng,
		Speed:     models.DefaultDroneSpeed,
	}
	if req.Speed != nil {
		dd.Speed = *req.Speed
	}
	if req.StartTime != nil {
		dd.StartTime = *req.StartTime
	} else {
		dd.StartTime = time.Now().UTC()
	}
	return dd
}

// Get loads an order and checks that the actor may see it. The order is
// loaded before the ownership check runs, so a missing order reports
// ErrNotFound even to actors who would not have been allowed to see it.
func (s *Service) Get(ctx context.Context, orderID string, actor policy.Actor) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	owns := order.UserID != nil && *order.UserID == actor.UserID
	if !policy.Can(actor, policy.ActionViewOrder, owns) {
		return nil, models.ErrUnauthorized
	}
	return order, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListForUser: %w", err)
	}
	return orders, nil
}

func (s *Service) ListForRestaurant(ctx context.Context, restaurantID string, status *models.OrderStatus) ([]*models.Order, error) {
	orders, err := s.repo.ListByRestaurant(ctx, restaurantID, status)
	if err != nil {
		return nil, fmt.Errorf("service.ListForRestaurant: %w", err)
	}
	return orders, nil
}

// ListByCity accepts either a city ID or a plain city name. The resolver
// first tries the reference as an identifier and falls back to a name lookup,
// so callers that only know the display name keep working.
func (s *Service) ListByCity(ctx context.Context, cityRef string) ([]*models.Order, error) {
	city, err := s.cities.ResolveCityRef(ctx, cityRef)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown city %q", models.ErrNotFound, cityRef)
		}
		return nil, fmt.Errorf("service.ListByCity: %w", err)
	}

	restaurantIDs, err := s.restaurants.IDsByCity(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("service.ListByCity: %w", err)
	}
	if len(restaurantIDs) == 0 {
		return []*models.Order{}, nil
	}

	orders, err := s.repo.ListByRestaurants(ctx, restaurantIDs)
	if err != nil {
		return nil, fmt.Errorf("service.ListByCity: %w", err)
	}
	return orders, nil
}

// UpdateStatusWithGuard applies a fulfilment status change through the
// lifecycle guard: an order whose payment has settled can never be moved to
// cancelled on this path. Refunds are a distinct operation, not a
// cancellation.
func (s *Service) UpdateStatusWithGuard(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	order, err := s.repo.UpdateStatusGuarded(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: a completed payment cannot be cancelled", models.ErrInvalidTransition)
		}
		return nil, err
	}

	s.publish(ctx, events.TypeOrderStatusChanged, order.ID, map[string]interface{}{
		"status": order.Status,
	})
	return order, nil
}

// AdminForceUpdatePaymentStatus overwrites the payment status without any
// lifecycle guard. Reserved for administrative and reconciliation flows; the
// absence of the guard here is deliberate and must stay visible in the name.
func (s *Service) AdminForceUpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error) {
	order, err := s.repo.SetPaymentStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListDeliveries is the administrative cross-restaurant listing. A cityName
// filter is translated into the set of restaurants in that city; all filters
// combine conjunctively. Customer enrichment degrades gracefully.
func (s *Service) ListDeliveries(ctx context.Context, f models.DeliveryFilters) ([]*models.DeliveryOrder, error) {
	var restaurantIDs []string
	if f.CityName != "" {
		city, err := s.cities.ResolveCityRef(ctx, f.CityName)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return []*models.DeliveryOrder{}, nil
			}
			return nil, fmt.Errorf("service.ListDeliveries: %w", err)
		}
		restaurantIDs, err = s.restaurants.IDsByCity(ctx, city.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ListDeliveries: %w", err)
		}
		if len(restaurantIDs) == 0 {
			return []*models.DeliveryOrder{}, nil
		}
	}

	orders, err := s.repo.ListWithFilters(ctx, f, restaurantIDs)
	if err != nil {
		return nil, fmt.Errorf("service.ListDeliveries: %w", err)
	}

	deliveries := make([]*models.DeliveryOrder, 0, len(orders))
	for _, order := range orders {
		d := &models.DeliveryOrder{Order: *order}
		if order.UserID != nil {
			if customer, err := s.customers.FindByID(ctx, *order.UserID); err == nil {
				d.Customer = customer
			} else {
				logging.FromContext(ctx).Warn("delivery listing: customer lookup failed",
					"order_id", order.ID, "error", err)
			}
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func (s *Service) publish(ctx context.Context, eventType, orderID string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, eventType, orderID, payload); err != nil {
		logging.FromContext(ctx).Warn("order event publish failed",
			"type", eventType, "order_id", orderID, "error", err)
	}
}

func (s *Service) sendConfirmationEmail(order *models.Order, restaurantName string) {
	if s.emailer == nil || order.Address.Email == "" {
		return
	}
	subject := "Your order has been placed"
	text := fmt.Sprintf("Thanks %s! Your order %s from %s for %.2f is being prepared.",
		order.Address.Name, order.ID, restaurantName, order.Total)

	var html string
	if s.templates != nil {
		rendered, err := s.templates.GenerateOrderConfirmationHTML(email.OrderTemplateData{
			Name:       order.Address.Name,
			OrderID:    order.ID,
			Restaurant: restaurantName,
			Total:      order.Total,
		})
		if err != nil {
			slog.Warn("order confirmation template failed", "order_id", order.ID, "error", err)
		} else {
			html = rendered
		}
	}

	// Fire and forget; a failed confirmation email never fails the order.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.emailer.SendEmail(ctx, order.Address.Email, subject, text, html); err != nil {
			logging.FromContext(ctx).Warn("order confirmation email failed",
				"order_id", order.ID, "error", err)
		}
	}()
}
