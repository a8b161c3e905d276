package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-delivery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for order storage.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string, status *models.OrderStatus) ([]*models.Order, error)
	ListByRestaurants(ctx context.Context, restaurantIDs []string) ([]*models.Order, error)
	ListWithFilters(ctx context.Context, f models.DeliveryFilters, restaurantIDs []string) ([]*models.Order, error)
	UpdateStatusGuarded(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error)
	MarkPaymentCompleted(ctx context.Context, orderID, paymentRef string, paidAt time.Time) (*models.Order, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, restaurant_id, user_id, items, subtotal, delivery_fee, total, address,
	payment_method, payment_status, status, estimated_delivery_time, drone_delivery,
	payment_ref, paid_at, created_at, updated_at`

// scanOrder is a helper to scan a row into an Order model.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.RestaurantID,
		&order.UserID,
		&order.Items,
		&order.Subtotal,
		&order.DeliveryFee,
		&order.Total,
		&order.Address,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.Status,
		&order.EstimatedDeliveryTime,
		&order.DroneDelivery,
		&order.PaymentRef,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	defer rows.Close()
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// Create inserts a new order. Items, address and the drone sub-record are
// stored as JSONB.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (restaurant_id, user_id, items, subtotal, delivery_fee, total, address,
			payment_method, payment_status, status, estimated_delivery_time, drone_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + orderColumns

	row := r.db.QueryRow(ctx, query,
		order.RestaurantID,
		order.UserID,
		order.Items,
		order.Subtotal,
		order.DeliveryFee,
		order.Total,
		order.Address,
		order.PaymentMethod,
		order.PaymentStatus,
		order.Status,
		order.EstimatedDeliveryTime,
		order.DroneDelivery,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return created, nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByUser: %w", err)
	}
	return collectOrders(rows)
}

func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID string, status *models.OrderStatus) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1`
	args := []interface{}{restaurantID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByRestaurant: %w", err)
	}
	return collectOrders(rows)
}

func (r *Repository) ListByRestaurants(ctx context.Context, restaurantIDs []string) ([]*models.Order, error) {
	if len(restaurantIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = ANY($1) ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, restaurantIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByRestaurants: %w", err)
	}
	return collectOrders(rows)
}

// ListWithFilters combines delivery-listing filters conjunctively. When
// restaurantIDs is non-nil the order's restaurant must be in the set (the
// city filter resolved upstream); date bounds are inclusive.
func (r *Repository) ListWithFilters(ctx context.Context, f models.DeliveryFilters, restaurantIDs []string) ([]*models.Order, error) {
	var conditions []string
	var args []interface{}
	argIdx := 1

	if restaurantIDs != nil {
		conditions = append(conditions, fmt.Sprintf("restaurant_id = ANY($%d)", argIdx))
		args = append(args, restaurantIDs)
		argIdx++
	}
	if f.RestaurantID != "" {
		conditions = append(conditions, fmt.Sprintf("restaurant_id = $%d", argIdx))
		args = append(args, f.RestaurantID)
		argIdx++
	}
	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *f.CreatedAfter)
		argIdx++
	}
	if f.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *f.CreatedBefore)
		argIdx++
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.ListWithFilters: %w", err)
	}
	return collectOrders(rows)
}

// UpdateStatusGuarded applies a status change with the cancellation guard
// enforced by the database: a cancellation only matches when the payment has
// not settled, so the check and the write are one atomic statement and two
// concurrent updates cannot slip a cancellation past a completed payment.
func (r *Repository) UpdateStatusGuarded(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		  AND ($1 <> 'cancelled' OR payment_status NOT IN ('completed', 'paid'))
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, status, orderID))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("repository.UpdateStatusGuarded: %w", err)
	}

	// No row matched: either the order does not exist or the guard refused
	// the cancellation. Disambiguate for the caller.
	if _, findErr := r.FindByID(ctx, orderID); findErr != nil {
		return nil, findErr
	}
	return nil, models.ErrInvalidTransition
}

// SetPaymentStatus overwrites the payment status unconditionally. This is the
// administrative force path; it deliberately carries no lifecycle guard.
func (r *Repository) SetPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) (*models.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, status, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.SetPaymentStatus: %w", err)
	}
	return order, nil
}

// MarkPaymentCompleted records a settled provider payment: status completed
// plus the provider's payment reference and settlement time. Re-running it
// for the same settlement re-asserts the same values.
func (r *Repository) MarkPaymentCompleted(ctx context.Context, orderID, paymentRef string, paidAt time.Time) (*models.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = 'completed', payment_ref = $1, paid_at = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, paymentRef, paidAt, orderID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.MarkPaymentCompleted: %w", err)
	}
	return order, nil
}
