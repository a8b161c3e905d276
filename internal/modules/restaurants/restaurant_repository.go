package restaurants

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for restaurant and city storage.
type RepositoryInterface interface {
	FindByID(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	FindByIDs(ctx context.Context, restaurantIDs []string) ([]*models.Restaurant, error)
	ListByCity(ctx context.Context, cityID string, page, limit int) ([]*models.Restaurant, error)
	IDsByCity(ctx context.Context, cityID string) ([]string, error)
	FindNearby(ctx context.Context, lat, lng, maxDistanceMeters float64, limit int) ([]*models.Restaurant, error)
	SetRating(ctx context.Context, restaurantID string, rating float64, reviewCount int) error
	ListMenu(ctx context.Context, restaurantID string) ([]*models.MenuItem, error)

	FindCityByID(ctx context.Context, cityID string) (*models.City, error)
	FindCityByName(ctx context.Context, name string) (*models.City, error)
	ListCities(ctx context.Context) ([]*models.City, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const restaurantColumns = `id, owner_id, name, city_id, address, lat, lng, rating, review_count,
	delivery_fee, is_open, created_at, updated_at`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := row.Scan(
		&rest.ID,
		&rest.OwnerID,
		&rest.Name,
		&rest.CityID,
		&rest.Address,
		&rest.Lat,
		&rest.Lng,
		&rest.Rating,
		&rest.ReviewCount,
		&rest.DeliveryFee,
		&rest.IsOpen,
		&rest.CreatedAt,
		&rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan restaurant: %w", err)
	}
	return &rest, nil
}

func collectRestaurants(rows pgx.Rows) ([]*models.Restaurant, error) {
	defer rows.Close()
	var restaurants []*models.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	rest, err := scanRestaurant(r.db.QueryRow(ctx, query, restaurantID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return rest, nil
}

func (r *Repository) FindByIDs(ctx context.Context, restaurantIDs []string) ([]*models.Restaurant, error) {
	if len(restaurantIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, restaurantIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByIDs: %w", err)
	}
	return collectRestaurants(rows)
}

func (r *Repository) ListByCity(ctx context.Context, cityID string, page, limit int) ([]*models.Restaurant, error) {
	offset := (page - 1) * limit
	query := `SELECT ` + restaurantColumns + `
		FROM restaurants WHERE city_id = $1
		ORDER BY rating DESC, name
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, cityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByCity: %w", err)
	}
	return collectRestaurants(rows)
}

func (r *Repository) IDsByCity(ctx context.Context, cityID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM restaurants WHERE city_id = $1`, cityID)
	if err != nil {
		return nil, fmt.Errorf("repository.IDsByCity: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository.IDsByCity.Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindNearby runs a nearest-neighbor query using the earthdistance extension,
// nearest first, capped at maxDistanceMeters.
func (r *Repository) FindNearby(ctx context.Context, lat, lng, maxDistanceMeters float64, limit int) ([]*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE lat IS NOT NULL AND lng IS NOT NULL
		  AND earth_distance(ll_to_earth(lat, lng), ll_to_earth($1, $2)) <= $3
		ORDER BY earth_distance(ll_to_earth(lat, lng), ll_to_earth($1, $2))
		LIMIT $4`
	rows, err := r.db.Query(ctx, query, lat, lng, maxDistanceMeters, limit)
	if err != nil {
		return nil, fmt.Errorf("repository.FindNearby: %w", err)
	}
	return collectRestaurants(rows)
}

// SetRating writes the derived rating aggregate. Only the rating aggregator
// calls this; no general update path touches these columns.
func (r *Repository) SetRating(ctx context.Context, restaurantID string, rating float64, reviewCount int) error {
	query := `
		UPDATE restaurants
		SET rating = $1, review_count = $2, updated_at = NOW()
		WHERE id = $3`

	cmdTag, err := r.db.Exec(ctx, query, rating, reviewCount, restaurantID)
	if err != nil {
		return fmt.Errorf("repository.SetRating: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListMenu returns a restaurant's menu items with their options attached,
// grouped by category.
func (r *Repository) ListMenu(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	query := `
		SELECT id, restaurant_id, name, description, price, category, is_available, created_at
		FROM menu_items WHERE restaurant_id = $1
		ORDER BY category, name`
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListMenu: %w", err)
	}
	defer rows.Close()

	var items []*models.MenuItem
	var itemIDs []string
	for rows.Next() {
		item := &models.MenuItem{}
		if err := rows.Scan(
			&item.ID, &item.RestaurantID, &item.Name, &item.Description,
			&item.Price, &item.Category, &item.IsAvailable, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository.ListMenu.Scan: %w", err)
		}
		items = append(items, item)
		itemIDs = append(itemIDs, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListMenu: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	optRows, err := r.db.Query(ctx,
		`SELECT id, menu_item_id, name, price FROM options WHERE menu_item_id = ANY($1) ORDER BY name`,
		itemIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.ListMenu.options: %w", err)
	}
	defer optRows.Close()

	byItem := make(map[string][]models.Option)
	for optRows.Next() {
		var opt models.Option
		if err := optRows.Scan(&opt.ID, &opt.MenuItemID, &opt.Name, &opt.Price); err != nil {
			return nil, fmt.Errorf("repository.ListMenu.options.Scan: %w", err)
		}
		byItem[opt.MenuItemID] = append(byItem[opt.MenuItemID], opt)
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListMenu.options: %w", err)
	}

	for _, item := range items {
		item.Options = byItem[item.ID]
	}
	return items, nil
}

func (r *Repository) FindCityByID(ctx context.Context, cityID string) (*models.City, error) {
	city := &models.City{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM cities WHERE id = $1`, cityID).
		Scan(&city.ID, &city.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindCityByID: %w", err)
	}
	return city, nil
}

func (r *Repository) FindCityByName(ctx context.Context, name string) (*models.City, error) {
	city := &models.City{}
	err := r.db.QueryRow(ctx, `SELECT id, name FROM cities WHERE LOWER(name) = LOWER($1)`, name).
		Scan(&city.ID, &city.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindCityByName: %w", err)
	}
	return city, nil
}

func (r *Repository) ListCities(ctx context.Context) ([]*models.City, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM cities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCities: %w", err)
	}
	defer rows.Close()

	var cities []*models.City
	for rows.Next() {
		city := &models.City{}
		if err := rows.Scan(&city.ID, &city.Name); err != nil {
			return nil, fmt.Errorf("repository.ListCities.Scan: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func (r *Repository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCategories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("repository.ListCategories.Scan: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
