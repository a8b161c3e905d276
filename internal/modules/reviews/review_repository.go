package reviews

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for review storage.
type RepositoryInterface interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	FindByID(ctx context.Context, reviewID string) (*models.Review, error)
	FindByUserAndRestaurant(ctx context.Context, userID, restaurantID string) (*models.Review, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*models.Review, error)
	ListRatings(ctx context.Context, restaurantID string) ([]int, error)
	UpdateRating(ctx context.Context, reviewID string, rating *int, comment *string) (*models.Review, error)
	Delete(ctx context.Context, reviewID string) error
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const reviewColumns = `id, restaurant_id, user_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	var review models.Review
	err := row.Scan(
		&review.ID,
		&review.RestaurantID,
		&review.UserID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan review: %w", err)
	}
	return &review, nil
}

func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	query := `
		INSERT INTO reviews (restaurant_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reviewColumns

	created, err := scanReview(r.db.QueryRow(ctx, query,
		review.RestaurantID, review.UserID, review.Rating, review.Comment))
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return created, nil
}

func (r *Repository) FindByID(ctx context.Context, reviewID string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	review, err := scanReview(r.db.QueryRow(ctx, query, reviewID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return review, nil
}

func (r *Repository) FindByUserAndRestaurant(ctx context.Context, userID, restaurantID string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND restaurant_id = $2`
	review, err := scanReview(r.db.QueryRow(ctx, query, userID, restaurantID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByUserAndRestaurant: %w", err)
	}
	return review, nil
}

func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE restaurant_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByRestaurant: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// ListRatings returns just the rating values for a restaurant's current
// review set, for the aggregator.
func (r *Repository) ListRatings(ctx context.Context, restaurantID string) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT rating FROM reviews WHERE restaurant_id = $1`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListRatings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("repository.ListRatings.Scan: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}

func (r *Repository) UpdateRating(ctx context.Context, reviewID string, rating *int, comment *string) (*models.Review, error) {
	query := `
		UPDATE reviews
		SET rating = COALESCE($1, rating), comment = COALESCE($2, comment)
		WHERE id = $3
		RETURNING ` + reviewColumns

	review, err := scanReview(r.db.QueryRow(ctx, query, rating, comment, reviewID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateRating: %w", err)
	}
	return review, nil
}

func (r *Repository) Delete(ctx context.Context, reviewID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
