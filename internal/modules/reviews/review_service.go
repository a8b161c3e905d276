package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"

	"food-delivery-backend/internal/models"
	"food-delivery-backend/internal/policy"
)

// RestaurantRatings is the slice of restaurant storage the review flow
// needs: existence checks plus the derived-aggregate write. SetRating is the
// only path that may touch a restaurant's rating and review count.
type RestaurantRatings interface {
	FindByID(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	SetRating(ctx context.Context, restaurantID string, rating float64, reviewCount int) error
}

// ServiceInterface defines the review and rating-aggregation contract.
type ServiceInterface interface {
	Create(ctx context.Context, restaurantID string, userID *string, req models.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, reviewID string, actor policy.Actor, req models.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, reviewID string, actor policy.Actor) error
	ListForRestaurant(ctx context.Context, restaurantID string) ([]*models.Review, error)
	RecomputeRating(ctx context.Context, restaurantID string) error
}

// Service implements review mutations. Every mutation recomputes the
// restaurant's rating aggregate synchronously, before the request is
// acknowledged; the aggregate is never updated by a hidden storage hook.
type Service struct {
	repo        RepositoryInterface
	restaurants RestaurantRatings
}

func NewService(repo RepositoryInterface, restaurants RestaurantRatings) *Service {
	return &Service{repo: repo, restaurants: restaurants}
}

// Create adds a review. An authenticated user may review a restaurant at
// most once.
func (s *Service) Create(ctx context.Context, restaurantID string, userID *string, req models.CreateReviewRequest) (*models.Review, error) {
	if _, err := s.restaurants.FindByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	if userID != nil {
		_, err := s.repo.FindByUserAndRestaurant(ctx, *userID, restaurantID)
		if err == nil {
			return nil, fmt.Errorf("%w: you have already reviewed this restaurant", models.ErrConflict)
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("service.Create: %w", err)
		}
	}

	review, err := s.repo.Create(ctx, &models.Review{
		RestaurantID: restaurantID,
		UserID:       userID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}

	if err := s.RecomputeRating(ctx, restaurantID); err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	return review, nil
}

// Update changes a review's rating or comment and recomputes the aggregate.
func (s *Service) Update(ctx context.Context, reviewID string, actor policy.Actor, req models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	owns := review.UserID != nil && *review.UserID == actor.UserID
	if !policy.Can(actor, policy.ActionDeleteReview, owns) {
		return nil, models.ErrUnauthorized
	}

	updated, err := s.repo.UpdateRating(ctx, reviewID, req.Rating, req.Comment)
	if err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}

	if err := s.RecomputeRating(ctx, updated.RestaurantID); err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a review and recomputes the aggregate.
func (s *Service) Delete(ctx context.Context, reviewID string, actor policy.Actor) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}

	owns := review.UserID != nil && *review.UserID == actor.UserID
	if !policy.Can(actor, policy.ActionDeleteReview, owns) {
		return models.ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return err
	}
	return s.RecomputeRating(ctx, review.RestaurantID)
}

func (s *Service) ListForRestaurant(ctx context.Context, restaurantID string) ([]*models.Review, error) {
	reviews, err := s.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("service.ListForRestaurant: %w", err)
	}
	return reviews, nil
}

// RecomputeRating recalculates the restaurant's mean rating (rounded to one
// decimal place) and review count from the full current review set and
// writes both onto the restaurant. With zero reviews it short-circuits and
// leaves the stored values unchanged, matching the historical behavior of
// the aggregation pipeline.
func (s *Service) RecomputeRating(ctx context.Context, restaurantID string) error {
	ratings, err := s.repo.ListRatings(ctx, restaurantID)
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	if len(ratings) == 0 {
		return nil
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := math.Round(float64(sum)/float64(len(ratings))*10) / 10

	if err := s.restaurants.SetRating(ctx, restaurantID, mean, len(ratings)); err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	return nil
}
