package restaurants

import (
	"context"
	"errors"
	"fmt"

	"food-delivery-backend/internal/models"

	"github.com/google/uuid"
)

// Searcher is the free-text search backend (Elasticsearch). It returns
// matching restaurant IDs, best matches first.
type Searcher interface {
	SearchRestaurants(ctx context.Context, query string, limit int) ([]string, error)
}

// ServiceInterface defines the restaurant discovery contract.
type ServiceInterface interface {
	Get(ctx context.Context, restaurantID string) (*models.Restaurant, error)
	List(ctx context.Context, q models.RestaurantQuery) ([]*models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) ([]*models.MenuItem, error)
	ListCities(ctx context.Context) ([]*models.City, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ResolveCityRef(ctx context.Context, ref string) (*models.City, error)
}

// Service implements restaurant discovery and the shared city resolver.
type Service struct {
	repo     RepositoryInterface
	searcher Searcher
}

func NewService(repo RepositoryInterface, searcher Searcher) *Service {
	return &Service{repo: repo, searcher: searcher}
}

func (s *Service) Get(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	return s.repo.FindByID(ctx, restaurantID)
}

// List serves GET /restaurants. A search query goes through Elasticsearch,
// coordinates run a nearest-neighbor query, and a city filter lists by city;
// the filters are alternatives, checked in that order.
func (s *Service) List(ctx context.Context, q models.RestaurantQuery) ([]*models.Restaurant, error) {
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Page < 1 {
		q.Page = 1
	}

	switch {
	case q.Search != "" && s.searcher != nil:
		ids, err := s.searcher.SearchRestaurants(ctx, q.Search, q.Limit)
		if err != nil {
			return nil, fmt.Errorf("service.List: %w", err)
		}
		if len(ids) == 0 {
			return []*models.Restaurant{}, nil
		}
		return s.repo.FindByIDs(ctx, ids)

	case q.Lat != nil && q.Lng != nil:
		maxDist := q.MaxDistance
		if maxDist <= 0 {
			maxDist = 10000 // meters
		}
		return s.repo.FindNearby(ctx, *q.Lat, *q.Lng, maxDist, q.Limit)

	case q.City != "":
		city, err := s.ResolveCityRef(ctx, q.City)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return []*models.Restaurant{}, nil
			}
			return nil, fmt.Errorf("service.List: %w", err)
		}
		return s.repo.ListByCity(ctx, city.ID, q.Page, q.Limit)

	default:
		return nil, fmt.Errorf("%w: provide a search query, coordinates, or a city", models.ErrInvalidInput)
	}
}

// GetMenu lists a restaurant's menu with options. The restaurant must exist;
// an empty menu is not an error.
func (s *Service) GetMenu(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	if _, err := s.repo.FindByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	menu, err := s.repo.ListMenu(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("service.GetMenu: %w", err)
	}
	return menu, nil
}

func (s *Service) ListCities(ctx context.Context) ([]*models.City, error) {
	return s.repo.ListCities(ctx)
}

func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// ResolveCityRef implements the resolve-or-fallback rule for city
// references: a ref shaped like an identifier is first resolved as one, and
// on a miss (or when it is not an identifier at all) it is treated as the
// city's literal display name. Callers that only know the name keep working.
func (s *Service) ResolveCityRef(ctx context.Context, ref string) (*models.City, error) {
	if _, err := uuid.Parse(ref); err == nil {
		city, err := s.repo.FindCityByID(ctx, ref)
		if err == nil {
			return city, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		// Fall through: an ID-shaped string can still be a name.
	}
	return s.repo.FindCityByName(ctx, ref)
}
