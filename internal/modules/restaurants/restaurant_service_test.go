package restaurants

import (
	"context"
	"errors"
	"testing"

	"food-delivery-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeRestaurantRepo struct {
	restaurants   map[string]*models.Restaurant
	menus         map[string][]*models.MenuItem
	categories    []*models.Category
	citiesByID    map[string]*models.City
	citiesByName  map[string]*models.City
	cityIDLookups int
	nameLookups   int
}

func newFakeRestaurantRepo() *fakeRestaurantRepo {
	return &fakeRestaurantRepo{
		restaurants:  map[string]*models.Restaurant{},
		menus:        map[string][]*models.MenuItem{},
		citiesByID:   map[string]*models.City{},
		citiesByName: map[string]*models.City{},
	}
}

func (f *fakeRestaurantRepo) addCity(city *models.City) {
	f.citiesByID[city.ID] = city
	f.citiesByName[city.Name] = city
}

func (f *fakeRestaurantRepo) FindByID(_ context.Context, id string) (*models.Restaurant, error) {
	rest, ok := f.restaurants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return rest, nil
}

func (f *fakeRestaurantRepo) FindByIDs(_ context.Context, ids []string) ([]*models.Restaurant, error) {
	var out []*models.Restaurant
	for _, id := range ids {
		if rest, ok := f.restaurants[id]; ok {
			out = append(out, rest)
		}
	}
	return out, nil
}

func (f *fakeRestaurantRepo) ListByCity(_ context.Context, cityID string, _, _ int) ([]*models.Restaurant, error) {
	var out []*models.Restaurant
	for _, rest := range f.restaurants {
		if rest.CityID == cityID {
			out = append(out, rest)
		}
	}
	return out, nil
}

func (f *fakeRestaurantRepo) IDsByCity(_ context.Context, cityID string) ([]string, error) {
	var out []string
	for _, rest := range f.restaurants {
		if rest.CityID == cityID {
			out = append(out, rest.ID)
		}
	}
	return out, nil
}

func (f *fakeRestaurantRepo) FindNearby(_ context.Context, _, _, _ float64, _ int) ([]*models.Restaurant, error) {
	return nil, nil
}

func (f *fakeRestaurantRepo) SetRating(_ context.Context, id string, rating float64, count int) error {
	if rest, ok := f.restaurants[id]; ok {
		rest.Rating = rating
		rest.ReviewCount = count
	}
	return nil
}

func (f *fakeRestaurantRepo) ListMenu(_ context.Context, restaurantID string) ([]*models.MenuItem, error) {
	return f.menus[restaurantID], nil
}

func (f *fakeRestaurantRepo) ListCategories(_ context.Context) ([]*models.Category, error) {
	return f.categories, nil
}

func (f *fakeRestaurantRepo) FindCityByID(_ context.Context, cityID string) (*models.City, error) {
	f.cityIDLookups++
	city, ok := f.citiesByID[cityID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return city, nil
}

func (f *fakeRestaurantRepo) FindCityByName(_ context.Context, name string) (*models.City, error) {
	f.nameLookups++
	city, ok := f.citiesByName[name]
	if !ok {
		return nil, models.ErrNotFound
	}
	return city, nil
}

func (f *fakeRestaurantRepo) ListCities(_ context.Context) ([]*models.City, error) {
	var out []*models.City
	for _, city := range f.citiesByID {
		out = append(out, city)
	}
	return out, nil
}

type fakeSearcher struct {
	err error
	ids []string
}

func (f *fakeSearcher) SearchRestaurants(_ context.Context, _ string, _ int) ([]string, error) {
	return f.ids, f.err
}

const springfieldID = "11111111-1111-1111-1111-111111111111"

// --- tests ---

func TestResolveCityRef(t *testing.T) {
	t.Parallel()

	t.Run("identifier-shaped ref resolves by identifier", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		repo.addCity(&models.City{ID: springfieldID, Name: "Springfield"})
		svc := NewService(repo, nil)

		city, err := svc.ResolveCityRef(context.Background(), springfieldID)
		require.NoError(t, err)
		assert.Equal(t, "Springfield", city.Name)
		assert.Equal(t, 1, repo.cityIDLookups)
		assert.Equal(t, 0, repo.nameLookups)
	})

	t.Run("plain name skips the identifier lookup", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		repo.addCity(&models.City{ID: springfieldID, Name: "Springfield"})
		svc := NewService(repo, nil)

		city, err := svc.ResolveCityRef(context.Background(), "Springfield")
		require.NoError(t, err)
		assert.Equal(t, springfieldID, city.ID)
		assert.Equal(t, 0, repo.cityIDLookups)
	})

	t.Run("identifier-shaped name falls back to the name lookup", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		// A city literally named like a UUID. Unusual, but the fallback
		// rule says the miss on the ID lookup must not end the resolution.
		weird := "99999999-9999-9999-9999-999999999999"
		repo.addCity(&models.City{ID: springfieldID, Name: weird})
		svc := NewService(repo, nil)

		city, err := svc.ResolveCityRef(context.Background(), weird)
		require.NoError(t, err)
		assert.Equal(t, springfieldID, city.ID)
		assert.Equal(t, 1, repo.cityIDLookups)
		assert.Equal(t, 1, repo.nameLookups)
	})

	t.Run("unknown ref reports not found", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeRestaurantRepo(), nil)

		_, err := svc.ResolveCityRef(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListRestaurants(t *testing.T) {
	t.Parallel()

	seed := func(repo *fakeRestaurantRepo) {
		repo.addCity(&models.City{ID: springfieldID, Name: "Springfield"})
		repo.restaurants["rest-1"] = &models.Restaurant{ID: "rest-1", Name: "Luigi's", CityID: springfieldID}
		repo.restaurants["rest-2"] = &models.Restaurant{ID: "rest-2", Name: "Moe's", CityID: "other-city"}
	}

	t.Run("search query goes through the search backend", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		seed(repo)
		svc := NewService(repo, &fakeSearcher{ids: []string{"rest-2"}})

		out, err := svc.List(context.Background(), models.RestaurantQuery{Search: "moe"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Moe's", out[0].Name)
	})

	t.Run("search backend failure surfaces", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		seed(repo)
		svc := NewService(repo, &fakeSearcher{err: errors.New("cluster red")})

		_, err := svc.List(context.Background(), models.RestaurantQuery{Search: "moe"})
		assert.Error(t, err)
	})

	t.Run("city filter accepts either form of the reference", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		seed(repo)
		svc := NewService(repo, nil)

		byName, err := svc.List(context.Background(), models.RestaurantQuery{City: "Springfield"})
		require.NoError(t, err)
		byID, err := svc.List(context.Background(), models.RestaurantQuery{City: springfieldID})
		require.NoError(t, err)

		require.Len(t, byName, 1)
		assert.ElementsMatch(t, byName, byID)
	})

	t.Run("unknown city yields an empty listing", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		seed(repo)
		svc := NewService(repo, nil)

		out, err := svc.List(context.Background(), models.RestaurantQuery{City: "Atlantis"})
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("no filter at all is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeRestaurantRepo(), nil)

		_, err := svc.List(context.Background(), models.RestaurantQuery{})
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestGetMenu(t *testing.T) {
	t.Parallel()

	t.Run("returns items with their options", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		repo.restaurants["rest-1"] = &models.Restaurant{ID: "rest-1", Name: "Luigi's"}
		repo.menus["rest-1"] = []*models.MenuItem{
			{ID: "item-1", RestaurantID: "rest-1", Name: "Margherita", Price: 9.50,
				Options: []models.Option{{ID: "opt-1", MenuItemID: "item-1", Name: "Extra cheese", Price: 1.50}}},
			{ID: "item-2", RestaurantID: "rest-1", Name: "Tiramisu", Price: 5.00},
		}
		svc := NewService(repo, nil)

		menu, err := svc.GetMenu(context.Background(), "rest-1")
		require.NoError(t, err)
		require.Len(t, menu, 2)
		require.Len(t, menu[0].Options, 1)
		assert.Equal(t, "Extra cheese", menu[0].Options[0].Name)
	})

	t.Run("unknown restaurant reports not found", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeRestaurantRepo(), nil)

		_, err := svc.GetMenu(context.Background(), "rest-missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("empty menu is not an error", func(t *testing.T) {
		t.Parallel()
		repo := newFakeRestaurantRepo()
		repo.restaurants["rest-1"] = &models.Restaurant{ID: "rest-1", Name: "Luigi's"}
		svc := NewService(repo, nil)

		menu, err := svc.GetMenu(context.Background(), "rest-1")
		require.NoError(t, err)
		assert.Empty(t, menu)
	})
}

func TestListCategories(t *testing.T) {
	t.Parallel()

	repo := newFakeRestaurantRepo()
	repo.categories = []*models.Category{
		{ID: "cat-1", Name: "Italian"},
		{ID: "cat-2", Name: "Sushi"},
	}
	svc := NewService(repo, nil)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Italian", categories[0].Name)
}
