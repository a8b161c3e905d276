package users

import (
	"context"
	"fmt"
	"testing"

	"food-delivery-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID    map[string]*models.User
	byEmail map[string]*models.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*models.User{}, byEmail: map[string]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := f.byID[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

const testSecret = "test-secret"

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates a customer and returns a signed token", func(t *testing.T) {
		t.Parallel()
		repo := newFakeUserRepo()
		svc := NewService(repo, testSecret)

		resp, err := svc.Signup(context.Background(), models.SignupRequest{
			Name: "Alice", Email: "alice@example.com", Password: "correct horse",
		})
		require.NoError(t, err)
		require.NotNil(t, resp.User)
		assert.Equal(t, models.RoleCustomer, resp.User.Role)
		assert.NotEmpty(t, resp.AccessToken)

		// Stored hash must verify against the original password.
		stored := repo.byEmail["alice@example.com"]
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse")))
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		t.Parallel()
		repo := newFakeUserRepo()
		svc := NewService(repo, testSecret)

		_, err := svc.Signup(context.Background(), models.SignupRequest{
			Name: "Alice", Email: "alice@example.com", Password: "correct horse",
		})
		require.NoError(t, err)

		_, err = svc.Signup(context.Background(), models.SignupRequest{
			Name: "Mallory", Email: "alice@example.com", Password: "hunter2hunter2",
		})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("token carries identity claims", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeUserRepo(), testSecret)

		resp, err := svc.Signup(context.Background(), models.SignupRequest{
			Name: "Alice", Email: "alice@example.com", Password: "correct horse",
		})
		require.NoError(t, err)

		claims := &models.JwtCustomClaims{}
		_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, "alice@example.com", claims.Email)
		assert.Equal(t, models.RoleCustomer, claims.Role)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	signup := func(svc *Service) {
		_, err := svc.Signup(context.Background(), models.SignupRequest{
			Name: "Alice", Email: "alice@example.com", Password: "correct horse",
		})
		if err != nil {
			panic(err)
		}
	}

	t.Run("valid credentials succeed", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeUserRepo(), testSecret)
		signup(svc)

		resp, err := svc.Login(context.Background(), models.LoginRequest{
			Email: "alice@example.com", Password: "correct horse",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeUserRepo(), testSecret)
		signup(svc)

		_, err := svc.Login(context.Background(), models.LoginRequest{
			Email: "alice@example.com", Password: "wrong",
		})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error as a wrong password", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeUserRepo(), testSecret)

		_, err := svc.Login(context.Background(), models.LoginRequest{
			Email: "nobody@example.com", Password: "whatever",
		})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}
