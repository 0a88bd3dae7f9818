package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/models"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

func setupAuth(t *testing.T) (*AuthService, *store.DocumentStore) {
	t.Helper()
	db := setupTestDB(t)
	docs := store.NewDocumentStore(db, store.NewLocalBus(), nil)
	return NewAuthService(db, docs, "test-secret", nil), docs
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	svc, docs := setupAuth(t)
	ctx := context.Background()

	var events []AuthEvent
	svc.OnAuthChange(func(e AuthEvent) { events = append(events, e) })

	user, token, err := svc.Register(ctx, &types.RegisterRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)

	var profile types.Profile
	found, err := docs.Get(ctx, user.ID, store.Profiles, &profile)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, types.DefaultCalorieGoal, profile.Preferences.CalorieGoal)
	assert.Empty(t, profile.Preferences.DietaryPreferences)

	assert.Equal(t, []AuthEvent{{Type: AuthEventLogin, UserID: user.ID}}, events)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  types.RegisterRequest
	}{
		{"missing name", types.RegisterRequest{Email: "a@b.co", Password: "secret1"}},
		{"missing password", types.RegisterRequest{Name: "A", Email: "a@b.co"}},
		{"bad email", types.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, &tt.req)
			assert.ErrorIs(t, err, apperrors.ErrInvalidRequest)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, &types.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, &types.RegisterRequest{Name: "B", Email: "A@b.co", Password: "secret2"})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := setupAuth(t)
	ctx := context.Background()
	registered, _, err := svc.Register(ctx, &types.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret1"})
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "A@B.co ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@b.co", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestValidateTokenRejects(t *testing.T) {
	svc, _ := setupAuth(t)
	user := &models.User{ID: uuid.New(), Name: "A"}

	_, err := svc.ValidateToken("invalid.token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	other := NewAuthService(nil, nil, "other-secret", nil)
	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	expired, err := svc.GenerateToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, types.TokenClaims{UserID: user.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestLogoutNotifiesListeners(t *testing.T) {
	svc, _ := setupAuth(t)
	userID := uuid.New()

	var got []AuthEvent
	stop := svc.OnAuthChange(func(e AuthEvent) { got = append(got, e) })

	require.NoError(t, svc.Logout(context.Background(), userID))
	assert.Equal(t, []AuthEvent{{Type: AuthEventLogout, UserID: userID}}, got)

	stop()
	require.NoError(t, svc.Logout(context.Background(), userID))
	assert.Len(t, got, 1)

	assert.ErrorIs(t, svc.Logout(context.Background(), uuid.Nil), apperrors.ErrAuthenticationRequired)
}

func TestCurrentUser(t *testing.T) {
	svc, _ := setupAuth(t)

	_, err := svc.CurrentUser(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAuthenticationRequired)

	userID := uuid.New()
	got, err := svc.CurrentUser(middleware.WithUserID(context.Background(), userID))
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
