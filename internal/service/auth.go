package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/mealmate/backend/internal/apperrors"
	"github.com/pageza/mealmate/backend/internal/middleware"
	"github.com/pageza/mealmate/backend/internal/models"
	"github.com/pageza/mealmate/backend/internal/store"
	"github.com/pageza/mealmate/backend/internal/types"
)

const tokenTTL = 24 * time.Hour

// AuthEventType says what happened to a session.
type AuthEventType string

const (
	AuthEventLogin  AuthEventType = "login"
	AuthEventLogout AuthEventType = "logout"
)

// AuthEvent is delivered to OnAuthChange listeners.
type AuthEvent struct {
	Type   AuthEventType
	UserID uuid.UUID
}

type AuthService struct {
	db        *gorm.DB
	docs      Documents
	jwtSecret string
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.RWMutex
	listeners map[int]func(AuthEvent)
	nextID    int
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, docs Documents, jwtSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		db:        db,
		docs:      docs,
		jwtSecret: jwtSecret,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
		listeners: make(map[int]func(AuthEvent)),
	}
}

// Register creates an account with a default profile and signs it in.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, "", fmt.Errorf("%w: name, email and password are required", apperrors.ErrInvalidRequest)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", apperrors.ErrInvalidRequest)
	}

	// Check if user already exists
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.Persistence("lookup user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, "", apperrors.Persistence("create user", err)
	}

	if err := s.docs.Set(ctx, user.ID, store.Profiles, DefaultProfile(name, email)); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	s.notify(AuthEvent{Type: AuthEventLogin, UserID: user.ID})
	return &user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", apperrors.Persistence("lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	s.notify(AuthEvent{Type: AuthEventLogin, UserID: user.ID})
	return &user, token, nil
}

// Logout tells listeners the session ended. Tokens are stateless, so the
// client discards its own.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apperrors.ErrAuthenticationRequired
	}
	s.notify(AuthEvent{Type: AuthEventLogout, UserID: userID})
	return nil
}

// GenerateToken signs a session token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser returns the user a request was authenticated as.
func (s *AuthService) CurrentUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, apperrors.ErrAuthenticationRequired
	}
	return id, nil
}

// OnAuthChange registers fn for login and logout events and returns a
// function that removes it.
func (s *AuthService) OnAuthChange(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) notify(event AuthEvent) {
	s.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	s.logger.Debug("auth state changed",
		zap.String("event", string(event.Type)),
		zap.String("user_id", event.UserID.String()),
	)
	for _, fn := range fns {
		fn(event)
	}
}
