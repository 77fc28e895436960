package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ctOP-IIITH/backend/internal/config"
	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/repository"
	"github.com/ctOP-IIITH/backend/internal/store"
)

const sessionKeyPrefix = "session:"

// Principal is the authenticated caller a verified token resolves to.
type Principal struct {
	UserID   int
	UserType string
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type authClaims struct {
	UserID   int    `json:"user_id"`
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// AuthService owns user accounts and JWT sessions. Every issued token's jti
// is written to the key-value store with the token's TTL, so logout can
// revoke a token before it expires.
type AuthService interface {
	Register(ctx context.Context, username, email, password, userType string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	// Refresh rotates the session: the old refresh token is revoked and a
	// fresh pair issued.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	// Verify checks signature, expiry and revocation, and resolves the caller.
	Verify(ctx context.Context, accessToken string) (*Principal, error)
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	GetUser(ctx context.Context, id int) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type authService struct {
	users    repository.UsersRepository
	sessions store.KV
	cfg      config.JWTConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(users repository.UsersRepository, sessions store.KV, cfg config.JWTConfig, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password, userType string) (*domain.User, error) {
	if username == "" || email == "" {
		return nil, Validationf("Username and email are required")
	}
	if len(password) < 8 {
		return nil, Validationf("Password must be at least 8 characters")
	}
	switch userType {
	case domain.RoleAdmin, domain.RoleUser, domain.RoleVendor:
	default:
		return nil, Validationf("Unknown user type %s", userType)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &domain.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		UserType: userType,
	}
	id, err := s.users.Insert(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("Email %s is already registered", email)
		}
		return nil, err
	}
	u.ID = id

	s.logger.Info("user registered",
		zap.Int("user_id", id),
		zap.String("user_type", userType),
	)
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorizedf("Incorrect email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, Unauthorizedf("Incorrect email or password")
	}
	return s.issuePair(ctx, u)
}

func (s *authService) issuePair(ctx context.Context, u *domain.User) (*TokenPair, error) {
	access, err := s.issue(ctx, u, s.cfg.Secret, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(ctx, u, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (s *authService) issue(ctx context.Context, u *domain.User, secret string, ttl time.Duration) (string, error) {
	now := s.now()
	jti := uuid.NewString()
	claims := authClaims{
		UserID:   u.ID,
		UserType: u.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.sessions.Set(ctx, sessionKeyPrefix+jti, "1", ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return signed, nil
}

func (s *authService) parse(ctx context.Context, token, secret string) (*authClaims, error) {
	claims := &authClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, Unauthorizedf("Could not validate credentials")
	}
	if _, err := s.sessions.Get(ctx, sessionKeyPrefix+claims.ID); err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, Unauthorizedf("Session has been revoked")
		}
		return nil, err
	}
	return claims, nil
}

func (s *authService) Verify(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.parse(ctx, accessToken, s.cfg.Secret)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: claims.UserID, UserType: claims.UserType}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(ctx, refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Unauthorizedf("Could not validate credentials")
		}
		return nil, err
	}
	if err := s.sessions.Delete(ctx, sessionKeyPrefix+claims.ID); err != nil {
		s.logger.Warn("failed to revoke refresh session", zap.Error(err))
	}
	return s.issuePair(ctx, u)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.parse(ctx, accessToken, s.cfg.Secret)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionKeyPrefix+claims.ID)
}

func (s *authService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return Validationf("Password must be at least 8 characters")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("User not found")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return Unauthorizedf("Incorrect password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *authService) GetUser(ctx context.Context, id int) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("User not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
