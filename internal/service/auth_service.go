package service

import (
	"context"
	"log/slog"

	"splitfair/internal/auth"
	"splitfair/internal/models"
)

// Session is the result of a successful register or login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"-"`
}

// AuthService implements the local register/login flow. Provider-synced
// accounts never pass through here; they authenticate at the provider and
// arrive via UserService.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager}
}

// Register creates a new local account and returns a session token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		slog.Warn("Register failed", "email", email, "error", err)
		return nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Register: failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email)
		return nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Login: failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	return &Session{Token: token, User: user}, nil
}
