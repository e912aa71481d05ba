package auth

import (
	"context"
	"errors"
	"time"

	"hrdesk/internal/requestctx"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked or expired")
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
}

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Session   Session   `json:"session"`
}

// Login verifies credentials and opens a session. The returned token carries
// the session id; the store keeps only its hash.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID, err := NewSessionID()
	if err != nil {
		return LoginResult{}, err
	}
	expires := time.Now().Add(s.ttl)
	if err := s.store.CreateSession(ctx, user.ID, HashToken(sessionID), expires); err != nil {
		return LoginResult{}, err
	}

	claims := Claims{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		EmployeeID:     user.EmployeeID,
		Role:           user.Role,
		SessionID:      sessionID,
	}
	token, err := GenerateToken(s.secret, claims, s.ttl)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		requestctx.Logger(ctx).Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	return LoginResult{Token: token, ExpiresAt: expires, Session: claims.Session()}, nil
}

func (s *Service) Logout(ctx context.Context, session Session) error {
	if session.SessionID == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, session.UserID, HashToken(session.SessionID))
}

// SessionActive implements the middleware session check.
func (s *Service) SessionActive(ctx context.Context, session Session) (bool, error) {
	if session.SessionID == "" {
		return false, nil
	}
	return s.store.SessionValid(ctx, session.UserID, HashToken(session.SessionID))
}
