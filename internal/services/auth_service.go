package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"brokerage/internal/domain"
	"brokerage/internal/retry"
)

var (
	ErrBadCreds  = errors.New("invalid email or password")
	ErrNoSession = errors.New("no active session")
)

const DefaultSessionTTL = 2 * time.Hour

// Session is an authenticated identity. Token is opaque to callers.
type Session struct {
	Token     string
	User      *domain.User
	ExpiresAt time.Time
}

// Authenticator is the identity service: credentials in, session out.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// UserStore is the slice of repos.UserRepo the auth services need.
type UserStore interface {
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ByID(ctx context.Context, id string) (*domain.User, error)
	BindSession(ctx context.Context, sid, userID string, expires time.Time) error
	SessionUser(ctx context.Context, sid string, now time.Time) (*domain.User, error)
	UnbindSession(ctx context.Context, sid string) error
}

type AuthService struct {
	Users UserStore
	TTL   time.Duration
	Retry retry.Policy
	Now   func() time.Time
}

func NewAuthService(users UserStore, ttl time.Duration, p retry.Policy) *AuthService {
	return &AuthService{Users: users, TTL: ttl, Retry: p}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultSessionTTL
}

// SignIn checks the password and opens a fresh session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	var u *domain.User
	err := retry.Do(ctx, s.Retry, func() error {
		var lerr error
		u, lerr = s.Users.ByEmail(ctx, email)
		return lerr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrBadCreds
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return Session{}, ErrBadCreds
	}

	sess := Session{Token: uuid.NewString(), User: u, ExpiresAt: s.now().Add(s.ttl())}
	err = retry.Do(ctx, s.Retry, func() error {
		return s.Users.BindSession(ctx, sess.Token, u.ID, sess.ExpiresAt)
	})
	if err != nil {
		return Session{}, fmt.Errorf("bind session: %w", err)
	}
	return sess, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return retry.Do(ctx, s.Retry, func() error { return s.Users.UnbindSession(ctx, token) })
}

func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	var u *domain.User
	err := retry.Do(ctx, s.Retry, func() error {
		var lerr error
		u, lerr = s.Users.SessionUser(ctx, token, s.now())
		return lerr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return u, nil
}

// HashPassword is used when provisioning accounts from the CLI.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
