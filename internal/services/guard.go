package services

import (
	"context"
	"errors"
	"fmt"

	"brokerage/internal/domain"
)

type GuardState string

const (
	StateChecking GuardState = "checking"
	StateAdmin    GuardState = "authenticated-admin"
	StateDenied   GuardState = "denied"
)

var ErrAccessDenied = errors.New("access denied")

// Guard composes authentication and authorization for the admin area.
// Anything short of a confirmed admin role is denied.
type Guard struct {
	Auth  Authenticator
	Roles Authorizer
}

func NewGuard(auth Authenticator, roles Authorizer) *Guard {
	return &Guard{Auth: auth, Roles: roles}
}

// Check resolves the state for a session token. A signed-in user without the
// admin role is signed out before being denied. The error is only set when
// the identity service itself failed; the state is denied in that case too.
func (g *Guard) Check(ctx context.Context, token string) (GuardState, *domain.User, error) {
	if token == "" {
		return StateDenied, nil, nil
	}
	u, err := g.Auth.CurrentUser(ctx, token)
	if errors.Is(err, ErrNoSession) {
		return StateDenied, nil, nil
	}
	if err != nil || u == nil {
		return StateDenied, nil, err
	}
	ok, err := g.Roles.HasRole(ctx, u.ID, domain.RoleAdmin)
	if err != nil {
		return StateDenied, nil, fmt.Errorf("role lookup: %w", err)
	}
	if !ok {
		if err := g.Auth.SignOut(ctx, token); err != nil {
			return StateDenied, nil, fmt.Errorf("sign out non-admin %s: %w", u.ID, err)
		}
		return StateDenied, nil, nil
	}
	return StateAdmin, u, nil
}

// Login authenticates and then requires the admin role. When the role is
// missing the session that was just opened is closed again.
func (g *Guard) Login(ctx context.Context, email, password string) (Session, error) {
	sess, err := g.Auth.SignIn(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	ok, err := g.Roles.HasRole(ctx, sess.User.ID, domain.RoleAdmin)
	if err != nil || !ok {
		if serr := g.Auth.SignOut(ctx, sess.Token); serr != nil {
			return Session{}, fmt.Errorf("%w: sign out: %w", ErrAccessDenied, serr)
		}
		if err != nil {
			return Session{}, fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}
		return Session{}, ErrAccessDenied
	}
	return sess, nil
}

// Logout ends the session; an empty token is a no-op.
func (g *Guard) Logout(ctx context.Context, token string) error {
	return g.Auth.SignOut(ctx, token)
}
