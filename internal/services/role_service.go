package services

import (
	"context"
	"database/sql"
	"errors"

	"brokerage/internal/domain"
	"brokerage/internal/retry"
)

// Authorizer answers role questions independently of how the identity was
// authenticated.
type Authorizer interface {
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)
}

type RoleService struct {
	Users interface {
		ByID(ctx context.Context, id string) (*domain.User, error)
	}
	Retry retry.Policy
}

func (s *RoleService) HasRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	var u *domain.User
	err := retry.Do(ctx, s.Retry, func() error {
		var lerr error
		u, lerr = s.Users.ByID(ctx, userID)
		return lerr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Role == role, nil
}
