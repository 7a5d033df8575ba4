package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"brokerage/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,name,password_hash,role FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `SELECT id,email,name,password_hash,role FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user, or updates name/hash/role when the email exists.
func (r *UserRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users(id,email,name,password_hash,role)
		VALUES(?,?,?,?,?)
		ON CONFLICT(email) DO UPDATE SET
		  name=excluded.name, password_hash=excluded.password_hash,
		  role=excluded.role, updated_at=CURRENT_TIMESTAMP
	`, u.ID, u.Email, u.Name, u.Hash, u.Role)
	return err
}

func (r *UserRepo) BindSession(ctx context.Context, sid, userID string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO sessions(id,user_id,expires_at)
                          VALUES(?,?,?)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,expires_at=excluded.expires_at`,
		sid, userID, expires.UTC().Format(time.RFC3339))
	return err
}

// SessionUser returns the user bound to a live session.
func (r *UserRepo) SessionUser(ctx context.Context, sid string, now time.Time) (*domain.User, error) {
	var u domain.User
	err := r.DB.GetContext(ctx, &u, `
      SELECT u.id,u.email,u.name,u.password_hash,u.role
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=? AND s.expires_at > ?`, sid, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(ctx context.Context, sid string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, sid)
	return err
}

func (r *UserRepo) SessionCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM sessions WHERE user_id=?`, userID)
	return n, err
}
