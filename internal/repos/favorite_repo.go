package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// FavoriteRepo keeps favorite listing ids per browsing client (cookie "cid").
type FavoriteRepo struct{ db *sqlx.DB }

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) Favorites(ctx context.Context, clientID string) ([]string, error) {
	var out []string
	err := r.db.SelectContext(ctx, &out, `
	  SELECT property_id FROM favorites
	  WHERE client_id = ?
	  ORDER BY position
	`, clientID)
	return out, err
}

// ToggleFavorite removes id from the client's favorites, or appends it when it
// was absent, inside one transaction. It reports whether id is now a favorite.
func (r *FavoriteRepo) ToggleFavorite(ctx context.Context, clientID, id string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	// The DELETE takes the write lock, so no other toggle can interleave.
	res, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE client_id=? AND property_id=?`, clientID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO favorites(client_id, property_id, position, created_at)
		  SELECT ?, ?, COALESCE(MAX(position), -1) + 1, CURRENT_TIMESTAMP
		  FROM favorites WHERE client_id = ?
		`, clientID, id, clientID); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return n == 0, nil
}
