package catalog

import (
	"context"
	"fmt"
	"slices"

	"brokerage/internal/domain"
)

// FavoritesRepository persists the favorite listing ids of one browsing client.
// ToggleFavorite must flip a single id atomically and report whether it is
// now present, so concurrent toggles from one client never drop each other.
type FavoritesRepository interface {
	Favorites(ctx context.Context, clientID string) ([]string, error)
	ToggleFavorite(ctx context.Context, clientID, id string) (bool, error)
}

// View is one browsing client's window onto the Store: its active filters
// and its favorites.
type View struct {
	store     *Store
	favs      FavoritesRepository
	clientID  string
	filters   domain.FilterOptions
	favorites []string
}

// NewView loads the client's favorites and starts from the default filters.
func (s *Store) NewView(ctx context.Context, favs FavoritesRepository, clientID string) (*View, error) {
	ids, err := favs.Favorites(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return &View{
		store:     s,
		favs:      favs,
		clientID:  clientID,
		filters:   domain.DefaultFilters(),
		favorites: ids,
	}, nil
}

func (v *View) Filters() domain.FilterOptions { return v.filters }

func (v *View) SetFilters(p domain.FilterPatch) { v.filters = v.filters.Merge(p) }

func (v *View) ResetFilters() { v.filters = domain.DefaultFilters() }

func (v *View) FilteredProperties() []domain.Property {
	return v.store.Filtered(v.filters)
}

func (v *View) Favorites() []string { return slices.Clone(v.favorites) }

func (v *View) IsFavorite(id string) bool { return slices.Contains(v.favorites, id) }

// ToggleFavorite adds id when absent and removes it when present. On a failed
// write the set is left unchanged.
func (v *View) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	added, err := v.favs.ToggleFavorite(ctx, v.clientID, id)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	next := slices.DeleteFunc(slices.Clone(v.favorites), func(f string) bool { return f == id })
	if added {
		next = append(next, id)
	}
	v.favorites = next
	return added, nil
}

// FavoriteProperties resolves favorites against the catalog, skipping ids
// that no longer exist.
func (v *View) FavoriteProperties() []domain.Property {
	var out []domain.Property
	for _, id := range v.favorites {
		if p, ok := v.store.GetPropertyByID(id); ok {
			out = append(out, p)
		}
	}
	return out
}
