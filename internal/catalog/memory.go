package catalog

import (
	"context"
	"slices"
	"sync"

	"brokerage/internal/domain"
)

// MemoryRepository keeps the collection in process memory. Err, when set, is
// returned by every Save.
type MemoryRepository struct {
	mu    sync.Mutex
	props []domain.Property
	Saves int
	Err   error
}

func NewMemoryRepository(props ...domain.Property) *MemoryRepository {
	return &MemoryRepository{props: cloneAll(props)}
}

func (r *MemoryRepository) Load(_ context.Context) ([]domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAll(r.props), nil
}

func (r *MemoryRepository) Save(_ context.Context, props []domain.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Saves++
	r.props = cloneAll(props)
	return nil
}

// MemoryFavorites is a FavoritesRepository backed by a map.
type MemoryFavorites struct {
	mu  sync.Mutex
	ids map[string][]string
	Err error
}

func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{ids: map[string][]string{}}
}

func (m *MemoryFavorites) Favorites(_ context.Context, clientID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ids[clientID]), nil
}

func (m *MemoryFavorites) ToggleFavorite(_ context.Context, clientID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	cur := m.ids[clientID]
	if i := slices.Index(cur, id); i >= 0 {
		m.ids[clientID] = slices.Delete(slices.Clone(cur), i, i+1)
		return false, nil
	}
	m.ids[clientID] = append(slices.Clone(cur), id)
	return true, nil
}
