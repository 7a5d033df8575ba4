package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"brokerage/internal/domain"
	"brokerage/internal/retry"
)

var (
	ErrNotFound    = errors.New("property not found")
	ErrDuplicateID = errors.New("property id already exists")
	ErrPersistence = errors.New("could not persist catalog")
)

// Repository is the persistence port behind the Store. Save receives the
// whole collection in display order.
type Repository interface {
	Load(ctx context.Context) ([]domain.Property, error)
	Save(ctx context.Context, props []domain.Property) error
}

type Option func(*Store)

// WithRetry retries failed Save calls according to p.
func WithRetry(p retry.Policy) Option {
	return func(s *Store) { s.retry = p }
}

// Store is the single source of truth for the listing collection. Mutations
// are written through to the Repository before they become visible; a failed
// write leaves the in-memory collection as it was.
type Store struct {
	mu      sync.RWMutex
	repo    Repository
	retry   retry.Policy
	props   []domain.Property
	version uint64
	// epoch tells this process's versions apart from those of any other
	// process sharing the same cache.
	epoch string
}

func NewStore(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{repo: repo, epoch: uuid.NewString()}
	for _, o := range opts {
		o(s)
	}
	var props []domain.Property
	err := retry.Do(ctx, s.retry, func() error {
		var lerr error
		props, lerr = repo.Load(ctx)
		return lerr
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.props = props
	return s, nil
}

// All returns a copy of the collection in stored order.
func (s *Store) All() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.props)
}

func (s *Store) GetPropertyByID(id string) (domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.props[i].Clone(), true
	}
	return domain.Property{}, false
}

func (s *Store) Filtered(opts domain.FilterOptions) []domain.Property {
	return Filter(s.All(), opts)
}

func (s *Store) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Cities(s.props)
}

func (s *Store) Featured() []domain.Property {
	return Featured(s.All())
}

func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summarize(s.props)
}

// Recent returns the n newest listings.
func (s *Store) Recent(n int) []domain.Property {
	out := s.All()
	slices.SortStableFunc(out, comparator(domain.SortRecent))
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Version increases on every committed mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Revision names the current state of the collection. Unlike Version it is
// unique across restarts and across processes.
func (s *Store) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("%s.%d", s.epoch, s.version)
}

func (s *Store) AddProperty(ctx context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(p.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	next := append(slices.Clip(s.props), p.Clone())
	return s.commit(ctx, next)
}

// UpdateProperty replaces the record with the given id. The id itself never
// changes and a zero CreatedAt keeps the stored one.
func (s *Store) UpdateProperty(ctx context.Context, id string, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p = p.Clone()
	p.ID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.props[i].CreatedAt
	}
	next := slices.Clone(s.props)
	next[i] = p
	return s.commit(ctx, next)
}

// DeleteProperty removes the record with the given id. Deleting an absent id
// is a no-op and performs no write.
func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.props), i, i+1)
	return s.commit(ctx, next)
}

func (s *Store) commit(ctx context.Context, next []domain.Property) error {
	err := retry.Do(ctx, s.retry, func() error { return s.repo.Save(ctx, next) })
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.props = next
	s.version++
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.props, func(p domain.Property) bool { return p.ID == id })
}

func cloneAll(props []domain.Property) []domain.Property {
	out := make([]domain.Property, len(props))
	for i, p := range props {
		out[i] = p.Clone()
	}
	return out
}
