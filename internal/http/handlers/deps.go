package handlers

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"brokerage/internal/cache"
	"brokerage/internal/catalog"
	"brokerage/internal/config"
	"brokerage/internal/domain"
	"brokerage/internal/metrics"
	"brokerage/internal/repos"
	"brokerage/internal/retry"
	"brokerage/internal/services"
)

// SettingsStore persists the single site profile.
type SettingsStore interface {
	Get(ctx context.Context) (domain.SiteSettings, error)
	Save(ctx context.Context, s domain.SiteSettings) error
}

type Deps struct {
	Cfg      config.Config
	Store    *catalog.Store
	Favs     catalog.FavoritesRepository
	Settings SettingsStore
	Guard    *services.Guard
	Tokens   *services.TokenService
	Cache    *cache.ListingCache
	Metrics  *metrics.Metrics
	Retry    retry.Policy
}

// NewDeps wires the sqlite-backed services. rdb may be nil, which disables
// the API cache.
func NewDeps(ctx context.Context, db *sqlx.DB, cfg config.Config, rdb *redis.Client, m *metrics.Metrics) (*Deps, error) {
	policy := retry.DefaultPolicy(repos.IsTransient)
	if cfg.RetryAttempts > 0 {
		policy.MaxRetries = cfg.RetryAttempts
	}
	if cfg.RetryBackoff > 0 {
		policy.Backoff = cfg.RetryBackoff
	}

	store, err := catalog.NewStore(ctx, repos.NewPropertyRepo(db), catalog.WithRetry(policy))
	if err != nil {
		return nil, fmt.Errorf("catalog store: %w", err)
	}
	users := repos.NewUserRepo(db)
	auth := services.NewAuthService(users, cfg.SessionTTL, policy)
	roles := &services.RoleService{Users: users, Retry: policy}
	if m == nil {
		m = metrics.New()
	}

	return &Deps{
		Cfg:      cfg,
		Store:    store,
		Favs:     repos.NewFavoriteRepo(db),
		Settings: repos.NewSettingsRepo(db),
		Guard:    services.NewGuard(auth, roles),
		Tokens:   services.NewTokenService(cfg.JWTSecret),
		Cache:    cache.New(rdb, cfg.CacheTTL),
		Metrics:  m,
		Retry:    policy,
	}, nil
}
