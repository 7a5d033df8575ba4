package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"brokerage/internal/cache"
	"brokerage/internal/config"
	"brokerage/internal/http/handlers"
	"brokerage/internal/metrics"
	"brokerage/internal/repos"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "brokerage",
		Short:         "Real-estate listings site with an admin panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		seedCmd(),
		adminCmd(),
		exportCmd(),
	)
	return cmd
}

// openDB loads the configuration and opens the database, seeding it on
// first use.
func openDB() (config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	site := repos.DefaultSiteSettings()
	if cfg.Site != nil {
		site = *cfg.Site
	}
	db, err := repos.Open(cfg.DBDSN, site)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}

func serve(ctx context.Context) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// the API still works uncached
			log.Printf("[warn] redis unavailable, caching disabled: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	deps, err := handlers.NewDeps(ctx, db, cfg, rdb, metrics.New())
	if err != nil {
		return err
	}
	app := handlers.NewApp(deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[http] listening on :%s", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("[http] shutting down")
		return app.ShutdownWithContext(sctx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
