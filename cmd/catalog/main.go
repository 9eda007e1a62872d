package main

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"StoreFront/internal/auth"
	"StoreFront/internal/catalog"
	"StoreFront/internal/wishlist"
	"StoreFront/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}

	ctx := context.Background()

	upstream := catalog.NewUpstreamClient(cfg.UpstreamURL)
	products := catalog.NewProductStore(upstream, log)
	categories := catalog.NewCategoryStore(upstream, log)

	mirror, err := buildMirror(ctx, cfg)
	if err != nil {
		log.Fatal("init wishlist backend failed", zap.Error(err))
	}
	log.Info("wishlist backend", zap.String("backend", cfg.Wishlist.Backend))

	var tokenMaker *auth.TokenMaker
	if cfg.JWTSecret != "" {
		tokenMaker = auth.NewTokenMaker(cfg.JWTSecret)
	} else {
		log.Warn("no JWT secret configured, product write routes are open")
	}

	s := &catalog.Server{
		Products:   products,
		Categories: categories,
		Wishlist:   wishlist.New(ctx, mirror, log),
		Editor:     catalog.NewEditor(products),
		Auth:       tokenMaker,
		Log:        log,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		CORSOrigins:    cfg.CORS.Origins,
	})

	// The two initial fetches are independent and may finish in
	// either order.
	go products.Refresh(ctx)
	go categories.Refresh(ctx)

	if err := kit.RunHTTPServer(cfg.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildMirror(ctx context.Context, cfg *Config) (wishlist.Mirror, error) {
	switch cfg.Wishlist.Backend {
	case "memory":
		return wishlist.NopMirror{}, nil

	case "postgres":
		db, err := sql.Open("pgx", cfg.Wishlist.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres")
		}
		mirror, err := wishlist.NewPostgresMirror(ctx, db)
		if err != nil {
			return nil, errors.Wrap(err, "init postgres mirror")
		}
		return mirror, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Wishlist.RedisAddr})
		mirror := wishlist.NewRedisMirror(client)
		if err := mirror.Ping(ctx); err != nil {
			return nil, errors.Wrap(err, "ping redis")
		}
		return mirror, nil

	default:
		return nil, errors.Errorf("unknown wishlist backend %q", cfg.Wishlist.Backend)
	}
}
