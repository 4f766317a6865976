package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/listing-api/internal/cache"
	"github.com/yourorg/listing-api/internal/cdn"
	"github.com/yourorg/listing-api/internal/env"
	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/fsstore"
	"github.com/yourorg/listing-api/internal/invalidator"
	"github.com/yourorg/listing-api/internal/logger"
	"github.com/yourorg/listing-api/internal/redisx"
	"github.com/yourorg/listing-api/internal/store"
	"github.com/yourorg/listing-api/listing"
)

func main() {
	env.LoadDotenv()
	cfg, err := env.LoadServer()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files := fsstore.New(os.DirFS(cfg.CatalogDir), ".", cfg.AssetBaseURL)

	var pg *store.Store
	if cfg.CatalogSource == "postgres" || cfg.AssetSource == "postgres" {
		pg, err = store.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
		defer pg.Close()
		ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
		if err := pg.Ping(ctx); err != nil {
			cancel()
			log.Fatalf("postgres ping error: %v", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			cancel()
			log.Fatalf("postgres migrate error: %v", err)
		}
		cancel()
	}

	var defs listing.DefinitionSource = files
	if cfg.CatalogSource == "postgres" {
		defs = pg
	}
	var assets listing.AssetSource = files
	switch cfg.AssetSource {
	case "cdn":
		assets = cdn.NewClient(cfg.CDNBaseURL)
	case "postgres":
		assets = pg
	}

	opts := []listing.Option{}
	if cfg.StrictIDs {
		opts = append(opts, listing.WithStrictIDs())
	}
	var catalog listing.Loader = listing.NewRepository(defs, assets, opts...)

	if cfg.RedisAddr != "" {
		rc := redisx.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rc.Close()
		ctx, cancel := context.WithTimeout(rootCtx, 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("[WARN] redis ping failed, reads will fall back to direct loads: %v", err)
		}
		cancel()
		cached := cache.New(catalog, rc, cache.Options{
			TTL:        cfg.CacheTTL,
			StaleAfter: cfg.CacheStaleAfter,
			Source:     cfg.CatalogSource,
		})
		defer cached.Close()
		catalog = cached

		if len(cfg.Kafka.Brokers) > 0 {
			bus := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
			defer bus.Close()
			go (&invalidator.Invalidator{Sub: bus, Cache: cached}).Run(rootCtx)
		}
	}

	deps := RouterDeps{Catalog: catalog, RateLimitPerMin: cfg.RateLimitPerMin}
	if cfg.AssetSource == "fs" {
		deps.MediaPrefix = files.URLPrefix
		deps.Media = files.MediaHandler()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logger.Middleware(BuildRouter(deps)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-rootCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("listing-api listening on :%s (catalog=%s assets=%s)", cfg.Port, cfg.CatalogSource, cfg.AssetSource)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
