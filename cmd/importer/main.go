package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/listing-api/internal/env"
	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/fsstore"
	"github.com/yourorg/listing-api/internal/importer"
	"github.com/yourorg/listing-api/internal/store"
)

func main() {
	env.LoadDotenv()
	cfg, err := env.LoadImporter()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	st, err := store.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("store open error: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := st.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("postgres ping error: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("postgres migrate error: %v", err)
	}
	cancel()

	var pub events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		bus := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
		defer bus.Close()
		pub = bus
	} else {
		log.Printf("[INFO] KAFKA_BROKERS not set; catalog.updated events are not published")
	}

	files := fsstore.New(os.DirFS(cfg.CatalogDir), ".", cfg.AssetBaseURL)
	job := &importer.SyncJob{
		Defs:   files,
		Assets: files,
		Store:  st,
		Pub:    pub,
		Config: importer.Config{Interval: cfg.Interval, Prune: cfg.Prune},
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RunOnce {
		if _, err := job.RunOnce(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("importer run failed: %v", err)
		}
		return
	}

	if err := job.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("importer stopped with error: %v", err)
	}
}
