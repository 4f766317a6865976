// Package env loads service configuration from the process environment,
// optionally seeded from a .env file.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	cenv "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotenv reads .env files into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotenv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[WARN] load .env: %v", err)
	}
}

// Parse fills target from environment variables using env/envDefault tags.
func Parse(target any) error {
	if err := cenv.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

type Kafka struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"KAFKA_TOPIC" envDefault:"catalog.updated"`
	GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"listing-api"`
}

type Server struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	CatalogDir      string        `env:"CATALOG_DIR" envDefault:"./properties"`
	CatalogSource   string        `env:"CATALOG_SOURCE" envDefault:"fs"`
	AssetSource     string        `env:"ASSET_SOURCE" envDefault:"fs"`
	AssetBaseURL    string        `env:"ASSET_BASE_URL" envDefault:"/media"`
	CDNBaseURL      string        `env:"CDN_BASE_URL"`
	PostgresDSN     string        `env:"PG_DSN"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	CacheStaleAfter time.Duration `env:"CACHE_STALE_AFTER" envDefault:"5m"`
	RateLimitPerMin int           `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
	StrictIDs       bool          `env:"STRICT_IDS" envDefault:"false"`
	Kafka           Kafka
}

// Validate checks combinations a single tag cannot express.
func (s Server) Validate() error {
	var errs []error
	switch s.CatalogSource {
	case "fs":
	case "postgres":
		if s.PostgresDSN == "" {
			errs = append(errs, errors.New("CATALOG_SOURCE=postgres requires PG_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_SOURCE %q", s.CatalogSource))
	}
	switch s.AssetSource {
	case "fs":
	case "cdn":
		if s.CDNBaseURL == "" {
			errs = append(errs, errors.New("ASSET_SOURCE=cdn requires CDN_BASE_URL"))
		}
	case "postgres":
		if s.PostgresDSN == "" {
			errs = append(errs, errors.New("ASSET_SOURCE=postgres requires PG_DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ASSET_SOURCE %q", s.AssetSource))
	}
	return errors.Join(errs...)
}

type Importer struct {
	PostgresDSN  string        `env:"PG_DSN,required"`
	CatalogDir   string        `env:"CATALOG_DIR" envDefault:"./properties"`
	AssetBaseURL string        `env:"ASSET_BASE_URL" envDefault:"/media"`
	Interval     time.Duration `env:"IMPORTER_INTERVAL" envDefault:"10m"`
	RunOnce      bool          `env:"IMPORTER_RUN_ONCE" envDefault:"false"`
	Prune        bool          `env:"IMPORTER_PRUNE" envDefault:"true"`
	Kafka        Kafka
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func LoadImporter() (Importer, error) {
	var cfg Importer
	err := Parse(&cfg)
	return cfg, err
}
