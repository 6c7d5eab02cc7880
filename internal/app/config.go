package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	PGDSN         string `envconfig:"PG_DSN"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"optbazar"`

	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL            time.Duration `envconfig:"JWT_TTL" default:"12h"`
	AdminUsername     string        `envconfig:"ADMIN_USERNAME"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH"`

	OrderStatusPolicy string `envconfig:"ORDER_STATUS_POLICY" default:"strict"`

	KafkaBrokers       string `envconfig:"KAFKA_BROKERS"`
	KafkaExternalTopic string `envconfig:"KAFKA_EXTERNAL_TOPIC" default:"orders.external"`
	KafkaGroupID       string `envconfig:"KAFKA_GROUP_ID" default:"optbazar-intake"`
	KafkaEventsTopic   string `envconfig:"KAFKA_EVENTS_TOPIC" default:"orders.created"`

	CORSOrigins    []string `envconfig:"CORS_ORIGINS" default:"*"`
	SeedSampleData bool     `envconfig:"SEED_SAMPLE_DATA" default:"false"`

	StaleOrderAge     time.Duration `envconfig:"STALE_ORDER_AGE" default:"24h"`
	WorkerMetricsAddr string        `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt secret must be provided")
	}
	switch c.StorageDriver {
	case StoragePostgres:
		if c.PGDSN == "" {
			return errors.New("PG_DSN must be provided for the postgres storage driver")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI must be provided for the mongo storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if (c.AdminUsername == "") != (c.AdminPasswordHash == "") {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD_HASH must be set together")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// KafkaEnabled reports whether the external order consumer should run.
func (c *Config) KafkaEnabled() bool {
	return c != nil && strings.TrimSpace(c.KafkaBrokers) != ""
}
