package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GoogleMaps   GoogleMapsConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	RateLimit    RateLimitConfig
	Maintenance  MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"FOODDASH_APP_ENV" required:"true"`
	Port         string   `envconfig:"FOODDASH_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"FOODDASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"FOODDASH_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"FOODDASH_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8081"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"FOODDASH_DB_DSN"`

	LegacyHost     string `envconfig:"FOODDASH_DB_HOST"`
	LegacyPort     int    `envconfig:"FOODDASH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FOODDASH_DB_USER"`
	LegacyPassword string `envconfig:"FOODDASH_DB_PASSWORD"`
	LegacyName     string `envconfig:"FOODDASH_DB_NAME"`
	LegacySSLMode  string `envconfig:"FOODDASH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FOODDASH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FOODDASH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FOODDASH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FOODDASH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"FOODDASH_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FOODDASH_REDIS_URL"`
	Address      string        `envconfig:"FOODDASH_REDIS_ADDR"`
	Password     string        `envconfig:"FOODDASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"FOODDASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FOODDASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FOODDASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FOODDASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FOODDASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FOODDASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FOODDASH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FOODDASH_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FOODDASH_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FOODDASH_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey  string        `envconfig:"FOODDASH_GOOGLE_MAPS_API_KEY"`
	Timeout time.Duration `envconfig:"FOODDASH_GOOGLE_MAPS_TIMEOUT" default:"5s"`
	Retries int           `envconfig:"FOODDASH_GOOGLE_MAPS_RETRIES" default:"1"`
}

// PricingConfig holds the delivery fee schedule. Defaults match the published
// tariff: 40 flat up to 2 km, then 1 per started 100 m.
type PricingConfig struct {
	BaseFee        int64   `envconfig:"FOODDASH_PRICING_BASE_FEE" default:"40"`
	BaseDistanceKm int64   `envconfig:"FOODDASH_PRICING_BASE_DISTANCE_KM" default:"2"`
	StepFee        int64   `envconfig:"FOODDASH_PRICING_STEP_FEE" default:"1"`
	StepMeters     int64   `envconfig:"FOODDASH_PRICING_STEP_METERS" default:"100"`
	RiderSpeedKPH  float64 `envconfig:"FOODDASH_PRICING_RIDER_SPEED_KPH" default:"40"`
}

type CheckoutConfig struct {
	LockTTL time.Duration `envconfig:"FOODDASH_CHECKOUT_LOCK_TTL" default:"30s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"FOODDASH_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"FOODDASH_PUBSUB_ORDERS_TOPIC" default:"fd-order-events"`
	OrdersSubscription string `envconfig:"FOODDASH_PUBSUB_ORDERS_SUBSCRIPTION"`
	TrackingTopic      string `envconfig:"FOODDASH_PUBSUB_TRACKING_TOPIC" default:"fd-rider-locations"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FOODDASH_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FOODDASH_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FOODDASH_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// RateLimitConfig throttles the chatty endpoints. A zero limit disables the
// policy.
type RateLimitConfig struct {
	LocationWindow time.Duration `envconfig:"FOODDASH_RATE_LIMIT_LOCATION_WINDOW" default:"1m"`
	LocationLimit  int           `envconfig:"FOODDASH_RATE_LIMIT_LOCATION_LIMIT" default:"60"`
	SuggestWindow  time.Duration `envconfig:"FOODDASH_RATE_LIMIT_SUGGEST_WINDOW" default:"1m"`
	SuggestLimit   int           `envconfig:"FOODDASH_RATE_LIMIT_SUGGEST_LIMIT" default:"30"`
	CheckoutWindow time.Duration `envconfig:"FOODDASH_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutLimit  int           `envconfig:"FOODDASH_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
}

// MaintenanceConfig drives the cron worker's cleanup jobs.
type MaintenanceConfig struct {
	// Schedule is a standard five-field cron spec or a descriptor such as
	// "@hourly" or "@every 30m".
	Schedule              string        `envconfig:"FOODDASH_MAINTENANCE_SCHEDULE" default:"@hourly"`
	LockTTL               time.Duration `envconfig:"FOODDASH_MAINTENANCE_LOCK_TTL" default:"55m"`
	OutboxRetentionDays   int           `envconfig:"FOODDASH_MAINTENANCE_OUTBOX_RETENTION_DAYS" default:"30"`
	CartItemRetentionDays int           `envconfig:"FOODDASH_MAINTENANCE_CART_ITEM_RETENTION_DAYS" default:"14"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
