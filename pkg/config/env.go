package config

const (
	EnvPrefix = "FOODDASH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "FOODDASH_APP_ENV"
	EnvPort   = "FOODDASH_APP_PORT"

	EnvDBDSN  = "FOODDASH_DB_DSN"
	EnvDBHost = "FOODDASH_DB_HOST"
	EnvDBUser = "FOODDASH_DB_USER"
	EnvDBName = "FOODDASH_DB_NAME"

	EnvRedisURL = "FOODDASH_REDIS_URL"

	EnvJWTSecret  = "FOODDASH_JWT_SECRET"
	EnvJWTIssuer  = "FOODDASH_JWT_ISSUER"
	EnvJWTExpMins = "FOODDASH_JWT_EXPIRATION_MINUTES"

	EnvMapsTimeout   = "FOODDASH_GOOGLE_MAPS_TIMEOUT"
	EnvPricingBase   = "FOODDASH_PRICING_BASE_FEE"
	EnvCheckoutTTL   = "FOODDASH_CHECKOUT_LOCK_TTL"
	EnvCORSOrigins   = "FOODDASH_CORS_ORIGINS"
	EnvOrdersTopic   = "FOODDASH_PUBSUB_ORDERS_TOPIC"
	EnvTrackingTopic = "FOODDASH_PUBSUB_TRACKING_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
