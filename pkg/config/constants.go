package config

// EnvPrefix is empty because every envconfig tag carries the full
// REGISTER_-prefixed variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

const (
	EnvRedisURL  = "REGISTER_REDIS_URL"
	EnvRedisAddr = "REGISTER_REDIS_ADDR"
)
