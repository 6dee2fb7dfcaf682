package config

// EnvPrefix is passed to envconfig; every field carries an explicit name.
const EnvPrefix = "AGENTFASHION"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

const (
	EnvAppEnv        = "AGENTFASHION_APP_ENV"
	EnvLogLevel      = "AGENTFASHION_LOG_LEVEL"
	EnvAPIBaseURL    = "AGENTFASHION_API_BASE_URL"
	EnvAPITimeout    = "AGENTFASHION_API_TIMEOUT"
	EnvStorageDriver = "AGENTFASHION_STORAGE_DRIVER"
	EnvSQLitePath    = "AGENTFASHION_STORAGE_SQLITE_PATH"
	EnvDBDSN         = "AGENTFASHION_DB_DSN"
	EnvDBHost        = "AGENTFASHION_DB_HOST"
	EnvDBUser        = "AGENTFASHION_DB_USER"
	EnvDBName        = "AGENTFASHION_DB_NAME"
	EnvRedisURL      = "AGENTFASHION_REDIS_URL"
	EnvServerPort    = "AGENTFASHION_SERVER_PORT"
	EnvJWTSecret     = "AGENTFASHION_JWT_SECRET"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
