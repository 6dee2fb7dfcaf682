package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the storefront client needs at startup.
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
}

// ServerConfig holds the settings of the local mock backend.
type ServerConfig struct {
	App      AppConfig
	Server   HTTPServerConfig
	JWT      JWTConfig
	Password PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.normalize(); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == StorageDriverPostgres {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func LoadServer() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGENTFASHION_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"AGENTFASHION_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGENTFASHION_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type BackendConfig struct {
	BaseURL       string        `envconfig:"AGENTFASHION_API_BASE_URL" required:"true"`
	Timeout       time.Duration `envconfig:"AGENTFASHION_API_TIMEOUT" default:"15s"`
	StreamTimeout time.Duration `envconfig:"AGENTFASHION_API_STREAM_TIMEOUT" default:"2m"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvAPIBaseURL, b.BaseURL)
	}
	return nil
}

// StorageConfig selects where the client persists its session, theme and wishlist.
type StorageConfig struct {
	Driver     string `envconfig:"AGENTFASHION_STORAGE_DRIVER" default:"sqlite"`
	SQLitePath string `envconfig:"AGENTFASHION_STORAGE_SQLITE_PATH"`
}

func (s *StorageConfig) normalize() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverPostgres:
		return nil
	case StorageDriverSQLite:
		if s.SQLitePath == "" {
			s.SQLitePath = defaultSQLitePath()
		}
		return nil
	}
	return fmt.Errorf("%s must be one of memory, sqlite, postgres, redis; got %q", EnvStorageDriver, s.Driver)
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "agentfashion.db"
	}
	return filepath.Join(home, ".agentfashion", "state.db")
}

type DBConfig struct {
	DSN string `envconfig:"AGENTFASHION_DB_DSN"`

	Host     string `envconfig:"AGENTFASHION_DB_HOST"`
	Port     int    `envconfig:"AGENTFASHION_DB_PORT" default:"5432"`
	User     string `envconfig:"AGENTFASHION_DB_USER"`
	Password string `envconfig:"AGENTFASHION_DB_PASSWORD"`
	Name     string `envconfig:"AGENTFASHION_DB_NAME"`
	SSLMode  string `envconfig:"AGENTFASHION_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGENTFASHION_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"AGENTFASHION_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"AGENTFASHION_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGENTFASHION_REDIS_URL"`
	Address      string        `envconfig:"AGENTFASHION_REDIS_ADDR"`
	Password     string        `envconfig:"AGENTFASHION_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGENTFASHION_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"AGENTFASHION_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGENTFASHION_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"AGENTFASHION_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type HTTPServerConfig struct {
	Port           string   `envconfig:"AGENTFASHION_SERVER_PORT" default:"8000"`
	AllowedOrigins []string `envconfig:"AGENTFASHION_SERVER_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	SeedCatalog    bool     `envconfig:"AGENTFASHION_SERVER_SEED_CATALOG" default:"true"`
	AdminEmail     string   `envconfig:"AGENTFASHION_SERVER_ADMIN_EMAIL" default:"admin@agentfashion.local"`
	AdminPassword  string   `envconfig:"AGENTFASHION_SERVER_ADMIN_PASSWORD" default:"change-me-admin"`
}

type JWTConfig struct {
	Secret            string `envconfig:"AGENTFASHION_JWT_SECRET" default:"dev-secret-change-me"`
	Issuer            string `envconfig:"AGENTFASHION_JWT_ISSUER" default:"agentfashion"`
	ExpirationMinutes int    `envconfig:"AGENTFASHION_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGENTFASHION_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGENTFASHION_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGENTFASHION_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGENTFASHION_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGENTFASHION_ARGON_KEY_LEN" default:"32"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
