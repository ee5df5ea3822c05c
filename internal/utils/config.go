package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SessionBackendPostgres = "postgres"
	SessionBackendMongo    = "mongo"
	SessionBackendMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Mongo    MongoConfig    `envPrefix:"MONGO_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Logging  LoggingConfig
	LLM      LLMConfig `envPrefix:"LLM_"`
	Auth     AuthConfig

	SessionBackend string   `env:"SESSION_BACKEND" envDefault:"postgres"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5002,https://bents-frontend-server.vercel.app"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"5002"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"52428800"`
}

type PostgresConfig struct {
	DSN               string        `env:"DSN"`
	Host              string        `env:"HOST" envDefault:"localhost"`
	Port              int           `env:"PORT" envDefault:"5432"`
	User              string        `env:"USER" envDefault:"postgres"`
	Password          string        `env:"PASSWORD" envDefault:"postgres"`
	Database          string        `env:"DB" envDefault:"bents"`
	MaxConns          int32         `env:"MAX_CONNS" envDefault:"8"`
	MinConns          int32         `env:"MIN_CONNS" envDefault:"1"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
	ConnectTimeout    time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
}

type MongoConfig struct {
	URI            string        `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database       string        `env:"DATABASE" envDefault:"bents"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"5s"`
}

// RedisConfig enables the session cache when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"SESSION_TTL" envDefault:"10m"`
}

type LoggingConfig struct {
	Level        string `env:"LOG_LEVEL" envDefault:"info"`
	Encoding     string `env:"LOG_ENCODING" envDefault:"console"`
	Development  bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	EnableCaller bool   `env:"LOG_CALLER" envDefault:"false"`
	ServiceName  string `env:"SERVICE_NAME" envDefault:"bents-api"`
}

type LLMConfig struct {
	BackendURL string        `env:"BACKEND_URL" envDefault:"https://bents-llm-server.vercel.app"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`
	Required  bool          `env:"AUTH_REQUIRED" envDefault:"false"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Encoding = strings.ToLower(cfg.Logging.Encoding)
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	cfg.LLM.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BackendURL), "/")
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case SessionBackendPostgres, SessionBackendMongo, SessionBackendMemory:
	default:
		return fmt.Errorf("config: unsupported SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.LLM.BackendURL == "" {
		return fmt.Errorf("config: LLM_BACKEND_URL is required")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: MAX_BODY_BYTES must be positive")
	}

	return nil
}

func (c PostgresConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result
}
