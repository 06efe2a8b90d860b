package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/config-center/internal/data/db"
)

const StoreDriverMemory = "memory"

type Config struct {
	Host string `env:"CONFIG_CENTER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"CONFIG_CENTER_PORT" envDefault:"4010"`

	LogMode     string `env:"LOG_MODE"      envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"     envDefault:"info"`
	LogHashSalt string `env:"LOG_HASH_SALT"`

	// StoreDriver is memory, postgres or sqlite. Empty resolves to postgres
	// when DatabaseURL is set and memory otherwise.
	StoreDriver string `env:"STORE_DRIVER"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH"  envDefault:"config-center.db"`

	APIKey           string   `env:"CONFIG_CENTER_API_KEY"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	OTelEnabled     bool              `env:"OTEL_ENABLED"                envDefault:"false"`
	OTelServiceName string            `env:"OTEL_SERVICE_NAME"           envDefault:"config-center"`
	OTelEndpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelHeaders     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS"  envSeparator:"," envKeyValSeparator:"="`
	OTelInsecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTelSampleRatio float64           `env:"OTEL_SAMPLER_RATIO"          envDefault:"0.1"`
	AppEnv          string            `env:"APP_ENV"                     envDefault:"development"`
	AppVersion      string            `env:"APP_VERSION"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisKeyPrefix  string        `env:"REDIS_KEY_PREFIX"  envDefault:"config-center:"`
	RuntimeCacheTTL time.Duration `env:"RUNTIME_CACHE_TTL" envDefault:"30s"`

	ReleaseRequireValidContent bool `env:"RELEASE_REQUIRE_VALID_CONTENT" envDefault:"false"`
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize()
}

// LoadConfigFrom reads vars instead of the process environment.
func LoadConfigFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalize()
}

func (c Config) normalize() (Config, error) {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.StoreDriver == "" {
		if strings.TrimSpace(c.DatabaseURL) != "" {
			c.StoreDriver = db.DriverPostgres
		} else {
			c.StoreDriver = StoreDriverMemory
		}
	}
	switch c.StoreDriver {
	case StoreDriverMemory, db.DriverPostgres, db.DriverSQLite:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER %q is not one of memory, postgres, sqlite", c.StoreDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return Config{}, fmt.Errorf("CONFIG_CENTER_PORT %d out of range", c.Port)
	}
	if c.RuntimeCacheTTL < 0 {
		return Config{}, fmt.Errorf("RUNTIME_CACHE_TTL must not be negative")
	}
	origins := c.CORSAllowOrigins[:0]
	for _, o := range c.CORSAllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowOrigins = origins
	return c, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
