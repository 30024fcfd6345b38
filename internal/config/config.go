package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DBDSN       string `envconfig:"DB_DSN"`

	StorageRoot      string `envconfig:"STORAGE_ROOT" default:"./storage"`
	StoragePublicURL string `envconfig:"STORAGE_PUBLIC_URL" default:"/storage"`
	MaxUploadBytes   int64  `envconfig:"MAX_UPLOAD_BYTES" default:"2097152"`

	SessionSecret string `envconfig:"SESSION_SECRET" default:"dev_fallback_secret"`

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"20s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads .env from the current, parent and repo root directories (when
// started from cmd/server) and then decodes the process environment.
// Variables already set in the environment win over .env values.
func Load() (*Config, error) {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		_ = godotenv.Load(p)
	}
	return FromEnv()
}

// FromEnv decodes the process environment without touching .env files.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decode environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is empty (check your .env)")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.StorageRoot == "" {
		return errors.New("STORAGE_ROOT is empty")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.AppPort
}
