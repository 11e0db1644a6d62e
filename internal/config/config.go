// Package config reads the settings of the service from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Database holds the connection parameters of MySQL.
//
// Usage example on the command line:
// > DBHOST=localhost DBUSER=dirk DBPWD=bullo92 go run main.go
type Database struct {
	Host            string        `env:"DBHOST"              envDefault:"localhost"`
	User            string        `env:"DBUSER"`
	Password        string        `env:"DBPWD"`
	Name            string        `env:"DBNAME"              envDefault:"contacts"`
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"30"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"   envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"3m"`
}

// Config holds all settings of the contacts service.
type Config struct {
	Database Database

	Port       string     `env:"PORT"        envDefault:"8080"`
	GinLogging string     `env:"GIN_LOGGING" envDefault:"on"`
	LogLevel   slog.Level `env:"LOG_LEVEL"   envDefault:"INFO"`

	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"  envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	LoginRatePerMinute int  `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	MigrateOnStart     bool `env:"MIGRATE_ON_START"      envDefault:"false"`
}

// Load reads the configuration of the service. It fails if a required variable is missing or a
// value cannot be parsed.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LoginRatePerMinute < 1 {
		return nil, fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive, got %d", cfg.LoginRatePerMinute)
	}
	return &cfg, nil
}

// LoadDatabase reads only the database settings. Tools that do not serve HTTP use it so that
// they do not need the token secret.
func LoadDatabase() (*Database, error) {
	cfg, err := env.ParseAs[Database]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// RequestLogging reports whether HTTP requests should be logged. GIN_LOGGING=off turns it off.
func (c *Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}
