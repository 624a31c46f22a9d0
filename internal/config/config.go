// Package config loads the dbcontext-host configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/getpup/pupsourcing-dbcontext"
)

// Config holds the dbcontext-host settings.
type Config struct {
	App             string            `env:"DBCONTEXT_APP"              envDefault:"dbcontext-host"`
	Dialect         dbcontext.Dialect `env:"DBCONTEXT_DIALECT"          envDefault:"sqlite3"`
	DSN             string            `env:"DBCONTEXT_DSN"              envDefault:"dbcontext.db"`
	MigrationsTable string            `env:"DBCONTEXT_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
	MaxOpenConns    int               `env:"DBCONTEXT_MAX_OPEN_CONNS"   envDefault:"10"`
	ConnMaxLifetime time.Duration     `env:"DBCONTEXT_CONN_MAX_LIFETIME" envDefault:"30m"`
	HTTPAddr        string            `env:"DBCONTEXT_HTTP_ADDR"        envDefault:":9090"`
	GRPCAddr        string            `env:"DBCONTEXT_GRPC_ADDR"`
	HealthInterval  time.Duration     `env:"DBCONTEXT_HEALTH_INTERVAL"  envDefault:"10s"`
	ShutdownTimeout time.Duration     `env:"DBCONTEXT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string            `env:"DBCONTEXT_LOG_LEVEL"        envDefault:"info"`
	LogFormat       string            `env:"DBCONTEXT_LOG_FORMAT"       envDefault:"text"`
}

// Load parses the environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the given variables instead of the process environment when environ is non-nil.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if !cfg.Dialect.IsValid() {
		return Config{}, fmt.Errorf("unsupported dialect %q (postgres, mysql, sqlite3)", cfg.Dialect)
	}
	return cfg, nil
}
