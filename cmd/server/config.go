package main

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	backendPostgres = "postgres"
	backendBunt     = "bunt"
	backendMemory   = "memory"
)

type config struct {
	Debug         bool   `env:"DEBUG"`
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":2137"`
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"postgres"`
	PostgresDsn   string `env:"POSTGRES_DSN"`
	BuntPath      string `env:"BUNT_PATH" envDefault:"kv.db"`
	JwtSecret     string `env:"JWT_SECRET,required,notEmpty"`
	AllowOrigins  string `env:"ALLOW_ORIGINS" envDefault:"*"`
	TxMaxAttempts uint   `env:"TX_MAX_ATTEMPTS" envDefault:"10"`
	Syslog        bool   `env:"SYSLOG"`
	DbVerbose     bool   `env:"DB_VERBOSE"`
}

// loadConfig reads configuration from environ, or from the process
// environment when environ is nil.
func loadConfig(environ map[string]string) (config, error) {
	var cfg config
	opts := env.Options{Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	switch c.StoreBackend {
	case backendPostgres:
		if c.PostgresDsn == "" {
			return errors.New("POSTGRES_DSN is required for the postgres backend")
		}
	case backendBunt:
		if c.BuntPath == "" {
			return errors.New("BUNT_PATH is required for the bunt backend")
		}
	case backendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.TxMaxAttempts == 0 {
		return errors.New("TX_MAX_ATTEMPTS must be positive")
	}
	return nil
}
