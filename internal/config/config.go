package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the summon server.
type Server struct {
	// Network
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`
	GRPCAddr string `yaml:"grpc_addr" env:"GRPC_ADDR"` // empty disables gRPC

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
	Balance  BalanceConfig  `yaml:"balance" envPrefix:"BALANCE_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// DatabaseConfig selects the store driver. DSN wins over the PostgreSQL
// fields when set.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DRIVER"` // sqlite | postgres
	DSN      string `yaml:"dsn" env:"DSN"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// BalanceConfig locates the summon balance YAML files.
type BalanceConfig struct {
	Dir       string `yaml:"dir" env:"DIR"`
	Season    string `yaml:"season" env:"SEASON"`
	HotReload bool   `yaml:"hot_reload" env:"HOT_RELOAD"`
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	Format     string `yaml:"format" env:"FORMAT"` // text | json
	File       string `yaml:"file" env:"FILE"`     // empty disables file output
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
}

// ConnString returns the connection string for the configured driver.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" || d.Driver != "postgres" {
		return d.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Server config with sensible defaults.
func Default() Server {
	return Server{
		HTTPAddr:        ":8080",
		GRPCAddr:        ":9090",
		ShutdownTimeout: 10 * time.Second,
		Database: DatabaseConfig{
			Driver:  "sqlite",
			DSN:     "file:summon.db",
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "summon",
			DBName:  "summon",
			SSLMode: "disable",
		},
		Balance: BalanceConfig{
			Dir:       "configs",
			HotReload: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SUMMON_"

// Load reads server config from a YAML file, then applies SUMMON_*
// environment overrides. If the file doesn't exist, defaults are used.
func Load(path string) (Server, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (s Server) Validate() error {
	switch s.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver: unsupported %q", s.Database.Driver)
	}
	if s.HTTPAddr == "" {
		return fmt.Errorf("http_addr is required")
	}
	if s.Balance.Dir == "" {
		return fmt.Errorf("balance.dir is required")
	}
	return nil
}
