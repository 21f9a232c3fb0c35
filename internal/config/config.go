package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. XIUXIAN_DB_DSN.
const EnvPrefix = "XIUXIAN_"

// Config holds all configuration of the simulator and the services it drives.
type Config struct {
	// Database
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`

	// Logging: debug, info, warn, error
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	Simulator SimulatorConfig `yaml:"simulator" envPrefix:"SIM_"`
	Duel      DuelConfig      `yaml:"duel" envPrefix:"DUEL_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`

	// URL, если задан, заменяет все поля выше.
	URL string `yaml:"dsn" env:"DSN"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// SimulatorConfig tunes cmd/simulator batch runs.
type SimulatorConfig struct {
	Workers int `yaml:"workers" env:"WORKERS"`
	// Seed 0 means a fresh random seed per run.
	Seed uint64 `yaml:"seed" env:"SEED"`
}

// DuelConfig holds duel gating rules.
type DuelConfig struct {
	// MinLevel is the lowest player level allowed to duel (inclusive).
	MinLevel int `yaml:"min_level" env:"MIN_LEVEL"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "xiuxian",
			Password: "xiuxian",
			DBName:   "xiuxian",
			SSLMode:  "disable",
		},
		LogLevel: "info",
		Simulator: SimulatorConfig{
			Workers: 4,
		},
		Duel: DuelConfig{
			MinLevel: 7,
		},
	}
}

// Load loads config from a YAML file, then applies XIUXIAN_* environment
// overrides. If the file doesn't exist, defaults are used.
func Load(path string) (Config, error) {
	cfg := Default()

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

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Simulator.Workers < 1 {
		return fmt.Errorf("simulator.workers must be positive, got %d", c.Simulator.Workers)
	}
	if c.Duel.MinLevel < 1 {
		return fmt.Errorf("duel.min_level must be positive, got %d", c.Duel.MinLevel)
	}
	return nil
}

// ParseLevel maps a log level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
