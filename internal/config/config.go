package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// ShipNav holds all configuration of the shipnav tool.
type ShipNav struct {
	LogLevel string `yaml:"log_level"`

	// Runner
	Workers   int      `yaml:"workers"`   // scenarios processed in parallel
	Scenarios []string `yaml:"scenarios"` // default scenario files

	// Route log
	Record   bool           `yaml:"record"`
	Database DatabaseConfig `yaml:"database"`

	// Pathfinding
	Ship   ShipSearch   `yaml:"ship"`
	Region RegionSearch `yaml:"region"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultShipNav returns ShipNav config with sensible defaults.
func DefaultShipNav() ShipNav {
	return ShipNav{
		LogLevel: "info",
		Workers:  4,
		Record:   false,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "waterpath",
			Password: "waterpath",
			DBName:   "waterpath",
			SSLMode:  "disable",
		},
		Ship:   DefaultShipSearch(),
		Region: DefaultRegionSearch(),
	}
}

// LoadShipNav loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadShipNav(path string) (ShipNav, error) {
	cfg := DefaultShipNav()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pathfinders cannot work with.
func (c ShipNav) Validate() error {
	switch {
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	case c.Ship.LookaheadRegions <= 0:
		return fmt.Errorf("%w: ship.lookahead_regions must be positive, got %d", ErrInvalid, c.Ship.LookaheadRegions)
	case c.Ship.LostPathLength <= 0:
		return fmt.Errorf("%w: ship.lost_path_length must be positive, got %d", ErrInvalid, c.Ship.LostPathLength)
	case c.Ship.MaxNodes < 0:
		return fmt.Errorf("%w: ship.max_nodes must not be negative, got %d", ErrInvalid, c.Ship.MaxNodes)
	case c.Region.NodesPerRegion <= 0:
		return fmt.Errorf("%w: region.nodes_per_region must be positive, got %d", ErrInvalid, c.Region.NodesPerRegion)
	case c.Region.MaxNodes <= 0:
		return fmt.Errorf("%w: region.max_nodes must be positive, got %d", ErrInvalid, c.Region.MaxNodes)
	case c.Region.StraightPenalty < 0:
		return fmt.Errorf("%w: region.straight_penalty must not be negative, got %d", ErrInvalid, c.Region.StraightPenalty)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel converts the log_level setting to slog.Level. Empty means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, level)
}
