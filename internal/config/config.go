package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RouteServer holds all configuration for the route server.
type RouteServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Snapshot build
	Build BuildConfig `yaml:"build"`

	// Queries
	QueryDeadline time.Duration `yaml:"query_deadline"`
	MaxExpansions int           `yaml:"max_expansions"`

	LogLevel string `yaml:"log_level"`
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

// BuildConfig tunes snapshot compilation.
type BuildConfig struct {
	// Reachability trim origin; everything the dataset cannot reach from
	// here is dropped.
	StartX     int32 `yaml:"start_x"`
	StartY     int32 `yaml:"start_y"`
	StartPlane int32 `yaml:"start_plane"`

	Landmarks int `yaml:"landmarks"`
	Workers   int `yaml:"workers"`
}

// DefaultRouteServer returns RouteServer config with sensible defaults.
func DefaultRouteServer() RouteServer {
	return RouteServer{
		BindAddress:   "0.0.0.0",
		Port:          8090,
		QueryDeadline: 2 * time.Second,
		MaxExpansions: 1 << 20,
		LogLevel:      "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "worldroute",
			Password: "worldroute",
			DBName:   "worldroute",
			SSLMode:  "disable",
		},
		Build: BuildConfig{
			StartX:     3200,
			StartY:     3200,
			StartPlane: 0,
			Landmarks:  16,
			Workers:    8,
		},
	}
}

// LoadRouteServer loads route server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadRouteServer(path string) (RouteServer, error) {
	cfg := DefaultRouteServer()

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

	return cfg, nil
}

// SlogLevel converts the configured level name to a slog level.
func (c RouteServer) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// StartTile returns the configured reachability origin as a tuple.
func (b BuildConfig) StartTile() (int32, int32, int32) {
	return b.StartX, b.StartY, b.StartPlane
}
