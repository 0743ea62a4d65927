// Package rooms parses rooms service flags and launches the service.
package rooms

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	"github.com/louisbranch/flagfall.space/internal/app"
	entrypoint "github.com/louisbranch/flagfall.space/internal/platform/cmd"
)

// Config holds rooms command configuration.
type Config struct {
	Port   int    `env:"FLAGFALL_SPACE_ROOMS_PORT" envDefault:"8090"`
	DBPath string `env:"FLAGFALL_SPACE_ROOMS_DB_PATH"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The rooms gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the rooms SQLite database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "rooms.db")
	}
	return cfg, nil
}

// Run starts the rooms gRPC service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRooms, func(context.Context) error {
		return app.Run(ctx, app.Config{Port: cfg.Port, DBPath: cfg.DBPath})
	})
}
