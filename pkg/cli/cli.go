// Package cli is the command-line surface of the companion.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/aura-assist/aura/internal/dotenv"
	"github.com/aura-assist/aura/internal/logging"
	"github.com/aura-assist/aura/pkg/config"
)

// Error carries the process exit code alongside the failure message.
type Error struct {
	Code    int
	Message string
}

// Run executes the CLI.
func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "aura",
		Usage: "Assistive companion for blind and low-vision users",
		Commands: []*cli.Command{
			liveCommand(),
			memoryCommand(),
			versionCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{Code: 1, Message: err.Error()}
	}
	return nil
}

// Version is set at build time via -ldflags.
var Version = "dev"

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Println(Version)
			return nil
		},
	}
}

// loadConfig loads .env then the environment, and installs the logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	if err := dotenv.LoadFile(".env"); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
