package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/rosterd/internal/config"
	"git.home.luguber.info/inful/rosterd/internal/daemon"
	"git.home.luguber.info/inful/rosterd/internal/roster"
	"git.home.luguber.info/inful/rosterd/internal/store"
	"git.home.luguber.info/inful/rosterd/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct{} `cmd:"" help:"Run the roster daemon"`

	Stats struct{} `cmd:"" help:"Print the current roster report and exit"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "serve":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runServe(cfg); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "stats":
		cfg, err := loadConfig()
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runStats(cfg); err != nil {
			slog.Error("Stats failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := config.WriteDefault(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote configuration to %s\n", CLI.Config)
	}
}

// loadConfig reads the config file, falling back to built-in defaults
// when no file exists at the default location.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(CLI.Config); os.IsNotExist(err) && CLI.Config == "config.yaml" {
		slog.Info("no configuration file found, using defaults")
		return config.Default(), nil
	}
	return config.Load(CLI.Config)
}

func runServe(cfg *config.Config) error {
	slog.Info("starting rosterd", "version", version.Version)

	d, err := daemon.New(cfg, CLI.Config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

func runStats(cfg *config.Config) error {
	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		return err
	}
	engine, err := roster.NewEngine(st, cfg.Thresholds)
	if err != nil {
		return err
	}
	fmt.Println(engine.StatsText())
	return nil
}
