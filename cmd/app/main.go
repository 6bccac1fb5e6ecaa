package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/pagewright/internal"
	pkgconfig "github.com/starford/pagewright/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), "", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("continue-on-error") {
		cfg.Build.ContinueOnError = cmd.Bool("continue-on-error")
	}

	stats, err := internal.Build(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("build error: %w", err)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("build finished with %d failed documents", stats.Failed)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "pagewright",
		Usage: "Read structured documents from storage and write them out as pages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Render every source document into the output storage",
				Action: build,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "continue-on-error",
						Usage:   "Skip documents that fail instead of aborting",
						Sources: cli.EnvVars("APP_CONTINUE_ON_ERROR"),
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the built pages over HTTP",
				Action: serve,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
