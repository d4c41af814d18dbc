package main

import (
	"context"
	"os"

	"github.com/cancianpiero/deployvars/cmd/deployvars/commands"
	"github.com/cancianpiero/deployvars/internal/di"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := di.ProvideLogger()
	ctx := logger.WithContext(context.Background())

	app := &cli.App{
		Name:  "deployvars",
		Usage: "Deployment variable toolkit",
		Description: `A unified CLI for the variable files that drive agent deployment provisioning.

This tool provides commands for:
  - Validating variable files (required keys, value shapes, filter syntax, policy)
  - Rendering files in canonical form and diffing environments
  - Exporting values for the provisioning pipeline
  - Storing versioned snapshots of variable files in a bucket`,
		Commands: []*cli.Command{
			commands.ValidateCommand(&logger),
			commands.ShowCommand(&logger),
			commands.FmtCommand(&logger),
			commands.DiffCommand(&logger),
			commands.EnvCommand(&logger),
			commands.InitCommand(&logger),
			commands.SnapshotCommand(&logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Error().Err(err).Msg("Application error")
		os.Exit(1)
	}
}
