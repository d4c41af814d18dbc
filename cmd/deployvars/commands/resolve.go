package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/cancianpiero/deployvars/internal/workspace"
)

// envFlag selects an environment from the workspace manifest instead of an
// explicit file argument.
func envFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "env",
		Aliases: []string{"e"},
		Usage:   "Environment name from " + workspace.ManifestName,
		EnvVars: []string{"DEPLOYVARS_ENV"},
	}
}

// resolveFile loads the workspace and picks the variable file for this
// invocation: the first positional argument, or the --env mapping.
func resolveFile(c *cli.Context) (string, *workspace.Workspace, error) {
	ws, err := workspace.Load()
	if err != nil {
		return "", nil, err
	}
	path, err := ws.ResolveFile(c.Args().First(), c.String("env"))
	if err != nil {
		return "", nil, err
	}
	return path, ws, nil
}

// envName labels the environment for snapshot layout and logging.
func envName(c *cli.Context, ws *workspace.Workspace) string {
	if name := c.String("env"); name != "" {
		return name
	}
	if ws.Settings.Env != "" {
		return ws.Settings.Env
	}
	if ws.Manifest != nil && ws.Manifest.DefaultEnv != "" {
		return ws.Manifest.DefaultEnv
	}
	return "default"
}

// colorize reports whether output should carry color.
func colorize(c *cli.Context, ws *workspace.Workspace) bool {
	if c.Bool("no-color") || ws.Settings.NoColor {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}
