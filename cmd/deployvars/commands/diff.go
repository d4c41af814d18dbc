package commands

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cancianpiero/deployvars/internal/diffs"
	"github.com/cancianpiero/deployvars/internal/tfvars"
	"github.com/cancianpiero/deployvars/internal/workspace"
)

// DiffCommand returns the diff command for comparing two variable files
func DiffCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare two variable files key by key",
		ArgsUsage: "<file-a> <file-b>",
		Description: `Decode two variable files and report the keys whose values differ.
Arguments may be file paths or environment names from ` + workspace.ManifestName + `.

Examples:
  # Compare two files
  deployvars diff deployment/dev.tfvars deployment/prod.tfvars

  # Compare environments from the manifest
  deployvars diff dev prod

  # Machine-readable output
  deployvars diff dev prod --json`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output entries as JSON",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Action: diffAction,
	}
}

func diffAction(c *cli.Context) error {
	logger := zerolog.Ctx(c.Context)

	if c.Args().Len() != 2 {
		return fmt.Errorf("diff wants exactly two arguments, got %d", c.Args().Len())
	}

	ws, err := workspace.Load()
	if err != nil {
		return err
	}

	pathA, err := resolveArg(ws, c.Args().Get(0))
	if err != nil {
		return err
	}
	pathB, err := resolveArg(ws, c.Args().Get(1))
	if err != nil {
		return err
	}

	configA, err := tfvars.DecodeFile(pathA)
	if err != nil {
		return err
	}
	configB, err := tfvars.DecodeFile(pathB)
	if err != nil {
		return err
	}

	entries := diffs.Compare(configA, configB)
	if c.Bool("json") {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Print(diffs.Render(entries, colorize(c, ws)))
	}

	logger.Info().
		Str("a", pathA).
		Str("b", pathB).
		Int("differences", len(entries)).
		Msg("Compared variable files")
	return nil
}

// resolveArg treats arg as a manifest environment name when it matches one,
// otherwise as a file path.
func resolveArg(ws *workspace.Workspace, arg string) (string, error) {
	if ws.Manifest != nil {
		if _, ok := ws.Manifest.Environments[arg]; ok {
			return ws.Manifest.File(arg)
		}
	}
	return arg, nil
}
