package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
	"github.com/cancianpiero/deployvars/internal/tfvars"
)

// FmtCommand returns the fmt command for canonical rendering
func FmtCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "Render a variable file in canonical form",
		ArgsUsage: "[file]",
		Description: `Rewrite a variable file in canonical rendering: keys in registry order,
grouped by section, aligned assignments. Defaults are materialized.

Examples:
  # Print the canonical rendering
  deployvars fmt deployment/dev.tfvars

  # Rewrite the file in place
  deployvars fmt --env dev --write

  # Fail when the file is not canonical (CI gate)
  deployvars fmt --env dev --check`,
		Flags: []cli.Flag{
			envFlag(),
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Rewrite the file instead of printing to stdout",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Exit non-zero when the file differs from canonical form",
			},
		},
		Action: fmtAction,
	}
}

func fmtAction(c *cli.Context) error {
	logger := zerolog.Ctx(c.Context)

	path, _, err := resolveFile(c)
	if err != nil {
		return err
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	config, err := tfvars.Decode(original, path)
	if err != nil {
		return err
	}
	canonical := tfvars.Encode(config)

	switch {
	case c.Bool("check"):
		if !bytes.Equal(original, canonical) {
			fmt.Printf("%s is not canonical\n", path)
			return apperrors.ErrNotCanonical
		}
		fmt.Printf("%s is canonical\n", path)
		return nil
	case c.Bool("write"):
		if bytes.Equal(original, canonical) {
			logger.Info().Str("file", path).Msg("Already canonical")
			return nil
		}
		if err := os.WriteFile(path, canonical, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info().Str("file", path).Msg("Rewrote file in canonical form")
		return nil
	default:
		fmt.Print(string(canonical))
		return nil
	}
}
