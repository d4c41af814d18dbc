package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cancianpiero/deployvars/internal/tfvars"
)

// EnvCommand returns the env command for exporting values to the
// provisioning pipeline
func EnvCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "env",
		Usage:     "Print TF_VAR_* assignments for the consuming tool",
		ArgsUsage: "[file]",
		Description: `Print one TF_VAR_{key}={value} line per key, the form the provisioning
tool reads from its environment.

Examples:
  deployvars env --env dev

  # Source directly into a shell
  eval "$(deployvars env --env dev --export)"`,
		Flags: []cli.Flag{
			envFlag(),
			&cli.BoolFlag{
				Name:  "export",
				Usage: "Prefix each line with 'export '",
			},
		},
		Action: envAction,
	}
}

func envAction(c *cli.Context) error {
	path, _, err := resolveFile(c)
	if err != nil {
		return err
	}

	config, err := tfvars.DecodeFile(path)
	if err != nil {
		return err
	}

	prefix := ""
	if c.Bool("export") {
		prefix = "export "
	}
	for _, pair := range config.Pairs() {
		fmt.Printf("%sTF_VAR_%s=%s\n", prefix, pair.Key, shellQuote(pair.Value))
	}
	return nil
}

// shellQuote single-quotes v so the output can be sourced with eval. Single
// quotes suppress all shell expansion; embedded quotes close, escape, reopen.
func shellQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}
