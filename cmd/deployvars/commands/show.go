package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/cancianpiero/deployvars/internal/logfilter"
	"github.com/cancianpiero/deployvars/internal/tfvars"
	"github.com/cancianpiero/deployvars/internal/vars"
)

// ShowCommand returns the show command for inspecting a decoded variable file
func ShowCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Aliases:   []string{"get"},
		Usage:     "Print the decoded variable record",
		ArgsUsage: "[file]",
		Description: `Decode a variable file and print its record with defaults applied.

Examples:
  # Aligned key/value table
  deployvars show --env dev

  # JSON for scripting
  deployvars show deployment/prod.tfvars -o json

  # Include the field paths each log filter restricts
  deployvars show --env dev --filters`,
		Flags: []cli.Flag{
			envFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: table, json, or yaml",
				Value:   "table",
			},
			&cli.BoolFlag{
				Name:  "filters",
				Usage: "Show the field paths restricted by each log filter",
			},
		},
		Action: showAction,
	}
}

func showAction(c *cli.Context) error {
	path, _, err := resolveFile(c)
	if err != nil {
		return err
	}

	config, err := tfvars.DecodeFile(path)
	if err != nil {
		return err
	}

	switch format := c.String("output"); format {
	case "table":
		printTable(config)
	case "json":
		out, err := json.MarshalIndent(config.Map(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		fmt.Println(string(out))
	case "yaml":
		out, err := yaml.Marshal(config.Map())
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		fmt.Print(string(out))
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}

	if c.Bool("filters") {
		printFilterFields(config)
	}
	return nil
}

func printTable(config *vars.Config) {
	pairs := config.Pairs()
	width := 0
	for _, pair := range pairs {
		if len(pair.Key) > width {
			width = len(pair.Key)
		}
	}
	for _, pair := range pairs {
		fmt.Printf("%-*s  %s\n", width, pair.Key, pair.Value)
	}
}

func printFilterFields(config *vars.Config) {
	fmt.Println()
	for _, filter := range []struct{ key, value string }{
		{"telemetry_logs_filter", config.TelemetryLogsFilter},
		{"feedback_logs_filter", config.FeedbackLogsFilter},
	} {
		fields, err := logfilter.Fields(filter.value)
		if err != nil {
			fmt.Printf("%s: invalid filter: %v\n", filter.key, err)
			continue
		}
		if len(fields) == 0 {
			fmt.Printf("%s: no field restrictions\n", filter.key)
			continue
		}
		fmt.Printf("%s restricts: %s\n", filter.key, strings.Join(fields, ", "))
	}
}
