package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cancianpiero/deployvars/internal/tfvars"
	"github.com/cancianpiero/deployvars/internal/vars"
)

// InitCommand returns the init command for scaffolding a new variable file
func InitCommand(logger *zerolog.Logger) *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "force",
			Aliases: []string{"f"},
			Usage:   "Overwrite an existing file and ignore validation problems",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Show what would be written without writing it",
		},
	}
	for i := range vars.Registry {
		spec := &vars.Registry[i]
		switch spec.Kind {
		case vars.KindBool:
			flags = append(flags, &cli.BoolFlag{
				Name:  flagName(spec.Name),
				Usage: spec.Description,
			})
		default:
			flags = append(flags, &cli.StringFlag{
				Name:     flagName(spec.Name),
				Usage:    spec.Description,
				Value:    spec.Default,
				Required: spec.Required,
			})
		}
	}

	return &cli.Command{
		Name:      "init",
		Usage:     "Scaffold a new deployment variable file",
		ArgsUsage: "<file>",
		Description: `Create a variable file from flags, one flag per key, rendered in
canonical form. Keys with defaults may be omitted.

Example:
  deployvars init deployment/dev.tfvars \
    --prod-project-id my-prod --staging-project-id my-staging \
    --cicd-runner-project-id my-cicd \
    --host-connection-name github-connection \
    --repository-name my-agent --repository-owner my-org \
    --telemetry-bigquery-dataset-id telemetry --telemetry-sink-name telemetry-sink \
    --telemetry-logs-filter 'jsonPayload.log_type="tracing"' \
    --feedback-bigquery-dataset-id feedback --feedback-sink-name feedback-sink \
    --feedback-logs-filter 'jsonPayload.log_type="feedback"' \
    --cicd-runner-sa-name cicd-runner \
    --suffix-bucket-name-load-test-results load-test-results \
    --github-app-installation-id 12345678 --github-pat-secret-id github-pat`,
		Flags:  flags,
		Action: initAction,
	}
}

func initAction(c *cli.Context) error {
	logger := zerolog.Ctx(c.Context)

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("init wants a target file argument")
	}

	config := &vars.Config{}
	for i := range vars.Registry {
		spec := &vars.Registry[i]
		switch spec.Kind {
		case vars.KindBool:
			spec.SetBool(config, c.Bool(flagName(spec.Name)))
		default:
			spec.SetString(config, c.String(flagName(spec.Name)))
		}
	}
	config.ApplyDefaults()

	if problems := config.Validate(); len(problems) > 0 {
		for _, problem := range problems {
			logger.Warn().Str("key", problem.Key).Msg(problem.Detail)
		}
		if !c.Bool("force") {
			return fmt.Errorf("refusing to write %s with %d validation problem(s), use --force to override", path, len(problems))
		}
	}

	rendered := tfvars.Encode(config)
	if c.Bool("dry-run") {
		fmt.Printf("DRY RUN: would write %s:\n%s", path, rendered)
		return nil
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Info().Str("file", path).Msg("Wrote variable file")
	return nil
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
