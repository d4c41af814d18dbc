package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/cancianpiero/deployvars/internal/di"
	apperrors "github.com/cancianpiero/deployvars/internal/errors"
	"github.com/cancianpiero/deployvars/internal/logfilter"
	"github.com/cancianpiero/deployvars/internal/policy"
	"github.com/cancianpiero/deployvars/internal/tfvars"
	"github.com/cancianpiero/deployvars/internal/vars"
)

// ValidateCommand returns the validate command for checking a variable file
func ValidateCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a deployment variable file",
		ArgsUsage: "[file]",
		Description: `Check a variable file end to end: it parses, every required key is present,
values have the expected shapes, the log filters are well-formed predicates,
and the cross-field policy holds.

Examples:
  # Validate an explicit file
  deployvars validate deployment/dev.tfvars

  # Validate the file registered for an environment
  deployvars validate --env prod

  # Machine-readable report
  deployvars validate --env prod --json`,
		Flags: []cli.Flag{
			envFlag(),
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output the report as JSON",
			},
			&cli.BoolFlag{
				Name:  "skip-region-check",
				Usage: "Accept regions missing from the embedded allowlist",
			},
		},
		Action: validateAction,
	}
}

// report is the validate command's output shape.
type report struct {
	File     string         `json:"file"`
	Valid    bool           `json:"valid"`
	Problems []vars.Problem `json:"problems,omitempty"`
}

func validateAction(c *cli.Context) error {
	logger := zerolog.Ctx(c.Context)

	path, _, err := resolveFile(c)
	if err != nil {
		return err
	}

	problems, err := checkFile(c.Context, path, c.Bool("skip-region-check"))
	if err != nil {
		return err
	}

	result := report{File: path, Valid: len(problems) == 0, Problems: problems}
	if c.Bool("json") {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printReport(result)
	}

	if !result.Valid {
		logger.Error().
			Str("file", path).
			Int("problems", len(problems)).
			Msg("Validation failed")
		return apperrors.ErrValidationFailed
	}

	logger.Info().Str("file", path).Msg("Variable file is valid")
	return nil
}

// checkFile runs the full check pipeline: decode, key shapes, filter syntax,
// then policy. A decode failure short-circuits as one problem since nothing
// downstream can run without a record.
func checkFile(ctx context.Context, path string, skipRegion bool) ([]vars.Problem, error) {
	config, err := tfvars.DecodeFile(path)
	if err != nil {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, statErr)
		}
		return []vars.Problem{{Key: "(file)", Detail: err.Error()}}, nil
	}

	problems := config.Validate()
	problems = append(problems, checkFilters(config)...)

	container, err := di.New(path, di.WithSkipRegionCheck(skipRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	validator := di.MustGet[*policy.Validator](container)

	verdict, err := validator.Validate(ctx, config.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	for _, violation := range verdict.Violations {
		problems = append(problems, vars.Problem{Key: "(policy)", Detail: violation})
	}

	return problems, nil
}

func checkFilters(config *vars.Config) []vars.Problem {
	var problems []vars.Problem
	for _, filter := range []struct{ key, value string }{
		{"telemetry_logs_filter", config.TelemetryLogsFilter},
		{"feedback_logs_filter", config.FeedbackLogsFilter},
	} {
		if filter.value == "" {
			continue // missing required keys are already reported
		}
		if err := logfilter.Check(filter.value); err != nil {
			problems = append(problems, vars.Problem{Key: filter.key, Detail: err.Error()})
		}
	}
	return problems
}

func printReport(result report) {
	if result.Valid {
		fmt.Printf("✓ %s is valid\n", result.File)
		return
	}
	fmt.Printf("%s has %d problem(s):\n", result.File, len(result.Problems))
	for _, problem := range result.Problems {
		fmt.Printf("  - %s\n", problem)
	}
}
