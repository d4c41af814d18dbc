// Package policy evaluates cross-field rules over a decoded variable record.
// Field shapes are the vars package's concern; this package covers the
// relationships between keys.
package policy

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"
)

//go:embed deployvars.rego
var policyContent string

type Validator struct {
	checkRegion bool
}

type ValidationResult struct {
	Allowed    bool     `json:"allowed"`
	Violations []string `json:"violations,omitempty"`
}

type Option func(*Validator)

// WithoutRegionCheck disables the known-region rule, for regions newer than
// the embedded allowlist.
func WithoutRegionCheck() Option {
	return func(v *Validator) {
		v.checkRegion = false
	}
}

func NewValidator(opts ...Option) (*Validator, error) {
	v := &Validator{checkRegion: true}
	for _, opt := range opts {
		opt(v)
	}

	// Fail fast on a broken embedded policy rather than at first use.
	_, err := rego.New(
		rego.Query("data.deployvars.allow"),
		rego.Module("deployvars.rego", policyContent),
	).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy query: %w", err)
	}

	return v, nil
}

// Validate evaluates the policy over the record map produced by vars.Config.Map.
func (v *Validator) Validate(ctx context.Context, record map[string]any) (*ValidationResult, error) {
	store := inmem.NewFromObject(v.data())

	query, err := rego.New(
		rego.Query("data.deployvars.allow"),
		rego.Module("deployvars.rego", policyContent),
		rego.Store(store),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare policy query: %w", err)
	}

	results, err := query.Eval(ctx, rego.EvalInput(record))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 {
		return &ValidationResult{
			Allowed:    false,
			Violations: []string{"policy evaluation returned no results"},
		}, nil
	}

	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return &ValidationResult{
			Allowed:    false,
			Violations: []string{"policy evaluation returned non-boolean result"},
		}, nil
	}

	result := &ValidationResult{Allowed: allowed}
	if !allowed {
		violations, err := v.violations(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("failed to get violations: %w", err)
		}
		result.Violations = violations
	}
	return result, nil
}

func (v *Validator) violations(ctx context.Context, record map[string]any) ([]string, error) {
	store := inmem.NewFromObject(v.data())

	query, err := rego.New(
		rego.Query("data.deployvars.violations"),
		rego.Module("deployvars.rego", policyContent),
		rego.Store(store),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare violations query: %w", err)
	}

	results, err := query.Eval(ctx, rego.EvalInput(record))
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate violations: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	raw, ok := results[0].Expressions[0].Value.([]any)
	if !ok {
		return nil, fmt.Errorf("violations query returned unexpected type %T", results[0].Expressions[0].Value)
	}

	violations := make([]string, 0, len(raw))
	for _, item := range raw {
		if msg, ok := item.(string); ok {
			violations = append(violations, msg)
		}
	}
	return violations, nil
}

func (v *Validator) data() map[string]any {
	allowed := make(map[string]any, len(knownRegions))
	for _, region := range knownRegions {
		allowed[region] = true
	}
	return map[string]any{
		"check_region":    v.checkRegion,
		"allowed_regions": allowed,
	}
}

// knownRegions is the set of GCP regions the policy accepts. Extend as new
// regions launch, or disable the check with WithoutRegionCheck.
var knownRegions = []string{
	"africa-south1",
	"asia-east1",
	"asia-east2",
	"asia-northeast1",
	"asia-northeast2",
	"asia-northeast3",
	"asia-south1",
	"asia-south2",
	"asia-southeast1",
	"asia-southeast2",
	"australia-southeast1",
	"australia-southeast2",
	"europe-central2",
	"europe-north1",
	"europe-southwest1",
	"europe-west1",
	"europe-west2",
	"europe-west3",
	"europe-west4",
	"europe-west6",
	"europe-west8",
	"europe-west9",
	"europe-west10",
	"europe-west12",
	"me-central1",
	"me-central2",
	"me-west1",
	"northamerica-northeast1",
	"northamerica-northeast2",
	"northamerica-south1",
	"southamerica-east1",
	"southamerica-west1",
	"us-central1",
	"us-east1",
	"us-east4",
	"us-east5",
	"us-south1",
	"us-west1",
	"us-west2",
	"us-west3",
	"us-west4",
}
