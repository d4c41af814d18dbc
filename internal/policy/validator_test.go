package policy

import (
	"context"
	"strings"
	"testing"
)

func baseRecord() map[string]any {
	return map[string]any{
		"prod_project_id":                      "my-agent-prod",
		"staging_project_id":                   "my-agent-staging",
		"cicd_runner_project_id":               "my-agent-cicd",
		"host_connection_name":                 "github-connection",
		"repository_name":                      "my-agent",
		"repository_owner":                     "my-org",
		"region":                               "us-central1",
		"telemetry_bigquery_dataset_id":        "telemetry",
		"telemetry_sink_name":                  "telemetry-sink",
		"telemetry_logs_filter":                `jsonPayload.log_type="tracing"`,
		"feedback_bigquery_dataset_id":         "feedback",
		"feedback_sink_name":                   "feedback-sink",
		"feedback_logs_filter":                 `jsonPayload.log_type="feedback"`,
		"cicd_runner_sa_name":                  "cicd-runner",
		"suffix_bucket_name_load_test_results": "load-test-results",
		"github_app_installation_id":           "12345678",
		"github_pat_secret_id":                 "github-pat",
		"connection_exists":                    false,
	}
}

func TestValidator_Validate(t *testing.T) {
	validator, err := NewValidator()
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name            string
		mutate          func(map[string]any)
		expectAllow     bool
		expectViolation string
	}{
		{
			name:        "valid record",
			mutate:      func(m map[string]any) {},
			expectAllow: true,
		},
		{
			name: "prod and staging share a project",
			mutate: func(m map[string]any) {
				m["staging_project_id"] = m["prod_project_id"]
			},
			expectAllow:     false,
			expectViolation: "prod_project_id and staging_project_id",
		},
		{
			name: "cicd runs in the prod project",
			mutate: func(m map[string]any) {
				m["cicd_runner_project_id"] = m["prod_project_id"]
			},
			expectAllow:     false,
			expectViolation: "prod_project_id and cicd_runner_project_id",
		},
		{
			name: "telemetry and feedback share a sink",
			mutate: func(m map[string]any) {
				m["feedback_sink_name"] = m["telemetry_sink_name"]
			},
			expectAllow:     false,
			expectViolation: "sink_name",
		},
		{
			name: "telemetry and feedback share a dataset",
			mutate: func(m map[string]any) {
				m["feedback_bigquery_dataset_id"] = m["telemetry_bigquery_dataset_id"]
			},
			expectAllow:     false,
			expectViolation: "dataset",
		},
		{
			name: "identical filters",
			mutate: func(m map[string]any) {
				m["feedback_logs_filter"] = m["telemetry_logs_filter"]
			},
			expectAllow:     false,
			expectViolation: "select the same entries",
		},
		{
			name: "new connection without installation id",
			mutate: func(m map[string]any) {
				m["connection_exists"] = false
				m["github_app_installation_id"] = ""
			},
			expectAllow:     false,
			expectViolation: "github_app_installation_id is required",
		},
		{
			name: "new connection without pat secret",
			mutate: func(m map[string]any) {
				m["github_pat_secret_id"] = ""
			},
			expectAllow:     false,
			expectViolation: "github_pat_secret_id is required",
		},
		{
			name: "existing connection may omit credentials",
			mutate: func(m map[string]any) {
				m["connection_exists"] = true
				m["github_app_installation_id"] = ""
				m["github_pat_secret_id"] = ""
			},
			expectAllow: true,
		},
		{
			name: "unknown region",
			mutate: func(m map[string]any) {
				m["region"] = "mars-north1"
			},
			expectAllow:     false,
			expectViolation: "not a known region",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := baseRecord()
			tt.mutate(record)

			result, err := validator.Validate(context.Background(), record)
			if err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if result.Allowed != tt.expectAllow {
				t.Errorf("Allowed = %v, want %v (violations: %v)", result.Allowed, tt.expectAllow, result.Violations)
			}
			if tt.expectViolation == "" {
				return
			}
			found := false
			for _, violation := range result.Violations {
				if strings.Contains(violation, tt.expectViolation) {
					found = true
				}
			}
			if !found {
				t.Errorf("Violations = %v, want one containing %q", result.Violations, tt.expectViolation)
			}
		})
	}
}

func TestValidator_WithoutRegionCheck(t *testing.T) {
	validator, err := NewValidator(WithoutRegionCheck())
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	record := baseRecord()
	record["region"] = "mars-north1"

	result, err := validator.Validate(context.Background(), record)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Allowed = false with region check disabled (violations: %v)", result.Violations)
	}
}
