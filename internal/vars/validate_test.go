package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Complete(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_MissingRequired(t *testing.T) {
	config := validConfig()
	config.TelemetrySinkName = ""
	problems := config.Validate()
	assert.Len(t, problems, 1)
	assert.Equal(t, "telemetry_sink_name", problems[0].Key)
	assert.Contains(t, problems[0].Detail, "missing")
}

func TestValidate_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{
			name:    "project id with uppercase",
			mutate:  func(c *Config) { c.ProdProjectID = "My-Project" },
			wantKey: "prod_project_id",
		},
		{
			name:    "project id too short",
			mutate:  func(c *Config) { c.StagingProjectID = "abc" },
			wantKey: "staging_project_id",
		},
		{
			name:    "project id trailing hyphen",
			mutate:  func(c *Config) { c.CICDRunnerProjectID = "my-project-" },
			wantKey: "cicd_runner_project_id",
		},
		{
			name:    "region without zone suffix",
			mutate:  func(c *Config) { c.Region = "uscentral" },
			wantKey: "region",
		},
		{
			name:    "dataset with hyphen",
			mutate:  func(c *Config) { c.TelemetryBigQueryDatasetID = "tele-metry" },
			wantKey: "telemetry_bigquery_dataset_id",
		},
		{
			name:    "sink name starting with digit",
			mutate:  func(c *Config) { c.FeedbackSinkName = "1sink" },
			wantKey: "feedback_sink_name",
		},
		{
			name:    "service account name with underscore",
			mutate:  func(c *Config) { c.CICDRunnerSAName = "cicd_runner" },
			wantKey: "cicd_runner_sa_name",
		},
		{
			name:    "bucket suffix with uppercase",
			mutate:  func(c *Config) { c.SuffixBucketNameLoadTestResults = "Results" },
			wantKey: "suffix_bucket_name_load_test_results",
		},
		{
			name:    "installation id not numeric",
			mutate:  func(c *Config) { c.GitHubAppInstallationID = "abc123" },
			wantKey: "github_app_installation_id",
		},
		{
			name:    "secret id with slash",
			mutate:  func(c *Config) { c.GitHubPATSecretID = "secrets/github" },
			wantKey: "github_pat_secret_id",
		},
		{
			name:    "repository name with space",
			mutate:  func(c *Config) { c.RepositoryName = "my agent" },
			wantKey: "repository_name",
		},
		{
			name:    "connection name starting with digit",
			mutate:  func(c *Config) { c.HostConnectionName = "9connection" },
			wantKey: "host_connection_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)
			problems := config.Validate()
			assert.Len(t, problems, 1)
			assert.Equal(t, tt.wantKey, problems[0].Key)
		})
	}
}

func TestValidate_RegionShapes(t *testing.T) {
	// Region names carry one or more trailing digits (europe-west10).
	for _, region := range []string{
		"us-central1",
		"europe-west4",
		"europe-west10",
		"europe-west12",
		"northamerica-northeast2",
	} {
		t.Run(region, func(t *testing.T) {
			config := validConfig()
			config.Region = region
			assert.Empty(t, config.Validate())
		})
	}
}

func TestValidate_OptionalEmptyIsAccepted(t *testing.T) {
	// Shape rules only apply to present values; the connection_exists
	// relationship is the policy package's concern.
	config := validConfig()
	config.GitHubAppInstallationID = ""
	config.GitHubPATSecretID = ""
	assert.Empty(t, config.Validate())
}

func TestValidate_BlankFilter(t *testing.T) {
	config := validConfig()
	config.TelemetryLogsFilter = "   "
	problems := config.Validate()
	assert.Len(t, problems, 1)
	assert.Equal(t, "telemetry_logs_filter", problems[0].Key)
}
