package tfvars

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
	"github.com/cancianpiero/deployvars/internal/vars"
)

const fixture = `prod_project_id        = "my-agent-prod"
staging_project_id     = "my-agent-staging"
cicd_runner_project_id = "my-agent-cicd"

host_connection_name = "github-connection"
repository_name      = "my-agent"
repository_owner     = "my-org"

region = "us-central1"

telemetry_bigquery_dataset_id = "telemetry"
telemetry_sink_name           = "telemetry-sink"
telemetry_logs_filter         = "jsonPayload.log_type=\"tracing\""

feedback_bigquery_dataset_id = "feedback"
feedback_sink_name           = "feedback-sink"
feedback_logs_filter         = "jsonPayload.log_type=\"feedback\""

cicd_runner_sa_name                  = "cicd-runner"
suffix_bucket_name_load_test_results = "load-test-results"

github_app_installation_id = "12345678"
github_pat_secret_id       = "github-pat"
connection_exists          = false
`

func TestDecode(t *testing.T) {
	config, err := Decode([]byte(fixture), "test.tfvars")
	require.NoError(t, err)

	assert.Equal(t, "my-agent-prod", config.ProdProjectID)
	assert.Equal(t, "my-agent-staging", config.StagingProjectID)
	assert.Equal(t, "my-agent-cicd", config.CICDRunnerProjectID)
	assert.Equal(t, "github-connection", config.HostConnectionName)
	assert.Equal(t, "my-agent", config.RepositoryName)
	assert.Equal(t, "my-org", config.RepositoryOwner)
	assert.Equal(t, "us-central1", config.Region)
	assert.Equal(t, "telemetry", config.TelemetryBigQueryDatasetID)
	assert.Equal(t, `jsonPayload.log_type="tracing"`, config.TelemetryLogsFilter)
	assert.Equal(t, "feedback-sink", config.FeedbackSinkName)
	assert.Equal(t, "12345678", config.GitHubAppInstallationID)
	assert.False(t, config.ConnectionExists)
	assert.Empty(t, config.Missing())
}

func TestDecode_Defaults(t *testing.T) {
	src := `prod_project_id = "my-agent-prod"`
	config, err := Decode([]byte(src), "test.tfvars")
	require.NoError(t, err)
	assert.Equal(t, vars.DefaultRegion, config.Region)
	assert.False(t, config.ConnectionExists)
}

func TestDecode_UnknownKey(t *testing.T) {
	src := `prod_project_id = "my-agent-prod"
not_a_key = "value"
`
	_, err := Decode([]byte(src), "test.tfvars")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownKey))
	assert.Contains(t, err.Error(), "not_a_key")
	assert.Contains(t, err.Error(), "test.tfvars:2", "error should carry the source location")
}

func TestDecode_WrongType(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "bool for string key", src: `prod_project_id = true`},
		{name: "string for bool key", src: `connection_exists = "yes"`},
		{name: "number for string key", src: `github_app_installation_id = 12345678`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src), "test.tfvars")
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrWrongType))
		})
	}
}

func TestDecode_DuplicateKey(t *testing.T) {
	src := `region = "us-central1"
region = "us-east1"
`
	_, err := Decode([]byte(src), "test.tfvars")
	assert.Error(t, err, "the parser rejects duplicate definitions")
}

func TestDecode_BlocksRejected(t *testing.T) {
	src := `telemetry {
  sink = "nope"
}
`
	_, err := Decode([]byte(src), "test.tfvars")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocks are not allowed")
}

func TestDecode_SyntaxError(t *testing.T) {
	_, err := Decode([]byte(`region = `), "test.tfvars")
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dev.tfvars")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	config, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "my-agent-prod", config.ProdProjectID)

	_, err = DecodeFile(filepath.Join(dir, "missing.tfvars"))
	assert.Error(t, err)
}
