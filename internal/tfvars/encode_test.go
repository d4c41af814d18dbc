package tfvars

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_RoundTrip(t *testing.T) {
	config, err := Decode([]byte(fixture), "test.tfvars")
	require.NoError(t, err)

	rendered := Encode(config)
	again, err := Decode(rendered, "rendered.tfvars")
	require.NoError(t, err)
	assert.Equal(t, config, again)

	// Canonical form is a fixed point.
	assert.Equal(t, rendered, Encode(again))
}

func TestEncode_Order(t *testing.T) {
	config, err := Decode([]byte(fixture), "test.tfvars")
	require.NoError(t, err)

	rendered := string(Encode(config))
	prodAt := strings.Index(rendered, "prod_project_id")
	regionAt := strings.Index(rendered, "region")
	connectionAt := strings.Index(rendered, "connection_exists")
	assert.True(t, prodAt >= 0 && prodAt < regionAt, "projects render before region")
	assert.True(t, regionAt < connectionAt, "connection flags render last")
	assert.Contains(t, rendered, "connection_exists")
}

func TestEncode_Sections(t *testing.T) {
	config, err := Decode([]byte(fixture), "test.tfvars")
	require.NoError(t, err)

	rendered := string(Encode(config))
	assert.Contains(t, rendered, "\n\n", "sections are separated by a blank line")
}

func TestEncode_OmitsUnsetOptionalKeys(t *testing.T) {
	config, err := Decode([]byte(fixture), "test.tfvars")
	require.NoError(t, err)
	config.GitHubAppInstallationID = ""
	config.GitHubPATSecretID = ""

	rendered := string(Encode(config))
	assert.NotContains(t, rendered, "github_app_installation_id")
	assert.NotContains(t, rendered, "github_pat_secret_id")
	assert.Contains(t, rendered, "connection_exists", "bool keys always render")
}

func TestEncode_EscapesFilterStrings(t *testing.T) {
	config, err := Decode([]byte(fixture), "test.tfvars")
	require.NoError(t, err)

	rendered := Encode(config)
	again, err := Decode(rendered, "rendered.tfvars")
	require.NoError(t, err)
	assert.Equal(t, `jsonPayload.log_type="tracing"`, again.TelemetryLogsFilter)
}
