package vars

import (
	"fmt"
	"regexp"
	"strings"
)

// Problem describes a single validation finding against one key.
type Problem struct {
	Key    string `json:"key"`
	Detail string `json:"detail"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Key, p.Detail)
}

var (
	// Project and service-account ids share the same shape: 6-30 chars,
	// lowercase letter start, lowercase/digit/hyphen body, no trailing hyphen.
	reProjectID = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)
	reRegion    = regexp.MustCompile(`^[a-z]+-[a-z]+[0-9]+$`)
	reDataset   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	reSinkName  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]{0,99}$`)
	reConnName  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,62}$`)
	reRepoPart  = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	reSuffix    = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	reNumeric   = regexp.MustCompile(`^[0-9]+$`)
	reSecretID  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,255}$`)
)

// Validate checks every present key against its expected shape and reports
// missing required keys. Filter predicates are only checked for presence
// here; their syntax is the logfilter package's concern.
func (c *Config) Validate() []Problem {
	var problems []Problem

	for _, key := range c.Missing() {
		problems = append(problems, Problem{Key: key, Detail: "required key is missing"})
	}

	checks := []struct {
		key   string
		value string
		re    *regexp.Regexp
		hint  string
	}{
		{"prod_project_id", c.ProdProjectID, reProjectID, "not a valid project id"},
		{"staging_project_id", c.StagingProjectID, reProjectID, "not a valid project id"},
		{"cicd_runner_project_id", c.CICDRunnerProjectID, reProjectID, "not a valid project id"},
		{"host_connection_name", c.HostConnectionName, reConnName, "not a valid connection name"},
		{"repository_name", c.RepositoryName, reRepoPart, "not a valid repository name"},
		{"repository_owner", c.RepositoryOwner, reRepoPart, "not a valid repository owner"},
		{"region", c.Region, reRegion, "not a valid region"},
		{"telemetry_bigquery_dataset_id", c.TelemetryBigQueryDatasetID, reDataset, "not a valid dataset id"},
		{"telemetry_sink_name", c.TelemetrySinkName, reSinkName, "not a valid sink name"},
		{"feedback_bigquery_dataset_id", c.FeedbackBigQueryDatasetID, reDataset, "not a valid dataset id"},
		{"feedback_sink_name", c.FeedbackSinkName, reSinkName, "not a valid sink name"},
		{"cicd_runner_sa_name", c.CICDRunnerSAName, reProjectID, "not a valid service-account name"},
		{"suffix_bucket_name_load_test_results", c.SuffixBucketNameLoadTestResults, reSuffix, "not a valid bucket suffix"},
		{"github_app_installation_id", c.GitHubAppInstallationID, reNumeric, "must be numeric"},
		{"github_pat_secret_id", c.GitHubPATSecretID, reSecretID, "not a valid secret id"},
	}
	for _, check := range checks {
		if check.value == "" {
			continue // missing keys are reported above; optional keys may be empty
		}
		if !check.re.MatchString(check.value) {
			problems = append(problems, Problem{Key: check.key, Detail: check.hint})
		}
	}

	if len(c.TelemetryBigQueryDatasetID) > 1024 {
		problems = append(problems, Problem{Key: "telemetry_bigquery_dataset_id", Detail: "dataset id exceeds 1024 characters"})
	}
	if len(c.FeedbackBigQueryDatasetID) > 1024 {
		problems = append(problems, Problem{Key: "feedback_bigquery_dataset_id", Detail: "dataset id exceeds 1024 characters"})
	}
	if len(c.SuffixBucketNameLoadTestResults) > 50 {
		problems = append(problems, Problem{Key: "suffix_bucket_name_load_test_results", Detail: "bucket suffix exceeds 50 characters"})
	}
	for _, key := range []struct{ name, value string }{
		{"telemetry_logs_filter", c.TelemetryLogsFilter},
		{"feedback_logs_filter", c.FeedbackLogsFilter},
	} {
		if strings.TrimSpace(key.value) == "" && key.value != "" {
			problems = append(problems, Problem{Key: key.name, Detail: "filter is blank"})
		}
	}

	return problems
}
