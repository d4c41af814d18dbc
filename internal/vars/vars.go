// Package vars defines the deployment variable record consumed by the
// provisioning pipeline: project identifiers, region, telemetry and
// feedback sink configuration, and source-control connection metadata.
package vars

// DefaultRegion is applied when the variable file omits the region key.
const DefaultRegion = "us-central1"

// Config is a decoded deployment variable file.
type Config struct {
	ProdProjectID       string
	StagingProjectID    string
	CICDRunnerProjectID string

	HostConnectionName string
	RepositoryName     string
	RepositoryOwner    string

	Region string

	TelemetryBigQueryDatasetID string
	TelemetrySinkName          string
	TelemetryLogsFilter        string

	FeedbackBigQueryDatasetID string
	FeedbackSinkName          string
	FeedbackLogsFilter        string

	CICDRunnerSAName                string
	SuffixBucketNameLoadTestResults string
	GitHubAppInstallationID         string
	GitHubPATSecretID               string

	ConnectionExists bool
}

// Kind identifies the scalar type a key accepts.
type Kind int

const (
	KindString Kind = iota
	KindBool
)

func (k Kind) String() string {
	if k == KindBool {
		return "bool"
	}
	return "string"
}

// KeySpec describes one recognized key: its name, type, section used for
// grouping in rendered output, and how it binds to a Config field.
type KeySpec struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     string
	DefaultBool bool
	Section     string
	Description string

	str     func(*Config) *string
	boolean func(*Config) *bool
}

// Registry is the ordered set of recognized keys. Order is the canonical
// rendering order.
var Registry = []KeySpec{
	{
		Name: "prod_project_id", Kind: KindString, Required: true, Section: "projects",
		Description: "production cloud project identifier",
		str:         func(c *Config) *string { return &c.ProdProjectID },
	},
	{
		Name: "staging_project_id", Kind: KindString, Required: true, Section: "projects",
		Description: "staging/test cloud project identifier",
		str:         func(c *Config) *string { return &c.StagingProjectID },
	},
	{
		Name: "cicd_runner_project_id", Kind: KindString, Required: true, Section: "projects",
		Description: "project hosting CI/CD pipelines",
		str:         func(c *Config) *string { return &c.CICDRunnerProjectID },
	},
	{
		Name: "host_connection_name", Kind: KindString, Required: true, Section: "repository",
		Description: "name of the source-control host connection",
		str:         func(c *Config) *string { return &c.HostConnectionName },
	},
	{
		Name: "repository_name", Kind: KindString, Required: true, Section: "repository",
		Description: "name of the registered source repository",
		str:         func(c *Config) *string { return &c.RepositoryName },
	},
	{
		Name: "repository_owner", Kind: KindString, Required: true, Section: "repository",
		Description: "owning account or organization of the repository",
		str:         func(c *Config) *string { return &c.RepositoryOwner },
	},
	{
		Name: "region", Kind: KindString, Default: DefaultRegion, Section: "region",
		Description: "deployment region",
		str:         func(c *Config) *string { return &c.Region },
	},
	{
		Name: "telemetry_bigquery_dataset_id", Kind: KindString, Required: true, Section: "telemetry",
		Description: "dataset receiving tracing telemetry",
		str:         func(c *Config) *string { return &c.TelemetryBigQueryDatasetID },
	},
	{
		Name: "telemetry_sink_name", Kind: KindString, Required: true, Section: "telemetry",
		Description: "log sink feeding the telemetry dataset",
		str:         func(c *Config) *string { return &c.TelemetrySinkName },
	},
	{
		Name: "telemetry_logs_filter", Kind: KindString, Required: true, Section: "telemetry",
		Description: "filter predicate selecting tracing entries",
		str:         func(c *Config) *string { return &c.TelemetryLogsFilter },
	},
	{
		Name: "feedback_bigquery_dataset_id", Kind: KindString, Required: true, Section: "feedback",
		Description: "dataset receiving feedback logs",
		str:         func(c *Config) *string { return &c.FeedbackBigQueryDatasetID },
	},
	{
		Name: "feedback_sink_name", Kind: KindString, Required: true, Section: "feedback",
		Description: "log sink feeding the feedback dataset",
		str:         func(c *Config) *string { return &c.FeedbackSinkName },
	},
	{
		Name: "feedback_logs_filter", Kind: KindString, Required: true, Section: "feedback",
		Description: "filter predicate selecting feedback entries",
		str:         func(c *Config) *string { return &c.FeedbackLogsFilter },
	},
	{
		Name: "cicd_runner_sa_name", Kind: KindString, Required: true, Section: "cicd",
		Description: "service-account name for the CI/CD runner",
		str:         func(c *Config) *string { return &c.CICDRunnerSAName },
	},
	{
		Name: "suffix_bucket_name_load_test_results", Kind: KindString, Required: true, Section: "cicd",
		Description: "suffix for the load-test results bucket name",
		str:         func(c *Config) *string { return &c.SuffixBucketNameLoadTestResults },
	},
	{
		Name: "github_app_installation_id", Kind: KindString, Section: "connection",
		Description: "installation id of the source-control integration app",
		str:         func(c *Config) *string { return &c.GitHubAppInstallationID },
	},
	{
		Name: "github_pat_secret_id", Kind: KindString, Section: "connection",
		Description: "identifier of the stored access-token secret",
		str:         func(c *Config) *string { return &c.GitHubPATSecretID },
	},
	{
		Name: "connection_exists", Kind: KindBool, Section: "connection",
		Description: "whether the host connection already exists",
		boolean:     func(c *Config) *bool { return &c.ConnectionExists },
	},
}

// Lookup returns the KeySpec for name, or nil when the key is not recognized.
func Lookup(name string) *KeySpec {
	for i := range Registry {
		if Registry[i].Name == name {
			return &Registry[i]
		}
	}
	return nil
}

// SetString assigns a string value into c via this key. Returns false when the
// key is not string-kinded.
func (s *KeySpec) SetString(c *Config, v string) bool {
	if s.Kind != KindString || s.str == nil {
		return false
	}
	*s.str(c) = v
	return true
}

// SetBool assigns a bool value into c via this key. Returns false when the key
// is not bool-kinded.
func (s *KeySpec) SetBool(c *Config, v bool) bool {
	if s.Kind != KindBool || s.boolean == nil {
		return false
	}
	*s.boolean(c) = v
	return true
}

// BoolValue reads a bool key's value from c. Always false for non-bool keys.
func (s *KeySpec) BoolValue(c *Config) bool {
	if s.Kind != KindBool || s.boolean == nil {
		return false
	}
	return *s.boolean(c)
}

// StringValue reads the key's value from c. Bool keys render as "true"/"false".
func (s *KeySpec) StringValue(c *Config) string {
	if s.Kind == KindBool {
		if *s.boolean(c) {
			return "true"
		}
		return "false"
	}
	return *s.str(c)
}

// IsZero reports whether the key holds its zero value in c. A bool key is
// never considered zero once decoded; presence is tracked by the decoder.
func (s *KeySpec) IsZero(c *Config) bool {
	if s.Kind == KindBool {
		return false
	}
	return *s.str(c) == ""
}

// ApplyDefaults fills keys that declare a default and are currently unset.
func (c *Config) ApplyDefaults() {
	for i := range Registry {
		spec := &Registry[i]
		switch spec.Kind {
		case KindString:
			if spec.Default != "" && *spec.str(c) == "" {
				*spec.str(c) = spec.Default
			}
		case KindBool:
			// false is both the zero value and the default; nothing to do.
		}
	}
}

// Missing returns the required keys that are unset, in registry order.
func (c *Config) Missing() []string {
	var missing []string
	for i := range Registry {
		spec := &Registry[i]
		if spec.Required && spec.IsZero(c) {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}

// Pair is one key with its value, used for ordered display and export.
type Pair struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Pairs returns every key with its rendered value in registry order.
func (c *Config) Pairs() []Pair {
	pairs := make([]Pair, 0, len(Registry))
	for i := range Registry {
		spec := &Registry[i]
		pairs = append(pairs, Pair{Key: spec.Name, Value: spec.StringValue(c)})
	}
	return pairs
}

// Map returns the record as a plain map, bool keys as bools. Used as policy
// input and for JSON/YAML projections.
func (c *Config) Map() map[string]any {
	m := make(map[string]any, len(Registry))
	for i := range Registry {
		spec := &Registry[i]
		if spec.Kind == KindBool {
			m[spec.Name] = *spec.boolean(c)
			continue
		}
		m[spec.Name] = *spec.str(c)
	}
	return m
}
