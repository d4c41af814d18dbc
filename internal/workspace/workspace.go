// Package workspace locates the deployvars.yaml manifest and merges it with
// process-environment settings. The manifest maps environment names to
// variable files; settings override it.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
)

// ManifestName is the file commands look for, walking up from the working
// directory.
const ManifestName = "deployvars.yaml"

// DefaultSnapshotPrefix is used when neither the manifest nor the
// environment names one.
const DefaultSnapshotPrefix = "snapshots"

// Settings are process-environment overrides.
type Settings struct {
	ManifestPath string `env:"DEPLOYVARS_CONFIG"`
	Env          string `env:"DEPLOYVARS_ENV"`
	Bucket       string `env:"DEPLOYVARS_BUCKET"`
	Prefix       string `env:"DEPLOYVARS_PREFIX"`
	NoColor      bool   `env:"DEPLOYVARS_NO_COLOR"`
}

// LoadSettings reads DEPLOYVARS_* from the process environment.
func LoadSettings() (*Settings, error) {
	var settings Settings
	if err := env.Parse(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse environment settings: %w", err)
	}
	return &settings, nil
}

// SnapshotConfig names the bucket and object prefix for snapshot storage.
type SnapshotConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Manifest is the parsed deployvars.yaml.
type Manifest struct {
	DefaultEnv   string            `yaml:"default_env"`
	Environments map[string]string `yaml:"environments"`
	Snapshots    SnapshotConfig    `yaml:"snapshots"`

	dir string
}

// LoadManifest parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	manifest.dir = filepath.Dir(abs)
	return &manifest, nil
}

// Discover walks up from startDir looking for ManifestName.
func Discover(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return LoadManifest(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, apperrors.ErrManifestNotFound
		}
		dir = parent
	}
}

// File resolves the variable file registered for envName, relative to the
// manifest's directory.
func (m *Manifest) File(envName string) (string, error) {
	path, ok := m.Environments[envName]
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownEnv, envName)
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join(m.dir, path), nil
}

// Workspace combines settings with an optionally discovered manifest.
type Workspace struct {
	Settings *Settings
	Manifest *Manifest // nil when no manifest was found
}

// Load builds a Workspace from the process environment and the manifest
// discovered from the working directory (or DEPLOYVARS_CONFIG). A missing
// manifest is not an error; it only matters once something needs it.
func Load() (*Workspace, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}

	var manifest *Manifest
	if settings.ManifestPath != "" {
		manifest, err = LoadManifest(settings.ManifestPath)
		if err != nil {
			return nil, err
		}
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		manifest, err = Discover(cwd)
		if err != nil && !errors.Is(err, apperrors.ErrManifestNotFound) {
			return nil, err
		}
	}

	return &Workspace{Settings: settings, Manifest: manifest}, nil
}

// ResolveFile picks the variable file to operate on. Precedence: explicit
// file argument, then --env flag, then DEPLOYVARS_ENV, then the manifest's
// default_env.
func (w *Workspace) ResolveFile(fileArg, envFlag string) (string, error) {
	if fileArg != "" {
		return fileArg, nil
	}

	envName := envFlag
	if envName == "" {
		envName = w.Settings.Env
	}
	if envName == "" && w.Manifest != nil {
		envName = w.Manifest.DefaultEnv
	}
	if envName == "" {
		return "", fmt.Errorf("no variable file given: pass a file, --env, or set default_env in %s", ManifestName)
	}
	if w.Manifest == nil {
		return "", fmt.Errorf("environment %q given but %w", envName, apperrors.ErrManifestNotFound)
	}
	return w.Manifest.File(envName)
}

// Bucket returns the snapshot bucket, environment winning over manifest.
func (w *Workspace) Bucket() string {
	if w.Settings.Bucket != "" {
		return w.Settings.Bucket
	}
	if w.Manifest != nil {
		return w.Manifest.Snapshots.Bucket
	}
	return ""
}

// Prefix returns the snapshot object prefix.
func (w *Workspace) Prefix() string {
	if w.Settings.Prefix != "" {
		return w.Settings.Prefix
	}
	if w.Manifest != nil && w.Manifest.Snapshots.Prefix != "" {
		return w.Manifest.Snapshots.Prefix
	}
	return DefaultSnapshotPrefix
}
