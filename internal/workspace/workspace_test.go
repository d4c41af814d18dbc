package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cancianpiero/deployvars/internal/errors"
)

const manifestFixture = `default_env: dev
environments:
  dev: deployment/dev.tfvars
  prod: deployment/prod.tfvars
snapshots:
  bucket: my-snapshots
  prefix: vars
`

func writeManifest(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(manifestFixture), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DEPLOYVARS_CONFIG", "DEPLOYVARS_ENV", "DEPLOYVARS_BUCKET", "DEPLOYVARS_PREFIX", "DEPLOYVARS_NO_COLOR"} {
		// t.Setenv registers the restore; the value itself must be absent so
		// env.Parse does not try to parse an empty bool.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir)

	manifest, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", manifest.DefaultEnv)
	assert.Equal(t, "my-snapshots", manifest.Snapshots.Bucket)
	assert.Equal(t, "vars", manifest.Snapshots.Prefix)

	file, err := manifest.File("prod")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "deployment", "prod.tfvars"), file)

	_, err = manifest.File("qa")
	assert.ErrorIs(t, err, apperrors.ErrUnknownEnv)
}

func TestLoadManifest_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte("environments: [not a map"), 0o644))

	_, err := LoadManifest(path)
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root)
	nested := filepath.Join(root, "deployment", "envs")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	manifest, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, "dev", manifest.DefaultEnv)
}

func TestDiscover_NotFound(t *testing.T) {
	_, err := Discover(t.TempDir())
	assert.ErrorIs(t, err, apperrors.ErrManifestNotFound)
}

func TestLoadSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEPLOYVARS_BUCKET", "override-bucket")
	t.Setenv("DEPLOYVARS_NO_COLOR", "true")

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "override-bucket", settings.Bucket)
	assert.True(t, settings.NoColor)
	assert.Empty(t, settings.Env)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	manifest, err := LoadManifest(writeManifest(t, dir))
	require.NoError(t, err)

	t.Run("explicit file wins", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{Env: "prod"}, Manifest: manifest}
		path, err := ws.ResolveFile("other.tfvars", "dev")
		require.NoError(t, err)
		assert.Equal(t, "other.tfvars", path)
	})

	t.Run("env flag beats settings env", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{Env: "prod"}, Manifest: manifest}
		path, err := ws.ResolveFile("", "dev")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deployment", "dev.tfvars"), path)
	})

	t.Run("settings env beats manifest default", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{Env: "prod"}, Manifest: manifest}
		path, err := ws.ResolveFile("", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deployment", "prod.tfvars"), path)
	})

	t.Run("falls back to manifest default", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{}, Manifest: manifest}
		path, err := ws.ResolveFile("", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deployment", "dev.tfvars"), path)
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{}}
		_, err := ws.ResolveFile("", "")
		assert.Error(t, err)
	})

	t.Run("env without manifest", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{}}
		_, err := ws.ResolveFile("", "dev")
		assert.ErrorIs(t, err, apperrors.ErrManifestNotFound)
	})
}

func TestBucketAndPrefix(t *testing.T) {
	dir := t.TempDir()
	manifest, err := LoadManifest(writeManifest(t, dir))
	require.NoError(t, err)

	t.Run("settings override manifest", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{Bucket: "env-bucket", Prefix: "env-prefix"}, Manifest: manifest}
		assert.Equal(t, "env-bucket", ws.Bucket())
		assert.Equal(t, "env-prefix", ws.Prefix())
	})

	t.Run("manifest values apply", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{}, Manifest: manifest}
		assert.Equal(t, "my-snapshots", ws.Bucket())
		assert.Equal(t, "vars", ws.Prefix())
	})

	t.Run("defaults without manifest", func(t *testing.T) {
		ws := &Workspace{Settings: &Settings{}}
		assert.Equal(t, "", ws.Bucket())
		assert.Equal(t, DefaultSnapshotPrefix, ws.Prefix())
	})
}
