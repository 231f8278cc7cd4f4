package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalogs(t *testing.T, configPath string) []string {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	return v.GetStringSlice("catalogs")
}

func TestSaveCatalogs_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	require.NoError(t, SaveCatalogs(configPath, []string{"thermal", "mechanical.stress"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalogs:")
	assert.Contains(t, string(data), "- mechanical.stress")
	require.Equal(t, []string{"thermal", "mechanical.stress"}, loadCatalogs(t, configPath))
}

func TestSaveCatalogs_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	initial := `# top comment
catalogs:
  - electromagnetic
display:
  use_latex: true # keep me
formats_dir: ./formats
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	require.NoError(t, SaveCatalogs(configPath, []string{"hydraulics"}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# top comment")
	assert.Contains(t, content, "use_latex: true # keep me")
	assert.Contains(t, content, "formats_dir: ./formats")
	assert.NotContains(t, content, "electromagnetic")
	require.Equal(t, []string{"hydraulics"}, loadCatalogs(t, configPath))
}

func TestSaveCatalogs_AppendsMissingKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("formats_dir: /data\n"), 0o600))

	require.NoError(t, SaveCatalogs(configPath, []string{"thermal"}))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	require.Equal(t, "/data", v.GetString("formats_dir"))
	require.Equal(t, []string{"thermal"}, v.GetStringSlice("catalogs"))
}

func TestSaveCatalogs_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("catalogs: [unclosed\n"), 0o600))

	err := SaveCatalogs(configPath, []string{"thermal"})
	require.ErrorContains(t, err, "parsing config")
}

func TestSaveCatalogs_NonMappingRoot(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o600))

	err := SaveCatalogs(configPath, []string{"thermal"})
	require.ErrorContains(t, err, "not a mapping")
}

func TestEnableDisableCatalog(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	current := []string{"electromagnetic"}

	updated, err := EnableCatalog(configPath, "thermal", current)
	require.NoError(t, err)
	require.Equal(t, []string{"electromagnetic", "thermal"}, updated)
	require.Equal(t, []string{"electromagnetic"}, current, "input slice is not modified")
	require.Equal(t, updated, loadCatalogs(t, configPath))

	again, err := EnableCatalog(configPath, "thermal", updated)
	require.NoError(t, err)
	require.Equal(t, updated, again)

	removed, err := DisableCatalog(configPath, "electromagnetic", updated)
	require.NoError(t, err)
	require.Equal(t, []string{"thermal"}, removed)
	require.Equal(t, []string{"electromagnetic", "thermal"}, updated)
	require.Equal(t, []string{"thermal"}, loadCatalogs(t, configPath))

	_, err = DisableCatalog(configPath, "optics", removed)
	require.ErrorContains(t, err, `catalog "optics" is not enabled`)
}

func TestSaveCatalogs_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveCatalogs(configPath, []string{"thermal"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.yaml", entries[0].Name())
}
