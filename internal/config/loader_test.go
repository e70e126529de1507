package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, content string) string {
	t.Helper()
	path := filepath.Join(dir, "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := createTempConfigFile(t, dir, `
deployment:
  archivePath: dist/apache-tomcat-6.0.37.zip
  webAppPath: /opt/wars/jaspi.war
  deployDir: target/deploy
  debug: "true"
server:
  port: 18080
readiness:
  interval: 250ms
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dist/apache-tomcat-6.0.37.zip"), cfg.Deployment.ArchivePath)
	assert.Equal(t, "/opt/wars/jaspi.war", cfg.Deployment.WebAppPath, "absolute paths are kept")
	assert.Equal(t, filepath.Join(dir, "target/deploy"), cfg.Deployment.DeployDir)
	assert.True(t, cfg.DebugEnabled())
	assert.Equal(t, 18080, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Readiness.Interval)

	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultScript, cfg.Server.StartupScript)
	assert.Equal(t, DefaultReadinessTimeout, cfg.Readiness.Timeout)
	assert.Equal(t, DefaultSettleDelay, cfg.Shutdown.SettleDelay)
}

func TestLoadConfig_RendersSprigTemplate(t *testing.T) {
	t.Setenv("JASPI_TEST_ARCHIVE", "/srv/tomcat.zip")

	path := createTempConfigFile(t, t.TempDir(), `
deployment:
  archivePath: '{{ env "JASPI_TEST_ARCHIVE" }}'
  deployDir: '{{ env "JASPI_TEST_UNSET" | default "/tmp/deploy" }}'
server:
  appContext: '{{ "JASPI" | lower }}'
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/tomcat.zip", cfg.Deployment.ArchivePath)
	assert.Equal(t, "/tmp/deploy", cfg.Deployment.DeployDir)
	assert.Equal(t, "jaspi", cfg.Server.AppContext)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errorType string
	}{
		{
			name:      "broken template",
			content:   "deployment:\n  archivePath: '{{ env \"X\" '\n",
			errorType: ErrorTypeTemplate,
		},
		{
			name:      "malformed yaml",
			content:   "server:\n  port: [not, a, port\n",
			errorType: ErrorTypeParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempConfigFile(t, t.TempDir(), tt.content)

			_, err := LoadConfig(path)
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.errorType, cfgErr.ErrorType)
			assert.Equal(t, path, cfgErr.FilePath)
		})
	}
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{
		EnvHTTPPort:   "19090",
		EnvHostname:   "jaspi.example.com",
		EnvContextURI: "/jaspi-test",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg, err := ApplyEnvironment(GetDefaultConfig(), lookup)
	require.NoError(t, err)
	assert.Equal(t, 19090, cfg.Server.Port)
	assert.Equal(t, "jaspi.example.com", cfg.Server.Hostname)
	assert.Equal(t, "http://jaspi.example.com:19090/jaspi-test/status", cfg.StatusURL())
}

func TestApplyEnvironment_InvalidPort(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == EnvHTTPPort {
			return "eighty", true
		}
		return "", false
	}

	cfg, err := ApplyEnvironment(GetDefaultConfig(), lookup)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrorTypeEnv, cfgErr.ErrorType)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestEnvironment(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 18080

	assert.Equal(t, []string{
		"HTTP_PORT=18080",
		"HOSTNAME=localhost",
		"CONTEXT_URI=/jaspi",
	}, cfg.Environment())
}
