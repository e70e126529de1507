package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"jaspiharness/internal/config"
	"jaspiharness/internal/lifecycle"
	"jaspiharness/internal/testing/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRoot runs the root command with args and returns its standard output.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

type harnessFiles struct {
	dir     string
	archive string
	webApp  string
}

func newHarnessFiles(t *testing.T) harnessFiles {
	t.Helper()
	dir := t.TempDir()
	archive, err := mock.WriteDistribution(dir, mock.DefaultDistribution("apache-tomcat-6.0.37"))
	require.NoError(t, err)

	webApp := filepath.Join(dir, "jaspi.war")
	require.NoError(t, os.WriteFile(webApp, []byte("war"), 0644))
	return harnessFiles{dir: dir, archive: archive, webApp: webApp}
}

// writeConfig writes a harness configuration pointing at serverURL.
func (f harnessFiles) writeConfig(t *testing.T, serverURL string) string {
	t.Helper()
	u, err := url.Parse(serverURL)
	require.NoError(t, err)

	content := fmt.Sprintf(`
deployment:
  archivePath: %s
  webAppPath: %s
  deployDir: deploy
server:
  hostname: %s
  port: %s
  appContext: jaspi
  processSignature: jaspi-harness-cmd-test-no-such-process
readiness:
  interval: 50ms
  timeout: 5s
shutdown:
  settleDelay: 0s
`, filepath.Base(f.archive), filepath.Base(f.webApp), u.Hostname(), u.Port())

	path := filepath.Join(f.dir, "jaspi-harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestApplyStartFlags(t *testing.T) {
	cfg := applyStartFlags(config.GetDefaultConfig(), 0, false)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.DebugEnabled())

	cfg = applyStartFlags(config.GetDefaultConfig(), 18080, true)
	assert.Equal(t, 18080, cfg.Server.Port)
	assert.True(t, cfg.DebugEnabled())
}

func TestRenderProcesses(t *testing.T) {
	var buf bytes.Buffer
	renderProcesses(&buf, nil, nil, false)
	assert.Contains(t, buf.String(), "No server processes found")

	buf.Reset()
	procs := []lifecycle.Process{
		{PID: 4242, Command: "java org.apache.catalina.startup.Bootstrap start"},
		{PID: 4343, Command: "java org.apache.catalina.startup.Bootstrap start"},
	}
	renderProcesses(&buf, procs, []int{4242}, false)

	out := buf.String()
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "4343")
	assert.Contains(t, out, "KILLED")
	assert.Contains(t, out, "Bootstrap")
}

func TestConfigureAndAuditCommands(t *testing.T) {
	app := mock.NewJASPIServer("/jaspi")
	defer app.Close()

	f := newHarnessFiles(t)
	configFile := f.writeConfig(t, app.URL())

	doc := filepath.Join(f.dir, "runtime.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{"serverAuthContext":{"authModules":[{"className":"a.b.AuthModuleOne"}]}}`), 0644))

	out, err := executeRoot(t, "--config", configFile, "configure", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "a.b.AuthModuleOne")
	assert.Equal(t, 1, app.ConfigurationPuts())

	out, err = executeRoot(t, "--config", configFile, "audit", "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "No audit records")
}

func TestConfigureCommand_RejectsInvalidJSON(t *testing.T) {
	f := newHarnessFiles(t)
	doc := filepath.Join(f.dir, "runtime.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{not json`), 0644))

	_, err := executeRoot(t, "--config", f.writeConfig(t, "http://127.0.0.1:1"), "configure", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("control scripts require a POSIX shell")
	}

	status := mock.NewStatusServer("/jaspi/status", 1, 503)
	defer status.Close()

	f := newHarnessFiles(t)
	configFile := f.writeConfig(t, status.URL())

	check := fmt.Sprintf(`test "$HTTP_PORT" = "%d" && test "$CONTEXT_URI" = "/jaspi" && exit 5`, status.Port())
	_, err := executeRoot(t, "--config", configFile, "run", "--quiet", "--", "sh", "-c", check)

	var exitErr *commandExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 5, exitErr.code)
	assert.Equal(t, 5, getExitCode(err))

	log, readErr := os.ReadFile(filepath.Join(f.dir, "deploy", "apache-tomcat-6.0.37", "invocations.log"))
	require.NoError(t, readErr)
	assert.Equal(t, []string{"start", "stop"}, strings.Split(strings.TrimSpace(string(log)), "\n"))
	assert.GreaterOrEqual(t, status.RequestCount(), 2)
}
