package config

import (
	"fmt"
	"strings"
	"time"
)

// HarnessConfig is the complete configuration of one harness run. It is built
// once at process start (defaults, then file, then environment) and passed by
// value to the components that need it.
type HarnessConfig struct {
	Deployment DeploymentConfig `yaml:"deployment"`
	Server     ServerConfig     `yaml:"server"`
	Readiness  ReadinessConfig  `yaml:"readiness"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
	Client     ClientConfig     `yaml:"client"`
}

// DeploymentConfig describes what gets unpacked where.
type DeploymentConfig struct {
	// ResourceDir is the base directory relative paths below are resolved against.
	ResourceDir string `yaml:"resourceDir,omitempty"`
	// ArchivePath is the application server distribution (a zip archive).
	ArchivePath string `yaml:"archivePath"`
	// WebAppPath is the web application package installed into webapps/.
	WebAppPath string `yaml:"webAppPath"`
	// DeployDir is where the distribution is extracted.
	DeployDir string `yaml:"deployDir"`
	// Debug is 'true' to start the server in debug mode; any other value disables it.
	Debug string `yaml:"debug,omitempty"`
}

// ServerConfig describes the application server under test.
type ServerConfig struct {
	Hostname         string `yaml:"hostname"`
	Port             int    `yaml:"port"`
	AppContext       string `yaml:"appContext"`
	StartupScript    string `yaml:"startupScript"`
	ShutdownScript   string `yaml:"shutdownScript"`
	DebugArg         string `yaml:"debugArg"`
	ProcessSignature string `yaml:"processSignature"`
}

// ReadinessConfig controls the status endpoint poll.
type ReadinessConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Timeout of zero waits until the caller's context is cancelled.
	Timeout time.Duration `yaml:"timeout"`
}

// ShutdownConfig controls the stop sequence.
type ShutdownConfig struct {
	// SettleDelay is waited after a successful stop script run.
	SettleDelay time.Duration `yaml:"settleDelay"`
}

// ClientConfig controls the REST client used against the server.
type ClientConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent,omitempty"`
}

// ParseDebugFlag interprets the debug flag string: "true" (any case, surrounding
// whitespace ignored) enables debug mode, everything else disables it.
func ParseDebugFlag(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// DebugEnabled reports whether the server should be started in debug mode.
func (c HarnessConfig) DebugEnabled() bool {
	return ParseDebugFlag(c.Deployment.Debug)
}

// BaseURL returns http://<hostname>:<port>/<appContext>.
func (c HarnessConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d/%s", c.Server.Hostname, c.Server.Port, trimSlashes(c.Server.AppContext))
}

// StatusURL returns the readiness endpoint of the server under test.
func (c HarnessConfig) StatusURL() string {
	return c.BaseURL() + "/status"
}

func trimSlashes(s string) string {
	return strings.Trim(s, "/")
}
