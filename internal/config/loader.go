package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"jaspiharness/pkg/logging"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// Environment variables understood by ApplyEnvironment. They carry the same
// names the functional tests read to locate the server.
const (
	EnvHTTPPort   = "HTTP_PORT"
	EnvHostname   = "HOSTNAME"
	EnvContextURI = "CONTEXT_URI"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadConfig loads configuration from a YAML file layered over GetDefaultConfig.
//
// The file is rendered as a Go template with the sprig function set before it is
// decoded, so values like `{{ env "TOMCAT_ZIP" | default "apache-tomcat.zip" }}`
// work. A missing file is not an error; the defaults are returned.
func LoadConfig(configPath string) (HarnessConfig, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("Config", "No configuration found at %s, using defaults", configPath)
			return config, nil
		}
		return HarnessConfig{}, &ConfigurationError{
			FilePath:  configPath,
			ErrorType: ErrorTypeIO,
			Message:   "failed to read configuration",
			Err:       err,
		}
	}

	rendered, err := renderTemplate(configPath, data)
	if err != nil {
		return HarnessConfig{}, err
	}

	if err := yaml.Unmarshal(rendered, &config); err != nil {
		return HarnessConfig{}, &ConfigurationError{
			FilePath:  configPath,
			ErrorType: ErrorTypeParse,
			Message:   "malformed configuration",
			Err:       err,
		}
	}

	if config.Deployment.ResourceDir == "" {
		config.Deployment.ResourceDir = filepath.Dir(configPath)
	}
	config = config.ResolvePaths()

	logging.Info("Config", "Loaded configuration from %s", configPath)
	return config, nil
}

func renderTemplate(configPath string, data []byte) ([]byte, error) {
	tmpl, err := template.New(filepath.Base(configPath)).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(string(data))
	if err != nil {
		return nil, &ConfigurationError{
			FilePath:  configPath,
			ErrorType: ErrorTypeTemplate,
			Message:   "invalid template",
			Err:       err,
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, nil); err != nil {
		return nil, &ConfigurationError{
			FilePath:  configPath,
			ErrorType: ErrorTypeTemplate,
			Message:   "failed to render template",
			Err:       err,
		}
	}
	return buf.Bytes(), nil
}

// ResolvePaths makes the archive, web application and deploy paths absolute
// relative to Deployment.ResourceDir. Absolute paths are left alone.
func (c HarnessConfig) ResolvePaths() HarnessConfig {
	base := c.Deployment.ResourceDir
	if base == "" {
		return c
	}
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Deployment.ArchivePath = resolve(c.Deployment.ArchivePath)
	c.Deployment.WebAppPath = resolve(c.Deployment.WebAppPath)
	c.Deployment.DeployDir = resolve(c.Deployment.DeployDir)
	return c
}

// ApplyEnvironment overrides server location fields from HTTP_PORT, HOSTNAME
// and CONTEXT_URI when they are set and non-empty.
func ApplyEnvironment(c HarnessConfig, lookup LookupFunc) (HarnessConfig, error) {
	if v, ok := lookup(EnvHTTPPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return c, &ConfigurationError{
				Field:     EnvHTTPPort,
				ErrorType: ErrorTypeEnv,
				Message:   "not a port number",
				Err:       err,
			}
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvHostname); ok && v != "" {
		c.Server.Hostname = v
	}
	if v, ok := lookup(EnvContextURI); ok && v != "" {
		c.Server.AppContext = v
	}
	return c, nil
}

// Environment returns the variables a functional test process needs to find the
// server, in KEY=value form.
func (c HarnessConfig) Environment() []string {
	return []string{
		EnvHTTPPort + "=" + strconv.Itoa(c.Server.Port),
		EnvHostname + "=" + c.Server.Hostname,
		EnvContextURI + "=/" + trimSlashes(c.Server.AppContext),
	}
}
