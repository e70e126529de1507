package config

import "strings"

// Validate checks the fields every lifecycle operation depends on. All problems
// are collected and returned together as a *ConfigurationErrorCollection.
func (c HarnessConfig) Validate() error {
	var errs ConfigurationErrorCollection

	if strings.TrimSpace(c.Deployment.ArchivePath) == "" {
		errs.Add("deployment.archivePath", "is required")
	}
	if strings.TrimSpace(c.Deployment.DeployDir) == "" {
		errs.Add("deployment.deployDir", "is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs.Add("server.port", "must be between 1 and 65535")
	}
	if strings.TrimSpace(c.Server.Hostname) == "" {
		errs.Add("server.hostname", "is required")
	}
	if strings.TrimSpace(c.Server.StartupScript) == "" {
		errs.Add("server.startupScript", "is required")
	}
	if strings.TrimSpace(c.Server.ShutdownScript) == "" {
		errs.Add("server.shutdownScript", "is required")
	}
	if c.Readiness.Interval <= 0 {
		errs.Add("readiness.interval", "must be positive")
	}
	if c.Readiness.Timeout < 0 {
		errs.Add("readiness.timeout", "must not be negative")
	}
	if c.Shutdown.SettleDelay < 0 {
		errs.Add("shutdown.settleDelay", "must not be negative")
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

// ValidateForDeploy additionally requires the web application package.
func (c HarnessConfig) ValidateForDeploy() error {
	err := c.Validate()
	if strings.TrimSpace(c.Deployment.WebAppPath) != "" {
		return err
	}

	errs, ok := err.(*ConfigurationErrorCollection)
	if !ok {
		errs = &ConfigurationErrorCollection{}
	}
	errs.Add("deployment.webAppPath", "is required")
	return errs
}
