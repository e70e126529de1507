package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jaspiharness/internal/config"
	"jaspiharness/internal/readiness"
	"jaspiharness/pkg/logging"

	"github.com/google/uuid"
)

const (
	binDir     = "bin"
	webappsDir = "webapps"

	// DefaultSettleDelay is waited after the stop script reports success.
	DefaultSettleDelay = 500 * time.Millisecond
)

// Descriptor is the immutable description of one deployment.
type Descriptor struct {
	// ResourceDir is the base directory relative ArchivePath and DeployDir are
	// resolved against.
	ResourceDir string
	// ArchivePath is the server distribution zip.
	ArchivePath string
	// DeployDir receives the extracted distribution.
	DeployDir string
	// Debug appends DebugArg before "start" when starting the server.
	Debug bool

	Hostname         string
	AppContext       string
	StartupScript    string
	ShutdownScript   string
	DebugArg         string
	ProcessSignature string
}

// DescriptorFromConfig builds a Descriptor from the harness configuration.
func DescriptorFromConfig(cfg config.HarnessConfig) Descriptor {
	return Descriptor{
		ResourceDir:      cfg.Deployment.ResourceDir,
		ArchivePath:      cfg.Deployment.ArchivePath,
		DeployDir:        cfg.Deployment.DeployDir,
		Debug:            cfg.DebugEnabled(),
		Hostname:         cfg.Server.Hostname,
		AppContext:       cfg.Server.AppContext,
		StartupScript:    cfg.Server.StartupScript,
		ShutdownScript:   cfg.Server.ShutdownScript,
		DebugArg:         cfg.Server.DebugArg,
		ProcessSignature: cfg.Server.ProcessSignature,
	}
}

// OptionsFromConfig returns the controller options matching cfg.
func OptionsFromConfig(cfg config.HarnessConfig) []Option {
	return []Option{
		WithReadiness(cfg.Readiness.Interval, cfg.Readiness.Timeout),
		WithSettleDelay(cfg.Shutdown.SettleDelay),
	}
}

// Controller deploys, starts and stops one locally run application server.
//
// It holds no handle on the running server: the server is found again through
// its own control scripts and, for strays, through the process table. At most
// one instance may own the port, so Start terminates every process that looks
// like the server software before launching a new one.
type Controller struct {
	desc      Descriptor
	distName  string
	sessionID string

	finder     ProcessFinder
	terminator ProcessTerminator
	prober     readiness.StatusProber

	pollInterval time.Duration
	readyTimeout time.Duration
	settleDelay  time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithProcessFinder sets how stray server processes are discovered.
func WithProcessFinder(f ProcessFinder) Option {
	return func(c *Controller) { c.finder = f }
}

// WithProcessTerminator sets how stray server processes are killed.
func WithProcessTerminator(t ProcessTerminator) Option {
	return func(c *Controller) { c.terminator = t }
}

// WithStatusProber sets how the status endpoint is probed.
func WithStatusProber(p readiness.StatusProber) Option {
	return func(c *Controller) { c.prober = p }
}

// WithReadiness sets the poll interval and the overall readiness timeout. A
// zero timeout waits until the context passed to Start is done.
func WithReadiness(interval, timeout time.Duration) Option {
	return func(c *Controller) {
		c.pollInterval = interval
		c.readyTimeout = timeout
	}
}

// WithSettleDelay sets the pause after a successful stop.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) { c.settleDelay = d }
}

// NewController creates a controller for desc.
func NewController(desc Descriptor, opts ...Option) (*Controller, error) {
	if strings.TrimSpace(desc.ArchivePath) == "" {
		return nil, errors.New("archive path is required")
	}
	if strings.TrimSpace(desc.DeployDir) == "" {
		return nil, errors.New("deploy directory is required")
	}
	if desc.ResourceDir != "" {
		if !filepath.IsAbs(desc.ArchivePath) {
			desc.ArchivePath = filepath.Join(desc.ResourceDir, desc.ArchivePath)
		}
		if !filepath.IsAbs(desc.DeployDir) {
			desc.DeployDir = filepath.Join(desc.ResourceDir, desc.DeployDir)
		}
	}

	defaults := config.GetDefaultConfig().Server
	if desc.Hostname == "" {
		desc.Hostname = defaults.Hostname
	}
	if desc.AppContext == "" {
		desc.AppContext = defaults.AppContext
	}
	if desc.StartupScript == "" {
		desc.StartupScript = defaults.StartupScript
	}
	if desc.ShutdownScript == "" {
		desc.ShutdownScript = defaults.ShutdownScript
	}
	if desc.DebugArg == "" {
		desc.DebugArg = defaults.DebugArg
	}
	if desc.ProcessSignature == "" {
		desc.ProcessSignature = defaults.ProcessSignature
	}

	c := &Controller{
		desc:         desc,
		distName:     DistributionName(desc.ArchivePath),
		sessionID:    uuid.NewString(),
		finder:       NewNativeProcessTable(),
		terminator:   SignalTerminator{},
		prober:       readiness.NewHTTPProber(),
		pollInterval: readiness.DefaultInterval,
		settleDelay:  DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	logging.Debug("Lifecycle", "Controller %s manages %s in %s", c.sessionID, c.distName, desc.DeployDir)
	return c, nil
}

// DistributionName derives the distribution's root folder name from the
// archive path: trailing separators are dropped, then one extension is
// stripped from the base name.
func DistributionName(archivePath string) string {
	trimmed := strings.TrimRight(archivePath, "/"+string(filepath.Separator))
	base := filepath.Base(trimmed)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Descriptor returns the (resolved) descriptor.
func (c *Controller) Descriptor() Descriptor { return c.desc }

// SessionID identifies this controller in logs.
func (c *Controller) SessionID() string { return c.sessionID }

// DistributionName returns the derived distribution root folder name.
func (c *Controller) DistributionName() string { return c.distName }

// DistributionDir is where the distribution lives once deployed.
func (c *Controller) DistributionDir() string {
	return filepath.Join(c.desc.DeployDir, c.distName)
}

// BinDir is the distribution's script directory.
func (c *Controller) BinDir() string {
	return filepath.Join(c.DistributionDir(), binDir)
}

// WebappsDir is the distribution's web application directory.
func (c *Controller) WebappsDir() string {
	return filepath.Join(c.DistributionDir(), webappsDir)
}

// StatusURL returns the readiness endpoint for a server on port.
func (c *Controller) StatusURL(port int) string {
	return fmt.Sprintf("http://%s:%d/%s/status", c.desc.Hostname, port, strings.Trim(c.desc.AppContext, "/"))
}

// CleanDeployDir removes the deploy directory and everything under it. A
// missing directory is not an error.
func (c *Controller) CleanDeployDir() error {
	dir := filepath.Clean(c.desc.DeployDir)
	if dir == string(filepath.Separator) || dir == "." {
		return fmt.Errorf("refusing to remove %q", c.desc.DeployDir)
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		logging.Debug("Lifecycle", "Deploy directory %s does not exist, nothing to clean", dir)
		return nil
	}

	logging.Info("Lifecycle", "Removing deploy directory %s", dir)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove deploy directory %s: %w", dir, err)
	}
	return nil
}

// Deploy extracts the distribution into the deploy directory, makes its
// bin/*.sh scripts executable and copies webApp into webapps/. Steps run in
// that order; a failure aborts without rolling back earlier steps.
func (c *Controller) Deploy(ctx context.Context, webApp string) error {
	if err := os.MkdirAll(c.desc.DeployDir, 0755); err != nil {
		return fmt.Errorf("failed to create deploy directory %s: %w", c.desc.DeployDir, err)
	}

	logging.Info("Lifecycle", "Extracting %s into %s", c.desc.ArchivePath, c.desc.DeployDir)
	entries, err := extractZip(ctx, c.desc.ArchivePath, c.desc.DeployDir)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", c.desc.ArchivePath, err)
	}
	logging.Debug("Lifecycle", "Extracted %d entries", entries)

	scripts, err := makeScriptsExecutable(c.BinDir())
	if err != nil {
		return err
	}
	logging.Debug("Lifecycle", "Made %d scripts executable in %s", len(scripts), c.BinDir())

	if err := os.MkdirAll(c.WebappsDir(), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.WebappsDir(), err)
	}
	target := filepath.Join(c.WebappsDir(), filepath.Base(webApp))
	if err := copyFile(webApp, target); err != nil {
		return fmt.Errorf("failed to install web application %s: %w", webApp, err)
	}
	logging.Info("Lifecycle", "Installed %s", target)
	return nil
}

// StartupArgs returns the arguments passed to the startup script.
func (c *Controller) StartupArgs() []string {
	if c.desc.Debug {
		return []string{c.desc.DebugArg, "start"}
	}
	return []string{"start"}
}

// Start terminates stray server processes, runs the startup script and waits
// until the status endpoint on port answers 200.
//
// Stray-process termination is best effort and never fails Start. A readiness
// timeout returns an error satisfying errors.Is(err, readiness.ErrNotReady).
func (c *Controller) Start(ctx context.Context, port int) error {
	report := c.KillStrayProcesses(ctx)
	if len(report.Killed) > 0 {
		logging.Info("Lifecycle", "Killed %d stray server process(es): %v", len(report.Killed), report.Killed)
	}
	if report.Err != nil {
		logging.Warn("Lifecycle", "Stray process cleanup incomplete: %v", report.Err)
	}

	if err := c.runScript(ctx, c.desc.StartupScript, c.StartupArgs(), logging.LevelInfo); err != nil {
		return err
	}

	url := c.StatusURL(port)
	logging.Info("Lifecycle", "Waiting for %s", url)
	_, err := readiness.WaitForStatus(ctx, c.prober, url, readiness.Options{
		Interval: c.pollInterval,
		Timeout:  c.readyTimeout,
	})
	return err
}

// Stop runs the shutdown script with "stop", discarding its standard output.
//
// On exit code 0 it waits the settle delay so the server process can finish
// before a new deploy/start cycle. The server has stopped at that point, so a
// context cancelled during the delay only ends the wait early. A non-zero exit
// returns *ShutdownError immediately.
func (c *Controller) Stop(ctx context.Context) error {
	err := c.runScript(ctx, c.desc.ShutdownScript, []string{"stop"}, discardOutput)
	if err != nil {
		var scriptErr *ScriptError
		if errors.As(err, &scriptErr) {
			return &ShutdownError{ExitCode: scriptErr.ExitCode, Err: scriptErr}
		}
		return err
	}

	if c.settleDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		logging.Warn("Lifecycle", "Settle delay cut short after successful shutdown: %v", ctx.Err())
	case <-time.After(c.settleDelay):
	}
	return nil
}
