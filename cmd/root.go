package cmd

import (
	"errors"
	"fmt"
	"os"

	"jaspiharness/internal/config"
	"jaspiharness/internal/lifecycle"
	"jaspiharness/internal/readiness"
	"jaspiharness/internal/restclient"
	"jaspiharness/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeNotReady indicates the server did not become ready in time.
	ExitCodeNotReady = 2
	// ExitCodeShutdownFailed indicates the shutdown script reported failure.
	ExitCodeShutdownFailed = 3
)

var (
	configPath string
	debugLog   bool
	logLevel   string
	useEnv     bool
)

// rootCmd represents the base command for the harness.
var rootCmd = &cobra.Command{
	Use:   "jaspi-harness",
	Short: "Deploy, start and stop a local server for JASPI functional tests",
	Long: `jaspi-harness prepares a locally run application server for the JASPI
functional tests: it unpacks the server distribution, installs the test web
application, starts the server and waits until the application reports ready,
and shuts it down again afterwards.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		if debugLog {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion records the harness version shown by --version and "version".
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the harness version.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with the code mapped from its error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "jaspi-harness version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// commandExitError carries the exit code of a command run by "run".
type commandExitError struct {
	code int
}

func (e *commandExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.code)
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var cmdErr *commandExitError
	if errors.As(err, &cmdErr) {
		return cmdErr.code
	}

	if errors.Is(err, readiness.ErrNotReady) {
		return ExitCodeNotReady
	}

	var shutdownErr *lifecycle.ShutdownError
	if errors.As(err, &shutdownErr) {
		return ExitCodeShutdownFailed
	}

	return ExitCodeError
}

// loadConfig loads and validates the harness configuration for a command.
func loadConfig() (config.HarnessConfig, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.HarnessConfig{}, err
	}
	if useEnv {
		if cfg, err = config.ApplyEnvironment(cfg, os.LookupEnv); err != nil {
			return config.HarnessConfig{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.HarnessConfig{}, err
	}
	return cfg, nil
}

// newRESTClient creates a client for the deployed application.
func newRESTClient(cfg config.HarnessConfig) *restclient.Client {
	return restclient.New(cfg.BaseURL(), clientOptions(cfg)...)
}

func clientOptions(cfg config.HarnessConfig) []restclient.Option {
	return []restclient.Option{
		restclient.WithTimeout(cfg.Client.Timeout),
		restclient.WithUserAgent(cfg.Client.UserAgent),
	}
}

// newController creates a lifecycle controller for cfg.
func newController(cfg config.HarnessConfig, extra ...lifecycle.Option) (*lifecycle.Controller, error) {
	opts := lifecycle.OptionsFromConfig(cfg)
	opts = append(opts, lifecycle.WithStatusProber(readiness.NewHTTPProber(clientOptions(cfg)...)))
	opts = append(opts, extra...)
	return lifecycle.NewController(lifecycle.DescriptorFromConfig(cfg), opts...)
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "jaspi-harness.yaml", "Path to the harness configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&useEnv, "env", false, "Override server location from HTTP_PORT, HOSTNAME and CONTEXT_URI")
}
