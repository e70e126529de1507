package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"jaspiharness/internal/config"
	"jaspiharness/internal/lifecycle"
	"jaspiharness/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	runWebApp  string
	runPort    int
	runJPDA    bool
	runQuiet   bool
	runNoClean bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command> [args...]",
	Short: "Deploy and start the server, run a test command against it, stop it",
	Long: `Run a full cycle: clean the deploy directory, deploy, start the server and
wait until it is ready, run the given command, and stop the server.

The command runs with HTTP_PORT, HOSTNAME and CONTEXT_URI set so the
functional tests can find the server. The server is stopped whether or not
the command succeeds, and jaspi-harness exits with the command's exit code.

Examples:
  jaspi-harness run -- go test -tags integration ./tests/jaspi/...
  jaspi-harness run --port 18080 --jpda -- ./run-functional-tests.sh`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runWebApp, "webapp", "", "Web application package (overrides deployment.webAppPath)")
	runCmd.Flags().IntVarP(&runPort, "port", "p", 0, "HTTP port (overrides server.port)")
	runCmd.Flags().BoolVar(&runJPDA, "jpda", false, "Start the server with its debug argument")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Suppress the progress spinner")
	runCmd.Flags().BoolVar(&runNoClean, "no-clean", false, "Keep the existing deploy directory")
}

func runRun(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runWebApp != "" {
		cfg.Deployment.WebAppPath = runWebApp
	}
	cfg = applyStartFlags(cfg, runPort, runJPDA)
	if err := cfg.ValidateForDeploy(); err != nil {
		return err
	}

	ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	if !runNoClean {
		if err := ctrl.CleanDeployDir(); err != nil {
			return err
		}
	}
	if err := ctrl.Deploy(ctx, cfg.Deployment.WebAppPath); err != nil {
		return err
	}

	// The server may be partly up even when Start fails, so stop runs from here on.
	defer func() {
		stopErr := stopServer(ctrl)
		if err == nil {
			err = stopErr
		}
	}()

	p := startProgress(cmd.ErrOrStderr(), runQuiet, fmt.Sprintf("Waiting for %s...", ctrl.StatusURL(cfg.Server.Port)))
	err = ctrl.Start(ctx, cfg.Server.Port)
	p.done(err, fmt.Sprintf("%s is ready", cfg.BaseURL()))
	if err != nil {
		return err
	}

	return runTestCommand(ctx, cmd, cfg, args)
}

func runTestCommand(ctx context.Context, cmd *cobra.Command, cfg config.HarnessConfig, args []string) error {
	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Env = append(os.Environ(), cfg.Environment()...)
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()

	logging.Info("Run", "Running %v against %s", args, cfg.BaseURL())
	err := c.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logging.Warn("Run", "Command exited with code %d", exitErr.ExitCode())
		code := exitErr.ExitCode()
		if code < 0 {
			code = ExitCodeError
		}
		return &commandExitError{code: code}
	}
	return err
}

// stopServer stops the server with a context that survives the interrupt
// which may have ended the run.
func stopServer(ctrl *lifecycle.Controller) error {
	if err := ctrl.Stop(context.Background()); err != nil {
		logging.Error("Run", err, "Failed to stop server")
		return err
	}
	return nil
}
