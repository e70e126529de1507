package cmd

import (
	"fmt"

	"jaspiharness/internal/config"

	"github.com/spf13/cobra"
)

var (
	startPort  int
	startJPDA  bool
	startQuiet bool
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the deployed server and wait until it is ready",
	Long: `Start the deployed server through its startup script and wait until the
application's status endpoint answers 200.

Any process whose command line contains server.processSignature is killed
first, so a server left over from an earlier run cannot hold the port.

Exits with code 2 when the server does not become ready within
readiness.timeout.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().IntVarP(&startPort, "port", "p", 0, "HTTP port to poll (overrides server.port)")
	startCmd.Flags().BoolVar(&startJPDA, "jpda", false, "Start the server with its debug argument")
	startCmd.Flags().BoolVarP(&startQuiet, "quiet", "q", false, "Suppress the progress spinner")
}

// applyStartFlags overlays the start flags on cfg.
func applyStartFlags(cfg config.HarnessConfig, port int, jpda bool) config.HarnessConfig {
	if port != 0 {
		cfg.Server.Port = port
	}
	if jpda {
		cfg.Deployment.Debug = "true"
	}
	return cfg
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = applyStartFlags(cfg, startPort, startJPDA)

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	p := startProgress(cmd.ErrOrStderr(), startQuiet, fmt.Sprintf("Waiting for %s...", ctrl.StatusURL(cfg.Server.Port)))
	err = ctrl.Start(cmd.Context(), cfg.Server.Port)
	p.done(err, fmt.Sprintf("%s is ready", cfg.BaseURL()))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfg.BaseURL())
	return nil
}
