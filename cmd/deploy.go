package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deployWebApp string
	deployClean  bool
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Unpack the server distribution and install the web application",
	Long: `Unpack the server distribution archive into the deploy directory, make
the bin/*.sh control scripts executable and copy the web application
package into the server's webapps directory.

Examples:
  jaspi-harness deploy
  jaspi-harness deploy --clean --webapp target/jaspi-test-server.war`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVar(&deployWebApp, "webapp", "", "Web application package (overrides deployment.webAppPath)")
	deployCmd.Flags().BoolVar(&deployClean, "clean", false, "Remove the deploy directory first")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if deployWebApp != "" {
		cfg.Deployment.WebAppPath = deployWebApp
	}
	if err := cfg.ValidateForDeploy(); err != nil {
		return err
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	if deployClean {
		if err := ctrl.CleanDeployDir(); err != nil {
			return err
		}
	}
	if err := ctrl.Deploy(cmd.Context(), cfg.Deployment.WebAppPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deployed %s to %s\n", ctrl.DistributionName(), ctrl.DistributionDir())
	return nil
}
