package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the deploy directory",
	Long: `Remove the deploy directory and everything in it, including any previously
extracted server distribution. A missing directory is not an error.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}

	if err := ctrl.CleanDeployDir(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleaned %s\n", ctrl.Descriptor().DeployDir)
	return nil
}
