package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"jaspiharness/internal/jaspi"

	"github.com/spf13/cobra"
)

// configureCmd represents the configure command
var configureCmd = &cobra.Command{
	Use:   "configure <runtime-config.json|->",
	Short: "Replace the JASPI runtime configuration of the running test application",
	Long: `PUT a runtime configuration document to the test application's
/configuration endpoint and print the configuration it accepted.

The document has the form:
  {"serverAuthContext":{"sessionModule":{"className":"..."},"authModules":[{"className":"..."}]}}

Use "-" to read the document from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func readDocument(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(path)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	body, err := readDocument(cmd.InOrStdin(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read runtime configuration: %w", err)
	}
	if !json.Valid(body) {
		return fmt.Errorf("%s is not valid JSON", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := jaspi.NewHarness(newRESTClient(cfg)).ConfigureRaw(cmd.Context(), body)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
