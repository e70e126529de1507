package cmd

import (
	"fmt"
	"io"
	"sort"

	"jaspiharness/internal/jaspi"
	pkgstrings "jaspiharness/pkg/strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var auditOutput string

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Read and clear the test application's audit records",
	Long: `Read the audit records the JASPI runtime wrote since the last read, and
clear them.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "table", "Output format (table, yaml)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	if auditOutput != "table" && auditOutput != "yaml" {
		return fmt.Errorf("unknown output format %q", auditOutput)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := jaspi.NewHarness(newRESTClient(cfg)).ReadAndClearAuditRecords(cmd.Context())
	if err != nil {
		return err
	}

	if auditOutput == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(records)
	}
	renderAuditRecords(cmd.OutOrStdout(), records)
	return nil
}

func renderAuditRecords(out io.Writer, records []jaspi.AuditRecord) {
	if len(records) == 0 {
		printEmpty(out, "No audit records")
		return
	}

	t := newTable(out, "#", "OUTCOME", "DETAILS")
	for i, r := range records {
		keys := make([]string, 0, len(r))
		for k := range r {
			if k != "outcome" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		details := ""
		for _, k := range keys {
			if details != "" {
				details += " "
			}
			details += fmt.Sprintf("%s=%v", k, r[k])
		}
		t.AppendRow([]interface{}{i + 1, r.Outcome(), pkgstrings.Truncate(details, pkgstrings.DefaultCellWidth)})
	}
	t.Render()
}
