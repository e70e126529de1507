package cmd

import (
	"fmt"
	"io"

	"jaspiharness/internal/lifecycle"
	pkgstrings "jaspiharness/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	psKill    bool
	psUsePS   bool
	psVerbose bool
)

// psCmd represents the ps command
var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List (and optionally kill) running server processes",
	Long: `List processes whose command line contains server.processSignature.
These are the processes start would kill before launching the server.

Examples:
  jaspi-harness ps
  jaspi-harness ps --kill`,
	Args: cobra.NoArgs,
	RunE: runPS,
}

func init() {
	rootCmd.AddCommand(psCmd)

	psCmd.Flags().BoolVar(&psKill, "kill", false, "Kill the listed processes")
	psCmd.Flags().BoolVar(&psUsePS, "use-ps", false, "Read the process table through 'ps aux' instead of natively")
	psCmd.Flags().BoolVarP(&psVerbose, "verbose", "v", false, "Show full command lines")
}

func runPS(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var extra []lifecycle.Option
	if psUsePS {
		extra = append(extra, lifecycle.WithProcessFinder(lifecycle.PSProcessTable{}))
	}
	ctrl, err := newController(cfg, extra...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if psKill {
		report := ctrl.KillStrayProcesses(cmd.Context())
		renderProcesses(out, report.Found, append([]int{}, report.Killed...), psVerbose)
		return report.Err
	}

	procs, err := ctrl.StrayProcesses(cmd.Context())
	if err != nil {
		return err
	}
	renderProcesses(out, procs, nil, psVerbose)
	return nil
}

func renderProcesses(out io.Writer, procs []lifecycle.Process, killed []int, verbose bool) {
	if len(procs) == 0 {
		printEmpty(out, "No server processes found")
		return
	}

	killedSet := make(map[int]bool, len(killed))
	for _, pid := range killed {
		killedSet[pid] = true
	}

	headers := []string{"PID", "COMMAND"}
	if killed != nil {
		headers = append(headers, "KILLED")
	}
	t := newTable(out, headers...)
	for _, p := range procs {
		command := p.Command
		if !verbose {
			command = pkgstrings.Truncate(command, pkgstrings.DefaultCellWidth)
		}
		row := []interface{}{p.PID, command}
		if killed != nil {
			if killedSet[p.PID] {
				row = append(row, text.FgGreen.Sprint("yes"))
			} else {
				row = append(row, text.FgRed.Sprint("no"))
			}
		}
		t.AppendRow(row)
	}
	t.AppendFooter([]interface{}{"Total", fmt.Sprintf("%d", len(procs))})
	t.Render()
}
