package lifecycle

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// NativeProcessTable finds processes by reading the OS process table directly.
type NativeProcessTable struct{}

// NewNativeProcessTable returns the default ProcessFinder.
func NewNativeProcessTable() NativeProcessTable { return NativeProcessTable{} }

// FindByCommandSubstring implements ProcessFinder. Processes whose command line
// cannot be read (exited meanwhile, or not ours to inspect) are skipped.
func (NativeProcessTable) FindByCommandSubstring(ctx context.Context, substring string) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read process table: %w", err)
	}

	var matches []Process
	for _, p := range procs {
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil || cmdline == "" {
			continue
		}
		if strings.Contains(cmdline, substring) {
			matches = append(matches, Process{PID: int(p.Pid), Command: cmdline})
		}
	}
	return matches, nil
}

// PSProcessTable finds processes through a ps listing whose second column is
// the PID, such as "ps aux".
type PSProcessTable struct {
	// Command defaults to ps aux.
	Command []string
}

// FindByCommandSubstring implements ProcessFinder.
func (t PSProcessTable) FindByCommandSubstring(ctx context.Context, substring string) ([]Process, error) {
	argv := t.Command
	if len(argv) == 0 {
		argv = []string{"ps", "aux"}
	}

	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", strings.Join(argv, " "), err)
	}
	return parsePSListing(out, substring), nil
}

// parsePSListing returns the lines of a ps listing containing substring. The
// header line and lines without a numeric second column are ignored.
func parsePSListing(out []byte, substring string) []Process {
	var matches []Process

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, substring) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		command := strings.TrimSpace(line)
		if len(fields) > 10 {
			command = strings.Join(fields[10:], " ")
		}
		matches = append(matches, Process{PID: pid, Command: command})
	}
	return matches
}
