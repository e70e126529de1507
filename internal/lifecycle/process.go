package lifecycle

import (
	"context"
	"fmt"
	"os"

	"jaspiharness/pkg/logging"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Process is a running process whose command line matched a search.
type Process struct {
	PID     int
	Command string
}

// ProcessFinder lists processes whose full command line contains a substring.
type ProcessFinder interface {
	FindByCommandSubstring(ctx context.Context, substring string) ([]Process, error)
}

// ProcessTerminator forcibly terminates a process.
type ProcessTerminator interface {
	Kill(pid int) error
}

// KillReport is the outcome of a stray-process pass.
type KillReport struct {
	// Found are the matching processes, excluding the harness itself.
	Found []Process
	// Killed are the PIDs that were terminated.
	Killed []int
	// Err aggregates lookup and per-process kill failures, nil when none.
	Err error
}

// StrayProcesses lists running processes that look like the server software.
func (c *Controller) StrayProcesses(ctx context.Context) ([]Process, error) {
	procs, err := c.finder.FindByCommandSubstring(ctx, c.desc.ProcessSignature)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes matching %q: %w", c.desc.ProcessSignature, err)
	}

	self := os.Getpid()
	result := make([]Process, 0, len(procs))
	for _, p := range procs {
		if p.PID == self {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// KillStrayProcesses forcibly terminates every process that looks like the
// server software. It never fails: lookup and kill errors are logged and
// reported, and the pass continues with the next candidate.
func (c *Controller) KillStrayProcesses(ctx context.Context) KillReport {
	var report KillReport

	procs, err := c.StrayProcesses(ctx)
	if err != nil {
		logging.Warn("Lifecycle", "Could not check for stray server processes: %v", err)
		report.Err = err
		return report
	}
	report.Found = procs

	var errs []error
	for _, p := range procs {
		if err := c.terminator.Kill(p.PID); err != nil {
			logging.Debug("Lifecycle", "Could not kill PID %d: %v", p.PID, err)
			errs = append(errs, fmt.Errorf("pid %d: %w", p.PID, err))
			continue
		}
		logging.Debug("Lifecycle", "Killed stray server process PID %d", p.PID)
		report.Killed = append(report.Killed, p.PID)
	}
	report.Err = utilerrors.NewAggregate(errs)
	return report
}
