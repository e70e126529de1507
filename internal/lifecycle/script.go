package lifecycle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"jaspiharness/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// discardOutput drops a stream instead of logging it.
const discardOutput logging.LogLevel = -1

// scriptWaitDelay bounds how long a finished script may hold its output open.
// Control scripts usually background the server, which can inherit the pipes.
const scriptWaitDelay = 2 * time.Second

// runScript runs bin/<script> with args from the distribution directory and
// waits for it. Standard output is forwarded to the log at stdoutLevel,
// standard error at warn level. A non-zero exit returns *ScriptError.
func (c *Controller) runScript(ctx context.Context, script string, args []string, stdoutLevel logging.LogLevel) error {
	path := filepath.Join(c.BinDir(), script)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("control script %s: %w", path, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = c.DistributionDir()
	cmd.WaitDelay = scriptWaitDelay
	configureProcAttr(cmd)

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	var g errgroup.Group
	g.Go(func() error { return forwardLines(stdoutR, script, stdoutLevel) })
	g.Go(func() error { return forwardLines(stderrR, script, logging.LevelWarn) })

	logging.Info("Lifecycle", "Running %s %s", script, strings.Join(args, " "))
	runErr := cmd.Run()

	stdoutW.Close()
	stderrW.Close()
	if err := g.Wait(); err != nil {
		logging.Debug("Lifecycle", "Output of %s truncated: %v", script, err)
	}

	if runErr == nil || errors.Is(runErr, exec.ErrWaitDelay) {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s interrupted: %w", script, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return &ScriptError{Script: script, Args: args, ExitCode: exitErr.ExitCode(), Err: runErr}
	}
	return fmt.Errorf("failed to run %s: %w", script, runErr)
}

// forwardLines logs every line read from r. It always drains r, so the writer
// never blocks.
func forwardLines(r io.Reader, script string, level logging.LogLevel) error {
	if level == discardOutput {
		_, err := io.Copy(io.Discard, r)
		return err
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch level {
		case logging.LevelDebug:
			logging.Debug("Lifecycle", "[%s] %s", script, line)
		case logging.LevelWarn:
			logging.Warn("Lifecycle", "[%s] %s", script, line)
		default:
			logging.Info("Lifecycle", "[%s] %s", script, line)
		}
	}
	err := scanner.Err()
	io.Copy(io.Discard, r) //nolint:errcheck
	return err
}
