package lifecycle

import (
	"fmt"
	"strings"
)

// ScriptError reports a control script that exited with a non-zero code.
type ScriptError struct {
	Script   string
	Args     []string
	ExitCode int
	Err      error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s %s exited with code %d", e.Script, strings.Join(e.Args, " "), e.ExitCode)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// ShutdownError reports a shutdown script that did not succeed. The server may
// still be running.
type ShutdownError struct {
	ExitCode int
	Err      error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown failed with exit code %d", e.ExitCode)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}
