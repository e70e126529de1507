// Package logging provides the structured logger used across jaspi-harness.
//
// It is a thin front end over Go's slog package. Every entry carries a subsystem
// name so output from the lifecycle controller, the readiness poll and the REST
// client can be told apart when a test run fails.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Lifecycle", "Deploying %s into %s", archive, deployDir)
//	logging.Debug("Readiness", "Status probe failed: %v", err)
//	logging.Error("Lifecycle", err, "Shutdown script failed")
//
// Subsystems in use:
//
//   - Bootstrap: CLI start-up
//   - Config: configuration loading and validation
//   - Lifecycle: deploy, start, stop and stray-process cleanup
//   - Readiness: status endpoint polling
//   - RESTClient: outgoing HTTP requests
//   - JASPI: JASPI test-server helpers
//
// Until InitForCLI is called nothing is written; this keeps library code quiet
// inside `go test` unless a test opts in.
package logging
