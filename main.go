// Command jaspi-harness deploys a servlet container with the JASPI test
// application, drives its lifecycle and runs integration tests against it.
package main

import (
	"runtime/debug"

	"jaspiharness/cmd"
)

// version is stamped at release time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd.SetVersion(resolveVersion(version, debug.ReadBuildInfo))
	cmd.Execute()
}

// resolveVersion falls back to the module version recorded by "go install"
// when the binary was built without a stamped version.
func resolveVersion(stamped string, buildInfo func() (*debug.BuildInfo, bool)) string {
	if stamped != "dev" {
		return stamped
	}
	info, ok := buildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return stamped
	}
	return info.Main.Version
}
