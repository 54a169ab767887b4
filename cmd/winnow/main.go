// cmd/winnow/main.go
package main

import (
	cmd "github.com/mwiater/winnow/internal/cli"
)

// Populated by the linker at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = cmd.SetVersionInfo
	executeCmd     = cmd.Execute
)

// main starts the winnow CLI application by delegating to the cobra
// root command defined in the winnow package. It does not take any
// arguments and does not return a value.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
