// Command notesql runs schema-checked reads and updates against the notes
// and users tables.
package main

import (
	"os"

	"github.com/roach88/notesql/internal/cli"
)

// Version is set by the build.
var Version = "dev"

func main() {
	cmd := cli.NewRootCommand()
	cmd.Version = Version
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
