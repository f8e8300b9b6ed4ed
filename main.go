package main

import (
	"os"

	"github.com/strata-config/strata/cmd"
	errUtils "github.com/strata-config/strata/errors"
)

func main() {
	errUtils.OsExit(run())
}

// run executes the CLI and returns the process exit code. The separation
// from main allows deferred cleanup to run before os.Exit.
func run() int {
	if err := cmd.Execute(); err != nil {
		os.Stderr.WriteString(errUtils.Format(err) + "\n")
		return errUtils.GetExitCode(err)
	}
	return 0
}
