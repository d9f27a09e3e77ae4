// Command gfdbsql compiles statement fixtures to T-SQL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}
	// ExitErrors were already reported by the command's formatter.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
