// Command radonc runs RADON scripts from the command line: exec runs a
// script over a literal seed value, disasm prints the decoded call list of
// a script without running it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{Use: "radonc", Short: "RADON script engine CLI"}
	rootCmd.PersistentPreRunE = initMiddleware
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(disasmCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
