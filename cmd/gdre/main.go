// Command gdre is the thin external CLI over the toolchain's components
// (spec.md §6): package extraction, full project export, standalone
// script decompilation/compilation, and resource text/binary conversion.
package main

import (
	"fmt"
	"os"

	"github.com/gdretool/gdre-go/internal/cliexit"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	logLevel    string
	versionFlag bool
	rootCmd     = &cobra.Command{
		Use:   "gdre",
		Short: "Recover source projects from shipped engine package files",
	}

	// exitOverride lets a command signal a non-error-but-non-zero exit code
	// (partial success, cancelled) without cobra printing it as a fatal
	// "Error: ..." line the way a non-nil RunE return does.
	exitOverride = cliexit.OK
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&versionFlag, "version", "V", false, "show version information")
	rootCmd.SilenceUsage = true
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("gdre %s\n", version)
		os.Exit(cliexit.OK)
	}

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliexit.FromError(err))
	}
	os.Exit(exitOverride)
}
