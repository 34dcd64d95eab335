package main

import (
	"os"
	"strings"

	"github.com/gdretool/gdre-go/pkg/bytecode"
	"github.com/spf13/cobra"
)

const defaultCompileRevision = "4.x-default"

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "compile <script.gd>",
		Short: "Compile a GDScript source file to bytecode",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	})
}

func runCompile(cmd *cobra.Command, args []string) error {
	srcPath := args[0]
	source, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}

	revision, err := bytecode.ByName(defaultCompileRevision)
	if err != nil {
		return err
	}

	ts, err := bytecode.Compile(string(source), revision)
	if err != nil {
		return err
	}

	encoded, err := bytecode.Encode(ts, true)
	if err != nil {
		return err
	}

	outPath := strings.TrimSuffix(srcPath, ".gd") + ".gdc"
	return os.WriteFile(outPath, encoded, 0o644)
}
