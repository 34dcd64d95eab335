package main

import (
	"fmt"
	"os"

	"github.com/gdretool/gdre-go/internal/cliexit"
	"github.com/gdretool/gdre-go/internal/keysource"
	"github.com/gdretool/gdre-go/internal/summary"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/logging"
	"github.com/gdretool/gdre-go/pkg/pck"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "extract <pck> <out>",
		Short: "Extract every entry of a package container to a directory",
		Args:  cobra.ExactArgs(2),
		RunE:  runExtract,
	})
}

func runExtract(cmd *cobra.Command, args []string) error {
	pckPath, outDir := args[0], args[1]
	logger := logging.NewLogger("gdre-extract", logging.GetLogLevel(), os.Stderr)
	if logLevel != "" {
		logger = logging.NewLogger("gdre-extract", logLevel, os.Stderr)
	}

	key, err := keysource.Resolve("")
	if err != nil {
		return err
	}

	p, err := pck.OpenWithLogger(pckPath, key, logger)
	if err != nil {
		return err
	}

	results := p.ExtractAll(outDir)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Warn("failed to extract entry", "path", r.Entry.Path, "error", r.Err)
		}
	}

	if p.StickyEncryptionError() {
		return gdreerrors.ErrUnauthorized
	}

	summary.Print(fmt.Sprintf("extracted %d/%d entries to %s", len(results)-failed, len(results), outDir), failed, len(results))
	if failed > 0 {
		exitOverride = cliexit.PartialSuccess
	}
	return nil
}
