package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdretool/gdre-go/internal/cliexit"
	"github.com/gdretool/gdre-go/internal/exportregistry"
	"github.com/gdretool/gdre-go/internal/keysource"
	"github.com/gdretool/gdre-go/internal/summary"
	"github.com/gdretool/gdre-go/internal/tokenize"
	"github.com/gdretool/gdre-go/internal/workenv"
	"github.com/gdretool/gdre-go/pkg/exporters/translation"
	"github.com/gdretool/gdre-go/pkg/gdreerrors"
	"github.com/gdretool/gdre-go/pkg/logging"
	"github.com/gdretool/gdre-go/pkg/orchestrator"
	"github.com/gdretool/gdre-go/pkg/pck"
	"github.com/gdretool/gdre-go/pkg/project"
	"github.com/spf13/cobra"
)

var exportFilters []string
var bundleTranslations bool

func init() {
	cmd := &cobra.Command{
		Use:   "export <pck> <out>",
		Short: "Recover a full source project from a package container",
		Args:  cobra.ExactArgs(2),
		RunE:  runExport,
	}
	cmd.Flags().StringArrayVar(&exportFilters, "filter", nil, "glob restricting which entries to export (repeatable)")
	cmd.Flags().BoolVar(&bundleTranslations, "bundle-translations", false, "archive recovered translation CSVs into translations.tar.bz2")
	rootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	pckPath, outDir := args[0], args[1]
	level := logging.GetLogLevel()
	if logLevel != "" {
		level = logLevel
	}
	logger := logging.NewLogger("gdre-export", level, os.Stderr)

	key, err := keysource.Resolve("")
	if err != nil {
		return err
	}

	p, err := pck.OpenWithLogger(pckPath, key, logger)
	if err != nil {
		return err
	}

	if err := workenv.Prepare(outDir, workenv.DefaultLayout); err != nil {
		return err
	}

	stagingDir, err := os.MkdirTemp("", "gdre-staging-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stagingDir)

	wanted := map[string]bool{}
	for _, e := range p.Entries {
		if rel, ok := pck.SanitizePath(e.Path); ok && matchesFilters(rel, exportFilters) {
			wanted[e.Path] = true
		}
	}

	staged := map[string]string{}
	for _, r := range p.ExtractAll(stagingDir) {
		if !wanted[r.Entry.Path] {
			continue
		}
		if r.Err != nil {
			logger.Warn("failed to stage entry", "path", r.Entry.Path, "error", r.Err)
			continue
		}
		staged[r.Entry.Path] = r.Destination
	}

	if p.StickyEncryptionError() {
		return gdreerrors.ErrUnauthorized
	}

	uids := project.NewCache()
	registry, _ := exportregistry.New(logger, uids, filepath.Dir(pckPath), nil)

	tokens := tokenize.BuildTokens(staged)

	orch := orchestrator.New(logger, registry, uids, nil)
	report, err := orch.Export(context.Background(), outDir, tokens)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range report.Reports {
		if r.Err != nil {
			failed++
			logger.Warn("export failed", "source", r.Source, "error", r.Err)
		}
	}

	summary.Print(fmt.Sprintf("exported %d resources (%d failed), %d unsupported types",
		len(report.Reports)-failed, failed, len(report.UnsupportedType)), failed, len(report.Reports))

	if bundleTranslations {
		archivePath, err := translation.BundleCSV(outDir)
		if err != nil {
			logger.Warn("failed to bundle translation CSVs", "error", err)
		} else if archivePath != "" {
			fmt.Printf("bundled translation tables into %s\n", archivePath)
		}
	}

	if report.Cancelled {
		return gdreerrors.ErrCancelled
	}
	if failed > 0 {
		exitOverride = cliexit.PartialSuccess
	}
	return nil
}

func matchesFilters(relPath string, globs []string) bool {
	if len(globs) == 0 {
		return true
	}
	for _, g := range globs {
		if ok, _ := filepath.Match(g, relPath); ok {
			return true
		}
	}
	return false
}
