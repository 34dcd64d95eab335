package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gdretool/gdre-go/pkg/resource"
	"github.com/gdretool/gdre-go/pkg/variant"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "convert-bin2txt <res>",
		Short: "Convert a binary resource file to its text form",
		Args:  cobra.ExactArgs(1),
		RunE:  runBin2Txt,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "convert-txt2bin <res>",
		Short: "Convert a text resource file to its binary form",
		Args:  cobra.ExactArgs(1),
		RunE:  runTxt2Bin,
	})
}

// textExtensionFor maps a binary resource's extension to its text
// counterpart, per the engine's fixed pairing (spec.md §6: "Both must
// round-trip").
var textExtensionFor = map[string]string{
	".res": ".tres",
	".scn": ".tscn",
}

var binExtensionFor = map[string]string{
	".tres": ".res",
	".tscn": ".scn",
}

func swapExtension(path string, table map[string]string, fallback string) string {
	ext := strings.ToLower(filepath.Ext(path))
	newExt, ok := table[ext]
	if !ok {
		newExt = fallback
	}
	return strings.TrimSuffix(path, ext) + newExt
}

func runBin2Txt(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	r, err := resource.Decode(data)
	if err != nil {
		return err
	}
	text := resource.ToText(r, variant.Engine4, resource.FormatVersionFor(4, 0))
	outPath := swapExtension(inPath, textExtensionFor, ".tres")
	return os.WriteFile(outPath, []byte(text), 0o644)
}

func runTxt2Bin(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	r, err := resource.ParseText(string(data))
	if err != nil {
		return err
	}
	encoded := resource.Encode(r, variant.Engine4)
	outPath := swapExtension(inPath, binExtensionFor, ".res")
	return os.WriteFile(outPath, encoded, 0o644)
}
