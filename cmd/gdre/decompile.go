package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gdretool/gdre-go/internal/keysource"
	"github.com/gdretool/gdre-go/pkg/bytecode"
	"github.com/gdretool/gdre-go/pkg/cipher"
	"github.com/spf13/cobra"
)

var decompileKeyHex string

func init() {
	cmd := &cobra.Command{
		Use:   "decompile <script.gdc|gde>",
		Short: "Decompile a standalone compiled script to source",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecompile,
	}
	cmd.Flags().StringVar(&decompileKeyHex, "key", "", "AES-256 decryption key as hex (overrides SCRIPT_AES256_ENCRYPTION_KEY)")
	rootCmd.AddCommand(cmd)
}

var encStreamMagic = []byte("GDEC")

func runDecompile(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	if bytes.HasPrefix(data, encStreamMagic) {
		key, err := keysource.Resolve(decompileKeyHex)
		if err != nil {
			return err
		}
		data, err = cipher.Unwrap(key, data)
		if err != nil {
			return err
		}
	}

	source, _, err := bytecode.Decompile(data)
	if err != nil {
		return err
	}

	fmt.Print(source)
	return nil
}
