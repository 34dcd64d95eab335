// Package keysource resolves the AES-256 decryption key the cipher layer
// needs from the places spec.md §6 names it can come from: the
// SCRIPT_AES256_ENCRYPTION_KEY environment variable, or an explicit
// command-line override.
package keysource

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gdretool/gdre-go/pkg/cipher"
)

const envVar = "SCRIPT_AES256_ENCRYPTION_KEY"

// Resolve decodes flagHex if non-empty, otherwise falls back to the
// SCRIPT_AES256_ENCRYPTION_KEY environment variable. Returns a nil key
// (not an error) when neither is set, since most packages are unencrypted.
func Resolve(flagHex string) ([]byte, error) {
	hexKey := flagHex
	if hexKey == "" {
		hexKey = os.Getenv(envVar)
	}
	if hexKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(key) != cipher.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", cipher.KeySize, len(key))
	}
	return key, nil
}
