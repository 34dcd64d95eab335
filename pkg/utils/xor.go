// Package utils collects small byte-level primitives shared across wire
// codecs that need more than what encoding/binary provides directly.
package utils

// XORByte returns a copy of data with every byte masked by key, the
// single-byte repeating XOR the bytecode identifier table uses to keep
// identifier strings out of a naive string scan of a compiled script
// (spec.md §6: "Identifier characters XOR-masked with byte 0xB6"). XOR is
// its own inverse, so the same call both obfuscates and deobfuscates.
func XORByte(data []byte, key byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}
