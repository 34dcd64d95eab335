// Package gdreerrors declares the stable error-kind sentinels shared by every
// layer of the toolchain. Decoders decorate these with context (offset,
// field, path) via fmt.Errorf's %w rather than inventing new error types.
package gdreerrors

import "errors"

var (
	// ErrTruncated means a read ran past the end of the available bytes.
	ErrTruncated = errors.New("TRUNCATED: read past end of input")
	// ErrCorruptHeader means a magic value or header field was not recognized.
	ErrCorruptHeader = errors.New("CORRUPT_HEADER: bad magic or malformed header")
	// ErrUnsupportedVersion means the container/format version exceeds the
	// implementation's declared maximum.
	ErrUnsupportedVersion = errors.New("UNSUPPORTED_VERSION: newer than max supported")
	// ErrUnauthorized means a decryption key was missing or did not match.
	ErrUnauthorized = errors.New("UNAUTHORIZED: missing or wrong key")
	// ErrHashMismatch means an integrity digest did not match its payload.
	ErrHashMismatch = errors.New("HASH_MISMATCH: integrity check failed")
	// ErrUnavailable means the format or sub-format is not implemented.
	ErrUnavailable = errors.New("UNAVAILABLE: format unimplemented")
	// ErrUnimplementedRevision means a bytecode revision fingerprint did not
	// match any known revision in the registry.
	ErrUnimplementedRevision = errors.New("UNIMPLEMENTED_REVISION: bytecode revision unknown")
	// ErrCancelled means a cooperative cancellation latch was observed.
	ErrCancelled = errors.New("CANCELLED")
	// ErrDependencyMissing means resolving an external/sub-resource reference failed.
	ErrDependencyMissing = errors.New("DEPENDENCY_MISSING: could not resolve reference")
)

// LossType classifies a transformation's fidelity, per spec GLOSSARY.
type LossType int

const (
	// LossNone means the transformation is a byte-exact round trip.
	LossNone LossType = iota
	// LossStored means the *source* asset was already lossy-compressed;
	// re-exporting it cannot recover the original bits.
	LossStored
	// LossImported means the exporter itself performs a lossy conversion.
	LossImported
	// LossBoth combines LossStored and LossImported.
	LossBoth
)

func (l LossType) String() string {
	switch l {
	case LossNone:
		return "lossless"
	case LossStored:
		return "stored-lossy"
	case LossImported:
		return "imported-lossy"
	case LossBoth:
		return "stored-and-imported-lossy"
	default:
		return "unknown"
	}
}
