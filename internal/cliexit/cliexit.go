// Package cliexit maps the toolchain's error-kind sentinels to the CLI's
// exit code contract (spec.md §6: "Exit codes: 0 ok, 1 usage error, 2
// input error, 3 integrity error, 4 encryption error, 5 partial success,
// 6 cancelled").
package cliexit

import (
	"errors"

	"github.com/gdretool/gdre-go/pkg/gdreerrors"
)

const (
	OK              = 0
	UsageError      = 1
	InputError      = 2
	IntegrityError  = 3
	EncryptionError = 4
	PartialSuccess  = 5
	Cancelled       = 6
)

// ErrPartialSuccess marks an operation that completed with some failed
// tasks; FromError maps it to exit code 5. The extract and export commands
// signal partial success through main's exitOverride rather than returning
// this error, so cobra does not print it as a failure.
var ErrPartialSuccess = errors.New("completed with partial failures")

// FromError classifies err into one of the exit codes above. A nil error
// is OK; an unrecognized error defaults to InputError, since every fatal
// path in this toolchain originates from rejecting something about the
// input (a missing file, for instance). FromError never returns UsageError:
// cobra's own errors for a bad flag or a wrong argument count carry no
// sentinel, so they are classified as InputError too.
func FromError(err error) int {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrPartialSuccess):
		return PartialSuccess
	case errors.Is(err, gdreerrors.ErrCancelled):
		return Cancelled
	case errors.Is(err, gdreerrors.ErrUnauthorized):
		return EncryptionError
	case errors.Is(err, gdreerrors.ErrHashMismatch):
		return IntegrityError
	case errors.Is(err, gdreerrors.ErrCorruptHeader), errors.Is(err, gdreerrors.ErrUnsupportedVersion):
		return IntegrityError
	default:
		return InputError
	}
}
