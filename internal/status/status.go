// Package status declares the error taxonomy shared by every component. The
// sentinels are built once at package load; callers classify failures with
// errors.Is and add context with errors.Wrap.
package status

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfRange reports a numeric input outside its allowed bounds.
	ErrOutOfRange = errors.New("value out of allowed range")

	// ErrOutOfMemory reports a failed buffer allocation.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrIOError reports a failed device read or write.
	ErrIOError = errors.New("device I/O error")

	// ErrBadMagic reports a magic string or identifying header mismatch.
	ErrBadMagic = errors.New("bad magic")

	// ErrUnsupportedVersion reports a version tuple not in the release table.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrBadChecksum reports a CRC mismatch on a metadata block.
	ErrBadChecksum = errors.New("checksum mismatch")

	// ErrIncorrectComponent reports a component ID mismatch in a header.
	ErrIncorrectComponent = errors.New("incorrect component")

	// ErrBadLength reports a declared size that disagrees with the buffer.
	ErrBadLength = errors.New("bad length")

	// ErrNotReadOnly reports a force-rebuild attempted on a healthy volume.
	ErrNotReadOnly = errors.New("volume is not in read-only mode")

	// ErrCorrupt reports a violated derived invariant in loaded metadata.
	ErrCorrupt = errors.New("corrupt metadata")
)
