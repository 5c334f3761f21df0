package codec

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// VersionNumber is the two-part version of an on-disk structure. A format
// change that needs no upgrade step bumps the minor version; an incompatible
// change bumps the major version and resets the minor to zero.
type VersionNumber struct {
	Major uint32
	Minor uint32
}

// Header prefixes every versioned structure on disk: the component it
// belongs to, the format version, and the size of the data that follows.
type Header struct {
	ID      types.ComponentID
	Version VersionNumber
	Size    uint32
}

// EncodedHeaderSize is the on-disk size of a Header.
const EncodedHeaderSize = 16

// Encode writes the header to w.
func (h Header) Encode(w *Writer) {
	w.PutUint32(uint32(h.ID))
	w.PutUint32(h.Version.Major)
	w.PutUint32(h.Version.Minor)
	w.PutUint32(h.Size)
}

// DecodeHeader reads a header from r.
func DecodeHeader(r *Reader) Header {
	return Header{
		ID: types.ComponentID(r.Uint32()),
		Version: VersionNumber{
			Major: r.Uint32(),
			Minor: r.Uint32(),
		},
		Size: r.Uint32(),
	}
}

// ValidateVersion checks an actual version against the expected one. The
// major version must match exactly; a minor version newer than the expected
// one is unknown to this code and rejected as well.
func ValidateVersion(expected, actual VersionNumber, componentName string) error {
	if expected.Major != actual.Major || actual.Minor > expected.Minor {
		return errors.Wrapf(status.ErrUnsupportedVersion,
			"%s version %d.%d is not supported (expected %d.%d)",
			componentName, actual.Major, actual.Minor,
			expected.Major, expected.Minor)
	}
	return nil
}

// ValidateHeader checks an actual header against expectations. When
// exactSize is false the actual size may exceed the expected size, which
// lets older readers skip trailing fields added by a newer minor version.
func ValidateHeader(expected, actual Header, exactSize bool, componentName string) error {
	if expected.ID != actual.ID {
		return errors.Wrapf(status.ErrIncorrectComponent,
			"%s component ID %d does not match expected %d",
			componentName, actual.ID, expected.ID)
	}
	if err := ValidateVersion(expected.Version, actual.Version, componentName); err != nil {
		return err
	}
	if (exactSize && expected.Size != actual.Size) ||
		(!exactSize && actual.Size < expected.Size) {
		return errors.Wrapf(status.ErrBadLength,
			"%s header size %d does not match expected %d",
			componentName, actual.Size, expected.Size)
	}
	return nil
}
