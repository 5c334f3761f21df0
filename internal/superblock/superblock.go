// Package superblock encodes, validates, and persists the super block: the
// single block at the data-region origin that carries the volume's
// components.
package superblock

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/checksum"
	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/journal"
	"github.com/deploymenttheory/go-vdo/internal/slab"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// SuperBlock is the in-memory form of the super block.
type SuperBlock struct {
	ReleaseVersion types.ReleaseVersionNumber
	Journal        journal.State
	Depot          slab.DepotState
	Component      VDOComponent
}

// Byte offsets within the super block.
const (
	checksumOffset = codec.EncodedHeaderSize
	payloadOffset  = checksumOffset + 4

	// payloadSize covers the release version and the three encoded
	// components. The checksum guards exactly this range.
	payloadSize = 4 +
		(codec.EncodedHeaderSize + 16) + // recovery journal state
		(codec.EncodedHeaderSize + 84) + // slab depot state
		(codec.EncodedHeaderSize + 65) // VDO component
)

// Header is the versioned header of the super block itself. Loading is
// strictly gated on this exact version.
var Header = codec.Header{
	ID:      types.ComponentSuperBlock,
	Version: codec.VersionNumber{Major: 12, Minor: 0},
	Size:    payloadSize,
}

// Encode serialises the super block into a full block: header, checksum,
// then the payload the checksum covers.
func (s *SuperBlock) Encode() ([]byte, error) {
	block := make([]byte, types.BlockSize)
	w := codec.NewWriter(block)

	Header.Encode(w)
	w.PutUint32(0) // checksum placeholder
	w.PutUint32(uint32(s.ReleaseVersion))
	s.Journal.Encode(w)
	s.Depot.Encode(w)
	s.Component.Encode(w)

	if err := w.Err(); err != nil {
		return nil, err
	}
	if got := w.Offset(); got != payloadOffset+payloadSize {
		return nil, errors.Wrapf(status.ErrBadLength,
			"super block payload is %d bytes, not %d",
			got-payloadOffset, payloadSize)
	}

	crc := checksum.CRC32C(block[payloadOffset : payloadOffset+payloadSize])
	cw := codec.NewWriter(block[checksumOffset:])
	cw.PutUint32(crc)
	return block, nil
}

// Decode validates and deserialises a super block. The version gate runs
// before the checksum so that a version mismatch is reported as such rather
// than as corruption.
func Decode(block []byte) (*SuperBlock, error) {
	if len(block) != types.BlockSize {
		return nil, errors.Wrapf(status.ErrBadLength,
			"super block is %d bytes, not %d", len(block), types.BlockSize)
	}

	r := codec.NewReader(block)
	header := codec.DecodeHeader(r)
	if header.ID != Header.ID {
		return nil, errors.Wrap(status.ErrBadMagic,
			"block does not carry a super block header")
	}
	if header.Version != Header.Version {
		return nil, errors.Wrapf(status.ErrUnsupportedVersion,
			"super block version %d.%d is not supported (expected %d.%d)",
			header.Version.Major, header.Version.Minor,
			Header.Version.Major, Header.Version.Minor)
	}
	if header.Size != payloadSize {
		return nil, errors.Wrapf(status.ErrBadLength,
			"super block payload size %d does not match expected %d",
			header.Size, payloadSize)
	}

	storedCRC := r.Uint32()
	crc := checksum.CRC32C(block[payloadOffset : payloadOffset+payloadSize])
	if crc != storedCRC {
		return nil, errors.Wrapf(status.ErrBadChecksum,
			"super block checksum %#08x does not match stored %#08x",
			crc, storedCRC)
	}

	s := &SuperBlock{
		ReleaseVersion: types.ReleaseVersionNumber(r.Uint32()),
	}
	if !types.IsKnownReleaseVersion(s.ReleaseVersion) {
		return nil, errors.Wrapf(status.ErrUnsupportedVersion,
			"release version %d is not in the release table", s.ReleaseVersion)
	}

	var err error
	if s.Journal, err = journal.DecodeState(r); err != nil {
		return nil, err
	}
	if s.Depot, err = slab.DecodeDepotState(r); err != nil {
		return nil, err
	}
	if s.Component, err = DecodeComponent(r); err != nil {
		return nil, err
	}
	return s, r.Err()
}
