package geometry

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/checksum"
	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Encode serialises the geometry into a full block. The checksum covers
// every byte after the checksum field, so the zero-filled tail is guarded
// too.
func (g *VolumeGeometry) Encode() ([]byte, error) {
	block := make([]byte, types.BlockSize)
	w := codec.NewWriter(block)

	w.PutBytes([]byte(MagicNumber))
	geometryHeader.Encode(w)
	w.PutUint32(uint32(g.ReleaseVersion))
	w.PutUint32(0) // checksum placeholder
	w.PutUint64(uint64(g.Nonce))
	w.PutBytes(g.UUID[:])

	for _, region := range g.Regions {
		w.PutUint32(uint32(region.ID))
		w.PutUint64(uint64(region.Start))
		w.PutUint64(uint64(region.Length))
	}

	if g.IndexConfig != nil {
		w.PutUint32(g.IndexConfig.MemoryMB)
		w.PutUint32(g.IndexConfig.CheckpointFrequency)
		if g.IndexConfig.Sparse {
			w.PutUint32(1)
		} else {
			w.PutUint32(0)
		}
	} else {
		w.PutUint32(0)
		w.PutUint32(0)
		w.PutUint32(0)
	}

	if err := w.Err(); err != nil {
		return nil, err
	}

	crc := checksum.CRC32C(block[noncePosition:])
	cw := codec.NewWriter(block[checksumOffset:])
	cw.PutUint32(crc)
	return block, nil
}

// Decode validates and deserialises a geometry block.
func Decode(block []byte) (*VolumeGeometry, error) {
	if len(block) != types.BlockSize {
		return nil, errors.Wrapf(status.ErrBadLength,
			"geometry block is %d bytes, not %d", len(block), types.BlockSize)
	}
	if !bytes.Equal(block[magicOffset:magicOffset+len(MagicNumber)], []byte(MagicNumber)) {
		return nil, errors.Wrap(status.ErrBadMagic, "device is not a VDO")
	}

	r := codec.NewReader(block[headerOffset:])
	header := codec.DecodeHeader(r)
	if err := codec.ValidateHeader(geometryHeader, header, true, "geometry block"); err != nil {
		// The geometry header ID doubles as the device's identity; any
		// mismatch means this block was not written by this format.
		if errors.Is(err, status.ErrIncorrectComponent) {
			return nil, errors.Wrap(status.ErrBadMagic, "geometry block header")
		}
		return nil, err
	}

	g := &VolumeGeometry{
		ReleaseVersion: types.ReleaseVersionNumber(r.Uint32()),
	}
	if !types.IsKnownReleaseVersion(g.ReleaseVersion) {
		return nil, errors.Wrapf(status.ErrUnsupportedVersion,
			"release version %d is not in the release table", g.ReleaseVersion)
	}

	storedCRC := r.Uint32()
	if crc := checksum.CRC32C(block[noncePosition:]); crc != storedCRC {
		return nil, errors.Wrapf(status.ErrBadChecksum,
			"geometry checksum %#08x does not match stored %#08x", crc, storedCRC)
	}

	g.Nonce = types.Nonce(r.Uint64())
	copy(g.UUID[:], r.Bytes(16))

	for i := range g.Regions {
		g.Regions[i] = Region{
			ID:     RegionID(r.Uint32()),
			Start:  types.PhysicalBlockNumber(r.Uint64()),
			Length: types.BlockCount(r.Uint64()),
		}
	}

	memoryMB := r.Uint32()
	frequency := r.Uint32()
	sparse := r.Uint32()
	if memoryMB != 0 {
		g.IndexConfig = &IndexConfig{
			MemoryMB:            memoryMB,
			CheckpointFrequency: frequency,
			Sparse:              sparse != 0,
		}
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}
