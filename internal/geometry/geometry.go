// Package geometry builds, writes, and validates the volume geometry block:
// the single block at PBN 0 that identifies a device as a VDO and pins the
// data-region offset, nonce, and UUID.
package geometry

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// MagicNumber identifies a VDO volume. It occupies the first eight bytes of
// the device.
const MagicNumber = "dmvdo001"

// RegionID identifies one of the regions recorded in the geometry.
type RegionID uint32

const (
	IndexRegion RegionID = iota
	DataRegion

	regionCount
)

// Region is one entry of the geometry's region table.
type Region struct {
	ID     RegionID
	Start  types.PhysicalBlockNumber
	Length types.BlockCount
}

// VolumeGeometry is the in-memory form of the geometry block.
type VolumeGeometry struct {
	ReleaseVersion types.ReleaseVersionNumber
	Nonce          types.Nonce
	UUID           uuid.UUID
	Regions        [regionCount]Region
	IndexConfig    *IndexConfig
}

var geometryHeader = codec.Header{
	ID:      types.ComponentGeometryBlock,
	Version: codec.VersionNumber{Major: 5, Minor: 0},
	Size:    uint32(encodedGeometrySize),
}

// Byte offsets within the geometry block.
const (
	magicOffset    = 0
	headerOffset   = 8
	releaseOffset  = headerOffset + codec.EncodedHeaderSize
	checksumOffset = releaseOffset + 4
	noncePosition  = checksumOffset + 4

	// encodedGeometrySize covers everything after the header: release
	// version, checksum, nonce, UUID, region table, and index config.
	encodedGeometrySize = 4 + 4 + 8 + 16 + int(regionCount)*20 + 12
)

// Build lays out the geometry for a device of physicalBlocks blocks: the
// index region starts at PBN 1 and the data region runs from the end of the
// index to the end of the device.
func Build(nonce types.Nonce, id uuid.UUID, indexConfig *IndexConfig,
	physicalBlocks types.BlockCount) (*VolumeGeometry, error) {

	indexBlocks, err := indexConfig.Blocks()
	if err != nil {
		return nil, err
	}

	dataStart := types.PhysicalBlockNumber(1 + indexBlocks)
	if types.BlockCount(dataStart) >= physicalBlocks {
		return nil, errors.Wrapf(status.ErrOutOfRange,
			"device of %d blocks cannot hold a %d block index region",
			physicalBlocks, indexBlocks)
	}

	return &VolumeGeometry{
		ReleaseVersion: types.CurrentReleaseVersionNumber,
		Nonce:          nonce,
		UUID:           id,
		Regions: [regionCount]Region{
			{ID: IndexRegion, Start: 1, Length: indexBlocks},
			{ID: DataRegion, Start: dataStart,
				Length: physicalBlocks - types.BlockCount(dataStart)},
		},
		IndexConfig: indexConfig,
	}, nil
}

// DataRegionStart returns the PBN of the first data-region block, which
// holds the super block.
func (g *VolumeGeometry) DataRegionStart() types.PhysicalBlockNumber {
	return g.Regions[DataRegion].Start
}

// DataRegionLength returns the size of the data region.
func (g *VolumeGeometry) DataRegionLength() types.BlockCount {
	return g.Regions[DataRegion].Length
}

// validate checks the derived invariants of a decoded geometry.
func (g *VolumeGeometry) validate() error {
	if !types.IsKnownReleaseVersion(g.ReleaseVersion) {
		return errors.Wrapf(status.ErrUnsupportedVersion,
			"release version %d is not in the release table", g.ReleaseVersion)
	}
	index := g.Regions[IndexRegion]
	data := g.Regions[DataRegion]
	if index.ID != IndexRegion || data.ID != DataRegion {
		return errors.Wrap(status.ErrCorrupt, "geometry region IDs out of order")
	}
	if data.Start == 0 {
		return errors.Wrap(status.ErrCorrupt, "data region starts at PBN 0")
	}
	if types.BlockCount(data.Start) < 1+types.BlockCount(index.Length) {
		return errors.Wrapf(status.ErrCorrupt,
			"data region at PBN %d overlaps the %d block index region",
			data.Start, index.Length)
	}
	if data.Length == 0 {
		return errors.Wrap(status.ErrCorrupt, "data region is empty")
	}
	return nil
}
