package geometry

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// geometryBlockLocation is where the geometry lives on the device.
const geometryBlockLocation types.PhysicalBlockNumber = 0

// Write encodes the geometry and writes it at PBN 0. A format does this
// last: the geometry is the block the kernel uses to recognise a VDO, so
// writing it commits the volume.
func Write(layer interfaces.Layer, g *VolumeGeometry) error {
	block, err := g.Encode()
	if err != nil {
		return err
	}
	if err := layer.Write(geometryBlockLocation, 1, block); err != nil {
		return errors.Wrap(err, "cannot write geometry block")
	}
	return nil
}

// Clear writes one zero block at PBN 0. A format does this before touching
// anything else so that a crash mid-format leaves a device that refuses to
// load rather than one carrying stale metadata.
func Clear(layer interfaces.Layer) error {
	block, err := layer.AllocateIOBuffer(types.BlockSize, "zeroed geometry block")
	if err != nil {
		return err
	}
	if err := layer.Write(geometryBlockLocation, 1, block); err != nil {
		return errors.Wrap(err, "cannot clear geometry block")
	}
	return nil
}

// Load reads and validates the geometry block.
func Load(layer interfaces.Layer) (*VolumeGeometry, error) {
	block, err := layer.AllocateIOBuffer(types.BlockSize, "geometry block")
	if err != nil {
		return nil, err
	}
	if err := layer.Read(geometryBlockLocation, 1, block); err != nil {
		return nil, errors.Wrap(err, "cannot read geometry block")
	}
	g, err := Decode(block)
	if err != nil {
		return nil, err
	}
	if types.BlockCount(g.DataRegionStart())+g.DataRegionLength() > layer.BlockCount() {
		return nil, errors.Wrapf(status.ErrCorrupt,
			"data region ends at PBN %d but the device has only %d blocks",
			types.BlockCount(g.DataRegionStart())+g.DataRegionLength(),
			layer.BlockCount())
	}
	return g, nil
}
