package superblock

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// Save encodes the super block and writes it at pbn, the data-region
// origin.
func Save(layer interfaces.Layer, pbn types.PhysicalBlockNumber, s *SuperBlock) error {
	block, err := s.Encode()
	if err != nil {
		return err
	}
	if err := layer.Write(pbn, 1, block); err != nil {
		return errors.Wrap(err, "cannot write super block")
	}
	return nil
}

// Load reads and validates the super block at pbn.
func Load(layer interfaces.Layer, pbn types.PhysicalBlockNumber) (*SuperBlock, error) {
	block, err := layer.AllocateIOBuffer(types.BlockSize, "super block")
	if err != nil {
		return nil, err
	}
	if err := layer.Read(pbn, 1, block); err != nil {
		return nil, errors.Wrap(err, "cannot read super block")
	}
	return Decode(block)
}
