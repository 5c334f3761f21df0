package superblock

import (
	"github.com/cockroachdb/errors"

	"github.com/deploymenttheory/go-vdo/internal/codec"
	"github.com/deploymenttheory/go-vdo/internal/status"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// VDOComponent is the volume-wide state persisted in the super block: the
// lifecycle state, the recovery counters, the nonce, and the format-time
// configuration.
type VDOComponent struct {
	State              types.VDOState
	CompleteRecoveries uint64
	ReadOnlyRecoveries uint64
	Nonce              types.Nonce
	Config             types.VDOConfig
}

// encodedComponentSize covers the state tag, two recovery counters, the
// nonce, and five config fields.
const encodedComponentSize = 1 + 8 + 8 + 8 + 5*8

// ComponentHeader is the versioned header the VDO component is written
// under.
var ComponentHeader = codec.Header{
	ID:      types.ComponentVDO,
	Version: codec.VersionNumber{Major: 41, Minor: 0},
	Size:    encodedComponentSize,
}

// Encode writes the component, header first, to w.
func (c *VDOComponent) Encode(w *codec.Writer) {
	ComponentHeader.Encode(w)
	w.PutUint8(uint8(c.State))
	w.PutUint64(c.CompleteRecoveries)
	w.PutUint64(c.ReadOnlyRecoveries)
	w.PutUint64(uint64(c.Nonce))
	w.PutUint64(uint64(c.Config.LogicalBlocks))
	w.PutUint64(uint64(c.Config.PhysicalBlocks))
	w.PutUint64(uint64(c.Config.SlabSize))
	w.PutUint64(uint64(c.Config.RecoveryJournalSize))
	w.PutUint64(uint64(c.Config.SlabJournalBlocks))
}

// DecodeComponent reads a VDO component, validating its header.
func DecodeComponent(r *codec.Reader) (VDOComponent, error) {
	header := codec.DecodeHeader(r)
	if err := codec.ValidateHeader(ComponentHeader, header, true, "VDO component"); err != nil {
		return VDOComponent{}, err
	}
	c := VDOComponent{
		State:              types.VDOState(r.Uint8()),
		CompleteRecoveries: r.Uint64(),
		ReadOnlyRecoveries: r.Uint64(),
		Nonce:              types.Nonce(r.Uint64()),
		Config: types.VDOConfig{
			LogicalBlocks:       types.BlockCount(r.Uint64()),
			PhysicalBlocks:      types.BlockCount(r.Uint64()),
			SlabSize:            types.BlockCount(r.Uint64()),
			RecoveryJournalSize: types.BlockCount(r.Uint64()),
			SlabJournalBlocks:   types.BlockCount(r.Uint64()),
		},
	}
	if err := r.Err(); err != nil {
		return VDOComponent{}, err
	}
	if !c.State.Valid() {
		return VDOComponent{}, errors.Wrapf(status.ErrCorrupt,
			"VDO state tag %d is not a known state", uint8(c.State))
	}
	return c, nil
}
