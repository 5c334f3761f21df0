package vdo

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/deploymenttheory/go-vdo/internal/geometry"
	"github.com/deploymenttheory/go-vdo/internal/interfaces"
	"github.com/deploymenttheory/go-vdo/internal/journal"
	"github.com/deploymenttheory/go-vdo/internal/layout"
	"github.com/deploymenttheory/go-vdo/internal/slab"
	"github.com/deploymenttheory/go-vdo/internal/superblock"
	"github.com/deploymenttheory/go-vdo/internal/types"
)

// newNonce draws the volume nonce from the clock and the system's entropy
// source. The nonce only has to differ between re-formats of the same
// device.
func newNonce() (types.Nonce, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return 0, errors.Wrap(err, "cannot draw nonce")
	}
	return types.Nonce(binary.LittleEndian.Uint64(raw[:]) ^
		uint64(time.Now().UnixNano())), nil
}

// Format writes a fresh VDO volume to the layer with a random nonce and
// UUID.
func Format(layer interfaces.Layer, config *Config) error {
	nonce, err := newNonce()
	if err != nil {
		return err
	}
	return FormatWithNonce(layer, config, nonce, uuid.New())
}

// FormatWithNonce writes a fresh VDO volume with the caller's identity.
//
// The write sequence makes the format atomic at the granularity of "will
// this device be opened as a VDO?": the geometry block is zeroed first and
// rewritten last, so any earlier failure leaves a device that refuses to
// load rather than one carrying stale or half-written metadata.
func FormatWithNonce(layer interfaces.Layer, config *Config,
	nonce types.Nonce, id uuid.UUID) error {

	slabConfig, err := config.validate(layer.BlockCount())
	if err != nil {
		return err
	}

	g, err := geometry.Build(nonce, id, config.Index, config.PhysicalBlocks)
	if err != nil {
		return err
	}

	if err := geometry.Clear(layer); err != nil {
		return err
	}

	logical, l, err := planLayout(config.PhysicalBlocks, g.DataRegionStart(),
		config, slabConfig)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"uuid":     id,
		"logical":  logical,
		"physical": config.PhysicalBlocks,
	}).Debug("formatting VDO volume")

	for _, pid := range []layout.PartitionID{
		layout.BlockMapPartition,
		layout.RecoveryJournalPartition,
	} {
		p, err := l.Partition(pid)
		if err != nil {
			return err
		}
		if err := journal.ClearPartition(layer, p); err != nil {
			return err
		}
	}

	depot := l.Partitions[layout.BlockAllocatorPartition]
	summary := l.Partitions[layout.SlabSummaryPartition]
	slabCount := types.SlabCount(depot.Length / config.SlabSize)
	if err := slab.WriteSummary(layer, summary.Offset, summary.Length,
		slabCount, slabConfig); err != nil {
		return err
	}

	sb := &superblock.SuperBlock{
		ReleaseVersion: types.CurrentReleaseVersionNumber,
		Journal:        journal.NewState(),
		Depot: slab.DepotState{
			FirstBlock: depot.Offset,
			LastBlock:  depot.Offset + types.PhysicalBlockNumber(depot.Length),
			ZoneCount:  1,
			SlabCount:  slabCount,
			SlabConfig: slabConfig,
		},
		Component: superblock.VDOComponent{
			State: types.StateNew,
			Nonce: nonce,
			Config: types.VDOConfig{
				LogicalBlocks:       logical,
				PhysicalBlocks:      config.PhysicalBlocks,
				SlabSize:            config.SlabSize,
				RecoveryJournalSize: config.RecoveryJournalSize,
				SlabJournalBlocks:   config.SlabJournalBlocks,
			},
		},
	}
	if err := superblock.Save(layer, g.DataRegionStart(), sb); err != nil {
		return err
	}

	// Commit point: the device becomes recognisable as a VDO.
	return geometry.Write(layer, g)
}
