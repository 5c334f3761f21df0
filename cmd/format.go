package cmd

import (
	"fmt"

	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-vdo/internal/device"
	"github.com/deploymenttheory/go-vdo/internal/geometry"
	"github.com/deploymenttheory/go-vdo/internal/types"
	"github.com/deploymenttheory/go-vdo/internal/vdo"
)

var (
	formatLogicalSize    string
	formatSlabSize       string
	formatSlabJournal    uint64
	formatJournalSize    string
	formatIndexMemory    string
	formatIndexSparse    bool
	formatIndexFrequency uint32
	formatForce          bool
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Write a fresh VDO volume to a device",
	Long: `format initialises the device with the on-disk metadata layout the VDO
kernel module expects. The device must not contain a VDO already unless
--force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFormat(cmd)
	},
}

func init() {
	formatCmd.Flags().StringVar(&formatLogicalSize, "logical-size", "",
		"logical capacity (e.g. 10G); empty derives the maximum")
	formatCmd.Flags().StringVar(&formatSlabSize, "slab-size", "",
		"slab size, a power-of-two block multiple (e.g. 2G)")
	formatCmd.Flags().Uint64Var(&formatSlabJournal, "slab-journal-blocks", 0,
		"blocks of each slab reserved for its journal")
	formatCmd.Flags().StringVar(&formatJournalSize, "journal-size", "",
		"recovery journal size (e.g. 8M)")
	formatCmd.Flags().StringVar(&formatIndexMemory, "uds-memory-size", "",
		"dedup index memory: 0.25, 0.5, 0.75, or whole GiB; empty disables the index")
	formatCmd.Flags().BoolVar(&formatIndexSparse, "uds-sparse", false,
		"use the sparse dedup index variant")
	formatCmd.Flags().Uint32Var(&formatIndexFrequency, "uds-checkpoint-frequency", 0,
		"dedup index checkpoint frequency")
	formatCmd.Flags().BoolVar(&formatForce, "force", false,
		"format even if the device already contains a VDO")
}

// stringSetting returns the flag value, or the viper default when the flag
// was not given.
func stringSetting(cmd *cobra.Command, flag, key, value string) string {
	if !cmd.Flags().Changed(flag) {
		return viper.GetString(key)
	}
	return value
}

// parseBlocks converts a human-readable size into whole blocks.
func parseBlocks(what, s string) (types.BlockCount, error) {
	bytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, s, err)
	}
	if bytes <= 0 || bytes%types.BlockSize != 0 {
		return 0, fmt.Errorf("%s %q is not a positive multiple of %d bytes",
			what, s, types.BlockSize)
	}
	return types.BlockCount(bytes / types.BlockSize), nil
}

func runFormat(cmd *cobra.Command) error {
	slabSize, err := parseBlocks("slab size",
		stringSetting(cmd, "slab-size", "slab_size", formatSlabSize))
	if err != nil {
		return err
	}
	journalSize, err := parseBlocks("journal size",
		stringSetting(cmd, "journal-size", "journal_size", formatJournalSize))
	if err != nil {
		return err
	}

	var logicalBlocks types.BlockCount
	if formatLogicalSize != "" {
		if logicalBlocks, err = parseBlocks("logical size", formatLogicalSize); err != nil {
			return err
		}
	}

	slabJournalBlocks := types.BlockCount(formatSlabJournal)
	if !cmd.Flags().Changed("slab-journal-blocks") {
		slabJournalBlocks = types.BlockCount(viper.GetUint64("slab_journal_blocks"))
	}

	var indexConfig *geometry.IndexConfig
	indexMemory := stringSetting(cmd, "uds-memory-size", "index_memory", formatIndexMemory)
	if indexMemory != "" {
		memoryMB, err := parseIndexMemory(indexMemory)
		if err != nil {
			return err
		}
		indexFrequency := formatIndexFrequency
		if !cmd.Flags().Changed("uds-checkpoint-frequency") {
			indexFrequency = viper.GetUint32("index_checkpoint_frequency")
		}
		indexSparse := formatIndexSparse
		if !cmd.Flags().Changed("uds-sparse") {
			indexSparse = viper.GetBool("index_sparse")
		}
		indexConfig = &geometry.IndexConfig{
			MemoryMB:            memoryMB,
			CheckpointFrequency: indexFrequency,
			Sparse:              indexSparse,
		}
	}

	layer, err := device.OpenFileLayer(devicePath)
	if err != nil {
		return err
	}
	defer layer.Close()

	if !formatForce {
		if _, err := geometry.Load(layer); err == nil {
			return fmt.Errorf("%s already contains a VDO; use --force to format anyway",
				devicePath)
		}
	}

	config := &vdo.Config{
		LogicalBlocks:       logicalBlocks,
		SlabSize:            slabSize,
		SlabJournalBlocks:   slabJournalBlocks,
		RecoveryJournalSize: journalSize,
		Index:               indexConfig,
	}
	if err := vdo.Format(layer, config); err != nil {
		return err
	}

	logrus.WithField("device", devicePath).Info("VDO volume formatted")
	return nil
}
