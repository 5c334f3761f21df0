package cmd

import (
	"fmt"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-vdo/internal/device"
	"github.com/deploymenttheory/go-vdo/internal/types"
	"github.com/deploymenttheory/go-vdo/internal/vdo"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the metadata of a formatted volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, err := device.OpenFileLayer(devicePath)
		if err != nil {
			return err
		}
		defer layer.Close()

		d, err := vdo.Describe(layer)
		if err != nil {
			return err
		}
		printDescription(d)
		return nil
	},
}

func blocksToHuman(blocks types.BlockCount) string {
	return units.BytesSize(float64(blocks) * types.BlockSize)
}

func printDescription(d *vdo.Description) {
	g := d.Geometry
	sb := d.SuperBlock

	fmt.Printf("UUID:            %s\n", g.UUID)
	fmt.Printf("Nonce:           %#016x\n", uint64(g.Nonce))
	fmt.Printf("Release version: %d\n", g.ReleaseVersion)
	fmt.Printf("State:           %s\n", sb.Component.State)
	fmt.Printf("Logical size:    %s (%d blocks)\n",
		blocksToHuman(sb.Component.Config.LogicalBlocks),
		sb.Component.Config.LogicalBlocks)
	fmt.Printf("Physical size:   %s (%d blocks)\n",
		blocksToHuman(sb.Component.Config.PhysicalBlocks),
		sb.Component.Config.PhysicalBlocks)

	if g.IndexConfig != nil {
		variant := "dense"
		if g.IndexConfig.Sparse {
			variant = "sparse"
		}
		fmt.Printf("Dedup index:     %d MB %s, %d blocks on disk\n",
			g.IndexConfig.MemoryMB, variant, g.Regions[0].Length)
	} else {
		fmt.Printf("Dedup index:     none\n")
	}

	fmt.Printf("Slabs:           %d of %s (%d data blocks each)\n",
		sb.Depot.SlabCount,
		blocksToHuman(sb.Depot.SlabConfig.SlabBlocks),
		sb.Depot.SlabConfig.DataBlocks)
	fmt.Printf("Recovery journal: head %d, tail %d\n",
		sb.Journal.Head, sb.Journal.Tail)

	fmt.Printf("Partitions:\n")
	for _, p := range d.Layout.Partitions {
		fmt.Printf("  %-16s PBN %10d  %12d blocks\n", p.ID, p.Offset, p.Length)
	}
}
