package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-vdo/internal/device"
	"github.com/deploymenttheory/go-vdo/internal/vdo"
)

var forceRebuildCmd = &cobra.Command{
	Use:   "force-rebuild",
	Short: "Mark a read-only volume for a full rebuild",
	Long: `force-rebuild prepares a read-only VDO to exit read-only mode by
rebuilding its metadata on the next start. The volume must already be in
read-only mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, err := device.OpenFileLayer(devicePath)
		if err != nil {
			return err
		}
		defer layer.Close()

		if err := vdo.ForceRebuild(layer); err != nil {
			return err
		}
		logrus.WithField("device", devicePath).Info("volume marked for rebuild")
		return nil
	},
}

var readOnlyCmd = &cobra.Command{
	Use:   "read-only",
	Short: "Put a volume into read-only mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, err := device.OpenFileLayer(devicePath)
		if err != nil {
			return err
		}
		defer layer.Close()

		if err := vdo.SetReadOnlyMode(layer); err != nil {
			return err
		}
		logrus.WithField("device", devicePath).Info("volume set read-only")
		return nil
	},
}
