package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	devicePath string
)

var rootCmd = &cobra.Command{
	Use:   "go-vdo",
	Short: "Format and maintain VDO deduplicating block devices",
	Long: `go-vdo prepares a backing block device for the VDO kernel module and
adjusts its metadata out-of-band.

Commands:
  format         Write a fresh VDO volume to a device
  force-rebuild  Mark a read-only volume for a full rebuild
  read-only      Put a volume into read-only mode
  inspect        Print the metadata of a formatted volume`,
	Version: "0.1.0-dev",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initDefaults)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&devicePath, "device", "", "path to the backing device or image file")
	_ = rootCmd.MarkPersistentFlagRequired("device")

	rootCmd.AddCommand(
		formatCmd,
		forceRebuildCmd,
		readOnlyCmd,
		inspectCmd,
	)
}
