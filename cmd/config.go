package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-vdo/internal/geometry"
)

// initDefaults loads format defaults from an optional config file and the
// environment. Flags still win over both.
func initDefaults() {
	viper.SetConfigName("go-vdo")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.go-vdo")
	viper.AddConfigPath("/etc/go-vdo")

	viper.SetDefault("slab_size", "32M")
	viper.SetDefault("slab_journal_blocks", 224)
	viper.SetDefault("journal_size", "8M")
	viper.SetDefault("index_memory", "")
	viper.SetDefault("index_sparse", false)
	viper.SetDefault("index_checkpoint_frequency", 0)

	viper.SetEnvPrefix("GOVDO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error: cannot read config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// parseIndexMemory resolves the index memory class: the fractional classes
// "0.25", "0.5", and "0.75" (of a GiB), or a whole number of GiB.
func parseIndexMemory(s string) (uint32, error) {
	switch s {
	case "0.25":
		return geometry.IndexMemory256MB, nil
	case "0.5":
		return geometry.IndexMemory512MB, nil
	case "0.75":
		return geometry.IndexMemory768MB, nil
	}
	gb, err := strconv.ParseUint(s, 10, 32)
	if err != nil || gb == 0 {
		return 0, fmt.Errorf("invalid index memory size %q", s)
	}
	return uint32(gb) * geometry.IndexMemory1GB, nil
}
