package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"doombsp/internal/buildlog"
	"doombsp/internal/config"
)

var (
	verbose bool
	log     buildlog.Sink
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "bspbuild",
	Short: "Offline BSP node builder for DOOM-style maps",
	Long: `bspbuild turns an authored map description (vertices, linedefs,
sidedefs, sectors) into a binary space partition tree and serializes it
to the archived-map cache format a game engine can load at runtime.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.SetVerbose(verbose)
		log = buildlog.NewDefault(verbose)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level diagnostics")

	binName := BinName()
	rootCmd.Example = `  # Build a cache file from an authored map
  ` + binName + ` build --input map.json --output map.bspcache

  # Use a stricter partition cost factor
  ` + binName + ` build --input map.json --output map.bspcache --factor 12

  # Inspect a built cache file
  ` + binName + ` dump --input map.bspcache`
}

// Logger returns the sink configured by PersistentPreRunE.
func Logger() buildlog.Sink { return log }

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
