package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"doombsp/internal/cache"
)

var dumpInput string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print segment sizes from an archived-map cache file, for inspection",
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVarP(&dumpInput, "input", "i", "", "archived-map cache file (required)")
	dumpCmd.MarkFlagRequired("input")
}

func runDump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(dumpInput)
	if err != nil {
		return fmt.Errorf("bspbuild: open cache: %w", err)
	}
	defer f.Close()

	doc, err := cache.Decode(f)
	if err != nil {
		return fmt.Errorf("bspbuild: decode cache: %w", err)
	}

	fmt.Printf("%s\n", dumpInput)
	fmt.Printf("  texture dict: %d\n", len(doc.TextureDict))
	fmt.Printf("  vertexes:     %d\n", len(doc.Vertexes))
	fmt.Printf("  lines:        %d\n", len(doc.Lines))
	fmt.Printf("  sides:        %d\n", len(doc.Sides))
	fmt.Printf("  sectors:      %d\n", len(doc.Sectors))
	fmt.Printf("  segs:         %d\n", len(doc.Segs))
	fmt.Printf("  subsectors:   %d\n", len(doc.Subsectors))
	fmt.Printf("  nodes:        %d\n", len(doc.Nodes))
	fmt.Printf("  root ref:     %d\n", doc.RootRef)

	var unclosed []int
	for i, s := range doc.Sectors {
		if s.Unclosed != 0 {
			unclosed = append(unclosed, i)
		}
	}
	if len(unclosed) > 0 {
		fmt.Printf("  unclosed sectors: %v\n", unclosed)
	}
	return nil
}
