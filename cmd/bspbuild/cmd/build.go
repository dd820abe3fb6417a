package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"doombsp/internal/bspbuild"
	"doombsp/internal/cache"
	"doombsp/internal/config"
	"doombsp/internal/halfedge"
	"doombsp/internal/initialhedge"
	"doombsp/internal/mapdata"
	"doombsp/internal/profiling"
	"doombsp/internal/superblock"
	"doombsp/internal/windoweffect"
)

var (
	buildInput  string
	buildOutput string
	buildFactor int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a BSP tree from an authored map and write an archived-map cache",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "input map JSON file (required)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output archived-map cache file (required)")
	buildCmd.Flags().IntVarP(&buildFactor, "factor", "f", config.DefaultFactor, "partition selector cost factor (1-32)")
	buildCmd.MarkFlagRequired("input")
	buildCmd.MarkFlagRequired("output")
}

func runBuild(cmd *cobra.Command, args []string) error {
	defer profiling.Track("cmd.build")()
	config.SetFactor(buildFactor)

	if cache.IsValid(buildOutput, buildInput) {
		Logger().Infof("%s is already up to date with %s, rebuilding anyway", buildOutput, buildInput)
	}

	in, err := os.Open(buildInput)
	if err != nil {
		return fmt.Errorf("bspbuild: open input: %w", err)
	}
	defer in.Close()

	m, err := mapdata.DecodeJSON(in)
	if err != nil {
		return fmt.Errorf("bspbuild: decode map: %w", err)
	}

	tree, ds, err := buildTree(m, config.GetFactor())
	if err != nil {
		return fmt.Errorf("bspbuild: build tree: %w", err)
	}

	doc := flatten(m, ds, tree)

	out, err := os.Create(buildOutput)
	if err != nil {
		return fmt.Errorf("bspbuild: create output: %w", err)
	}
	defer out.Close()

	if err := encode(out, doc); err != nil {
		return fmt.Errorf("bspbuild: encode cache: %w", err)
	}

	Logger().Infof("wrote %s: %d vertexes, %d segs, %d subsectors, %d nodes",
		buildOutput, len(doc.Vertexes), len(doc.Segs), len(doc.Subsectors), len(doc.Nodes))

	if verbose {
		if top := profiling.TopN(5); top != "" {
			Logger().Debugf("phase timings: %s", top)
		}
	}
	return nil
}

func flatten(m *mapdata.Map, ds *halfedge.DS, tree *bspbuild.Tree) cache.Doc {
	defer profiling.Track("cache.Flatten")()
	return cache.Flatten(m, ds, tree)
}

func encode(out *os.File, doc cache.Doc) error {
	defer profiling.Track("cache.Encode")()
	return cache.Encode(out, doc)
}

// buildTree runs the full pipeline: window-effect pre-pass, initial
// half-edge construction, SuperBlock seeding, then the recursive node
// builder.
func buildTree(m *mapdata.Map, factor int) (*bspbuild.Tree, *halfedge.DS, error) {
	defer profiling.Track("cmd.buildTree")()

	prepassStop := profiling.Track("windoweffect.Prepass")
	targets := windoweffect.Prepass(m)
	prepassStop()

	ds := halfedge.New()
	initialStop := profiling.Track("initialhedge.Build")
	seed, err := initialhedge.Build(ds, m, targets)
	initialStop()
	if err != nil {
		return nil, nil, err
	}

	pool := superblock.NewPool()
	root := pool.NewRoot(mapBounds(m))
	seedStop := profiling.Track("superblock.Insert")
	for _, h := range seed {
		superblock.Insert(pool, root, ds, h, ds.Info(h).LineDef != halfedge.NoLine)
	}
	seedStop()

	buildStop := profiling.Track("bspbuild.Build")
	tree, err := bspbuild.Build(ds, pool, m, root, factor, Logger())
	buildStop()
	if err != nil {
		return nil, nil, err
	}
	return tree, ds, nil
}

// mapBounds walks every authored vertex to find the map's extent,
// rounds it outward to a multiple of 128 map units, then adds one more
// 128-unit cell of margin on each side, grounded on bsp_node.c's
// findMapLimits/createSuperBlockmap. The result is not rounded up to a
// power-of-two size. A fixed ±65536 box would also contain any real
// map, but computing the actual extent keeps the root SuperBlock tight
// around the geometry it holds.
func mapBounds(m *mapdata.Map) superblock.Box {
	if len(m.Vertices) == 0 {
		return superblock.Box{Left: -128, Bottom: -128, Right: 128, Top: 128}
	}

	minX, minY := m.Vertices[0].X, m.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range m.Vertices[1:] {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}

	const grid = 128
	left := int(math.Floor(minX/grid))*grid - grid
	bottom := int(math.Floor(minY/grid))*grid - grid
	right := int(math.Ceil(maxX/grid))*grid + grid
	top := int(math.Ceil(maxY/grid))*grid + grid
	return superblock.Box{Left: left, Bottom: bottom, Right: right, Top: top}
}
