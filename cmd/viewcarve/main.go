// Command viewcarve cuts a target mesh with stencil objects projected
// along a viewing direction, writing the resulting pieces as binary STL
// files. The scene (target, stencils, view direction) comes from a JSON
// document; the flags mirror the carve operator options.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/viewcarve/viewcarve/pkg/carve"
	"github.com/viewcarve/viewcarve/pkg/kernel"
	"github.com/viewcarve/viewcarve/pkg/kernel/manifold"
	"github.com/viewcarve/viewcarve/pkg/kernel/sdfcsg"
)

func main() {
	var (
		scenePath  = flag.String("scene", "", "path to the JSON scene document (required)")
		outDir     = flag.String("out", ".", "directory for output STL files")
		keep       = flag.String("keep", "all", "pieces to keep: all, difference or intersection")
		union      = flag.Bool("union", false, "union all stencils before carving")
		deleteCarv = flag.Bool("delete-carvers", false, "drop stencil objects from the output set")
		threshold  = flag.Float64("threshold", 1e-6, "overlap tolerance for the boolean engine")
		grow       = flag.Float64("grow", 0.01, "outward grow ratio for extruded stencils")
		hullCurves = flag.Bool("hull-curves", false, "use convex hulls of curve stencils")
		hullWires  = flag.Bool("hull-wires", false, "use convex hulls of edge-only mesh stencils")
		engineName = flag.String("engine", "sdf", "boolean engine: sdf or manifold")
		cells      = flag.Int("cells", 0, "sdf engine remesh resolution (0 = default)")
	)
	flag.Parse()

	if *scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts := carve.DefaultOptions()
	opts.UnionCarves = *union
	opts.DeleteCarvers = *deleteCarv
	opts.OverlapThreshold = *threshold
	opts.GrowRatio = *grow
	opts.HullCurves = *hullCurves
	opts.HullWires = *hullWires
	switch *keep {
	case "all":
		opts.PiecesToKeep = carve.KeepAll
	case "difference":
		opts.PiecesToKeep = carve.KeepDifference
	case "intersection":
		opts.PiecesToKeep = carve.KeepIntersection
	default:
		log.Fatalf("unknown -keep value %q", *keep)
	}

	eng, err := newEngine(*engineName, *cells)
	if err != nil {
		log.Fatal(err)
	}

	doc, err := loadScene(*scenePath)
	if err != nil {
		log.Fatalf("loading scene: %v", err)
	}

	sc := newMemScene()
	res, err := carve.New(eng).Carve(sc, doc.selection(), doc.viewDir(), opts)
	if err != nil {
		log.Fatalf("carve failed: %v", err)
	}

	if len(res.Pieces) == 0 {
		fmt.Println("carve produced no pieces (target consumed)")
		return
	}
	for _, p := range res.Pieces {
		path := filepath.Join(*outDir, p.Name+".stl")
		if err := writeSTLFile(path, p.Mesh); err != nil {
			log.Fatalf("writing %s: %v", path, err)
		}
		fmt.Printf("%s: %d triangles (%s)\n", path, p.Mesh.TriangleCount(), p.Class)
	}
}

func newEngine(name string, cells int) (kernel.Engine, error) {
	switch name {
	case "sdf":
		return &sdfcsg.Engine{Cells: cells}, nil
	case "manifold":
		return manifold.New()
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}
