// Command octreedump builds a randomly populated octree, runs a sample ray
// cast and AABB query against it, and writes a PNG cross-section of the
// tree's spatial subdivision for visual inspection.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math/rand/v2"
	"os"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/octree"
	"github.com/soypat/octree/query"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// coordWidth is the root AABB's half-size; coordinates live in [0, 2*coordWidth).
const coordWidth = 2048

type spatialPoint struct {
	pos octree.Vec3[uint16]
}

func (p spatialPoint) Position() octree.Vec3[uint16] { return p.pos }

func main() {
	n := flag.Int("n", 500, "number of random points to insert")
	seed := flag.Uint64("seed", 1, "random seed")
	out := flag.String("out", "octree.png", "output PNG path")
	imgSize := flag.Int("size", 512, "output image width/height in pixels")
	flag.Parse()

	tr, err := buildTree(*n, *seed)
	if err != nil {
		log.Fatalf("octreedump: %v", err)
	}
	stats := tr.Stats()
	log.Printf("inserted %d points: %d nodes live of %d capacity, depth %d", tr.Len(), stats.NodesLive, stats.NodesCap, tr.Depth())

	runSampleQueries(tr)

	img := renderCrossSection(tr, *imgSize)
	fp, err := os.Create(*out)
	if err != nil {
		log.Fatalf("octreedump: %v", err)
	}
	defer fp.Close()
	if err := png.Encode(fp, img); err != nil {
		log.Fatalf("octreedump: encoding png: %v", err)
	}
	log.Printf("wrote cross-section to %s", *out)
}

func buildTree(n int, seed uint64) (*octree.Tree[uint16, spatialPoint], error) {
	root := octree.Aabb[uint16]{Center: octree.SplatVec3[uint16](coordWidth), HalfSize: coordWidth}
	tr, err := octree.NewFromAABBWithCapacity[uint16, spatialPoint](root, n)
	if err != nil {
		return nil, fmt.Errorf("building tree: %w", err)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	for inserted := 0; inserted < n; {
		pos := octree.Vec3[uint16]{
			X: uint16(rng.IntN(2 * coordWidth)),
			Y: uint16(rng.IntN(2 * coordWidth)),
			Z: uint16(rng.IntN(2 * coordWidth)),
		}
		if _, err := tr.Insert(spatialPoint{pos: pos}); err != nil {
			continue // duplicate position, or the containing cell is unsplittable; resample.
		}
		inserted++
	}
	return tr, nil
}

func runSampleQueries(tr *octree.Tree[uint16, spatialPoint]) {
	ray := query.Ray{
		Origin: ms3.Vec{X: coordWidth, Y: coordWidth, Z: 0},
		Dir:    ms3.Vec{X: 0, Y: 0, Z: 1},
		Max:    2 * coordWidth,
	}
	if hit := query.RayCast(tr, ray); hit.Found {
		log.Printf("sample ray hit element %d at distance %.1f", hit.Element, hit.Distance)
	} else {
		log.Printf("sample ray found no hit")
	}

	box := ms3.Box{
		Min: ms3.Vec{X: coordWidth - 64, Y: coordWidth - 64, Z: coordWidth - 64},
		Max: ms3.Vec{X: coordWidth + 64, Y: coordWidth + 64, Z: coordWidth + 64},
	}
	hits := query.IntersectAABB(tr, box)
	log.Printf("sample AABB query around tree center matched %d elements", len(hits))
}

type nodeFrame struct {
	id    octree.NodeID
	depth int
}

// renderCrossSection rasterizes every node straddling the z=coordWidth plane:
// filled cells for occupied leaves, outlines colored by depth otherwise.
func renderCrossSection(tr *octree.Tree[uint16, spatialPoint], size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw := func(x, y int, c color.Color) {
		if x >= 0 && x < size && y >= 0 && y < size {
			img.Set(x, y, c)
		}
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.White)
		}
	}

	scale := float64(size) / float64(2*coordWidth)
	const zPlane uint16 = coordWidth
	leafCount := 0

	stack := []nodeFrame{{tr.RootID(), 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := tr.Node(f.id)
		if !ok {
			continue
		}
		lowZ := node.Aabb.Center.Z - node.Aabb.HalfSize
		highZ := node.Aabb.Center.Z + node.Aabb.HalfSize
		if zPlane < lowZ || zPlane >= highZ {
			continue
		}

		x0 := int(float64(node.Aabb.Center.X-node.Aabb.HalfSize) * scale)
		y0 := int(float64(node.Aabb.Center.Y-node.Aabb.HalfSize) * scale)
		x1 := int(float64(node.Aabb.Center.X+node.Aabb.HalfSize) * scale)
		y1 := int(float64(node.Aabb.Center.Y+node.Aabb.HalfSize) * scale)

		if _, isLeaf := node.Kind.IsLeaf(); isLeaf {
			leafCount++
			fillRect(draw, x0, y0, x1, y1, color.RGBA{R: 220, G: 60, B: 60, A: 255})
			continue
		}
		if children, isBranch := node.Kind.IsBranch(); isBranch {
			strokeRect(draw, x0, y0, x1, y1, depthColor(f.depth))
			for _, c := range children {
				stack = append(stack, nodeFrame{c, f.depth + 1})
			}
			continue
		}
		strokeRect(draw, x0, y0, x1, y1, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	}

	drawLabel(img, 8, 16, fmt.Sprintf("%d points, %d leaves in plane", tr.Len(), leafCount))
	return img
}

func fillRect(draw func(x, y int, c color.Color), x0, y0, x1, y1 int, c color.Color) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			draw(x, y, c)
		}
	}
}

func strokeRect(draw func(x, y int, c color.Color), x0, y0, x1, y1 int, c color.Color) {
	for x := x0; x < x1; x++ {
		draw(x, y0, c)
		draw(x, y1-1, c)
	}
	for y := y0; y < y1; y++ {
		draw(x0, y, c)
		draw(x1-1, y, c)
	}
}

// depthColor gives deeper branch levels a cooler, darker tint so the
// cross-section's subdivision structure is readable at a glance.
func depthColor(depth int) color.Color {
	shade := uint8(220 - 20*depth)
	if depth > 10 {
		shade = 20
	}
	return color.RGBA{R: shade, G: shade, B: 255, A: 255}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
