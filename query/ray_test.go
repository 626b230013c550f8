package query

import (
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/octree"
)

type point struct {
	pos octree.Vec3[uint8]
}

func (p point) Position() octree.Vec3[uint8] { return p.pos }

func newRayTestTree(t testing.TB) (*octree.Tree[uint8, point], octree.ElementID, octree.ElementID) {
	t.Helper()
	root := octree.Aabb[uint8]{Center: octree.SplatVec3[uint8](16), HalfSize: 16}
	tr, err := octree.NewFromAABB[uint8, point](root)
	if err != nil {
		t.Fatalf("NewFromAABB: %v", err)
	}
	idA, err := tr.Insert(point{pos: octree.Vec3[uint8]{X: 1, Y: 1, Z: 1}})
	if err != nil {
		t.Fatalf("insert A: %v", err)
	}
	idB, err := tr.Insert(point{pos: octree.Vec3[uint8]{X: 8, Y: 8, Z: 8}})
	if err != nil {
		t.Fatalf("insert B: %v", err)
	}
	return tr, idA, idB
}

// TestRayCastHit reproduces the literal ray-hit scenario: ray origin
// (1.5, 7.0, 1.9), direction (0,-1,0), hits A's unit cube at distance 5.
func TestRayCastHit(t *testing.T) {
	tr, idA, _ := newRayTestTree(t)
	ray := Ray{
		Origin: ms3.Vec{X: 1.5, Y: 7.0, Z: 1.9},
		Dir:    ms3.Vec{X: 0, Y: -1, Z: 0},
		Max:    100,
	}
	got := RayCast(tr, ray)
	if !got.Found {
		t.Fatal("expected a hit")
	}
	if got.Element != idA {
		t.Fatalf("hit element = %v, want %v", got.Element, idA)
	}
	if got.Distance != 5.0 {
		t.Fatalf("hit distance = %v, want 5.0", got.Distance)
	}
}

// TestRayCastMissAfterRemoval reproduces S3: after removing the element the
// ray previously hit, the same ray must miss.
func TestRayCastMissAfterRemoval(t *testing.T) {
	tr, idA, _ := newRayTestTree(t)
	if err := tr.Remove(idA); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ray := Ray{
		Origin: ms3.Vec{X: 1.5, Y: 7.0, Z: 1.9},
		Dir:    ms3.Vec{X: 0, Y: -1, Z: 0},
		Max:    100,
	}
	got := RayCast(tr, ray)
	if got.Found {
		t.Fatalf("expected a miss, got hit on %v at %v", got.Element, got.Distance)
	}
	if got.Distance != 0 {
		t.Fatalf("miss distance = %v, want 0", got.Distance)
	}
}

// TestRayCastMissGuarantee checks invariant 6: a ray whose infinite extension
// never enters an element's unit cube must never report a hit, regardless of Max.
func TestRayCastMissGuarantee(t *testing.T) {
	tr, _, _ := newRayTestTree(t)
	ray := Ray{
		Origin: ms3.Vec{X: 30, Y: 30, Z: 30},
		Dir:    ms3.Vec{X: 1, Y: 1, Z: 1}, // points away from both elements
		Max:    1000,
	}
	got := RayCast(tr, ray)
	if got.Found {
		t.Fatalf("expected no hit, got %v at distance %v", got.Element, got.Distance)
	}
}

func TestRayCastPrefersNearerElement(t *testing.T) {
	tr, idA, idB := newRayTestTree(t)
	// A ray along the (1,1,1) diagonal direction should hit A (closer) before B.
	ray := Ray{
		Origin: ms3.Vec{X: 0, Y: 0, Z: 0},
		Dir:    ms3.Vec{X: 1, Y: 1, Z: 1},
		Max:    100,
	}
	got := RayCast(tr, ray)
	if !got.Found || got.Element != idA {
		t.Fatalf("RayCast = %+v, want hit on %v", got, idA)
	}
	_ = idB
}
