package query

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/octree"
	"golang.org/x/exp/constraints"
)

// Ray is a half-line query primitive: points Origin+t*Dir for t in [0, Max].
type Ray struct {
	Origin ms3.Vec
	Dir    ms3.Vec
	Max    float32
}

// HitResult is the outcome of a RayCast: the nearest element hit, if any.
type HitResult struct {
	Element  octree.ElementID
	Found    bool
	Distance float32
}

// RayCast finds the element in t whose unit cube the ray hits first, within
// ray.Max. Misses return HitResult{Found: false, Distance: 0}.
func RayCast[U constraints.Unsigned, E octree.Positioner[U]](t *octree.Tree[U, E], ray Ray) HitResult {
	best := ray.Max
	var result HitResult

	c := capability{
		nodeOverlap: func(box ms3.Box) bool {
			_, hit := raySlab(ray, box, best)
			return hit
		},
		leafHit: func(box ms3.Box) (float32, bool) {
			return raySlab(ray, box, best)
		},
		childOrder: func(ms3.Box) [8]int {
			return nearOctantOrder(ray.Dir)
		},
	}

	traverse(t, c, func(id octree.ElementID, distance float32) bool {
		if distance < best {
			best = distance
			result = HitResult{Element: id, Found: true, Distance: distance}
		}
		return false // never stop early: a farther sibling subtree may still hold a closer hit
	})
	return result
}

// raySlab performs the standard slab test of ray against box, bounded above by
// maxDist. It returns the entry distance and whether the ray hits the box
// within [0, maxDist].
func raySlab(ray Ray, box ms3.Box, maxDist float32) (float32, bool) {
	tmin := float32(0)
	tmax := maxDist

	type axis struct{ origin, dir, lo, hi float32 }
	axes := [3]axis{
		{ray.Origin.X, ray.Dir.X, box.Min.X, box.Max.X},
		{ray.Origin.Y, ray.Dir.Y, box.Min.Y, box.Max.Y},
		{ray.Origin.Z, ray.Dir.Z, box.Min.Z, box.Max.Z},
	}
	for _, a := range axes {
		if math32.Abs(a.dir) < 1e-9 {
			if a.origin < a.lo || a.origin > a.hi {
				return 0, false
			}
			continue
		}
		inv := 1 / a.dir
		t1 := (a.lo - a.origin) * inv
		t2 := (a.hi - a.origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
