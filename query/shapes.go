package query

import (
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/octree"
	"golang.org/x/exp/constraints"
)

// IntersectAABB returns every element in t whose unit cube overlaps queryBox,
// in traversal order.
func IntersectAABB[U constraints.Unsigned, E octree.Positioner[U]](t *octree.Tree[U, E], queryBox ms3.Box) []octree.ElementID {
	var hits []octree.ElementID
	c := capability{
		nodeOverlap: func(box ms3.Box) bool { return boxesOverlap(box, queryBox) },
		leafHit: func(box ms3.Box) (float32, bool) {
			return 0, boxesOverlap(box, queryBox)
		},
	}
	traverse(t, c, func(id octree.ElementID, _ float32) bool {
		hits = append(hits, id)
		return false
	})
	return hits
}

// Sphere is a bounding-sphere query primitive.
type Sphere struct {
	Center ms3.Vec
	Radius float32
}

// IntersectSphere returns every element in t whose unit cube overlaps sphere,
// in traversal order.
func IntersectSphere[U constraints.Unsigned, E octree.Positioner[U]](t *octree.Tree[U, E], sphere Sphere) []octree.ElementID {
	var hits []octree.ElementID
	c := capability{
		nodeOverlap: func(box ms3.Box) bool { return sphereBoxOverlap(sphere, box) },
		leafHit: func(box ms3.Box) (float32, bool) {
			return 0, sphereBoxOverlap(sphere, box)
		},
	}
	traverse(t, c, func(id octree.ElementID, _ float32) bool {
		hits = append(hits, id)
		return false
	})
	return hits
}

// boxesOverlap reports whether two axis-aligned boxes intersect, including
// touching-face contact.
func boxesOverlap(a, b ms3.Box) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// sphereBoxOverlap reports whether sphere intersects box, via the squared
// distance from the sphere's center to the nearest point on box.
func sphereBoxOverlap(sphere Sphere, box ms3.Box) bool {
	d2 := sqDistAxis(sphere.Center.X, box.Min.X, box.Max.X) +
		sqDistAxis(sphere.Center.Y, box.Min.Y, box.Max.Y) +
		sqDistAxis(sphere.Center.Z, box.Min.Z, box.Max.Z)
	return d2 <= sphere.Radius*sphere.Radius
}

func sqDistAxis(c, lo, hi float32) float32 {
	switch {
	case c < lo:
		return (lo - c) * (lo - c)
	case c > hi:
		return (c - hi) * (c - hi)
	default:
		return 0
	}
}
