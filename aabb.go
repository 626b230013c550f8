package octree

import (
	"fmt"

	"github.com/soypat/geometry/ms3"
	"golang.org/x/exp/constraints"
)

// Aabb is an axis-aligned cube: all three axes share the same half extent.
// Containment is half-open on the upper face: a point p is inside iff, per axis,
// Center-HalfSize <= p < Center+HalfSize.
type Aabb[U constraints.Unsigned] struct {
	Center   Vec3[U]
	HalfSize U
}

// NewAabb constructs an Aabb, failing with ErrOverflow if center < halfSize on
// any axis, or if center+halfSize wraps U to anything other than exactly 0 (the
// latter is allowed since it is how a root spanning the type's full range is
// expressed: center == halfSize).
func NewAabb[U constraints.Unsigned](center Vec3[U], halfSize U) (Aabb[U], error) {
	if addOverflows(center.X, halfSize) || addOverflows(center.Y, halfSize) || addOverflows(center.Z, halfSize) ||
		subUnderflows(center.X, halfSize) || subUnderflows(center.Y, halfSize) || subUnderflows(center.Z, halfSize) {
		return Aabb[U]{}, fmt.Errorf("octree: new aabb: %w", ErrOverflow)
	}
	return Aabb[U]{Center: center, HalfSize: halfSize}, nil
}

// Contains reports whether p lies inside the box under the half-open-on-the-upper-face rule.
// The comparison is done per axis without ever materializing center-half_size
// or center+half_size, so a root spanning the type's full range (for which
// center+half_size wraps to 0) is still tested correctly.
func (a Aabb[U]) Contains(p Vec3[U]) bool {
	return containsAxis(p.X, a.Center.X, a.HalfSize) &&
		containsAxis(p.Y, a.Center.Y, a.HalfSize) &&
		containsAxis(p.Z, a.Center.Z, a.HalfSize)
}

// containsAxis reports whether p is in [center-half, center+half) on one axis.
// p >= center reduces the test to p-center < half; p < center reduces it to
// center-p <= half. Both subtractions are between a value and something no
// larger than it, so neither can underflow or overflow U.
func containsAxis[U constraints.Unsigned](p, center, half U) bool {
	if p >= center {
		return p-center < half
	}
	return center-p <= half
}

// Octant returns the 3-bit octant index of p with respect to a's center:
// bit 0 is set if p.X >= center.X, bit 1 for Y, bit 2 for Z. p is assumed to
// already be inside a; callers that need the bounds check should use Contains first.
func (a Aabb[U]) Octant(p Vec3[U]) uint8 {
	gx, gy, gz := p.GreaterEq(a.Center)
	var idx uint8
	if gx {
		idx |= 1 << 0
	}
	if gy {
		idx |= 1 << 1
	}
	if gz {
		idx |= 1 << 2
	}
	return idx
}

// Splittable reports whether a can be subdivided into eight half-size children:
// HalfSize must be a power of two of at least 2.
func (a Aabb[U]) Splittable() bool {
	return a.HalfSize >= 2 && isPowerOfTwo(a.HalfSize)
}

// Split subdivides a into its eight child octants, ordered by octant index
// (see Octant): bit 0 selects +X vs -X, bit 1 +Y vs -Y, bit 2 +Z vs -Z.
// Split panics if a is not Splittable; callers must check first.
func (a Aabb[U]) Split() [8]Aabb[U] {
	if !a.Splittable() {
		panic("octree: split of non-splittable aabb")
	}
	childHalf := a.HalfSize / 2
	var children [8]Aabb[U]
	for octant := range children {
		children[octant] = childAabb(a.Center, childHalf, octant)
	}
	return children
}

// childAabb computes the center of the octant-th child of a cube with the given
// parent center and child half-size, without relying on signed subtraction
// (U is unsigned, so negative offsets are applied via Sub rather than negation).
func childAabb[U constraints.Unsigned](parentCenter Vec3[U], childHalf U, octant int) Aabb[U] {
	c := parentCenter
	if octant&1 != 0 {
		c.X += childHalf
	} else {
		c.X -= childHalf
	}
	if octant&2 != 0 {
		c.Y += childHalf
	} else {
		c.Y -= childHalf
	}
	if octant&4 != 0 {
		c.Z += childHalf
	} else {
		c.Z -= childHalf
	}
	return Aabb[U]{Center: c, HalfSize: childHalf}
}

// Float converts a to a float32 [ms3.Box] with identical geometry, for use by
// the query subpackage's floating-point primitives.
func (a Aabb[U]) Float() ms3.Box {
	c := a.Center.Float()
	h := float32(a.HalfSize)
	return ms3.Box{
		Min: ms3.Vec{X: c.X - h, Y: c.Y - h, Z: c.Z - h},
		Max: ms3.Vec{X: c.X + h, Y: c.Y + h, Z: c.Z + h},
	}
}
