package octree

import (
	"github.com/soypat/geometry/ms3"
	"golang.org/x/exp/constraints"
)

// Vec3 is a three-component vector over an unsigned integer width U. It is the
// coordinate type for every element and node AABB stored in a [Tree].
type Vec3[U constraints.Unsigned] struct {
	X, Y, Z U
}

// SplatVec3 returns a vector with all three components set to v.
func SplatVec3[U constraints.Unsigned](v U) Vec3[U] {
	return Vec3[U]{X: v, Y: v, Z: v}
}

// Add returns the component-wise sum a+b.
func (a Vec3[U]) Add(b Vec3[U]) Vec3[U] {
	return Vec3[U]{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

// Sub returns the component-wise difference a-b.
func (a Vec3[U]) Sub(b Vec3[U]) Vec3[U] {
	return Vec3[U]{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

// Equal reports whether a and b have identical components.
func (a Vec3[U]) Equal(b Vec3[U]) bool {
	return a.X == b.X && a.Y == b.Y && a.Z == b.Z
}

// GreaterEq returns, per axis, whether a's component is >= b's. Used to derive
// octant indices (see [Aabb.Octant]).
func (a Vec3[U]) GreaterEq(b Vec3[U]) (x, y, z bool) {
	return a.X >= b.X, a.Y >= b.Y, a.Z >= b.Z
}

// Float converts v to a [ms3.Vec] of matching geometry, for use by the query subpackage.
func (v Vec3[U]) Float() ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// addOverflows reports whether a+b overflows U, with one exception: landing
// exactly on the type's modulus (wrapping to 0) is accepted, since that is the
// well-defined "one past the maximum representable value" used by a root AABB
// that spans the type's full range (center == half_size).
func addOverflows[U constraints.Unsigned](a, b U) bool {
	sum := a + b
	return sum < a && sum != 0
}

// subUnderflows reports whether a-b underflows U (i.e. b > a).
func subUnderflows[U constraints.Unsigned](a, b U) bool {
	return b > a
}

// isPowerOfTwo reports whether v is a power of two. Zero is not a power of two.
func isPowerOfTwo[U constraints.Unsigned](v U) bool {
	return v != 0 && v&(v-1) == 0
}
