// Package query implements the floating-point geometric queries (ray cast,
// AABB overlap, sphere overlap) against an [octree.Tree]'s integer node AABBs.
// It is kept separate from the octree package so that callers who only need
// the integer index (construction, insert/find/remove, iteration) are not
// forced to pull in the float vector dependency.
package query

import (
	"math/bits"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/octree"
	"golang.org/x/exp/constraints"
)

// capability is the shared shape of a traversal: a node-level prune test, a
// leaf-level hit test, and a child visitation order. Ray cast and the two
// overlap queries are all expressed as one of these rather than as an
// interface hierarchy.
type capability struct {
	// nodeOverlap reports whether the query can possibly match anything
	// inside nodeBox; returning false prunes the whole subtree.
	nodeOverlap func(nodeBox ms3.Box) bool
	// leafHit tests a leaf's unit-cube footprint (see unitCube) against the
	// query, returning a hit distance (query-defined units) and whether it hit.
	leafHit func(elemBox ms3.Box) (distance float32, hit bool)
	// childOrder, if non-nil, returns the visitation order (by octant index)
	// for a branch's eight children given that branch's float-space box.
	childOrder func(nodeBox ms3.Box) [8]int
}

// identityOrder visits children in plain octant order; used by queries that
// never prune based on traversal order (the two overlap queries).
func identityOrder(ms3.Box) [8]int {
	return [8]int{0, 1, 2, 3, 4, 5, 6, 7}
}

// unitCube returns the footprint an element occupies for the purposes of
// geometric queries: the half-open lattice cell [pos, pos+1) on each axis,
// the same cell the integer octree places the point in (see octree.Aabb.Contains).
// Float-space overlap/slab tests below treat the upper bound as closed, since
// float comparisons have no exact-boundary concern the way the integer index does.
func unitCube(pos ms3.Vec) ms3.Box {
	return ms3.Box{
		Min: pos,
		Max: ms3.Vec{X: pos.X + 1, Y: pos.Y + 1, Z: pos.Z + 1},
	}
}

// traverse performs a depth-first, explicit-stack descent of t, pruning by
// cap.nodeOverlap and testing leaves with cap.leafHit. aggregate receives each
// leaf hit and may return true to stop the traversal entirely.
func traverse[U constraints.Unsigned, E octree.Positioner[U]](t *octree.Tree[U, E], cap capability, aggregate func(id octree.ElementID, distance float32) (stop bool)) {
	order := cap.childOrder
	if order == nil {
		order = identityOrder
	}
	stack := make([]octree.NodeID, 0, 16)
	stack = append(stack, t.RootID())
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok := t.Node(id)
		if !ok {
			continue
		}
		nodeBox := node.Aabb.Float()
		if !cap.nodeOverlap(nodeBox) {
			continue
		}

		if elemID, isLeaf := node.Kind.IsLeaf(); isLeaf {
			pos, ok := t.ElementPosition(elemID)
			if !ok {
				continue
			}
			distance, hit := cap.leafHit(unitCube(pos.Float()))
			if !hit {
				continue
			}
			if aggregate(elemID, distance) {
				return
			}
			continue
		}

		children, isBranch := node.Kind.IsBranch()
		if !isBranch {
			continue
		}
		visit := order(nodeBox)
		for i := 7; i >= 0; i-- { // push in reverse so first-in-order pops first
			stack = append(stack, children[visit[i]])
		}
	}
}

// nearOctantOrder ranks the eight octants by how many axes diverge from the
// octant a ray direction would enter first, ascending — closer octants are
// visited before farther ones. Correctness never depends on this order (the
// nodeOverlap prune test is what guarantees correctness); it only affects how
// quickly a tight best-distance bound is established.
func nearOctantOrder(dir ms3.Vec) [8]int {
	var near uint8
	if dir.X < 0 {
		near |= 1 << 0
	}
	if dir.Y < 0 {
		near |= 1 << 1
	}
	if dir.Z < 0 {
		near |= 1 << 2
	}
	order := [8]int{0, 1, 2, 3, 4, 5, 6, 7}
	// Stable-sort by Hamming distance to `near`; 8 elements, insertion sort is plenty.
	key := func(octant int) int { return bits.OnesCount8(uint8(octant) ^ near) }
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && key(order[j]) < key(order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}
