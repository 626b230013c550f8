package octree

import (
	"fmt"
	"iter"

	"golang.org/x/exp/constraints"
)

// Tree is a point-indexed octree: each live element occupies the unique leaf
// whose AABB contains its integer position. It is not safe for concurrent use;
// mutating methods (Insert, Remove, Clear, Reset) and read methods (Find,
// RayCast-style queries in the query subpackage) must not overlap.
type Tree[U constraints.Unsigned, E Positioner[U]] struct {
	nodes    *Pool[Node[U]]
	elems    *Pool[element[U, E]]
	rootAabb Aabb[U]
}

// NewFromAABB constructs an empty Tree bounded by root. root.HalfSize must be
// a power of two.
func NewFromAABB[U constraints.Unsigned, E Positioner[U]](root Aabb[U]) (*Tree[U, E], error) {
	return NewFromAABBWithCapacity[U, E](root, 0)
}

// NewFromAABBWithCapacity is like NewFromAABB but pre-sizes both internal pools
// to hold n entries without reallocating.
func NewFromAABBWithCapacity[U constraints.Unsigned, E Positioner[U]](root Aabb[U], n int) (*Tree[U, E], error) {
	if err := validateRoot(root); err != nil {
		return nil, fmt.Errorf("octree: new: %w", err)
	}
	t := &Tree[U, E]{
		nodes:    NewPool[Node[U]](n),
		elems:    NewPool[element[U, E]](n),
		rootAabb: root,
	}
	t.installRoot()
	return t, nil
}

// validateRoot checks the §3 Aabb invariants for a tree's root: HalfSize must
// be a power of two (so it is subdivisible), and Center±HalfSize must not
// wrap U on any axis (the one allowed exception, the full-range root where
// Center == HalfSize, is accepted by addOverflows itself).
func validateRoot[U constraints.Unsigned](root Aabb[U]) error {
	if !isPowerOfTwo(root.HalfSize) {
		return fmt.Errorf("root half-size %v is not a power of two: %w", root.HalfSize, ErrOverflow)
	}
	c, h := root.Center, root.HalfSize
	if addOverflows(c.X, h) || addOverflows(c.Y, h) || addOverflows(c.Z, h) ||
		subUnderflows(c.X, h) || subUnderflows(c.Y, h) || subUnderflows(c.Z, h) {
		return fmt.Errorf("root center %v half-size %v overflows the coordinate type: %w", c, h, ErrOverflow)
	}
	return nil
}

// installRoot resets the node pool's root slot. Only valid to call right after
// t.nodes has been cleared (by construction or Clear/Reset).
func (t *Tree[U, E]) installRoot() {
	idx := t.nodes.Insert(Node[U]{Aabb: t.rootAabb, Parent: noParent, Kind: NodeKind{tag: nodeEmpty}})
	if idx != 0 {
		panic("octree: internal: root must occupy node pool slot 0")
	}
}

// RootID returns the NodeID of the root node, always 0.
func (t *Tree[U, E]) RootID() NodeID { return 0 }

// Node returns the node stored at id, and whether it is live.
func (t *Tree[U, E]) Node(id NodeID) (Node[U], bool) {
	return t.nodes.Get(int(id))
}

// ElementPosition returns the stored position of element id, and whether it is live.
func (t *Tree[U, E]) ElementPosition(id ElementID) (Vec3[U], bool) {
	el, ok := t.elems.Get(int(id))
	if !ok {
		return Vec3[U]{}, false
	}
	return el.payload.Position(), true
}

// Element returns the payload stored at id, and whether it is live.
func (t *Tree[U, E]) Element(id ElementID) (E, bool) {
	el, ok := t.elems.Get(int(id))
	if !ok {
		var zero E
		return zero, false
	}
	return el.payload, true
}

// Insert places payload in the tree at its reported position, subdividing
// leaves as needed. It fails with ErrOutOfBounds, ErrObjectExists or
// ErrUnsplittable without mutating the tree.
func (t *Tree[U, E]) Insert(payload E) (ElementID, error) {
	p := payload.Position()
	root, _ := t.nodes.Get(0)
	if !root.Aabb.Contains(p) {
		return 0, fmt.Errorf("octree: insert: %w", ErrOutOfBounds)
	}

	cur := NodeID(0)
	for {
		curNode, _ := t.nodes.Get(int(cur))
		switch curNode.Kind.tag {
		case nodeBranch:
			children, _ := curNode.Kind.IsBranch()
			cur = children[curNode.Aabb.Octant(p)]

		case nodeEmpty:
			elemID := ElementID(t.elems.Insert(element[U, E]{payload: payload, node: cur}))
			t.nodes.GetMut(int(cur)).Kind = NodeKind{tag: nodeLeaf, element: elemID}
			return elemID, nil

		case nodeLeaf:
			existingID, _ := curNode.Kind.IsLeaf()
			existingElem, _ := t.elems.Get(int(existingID))
			existingPos := existingElem.payload.Position()
			if existingPos.Equal(p) {
				return 0, fmt.Errorf("octree: insert: %w", ErrObjectExists)
			}
			// Decide up front whether splitting can ever separate the two
			// points, without allocating anything. This guarantees every
			// split performed below succeeds, so a failed Insert never
			// leaves behind partially subdivided structure to roll back.
			if !separable(curNode.Aabb, existingPos, p) {
				return 0, fmt.Errorf("octree: insert: %w", ErrUnsplittable)
			}

			childAabbs := curNode.Aabb.Split()
			var childIDs [8]NodeID
			for i := range childAabbs {
				childIDs[i] = NodeID(t.nodes.Insert(Node[U]{Aabb: childAabbs[i], Parent: cur, Kind: NodeKind{tag: nodeEmpty}}))
			}

			// Re-fetch after the inserts above, which may have reallocated the node pool's backing slice.
			curPtr := t.nodes.GetMut(int(cur))
			curPtr.Kind = NodeKind{tag: nodeBranch, children: childIDs}

			existingOctant := curPtr.Aabb.Octant(existingPos)
			existingChildID := childIDs[existingOctant]
			t.nodes.GetMut(int(existingChildID)).Kind = NodeKind{tag: nodeLeaf, element: existingID}
			t.elems.GetMut(int(existingID)).node = existingChildID
			// Resume descent into the now-branch node with the new point.

		case nodeRemoved:
			panic("octree: internal: descended into a removed node")
		}
	}
}

// separable reports whether repeatedly splitting box would eventually place a
// and b (two distinct points both contained in box) in different child cells,
// simulating the same octant-selection and subdivision Insert performs but
// without allocating any nodes. It returns false only once a cell that still
// contains both points can no longer be split (HalfSize 1).
func separable[U constraints.Unsigned](box Aabb[U], a, b Vec3[U]) bool {
	for {
		if !box.Splittable() {
			return false
		}
		octA, octB := box.Octant(a), box.Octant(b)
		if octA != octB {
			return true
		}
		box = childAabb(box.Center, box.HalfSize/2, int(octA))
	}
}

// Find returns the element stored exactly at point, if any.
func (t *Tree[U, E]) Find(point Vec3[U]) (ElementID, bool) {
	root, _ := t.nodes.Get(0)
	if !root.Aabb.Contains(point) {
		return 0, false
	}
	cur := NodeID(0)
	for {
		node, _ := t.nodes.Get(int(cur))
		switch node.Kind.tag {
		case nodeBranch:
			children, _ := node.Kind.IsBranch()
			cur = children[node.Aabb.Octant(point)]
		case nodeLeaf:
			id, _ := node.Kind.IsLeaf()
			elem, _ := t.elems.Get(int(id))
			if elem.payload.Position().Equal(point) {
				return id, true
			}
			return 0, false
		default:
			return 0, false
		}
	}
}

// Remove deletes the element identified by id and collapses any ancestor
// branch whose eight children have all become empty leaves. It fails with
// ErrNotFound if id does not identify a live element.
func (t *Tree[U, E]) Remove(id ElementID) error {
	elem, err := t.elems.Remove(int(id))
	if err != nil {
		return fmt.Errorf("octree: remove: %w", err)
	}
	t.nodes.GetMut(int(elem.node)).Kind = NodeKind{tag: nodeEmpty}

	cur := elem.node
	for {
		curNode, _ := t.nodes.Get(int(cur))
		if !curNode.Parent.hasParent() {
			return nil // reached the root; it is never collapsed away.
		}
		parentID := curNode.Parent
		parentNode, _ := t.nodes.Get(int(parentID))
		children, isBranch := parentNode.Kind.IsBranch()
		if !isBranch {
			return nil
		}
		for _, c := range children {
			cn, _ := t.nodes.Get(int(c))
			if !cn.Kind.IsEmpty() {
				return nil
			}
		}
		for _, c := range children {
			t.nodes.Remove(int(c))
		}
		t.nodes.GetMut(int(parentID)).Kind = NodeKind{tag: nodeEmpty}
		cur = parentID
	}
}

// Clear removes every element and node, reinstalling an empty root with the
// original bounding box. All outstanding ElementID/NodeID handles are invalidated.
func (t *Tree[U, E]) Clear() {
	t.nodes.Clear()
	t.elems.Clear()
	t.installRoot()
}

// Reset is like Clear but additionally re-homes the tree into a new root AABB,
// reusing the pools' existing backing-array capacity. root.HalfSize must be a
// power of two.
func (t *Tree[U, E]) Reset(root Aabb[U]) error {
	if err := validateRoot(root); err != nil {
		return fmt.Errorf("octree: reset: %w", err)
	}
	t.nodes.Clear()
	t.elems.Clear()
	t.rootAabb = root
	t.installRoot()
	return nil
}

// Len returns the number of live elements.
func (t *Tree[U, E]) Len() int { return t.elems.Len() }

// All iterates live elements in pool-slot order (not spatial order).
func (t *Tree[U, E]) All() iter.Seq2[ElementID, E] {
	return func(yield func(ElementID, E) bool) {
		for idx, el := range t.elems.All() {
			if !yield(ElementID(idx), el.payload) {
				return
			}
		}
	}
}

// Depth returns the tree's current maximum live depth: the root alone is
// depth 0, and each level of subdivision adds 1.
func (t *Tree[U, E]) Depth() int {
	type frame struct {
		id    NodeID
		depth int
	}
	maxDepth := 0
	stack := []frame{{0, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxDepth {
			maxDepth = f.depth
		}
		node, ok := t.nodes.Get(int(f.id))
		if !ok {
			continue
		}
		if children, isBranch := node.Kind.IsBranch(); isBranch {
			for _, c := range children {
				stack = append(stack, frame{c, f.depth + 1})
			}
		}
	}
	return maxDepth
}

// Stats reports the live and capacity counts of the two backing pools.
type Stats struct {
	NodesLive    int
	NodesCap     int
	ElementsLive int
	ElementsCap  int
}

// Stats returns a snapshot of pool occupancy, useful for diagnostics.
func (t *Tree[U, E]) Stats() Stats {
	return Stats{
		NodesLive:    t.nodes.Len(),
		NodesCap:     t.nodes.Cap(),
		ElementsLive: t.elems.Len(),
		ElementsCap:  t.elems.Cap(),
	}
}
