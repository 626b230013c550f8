package octree

import "golang.org/x/exp/constraints"

// ElementID is an opaque handle identifying a slot in a Tree's element pool.
type ElementID int

// Positioner is the capability the stored payload must expose: a stable
// integer position for the lifetime of the element's membership in the tree.
// Mutating a stored element's position after insertion is undefined behavior
// at the contract level — no invariant is maintained if it changes.
type Positioner[U constraints.Unsigned] interface {
	Position() Vec3[U]
}

// element is the element-pool record: the caller's payload plus a back-pointer
// to the leaf node currently holding it.
type element[U constraints.Unsigned, E Positioner[U]] struct {
	payload E
	node    NodeID
}
