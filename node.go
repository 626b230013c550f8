package octree

import "golang.org/x/exp/constraints"

// NodeID is an opaque handle identifying a slot in a Tree's node pool.
// NodeID 0 always identifies the root. A node's own lack of a parent is
// represented by the distinct sentinel [noParent], not by 0.
type NodeID int

// hasParent reports whether id denotes an actual parent node, as opposed to the
// "no parent" sentinel used by the root.
func (id NodeID) hasParent() bool { return id != noParent }

// noParent is the sentinel NodeID meaning "this node has no parent", used only
// by the root node. It is distinguished from valid pool index 0 (the root
// itself) by never being dereferenced as a parent pointer.
const noParent NodeID = -1

// nodeKindTag discriminates the union stored in a Node.
type nodeKindTag uint8

const (
	nodeEmpty nodeKindTag = iota
	nodeLeaf
	nodeBranch
	nodeRemoved
)

// NodeKind is the sum type of a node's contents: empty, a leaf holding one
// element, a branch with eight children, or a removed/dead marker.
type NodeKind struct {
	tag      nodeKindTag
	element  ElementID   // valid iff tag == nodeLeaf
	children [8]NodeID   // valid iff tag == nodeBranch
}

// IsEmpty reports whether the node holds no element and has no children.
func (k NodeKind) IsEmpty() bool { return k.tag == nodeEmpty }

// IsLeaf reports whether the node holds exactly one element, returning its id.
func (k NodeKind) IsLeaf() (ElementID, bool) { return k.element, k.tag == nodeLeaf }

// IsBranch reports whether the node has eight children, returning them.
func (k NodeKind) IsBranch() ([8]NodeID, bool) { return k.children, k.tag == nodeBranch }

// Node is a fixed-size record in the node pool: an AABB, a parent back-pointer
// (noParent for the root), and a kind (empty/leaf/branch).
type Node[U constraints.Unsigned] struct {
	Aabb   Aabb[U]
	Parent NodeID
	Kind   NodeKind
}
