// Package bvh implements a bounding volume hierarchy over triangle soup:
// a median-split builder, closest-hit/any-hit ray queries, and a binary
// persistence format for the built tree.
package bvh

import "github.com/signalwave/rfbench/geom"

// NodeID indexes into a Tree's Nodes slice. The zero value is the root of
// any non-empty tree; per the design note in spec §9, the tree is stored
// as a flat pool rather than a graph of owning pointers. Save does not
// write Nodes verbatim: it walks the tree and writes a pre-order encoding.
type NodeID uint32

// Node is either a leaf holding a contiguous run of triangle indices, or
// an internal node with exactly two children. Bounds always encloses the
// union of whatever it owns.
type Node struct {
	Bounds geom.AABB

	IsLeaf bool

	// Leaf fields: [TriStart, TriStart+TriCount) indexes into the owning
	// Tree's TriIndices slice.
	TriStart uint32
	TriCount uint32

	// Internal fields.
	Left, Right NodeID
}

// Tree is a built BVH: an index pool of nodes, the triangle data they
// reference, and the permutation of triangle indices leaves point into.
type Tree struct {
	Triangles []geom.Triangle
	TriIndices []uint32
	Nodes      []Node

	// Root is the index of the root node in Nodes. Empty (zero-triangle)
	// trees have no root; HasRoot reports false for them.
	Root    NodeID
	hasRoot bool

	SceneBounds geom.AABB
}

// HasRoot reports whether the tree contains any geometry.
func (t *Tree) HasRoot() bool {
	return t.hasRoot
}
