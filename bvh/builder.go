package bvh

import (
	"sort"
	"time"

	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/log"
)

const (
	// MaxLeafTriangles is the leaf size the builder amortizes traversal
	// against triangle-test cost for (spec §4.4). Depth-limit early
	// termination may produce larger leaves than this.
	MaxLeafTriangles = 50

	// MaxDepth bounds the worst-case recursion depth.
	MaxDepth = 15
)

type buildStats struct {
	nodes    int
	leafs    int
	maxDepth int
}

type builder struct {
	logger log.Logger

	triangles  []geom.Triangle
	triIndices []uint32
	nodes      []Node

	stats buildStats
}

// Build constructs a BVH over triangles using recursive median-split
// partitioning (spec §4.4): at each node, bounds are the union of the
// range's triangle AABBs; a leaf is emitted once the range holds at most
// MaxLeafTriangles triangles or the recursion has reached MaxDepth;
// otherwise the range is sorted by centroid along the box's longest axis
// and split at the median.
//
// Median-split trades the tighter partitions a surface-area-heuristic
// build would find for a build that needs no per-candidate scoring pass:
// deterministic, single top-to-bottom sweep, adequate for a
// rendering-adjacent picker and a radio-propagation occluder.
func Build(triangles []geom.Triangle, logger log.Logger) *Tree {
	if logger == nil {
		logger = log.New("bvh.builder")
	}

	b := &builder{
		logger:     logger,
		triangles:  triangles,
		triIndices: make([]uint32, len(triangles)),
	}
	for i := range triangles {
		b.triIndices[i] = uint32(i)
	}

	tree := &Tree{
		Triangles:   triangles,
		TriIndices:  b.triIndices,
		SceneBounds: geom.EmptyAABB(),
	}
	for _, tri := range triangles {
		tree.SceneBounds.ExpandBox(tri.Bounds())
	}

	if len(triangles) == 0 {
		tree.Nodes = b.nodes
		return tree
	}

	start := time.Now()
	root := b.partition(b.triIndices, 0)
	tree.Nodes = b.nodes
	tree.Root = root
	tree.hasRoot = true

	logger.Debugf(
		"bvh build: %d triangles, %d nodes, %d leafs, maxDepth %d, %d ms",
		len(triangles), b.stats.nodes, b.stats.leafs, b.stats.maxDepth,
		time.Since(start).Nanoseconds()/1e6,
	)
	return tree
}

// partition builds the subtree covering indices (a sub-slice of
// b.triIndices) and returns the index of its root node in b.nodes. The range is permuted in
// place, matching the "sort the index range" step of spec §4.4.
func (b *builder) partition(indices []uint32, depth int) NodeID {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	bounds := geom.EmptyAABB()
	for _, idx := range indices {
		bounds.ExpandBox(b.triangles[idx].Bounds())
	}

	if len(indices) <= MaxLeafTriangles || depth >= MaxDepth {
		return b.emitLeaf(bounds, indices)
	}

	axis := bounds.LongestAxis()
	sort.Slice(indices, func(i, j int) bool {
		return b.triangles[indices[i]].Centroid().Component(axis) <
			b.triangles[indices[j]].Centroid().Component(axis)
	})

	mid := len(indices) / 2

	nodeIndex := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, Node{Bounds: bounds})
	b.stats.nodes++

	left := b.partition(indices[:mid], depth+1)
	right := b.partition(indices[mid:], depth+1)

	b.nodes[nodeIndex].Left = left
	b.nodes[nodeIndex].Right = right

	return nodeIndex
}

func (b *builder) emitLeaf(bounds geom.AABB, indices []uint32) NodeID {
	// indices is a sub-slice of b.triIndices; its start offset within the
	// backing array is the leaf's TriStart.
	start := uint32(cap(b.triIndices) - cap(indices))

	nodeIndex := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, Node{
		Bounds:   bounds,
		IsLeaf:   true,
		TriStart: start,
		TriCount: uint32(len(indices)),
	})
	b.stats.nodes++
	b.stats.leafs++
	return nodeIndex
}
