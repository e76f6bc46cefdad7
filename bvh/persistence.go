package bvh

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/types"
)

// magic identifies the on-disk BVH cache format. There is no version
// migration: a mismatched magic is a hard load failure (spec §4.6).
var magic = [4]byte{'B', 'V', 'H', '1'}

var (
	// ErrBadMagic is returned by Load when the file does not begin with
	// the expected magic bytes.
	ErrBadMagic = errors.New("bvh: not a BVH1 file")
)

// Save writes the tree to w in the little-endian binary format shared with
// the original C++ workbench: magic, triangle table, scene bounds, then a
// pre-order encoding of the node tree. This lets a build be cached to disk
// and skipped on a subsequent run over the same mesh.
func Save(w io.Writer, t *Tree) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint64(len(t.Triangles))); err != nil {
		return err
	}
	for _, tri := range t.Triangles {
		if err := writeTriangle(bw, tri); err != nil {
			return err
		}
	}

	if err := writeVec3(bw, t.SceneBounds.Min); err != nil {
		return err
	}
	if err := writeVec3(bw, t.SceneBounds.Max); err != nil {
		return err
	}

	if err := serializeNode(bw, t, t.hasRoot, t.Root); err != nil {
		return err
	}

	return bw.Flush()
}

// Load reads a tree previously written by Save. It returns ErrBadMagic if
// the stream does not start with the expected header.
func Load(r io.Reader) (*Tree, error) {
	br := bufio.NewReader(r)

	var got [4]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return nil, err
	}
	if got != magic {
		return nil, ErrBadMagic
	}

	var triCount uint64
	if err := binary.Read(br, binary.LittleEndian, &triCount); err != nil {
		return nil, err
	}

	triangles := make([]geom.Triangle, triCount)
	for i := range triangles {
		tri, err := readTriangle(br)
		if err != nil {
			return nil, err
		}
		triangles[i] = tri
	}

	sceneMin, err := readVec3(br)
	if err != nil {
		return nil, err
	}
	sceneMax, err := readVec3(br)
	if err != nil {
		return nil, err
	}

	t := &Tree{
		Triangles:   triangles,
		SceneBounds: geom.AABB{Min: sceneMin, Max: sceneMax},
	}

	d := &decoder{r: br, tree: t}
	root, hasRoot, err := d.node()
	if err != nil {
		return nil, err
	}
	t.Root = root
	t.hasRoot = hasRoot
	t.TriIndices = d.indices

	return t, nil
}

// decoder walks a pre-order node stream, appending leaf triangle indices to
// a single flattened pool as it goes so the reconstructed Tree matches the
// index-pool layout Build produces.
type decoder struct {
	r    io.Reader
	tree *Tree

	indices []uint32
}

func serializeNode(w io.Writer, t *Tree, present bool, id NodeID) error {
	if !present {
		return binary.Write(w, binary.LittleEndian, uint8(1))
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(0)); err != nil {
		return err
	}

	node := t.Nodes[id]
	if err := writeVec3(w, node.Bounds.Min); err != nil {
		return err
	}
	if err := writeVec3(w, node.Bounds.Max); err != nil {
		return err
	}

	leafFlag := uint8(0)
	if node.IsLeaf {
		leafFlag = 1
	}
	if err := binary.Write(w, binary.LittleEndian, leafFlag); err != nil {
		return err
	}

	if node.IsLeaf {
		count := uint64(node.TriCount)
		if err := binary.Write(w, binary.LittleEndian, count); err != nil {
			return err
		}
		indices := t.TriIndices[node.TriStart : node.TriStart+node.TriCount]
		return binary.Write(w, binary.LittleEndian, indices)
	}

	if err := serializeNode(w, t, true, node.Left); err != nil {
		return err
	}
	return serializeNode(w, t, true, node.Right)
}

func (d *decoder) node() (NodeID, bool, error) {
	var isNull uint8
	if err := binary.Read(d.r, binary.LittleEndian, &isNull); err != nil {
		return 0, false, err
	}
	if isNull != 0 {
		return 0, false, nil
	}

	boundsMin, err := readVec3(d.r)
	if err != nil {
		return 0, false, err
	}
	boundsMax, err := readVec3(d.r)
	if err != nil {
		return 0, false, err
	}

	var leafFlag uint8
	if err := binary.Read(d.r, binary.LittleEndian, &leafFlag); err != nil {
		return 0, false, err
	}

	node := Node{Bounds: geom.AABB{Min: boundsMin, Max: boundsMax}}

	if leafFlag != 0 {
		var count uint64
		if err := binary.Read(d.r, binary.LittleEndian, &count); err != nil {
			return 0, false, err
		}
		indices := make([]uint32, count)
		if count > 0 {
			if err := binary.Read(d.r, binary.LittleEndian, indices); err != nil {
				return 0, false, err
			}
		}

		node.IsLeaf = true
		node.TriStart = uint32(len(d.indices))
		node.TriCount = uint32(count)
		d.indices = append(d.indices, indices...)

		id := NodeID(len(d.tree.Nodes))
		d.tree.Nodes = append(d.tree.Nodes, node)
		return id, true, nil
	}

	id := NodeID(len(d.tree.Nodes))
	d.tree.Nodes = append(d.tree.Nodes, node)

	left, _, err := d.node()
	if err != nil {
		return 0, false, err
	}
	right, _, err := d.node()
	if err != nil {
		return 0, false, err
	}

	d.tree.Nodes[id].Left = left
	d.tree.Nodes[id].Right = right
	return id, true, nil
}

func writeTriangle(w io.Writer, tri geom.Triangle) error {
	if err := writeVec3(w, tri.V0); err != nil {
		return err
	}
	if err := writeVec3(w, tri.V1); err != nil {
		return err
	}
	if err := writeVec3(w, tri.V2); err != nil {
		return err
	}
	if err := writeVec3(w, tri.Normal); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, tri.ID)
}

func readTriangle(r io.Reader) (geom.Triangle, error) {
	var tri geom.Triangle
	var err error

	if tri.V0, err = readVec3(r); err != nil {
		return tri, err
	}
	if tri.V1, err = readVec3(r); err != nil {
		return tri, err
	}
	if tri.V2, err = readVec3(r); err != nil {
		return tri, err
	}
	if tri.Normal, err = readVec3(r); err != nil {
		return tri, err
	}
	if err = binary.Read(r, binary.LittleEndian, &tri.ID); err != nil {
		return tri, err
	}
	return tri, nil
}

func writeVec3(w io.Writer, v types.Vec3) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readVec3(r io.Reader) (types.Vec3, error) {
	var v types.Vec3
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
