package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// meshMagic identifies the CLI's raw (positions, indices) mesh format: a
// minimal little-endian container so build-bvh and simulate have
// something to read from disk without pulling in a mesh-import pipeline
// (out of scope for the core library, spec §6.1).
var meshMagic = [4]byte{'M', 'E', 'S', 'H'}

var errBadMeshMagic = errors.New("rfbench: not a MESH file")

func writeMeshFile(path string, positions []float32, indices []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(meshMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(positions))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, positions); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(indices))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, indices); err != nil {
		return err
	}
	return bw.Flush()
}

func readMeshFile(path string) (positions []float32, indices []uint32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)

	var got [4]byte
	if _, err := io.ReadFull(br, got[:]); err != nil {
		return nil, nil, err
	}
	if got != meshMagic {
		return nil, nil, errBadMeshMagic
	}

	var posCount uint32
	if err := binary.Read(br, binary.LittleEndian, &posCount); err != nil {
		return nil, nil, err
	}
	positions = make([]float32, posCount)
	if err := binary.Read(br, binary.LittleEndian, positions); err != nil {
		return nil, nil, err
	}

	var idxCount uint32
	if err := binary.Read(br, binary.LittleEndian, &idxCount); err != nil {
		return nil, nil, err
	}
	indices = make([]uint32, idxCount)
	if err := binary.Read(br, binary.LittleEndian, indices); err != nil {
		return nil, nil, err
	}

	return positions, indices, nil
}

// syntheticScene returns a small ground plane and a raised box, enough
// geometry to exercise the voxelizer and BVH when no mesh file is given.
func syntheticScene() (positions []float32, indices []uint32) {
	positions = []float32{
		// ground plane, y=0
		-60, 0, -60,
		60, 0, -60,
		60, 0, 60,
		-60, 0, 60,
		// raised box top face, y=15
		-10, 15, -10,
		10, 15, -10,
		10, 15, 10,
		-10, 15, 10,
	}
	indices = []uint32{
		0, 1, 2, 0, 2, 3, // ground, two triangles
		4, 5, 6, 4, 6, 7, // box top, two triangles
	}
	return positions, indices
}
