package bvh

import (
	"bytes"
	"testing"

	"github.com/signalwave/rfbench/geom"
	"github.com/signalwave/rfbench/types"
)

func sampleTriangles() []geom.Triangle {
	var tris []geom.Triangle
	id := uint32(0)
	for x := 0; x < 6; x++ {
		for z := 0; z < 6; z++ {
			base := types.XYZ(float32(x)*3, float32(x%2), float32(z)*3)
			tris = append(tris, geom.NewTriangle(
				base,
				base.Add(types.XYZ(2, 0, 0)),
				base.Add(types.XYZ(0, 0, 2)),
				id,
			))
			id++
		}
	}
	return tris
}

func TestSaveLoadRoundTripPreservesTopologyAndTriangles(t *testing.T) {
	original := Build(sampleTriangles(), nil)

	var buf bytes.Buffer
	if err := Save(&buf, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.HasRoot() != original.HasRoot() {
		t.Fatalf("root presence mismatch after round trip")
	}
	if len(loaded.Nodes) != len(original.Nodes) {
		t.Fatalf("expected %d nodes after round trip; got %d", len(original.Nodes), len(loaded.Nodes))
	}
	if len(loaded.Triangles) != len(original.Triangles) {
		t.Fatalf("expected %d triangles after round trip; got %d", len(original.Triangles), len(loaded.Triangles))
	}
	for i := range original.Triangles {
		if loaded.Triangles[i] != original.Triangles[i] {
			t.Fatalf("triangle %d mismatch after round trip: got %+v want %+v", i, loaded.Triangles[i], original.Triangles[i])
		}
	}
	if loaded.SceneBounds != original.SceneBounds {
		t.Fatalf("scene bounds mismatch after round trip")
	}

	for i := range original.Nodes {
		want, got := original.Nodes[i], loaded.Nodes[i]
		if want.IsLeaf != got.IsLeaf || want.TriCount != got.TriCount || want.Bounds != got.Bounds {
			t.Fatalf("node %d mismatch after round trip: got %+v want %+v", i, got, want)
		}
	}
}

func TestSaveLoadRoundTripPreservesQueryBehavior(t *testing.T) {
	original := Build(sampleTriangles(), nil)

	var buf bytes.Buffer
	if err := Save(&buf, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ray := geom.Ray{Origin: types.XYZ(1, 50, 1), Dir: types.XYZ(0, -1, 0), TMin: 1e-4, TMax: 1000}
	wantHit := original.Intersect(ray)
	gotHit := loaded.Intersect(ray)

	if wantHit.Hit != gotHit.Hit {
		t.Fatalf("hit presence mismatch: want %v got %v", wantHit.Hit, gotHit.Hit)
	}
	if wantHit.Hit && wantHit.TriangleID != gotHit.TriangleID {
		t.Fatalf("hit triangle mismatch: want %d got %d", wantHit.TriangleID, gotHit.TriangleID)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("XXXXnonsense")
	if _, err := Load(buf); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic; got %v", err)
	}
}

func TestSaveLoadEmptyTree(t *testing.T) {
	original := Build(nil, nil)

	var buf bytes.Buffer
	if err := Save(&buf, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.HasRoot() {
		t.Fatalf("expected empty tree to remain rootless after round trip")
	}
	if len(loaded.Triangles) != 0 {
		t.Fatalf("expected no triangles in round-tripped empty tree")
	}
}
