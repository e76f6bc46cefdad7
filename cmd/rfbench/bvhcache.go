package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/signalwave/rfbench/bvh"
	"github.com/signalwave/rfbench/geom"
)

// bvhCachePath follows the .bvh-next-to-the-mesh convention (spec §6.2):
// an empty meshPath (the built-in synthetic scene) caches to
// "synthetic.bvh".
func bvhCachePath(meshPath string) string {
	if meshPath == "" {
		return "synthetic.bvh"
	}
	return strings.TrimSuffix(meshPath, ".mesh") + ".bvh"
}

// loadCachedBVH implements the load-on-start half of spec §6.2's cache
// policy. ok is false, with a nil error, when cachePath simply doesn't
// exist yet — that's a cache miss, not a failure.
func loadCachedBVH(cachePath string) (tree *bvh.Tree, ok bool, err error) {
	f, err := os.Open(cachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	tree, err = bvh.Load(f)
	if err != nil {
		return nil, false, err
	}
	return tree, true, nil
}

// saveBVHCache implements the build-and-save-on-miss half of spec §6.2's
// cache policy.
func saveBVHCache(cachePath string, tree *bvh.Tree) error {
	f, err := os.Create(cachePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return bvh.Save(f, tree)
}

// loadSceneWithBVH reads geometry from meshPath (or the built-in demo
// scene when meshPath is empty) and its BVH, hitting the on-disk .bvh
// cache when one exists and building-and-saving one when it doesn't
// (spec §6.2).
func loadSceneWithBVH(meshPath string) (positions []float32, indices []uint32, tree *bvh.Tree, err error) {
	if meshPath != "" {
		positions, indices, err = readMeshFile(meshPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("reading mesh %s: %w", meshPath, err)
		}
	} else {
		positions, indices = syntheticScene()
	}

	cachePath := bvhCachePath(meshPath)

	cached, ok, err := loadCachedBVH(cachePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading cached %s: %w", cachePath, err)
	}
	if ok {
		logger.Noticef("loaded cached %s (%d triangles)", cachePath, len(cached.Triangles))
		return positions, indices, cached, nil
	}

	triangles := geom.TrianglesFromMesh(positions, indices)
	tree = bvh.Build(triangles, logger)
	if err := saveBVHCache(cachePath, tree); err != nil {
		return nil, nil, nil, fmt.Errorf("saving %s: %w", cachePath, err)
	}
	return positions, indices, tree, nil
}
