//go:build !opencl

package openclstep

import "testing"

func TestNewFailsWithoutOpenCLBuildTag(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected New to fail when built without the opencl tag")
	}
}
