// Package testassets hands tests a temporary copy of the assettest tree.
package testassets

import (
	"testing"

	"mc-bake/internal/assettest"
)

// Dir writes the fixture tree into a per-test temporary directory.
func Dir(tb testing.TB) string {
	tb.Helper()
	root := tb.TempDir()
	if err := assettest.Write(root); err != nil {
		tb.Fatalf("write assets: %v", err)
	}
	return root
}
