//go:build integration
// +build integration

package store

import (
	"os"
	"testing"
)

// TestMain is the entry point for store integration tests. These tests
// start a throwaway PostgreSQL container per test; Docker is a
// prerequisite.
func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
