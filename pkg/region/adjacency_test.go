package region

import (
	"os"
	"path/filepath"
	"testing"
)

const adjacencyYAML = `
neighbors:
  Kerala: [Karnataka, "Tamil Nadu"]
  Karnataka: [Goa]
centroids:
  Kerala: {lat: 10.85, lon: 76.27}
  Karnataka: {lat: 15.32, lon: 75.71}
`

func writeAdjacency(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "adjacency.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write adjacency file: %v", err)
	}
	return path
}

func TestLoadAdjacency(t *testing.T) {
	adj, err := LoadAdjacency(writeAdjacency(t, adjacencyYAML))
	if err != nil {
		t.Fatalf("LoadAdjacency failed: %v", err)
	}

	if !adj.Neighbors("Kerala", "Karnataka") {
		t.Error("expected Kerala-Karnataka contiguity")
	}
	// Symmetry is completed even when the file lists only one direction.
	if !adj.Neighbors("Goa", "Karnataka") {
		t.Error("expected contiguity to be symmetric")
	}
	if adj.Neighbors("Kerala", "Goa") {
		t.Error("Kerala and Goa are not contiguous")
	}

	if !adj.HasNeighborData("Tamil Nadu") {
		t.Error("expected Tamil Nadu to appear via symmetric completion")
	}
	if adj.HasNeighborData("Assam") {
		t.Error("did not expect neighbor data for Assam")
	}

	c, ok := adj.CentroidOf("Kerala")
	if !ok || c.Lat != 10.85 {
		t.Errorf("unexpected Kerala centroid %v (ok=%v)", c, ok)
	}
	if _, ok := adj.CentroidOf("Goa"); ok {
		t.Error("did not expect a Goa centroid")
	}
}

func TestLoadAdjacencyEmptyPath(t *testing.T) {
	adj, err := LoadAdjacency("")
	if err != nil {
		t.Fatalf("LoadAdjacency(\"\") failed: %v", err)
	}
	if adj.HasNeighborData("Kerala") {
		t.Error("expected no data for empty path")
	}
}

func TestLoadAdjacencyMissingFile(t *testing.T) {
	if _, err := LoadAdjacency(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAdjacencyMalformedYAML(t *testing.T) {
	path := writeAdjacency(t, "neighbors: [not, a, map]")
	if _, err := LoadAdjacency(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
