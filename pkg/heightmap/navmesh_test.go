package heightmap

import "testing"

func TestExtractNavMesh_FlatWalkableGridProducesQuads(t *testing.T) {
	cols, rows := 17, 17
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for i := range g.Flags {
		g.Flags[i] = FlagPlayable
		g.Height[i] = 1.0
	}

	mesh := ExtractNavMesh(g, 1.0, 8, 1.0)
	if len(mesh.Vertices) == 0 {
		t.Fatal("expected at least one vertex on an all-walkable flat grid")
	}
	if len(mesh.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(mesh.Indices))
	}
	if len(mesh.Indices) == 0 {
		t.Fatal("expected at least one triangle")
	}
	for _, idx := range mesh.Indices {
		if int(idx) >= len(mesh.Vertices) {
			t.Fatalf("index %d out of range (vertex count %d)", idx, len(mesh.Vertices))
		}
	}
}

func TestExtractNavMesh_BlockedQuadSkipped(t *testing.T) {
	cols, rows := 17, 17
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for i := range g.Flags {
		g.Flags[i] = FlagBlocked
	}

	mesh := ExtractNavMesh(g, 1.0, 8, 1.0)
	if len(mesh.Vertices) != 0 || len(mesh.Indices) != 0 {
		t.Fatalf("expected empty navmesh when every cell is blocked, got %d verts / %d indices",
			len(mesh.Vertices), len(mesh.Indices))
	}
}

func TestExtractNavMesh_ExcessiveHeightSpreadSkipsQuad(t *testing.T) {
	cols, rows := 17, 17
	g, err := NewGrid(cols, rows)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for i := range g.Flags {
		g.Flags[i] = FlagPlayable
	}
	// One corner of the first quad spikes far above the step limit.
	g.At(8, 8).SetHeight(100)

	mesh := ExtractNavMesh(g, 1.0, 8, 1.0)
	for _, v := range mesh.Vertices {
		if v.Y == 100 {
			t.Fatal("spiked corner should have caused its quad to be skipped")
		}
	}
}
