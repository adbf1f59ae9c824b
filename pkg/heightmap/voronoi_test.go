package heightmap

import "testing"

func TestNewClusterField_ProducesAtLeastOneRegion(t *testing.T) {
	cf := newClusterField(64, 64, 32, 1, 0.5)
	if len(cf.seeds) == 0 {
		t.Fatal("expected at least one cluster region")
	}
	if len(cf.active) != len(cf.seeds) {
		t.Fatalf("active flags len = %d, want %d (one per seed)", len(cf.active), len(cf.seeds))
	}
}

func TestNewClusterField_ZeroClusterSizeFallsBackToDefault(t *testing.T) {
	cf := newClusterField(64, 64, 0, 1, 0.5)
	if len(cf.seeds) == 0 {
		t.Fatal("expected clusterSize<=0 to fall back to a default rather than divide by zero")
	}
}

func TestClusterField_Bias_StaysInUnitRange(t *testing.T) {
	cf := newClusterField(32, 32, 16, 7, 0.5)
	for y := 0; y < 32; y += 4 {
		for x := 0; x < 32; x += 4 {
			got := cf.bias(x, y, 0.5)
			if got < 0 || got > 1 {
				t.Fatalf("bias(%d,%d) = %v, want in [0,1]", x, y, got)
			}
		}
	}
}

func TestClusterField_Bias_Deterministic(t *testing.T) {
	a := newClusterField(48, 48, 16, 42, 0.4)
	b := newClusterField(48, 48, 16, 42, 0.4)
	for y := 0; y < 48; y += 6 {
		for x := 0; x < 48; x += 6 {
			if a.bias(x, y, 0.5) != b.bias(x, y, 0.5) {
				t.Fatalf("same seed should produce identical cluster bias at (%d,%d)", x, y)
			}
		}
	}
}
