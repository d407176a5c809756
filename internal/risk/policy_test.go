package risk

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPolicySize(t *testing.T) {
	policy := Policy{MinOrderUSD: 0.1, MaxOrderUSD: 25, MaxEdgeSize: 1.0}

	cases := []struct {
		name         string
		edgeSize     float64
		baseUSD      float64
		wantSize     float64
		wantWarnings []string
	}{
		{"within limits", 0.4, 10, 4, nil},
		{"edge size capped", 1.5, 10, 10, []string{"edge_size_cap"}},
		{"max order capped", 0.9, 100, 25, []string{"max_order_cap"}},
		{"min order floored", 0.04, 1, 0.1, []string{"min_order_floor"}},
		{"negative edge treated as zero", -0.5, 10, 0.1, []string{"min_order_floor"}},
		{"both caps stack", 2.0, 100, 25, []string{"edge_size_cap", "max_order_cap"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			size, warnings := policy.Size(tc.edgeSize, tc.baseUSD)
			if !almostEqual(size, tc.wantSize) {
				t.Fatalf("size=%v want=%v", size, tc.wantSize)
			}
			if len(warnings) != len(tc.wantWarnings) {
				t.Fatalf("warnings=%v want=%v", warnings, tc.wantWarnings)
			}
			for i := range warnings {
				if warnings[i] != tc.wantWarnings[i] {
					t.Fatalf("warnings=%v want=%v", warnings, tc.wantWarnings)
				}
			}
		})
	}
}

func TestPolicyZeroValueClampsNothing(t *testing.T) {
	var policy Policy
	size, warnings := policy.Size(3.0, 100)
	if !almostEqual(size, 300) {
		t.Fatalf("size=%v want=300", size)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings=%v want none", warnings)
	}
}
