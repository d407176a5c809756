// Package risk bounds order sizing. Whatever the edge math suggests, the
// policy keeps a single order inside configured dollar limits.
package risk

// Policy holds the sizing limits. Zero or negative fields disable the
// corresponding check, so the zero value clamps nothing.
type Policy struct {
	MinOrderUSD float64
	MaxOrderUSD float64
	MaxEdgeSize float64
}

// Size converts an edge-derived sizing fraction into a dollar order size.
// It caps the fraction at MaxEdgeSize, scales by baseUSD, then clamps the
// result into [MinOrderUSD, MaxOrderUSD]. Warnings name each applied limit.
func (p Policy) Size(edgeSize, baseUSD float64) (float64, []string) {
	var warnings []string

	if edgeSize < 0 {
		edgeSize = 0
	}
	if p.MaxEdgeSize > 0 && edgeSize > p.MaxEdgeSize {
		edgeSize = p.MaxEdgeSize
		warnings = append(warnings, "edge_size_cap")
	}

	size := edgeSize * baseUSD
	if p.MaxOrderUSD > 0 && size > p.MaxOrderUSD {
		size = p.MaxOrderUSD
		warnings = append(warnings, "max_order_cap")
	}
	if p.MinOrderUSD > 0 && size < p.MinOrderUSD {
		size = p.MinOrderUSD
		warnings = append(warnings, "min_order_floor")
	}
	return size, warnings
}
