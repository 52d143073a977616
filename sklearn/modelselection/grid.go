package modelselection

// Params is one hyperparameter combination drawn from a ParamGrid.
type Params struct {
	MaxDepth int
	MaxBins  int
}

// ParamGrid enumerates the cartesian product of candidate tree depths
// and histogram bin counts.
type ParamGrid struct {
	MaxDepth []int
	MaxBins  []int
}

// Combinations expands the grid in depth-major order: all bin counts for
// the first depth, then for the second, and so on. The order is stable,
// so ties in search scores resolve to the earliest combination.
func (g ParamGrid) Combinations() []Params {
	combos := make([]Params, 0, len(g.MaxDepth)*len(g.MaxBins))
	for _, depth := range g.MaxDepth {
		for _, bins := range g.MaxBins {
			combos = append(combos, Params{MaxDepth: depth, MaxBins: bins})
		}
	}
	return combos
}

// Size returns the number of combinations in the grid.
func (g ParamGrid) Size() int {
	return len(g.MaxDepth) * len(g.MaxBins)
}
