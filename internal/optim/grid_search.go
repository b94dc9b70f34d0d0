package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mowsim/internal/sim"
)

// Objective scores a finished run; lower is better.
type Objective func(out *sim.Output[any]) float64

// Metric minimizes a named metric reported by the run.
func Metric(name string) Objective {
	return func(out *sim.Output[any]) float64 {
		v, ok := out.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// Ticks minimizes the number of ticks the run took, which for an Indefinite
// run is the time to finish the script.
func Ticks() Objective {
	return func(out *sim.Output[any]) float64 { return float64(out.Ticks()) }
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns the best one. Points whose
// run fails are skipped; if all fail, the last error is returned.
func (g *GridSearch) Search(
	ctx context.Context,
	run func(ctx context.Context, params map[string]float64) (*sim.Output[any], error),
	objective Objective,
) (map[string]float64, float64, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		out, err := run(ctx, params)
		if err != nil {
			trials = append(trials, Trial{Params: params, Score: math.Inf(1), Err: err})
			return
		}
		score := objective(out)
		trials = append(trials, Trial{Params: params, Score: score})
		if score < best {
			best = score
			bestParams = params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}

	if bestParams == nil {
		for i := len(trials) - 1; i >= 0; i-- {
			if trials[i].Err != nil {
				return nil, best, trials, fmt.Errorf("no successful trial: %w", trials[i].Err)
			}
		}
		return nil, best, trials, fmt.Errorf("no successful trial")
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		eval(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
