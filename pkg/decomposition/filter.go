// Package decomposition splits a raster into bright (convex) and dark
// (concave) structures smaller than a structuring element, and builds
// multi-scale profiles of such decompositions.
//
// For a raster R and a radius N the single-scale filter computes
//
//	opening  = ReconstructionOpening(R, SE(N))
//	closing  = ReconstructionClosing(R, SE(N))
//	convex   = R - opening
//	concave  = closing - R
//	leveling = Leveling(R, convex, concave)
//
// The multi-scale filter repeats this at increasing radii, each stage
// consuming the leveling of the previous one.
package decomposition

import (
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"geoprofile/internal/parallel"
	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/leveling"
	"geoprofile/pkg/morphology"
	"geoprofile/pkg/raster"
	"geoprofile/pkg/structuring"
)

// Params configures how each stage is computed.
type Params struct {
	// Shape of the structuring element built for every radius.
	Shape structuring.Shape

	// Flags are passed unchanged to the reconstructor.
	Flags morphology.Flags

	// Reconstructor computes the openings and closings. Nil selects
	// morphology.Geodesic. Its errors are returned unchanged: only
	// morphology.Geodesic marks its own faults with
	// errdefs.ErrComputationFailure, so callers supplying a Reconstructor
	// match on their own errors.
	Reconstructor morphology.Reconstructor

	// Workers bounds the goroutines of the per-pixel loops; zero means all
	// cores.
	Workers int

	// Progress, when set, receives the completion fraction.
	Progress ProgressFunc
}

func (p Params) reconstructor() morphology.Reconstructor {
	if p.Reconstructor != nil {
		return p.Reconstructor
	}
	return morphology.Geodesic{Workers: p.Workers}
}

// Result holds the three maps of one decomposition stage. Every raster
// shares the input geometry; Convex and Concave are non-negative.
type Result struct {
	Leveling *raster.Raster
	Convex   *raster.Raster
	Concave  *raster.Raster
}

// Filter is the single-scale decomposition at a fixed radius.
type Filter struct {
	radius []int
	params Params
}

// NewFilter returns a filter for the per-axis radius vector.
func NewFilter(radius []int, params Params) *Filter {
	return &Filter{radius: slices.Clone(radius), params: params}
}

// Radius returns the per-axis radius.
func (f *Filter) Radius() []int { return slices.Clone(f.radius) }

// Decompose runs the filter on r.
func (f *Filter) Decompose(r *raster.Raster) (*Result, error) {
	return decompose(r, f.radius, f.params, newProgress(f.params.Progress, 0, 1))
}

// Decompose is shorthand for NewFilter(radius, params).Decompose(r).
func Decompose(r *raster.Raster, radius []int, params Params) (*Result, error) {
	return NewFilter(radius, params).Decompose(r)
}

func validateRadius(r *raster.Raster, radius []int) error {
	if r == nil {
		return errdefs.InvalidParameter("input", nil, "raster must not be nil")
	}
	if len(radius) != r.Dims() {
		return errdefs.InvalidParameter("radius", radius,
			fmt.Sprintf("need one radius per axis, raster has %d axes", r.Dims()))
	}
	for i, n := range radius {
		if n <= 0 {
			return errdefs.InvalidParameter(fmt.Sprintf("radius[%d]", i), n, "must be positive")
		}
	}
	return nil
}

func decompose(r *raster.Raster, radius []int, params Params, prog *progress) (*Result, error) {
	if err := validateRadius(r, radius); err != nil {
		return nil, err
	}
	se, err := structuring.New(params.Shape, radius...)
	if err != nil {
		return nil, err
	}
	rec := params.reconstructor()

	var opening, closing *raster.Raster
	var g errgroup.Group
	g.Go(func() error {
		out, err := rec.Opening(r, se, params.Flags)
		if err != nil {
			return err
		}
		if err := checkOutput("opening", r, out); err != nil {
			return err
		}
		opening = out
		prog.add(openingWeight)
		return nil
	})
	g.Go(func() error {
		out, err := rec.Closing(r, se, params.Flags)
		if err != nil {
			return err
		}
		if err := checkOutput("closing", r, out); err != nil {
			return err
		}
		closing = out
		prog.add(closingWeight)
		return nil
	})
	// Reconstructor errors are returned as they came.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	convex := raster.NewLike(r)
	concave := raster.NewLike(r)
	src, op, cl := r.Data(), opening.Data(), closing.Data()
	cvx, ccv := convex.Data(), concave.Data()
	parallel.For(len(src), params.Workers, func(start, end int) {
		floats.SubTo(cvx[start:end], src[start:end], op[start:end])
		floats.SubTo(ccv[start:end], cl[start:end], src[start:end])
	})

	level, err := leveling.Apply(r, convex, concave, params.Workers)
	if err != nil {
		return nil, err
	}
	prog.add(combineWeight)

	return &Result{Leveling: level, Convex: convex, Concave: concave}, nil
}

func checkOutput(op string, in, out *raster.Raster) error {
	if out == nil {
		return errdefs.Failure(op, fmt.Errorf("reconstructor returned no raster"))
	}
	if !raster.SameGeometry(in, out) {
		return errdefs.Failure(op, errdefs.Mismatch(op, in.Size(), out.Size()))
	}
	return nil
}
