package decomposition

import (
	"context"
	"fmt"
	"time"

	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/logging"
	"geoprofile/pkg/raster"
)

// ScaleParameters define the radius sequence
// Radius(i) = InitialRadius + i*Step for i in [0, Iterations).
type ScaleParameters struct {
	InitialRadius int
	Step          int
	Iterations    int
}

// Validate rejects a non-positive initial radius or step and a negative
// iteration count. Zero iterations is valid and yields empty profiles.
func (s ScaleParameters) Validate() error {
	if s.InitialRadius <= 0 {
		return errdefs.InvalidParameter("initialRadius", s.InitialRadius, "must be positive")
	}
	if s.Step <= 0 {
		return errdefs.InvalidParameter("step", s.Step, "must be positive")
	}
	if s.Iterations < 0 {
		return errdefs.InvalidParameter("iterations", s.Iterations, "must not be negative")
	}
	return nil
}

// Radius returns the radius of scale index i.
func (s ScaleParameters) Radius(i int) int {
	return s.InitialRadius + i*s.Step
}

// Radii returns the full radius sequence.
func (s ScaleParameters) Radii() []int {
	if s.Iterations <= 0 {
		return []int{}
	}
	radii := make([]int, s.Iterations)
	for i := range radii {
		radii[i] = s.Radius(i)
	}
	return radii
}

// Profile is an ordered sequence of rasters, one per scale index.
type Profile []*raster.Raster

// MultiScale chains single-scale decompositions over increasing radii. Stage
// 0 decomposes the input; stage i decomposes the leveling of stage i-1.
// A MultiScale is not safe for concurrent calls to Compute; use one value per
// goroutine.
type MultiScale struct {
	scales ScaleParameters
	params Params

	leveling Profile
	convex   Profile
	concave  Profile
}

// NewMultiScale returns a multi-scale filter. Nothing is computed until
// Compute is called.
func NewMultiScale(scales ScaleParameters, params Params) *MultiScale {
	return &MultiScale{
		scales:   scales,
		params:   params,
		leveling: Profile{},
		convex:   Profile{},
		concave:  Profile{},
	}
}

// Scales returns the scale parameters.
func (m *MultiScale) Scales() ScaleParameters { return m.scales }

// Radii returns the radius of every stage.
func (m *MultiScale) Radii() []int { return m.scales.Radii() }

// Compute runs every stage on r. ctx is checked before each stage. Stage
// errors are returned unchanged, and on any error the previously published
// profiles are left untouched.
func (m *MultiScale) Compute(ctx context.Context, r *raster.Raster) error {
	if err := m.scales.Validate(); err != nil {
		return err
	}
	if r == nil {
		return errdefs.InvalidParameter("input", nil, "raster must not be nil")
	}

	n := m.scales.Iterations
	leveling := make(Profile, 0, n)
	convex := make(Profile, 0, n)
	concave := make(Profile, 0, n)

	logger := logging.Logger()
	start := time.Now()
	current := r
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("multiscale decomposition cancelled before stage %d: %w", i, err)
		}

		radius := m.scales.Radius(i)
		logger.Debug("decomposition stage", "stage", i, "radius", radius)

		prog := newProgress(m.params.Progress, float64(i)/float64(n), 1/float64(n))
		res, err := decompose(current, uniformRadius(current.Dims(), radius), m.params, prog)
		if err != nil {
			logger.Debug("decomposition stage failed", "stage", i, "radius", radius, "error", err)
			return err
		}

		leveling = append(leveling, res.Leveling)
		convex = append(convex, res.Convex)
		concave = append(concave, res.Concave)
		current = res.Leveling
	}

	m.leveling, m.convex, m.concave = leveling, convex, concave
	logger.Info("multiscale decomposition complete",
		"stages", n, "radii", m.scales.Radii(), "elapsed", time.Since(start))
	return nil
}

// Output returns the leveling profile.
func (m *MultiScale) Output() Profile { return m.leveling }

// ConvexOutput returns the convex profile.
func (m *MultiScale) ConvexOutput() Profile { return m.convex }

// ConcaveOutput returns the concave profile.
func (m *MultiScale) ConcaveOutput() Profile { return m.concave }

// Results returns the stages as Result values, in scale order.
func (m *MultiScale) Results() []Result {
	out := make([]Result, len(m.leveling))
	for i := range out {
		out[i] = Result{Leveling: m.leveling[i], Convex: m.convex[i], Concave: m.concave[i]}
	}
	return out
}

func uniformRadius(dims, n int) []int {
	radius := make([]int, dims)
	for i := range radius {
		radius[i] = n
	}
	return radius
}
