// Package summary computes per-scale statistics of a multi-scale profile.
package summary

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"geoprofile/pkg/decomposition"
	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/raster"
)

// Stats are the basic moments of one raster.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Describe returns the moments of r. The standard deviation is the
// unbiased estimate and is zero for single-pixel rasters.
func Describe(r *raster.Raster) Stats {
	data := r.Data()
	if len(data) == 0 {
		return Stats{}
	}
	s := Stats{Min: floats.Min(data), Max: floats.Max(data)}
	if len(data) == 1 {
		s.Mean = data[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	return s
}

// ScaleSummary describes one stage of a profile.
type ScaleSummary struct {
	// Scale is the stage index and Radius its structuring-element radius.
	Scale  int
	Radius int

	Convex   Stats
	Concave  Stats
	Leveling Stats

	// RMSE between the stage input and its leveling: how much the stage
	// simplified the image.
	RMSE float64

	// Correlation between the convex and concave maps.
	Correlation float64
}

// Summarize computes one ScaleSummary per stage. input is the raster the
// profile was computed from; radii must have one entry per stage.
func Summarize(input *raster.Raster, radii []int, results []decomposition.Result) ([]ScaleSummary, error) {
	if len(radii) != len(results) {
		return nil, errdefs.InvalidParameter("radii", len(radii), "need one radius per stage")
	}
	out := make([]ScaleSummary, len(results))
	prev := input
	for i, res := range results {
		if err := raster.CheckGeometry("summarize", prev, res.Leveling); err != nil {
			return nil, err
		}
		out[i] = ScaleSummary{
			Scale:       i,
			Radius:      radii[i],
			Convex:      Describe(res.Convex),
			Concave:     Describe(res.Concave),
			Leveling:    Describe(res.Leveling),
			RMSE:        RMSE(prev.Data(), res.Leveling.Data()),
			Correlation: correlation(res.Convex.Data(), res.Concave.Data()),
		}
		prev = res.Leveling
	}
	return out, nil
}

// RMSE returns the root mean square difference of a and b, which must have
// the same length.
func RMSE(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2) / math.Sqrt(float64(len(a)))
}

// correlation is zero when either map is constant.
func correlation(a, b []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 0
	}
	return c
}
