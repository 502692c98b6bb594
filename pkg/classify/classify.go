// Package classify labels pixels as convex, concave or flat by comparing an
// original raster with its leveling.
package classify

import (
	"fmt"
	"math"

	"geoprofile/internal/parallel"
	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/raster"
)

// Labels are the codes written for each class.
type Labels struct {
	Flat    raster.Label
	Convex  raster.Label
	Concave raster.Label
}

// DefaultLabels returns Flat=0, Convex=1, Concave=2.
func DefaultLabels() Labels {
	return Labels{Flat: 0, Convex: 1, Concave: 2}
}

// Classifier applies the decision rule
//
//	(original - leveled) > sigma  =>  Convex
//	(leveled - original) > sigma  =>  Concave
//	otherwise                     =>  Flat
//
// A difference equal to sigma is flat.
type Classifier struct {
	sigma   float64
	labels  Labels
	Workers int
}

// New returns a classifier with tolerance sigma, which must be a
// non-negative number.
func New(sigma float64, labels Labels) (*Classifier, error) {
	if math.IsNaN(sigma) || sigma < 0 {
		return nil, errdefs.InvalidParameter("sigma", sigma, "must be non-negative")
	}
	return &Classifier{sigma: sigma, labels: labels}, nil
}

// Sigma returns the tolerance.
func (c *Classifier) Sigma() float64 { return c.sigma }

// Labels returns the label codes.
func (c *Classifier) Labels() Labels { return c.labels }

// ClassifyPixel labels a single (original, leveled) pair.
func (c *Classifier) ClassifyPixel(original, leveled float64) raster.Label {
	switch {
	case original-leveled > c.sigma:
		return c.labels.Convex
	case leveled-original > c.sigma:
		return c.labels.Concave
	default:
		return c.labels.Flat
	}
}

// Classify labels every pixel. The geometries are compared before any pixel
// is read.
func (c *Classifier) Classify(original, leveled *raster.Raster) (*raster.LabelMap, error) {
	if err := raster.CheckGeometry("classify", original, leveled); err != nil {
		return nil, err
	}
	out, err := raster.NewLabelMap(original.Geometry(), c.labels.Flat)
	if err != nil {
		return nil, err
	}
	o, l, dst := original.Data(), leveled.Data(), out.Data()
	parallel.For(len(dst), c.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = c.ClassifyPixel(o[i], l[i])
		}
	})
	return out, nil
}

// ClassifyProfile labels each stage of a leveling profile against that
// stage's own input: input for stage 0, levelings[i-1] for stage i.
func (c *Classifier) ClassifyProfile(input *raster.Raster, levelings []*raster.Raster) ([]*raster.LabelMap, error) {
	maps := make([]*raster.LabelMap, len(levelings))
	prev := input
	for i, lv := range levelings {
		m, err := c.Classify(prev, lv)
		if err != nil {
			return nil, fmt.Errorf("scale %d: %w", i, err)
		}
		maps[i] = m
		prev = lv
	}
	return maps, nil
}

// Counts returns how many pixels carry each label code.
func Counts(m *raster.LabelMap) map[raster.Label]int {
	counts := make(map[raster.Label]int)
	for _, l := range m.Data() {
		counts[l]++
	}
	return counts
}
