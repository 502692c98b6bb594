// Package raster provides the N-dimensional single-band grid used by the
// morphology and decomposition packages.
//
// Pixels are stored in a flat []float64 in row-major order with axis 0
// varying fastest, so a 3-D raster of size (w, h, d) stores pixel (x, y, z)
// at z*w*h + y*w + x.
package raster

import (
	"fmt"
	"math"
	"slices"

	"geoprofile/pkg/errdefs"
)

// Geometry describes the grid layout and its physical placement.
type Geometry struct {
	// Size is the number of pixels along each axis.
	Size []int

	// Spacing is the physical distance between neighbouring pixels per axis.
	Spacing []float64

	// Origin is the physical position of the first pixel.
	Origin []float64
}

// NewGeometry returns a geometry of the given size with unit spacing and a
// zero origin.
func NewGeometry(size ...int) Geometry {
	g := Geometry{
		Size:    slices.Clone(size),
		Spacing: make([]float64, len(size)),
		Origin:  make([]float64, len(size)),
	}
	for i := range g.Spacing {
		g.Spacing[i] = 1
	}
	return g
}

// Dims returns the number of axes.
func (g Geometry) Dims() int { return len(g.Size) }

// Len returns the number of pixels.
func (g Geometry) Len() int {
	if len(g.Size) == 0 {
		return 0
	}
	n := 1
	for _, s := range g.Size {
		n *= s
	}
	return n
}

// Validate checks that the geometry can back a raster.
func (g Geometry) Validate() error {
	if len(g.Size) == 0 {
		return errdefs.InvalidParameter("size", g.Size, "at least one axis is required")
	}
	if len(g.Spacing) != len(g.Size) || len(g.Origin) != len(g.Size) {
		return errdefs.InvalidParameter("geometry", fmt.Sprintf("size=%v spacing=%v origin=%v", g.Size, g.Spacing, g.Origin),
			"size, spacing and origin must have the same length")
	}
	for i, s := range g.Size {
		if s <= 0 {
			return errdefs.InvalidParameter(fmt.Sprintf("size[%d]", i), s, "must be positive")
		}
	}
	for i, s := range g.Spacing {
		if !(s > 0) || math.IsInf(s, 0) {
			return errdefs.InvalidParameter(fmt.Sprintf("spacing[%d]", i), s, "must be positive and finite")
		}
	}
	return nil
}

// Equal reports whether size, spacing and origin all match exactly.
func (g Geometry) Equal(o Geometry) bool {
	return slices.Equal(g.Size, o.Size) &&
		slices.Equal(g.Spacing, o.Spacing) &&
		slices.Equal(g.Origin, o.Origin)
}

// Clone returns a deep copy.
func (g Geometry) Clone() Geometry {
	return Geometry{
		Size:    slices.Clone(g.Size),
		Spacing: slices.Clone(g.Spacing),
		Origin:  slices.Clone(g.Origin),
	}
}

// Strides returns the linear-index step of each axis.
func (g Geometry) Strides() []int {
	strides := make([]int, len(g.Size))
	step := 1
	for i, s := range g.Size {
		strides[i] = step
		step *= s
	}
	return strides
}

// Index converts coordinates to a linear index. It returns -1 when the
// coordinates fall outside the grid.
func (g Geometry) Index(coords ...int) int {
	if len(coords) != len(g.Size) {
		return -1
	}
	idx, step := 0, 1
	for i, c := range coords {
		if c < 0 || c >= g.Size[i] {
			return -1
		}
		idx += c * step
		step *= g.Size[i]
	}
	return idx
}

// Coords writes the coordinates of linear index idx into dst, which must
// have Dims() elements, and returns it.
func (g Geometry) Coords(idx int, dst []int) []int {
	for i, s := range g.Size {
		dst[i] = idx % s
		idx /= s
	}
	return dst
}

// Raster is a single-band grid of float64 samples.
type Raster struct {
	geom Geometry
	data []float64
}

// New allocates a zeroed raster.
func New(geom Geometry) (*Raster, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	return &Raster{geom: geom.Clone(), data: make([]float64, geom.Len())}, nil
}

// FromData wraps data, which must hold exactly geom.Len() samples. The slice
// is copied.
func FromData(geom Geometry, data []float64) (*Raster, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	if len(data) != geom.Len() {
		return nil, errdefs.InvalidParameter("data", len(data), fmt.Sprintf("expected %d samples for size %v", geom.Len(), geom.Size))
	}
	return &Raster{geom: geom.Clone(), data: slices.Clone(data)}, nil
}

// Filled allocates a raster with every sample set to v.
func Filled(geom Geometry, v float64) (*Raster, error) {
	r, err := New(geom)
	if err != nil {
		return nil, err
	}
	r.Fill(v)
	return r, nil
}

// NewLike allocates a zeroed raster with r's geometry.
func NewLike(r *Raster) *Raster {
	return &Raster{geom: r.geom.Clone(), data: make([]float64, len(r.data))}
}

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	return &Raster{geom: r.geom.Clone(), data: slices.Clone(r.data)}
}

// Geometry returns a copy of the raster geometry.
func (r *Raster) Geometry() Geometry { return r.geom.Clone() }

// Size returns the per-axis pixel counts. The result must not be modified.
func (r *Raster) Size() []int { return r.geom.Size }

// Dims returns the number of axes.
func (r *Raster) Dims() int { return len(r.geom.Size) }

// Len returns the number of pixels.
func (r *Raster) Len() int { return len(r.data) }

// Data returns the backing buffer.
func (r *Raster) Data() []float64 { return r.data }

// At returns the sample at linear index i.
func (r *Raster) At(i int) float64 { return r.data[i] }

// Set stores v at linear index i.
func (r *Raster) Set(i int, v float64) { r.data[i] = v }

// AtCoords returns the sample at coords, or NaN outside the grid.
func (r *Raster) AtCoords(coords ...int) float64 {
	i := r.geom.Index(coords...)
	if i < 0 {
		return math.NaN()
	}
	return r.data[i]
}

// SetCoords stores v at coords; coordinates outside the grid are ignored.
func (r *Raster) SetCoords(v float64, coords ...int) {
	if i := r.geom.Index(coords...); i >= 0 {
		r.data[i] = v
	}
}

// Fill sets every sample to v.
func (r *Raster) Fill(v float64) {
	for i := range r.data {
		r.data[i] = v
	}
}

// SameGeometry reports whether a and b share an identical geometry.
func SameGeometry(a, b *Raster) bool {
	return a.geom.Equal(b.geom)
}

// CheckGeometry returns a dimension mismatch error naming op when b's
// geometry differs from a's.
func CheckGeometry(op string, a, b *Raster) error {
	if a == nil || b == nil {
		return errdefs.InvalidParameter("raster", nil, op+": raster must not be nil")
	}
	if !SameGeometry(a, b) {
		return errdefs.Mismatch(op, a.geom.Size, b.geom.Size)
	}
	return nil
}
