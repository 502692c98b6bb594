// Package morphology implements flat grey-scale erosion and dilation,
// geodesic reconstruction, and the opening and closing by reconstruction
// consumed by the decomposition filters.
package morphology

import (
	"fmt"

	"geoprofile/internal/parallel"
	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/raster"
	"geoprofile/pkg/structuring"
)

// Flags tune the reconstruction operators.
type Flags struct {
	// FullyConnected selects the 3^N-1 neighbourhood for geodesic
	// propagation instead of the 2N face neighbours.
	FullyConnected bool

	// PreserveIntensities seeds the reconstruction only from pixels the
	// initial erosion (opening) or dilation (closing) did not change, so
	// structures keep either their original intensity or that of the
	// surrounding background.
	PreserveIntensities bool
}

// Reconstructor produces an anti-extensive opening and an extensive closing
// of a raster for a structuring element.
type Reconstructor interface {
	Opening(r *raster.Raster, se structuring.Element, flags Flags) (*raster.Raster, error)
	Closing(r *raster.Raster, se structuring.Element, flags Flags) (*raster.Raster, error)
}

func checkOperands(op string, r *raster.Raster, se structuring.Element) error {
	if r == nil {
		return errdefs.Failure(op, fmt.Errorf("nil raster"))
	}
	if err := se.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if se.Dims() != r.Dims() {
		return errdefs.InvalidParameter("radius", se.Radius,
			fmt.Sprintf("%s: element spans %d axes, raster has %d", op, se.Dims(), r.Dims()))
	}
	return nil
}

// Erode replaces each pixel with the minimum over the element. Neighbours
// outside the grid are ignored.
func Erode(r *raster.Raster, se structuring.Element, workers int) (*raster.Raster, error) {
	if err := checkOperands("erode", r, se); err != nil {
		return nil, err
	}
	return rankFilter(r, se, workers, func(a, b float64) bool { return b < a }), nil
}

// Dilate replaces each pixel with the maximum over the element. Neighbours
// outside the grid are ignored.
func Dilate(r *raster.Raster, se structuring.Element, workers int) (*raster.Raster, error) {
	if err := checkOperands("dilate", r, se); err != nil {
		return nil, err
	}
	return rankFilter(r, se, workers, func(a, b float64) bool { return b > a }), nil
}

// rankFilter keeps, for each pixel, the neighbour value b for which
// better(current, b) holds.
func rankFilter(r *raster.Raster, se structuring.Element, workers int, better func(a, b float64) bool) *raster.Raster {
	geom := r.Geometry()
	win := elementWindow(geom, se)
	src := r.Data()
	out := raster.NewLike(r)
	dst := out.Data()

	parallel.For(len(src), workers, func(start, end int) {
		coords := geom.Coords(start, make([]int, geom.Dims()))
		for p := start; p < end; p++ {
			v := src[p]
			if win.interior(coords) {
				for _, off := range win.linear {
					if b := src[p+off]; better(v, b) {
						v = b
					}
				}
			} else {
				for k := range win.deltas {
					if q, ok := win.neighbor(p, coords, k); ok && better(v, src[q]) {
						v = src[q]
					}
				}
			}
			dst[p] = v
			next(coords, geom.Size)
		}
	})
	return out
}
