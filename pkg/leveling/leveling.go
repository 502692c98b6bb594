// Package leveling combines a pixel with its convex and concave residues
// into a levelled value.
package leveling

import (
	"golang.org/x/exp/constraints"

	"geoprofile/internal/parallel"
	"geoprofile/pkg/raster"
)

// Number is any integer or floating-point pixel type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Combine applies the leveling rule to one pixel:
//
//	cvx > ccv  =>  p - cvx
//	cvx < ccv  =>  ccv + p
//	otherwise  =>  p
func Combine[T Number](p, cvx, ccv T) T {
	if cvx > ccv {
		return p - cvx
	}
	if cvx < ccv {
		return ccv + p
	}
	return p
}

// CombineTo is Combine with the result converted to Out using Go's
// conversion rules, so narrowing truncates.
func CombineTo[In, Out Number](p, cvx, ccv In) Out {
	return Out(Combine(p, cvx, ccv))
}

// CombineSlices writes Combine(p[i], cvx[i], ccv[i]) into dst[i]. All four
// slices must have the same length; dst may alias p.
func CombineSlices[In, Out Number](dst []Out, p, cvx, ccv []In) {
	p = p[:len(dst)]
	cvx = cvx[:len(dst)]
	ccv = ccv[:len(dst)]
	for i := range dst {
		dst[i] = Out(Combine(p[i], cvx[i], ccv[i]))
	}
}

// Apply levels every pixel of p from the convex and concave maps. All three
// rasters must share one geometry.
func Apply(p, cvx, ccv *raster.Raster, workers int) (*raster.Raster, error) {
	if err := raster.CheckGeometry("leveling", p, cvx); err != nil {
		return nil, err
	}
	if err := raster.CheckGeometry("leveling", p, ccv); err != nil {
		return nil, err
	}
	out := raster.NewLike(p)
	dst, src, cv, cc := out.Data(), p.Data(), cvx.Data(), ccv.Data()
	parallel.For(len(dst), workers, func(start, end int) {
		CombineSlices(dst[start:end], src[start:end], cv[start:end], cc[start:end])
	})
	return out, nil
}
