package morphology

import (
	"fmt"
	"math"

	"geoprofile/internal/parallel"
	"geoprofile/pkg/errdefs"
	"geoprofile/pkg/raster"
	"geoprofile/pkg/structuring"
)

// ReconstructByDilation dilates marker under mask until stability. The
// marker is first clamped to the mask, so the result never exceeds it.
//
// The implementation is the hybrid scheme: one forward raster scan, one
// backward scan that seeds a FIFO queue, then queue propagation.
func ReconstructByDilation(marker, mask *raster.Raster, fullyConnected bool) (*raster.Raster, error) {
	if marker == nil || mask == nil {
		return nil, errdefs.Failure("reconstruct by dilation", fmt.Errorf("nil marker or mask"))
	}
	if err := raster.CheckGeometry("reconstruct by dilation", mask, marker); err != nil {
		return nil, err
	}

	out := marker.Clone()
	J := out.Data()
	I := mask.Data()
	for p := range J {
		if J[p] > I[p] {
			J[p] = I[p]
		}
	}

	geom := mask.Geometry()
	size := geom.Size
	win := connectivityWindow(geom, fullyConnected)
	coords := make([]int, geom.Dims())
	n := len(J)

	for p := 0; p < n; p++ {
		v := J[p]
		for _, k := range win.forward {
			if q, ok := win.neighbor(p, coords, k); ok && J[q] > v {
				v = J[q]
			}
		}
		J[p] = math.Min(v, I[p])
		next(coords, size)
	}

	var queue []int
	for i := range coords {
		coords[i] = size[i] - 1
	}
	for p := n - 1; p >= 0; p-- {
		v := J[p]
		for _, k := range win.back {
			if q, ok := win.neighbor(p, coords, k); ok && J[q] > v {
				v = J[q]
			}
		}
		J[p] = math.Min(v, I[p])
		for _, k := range win.back {
			if q, ok := win.neighbor(p, coords, k); ok && J[q] < J[p] && J[q] < I[q] {
				queue = append(queue, p)
				break
			}
		}
		prev(coords, size)
	}

	head := 0
	for head < len(queue) {
		p := queue[head]
		head++
		geom.Coords(p, coords)
		for k := range win.deltas {
			q, ok := win.neighbor(p, coords, k)
			if !ok {
				continue
			}
			if J[q] < J[p] && I[q] != J[q] {
				J[q] = math.Min(J[p], I[q])
				queue = append(queue, q)
			}
		}
		if head > 4096 && head > len(queue)/2 {
			queue = append(queue[:0], queue[head:]...)
			head = 0
		}
	}
	return out, nil
}

// ReconstructByErosion erodes marker above mask until stability; it is the
// dual of ReconstructByDilation.
func ReconstructByErosion(marker, mask *raster.Raster, fullyConnected bool) (*raster.Raster, error) {
	if marker == nil || mask == nil {
		return nil, errdefs.Failure("reconstruct by erosion", fmt.Errorf("nil marker or mask"))
	}
	if err := raster.CheckGeometry("reconstruct by erosion", mask, marker); err != nil {
		return nil, err
	}
	out, err := ReconstructByDilation(negate(marker), negate(mask), fullyConnected)
	if err != nil {
		return nil, err
	}
	data := out.Data()
	for i, v := range data {
		data[i] = -v
	}
	return out, nil
}

func negate(r *raster.Raster) *raster.Raster {
	out := r.Clone()
	data := out.Data()
	for i, v := range data {
		data[i] = -v
	}
	return out
}

// Geodesic is the default Reconstructor. Workers bounds the goroutines used
// by the erosion and dilation passes; zero means all cores.
type Geodesic struct {
	Workers int
}

// Opening returns the opening by reconstruction of r: r eroded by se, then
// reconstructed by dilation under r. The result is <= r everywhere.
//
// With PreserveIntensities the reconstruction is seeded only by the pixels
// the erosion left unchanged, all others starting at -Inf.
func (g Geodesic) Opening(r *raster.Raster, se structuring.Element, flags Flags) (*raster.Raster, error) {
	eroded, err := Erode(r, se, g.Workers)
	if err != nil {
		return nil, err
	}
	marker := eroded
	if flags.PreserveIntensities {
		marker = keepUnchanged(r, eroded, math.Inf(-1), g.Workers)
	}
	opened, err := ReconstructByDilation(marker, r, flags.FullyConnected)
	if err != nil {
		return nil, errdefs.Failure("opening by reconstruction", err)
	}
	return opened, nil
}

// Closing returns the closing by reconstruction of r: r dilated by se, then
// reconstructed by erosion above r. The result is >= r everywhere.
//
// With PreserveIntensities the reconstruction is seeded only by the pixels
// the dilation left unchanged, all others starting at +Inf.
func (g Geodesic) Closing(r *raster.Raster, se structuring.Element, flags Flags) (*raster.Raster, error) {
	dilated, err := Dilate(r, se, g.Workers)
	if err != nil {
		return nil, err
	}
	marker := dilated
	if flags.PreserveIntensities {
		marker = keepUnchanged(r, dilated, math.Inf(1), g.Workers)
	}
	closed, err := ReconstructByErosion(marker, r, flags.FullyConnected)
	if err != nil {
		return nil, errdefs.Failure("closing by reconstruction", err)
	}
	return closed, nil
}

// keepUnchanged returns r where filtered equals r and fill elsewhere.
func keepUnchanged(r, filtered *raster.Raster, fill float64, workers int) *raster.Raster {
	out := raster.NewLike(r)
	src, f, dst := r.Data(), filtered.Data(), out.Data()
	parallel.For(len(dst), workers, func(start, end int) {
		for i := start; i < end; i++ {
			if f[i] == src[i] {
				dst[i] = src[i]
			} else {
				dst[i] = fill
			}
		}
	})
	return out
}
