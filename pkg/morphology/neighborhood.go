package morphology

import (
	"geoprofile/pkg/raster"
	"geoprofile/pkg/structuring"
)

// window is a set of coordinate deltas with their precomputed linear offsets
// on a given grid.
type window struct {
	size    []int
	deltas  [][]int
	linear  []int
	reach   []int // largest |delta| per axis
	forward []int // indices into deltas with a negative linear offset
	back    []int // indices into deltas with a positive linear offset
}

func newWindow(geom raster.Geometry, deltas [][]int) *window {
	strides := geom.Strides()
	w := &window{
		size:   geom.Size,
		deltas: deltas,
		linear: make([]int, len(deltas)),
		reach:  make([]int, len(geom.Size)),
	}
	for k, d := range deltas {
		off := 0
		for i, v := range d {
			off += v * strides[i]
			if v < 0 {
				v = -v
			}
			if v > w.reach[i] {
				w.reach[i] = v
			}
		}
		w.linear[k] = off
		switch {
		case off < 0:
			w.forward = append(w.forward, k)
		case off > 0:
			w.back = append(w.back, k)
		}
	}
	return w
}

// elementWindow returns the window covered by a structuring element.
func elementWindow(geom raster.Geometry, se structuring.Element) *window {
	return newWindow(geom, se.Offsets())
}

// connectivityWindow returns the unit neighbourhood used by geodesic
// reconstruction: 2N face neighbours, or all 3^N-1 when fully connected.
// The origin is excluded.
func connectivityWindow(geom raster.Geometry, fullyConnected bool) *window {
	dims := geom.Dims()
	var deltas [][]int
	if !fullyConnected {
		for axis := 0; axis < dims; axis++ {
			for _, s := range []int{-1, 1} {
				d := make([]int, dims)
				d[axis] = s
				deltas = append(deltas, d)
			}
		}
		return newWindow(geom, deltas)
	}

	d := make([]int, dims)
	for i := range d {
		d[i] = -1
	}
	for {
		zero := true
		for _, v := range d {
			if v != 0 {
				zero = false
				break
			}
		}
		if !zero {
			deltas = append(deltas, append([]int(nil), d...))
		}
		axis := 0
		for axis < dims {
			d[axis]++
			if d[axis] <= 1 {
				break
			}
			d[axis] = -1
			axis++
		}
		if axis == dims {
			return newWindow(geom, deltas)
		}
	}
}

// interior reports whether every delta of the window stays inside the grid
// from coords.
func (w *window) interior(coords []int) bool {
	for i, c := range coords {
		if c < w.reach[i] || c >= w.size[i]-w.reach[i] {
			return false
		}
	}
	return true
}

// neighbor returns the linear index of delta k from pixel p at coords, and
// false when it falls outside the grid.
func (w *window) neighbor(p int, coords []int, k int) (int, bool) {
	for i, v := range w.deltas[k] {
		c := coords[i] + v
		if c < 0 || c >= w.size[i] {
			return 0, false
		}
	}
	return p + w.linear[k], true
}

// next advances coords by one pixel in raster order.
func next(coords, size []int) {
	for i := range coords {
		coords[i]++
		if coords[i] < size[i] {
			return
		}
		coords[i] = 0
	}
}

// prev steps coords back by one pixel in raster order.
func prev(coords, size []int) {
	for i := range coords {
		coords[i]--
		if coords[i] >= 0 {
			return
		}
		coords[i] = size[i] - 1
	}
}
