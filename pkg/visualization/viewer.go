// Package visualization renders rasters and label maps to in-memory images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"maps"
	"math"
	"slices"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"

	"geoprofile/pkg/classify"
	"geoprofile/pkg/raster"
)

// Viewer extracts 2-D views from a 2-D or 3-D raster. Intensities are
// normalised with the raster's global range so that slices of one volume
// are comparable.
type Viewer struct {
	r      *raster.Raster
	lo, hi float64
}

// NewViewer creates a viewer over r.
func NewViewer(r *raster.Raster) (*Viewer, error) {
	if r == nil {
		return nil, fmt.Errorf("viewer: nil raster")
	}
	if r.Dims() != 2 && r.Dims() != 3 {
		return nil, fmt.Errorf("viewer: %d-D rasters are not supported (need 2-D or 3-D)", r.Dims())
	}
	data := r.Data()
	return &Viewer{r: r, lo: floats.Min(data), hi: floats.Max(data)}, nil
}

// Range returns the intensity range mapped to black and white.
func (v *Viewer) Range() (lo, hi float64) { return v.lo, v.hi }

func (v *Viewer) size() (width, height, depth int) {
	s := v.r.Size()
	depth = 1
	if len(s) == 3 {
		depth = s[2]
	}
	return s[0], s[1], depth
}

// ExtractSlice extracts a 2-D slice along axis "x" (YZ plane), "y" (XZ
// plane) or "z" (XY plane). A 2-D raster only has z slice 0.
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray16, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	width, height, depth := v.size()
	data := v.r.Data()

	var img *image.Gray16
	var at func(i, j int) int
	switch axis {
	case "x", "X":
		if position >= width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, width)
		}
		img = image.NewGray16(image.Rect(0, 0, depth, height))
		at = func(z, y int) int { return z*width*height + y*width + position }
	case "y", "Y":
		if position >= height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, height)
		}
		img = image.NewGray16(image.Rect(0, 0, width, depth))
		at = func(x, z int) int { return z*width*height + position*width + x }
	case "z", "Z":
		if position >= depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, depth)
		}
		img = image.NewGray16(image.Rect(0, 0, width, height))
		at = func(x, y int) int { return position*width*height + y*width + x }
	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	b := img.Bounds()
	for j := 0; j < b.Dy(); j++ {
		for i := 0; i < b.Dx(); i++ {
			img.SetGray16(i, j, color.Gray16{Y: v.gray(data[at(i, j)])})
		}
	}
	return img, nil
}

func (v *Viewer) gray(x float64) uint16 {
	span := v.hi - v.lo
	if span <= 0 {
		return 0
	}
	return uint16(math.Max(0, math.Min(65535, (x-v.lo)/span*65535)))
}

// ExtractRegion copies the sub-raster starting at start with the given size.
func (v *Viewer) ExtractRegion(start, size []int) (*raster.Raster, error) {
	dims := v.r.Dims()
	if len(start) != dims || len(size) != dims {
		return nil, fmt.Errorf("region needs %d start and size coordinates", dims)
	}
	full := v.r.Size()
	for i := range start {
		if start[i] < 0 {
			return nil, fmt.Errorf("start coordinates must be non-negative")
		}
		if size[i] <= 0 {
			return nil, fmt.Errorf("size dimensions must be positive")
		}
		if start[i]+size[i] > full[i] {
			return nil, fmt.Errorf("region extends beyond raster boundaries")
		}
	}

	geom := v.r.Geometry()
	sub := raster.NewGeometry(size...)
	for i := range sub.Spacing {
		sub.Spacing[i] = geom.Spacing[i]
		sub.Origin[i] = geom.Origin[i] + float64(start[i])*geom.Spacing[i]
	}
	region, err := raster.New(sub)
	if err != nil {
		return nil, err
	}

	coords := make([]int, dims)
	src := make([]int, dims)
	dst := region.Data()
	for i := range dst {
		sub.Coords(i, coords)
		for k := range coords {
			src[k] = start[k] + coords[k]
		}
		dst[i] = v.r.AtCoords(src...)
	}
	return region, nil
}

// DefaultPalette draws flat pixels mid grey, convex pixels white and concave
// pixels black.
func DefaultPalette(labels classify.Labels) map[raster.Label]color.Color {
	return map[raster.Label]color.Color{
		labels.Flat:    color.Gray{Y: 128},
		labels.Convex:  color.White,
		labels.Concave: color.Black,
	}
}

// LabelImage renders a 2-D label map. Palette entries are ordered by label
// code; codes missing from palette are drawn transparent.
func LabelImage(m *raster.LabelMap, palette map[raster.Label]color.Color) (*image.Paletted, error) {
	size := m.Size()
	if len(size) != 2 {
		return nil, fmt.Errorf("label image: %d-D label maps are not supported", len(size))
	}
	width, height := size[0], size[1]

	if len(palette) > 255 {
		return nil, fmt.Errorf("label image: palette has more than 255 colours")
	}
	colors := color.Palette{color.Transparent}
	index := make(map[raster.Label]uint8, len(palette))
	for _, l := range slices.Sorted(maps.Keys(palette)) {
		index[l] = uint8(len(colors))
		colors = append(colors, palette[l])
	}

	img := image.NewPaletted(image.Rect(0, 0, width, height), colors)
	data := m.Data()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetColorIndex(x, y, index[data[y*width+x]])
		}
	}
	return img, nil
}

// Preview scales img so that its longer side is maxSide pixels. Label
// images should use nearest so that no blended colours appear.
func Preview(img image.Image, maxSide int, nearest bool) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	w, h := maxSide, maxSide
	if b.Dx() > b.Dy() {
		h = max(1, b.Dy()*maxSide/b.Dx())
	} else {
		w = max(1, b.Dx()*maxSide/b.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var scaler draw.Scaler = draw.CatmullRom
	if nearest {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
