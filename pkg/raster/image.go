package raster

import (
	"image"
	"image/color"
	"math"

	"geoprofile/pkg/errdefs"
)

// FromImage converts img to a 2-D raster of its luminance. Samples are
// scaled to [0, scale]; a scale of 255 yields 8-bit grey levels.
func FromImage(img image.Image, scale float64) (*Raster, error) {
	if img == nil {
		return nil, errdefs.InvalidParameter("image", nil, "must not be nil")
	}
	if !(scale > 0) {
		return nil, errdefs.InvalidParameter("scale", scale, "must be positive")
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	r, err := New(NewGeometry(width, height))
	if err != nil {
		return nil, err
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			r.data[y*width+x] = float64(g.Y) / 65535.0 * scale
		}
	}
	return r, nil
}

// Gray16 renders a 2-D raster to a 16-bit grey image, mapping lo to black
// and hi to white. Samples outside [lo, hi] are clamped.
func (r *Raster) Gray16(lo, hi float64) (*image.Gray16, error) {
	if r.Dims() != 2 {
		return nil, errdefs.InvalidParameter("dims", r.Dims(), "only 2-D rasters convert to images")
	}
	width, height := r.geom.Size[0], r.geom.Size[1]
	img := image.NewGray16(image.Rect(0, 0, width, height))

	span := hi - lo
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := 0.0
			if span > 0 {
				v = (r.data[y*width+x] - lo) / span
			}
			value := uint16(math.Max(0, math.Min(65535, v*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img, nil
}
