package visualization

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoprofile/pkg/classify"
	"geoprofile/pkg/raster"
)

// createVolume builds a volume where each z slice holds the value z.
func createVolume(t *testing.T, width, height, depth int) *raster.Raster {
	t.Helper()
	r, err := raster.New(raster.NewGeometry(width, height, depth))
	require.NoError(t, err)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r.SetCoords(float64(z), x, y, z)
			}
		}
	}
	return r
}

// TestNewViewer verifies that a viewer only accepts 2-D and 3-D rasters
func TestNewViewer(t *testing.T) {
	v, err := NewViewer(createVolume(t, 4, 3, 5))
	require.NoError(t, err)
	lo, hi := v.Range()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 4.0, hi)

	oneD, _ := raster.New(raster.NewGeometry(8))
	_, err = NewViewer(oneD)
	assert.Error(t, err)

	_, err = NewViewer(nil)
	assert.Error(t, err)
}

// TestExtractSlice verifies that slices are correctly extracted from the volume
func TestExtractSlice(t *testing.T) {
	width, height, depth := 10, 8, 5
	v, err := NewViewer(createVolume(t, width, height, depth))
	require.NoError(t, err)

	for z := 0; z < depth; z++ {
		img, err := v.ExtractSlice("z", z)
		require.NoError(t, err, "z slice %d", z)
		assert.Equal(t, image.Rect(0, 0, width, height), img.Bounds())
		want := uint16(float64(z) / float64(depth-1) * 65535)
		assert.Equal(t, want, img.Gray16At(3, 2).Y)
	}

	img, err := v.ExtractSlice("x", 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, depth, height), img.Bounds())
	assert.Equal(t, uint16(65535), img.Gray16At(depth-1, 0).Y)
	assert.Equal(t, uint16(0), img.Gray16At(0, 0).Y)

	img, err = v.ExtractSlice("Y", 7)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, width, depth), img.Bounds())

	_, err = v.ExtractSlice("z", depth)
	assert.Error(t, err)
	_, err = v.ExtractSlice("x", -1)
	assert.Error(t, err)
	_, err = v.ExtractSlice("w", 0)
	assert.Error(t, err)
}

func TestExtractSlice2D(t *testing.T) {
	r, _ := raster.FromData(raster.NewGeometry(2, 2), []float64{0, 1, 2, 3})
	v, err := NewViewer(r)
	require.NoError(t, err)

	img, err := v.ExtractSlice("z", 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), img.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(65535), img.Gray16At(1, 1).Y)

	_, err = v.ExtractSlice("z", 1)
	assert.Error(t, err)
}

// TestExtractRegion verifies region extraction keeps values and placement
func TestExtractRegion(t *testing.T) {
	vol := createVolume(t, 6, 6, 4)
	v, err := NewViewer(vol)
	require.NoError(t, err)

	region, err := v.ExtractRegion([]int{1, 2, 1}, []int{3, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 2}, region.Size())
	assert.Equal(t, []float64{1, 2, 1}, region.Geometry().Origin)
	assert.Equal(t, 1.0, region.AtCoords(0, 0, 0))
	assert.Equal(t, 2.0, region.AtCoords(2, 1, 1))

	_, err = v.ExtractRegion([]int{-1, 0, 0}, []int{1, 1, 1})
	assert.Error(t, err)
	_, err = v.ExtractRegion([]int{0, 0, 0}, []int{0, 1, 1})
	assert.Error(t, err)
	_, err = v.ExtractRegion([]int{5, 0, 0}, []int{2, 1, 1})
	assert.Error(t, err)
	_, err = v.ExtractRegion([]int{0, 0}, []int{1, 1})
	assert.Error(t, err)
}

func TestLabelImage(t *testing.T) {
	labels := classify.DefaultLabels()
	m, err := raster.NewLabelMap(raster.NewGeometry(3, 2), labels.Flat)
	require.NoError(t, err)
	m.Set(1, labels.Convex)
	m.Set(5, labels.Concave)
	m.Set(4, 99)

	img, err := LabelImage(m, DefaultPalette(labels))
	require.NoError(t, err)

	gray := func(x, y int) uint8 {
		return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
	}
	assert.Equal(t, uint8(128), gray(0, 0))
	assert.Equal(t, uint8(255), gray(1, 0))
	assert.Equal(t, uint8(0), gray(2, 1))
	_, _, _, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0), a, "unknown labels are transparent")

	vol, _ := raster.NewLabelMap(raster.NewGeometry(2, 2, 2), 0)
	_, err = LabelImage(vol, DefaultPalette(labels))
	assert.Error(t, err)
}

func TestPreviewAndEncode(t *testing.T) {
	r, _ := raster.Filled(raster.NewGeometry(64, 32), 1)
	v, err := NewViewer(r)
	require.NoError(t, err)
	img, err := v.ExtractSlice("z", 0)
	require.NoError(t, err)

	small := Preview(img, 16, false)
	assert.Equal(t, image.Rect(0, 0, 16, 8), small.Bounds())
	assert.Same(t, img, Preview(img, 128, true).(*image.Gray16))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, small))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, small.Bounds(), decoded.Bounds())
}

func TestLabelImageIsDeterministic(t *testing.T) {
	labels := classify.Labels{Flat: 5, Convex: -1, Concave: 12}
	m, err := raster.NewLabelMap(raster.NewGeometry(4, 3), labels.Flat)
	require.NoError(t, err)
	m.Set(0, labels.Convex)
	m.Set(7, labels.Concave)

	var first []byte
	for i := 0; i < 20; i++ {
		img, err := LabelImage(m, DefaultPalette(labels))
		require.NoError(t, err)
		// Index 0 is transparent, then labels in ascending order.
		require.Len(t, img.Palette, 4)
		assert.Equal(t, color.Color(color.White), img.Palette[1])
		assert.Equal(t, color.Color(color.Gray{Y: 128}), img.Palette[2])
		assert.Equal(t, color.Color(color.Black), img.Palette[3])
		assert.Equal(t, uint8(1), img.ColorIndexAt(0, 0))

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img))
		if first == nil {
			first = buf.Bytes()
			continue
		}
		require.Equal(t, first, buf.Bytes(), "encoding %d differs", i)
	}
}
