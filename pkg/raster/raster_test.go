package raster

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoprofile/pkg/errdefs"
)

func TestGeometryIndexAndCoords(t *testing.T) {
	g := NewGeometry(4, 3, 2)
	require.NoError(t, g.Validate())
	assert.Equal(t, 24, g.Len())
	assert.Equal(t, []int{1, 4, 12}, g.Strides())

	// z*w*h + y*w + x
	assert.Equal(t, 1*12+2*4+3, g.Index(3, 2, 1))
	assert.Equal(t, -1, g.Index(4, 0, 0))
	assert.Equal(t, -1, g.Index(0, 0))

	coords := make([]int, 3)
	for i := 0; i < g.Len(); i++ {
		g.Coords(i, coords)
		assert.Equal(t, i, g.Index(coords...))
	}
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name  string
		geom  Geometry
		param string
	}{
		{"empty", Geometry{}, "size"},
		{"zero size", NewGeometry(3, 0), "size[1]"},
		{"bad spacing", Geometry{Size: []int{2}, Spacing: []float64{0}, Origin: []float64{0}}, "spacing[0]"},
		{"length mismatch", Geometry{Size: []int{2, 2}, Spacing: []float64{1}, Origin: []float64{0, 0}}, "geometry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.geom.Validate()
			require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
			var pe *errdefs.ParameterError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.param, pe.Name)
		})
	}
}

func TestGeometryEqual(t *testing.T) {
	a := NewGeometry(5, 5)
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Spacing[0] = 0.5
	assert.False(t, a.Equal(b))
	assert.Equal(t, 1.0, a.Spacing[0], "clone must not share buffers")

	c := NewGeometry(5, 5)
	c.Origin[1] = 10
	assert.False(t, a.Equal(c))
}

func TestNewAndFromData(t *testing.T) {
	r, err := New(NewGeometry(3, 2))
	require.NoError(t, err)
	assert.Equal(t, 6, r.Len())
	assert.Equal(t, 2, r.Dims())

	data := []float64{1, 2, 3, 4, 5, 6}
	r, err = FromData(NewGeometry(3, 2), data)
	require.NoError(t, err)
	data[0] = 100
	assert.Equal(t, 1.0, r.At(0), "FromData must copy")
	assert.Equal(t, 6.0, r.AtCoords(2, 1))
	assert.True(t, math.IsNaN(r.AtCoords(3, 1)))

	r.SetCoords(9, 1, 1)
	assert.Equal(t, 9.0, r.At(4))
	r.SetCoords(7, 5, 5) // ignored

	_, err = FromData(NewGeometry(3, 2), []float64{1})
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
}

func TestNewLikeAndClone(t *testing.T) {
	r, err := Filled(NewGeometry(2, 2), 7)
	require.NoError(t, err)

	like := NewLike(r)
	assert.True(t, SameGeometry(r, like))
	if diff := cmp.Diff([]float64{0, 0, 0, 0}, like.Data()); diff != "" {
		t.Errorf("NewLike data mismatch (-want +got):\n%s", diff)
	}

	c := r.Clone()
	c.Set(0, 1)
	assert.Equal(t, 7.0, r.At(0))
}

func TestCheckGeometry(t *testing.T) {
	a, _ := New(NewGeometry(4, 4))
	b, _ := New(NewGeometry(4, 5))
	require.NoError(t, CheckGeometry("op", a, NewLike(a)))

	err := CheckGeometry("op", a, b)
	require.ErrorIs(t, err, errdefs.ErrDimensionMismatch)
	var me *errdefs.MismatchError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, []int{4, 4}, me.Want)
	assert.Equal(t, []int{4, 5}, me.Got)

	require.ErrorIs(t, CheckGeometry("op", a, nil), errdefs.ErrInvalidParameter)
}

func TestLabelMap(t *testing.T) {
	m, err := NewLabelMap(NewGeometry(3, 3), 2)
	require.NoError(t, err)
	for _, l := range m.Data() {
		assert.Equal(t, Label(2), l)
	}
	m.Set(4, 1)
	l, ok := m.AtCoords(1, 1)
	require.True(t, ok)
	assert.Equal(t, Label(1), l)
	_, ok = m.AtCoords(3, 0)
	assert.False(t, ok)

	c := m.Clone()
	c.Set(4, 0)
	assert.Equal(t, Label(1), m.At(4))
}

func TestImageConversion(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 14, 23))
	img.SetGray(10, 20, color.Gray{Y: 255})
	img.SetGray(13, 22, color.Gray{Y: 51})

	r, err := FromImage(img, 255)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3}, r.Size())
	assert.InDelta(t, 255, r.AtCoords(0, 0), 1e-9)
	assert.InDelta(t, 51, r.AtCoords(3, 2), 1e-9)
	assert.InDelta(t, 0, r.AtCoords(1, 1), 1e-9)

	out, err := r.Gray16(0, 255)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), out.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(0), out.Gray16At(1, 1).Y)

	vol, _ := New(NewGeometry(2, 2, 2))
	_, err = vol.Gray16(0, 1)
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)

	_, err = FromImage(img, 0)
	require.ErrorIs(t, err, errdefs.ErrInvalidParameter)
}
