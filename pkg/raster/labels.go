package raster

import "slices"

// Label is an integer class code attached to a pixel.
type Label int32

// LabelMap is a grid of labels sharing a raster geometry.
type LabelMap struct {
	geom Geometry
	data []Label
}

// NewLabelMap allocates a label map with every pixel set to fill.
func NewLabelMap(geom Geometry, fill Label) (*LabelMap, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	m := &LabelMap{geom: geom.Clone(), data: make([]Label, geom.Len())}
	if fill != 0 {
		for i := range m.data {
			m.data[i] = fill
		}
	}
	return m, nil
}

// Geometry returns a copy of the label map geometry.
func (m *LabelMap) Geometry() Geometry { return m.geom.Clone() }

// Size returns the per-axis pixel counts. The result must not be modified.
func (m *LabelMap) Size() []int { return m.geom.Size }

// Len returns the number of pixels.
func (m *LabelMap) Len() int { return len(m.data) }

// Data returns the backing buffer.
func (m *LabelMap) Data() []Label { return m.data }

// At returns the label at linear index i.
func (m *LabelMap) At(i int) Label { return m.data[i] }

// Set stores l at linear index i.
func (m *LabelMap) Set(i int, l Label) { m.data[i] = l }

// AtCoords returns the label at coords and whether the coords were inside
// the grid.
func (m *LabelMap) AtCoords(coords ...int) (Label, bool) {
	i := m.geom.Index(coords...)
	if i < 0 {
		return 0, false
	}
	return m.data[i], true
}

// Clone returns a deep copy of m.
func (m *LabelMap) Clone() *LabelMap {
	return &LabelMap{geom: m.geom.Clone(), data: slices.Clone(m.data)}
}
