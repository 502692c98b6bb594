// Package structuring builds flat structuring elements for grey-scale
// morphology.
package structuring

import (
	"fmt"
	"slices"
	"strings"

	"geoprofile/pkg/errdefs"
)

// Shape selects the neighbourhood covered by an element.
type Shape int

const (
	// Ball covers the ellipsoid sum((d_i/r_i)^2) <= 1.
	Ball Shape = iota
	// Box covers the full hyper-rectangle |d_i| <= r_i.
	Box
	// Cross covers the axes only: one non-zero component, |d_i| <= r_i.
	Cross
)

func (s Shape) String() string {
	switch s {
	case Ball:
		return "ball"
	case Box:
		return "box"
	case Cross:
		return "cross"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape maps a configuration name to a Shape.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ball", "":
		return Ball, nil
	case "box":
		return Box, nil
	case "cross":
		return Cross, nil
	}
	return 0, errdefs.InvalidParameter("shape", name, "must be one of ball, box, cross")
}

// Element is a flat structuring element centred on the origin.
type Element struct {
	Shape  Shape
	Radius []int
}

// New returns an element after checking that every radius is positive.
func New(shape Shape, radius ...int) (Element, error) {
	e := Element{Shape: shape, Radius: slices.Clone(radius)}
	if err := e.Validate(); err != nil {
		return Element{}, err
	}
	return e, nil
}

// Uniform returns an element with the same radius n on each of dims axes.
func Uniform(shape Shape, dims, n int) (Element, error) {
	if dims <= 0 {
		return Element{}, errdefs.InvalidParameter("dims", dims, "must be positive")
	}
	radius := make([]int, dims)
	for i := range radius {
		radius[i] = n
	}
	return New(shape, radius...)
}

// Validate reports an invalid-parameter error for an empty radius vector, a
// non-positive radius or an unknown shape.
func (e Element) Validate() error {
	if len(e.Radius) == 0 {
		return errdefs.InvalidParameter("radius", e.Radius, "at least one axis is required")
	}
	for i, r := range e.Radius {
		if r <= 0 {
			return errdefs.InvalidParameter(fmt.Sprintf("radius[%d]", i), r, "must be positive")
		}
	}
	if e.Shape < Ball || e.Shape > Cross {
		return errdefs.InvalidParameter("shape", e.Shape, "unknown shape")
	}
	return nil
}

// Dims returns the number of axes the element spans.
func (e Element) Dims() int { return len(e.Radius) }

// Offsets enumerates the coordinate deltas covered by the element, origin
// included, in raster order.
func (e Element) Offsets() [][]int {
	dims := len(e.Radius)
	if dims == 0 {
		return nil
	}
	var out [][]int
	d := make([]int, dims)
	for i := range d {
		d[i] = -e.Radius[i]
	}
	for {
		if e.contains(d) {
			out = append(out, slices.Clone(d))
		}
		// Odometer increment, axis 0 fastest.
		axis := 0
		for axis < dims {
			d[axis]++
			if d[axis] <= e.Radius[axis] {
				break
			}
			d[axis] = -e.Radius[axis]
			axis++
		}
		if axis == dims {
			return out
		}
	}
}

func (e Element) contains(d []int) bool {
	switch e.Shape {
	case Box:
		return true
	case Cross:
		nonZero := 0
		for _, v := range d {
			if v != 0 {
				nonZero++
			}
		}
		return nonZero <= 1
	default:
		sum := 0.0
		for i, v := range d {
			f := float64(v) / float64(e.Radius[i])
			sum += f * f
		}
		return sum <= 1+1e-9
	}
}

func (e Element) String() string {
	return fmt.Sprintf("%s%v", e.Shape, e.Radius)
}
