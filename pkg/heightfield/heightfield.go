// Package heightfield provides a wrapping 2D grid of elevations with bilinear sampling.
package heightfield

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensions is returned when a field is smaller than 2x2 or its data
// does not match its dimensions.
var ErrDimensions = errors.New("heightfield: invalid dimensions")

// Field is an immutable W x H grid of heights that wraps in both axes.
// Values are stored row-major: index = y*W + x.
type Field struct {
	width  int
	height int
	values []float64
}

// New creates a field from row-major values. The slice is copied.
func New(width, height int, values []float64) (*Field, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: %dx%d (need at least 2x2)", ErrDimensions, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d grid", ErrDimensions, len(values), width, height)
	}

	f := &Field{
		width:  width,
		height: height,
		values: make([]float64, len(values)),
	}
	copy(f.values, values)
	return f, nil
}

// Flat creates a field of zeros.
func Flat(width, height int) (*Field, error) {
	return New(width, height, make([]float64, width*height))
}

// Width returns the number of samples along x.
func (f *Field) Width() int { return f.width }

// Height returns the number of samples along y.
func (f *Field) Height() int { return f.height }

// At returns the stored value at an integer lattice point. Indices wrap.
func (f *Field) At(x, y int) float64 {
	return f.values[wrapIndex(y, f.height)*f.width+wrapIndex(x, f.width)]
}

// MinMax returns the lowest and highest stored heights.
func (f *Field) MinMax() (lo, hi float64) {
	lo, hi = f.values[0], f.values[0]
	for _, v := range f.values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Sample returns the bilinearly interpolated height at (x, y).
// Any finite coordinate is accepted; both axes wrap.
func (f *Field) Sample(x, y float64) float64 {
	c := Locate(x, y, f.width, f.height)
	return c.Blend(
		f.values[c.Y0*f.width+c.X0],
		f.values[c.Y0*f.width+c.X1],
		f.values[c.Y1*f.width+c.X0],
		f.values[c.Y1*f.width+c.X1],
	)
}

// Cell identifies the four lattice corners around a wrapped point and the
// fractional offset inside that cell.
type Cell struct {
	X0, X1 int
	Y0, Y1 int
	FX, FY float64
}

// Locate wraps (x, y) into a width x height lattice and returns the
// surrounding cell. Shared by every bilinear query on the torus so that
// heights, points and normals agree on the same corners.
func Locate(x, y float64, width, height int) Cell {
	x = Wrap(x, width)
	y = Wrap(y, height)

	fx, fy := math.Floor(x), math.Floor(y)
	x0, y0 := int(fx), int(fy)

	return Cell{
		X0: x0,
		X1: (x0 + 1) % width,
		Y0: y0,
		Y1: (y0 + 1) % height,
		FX: x - fx,
		FY: y - fy,
	}
}

// Weights returns the bilinear weights for corners (X0,Y0), (X1,Y0), (X0,Y1), (X1,Y1).
func (c Cell) Weights() [4]float64 {
	return [4]float64{
		(1 - c.FX) * (1 - c.FY),
		c.FX * (1 - c.FY),
		(1 - c.FX) * c.FY,
		c.FX * c.FY,
	}
}

// Blend combines four corner values with the cell weights.
func (c Cell) Blend(v00, v10, v01, v11 float64) float64 {
	w := c.Weights()
	return v00*w[0] + v10*w[1] + v01*w[2] + v11*w[3]
}

// Wrap maps v into [0, period). Negative values of any magnitude wrap
// the same way as values past the end.
func Wrap(v float64, period int) float64 {
	p := float64(period)
	v = math.Mod(v, p)
	if v < 0 {
		v += p
	}
	// -tiny + p rounds to p
	if v >= p {
		v = 0
	}
	return v
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
