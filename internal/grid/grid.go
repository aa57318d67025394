// Package grid holds geolocated 2D arrays and the array operations applied to them
// between loading and rendering: cropping, striding, nearest-neighbour regridding and
// band arithmetic.
package grid

import (
	"fmt"
	"math"
)

// ShapeMismatchError is returned by operations that need two arrays of equal shape.
type ShapeMismatchError struct {
	Op                   string
	LeftRows, LeftCols   int
	RightRows, RightCols int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: shape %dx%d does not match %dx%d", e.Op, e.LeftRows, e.LeftCols, e.RightRows, e.RightCols)
}

// Shape returns the row and column count of a rectangular array.
func Shape(a [][]float64) (int, int) {
	if len(a) == 0 {
		return 0, 0
	}
	return len(a), len(a[0])
}

// CheckShape returns a ShapeMismatchError when a and b are not both rectangular with the same shape.
func CheckShape(op string, a, b [][]float64) error {
	ar, ac := Shape(a)
	br, bc := Shape(b)
	mismatch := &ShapeMismatchError{Op: op, LeftRows: ar, LeftCols: ac, RightRows: br, RightCols: bc}
	if ar != br || ac != bc {
		return mismatch
	}
	for i := range a {
		if len(a[i]) != ac || len(b[i]) != bc {
			return mismatch
		}
	}
	return nil
}

// New allocates a rows x cols array filled with v.
func New(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		if v != 0 {
			for j := range row {
				row[j] = v
			}
		}
		out[i] = row
	}
	return out
}

// Map applies f to every cell and returns a new array.
func Map(a [][]float64, f func(float64) float64) [][]float64 {
	out := make([][]float64, len(a))
	for i, row := range a {
		o := make([]float64, len(row))
		for j, v := range row {
			o[j] = f(v)
		}
		out[i] = o
	}
	return out
}

// Zip applies f cellwise to two arrays of equal shape.
func Zip(op string, a, b [][]float64, f func(x, y float64) float64) ([][]float64, error) {
	if err := CheckShape(op, a, b); err != nil {
		return nil, err
	}
	out := make([][]float64, len(a))
	for i := range a {
		o := make([]float64, len(a[i]))
		for j := range a[i] {
			o[j] = f(a[i][j], b[i][j])
		}
		out[i] = o
	}
	return out, nil
}

// Range returns the smallest and largest finite value. ok is false when there are none.
func Range(a [][]float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range a {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

// GeoGrid is a value array together with the latitude and longitude of every cell.
// Invalid coordinates are NaN.
type GeoGrid struct {
	Values [][]float64
	Lats   [][]float64
	Lons   [][]float64
}

func NewGeoGrid(values, lats, lons [][]float64) (*GeoGrid, error) {
	if err := CheckShape("geogrid lats", values, lats); err != nil {
		return nil, err
	}
	if err := CheckShape("geogrid lons", values, lons); err != nil {
		return nil, err
	}
	return &GeoGrid{Values: values, Lats: lats, Lons: lons}, nil
}

func (g *GeoGrid) Shape() (int, int) {
	return Shape(g.Values)
}

// WithValues returns a grid sharing g's coordinates with different values.
func (g *GeoGrid) WithValues(values [][]float64) (*GeoGrid, error) {
	return NewGeoGrid(values, g.Lats, g.Lons)
}

// Difference computes a - b cellwise.
func Difference(a, b [][]float64) ([][]float64, error) {
	return Zip("difference", a, b, func(x, y float64) float64 { return x - y })
}

// NDVI computes the normalized difference (b - a) / (b + a) cellwise. Division by zero
// follows IEEE semantics.
func NDVI(a, b [][]float64) ([][]float64, error) {
	return Zip("ndvi", a, b, func(x, y float64) float64 { return (y - x) / (y + x) })
}
