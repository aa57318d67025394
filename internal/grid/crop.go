package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/paulmach/orb"
)

// Rect is a half-open pixel index rectangle.
type Rect struct {
	RowMin, RowMax int
	ColMin, ColMax int
}

func FullRect(rows, cols int) Rect {
	return Rect{RowMax: rows, ColMax: cols}
}

func (r Rect) Rows() int { return r.RowMax - r.RowMin }
func (r Rect) Cols() int { return r.ColMax - r.ColMin }

func (r Rect) Empty() bool {
	return r.Rows() <= 0 || r.Cols() <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("rows %d:%d cols %d:%d", r.RowMin, r.RowMax, r.ColMin, r.ColMax)
}

// GeometryDegenerateError means no pixel falls inside the requested geographic box. Callers
// treat it as a warning and keep the uncropped grid.
type GeometryDegenerateError struct {
	Domain string
	Bound  orb.Bound
}

func (e *GeometryDegenerateError) Error() string {
	return fmt.Sprintf("domain %s: no pixels inside lon [%.2f, %.2f] lat [%.2f, %.2f], crop skipped",
		e.Domain, e.Bound.Min.Lon(), e.Bound.Max.Lon(), e.Bound.Min.Lat(), e.Bound.Max.Lat())
}

// BoundingRect returns the smallest rectangle holding every pixel whose coordinates lie in b.
// NaN coordinates never match.
func BoundingRect(lats, lons [][]float64, b orb.Bound) (Rect, error) {
	if err := CheckShape("bounding rect", lats, lons); err != nil {
		return Rect{}, err
	}
	r := Rect{RowMin: math.MaxInt, RowMax: -1, ColMin: math.MaxInt, ColMax: -1}
	for i := range lats {
		for j := range lats[i] {
			lat, lon := lats[i][j], lons[i][j]
			if math.IsNaN(lat) || math.IsNaN(lon) {
				continue
			}
			if !b.Contains(orb.Point{lon, lat}) {
				continue
			}
			r.RowMin = min(r.RowMin, i)
			r.RowMax = max(r.RowMax, i+1)
			r.ColMin = min(r.ColMin, j)
			r.ColMax = max(r.ColMax, j+1)
		}
	}
	if r.RowMax < 0 {
		return Rect{}, &GeometryDegenerateError{Bound: b}
	}
	return r, nil
}

// Slice copies the cells of a inside r.
func Slice(a [][]float64, r Rect) [][]float64 {
	out := make([][]float64, 0, r.Rows())
	for i := r.RowMin; i < r.RowMax; i++ {
		row := make([]float64, r.Cols())
		copy(row, a[i][r.ColMin:r.ColMax])
		out = append(out, row)
	}
	return out
}

// Crop slices values and coordinates to r.
func (g *GeoGrid) Crop(r Rect) *GeoGrid {
	return &GeoGrid{
		Values: Slice(g.Values, r),
		Lats:   Slice(g.Lats, r),
		Lons:   Slice(g.Lons, r),
	}
}

// CropToDomain crops g to the domain's bounding box widened by its crop margin. The full-disk
// domain is returned unchanged. When nothing falls inside the box the uncropped grid and its
// full rectangle come back together with a *GeometryDegenerateError.
func CropToDomain(g *GeoGrid, d domain.Domain) (*GeoGrid, Rect, error) {
	rows, cols := g.Shape()
	full := FullRect(rows, cols)
	if d.IsFullDisk() {
		return g, full, nil
	}

	bound := d.Bounds().Pad(d.CropMargin())
	r, err := BoundingRect(g.Lats, g.Lons, bound)
	if err != nil {
		var degenerate *GeometryDegenerateError
		if errors.As(err, &degenerate) {
			degenerate.Domain = d.Name
			return g, full, degenerate
		}
		return nil, Rect{}, err
	}
	return g.Crop(r), r, nil
}

// Downsample keeps every k-th row and column starting at the first. k <= 1 returns a.
func Downsample(a [][]float64, k int) [][]float64 {
	if k <= 1 {
		return a
	}
	out := make([][]float64, 0, (len(a)+k-1)/k)
	for i := 0; i < len(a); i += k {
		row := make([]float64, 0, (len(a[i])+k-1)/k)
		for j := 0; j < len(a[i]); j += k {
			row = append(row, a[i][j])
		}
		out = append(out, row)
	}
	return out
}

func (g *GeoGrid) Downsample(k int) *GeoGrid {
	return &GeoGrid{
		Values: Downsample(g.Values, k),
		Lats:   Downsample(g.Lats, k),
		Lons:   Downsample(g.Lons, k),
	}
}
