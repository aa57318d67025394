// Package geos converts ABI fixed grid scan angles to geographic coordinates.
package geos

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/atacama-sky/goes-abi-cli/internal/utils"
)

// Projection holds the goes_imager_projection attributes of an ABI file.
type Projection struct {
	Height          float64 // perspective point height above the ellipsoid, m
	LongitudeOrigin float64 // degrees
	SweepAxis       string
	SemiMajor       float64 // m
	SemiMinor       float64 // m
}

// Proj4 describes the fixed grid with scan angles already multiplied by Height.
// The GRS80 ellipsoid is what the ABI fixed grid is defined on.
func (p Projection) Proj4() string {
	sweep := p.SweepAxis
	if sweep == "" {
		sweep = "x"
	}
	return fmt.Sprintf("+proj=geos +h=%.1f +lon_0=%g +sweep=%s +ellps=GRS80 +units=m +no_defs", p.Height, p.LongitudeOrigin, sweep)
}

const geographicProj4 = "+proj=longlat +ellps=GRS80 +no_defs"

// Mesh expands 1D scan angle axes in radians to per pixel projection metres, row major
// with y along rows.
func Mesh(x, y []float64, height float64) (xs, ys []float64) {
	xs = make([]float64, 0, len(x)*len(y))
	ys = make([]float64, 0, len(x)*len(y))
	for _, yv := range y {
		for _, xv := range x {
			xs = append(xs, xv*height)
			ys = append(ys, yv*height)
		}
	}
	return xs, ys
}

// Valid reports whether lon/lat are finite and within [-180,180] x [-90,90].
func Valid(lon, lat float64) bool {
	return !math.IsNaN(lon) && !math.IsNaN(lat) &&
		lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// LonLat computes geographic coordinates for every pixel of the grid spanned by x and y.
// Off-disk pixels and failed transforms are NaN in both outputs.
func LonLat(p Projection, x, y []float64) (lons, lats [][]float64, err error) {
	xs, ys := Mesh(x, y, p.Height)
	ok := make([]bool, len(xs))

	err = utils.WithGDAL(func() error {
		src, err := godal.NewSpatialRefFromProj4(p.Proj4())
		if err != nil {
			return fmt.Errorf("geos spatial ref: %w", err)
		}
		defer src.Close()
		dst, err := godal.NewSpatialRefFromProj4(geographicProj4)
		if err != nil {
			return fmt.Errorf("geographic spatial ref: %w", err)
		}
		defer dst.Close()

		tr, err := godal.NewTransform(src, dst)
		if err != nil {
			return fmt.Errorf("create transform: %w", err)
		}
		defer tr.Close()

		// points off the Earth disk fail individually and are flagged in ok
		_ = tr.TransformEx(xs, ys, nil, ok)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	rows, cols := len(y), len(x)
	lons = make([][]float64, rows)
	lats = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		lonRow := make([]float64, cols)
		latRow := make([]float64, cols)
		for j := 0; j < cols; j++ {
			k := i*cols + j
			lon, lat := xs[k], ys[k]
			if !ok[k] || !Valid(lon, lat) {
				lon, lat = math.NaN(), math.NaN()
			}
			lonRow[j] = lon
			latRow[j] = lat
		}
		lons[i] = lonRow
		lats[i] = latRow
	}
	return lons, lats, nil
}

// ScanAngles is the inverse of LonLat for scattered points: it returns fixed grid scan
// angles in radians. ok is false for points the satellite cannot see.
func ScanAngles(p Projection, lons, lats []float64) (x, y []float64, ok []bool, err error) {
	x = append([]float64(nil), lons...)
	y = append([]float64(nil), lats...)
	ok = make([]bool, len(x))

	err = utils.WithGDAL(func() error {
		src, err := godal.NewSpatialRefFromProj4(geographicProj4)
		if err != nil {
			return fmt.Errorf("geographic spatial ref: %w", err)
		}
		defer src.Close()
		dst, err := godal.NewSpatialRefFromProj4(p.Proj4())
		if err != nil {
			return fmt.Errorf("geos spatial ref: %w", err)
		}
		defer dst.Close()

		tr, err := godal.NewTransform(src, dst)
		if err != nil {
			return fmt.Errorf("create transform: %w", err)
		}
		defer tr.Close()

		_ = tr.TransformEx(x, y, nil, ok)
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	for i := range x {
		if !ok[i] || math.IsInf(x[i], 0) || math.IsNaN(x[i]) || math.IsInf(y[i], 0) || math.IsNaN(y[i]) {
			x[i], y[i], ok[i] = math.NaN(), math.NaN(), false
			continue
		}
		x[i] /= p.Height
		y[i] /= p.Height
	}
	return x, y, ok, nil
}
