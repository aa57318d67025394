package output

import (
	"fmt"
	"math"

	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/atacama-sky/goes-abi-cli/internal/geos"
	"github.com/paulmach/orb"
)

// MapProjection maps geographic coordinates to a plane and back.
type MapProjection interface {
	Name() string
	// Forward projects points; ok is false for points not visible in the projection.
	Forward(lons, lats []float64) (x, y []float64, ok []bool, err error)
	// Inverse returns the coordinates of the mesh spanned by plane axes xs and ys,
	// one row per ys entry. Points off the map are NaN.
	Inverse(xs, ys []float64) (lons, lats [][]float64, err error)
}

const (
	Orthographic  = "orthographic"
	Geostationary = "geostationary"
	PlateCarree   = "platecarree"
)

// NewMapProjection builds the named projection. Orthographic maps are centred on the
// domain, geostationary maps use the satellite view of the data.
func NewMapProjection(name string, d domain.Domain, sat geos.Projection) (MapProjection, error) {
	switch name {
	case Orthographic:
		return orthographic{lon0: d.CenterLon, lat0: d.CenterLat}, nil
	case Geostationary:
		if sat.Height == 0 {
			return nil, fmt.Errorf("geostationary map needs the satellite projection")
		}
		return geostationary{sat: sat}, nil
	case PlateCarree:
		return plateCarree{}, nil
	}
	return nil, fmt.Errorf("unknown map projection %q (valid: %s, %s, %s)", name, Orthographic, Geostationary, PlateCarree)
}

type orthographic struct {
	lon0, lat0 float64
}

func (orthographic) Name() string { return Orthographic }

func (o orthographic) Forward(lons, lats []float64) ([]float64, []float64, []bool, error) {
	x := make([]float64, len(lons))
	y := make([]float64, len(lons))
	ok := make([]bool, len(lons))
	sinLat0, cosLat0 := math.Sincos(o.lat0 * radians)
	for i := range lons {
		sinLat, cosLat := math.Sincos(lats[i] * radians)
		sinDLon, cosDLon := math.Sincos((lons[i] - o.lon0) * radians)
		cosC := sinLat0*sinLat + cosLat0*cosLat*cosDLon
		x[i] = cosLat * sinDLon
		y[i] = cosLat0*sinLat - sinLat0*cosLat*cosDLon
		ok[i] = cosC >= 0 && !math.IsNaN(cosC)
	}
	return x, y, ok, nil
}

func (o orthographic) Inverse(xs, ys []float64) ([][]float64, [][]float64, error) {
	sinLat0, cosLat0 := math.Sincos(o.lat0 * radians)
	lons := make([][]float64, len(ys))
	lats := make([][]float64, len(ys))
	for i, y := range ys {
		lons[i] = make([]float64, len(xs))
		lats[i] = make([]float64, len(xs))
		for j, x := range xs {
			rho := math.Hypot(x, y)
			switch {
			case rho > 1:
				lons[i][j], lats[i][j] = math.NaN(), math.NaN()
			case rho == 0:
				lons[i][j], lats[i][j] = o.lon0, o.lat0
			default:
				sinC, cosC := math.Sincos(math.Asin(rho))
				lats[i][j] = math.Asin(cosC*sinLat0+y*sinC*cosLat0/rho) / radians
				lon := o.lon0 + math.Atan2(x*sinC, rho*cosC*cosLat0-y*sinC*sinLat0)/radians
				lons[i][j] = wrapLon(lon)
			}
		}
	}
	return lons, lats, nil
}

type geostationary struct {
	sat geos.Projection
}

func (geostationary) Name() string { return Geostationary }

func (g geostationary) Forward(lons, lats []float64) ([]float64, []float64, []bool, error) {
	return geos.ScanAngles(g.sat, lons, lats)
}

func (g geostationary) Inverse(xs, ys []float64) ([][]float64, [][]float64, error) {
	return geos.LonLat(g.sat, xs, ys)
}

type plateCarree struct{}

func (plateCarree) Name() string { return PlateCarree }

func (plateCarree) Forward(lons, lats []float64) ([]float64, []float64, []bool, error) {
	ok := make([]bool, len(lons))
	for i := range lons {
		ok[i] = geos.Valid(lons[i], lats[i])
	}
	return append([]float64(nil), lons...), append([]float64(nil), lats...), ok, nil
}

func (plateCarree) Inverse(xs, ys []float64) ([][]float64, [][]float64, error) {
	lons := make([][]float64, len(ys))
	lats := make([][]float64, len(ys))
	for i, y := range ys {
		lons[i] = make([]float64, len(xs))
		lats[i] = make([]float64, len(xs))
		for j, x := range xs {
			if !geos.Valid(x, y) {
				lons[i][j], lats[i][j] = math.NaN(), math.NaN()
				continue
			}
			lons[i][j], lats[i][j] = x, y
		}
	}
	return lons, lats, nil
}

const radians = math.Pi / 180

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

// extent is the plane rectangle covering the visible part of bound.
type extent struct {
	xMin, xMax, yMin, yMax float64
}

func (e extent) width() float64  { return e.xMax - e.xMin }
func (e extent) height() float64 { return e.yMax - e.yMin }

func mapExtent(p MapProjection, b orb.Bound) (extent, error) {
	const n = 41
	lons := make([]float64, 0, n*n)
	lats := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		lat := b.Min.Lat() + (b.Max.Lat()-b.Min.Lat())*float64(i)/(n-1)
		for j := 0; j < n; j++ {
			lons = append(lons, b.Min.Lon()+(b.Max.Lon()-b.Min.Lon())*float64(j)/(n-1))
			lats = append(lats, lat)
		}
	}
	x, y, ok, err := p.Forward(lons, lats)
	if err != nil {
		return extent{}, err
	}

	e := extent{xMin: math.Inf(1), xMax: math.Inf(-1), yMin: math.Inf(1), yMax: math.Inf(-1)}
	for i := range x {
		if !ok[i] {
			continue
		}
		e.xMin, e.xMax = math.Min(e.xMin, x[i]), math.Max(e.xMax, x[i])
		e.yMin, e.yMax = math.Min(e.yMin, y[i]), math.Max(e.yMax, y[i])
	}
	if !(e.width() > 0 && e.height() > 0) {
		return extent{}, fmt.Errorf("domain is not visible in %s projection", p.Name())
	}
	return e, nil
}
