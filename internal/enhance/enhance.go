// Package enhance turns calibrated ABI values into display values: reflectance stretches
// for the solar bands and Celsius brightness temperature for the emissive bands.
package enhance

import (
	"fmt"
	"math"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
	"github.com/atacama-sky/goes-abi-cli/internal/solar"
)

const boundaryEpsilon = 1e-5

var (
	stretchIn  = [...]float64{0, 30.0 / 255, 60.0 / 255, 120.0 / 255, 190.0 / 255, 1}
	stretchOut = [...]float64{0, 110.0 / 255, 160.0 / 255, 210.0 / 255, 240.0 / 255, 1}
)

// Stretch is the piecewise-linear reflectance stretch of Gumley et al. (2010) for one value.
func Stretch(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	v = math.Max(0, math.Min(1, v))
	if v < boundaryEpsilon {
		return 0
	}
	if v > 1-boundaryEpsilon {
		return 1
	}
	for i := 1; i < len(stretchIn)-1; i++ {
		if math.Abs(v-stretchIn[i]) < boundaryEpsilon {
			return stretchOut[i]
		}
	}
	for i := 0; i < len(stretchIn)-1; i++ {
		if v < stretchIn[i+1] {
			return (v-stretchIn[i])/(stretchIn[i+1]-stretchIn[i])*(stretchOut[i+1]-stretchOut[i]) + stretchOut[i]
		}
	}
	return 1
}

// PiecewiseLinear applies Stretch to every cell.
func PiecewiseLinear(a [][]float64) [][]float64 {
	return grid.Map(a, Stretch)
}

// ContrastParams returns the gamma exponent and stretch range fitted for cloud tops at
// the given solar zenith angle in degrees.
func ContrastParams(sza float64) (gamma, rangeMin, rangeMax float64) {
	c := math.Cos(sza * math.Pi / 180)
	gamma = 1.6*c*c - 3.3*c + 1.9
	rangeMin = 0.03*gamma*gamma - 0.008*gamma + 0.02
	if gamma > 1 {
		rangeMax = 0.5
	} else {
		rangeMax = 0.9*gamma*gamma - 1.7*gamma + 1.3
	}
	return gamma, rangeMin, rangeMax
}

// MaxContrast is the storm-top contrast enhancement for visible reflectance keyed on solar
// zenith angle.
func MaxContrast(a, sza [][]float64) ([][]float64, error) {
	return grid.Zip("max contrast", a, sza, func(v, z float64) float64 {
		gamma, lo, hi := ContrastParams(z)
		return (math.Pow(v, 1/gamma) - lo) / (hi - lo)
	})
}

type Normalization string

const (
	NormalizationNone      Normalization = "none"
	NormalizationPiecewise Normalization = "piecewise_linear"
	NormalizationStorm     Normalization = "max_storm_contrast"
)

func ParseNormalization(s string) (Normalization, error) {
	switch n := Normalization(s); n {
	case NormalizationNone, NormalizationPiecewise, NormalizationStorm:
		return n, nil
	case "":
		return NormalizationNone, nil
	}
	return "", fmt.Errorf("unknown normalization %q (valid: %s, %s, %s)", s,
		NormalizationNone, NormalizationPiecewise, NormalizationStorm)
}

const kelvinOffset = 273.15

// Calibrate prepares one band for display. Reflective bands get the requested
// normalization, emissive bands are converted from Kelvin to Celsius.
func Calibrate(band abi.BandInfo, norm Normalization, sensed time.Time, g *grid.GeoGrid) ([][]float64, error) {
	if !band.IsReflective() {
		return grid.Map(g.Values, func(v float64) float64 { return v - kelvinOffset }), nil
	}

	switch norm {
	case NormalizationNone, "":
		return g.Values, nil
	case NormalizationPiecewise:
		return PiecewiseLinear(g.Values), nil
	case NormalizationStorm:
		sza, err := solar.ZenithAngle(sensed, g.Lons, g.Lats)
		if err != nil {
			return nil, err
		}
		return MaxContrast(g.Values, sza)
	}
	return nil, fmt.Errorf("unknown normalization %q", norm)
}
