// Package solar computes solar zenith angles on latitude/longitude grids with the
// low precision PSA algorithm (Blanco-Muriel et al. 2001), accurate to about 0.01°.
package solar

import (
	"math"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/grid"
)

const (
	earthMeanRadius   = 6371.01   // km
	astronomicalUnit  = 149597890 // km
	j2000JulianDate   = 2451545.0
	radiansPerDegree  = math.Pi / 180
	siderealHourToDeg = 15.0
)

// DecimalHours is the UT time of day in hours.
func DecimalHours(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) + (float64(t.Minute())+float64(t.Second())/60)/60
}

// JulianDate converts a UTC time to a Julian date with the integer Gregorian calendar formula.
// Valid for dates after 1582.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	year, month, day := float64(t.Year()), float64(t.Month()), float64(t.Day())

	aux1 := math.Trunc((month - 14) / 12)
	aux2 := math.Trunc((1461*(year+4800+aux1))/4) +
		math.Trunc((367*(month-2-12*aux1))/12) -
		math.Trunc((3*math.Trunc((year+4900+aux1)/100))/4) +
		day - 32075
	return aux2 - 0.5 + DecimalHours(t)/24
}

// Position holds the time dependent part of the sun position.
type Position struct {
	RightAscension float64 // radians, [0, 2π)
	Declination    float64 // radians
	// GreenwichMeanSiderealTime in hours, not reduced to [0, 24).
	GreenwichMeanSiderealTime float64
}

// SunPosition computes the celestial coordinates of the sun at t.
func SunPosition(t time.Time) Position {
	hours := DecimalHours(t)
	n := JulianDate(t) - j2000JulianDate

	omega := 2.1429 - 0.0010394594*n
	meanLongitude := 4.8950630 + 0.017202791698*n
	meanAnomaly := 6.2400600 + 0.0172019699*n
	eclipticLongitude := meanLongitude + 0.03341607*math.Sin(meanAnomaly) +
		0.00034894*math.Sin(2*meanAnomaly) - 0.0001134 - 0.0000203*math.Sin(omega)
	eclipticObliquity := 0.4090928 - 6.2140e-9*n + 0.0000396*math.Cos(omega)

	sinEclipticLongitude := math.Sin(eclipticLongitude)
	y := math.Cos(eclipticObliquity) * sinEclipticLongitude
	x := math.Cos(eclipticLongitude)
	rightAscension := math.Atan2(y, x)
	if rightAscension < 0 {
		rightAscension += 2 * math.Pi
	}
	declination := math.Asin(math.Sin(eclipticObliquity) * sinEclipticLongitude)

	return Position{
		RightAscension:            rightAscension,
		Declination:               declination,
		GreenwichMeanSiderealTime: 6.6974243242 + 0.0657098283*n + hours,
	}
}

// Zenith returns the zenith angle in degrees at one location, parallax corrected.
func (p Position) Zenith(lon, lat float64) float64 {
	localMeanSiderealTime := (p.GreenwichMeanSiderealTime*siderealHourToDeg + lon) * radiansPerDegree
	hourAngle := localMeanSiderealTime - p.RightAscension
	latRad := lat * radiansPerDegree

	cosZenith := math.Cos(latRad)*math.Cos(hourAngle)*math.Cos(p.Declination) +
		math.Sin(p.Declination)*math.Sin(latRad)
	// rounding can push the cosine a hair past ±1
	zenith := math.Acos(math.Max(-1, math.Min(1, cosZenith)))
	parallax := (earthMeanRadius / astronomicalUnit) * math.Sin(zenith)
	return (zenith + parallax) / radiansPerDegree
}

// ZenithAngle computes the solar zenith angle in degrees for every cell of a lon/lat grid.
// NaN coordinates produce NaN angles.
func ZenithAngle(t time.Time, lons, lats [][]float64) ([][]float64, error) {
	if err := grid.CheckShape("solar zenith", lons, lats); err != nil {
		return nil, err
	}
	pos := SunPosition(t)
	out := make([][]float64, len(lons))
	for i := range lons {
		row := make([]float64, len(lons[i]))
		for j := range lons[i] {
			row[j] = pos.Zenith(lons[i][j], lats[i][j])
		}
		out[i] = row
	}
	return out, nil
}
