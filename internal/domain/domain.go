// Package domain holds the named map areas that imagery is cropped to and rendered for.
package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type LimitsType string

const (
	LimitsRadius   LimitsType = "radius"
	LimitsExplicit LimitsType = "explicit"
)

// KmPerDegree is the length of one degree of latitude used for domain extents.
const KmPerDegree = 111.2

// FullDiskName is the domain covering the whole GOES-East disk. It is never cropped.
const FullDiskName = "GOES-East_fulldisk"

type Domain struct {
	Name       string
	LimitsType LimitsType
	CenterLat  float64
	CenterLon  float64
	Radius     float64 // km

	// only used with LimitsExplicit
	LatMin, LatMax float64
	LonMin, LonMax float64
}

type UnknownDomainError struct {
	Name string
}

func (e *UnknownDomainError) Error() string {
	return fmt.Sprintf("domain unknown: %s", e.Name)
}

var registry = map[string]Domain{
	FullDiskName:              radius(FullDiskName, 0, -75.2, 7450),
	"Atacama_Squared":         radius("Atacama_Squared", -22.5, -71.4, 1000),
	"Atacama_Peru_West":       radius("Atacama_Peru_West", -15.4, -74.5, 300),
	"Atacama_Peru_East":       radius("Atacama_Peru_East", -17.4, -71.8, 300),
	"Atacama_Chile_North":     radius("Atacama_Chile_North", -20.1, -70.3, 300),
	"Atacama_Chile_Central":   radius("Atacama_Chile_Central", -24.5, -70.5, 300),
	"Atacama_Chile_South":     radius("Atacama_Chile_South", -29.0, -71.3, 300),
	"Argentina_Central":       radius("Argentina_Central", -34.6, -64.4, 800),
	"Argentina_Central_cerca": radius("Argentina_Central_cerca", -36.0, -66.0, 500),
}

func radius(name string, lat, lon, km float64) Domain {
	return Domain{Name: name, LimitsType: LimitsRadius, CenterLat: lat, CenterLon: lon, Radius: km}
}

// Lookup returns the registered domain with the given name.
func Lookup(name string) (Domain, error) {
	d, ok := registry[name]
	if !ok {
		return Domain{}, &UnknownDomainError{Name: name}
	}
	return d, nil
}

// Names lists all registered domain names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Domain) IsFullDisk() bool {
	return d.Name == FullDiskName
}

// Bounds is the geographic bounding box of the domain. Radius domains that reach a pole
// span all longitudes.
func (d Domain) Bounds() orb.Bound {
	if d.LimitsType == LimitsExplicit {
		return orb.Bound{Min: orb.Point{d.LonMin, d.LatMin}, Max: orb.Point{d.LonMax, d.LatMax}}
	}

	dLat := d.Radius / KmPerDegree
	latMin := math.Max(d.CenterLat-dLat, -90)
	latMax := math.Min(d.CenterLat+dLat, 90)
	if latMin <= -90 || latMax >= 90 {
		return orb.Bound{Min: orb.Point{-180, latMin}, Max: orb.Point{180, latMax}}
	}

	dLon := d.Radius / (KmPerDegree * math.Cos(d.CenterLat*math.Pi/180))
	return orb.Bound{
		Min: orb.Point{d.CenterLon - dLon, latMin},
		Max: orb.Point{d.CenterLon + dLon, latMax},
	}
}

// CropMargin is the extra border in degrees kept around the domain when cropping data.
func (d Domain) CropMargin() float64 {
	return 0.2 * d.Radius / 111
}

// GridSpacing is the gridline interval in degrees used when drawing the domain.
func (d Domain) GridSpacing() float64 {
	switch {
	case d.Radius > 400:
		return 10.0
	case d.Radius > 200:
		return 2.0
	default:
		return 1.0
	}
}

// Feature returns the domain extent as a GeoJSON polygon feature.
func (d Domain) Feature() *geojson.Feature {
	f := geojson.NewFeature(d.Bounds().ToPolygon())
	f.Properties["name"] = d.Name
	f.Properties["limits_type"] = string(d.LimitsType)
	f.Properties["center_lat"] = d.CenterLat
	f.Properties["center_lon"] = d.CenterLon
	f.Properties["radius_km"] = d.Radius
	return f
}

// FeatureCollection returns every registered domain as GeoJSON.
func FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, name := range Names() {
		fc.Append(registry[name].Feature())
	}
	return fc
}
