package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	d, err := Lookup("Atacama_Squared")
	require.NoError(t, err)
	assert.Equal(t, LimitsRadius, d.LimitsType)
	assert.Equal(t, -22.5, d.CenterLat)
	assert.Equal(t, -71.4, d.CenterLon)
	assert.Equal(t, 1000.0, d.Radius)
	assert.False(t, d.IsFullDisk())
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("Mars_Olympus")
	var target *UnknownDomainError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "Mars_Olympus", target.Name)
	assert.Contains(t, err.Error(), "Mars_Olympus")
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	require.Len(t, names, 9)
	assert.Equal(t, "Argentina_Central", names[0])
	assert.Contains(t, names, FullDiskName)
}

func TestBounds_Radius(t *testing.T) {
	d, err := Lookup("Atacama_Squared")
	require.NoError(t, err)

	b := d.Bounds()
	dLat := 1000 / KmPerDegree
	dLon := 1000 / (KmPerDegree * math.Cos(-22.5*math.Pi/180))

	assert.InDelta(t, -22.5-dLat, b.Min.Lat(), 1e-12)
	assert.InDelta(t, -22.5+dLat, b.Max.Lat(), 1e-12)
	assert.InDelta(t, -71.4-dLon, b.Min.Lon(), 1e-12)
	assert.InDelta(t, -71.4+dLon, b.Max.Lon(), 1e-12)
}

func TestBounds_FullDiskReachesPoles(t *testing.T) {
	d, err := Lookup(FullDiskName)
	require.NoError(t, err)
	assert.True(t, d.IsFullDisk())

	b := d.Bounds()
	assert.Equal(t, -90.0, b.Min.Lat())
	assert.Equal(t, 90.0, b.Max.Lat())
	assert.Equal(t, -180.0, b.Min.Lon())
	assert.Equal(t, 180.0, b.Max.Lon())
}

func TestBounds_Explicit(t *testing.T) {
	d := Domain{Name: "box", LimitsType: LimitsExplicit, LatMin: -30, LatMax: -20, LonMin: -75, LonMax: -65}
	b := d.Bounds()
	assert.Equal(t, -75.0, b.Min.Lon())
	assert.Equal(t, -20.0, b.Max.Lat())
}

func TestCropMargin(t *testing.T) {
	d, _ := Lookup("Atacama_Chile_North")
	assert.InDelta(t, 0.2*300/111, d.CropMargin(), 1e-12)
}

func TestGridSpacing(t *testing.T) {
	assert.Equal(t, 10.0, Domain{Radius: 1000}.GridSpacing())
	assert.Equal(t, 2.0, Domain{Radius: 300}.GridSpacing())
	assert.Equal(t, 1.0, Domain{Radius: 150}.GridSpacing())
}

func TestFeatureCollection(t *testing.T) {
	raw, err := json.Marshal(FeatureCollection())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Atacama_Chile_South"`)
	assert.Contains(t, string(raw), `"Polygon"`)
}
