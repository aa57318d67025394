package abi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBand_Table(t *testing.T) {
	b2, err := Band(2)
	require.NoError(t, err)
	assert.Equal(t, 0.5, b2.NadirResolution)
	assert.Equal(t, ClassVIS, b2.Class)
	assert.Equal(t, 4, b2.ResolutionFactor())

	b13, err := Band(13)
	require.NoError(t, err)
	assert.Equal(t, "10.3µm", b13.CentralWavelength)
	assert.False(t, b13.IsReflective())
	assert.Equal(t, 1, b13.ResolutionFactor())

	for _, n := range []int{1, 3, 5} {
		b, err := Band(n)
		require.NoError(t, err)
		assert.Equal(t, 2, b.ResolutionFactor(), "band %d", n)
	}
}

func TestBand_OutOfRange(t *testing.T) {
	for _, n := range []int{0, 17, -3} {
		_, err := Band(n)
		var target *UnknownBandError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, n, target.Band)
	}
}

func TestSameGrid(t *testing.T) {
	b2, _ := Band(2)
	b3, _ := Band(3)
	b1, _ := Band(1)
	b13, _ := Band(13)
	b7, _ := Band(7)

	assert.False(t, SameGrid(b2, b3))
	assert.True(t, SameGrid(b1, b3))
	assert.True(t, SameGrid(b13, b7))
}

func TestRegionWindow_AtacamaBand13(t *testing.T) {
	w, err := RegionWindow(RegionAtacama, 13)
	require.NoError(t, err)
	assert.Equal(t, Window{RowMin: 3400, RowMax: 4400, ColMin: 2550, ColMax: 3100}, w)
	assert.Equal(t, 1000, w.Rows())
	assert.Equal(t, 550, w.Cols())
}

func TestRegionWindow_ScaledByBand(t *testing.T) {
	tests := []struct {
		band int
		want Window
	}{
		{2, Window{RowMin: 13600, RowMax: 17600, ColMin: 10200, ColMax: 12400}},
		{3, Window{RowMin: 6800, RowMax: 8800, ColMin: 5100, ColMax: 6200}},
		{7, Window{RowMin: 3400, RowMax: 4400, ColMin: 2550, ColMax: 3100}},
	}
	for _, tt := range tests {
		got, err := RegionWindow(RegionAtacama, tt.band)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "band %d", tt.band)
	}
}

func TestRegionWindow_Unknown(t *testing.T) {
	_, err := RegionWindow("patagonia", 13)
	require.Error(t, err)

	_, err = RegionWindow(RegionSSA, 99)
	require.Error(t, err)
}

func TestWindow_Clip(t *testing.T) {
	w := Window{RowMin: 10, RowMax: 50, ColMin: -5, ColMax: 8}
	assert.Equal(t, Window{RowMin: 10, RowMax: 20, ColMin: 0, ColMax: 8}, w.Clip(20, 30))
}

func TestObjectPrefixAndPattern(t *testing.T) {
	ts := time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, "ABI-L2-CMIPF/2021/115/17/", ObjectPrefix(FullDisk, ts))
	assert.Equal(t, "ABI-L2-CMIPM/2021/115/17/", ObjectPrefix(MesoscaleSector2, ts))
	assert.Equal(t, "*L2-CMIPF-M6C13_G16_s20211151700*", ObjectPattern(FullDisk, 13, ts))
	assert.Equal(t, "*L2-CMIPM1-M6C02_G16_s20211151700*", ObjectPattern(MesoscaleSector1, 2, ts))
}

func TestMatchObjects(t *testing.T) {
	ts := time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC)
	keys := []string{
		"ABI-L2-CMIPF/2021/115/17/OR_ABI-L2-CMIPF-M6C13_G16_s20211151700207_e20211151709526_c20211151710012.nc",
		"ABI-L2-CMIPF/2021/115/17/OR_ABI-L2-CMIPF-M6C13_G16_s20211151710207_e20211151719526_c20211151720012.nc",
		"ABI-L2-CMIPF/2021/115/17/OR_ABI-L2-CMIPF-M6C14_G16_s20211151700207_e20211151709526_c20211151710012.nc",
	}

	matched := MatchObjects(keys, ObjectPattern(FullDisk, 13, ts))
	require.Len(t, matched, 1)
	assert.Equal(t, keys[0], matched[0])
	assert.Empty(t, MatchObjects(keys, ObjectPattern(FullDisk, 1, ts)))
}

func TestLocalNames(t *testing.T) {
	key := "ABI-L2-CMIPF/2021/115/17/OR_ABI-L2-CMIPF-M6C13_G16_s20211151700207_e20211151709526_c20211151710012.nc"
	name := LocalName(key)
	assert.Equal(t, "ABI-L2-CMIPF-M6C13_G16_s20211151700207_e20211151709526_c20211151710012.nc", name)

	regional := RegionFileName(name, RegionAtacama)
	assert.Equal(t, "ABI-L2-CMIPF-M6C13_G16_s20211151700207_e20211151709526_c20211151710012_region-atacama.nc", regional)
	assert.True(t, len(regional) > len(ExpectedSuffix(FullDisk, RegionAtacama)))
	assert.Equal(t, "region-atacama.nc", regional[len(regional)-len(ExpectedSuffix(FullDisk, RegionAtacama)):])

	ts := time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC)
	ok, err := MatchLocal(LocalPattern(FullDisk, 13, ts, RegionAtacama), regional)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct("L2-CMIPM2")
	require.NoError(t, err)
	assert.Equal(t, MesoscaleSector2, p)
	assert.Equal(t, "L2-CMIPM", p.Family())
	assert.False(t, p.IsFullDisk())

	p, err = ParseProduct("fulldisk")
	require.NoError(t, err)
	assert.Equal(t, FullDisk, p)
	assert.Equal(t, "L2-CMIPF", p.Family())

	_, err = ParseProduct("L1b-RadF")
	require.Error(t, err)
}
