package output

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/atacama-sky/goes-abi-cli/internal/enhance"
	"github.com/atacama-sky/goes-abi-cli/internal/geos"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
	"github.com/atacama-sky/goes-abi-cli/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalette_ClassicIR(t *testing.T) {
	p, err := NewPalette(PaletteOptions{Name: ClassicIR, ColorsBetween: 5, Min: 3, Max: 4})
	require.NoError(t, err)
	require.Len(t, p.Levels, 671)
	assert.Len(t, p.Colors, 670)
	assert.Equal(t, -90.0, p.Levels[0])
	assert.Equal(t, -20.0, p.Levels[70])
	assert.InDelta(t, 40.0, p.Levels[670], 1e-9)
	assert.Equal(t, ClassicIR, p.Name)

	bar := p.Colorbar()
	assert.Len(t, bar.Levels, 101)
	assert.Len(t, bar.Colors, 100)
	assert.Equal(t, []float64{-90, -80, -70, -60, -50, -40, -30, -20, 0, 20, 40}, bar.Ticks)
}

func TestPalette_Binning(t *testing.T) {
	p, err := NewPalette(PaletteOptions{Name: "viridis", ColorsBetween: 10, Min: 0, Max: 1, Missing: "magenta"})
	require.NoError(t, err)
	require.Len(t, p.Levels, 11)
	require.Len(t, p.Colors, 10)

	assert.Equal(t, p.Under, p.Color(-0.1))
	assert.Equal(t, p.Over, p.Color(1.5))
	assert.Equal(t, p.Colors[0], p.Color(0))
	assert.Equal(t, p.Colors[0], p.Color(0.05))
	assert.Equal(t, p.Colors[1], p.Color(0.1))
	assert.Equal(t, p.Colors[9], p.Color(1))

	r, g, b, _ := p.Color(math.NaN()).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0xffff}, []uint32{r, g, b})
	assert.Len(t, p.Ticks, 11)
}

func TestPalette_Reversed(t *testing.T) {
	fwd, err := NewPalette(PaletteOptions{Name: "Gray_BW", ColorsBetween: 4, Min: 0, Max: 1})
	require.NoError(t, err)
	rev, err := NewPalette(PaletteOptions{Name: "Gray_BW", Reversed: true, ColorsBetween: 4, Min: 0, Max: 1})
	require.NoError(t, err)

	assert.Equal(t, "Gray_BW-reversed", rev.Name)
	assert.Equal(t, fwd.Under, rev.Over)
	assert.Equal(t, fwd.Colors[0], rev.Colors[3])
}

func TestPalette_Double(t *testing.T) {
	for _, n := range []int{100, 5} {
		p, err := NewPalette(PaletteOptions{Name: "LaJolla+Oslo", ColorsBetween: n, Min: -5, Max: 5})
		require.NoError(t, err)
		assert.Len(t, p.Colors, n)
		assert.Len(t, p.Levels, n+1)
	}
	p, _ := NewPalette(PaletteOptions{Name: "LaJolla+Oslo", ColorsBetween: 100, Min: -5, Max: 5})
	assert.Len(t, p.Ticks, 21)
}

func TestPalette_Errors(t *testing.T) {
	_, err := NewPalette(PaletteOptions{Name: "jet", ColorsBetween: 10, Min: 0, Max: 1})
	assert.ErrorContains(t, err, "jet")
	_, err = NewPalette(PaletteOptions{Name: "viridis", ColorsBetween: 10, Min: 1, Max: 1})
	assert.Error(t, err)
	_, err = NewPalette(PaletteOptions{Name: "viridis", ColorsBetween: 10, Min: 0, Max: 1, Missing: "not-a-colour"})
	assert.Error(t, err)
	assert.Contains(t, PaletteNames(), "viridis")
	assert.NotContains(t, PaletteNames(), "Devon")
}

func mustBand(t *testing.T, n int) abi.BandInfo {
	t.Helper()
	b, err := abi.Band(n)
	require.NoError(t, err)
	return b
}

func TestPlot_Names(t *testing.T) {
	vis := Plot{Mode: pipeline.SingleBand, Bands: []abi.BandInfo{mustBand(t, 2)}, Normalization: enhance.NormalizationPiecewise}
	assert.Equal(t, "Band_02_VIS_Norm-piecewise_linear", vis.Name())
	assert.Equal(t, filepath.Join("single_band", "b02"), vis.Subdir())
	assert.Equal(t, "Band 2 (VIS 0.64µm) Normalization: Piecewise-Linear", vis.Description())

	ir := Plot{Mode: pipeline.SingleBand, Bands: []abi.BandInfo{mustBand(t, 13)}, Normalization: enhance.NormalizationStorm}
	assert.Equal(t, "Band_13_LWIR", ir.Name())
	assert.Equal(t, "Band 13 (LWIR 10.3µm)", ir.Description())

	diff := Plot{Mode: pipeline.BandDifference, Bands: []abi.BandInfo{mustBand(t, 13), mustBand(t, 7)}}
	assert.Equal(t, "Band_B13-B07", diff.Name())
	assert.Equal(t, filepath.Join("band_difference", "b13-b07"), diff.Subdir())
	assert.Equal(t, "Band Difference B13-B07 (10.3µm-3.9µm)", diff.Description())

	ndvi := Plot{Mode: pipeline.NDVI, Bands: []abi.BandInfo{mustBand(t, 2), mustBand(t, 3)}}
	assert.Equal(t, "NDVI", ndvi.Name())
	assert.Equal(t, "ndvi", ndvi.Subdir())
}

func TestImageName(t *testing.T) {
	sensed := time.Date(2021, 4, 25, 17, 7, 0, 0, time.UTC)
	assert.Equal(t,
		"ABI_GOES-16_Band_13_LWIR_Atacama_Squared_orthographic_20210425_17:07UTC_cmap-Classic-IR_NNx4_1000px.png",
		ImageName("Band_13_LWIR", "Atacama_Squared", Orthographic, sensed, ClassicIR, 4, 1000))
	assert.Equal(t,
		"ABI_GOES-16_NDVI_GOES-East_fulldisk_geostationary_20210425_17:07UTC_cmap-viridis_500px.png",
		ImageName("NDVI", domain.FullDiskName, Geostationary, sensed, "viridis", 1, 500))
	assert.Equal(t, "GOES-16/ABI: NDVI   2021-04-25 17:07UTC", Caption("NDVI", sensed))
}

func TestCropWhitespace(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(2, 3, color.RGBA{R: 255, A: 255})
	img.Set(7, 6, color.Black)

	out := CropWhitespace(img)
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 4, out.Bounds().Dy())
	assert.Equal(t, color.RGBAModel.Convert(color.Black), color.RGBAModel.Convert(out.At(7, 3)))

	blank := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}
	assert.Equal(t, 3, CropWhitespace(blank).Bounds().Dy())
}

func TestOrthographic(t *testing.T) {
	o := orthographic{lon0: -70, lat0: -20}
	x, y, ok, err := o.Forward([]float64{-70, 110, -60}, []float64{-20, 20, -25})
	require.NoError(t, err)
	assert.True(t, ok[0])
	assert.InDelta(t, 0, x[0], 1e-12)
	assert.InDelta(t, 0, y[0], 1e-12)
	assert.False(t, ok[1])
	require.True(t, ok[2])

	lons, lats, err := o.Inverse([]float64{0, x[2], 2}, []float64{y[2]})
	require.NoError(t, err)
	assert.InDelta(t, -60, lons[0][1], 1e-9)
	assert.InDelta(t, -25, lats[0][1], 1e-9)
	assert.True(t, math.IsNaN(lons[0][2]))
}

var geosZero geos.Projection

func TestMapExtent(t *testing.T) {
	d, err := domain.Lookup("Atacama_Chile_North")
	require.NoError(t, err)

	e, err := mapExtent(plateCarree{}, d.Bounds())
	require.NoError(t, err)
	assert.InDelta(t, d.Bounds().Min.Lon(), e.xMin, 1e-9)
	assert.InDelta(t, d.Bounds().Max.Lat(), e.yMax, 1e-9)

	o, err := NewMapProjection(Orthographic, d, geosZero)
	require.NoError(t, err)
	e, err = mapExtent(o, d.Bounds())
	require.NoError(t, err)
	assert.Greater(t, e.width(), 0.0)
	assert.Less(t, e.width(), 0.2)

	_, err = NewMapProjection(Geostationary, d, geosZero)
	assert.Error(t, err)
	_, err = NewMapProjection("mercator", d, geosZero)
	assert.Error(t, err)
}

func sampleGrid(latC, lonC float64, n int, step float64) *grid.GeoGrid {
	lats := make([][]float64, n)
	lons := make([][]float64, n)
	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		lats[i] = make([]float64, n)
		lons[i] = make([]float64, n)
		values[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			lats[i][j] = latC + float64(n/2-i)*step
			lons[i][j] = lonC + float64(j-n/2)*step
			values[i][j] = -60 + float64(i+j)
		}
	}
	return &grid.GeoGrid{Values: values, Lats: lats, Lons: lons}
}

func TestRender(t *testing.T) {
	d, err := domain.Lookup("Atacama_Chile_North")
	require.NoError(t, err)
	pal, err := NewPalette(PaletteOptions{Name: ClassicIR})
	require.NoError(t, err)

	img, err := Render(sampleGrid(-20.1, -70.3, 41, 0.2), d, plateCarree{}, RenderOptions{
		Resolution: 200,
		Palette:    pal,
		GridLines:  true,
		Caption:    Caption("Band 13 (LWIR 10.3µm)", time.Date(2021, 4, 25, 17, 7, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Less(t, img.Bounds().Dy(), 200)

	coloured := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != g || g != bl {
				coloured++
			}
		}
	}
	assert.Greater(t, coloured, 1000)

	path := filepath.Join(t.TempDir(), "images", "map.png")
	require.NoError(t, SavePNG(path, img))
	assert.FileExists(t, path)

	_, err = Render(sampleGrid(-20.1, -70.3, 5, 0.2), d, plateCarree{}, RenderOptions{Resolution: 10, Palette: pal})
	assert.Error(t, err)
}

func TestCreateVideoFromImages(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, h := range []int{20, 18} {
		img := image.NewRGBA(image.Rect(0, 0, 30, h))
		img.Set(i, i, color.Black)
		path := filepath.Join(dir, "frame"+string(rune('a'+i))+".png")
		require.NoError(t, SavePNG(path, img))
		paths = append(paths, path)
	}

	out := filepath.Join(dir, "anim", "loop")
	require.NoError(t, CreateVideoFromImages(paths, out, 2))
	info, err := os.Stat(out + ".avi")
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, CreateVideoFromImages(nil, out, 2))
}

func TestRegular(t *testing.T) {
	g := sampleGrid(-1, 1, 3, 1)
	values, cols, rows, transform, err := Regular(g)
	require.NoError(t, err)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 3, rows)
	assert.Equal(t, g.Values[0][0], values[0])
	assert.Equal(t, g.Values[2][2], values[8])
	assert.InDelta(t, -0.5, transform[0], 1e-3)
	assert.InDelta(t, 0.5, transform[3], 1e-3)
	assert.Less(t, transform[5], 0.0)
}

func TestWriteGeoTIFF(t *testing.T) {
	godal.RegisterAll()
	path := filepath.Join(t.TempDir(), "tif", "scene.tif")
	require.NoError(t, WriteGeoTIFF(path, sampleGrid(-20, -70, 5, 0.5)))

	ds, err := godal.Open(path)
	require.NoError(t, err)
	defer ds.Close()
	assert.Equal(t, 5, ds.Structure().SizeX)
	assert.Equal(t, 5, ds.Structure().SizeY)
	assert.Equal(t, 1, ds.Structure().NBands)
}
