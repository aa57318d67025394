package output

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
	"github.com/atacama-sky/goes-abi-cli/internal/utils"
)

// Regular resamples g onto a north-up latitude/longitude raster spanning its valid
// coordinates, with the grid's own pixel spacing. It returns the row-major values and the
// GDAL geotransform of the raster.
func Regular(g *grid.GeoGrid) (values []float64, cols, rows int, transform [6]float64, err error) {
	latMin, latMax, ok := grid.Range(g.Lats)
	if !ok {
		return nil, 0, 0, transform, fmt.Errorf("grid has no valid coordinates")
	}
	lonMin, lonMax, _ := grid.Range(g.Lons)
	step := grid.Spacing(g.Lats, g.Lons)
	if math.IsNaN(step) || step <= 0 {
		step = math.Max(latMax-latMin, lonMax-lonMin)
		if step == 0 {
			step = 1
		}
	}

	cols = int(math.Floor((lonMax-lonMin)/step)) + 1
	rows = int(math.Floor((latMax-latMin)/step)) + 1
	idx, err := grid.NewNearestIndex(g.Lats, g.Lons)
	if err != nil {
		return nil, 0, 0, transform, err
	}

	values = make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		lat := latMax - float64(r)*step
		for c := 0; c < cols; c++ {
			lon := lonMin + float64(c)*step
			i, j, ok := idx.Within(lat, lon, 1.5*step)
			if !ok {
				values[r*cols+c] = math.NaN()
				continue
			}
			values[r*cols+c] = g.Values[i][j]
		}
	}
	// pixel centres sit on the sample positions
	transform = [6]float64{lonMin - step/2, step, 0, latMax + step/2, 0, -step}
	return values, cols, rows, transform, nil
}

// WriteGeoTIFF stores g as a single band Float64 GeoTIFF in EPSG:4326 with NaN as nodata.
func WriteGeoTIFF(path string, g *grid.GeoGrid) error {
	values, cols, rows, transform, err := Regular(g)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	return utils.WithGDAL(func() error {
		ds, err := godal.Create(godal.GTiff, path, 1, godal.Float64, cols, rows)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer ds.Close()

		sr, err := godal.NewSpatialRefFromEPSG(4326)
		if err != nil {
			return err
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("set spatial ref: %w", err)
		}
		if err := ds.SetGeoTransform(transform); err != nil {
			return fmt.Errorf("set geotransform: %w", err)
		}

		band := ds.Bands()[0]
		if err := band.SetNoData(math.NaN()); err != nil {
			return fmt.Errorf("set nodata: %w", err)
		}
		if err := band.Write(0, 0, values, cols, rows); err != nil {
			return fmt.Errorf("write band: %w", err)
		}
		return nil
	})
}
