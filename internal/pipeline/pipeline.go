// Package pipeline turns acquired regional files into geolocated grids: it reprojects the
// fixed grid axes to latitude and longitude, crops to a domain, aligns band pairs onto one
// grid and downsamples.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/atacama-sky/goes-abi-cli/internal/geos"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
	"github.com/atacama-sky/goes-abi-cli/internal/ncfile"
	"github.com/atacama-sky/goes-abi-cli/internal/observability"
)

// ReadFunc loads one acquired file in physical units.
type ReadFunc func(path string) (*ncfile.RegionalGrid, error)

// LonLatFunc reprojects fixed grid scan angles to longitude and latitude.
type LonLatFunc func(p geos.Projection, x, y []float64) (lons, lats [][]float64, err error)

// ReadRegional is the ReadFunc for files on disk.
func ReadRegional(path string) (*ncfile.RegionalGrid, error) {
	f, err := ncfile.Read(path)
	if err != nil {
		return nil, err
	}
	return f.Grid(), nil
}

type Config struct {
	// DataDir maps a product family to its local data directory.
	DataDir func(family string) string
	// SensingOffset is added to the scan start of full disk files. The full disk scan
	// runs north to south for about ten minutes.
	SensingOffset time.Duration
}

type Pipeline struct {
	cfg     Config
	read    ReadFunc
	lonLat  LonLatFunc
	log     *slog.Logger
	metrics *observability.Metrics
}

type Option func(*Pipeline)

func WithReader(r ReadFunc) Option                { return func(p *Pipeline) { p.read = r } }
func WithLonLat(f LonLatFunc) Option              { return func(p *Pipeline) { p.lonLat = f } }
func WithLogger(l *slog.Logger) Option            { return func(p *Pipeline) { p.log = l } }
func WithMetrics(m *observability.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		read:   ReadRegional,
		lonLat: geos.LonLat,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request selects the files and the target area of one scene.
type Request struct {
	Product      abi.Product
	Region       abi.Region
	Time         time.Time // scan start as encoded in the file name
	Domain       domain.Domain
	Downsampling int
}

// Scene holds one or two bands of one scan on a shared coordinate grid.
type Scene struct {
	Request
	Sensed     time.Time
	Bands      []abi.BandInfo
	Projection geos.Projection
	// Grids has one entry per band. All entries share Lats and Lons.
	Grids []*grid.GeoGrid
	// Warnings lists crops that were skipped, as *grid.GeometryDegenerateError.
	Warnings []error
}

func (s *Scene) Lats() [][]float64 { return s.Grids[0].Lats }
func (s *Scene) Lons() [][]float64 { return s.Grids[0].Lons }

// SensingTime estimates when the scene area was actually scanned.
func SensingTime(product abi.Product, scanStart time.Time, offset time.Duration) time.Time {
	if product.IsFullDisk() {
		return scanStart.Add(offset)
	}
	return scanStart
}

// SingleBand loads, geolocates, crops and downsamples one band.
func (p *Pipeline) SingleBand(req Request, band int) (*Scene, error) {
	info, err := abi.Band(band)
	if err != nil {
		return nil, err
	}
	rg, err := p.load(req, band)
	if err != nil {
		return nil, err
	}
	g, err := p.geolocate(rg)
	if err != nil {
		return nil, fmt.Errorf("geolocate band %d: %w", band, err)
	}

	scene := p.newScene(req, rg.Projection, info)
	g, _, err = p.crop(scene, g)
	if err != nil {
		return nil, err
	}
	scene.Grids = []*grid.GeoGrid{g.Downsample(req.Downsampling)}
	return scene, nil
}

// BandPair loads two bands and puts them on one grid. Bands with equal nadir resolution
// share their coordinates; otherwise the coarser band is resampled onto the finer one.
func (p *Pipeline) BandPair(req Request, bandA, bandB int) (*Scene, error) {
	infoA, err := abi.Band(bandA)
	if err != nil {
		return nil, err
	}
	infoB, err := abi.Band(bandB)
	if err != nil {
		return nil, err
	}

	rgA, err := p.load(req, bandA)
	if err != nil {
		return nil, err
	}
	rgB, err := p.load(req, bandB)
	if err != nil {
		return nil, err
	}

	scene := p.newScene(req, rgA.Projection, infoA, infoB)
	gA, err := p.geolocate(rgA)
	if err != nil {
		return nil, fmt.Errorf("geolocate band %d: %w", bandA, err)
	}

	var a, b *grid.GeoGrid
	if abi.SameGrid(infoA, infoB) {
		if err := grid.CheckShape("band pair", rgA.Values, rgB.Values); err != nil {
			return nil, err
		}
		var rect grid.Rect
		a, rect, err = p.crop(scene, gA)
		if err != nil {
			return nil, err
		}
		if b, err = a.WithValues(grid.Slice(rgB.Values, rect)); err != nil {
			return nil, err
		}
	} else {
		gB, err := p.geolocate(rgB)
		if err != nil {
			return nil, fmt.Errorf("geolocate band %d: %w", bandB, err)
		}
		if a, _, err = p.crop(scene, gA); err != nil {
			return nil, err
		}
		if b, _, err = p.crop(scene, gB); err != nil {
			return nil, err
		}

		p.log.Debug("resampling", "from", coarser(infoA, infoB).Number, "onto", finer(infoA, infoB).Number)
		if infoA.NadirResolution > infoB.NadirResolution {
			a, err = grid.RegridNearest(a, b)
		} else {
			b, err = grid.RegridNearest(b, a)
		}
		if err != nil {
			return nil, fmt.Errorf("resample bands %d/%d: %w", bandA, bandB, err)
		}
	}

	scene.Grids = []*grid.GeoGrid{a.Downsample(req.Downsampling), b.Downsample(req.Downsampling)}
	return scene, nil
}

func (p *Pipeline) newScene(req Request, proj geos.Projection, bands ...abi.BandInfo) *Scene {
	return &Scene{
		Request:    req,
		Sensed:     SensingTime(req.Product, req.Time, p.cfg.SensingOffset),
		Bands:      bands,
		Projection: proj,
	}
}

func (p *Pipeline) load(req Request, band int) (*ncfile.RegionalGrid, error) {
	path, err := Locate(p.cfg.DataDir(req.Product.Family()), req.Product, req.Region, band, req.Time)
	if err != nil {
		return nil, err
	}
	rg, err := p.read(path)
	if err != nil {
		return nil, fmt.Errorf("load band %d: %w", band, err)
	}
	p.log.Debug("loaded", "path", path, "rows", len(rg.Values), "cols", len(rg.X))
	return rg, nil
}

func (p *Pipeline) geolocate(rg *ncfile.RegionalGrid) (*grid.GeoGrid, error) {
	lons, lats, err := p.lonLat(rg.Projection, rg.X, rg.Y)
	if err != nil {
		return nil, err
	}
	return grid.NewGeoGrid(rg.Values, lats, lons)
}

// crop applies the domain crop to full disk products. A crop that selects nothing is
// recorded on the scene and the grid is kept whole.
func (p *Pipeline) crop(scene *Scene, g *grid.GeoGrid) (*grid.GeoGrid, grid.Rect, error) {
	if !scene.Product.IsFullDisk() {
		rows, cols := g.Shape()
		return g, grid.FullRect(rows, cols), nil
	}
	cropped, rect, err := grid.CropToDomain(g, scene.Domain)
	var degenerate *grid.GeometryDegenerateError
	if errors.As(err, &degenerate) {
		p.log.Warn("domain crop skipped", "domain", scene.Domain.Name, "error", err)
		if p.metrics != nil {
			p.metrics.CropWarnings.Inc()
		}
		scene.Warnings = append(scene.Warnings, err)
		return cropped, rect, nil
	}
	if err != nil {
		return nil, grid.Rect{}, fmt.Errorf("crop to %s: %w", scene.Domain.Name, err)
	}
	return cropped, rect, nil
}

func coarser(a, b abi.BandInfo) abi.BandInfo {
	if a.NadirResolution > b.NadirResolution {
		return a
	}
	return b
}

func finer(a, b abi.BandInfo) abi.BandInfo {
	if a.NadirResolution > b.NadirResolution {
		return b
	}
	return a
}
