package main

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/atacama-sky/goes-abi-cli/internal/enhance"
	"github.com/atacama-sky/goes-abi-cli/internal/pipeline"
	"github.com/atacama-sky/goes-abi-cli/output"
	bannercolor "github.com/fatih/color"
	"github.com/spf13/cobra"
)

var plotFlags struct {
	product       string
	region        string
	mode          string
	bands         []int
	pairs         []string
	domains       []string
	projection    string
	resolution    int
	downsampling  int
	normalization string
	cmap          string
	reversed      bool
	colorsBetween int
	vmin, vmax    float64
	missingColor  string
	gridColor     string
	gridLines     bool
	geotiff       bool
	times         timeFlags
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render acquired files to annotated map images",
	Example: `  goes-abi plot --bands 7,13 --domains GOES-East_fulldisk --time 2021-04-25T17:00
  goes-abi plot --mode band_difference --pairs 13-7 --domains Atacama_Chile_North --cmap LaJolla+Oslo --vmin -5 --vmax 5 --latest
  goes-abi plot --mode ndvi --product meso1 --domains Atacama_Squared --cmap Roma --vmin -1 --vmax 1 --latest`,
	Args: cobra.NoArgs,
	RunE: runPlot,
}

func init() {
	f := plotCmd.Flags()
	f.StringVar(&plotFlags.product, "product", string(abi.FullDisk), "L2-CMIPF, L2-CMIPM1 or L2-CMIPM2")
	f.StringVar(&plotFlags.region, "region", string(abi.RegionAtacama), "region the full disk files were cut to")
	f.StringVar(&plotFlags.mode, "mode", string(pipeline.SingleBand), "single_band, band_difference or ndvi")
	f.IntSliceVar(&plotFlags.bands, "bands", []int{7, 13}, "bands plotted one by one in single_band mode")
	f.StringSliceVar(&plotFlags.pairs, "pairs", []string{"13-7"}, "band pairs A-B for band_difference, plotted as A minus B")
	f.StringSliceVar(&plotFlags.domains, "domains", []string{domain.FullDiskName}, "domain names, see the domains command")
	f.StringVar(&plotFlags.projection, "projection", output.Orthographic, "orthographic, geostationary or platecarree")
	f.IntVar(&plotFlags.resolution, "resolution", 1000, "image width in pixels, map and colorbar")
	f.IntVar(&plotFlags.downsampling, "downsampling", 4, "keep every k-th pixel, 1 keeps all")
	f.StringVar(&plotFlags.normalization, "normalization", string(enhance.NormalizationNone), "none, piecewise_linear or max_storm_contrast (reflective bands)")
	f.StringVar(&plotFlags.cmap, "cmap", output.ClassicIR, "palette: "+strings.Join(output.PaletteNames(), ", "))
	f.BoolVar(&plotFlags.reversed, "reversed", false, "reverse the palette")
	f.IntVar(&plotFlags.colorsBetween, "colors", 100, "number of colours between --vmin and --vmax")
	f.Float64Var(&plotFlags.vmin, "vmin", 0, "lower end of the palette range")
	f.Float64Var(&plotFlags.vmax, "vmax", 1, "upper end of the palette range")
	f.StringVar(&plotFlags.missingColor, "missing-color", "white", "colour of cells without data")
	f.StringVar(&plotFlags.gridColor, "grid-color", "white", "colour of the gridlines")
	f.BoolVar(&plotFlags.gridLines, "gridlines", true, "draw latitude and longitude lines")
	f.BoolVar(&plotFlags.geotiff, "geotiff", false, "also write the plotted array as GeoTIFF")
	plotFlags.times.register(plotCmd)
}

func runPlot(cmd *cobra.Command, _ []string) error {
	product, err := abi.ParseProduct(plotFlags.product)
	if err != nil {
		return &configError{err}
	}
	region, err := abi.ParseRegion(plotFlags.region)
	if err != nil {
		return &configError{err}
	}
	mode, err := pipeline.ParseMode(plotFlags.mode)
	if err != nil {
		return &configError{err}
	}
	norm, err := enhance.ParseNormalization(plotFlags.normalization)
	if err != nil {
		return &configError{err}
	}
	combos, err := bandCombinations(mode, plotFlags.bands, plotFlags.pairs)
	if err != nil {
		return &configError{err}
	}
	domains := make([]domain.Domain, 0, len(plotFlags.domains))
	for _, name := range plotFlags.domains {
		d, err := domain.Lookup(name)
		if err != nil {
			return &configError{err}
		}
		domains = append(domains, d)
	}
	switch plotFlags.projection {
	case output.Orthographic, output.Geostationary, output.PlateCarree:
	default:
		return &configError{fmt.Errorf("unknown projection %q", plotFlags.projection)}
	}
	if plotFlags.downsampling < 1 {
		return &configError{fmt.Errorf("downsampling must be at least 1, got %d", plotFlags.downsampling)}
	}
	palette, err := output.NewPalette(output.PaletteOptions{
		Name:          plotFlags.cmap,
		Reversed:      plotFlags.reversed,
		ColorsBetween: plotFlags.colorsBetween,
		Min:           plotFlags.vmin,
		Max:           plotFlags.vmax,
		Missing:       plotFlags.missingColor,
	})
	if err != nil {
		return &configError{err}
	}
	gridColor, err := output.ParseColor(plotFlags.gridColor)
	if err != nil {
		return &configError{err}
	}
	times, err := plotFlags.times.resolve(app.clock, product)
	if err != nil {
		return &configError{err}
	}

	p := pipeline.New(pipeline.Config{
		DataDir:       app.props.DataDir,
		SensingOffset: app.props.SensingOffset,
	}, pipeline.WithLogger(app.log), pipeline.WithMetrics(app.metrics))

	var (
		errs    []error
		written int
	)
	for _, ts := range times {
		for _, bands := range combos {
			for _, d := range domains {
				app.log.Info("plot", "time", ts.Format("2006-01-02 15:04"), "bands", bands, "domain", d.Name)

				path, err := renderOne(cmd, p, bands, pipeline.Request{
					Product:      product,
					Region:       region,
					Time:         ts,
					Domain:       d,
					Downsampling: plotFlags.downsampling,
				}, mode, norm, palette, gridColor)
				if err != nil {
					var missing *pipeline.MissingFileError
					if errors.As(err, &missing) {
						app.log.Warn("skipping, file not acquired", "band", missing.Band, "dir", missing.Dir)
					} else {
						app.log.Error("plot failed", "time", ts, "bands", bands, "domain", d.Name, "error", err)
					}
					errs = append(errs, err)
					continue
				}
				written++
				bannercolor.Green("%s", path)
			}
		}
	}

	fmt.Println()
	total := len(times) * len(combos) * len(domains)
	if len(errs) > 0 {
		bannercolor.Red("%d of %d images failed", len(errs), total)
		return errors.Join(errs...)
	}
	bannercolor.Green("Plotting successful! %d images written to %s", written, app.props.ImageDir(string(mode)))
	return nil
}

func renderOne(cmd *cobra.Command, p *pipeline.Pipeline, bands []int, req pipeline.Request,
	mode pipeline.Mode, norm enhance.Normalization, palette *output.Palette, gridColor color.Color) (string, error) {

	if err := cmd.Context().Err(); err != nil {
		return "", err
	}

	var (
		scene *pipeline.Scene
		err   error
	)
	if mode == pipeline.SingleBand {
		scene, err = p.SingleBand(req, bands[0])
	} else {
		scene, err = p.BandPair(req, bands[0], bands[1])
	}
	if err != nil {
		return "", err
	}
	img, err := scene.Image(mode, norm)
	if err != nil {
		return "", err
	}

	proj, err := output.NewMapProjection(plotFlags.projection, req.Domain, scene.Projection)
	if err != nil {
		return "", err
	}
	plot := output.Plot{Mode: mode, Bands: scene.Bands, Normalization: norm}
	rendered, err := output.Render(img, req.Domain, proj, output.RenderOptions{
		Resolution: plotFlags.resolution,
		Palette:    palette,
		GridLines:  plotFlags.gridLines,
		GridColor:  gridColor,
		Caption:    output.Caption(plot.Description(), scene.Sensed),
	})
	if err != nil {
		return "", err
	}

	name := output.ImageName(plot.Name(), req.Domain.Name, proj.Name(), scene.Sensed, palette.Name,
		req.Downsampling, plotFlags.resolution)
	path := filepath.Join(app.props.ImageDir(""), plot.Subdir(), name)
	if err := output.SavePNG(path, rendered); err != nil {
		return "", err
	}
	app.metrics.ImagesRendered.WithLabelValues(string(mode)).Inc()

	if plotFlags.geotiff {
		tif := strings.TrimSuffix(path, ".png") + ".tif"
		if err := output.WriteGeoTIFF(tif, img); err != nil {
			return "", err
		}
		app.log.Info("geotiff written", "path", tif)
	}
	return path, nil
}

// bandCombinations lists the band sets to plot: one band each in single_band mode, the
// given pairs for band differences and bands 2 and 3 for NDVI.
func bandCombinations(mode pipeline.Mode, bands []int, pairs []string) ([][]int, error) {
	switch mode {
	case pipeline.SingleBand:
		if err := validateBands(bands); err != nil {
			return nil, err
		}
		out := make([][]int, len(bands))
		for i, b := range bands {
			out[i] = []int{b}
		}
		return out, nil
	case pipeline.BandDifference:
		if len(pairs) == 0 {
			return nil, fmt.Errorf("no band pair selected")
		}
		out := make([][]int, 0, len(pairs))
		for _, s := range pairs {
			pair, err := parsePair(s)
			if err != nil {
				return nil, err
			}
			out = append(out, pair[:])
		}
		return out, nil
	case pipeline.NDVI:
		return [][]int{{2, 3}}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}
