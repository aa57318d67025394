package pipeline

import (
	"fmt"

	"github.com/atacama-sky/goes-abi-cli/internal/enhance"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
)

type Mode string

const (
	SingleBand     Mode = "single_band"
	BandDifference Mode = "band_difference"
	NDVI           Mode = "ndvi"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case SingleBand, BandDifference, NDVI:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (valid: %s, %s, %s)", s, SingleBand, BandDifference, NDVI)
}

// BandCount is how many bands a scene needs for the mode.
func (m Mode) BandCount() int {
	if m == SingleBand {
		return 1
	}
	return 2
}

// Image computes the array to draw. Single band scenes are calibrated for display, band
// pairs are combined in their physical units.
func (s *Scene) Image(mode Mode, norm enhance.Normalization) (*grid.GeoGrid, error) {
	if len(s.Grids) != mode.BandCount() {
		return nil, fmt.Errorf("%s needs %d bands, scene has %d", mode, mode.BandCount(), len(s.Grids))
	}

	var (
		values [][]float64
		err    error
	)
	switch mode {
	case SingleBand:
		values, err = enhance.Calibrate(s.Bands[0], norm, s.Sensed, s.Grids[0])
	case BandDifference:
		values, err = grid.Difference(s.Grids[0].Values, s.Grids[1].Values)
	case NDVI:
		values, err = grid.NDVI(s.Grids[0].Values, s.Grids[1].Values)
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return nil, err
	}
	return s.Grids[0].WithValues(values)
}
