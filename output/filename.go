// Package output renders processed grids to map images, exports them as GeoTIFF and
// assembles image series into animations.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/enhance"
	"github.com/atacama-sky/goes-abi-cli/internal/pipeline"
)

// Plot identifies what an image shows.
type Plot struct {
	Mode          pipeline.Mode
	Bands         []abi.BandInfo
	Normalization enhance.Normalization
}

// Name is the plot part of the image file name.
func (p Plot) Name() string {
	switch p.Mode {
	case pipeline.BandDifference:
		return fmt.Sprintf("Band_B%02d-B%02d", p.Bands[0].Number, p.Bands[1].Number)
	case pipeline.NDVI:
		return "NDVI"
	}
	b := p.Bands[0]
	if b.IsReflective() {
		return fmt.Sprintf("Band_%02d_%s_Norm-%s", b.Number, b.Class, normalization(p.Normalization))
	}
	return fmt.Sprintf("Band_%02d_%s", b.Number, b.Class)
}

// Subdir is the image directory below the image root for this kind of plot.
func (p Plot) Subdir() string {
	switch p.Mode {
	case pipeline.BandDifference:
		return filepath.Join(string(p.Mode), fmt.Sprintf("b%02d-b%02d", p.Bands[0].Number, p.Bands[1].Number))
	case pipeline.NDVI:
		return string(p.Mode)
	}
	return filepath.Join(string(pipeline.SingleBand), abi.BandDir(p.Bands[0].Number))
}

// Description is the human readable plot title used in captions.
func (p Plot) Description() string {
	switch p.Mode {
	case pipeline.BandDifference:
		return fmt.Sprintf("Band Difference B%02d-B%02d (%s-%s)", p.Bands[0].Number, p.Bands[1].Number,
			p.Bands[0].CentralWavelength, p.Bands[1].CentralWavelength)
	case pipeline.NDVI:
		return "NDVI"
	}
	b := p.Bands[0]
	desc := fmt.Sprintf("Band %d (%s %s)", b.Number, b.Class, b.CentralWavelength)
	if b.IsReflective() {
		switch p.Normalization {
		case enhance.NormalizationPiecewise:
			desc += " Normalization: Piecewise-Linear"
		case enhance.NormalizationStorm:
			desc += " Normalization: Max Storm Contrast"
		}
	}
	return desc
}

func normalization(n enhance.Normalization) string {
	if n == "" {
		return string(enhance.NormalizationNone)
	}
	return string(n)
}

// Caption is the text drawn in the lower left corner of the map.
func Caption(description string, sensed time.Time) string {
	return fmt.Sprintf("GOES-16/ABI: %s   %s", description, sensed.UTC().Format("2006-01-02 15:04UTC"))
}

// ImageName builds the file name of a rendered image.
func ImageName(plotName, domainName, projection string, sensed time.Time, palette string, downsampling, resolution int) string {
	sensed = sensed.UTC()
	return fmt.Sprintf("ABI_GOES-16_%s_%s_%s_%s_%s_cmap-%s%s_%dpx.png",
		plotName, domainName, projection, sensed.Format("20060102"), sensed.Format("15:04")+"UTC",
		palette, DownsamplingTag(downsampling), resolution)
}

// DownsamplingTag marks downsampled images, e.g. "_NNx4". It is empty for factor 1.
func DownsamplingTag(k int) string {
	if k <= 1 {
		return ""
	}
	return fmt.Sprintf("_NNx%d", k)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", path, err)
	}
	return nil
}
