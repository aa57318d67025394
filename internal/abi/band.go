package abi

import "fmt"

type SpectralClass string

const (
	ClassVIS  SpectralClass = "VIS"
	ClassNIR  SpectralClass = "NIR"
	ClassSWIR SpectralClass = "SWIR"
	ClassMWIR SpectralClass = "MWIR"
	ClassLWIR SpectralClass = "LWIR"
)

// BandInfo describes one ABI channel.
type BandInfo struct {
	Number            int
	NadirResolution   float64 // km
	CentralWavelength string
	Class             SpectralClass
}

var bandTable = [16]BandInfo{
	{1, 1.0, "0.47µm", ClassVIS},
	{2, 0.5, "0.64µm", ClassVIS},
	{3, 1.0, "0.86µm", ClassNIR},
	{4, 2.0, "1.38µm", ClassSWIR},
	{5, 1.0, "1.61µm", ClassSWIR},
	{6, 2.0, "2.25µm", ClassSWIR},
	{7, 2.0, "3.9µm", ClassMWIR},
	{8, 2.0, "6.2µm", ClassMWIR},
	{9, 2.0, "6.9µm", ClassMWIR},
	{10, 2.0, "7.3µm", ClassMWIR},
	{11, 2.0, "8.5µm", ClassLWIR},
	{12, 2.0, "9.6µm", ClassLWIR},
	{13, 2.0, "10.3µm", ClassLWIR},
	{14, 2.0, "11.2µm", ClassLWIR},
	{15, 2.0, "12.3µm", ClassLWIR},
	{16, 2.0, "13.3µm", ClassLWIR},
}

type UnknownBandError struct {
	Band int
}

func (e *UnknownBandError) Error() string {
	return fmt.Sprintf("unknown ABI band %d (valid: 1-16)", e.Band)
}

// Band returns the static metadata for an ABI band number.
func Band(number int) (BandInfo, error) {
	if number < 1 || number > len(bandTable) {
		return BandInfo{}, &UnknownBandError{Band: number}
	}
	return bandTable[number-1], nil
}

// IsReflective reports whether the band carries reflectance factors rather than brightness temperatures.
func (b BandInfo) IsReflective() bool {
	return b.Number <= 6
}

// ResolutionFactor is how many native pixels of this band cover one 2 km reference pixel
// along each axis.
func (b BandInfo) ResolutionFactor() int {
	switch b.Number {
	case 1, 3, 5:
		return 2
	case 2:
		return 4
	default:
		return 1
	}
}

// SameGrid reports whether two bands share a native coordinate grid.
func SameGrid(a, b BandInfo) bool {
	return a.NadirResolution == b.NadirResolution
}
