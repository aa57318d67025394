package abi

import "fmt"

// Region names a fixed pixel rectangle of the 2 km full-disk grid.
type Region string

const (
	RegionFullDisk       Region = "fulldisk"
	RegionSSA            Region = "ssa"
	RegionAtacama        Region = "atacama"
	RegionAtacamaSquared Region = "atacama_squared"
)

// Window is a half-open pixel rectangle: rows [RowMin, RowMax), columns [ColMin, ColMax).
type Window struct {
	RowMin, RowMax int
	ColMin, ColMax int
}

func (w Window) Rows() int { return w.RowMax - w.RowMin }
func (w Window) Cols() int { return w.ColMax - w.ColMin }

func (w Window) Scale(f int) Window {
	return Window{RowMin: w.RowMin * f, RowMax: w.RowMax * f, ColMin: w.ColMin * f, ColMax: w.ColMax * f}
}

// Clip limits the window to a grid of the given size.
func (w Window) Clip(rows, cols int) Window {
	w.RowMin = clamp(w.RowMin, 0, rows)
	w.RowMax = clamp(w.RowMax, w.RowMin, rows)
	w.ColMin = clamp(w.ColMin, 0, cols)
	w.ColMax = clamp(w.ColMax, w.ColMin, cols)
	return w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FullDiskSize is the number of 2 km pixels along each full-disk axis.
const FullDiskSize = 5424

var regionWindows = map[Region]Window{
	RegionFullDisk:       {RowMin: 0, RowMax: 5424, ColMin: 0, ColMax: 5424},
	RegionSSA:            {RowMin: 3300, RowMax: 5200, ColMin: 2500, ColMax: 4200},
	RegionAtacama:        {RowMin: 3400, RowMax: 4400, ColMin: 2550, ColMax: 3100},
	RegionAtacamaSquared: {RowMin: 3400, RowMax: 4400, ColMin: 2350, ColMax: 3450},
}

func ParseRegion(s string) (Region, error) {
	r := Region(s)
	if _, ok := regionWindows[r]; !ok {
		return "", fmt.Errorf("unknown region %q", s)
	}
	return r, nil
}

// RegionWindow returns the native pixel rectangle of a region for the given band.
func RegionWindow(region Region, band int) (Window, error) {
	w, ok := regionWindows[region]
	if !ok {
		return Window{}, fmt.Errorf("unknown region %q", region)
	}
	info, err := Band(band)
	if err != nil {
		return Window{}, err
	}
	return w.Scale(info.ResolutionFactor()), nil
}
