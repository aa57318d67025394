// Package ncfile reads and writes the subset of an ABI L2 CMIP netCDF file the toolkit
// works with: the x/y scan angle axes, CMI, DQF and the fixed grid projection.
package ncfile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/geos"
	"github.com/atacama-sky/goes-abi-cli/internal/utils"
	"github.com/fhs/go-netcdf/netcdf"
)

const projectionVar = "goes_imager_projection"

// File is the packed content of a CMIP file or a region cut of one.
type File struct {
	Rows, Cols int

	X, Y          []int16
	XPack, YPack  Packing
	CMI           []int16 // row major, Rows x Cols
	CMIPack       Packing
	DQF           []int8
	DQFPack       Packing
	Projection    geos.Projection
	CoverageStart string
	Region        string
	SourceDataset string
}

// RegionalGrid is a file unpacked to physical units.
type RegionalGrid struct {
	Values     [][]float64 // reflectance factor or brightness temperature in K
	DQF        [][]float64
	X, Y       []float64 // scan angles, rad
	Projection geos.Projection
}

// Grid unpacks the stored integers.
func (f *File) Grid() *RegionalGrid {
	dqf := make([]float64, len(f.DQF))
	for i, r := range f.DQF {
		dqf[i] = f.DQFPack.Unpack(int64(r), 8)
	}
	return &RegionalGrid{
		Values:     reshape(unpack16(f.CMI, f.CMIPack), f.Rows, f.Cols),
		DQF:        reshape(dqf, f.Rows, f.Cols),
		X:          unpack16(f.X, f.XPack),
		Y:          unpack16(f.Y, f.YPack),
		Projection: f.Projection,
	}
}

// Read loads a whole file.
func Read(path string) (*File, error) {
	return ReadWindow(path, abi.Window{RowMax: math.MaxInt32, ColMax: math.MaxInt32})
}

// ReadWindow loads the part of a file inside w. The window is clipped to the file extent.
func ReadWindow(path string, w abi.Window) (*File, error) {
	var f *File
	err := utils.WithNetCDF(func() error {
		ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer ds.Close()

		f, err = readDataset(ds, w)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return nil
	})
	return f, err
}

func readDataset(ds netcdf.Dataset, w abi.Window) (*File, error) {
	cmi, err := ds.Var("CMI")
	if err != nil {
		return nil, fmt.Errorf("variable CMI: %w", err)
	}
	rows, cols, err := shape2D(cmi)
	if err != nil {
		return nil, err
	}
	w = w.Clip(rows, cols)
	if w.Rows() <= 0 || w.Cols() <= 0 {
		return nil, fmt.Errorf("window %+v outside %dx%d grid", w, rows, cols)
	}

	f := &File{Rows: w.Rows(), Cols: w.Cols()}
	start := []uint64{uint64(w.RowMin), uint64(w.ColMin)}
	count := []uint64{uint64(w.Rows()), uint64(w.Cols())}

	f.CMI = make([]int16, w.Rows()*w.Cols())
	if err := cmi.ReadInt16Slice(f.CMI, start, count); err != nil {
		return nil, fmt.Errorf("read CMI: %w", err)
	}
	f.CMIPack = readPacking(cmi)

	dqf, err := ds.Var("DQF")
	if err != nil {
		return nil, fmt.Errorf("variable DQF: %w", err)
	}
	if f.DQF, err = readByteWindow(dqf, start, count); err != nil {
		return nil, fmt.Errorf("read DQF: %w", err)
	}
	f.DQFPack = readPacking(dqf)

	if f.X, f.XPack, err = readAxis(ds, "x", w.ColMin, w.Cols()); err != nil {
		return nil, err
	}
	if f.Y, f.YPack, err = readAxis(ds, "y", w.RowMin, w.Rows()); err != nil {
		return nil, err
	}
	if f.Projection, err = readProjection(ds); err != nil {
		return nil, err
	}
	f.CoverageStart, _ = attrString(ds.Attr("time_coverage_start"))
	f.Region, _ = attrString(ds.Attr("region"))
	f.SourceDataset, _ = attrString(ds.Attr("dataset_name"))
	return f, nil
}

func shape2D(v netcdf.Var) (int, int, error) {
	dims, err := v.Dims()
	if err != nil {
		return 0, 0, err
	}
	if len(dims) != 2 {
		return 0, 0, fmt.Errorf("expected 2D variable, got %dD", len(dims))
	}
	rows, err := dims[0].Len()
	if err != nil {
		return 0, 0, err
	}
	cols, err := dims[1].Len()
	if err != nil {
		return 0, 0, err
	}
	return int(rows), int(cols), nil
}

func readAxis(ds netcdf.Dataset, name string, from, n int) ([]int16, Packing, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, Packing{}, fmt.Errorf("variable %s: %w", name, err)
	}
	buf := make([]int16, n)
	if err := v.ReadInt16Slice(buf, []uint64{uint64(from)}, []uint64{uint64(n)}); err != nil {
		return nil, Packing{}, fmt.Errorf("read %s: %w", name, err)
	}
	return buf, readPacking(v), nil
}

func readByteWindow(v netcdf.Var, start, count []uint64) ([]int8, error) {
	n := int(count[0] * count[1])
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case netcdf.BYTE:
		buf := make([]int8, n)
		return buf, v.ReadInt8Slice(buf, start, count)
	case netcdf.UBYTE:
		raw := make([]uint8, n)
		if err := v.ReadUint8Slice(raw, start, count); err != nil {
			return nil, err
		}
		buf := make([]int8, n)
		for i, r := range raw {
			buf[i] = int8(r)
		}
		return buf, nil
	}
	return nil, fmt.Errorf("unsupported DQF type %v", t)
}

func readProjection(ds netcdf.Dataset) (geos.Projection, error) {
	v, err := ds.Var(projectionVar)
	if err != nil {
		return geos.Projection{}, fmt.Errorf("variable %s: %w", projectionVar, err)
	}
	var p geos.Projection
	var ok bool
	if p.Height, ok = attrFloat(v.Attr("perspective_point_height")); !ok {
		return p, errors.New("projection has no perspective_point_height")
	}
	if p.LongitudeOrigin, ok = attrFloat(v.Attr("longitude_of_projection_origin")); !ok {
		return p, errors.New("projection has no longitude_of_projection_origin")
	}
	p.SweepAxis, _ = attrString(v.Attr("sweep_angle_axis"))
	p.SemiMajor, _ = attrFloat(v.Attr("semi_major_axis"))
	p.SemiMinor, _ = attrFloat(v.Attr("semi_minor_axis"))
	return p, nil
}

func readPacking(v netcdf.Var) Packing {
	p := identity
	if s, ok := attrFloat(v.Attr("scale_factor")); ok {
		p.Scale = s
	}
	if o, ok := attrFloat(v.Attr("add_offset")); ok {
		p.Offset = o
	}
	if fill, ok := attrFloat(v.Attr("_FillValue")); ok {
		p.Fill, p.HasFill = int64(fill), true
	}
	if u, ok := attrString(v.Attr("_Unsigned")); ok {
		p.Unsigned = strings.EqualFold(u, "true")
	}
	return p
}

func attrFloat(a netcdf.Attr) (float64, bool) {
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	switch t {
	case netcdf.DOUBLE:
		buf := make([]float64, n)
		if a.ReadFloat64s(buf) == nil {
			return buf[0], true
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if a.ReadFloat32s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.INT:
		buf := make([]int32, n)
		if a.ReadInt32s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.SHORT:
		buf := make([]int16, n)
		if a.ReadInt16s(buf) == nil {
			return float64(buf[0]), true
		}
	case netcdf.BYTE:
		buf := make([]int8, n)
		if a.ReadInt8s(buf) == nil {
			return float64(buf[0]), true
		}
	}
	return 0, false
}

func attrString(a netcdf.Attr) (string, bool) {
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	if t, err := a.Type(); err != nil || t != netcdf.CHAR {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}
