package ncfile

import (
	"fmt"

	"github.com/atacama-sky/goes-abi-cli/internal/utils"
	"github.com/fhs/go-netcdf/netcdf"
)

// Write stores f as a NETCDF4 file keeping the packed encoding of the source, so a region
// cut reads back exactly like the full disk file it came from.
func Write(path string, f *File) error {
	return utils.WithNetCDF(func() error {
		ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := writeDataset(ds, f); err != nil {
			ds.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		return ds.Close()
	})
}

func writeDataset(ds netcdf.Dataset, f *File) error {
	yDim, err := ds.AddDim("y", uint64(f.Rows))
	if err != nil {
		return err
	}
	xDim, err := ds.AddDim("x", uint64(f.Cols))
	if err != nil {
		return err
	}

	if err := putString(ds.Attr("time_coverage_start"), f.CoverageStart); err != nil {
		return err
	}
	if err := putString(ds.Attr("region"), f.Region); err != nil {
		return err
	}
	if err := putString(ds.Attr("dataset_name"), f.SourceDataset); err != nil {
		return err
	}

	x, err := ds.AddVar("x", netcdf.SHORT, []netcdf.Dim{xDim})
	if err != nil {
		return err
	}
	y, err := ds.AddVar("y", netcdf.SHORT, []netcdf.Dim{yDim})
	if err != nil {
		return err
	}
	cmi, err := ds.AddVar("CMI", netcdf.SHORT, []netcdf.Dim{yDim, xDim})
	if err != nil {
		return err
	}
	dqf, err := ds.AddVar("DQF", netcdf.BYTE, []netcdf.Dim{yDim, xDim})
	if err != nil {
		return err
	}
	proj, err := ds.AddVar(projectionVar, netcdf.INT, nil)
	if err != nil {
		return err
	}

	for _, pv := range []struct {
		v netcdf.Var
		p Packing
		b uint
	}{{x, f.XPack, 16}, {y, f.YPack, 16}, {cmi, f.CMIPack, 16}, {dqf, f.DQFPack, 8}} {
		if err := putPacking(pv.v, pv.p, pv.b); err != nil {
			return err
		}
	}
	if err := putProjection(proj, f); err != nil {
		return err
	}

	if err := x.WriteInt16s(f.X); err != nil {
		return fmt.Errorf("x: %w", err)
	}
	if err := y.WriteInt16s(f.Y); err != nil {
		return fmt.Errorf("y: %w", err)
	}
	if err := cmi.WriteInt16s(f.CMI); err != nil {
		return fmt.Errorf("CMI: %w", err)
	}
	if err := dqf.WriteInt8s(f.DQF); err != nil {
		return fmt.Errorf("DQF: %w", err)
	}
	return proj.WriteInt32s([]int32{-2147483647})
}

func putPacking(v netcdf.Var, p Packing, bits uint) error {
	if err := v.Attr("scale_factor").WriteFloat32s([]float32{float32(p.Scale)}); err != nil {
		return err
	}
	if err := v.Attr("add_offset").WriteFloat32s([]float32{float32(p.Offset)}); err != nil {
		return err
	}
	if p.HasFill {
		var err error
		if bits == 8 {
			err = v.Attr("_FillValue").WriteInt8s([]int8{int8(p.Fill)})
		} else {
			err = v.Attr("_FillValue").WriteInt16s([]int16{int16(p.Fill)})
		}
		if err != nil {
			return err
		}
	}
	unsigned := "false"
	if p.Unsigned {
		unsigned = "true"
	}
	return putString(v.Attr("_Unsigned"), unsigned)
}

func putProjection(v netcdf.Var, f *File) error {
	p := f.Projection
	for name, val := range map[string]float64{
		"perspective_point_height":       p.Height,
		"longitude_of_projection_origin": p.LongitudeOrigin,
		"semi_major_axis":                p.SemiMajor,
		"semi_minor_axis":                p.SemiMinor,
	} {
		if err := v.Attr(name).WriteFloat64s([]float64{val}); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if err := putString(v.Attr("grid_mapping_name"), "geostationary"); err != nil {
		return err
	}
	return putString(v.Attr("sweep_angle_axis"), p.SweepAxis)
}

func putString(a netcdf.Attr, s string) error {
	if s == "" {
		return nil
	}
	return a.WriteBytes([]byte(s))
}
