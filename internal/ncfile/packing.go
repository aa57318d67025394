package ncfile

import "math"

// Packing holds the CF attributes that turn stored integers into physical values.
type Packing struct {
	Scale    float64
	Offset   float64
	Fill     int64
	HasFill  bool
	Unsigned bool
}

var identity = Packing{Scale: 1}

// Unpack converts one stored value. Fill values become NaN.
func (p Packing) Unpack(raw int64, bits uint) float64 {
	if p.HasFill && raw == p.Fill {
		return math.NaN()
	}
	v := raw
	if p.Unsigned && v < 0 {
		v += 1 << bits
	}
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	return float64(v)*scale + p.Offset
}

func unpack16(raw []int16, p Packing) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		out[i] = p.Unpack(int64(r), 16)
	}
	return out
}

func reshape(flat []float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = flat[i*cols : (i+1)*cols]
	}
	return out
}
