package enhance

import (
	"math"
	"testing"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStretch_Breakpoints(t *testing.T) {
	in := []float64{0, 30, 60, 120, 190, 255}
	out := []float64{0, 110, 160, 210, 240, 255}
	for i := range in {
		assert.InDelta(t, out[i]/255, Stretch(in[i]/255), 1e-5, "breakpoint %v", in[i])
	}
}

func TestStretch_Clamp(t *testing.T) {
	assert.Equal(t, 0.0, Stretch(-0.3))
	assert.Equal(t, 1.0, Stretch(1.7))
	assert.Equal(t, 0.0, Stretch(5e-6))
	assert.Equal(t, 1.0, Stretch(1-5e-6))
	assert.True(t, math.IsNaN(Stretch(math.NaN())))
}

func TestStretch_Interpolates(t *testing.T) {
	// halfway between 30 and 60 maps halfway between 110 and 160
	assert.InDelta(t, 135.0/255, Stretch(45.0/255), 1e-12)
	assert.InDelta(t, 55.0/255, Stretch(15.0/255), 1e-12)
}

func TestStretch_Monotonic(t *testing.T) {
	prev := Stretch(0)
	for v := 0.001; v <= 1; v += 0.001 {
		s := Stretch(v)
		assert.GreaterOrEqual(t, s, prev, "at %v", v)
		prev = s
	}
}

func TestPiecewiseLinear_Grid(t *testing.T) {
	out := PiecewiseLinear([][]float64{{0, 60.0 / 255}, {2, -1}})
	assert.InDelta(t, 160.0/255, out[0][1], 1e-12)
	assert.Equal(t, 1.0, out[1][0])
	assert.Equal(t, 0.0, out[1][1])
}

func TestContrastParams(t *testing.T) {
	// overhead sun: c = 1, gamma = 0.2
	gamma, lo, hi := ContrastParams(0)
	assert.InDelta(t, 0.2, gamma, 1e-12)
	assert.InDelta(t, 0.03*0.04-0.008*0.2+0.02, lo, 1e-12)
	assert.InDelta(t, 0.9*0.04-1.7*0.2+1.3, hi, 1e-12)

	// sun on the horizon: c = 0, gamma = 1.9 > 1 clamps the upper range
	gamma, _, hi = ContrastParams(90)
	assert.InDelta(t, 1.9, gamma, 1e-9)
	assert.Equal(t, 0.5, hi)
}

func TestMaxContrast(t *testing.T) {
	out, err := MaxContrast([][]float64{{0.5}}, [][]float64{{0}})
	require.NoError(t, err)
	gamma, lo, hi := ContrastParams(0)
	assert.InDelta(t, (math.Pow(0.5, 1/gamma)-lo)/(hi-lo), out[0][0], 1e-12)

	_, err = MaxContrast([][]float64{{0.5, 0.2}}, [][]float64{{0}})
	var target *grid.ShapeMismatchError
	require.ErrorAs(t, err, &target)
}

func TestCalibrate(t *testing.T) {
	g, err := grid.NewGeoGrid([][]float64{{300, 0.5}}, [][]float64{{-23, -23}}, [][]float64{{-70, -70}})
	require.NoError(t, err)
	sensed := time.Date(2021, 4, 25, 17, 7, 0, 0, time.UTC)

	b13, _ := abi.Band(13)
	ir, err := Calibrate(b13, NormalizationPiecewise, sensed, g)
	require.NoError(t, err)
	assert.InDelta(t, 26.85, ir[0][0], 1e-9)

	b2, _ := abi.Band(2)
	raw, err := Calibrate(b2, NormalizationNone, sensed, g)
	require.NoError(t, err)
	assert.Equal(t, g.Values, raw)

	storm, err := Calibrate(b2, NormalizationStorm, sensed, g)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(storm[0][1]))

	_, err = Calibrate(b2, Normalization("sepia"), sensed, g)
	require.Error(t, err)
}

func TestParseNormalization(t *testing.T) {
	n, err := ParseNormalization("max_storm_contrast")
	require.NoError(t, err)
	assert.Equal(t, NormalizationStorm, n)

	n, err = ParseNormalization("")
	require.NoError(t, err)
	assert.Equal(t, NormalizationNone, n)

	_, err = ParseNormalization("gamma")
	require.Error(t, err)
}
