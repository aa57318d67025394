package output

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ClassicIR is the infrared palette with fixed levels in °C. It ignores the range,
// reversal and colour count settings.
const ClassicIR = "Classic-IR"

// gradients are the anchor colours of the sequential palettes, sampled evenly.
var gradients = map[string][]string{
	"Gray_BW": {"#000000", "#ffffff"},
	"viridis": {"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"plasma":  {"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"},
	"inferno": {"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4"},
	"magma":   {"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f", "#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf"},
	"cividis": {"#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#fee838"},
	"Hawaii":  {"#8c0273", "#922a59", "#964742", "#996330", "#9d831e", "#97a92d", "#80c55f", "#66d89a", "#6ce5c9", "#b3f2fd"},
	"LaJolla": {"#ffffcc", "#fbec9a", "#f4cc68", "#eca855", "#e48751", "#d2624d", "#a54742", "#73382f", "#422818", "#1a1a01"},
	"LaPaz":   {"#1a0c64", "#232d7f", "#2b4a92", "#3b66a0", "#5780a5", "#7a95a3", "#a0a79f", "#cdbfaa", "#f0d8c8", "#fef2f3"},
	"Oslo":    {"#010101", "#0d1b29", "#133251", "#1f4a7c", "#3b66a8", "#6b88c0", "#99a8c7", "#c7cbd4", "#ffffff"},
	"Bilbao":  {"#ffffff", "#dcdcdc", "#c8c2b1", "#bbad8f", "#af9479", "#a67b6c", "#a06060", "#934348", "#7e2a2d", "#4d0001"},
	"Roma":    {"#7e1700", "#995215", "#b08929", "#c5b94d", "#c9dd8f", "#a6e1c4", "#68c1d5", "#3a94c5", "#2867ad", "#023198"},
	"Devon":   {"#2c1a4c", "#293a73", "#2a5a9d", "#5879c5", "#9a96e2", "#c7baf0", "#e5dcf8", "#ffffff"},
}

// rainbowIR is the cold part of Classic-IR from -90 °C to -20 °C.
var rainbowIR = []string{"#ffffff", "#ff80ff", "#8000ff", "#0000c0", "#0080ff", "#00ffff", "#00c000", "#ffff00", "#ff8000", "#ff0000", "#800000"}

var namedColors = map[string]string{
	"white":   "#ffffff",
	"black":   "#000000",
	"magenta": "#ff00ff",
	"gray":    "#808080",
	"red":     "#ff0000",
}

// Palette maps values to colours by level bins: a value v with Levels[i] <= v < Levels[i+1]
// gets Colors[i].
type Palette struct {
	Name   string // as used in image names, "-reversed" appended when reversed
	Levels []float64
	Colors []color.Color
	Under  color.Color
	Over   color.Color
	Bad    color.Color
	Ticks  []float64
}

type PaletteOptions struct {
	Name          string
	Reversed      bool
	ColorsBetween int
	Min, Max      float64
	Missing       string // colour name or hex for NaN cells
}

func PaletteNames() []string {
	names := []string{ClassicIR, "LaJolla+Oslo", "Oslo+LaJolla", "LaJolla+Devon", "Bilbao+Devon"}
	for name := range gradients {
		if name != "Devon" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func NewPalette(opts PaletteOptions) (*Palette, error) {
	bad, err := ParseColor(opts.Missing)
	if err != nil {
		return nil, err
	}
	if opts.Name == ClassicIR {
		p := classicIR(false)
		p.Bad = bad
		return p, nil
	}

	n := opts.ColorsBetween
	if n < 1 {
		return nil, fmt.Errorf("palette %s needs at least one colour, got %d", opts.Name, n)
	}
	if opts.Max <= opts.Min {
		return nil, fmt.Errorf("palette range [%g, %g] is empty", opts.Min, opts.Max)
	}

	var colors []color.Color
	if first, second, ok := strings.Cut(opts.Name, "+"); ok {
		// the second name fills the low half
		low, err := sample(second, n/2+1)
		if err != nil {
			return nil, err
		}
		high, err := sample(first, n+2-(n/2+1))
		if err != nil {
			return nil, err
		}
		colors = append(low, high...)
	} else {
		if colors, err = sample(opts.Name, n+2); err != nil {
			return nil, err
		}
	}

	name := opts.Name
	if opts.Reversed {
		for i, j := 0, len(colors)-1; i < j; i, j = i+1, j-1 {
			colors[i], colors[j] = colors[j], colors[i]
		}
		name += "-reversed"
	}

	levels := linspace(opts.Min, opts.Max, n+1)
	return &Palette{
		Name:   name,
		Levels: levels,
		Colors: colors[1 : n+1],
		Under:  colors[0],
		Over:   colors[n+1],
		Bad:    bad,
		Ticks:  every(levels, tickStep(n)),
	}, nil
}

// Color returns the colour for v.
func (p *Palette) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return p.Bad
	}
	last := len(p.Levels) - 1
	if v < p.Levels[0] {
		return p.Under
	}
	if v > p.Levels[last] {
		return p.Over
	}
	return p.Colors[p.bin(v)]
}

func (p *Palette) bin(v float64) int {
	i := sort.SearchFloat64s(p.Levels, v)
	if i == len(p.Levels) || p.Levels[i] != v {
		i--
	}
	return min(max(i, 0), len(p.Colors)-1)
}

// Colorbar is the palette drawn in the legend. For Classic-IR it has a coarser warm range
// than the image palette.
func (p *Palette) Colorbar() *Palette {
	if p.Name != ClassicIR {
		return p
	}
	bar := classicIR(true)
	bar.Bad = p.Bad
	return bar
}

func classicIR(lowres bool) *Palette {
	cold, _ := sampleStops(rainbowIR, 70)
	var levels []float64
	for t := -90; t < -20; t++ {
		levels = append(levels, float64(t))
	}

	grays := 600
	step := 0.1
	if lowres {
		grays, step = 30, 2
	}
	for k := 0; k <= grays; k++ {
		levels = append(levels, -20+float64(k)*step)
	}
	warm, _ := sampleStops([]string{"#ffffff", "#000000"}, grays)

	colors := append(cold, warm...)
	return &Palette{
		Name:   ClassicIR,
		Levels: levels,
		Colors: colors,
		Under:  colors[0],
		Over:   colors[len(colors)-1],
		Bad:    color.White,
		Ticks:  []float64{-90, -80, -70, -60, -50, -40, -30, -20, 0, 20, 40},
	}
}

func sample(name string, n int) ([]color.Color, error) {
	stops, ok := gradients[name]
	if !ok {
		return nil, fmt.Errorf("unknown colour palette %q (valid: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	return sampleStops(stops, n)
}

// sampleStops picks n evenly spaced colours along the piecewise linear RGB gradient
// through stops, both ends included.
func sampleStops(stops []string, n int) ([]color.Color, error) {
	anchors := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, err
		}
		anchors[i] = c
	}

	out := make([]color.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		if len(anchors) == 1 {
			out[i] = anchors[0]
			continue
		}
		pos := t * float64(len(anchors)-1)
		k := min(int(pos), len(anchors)-2)
		out[i] = anchors[k].BlendRgb(anchors[k+1], pos-float64(k)).Clamped()
	}
	return out, nil
}

// ParseColor accepts a few colour names or a #rrggbb hex string.
func ParseColor(s string) (color.Color, error) {
	if s == "" {
		return color.White, nil
	}
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		s = hex
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("unknown colour %q: %w", s, err)
	}
	return c, nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func tickStep(colorsBetween int) int {
	switch {
	case colorsBetween <= 20:
		return 1
	case colorsBetween <= 100:
		return 5
	default:
		return 10
	}
}

func every(v []float64, k int) []float64 {
	var out []float64
	for i := 0; i < len(v); i += k {
		out = append(out, v[i])
	}
	return out
}
