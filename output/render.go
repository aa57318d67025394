package output

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/atacama-sky/goes-abi-cli/internal/grid"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

type RenderOptions struct {
	// Resolution is the total image width in pixels, map and colorbar together.
	Resolution int
	Palette    *Palette
	GridLines  bool
	GridColor  color.Color
	Caption    string
}

const (
	mapFraction   = 0.91 // share of the width used by the map
	colorbarGap   = 0.01 // relative to the map width
	colorbarWidth = 0.03
	extendFrac    = 0.03 // under/over triangles, relative to the bar height
)

// Render draws g over the domain in the given projection with a colorbar and caption.
// Rows without content at the top and bottom are cropped from the result.
func Render(g *grid.GeoGrid, d domain.Domain, proj MapProjection, opts RenderOptions) (image.Image, error) {
	if opts.Resolution < 100 {
		return nil, fmt.Errorf("resolution %d too small", opts.Resolution)
	}
	if opts.Palette == nil {
		return nil, fmt.Errorf("no palette")
	}
	if opts.GridColor == nil {
		opts.GridColor = color.Black
	}

	ext, err := mapExtent(proj, d.Bounds())
	if err != nil {
		return nil, err
	}

	res := opts.Resolution
	mapW := int(mapFraction * float64(res))
	mapH := int(float64(mapW) * ext.height() / ext.width())
	if mapH > res {
		mapH = res
		mapW = int(float64(res) * ext.width() / ext.height())
	}
	top := (res - mapH) / 2
	frame := frame{ext: ext, x0: 0, y0: float64(top), w: float64(mapW), h: float64(mapH)}

	raster, err := rasterize(g, proj, frame, mapW, mapH, opts.Palette)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(res, res)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawImage(raster, 0, top)

	if opts.GridLines {
		if err := drawGridLines(dc, proj, frame, d.GridSpacing(), opts.GridColor); err != nil {
			return nil, err
		}
	}
	drawColorbar(dc, opts.Palette.Colorbar(), frame)
	if opts.Caption != "" {
		drawCaption(dc, opts.Caption, frame)
	}
	return CropWhitespace(dc.Image()), nil
}

// frame places the plane extent on the canvas.
type frame struct {
	ext          extent
	x0, y0, w, h float64
}

func (f frame) toCanvas(x, y float64) (float64, float64) {
	return f.x0 + (x-f.ext.xMin)/f.ext.width()*f.w, f.y0 + (f.ext.yMax-y)/f.ext.height()*f.h
}

// rasterize colours every map pixel with the value of the nearest data cell. Pixels farther
// than about one and a half cells from any data stay transparent.
func rasterize(g *grid.GeoGrid, proj MapProjection, f frame, w, h int, p *Palette) (*image.RGBA, error) {
	xs := make([]float64, w)
	for c := range xs {
		xs[c] = f.ext.xMin + (float64(c)+0.5)/float64(w)*f.ext.width()
	}
	ys := make([]float64, h)
	for r := range ys {
		ys[r] = f.ext.yMax - (float64(r)+0.5)/float64(h)*f.ext.height()
	}
	lons, lats, err := proj.Inverse(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("inverse %s projection: %w", proj.Name(), err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	spacing := grid.Spacing(g.Lats, g.Lons)
	if math.IsNaN(spacing) {
		return img, nil
	}
	idx, err := grid.NewNearestIndex(g.Lats, g.Lons)
	if err != nil {
		return nil, err
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			row, col, ok := idx.Within(lats[r][c], lons[r][c], 1.5*spacing)
			if !ok {
				continue
			}
			img.Set(c, r, p.Color(g.Values[row][col]))
		}
	}
	return img, nil
}

func drawGridLines(dc *gg.Context, proj MapProjection, f frame, spacing float64, c color.Color) error {
	dc.Push()
	defer dc.Pop()
	dc.DrawRectangle(f.x0, f.y0, f.w, f.h)
	dc.Clip()
	dc.SetColor(c)
	dc.SetLineWidth(1)

	const step = 0.25
	for lon := -180.0; lon < 180; lon += spacing {
		var lons, lats []float64
		for lat := -90.0; lat <= 90; lat += step {
			lons, lats = append(lons, lon), append(lats, lat)
		}
		if err := strokeLine(dc, proj, f, lons, lats); err != nil {
			return err
		}
	}
	for lat := -90.0; lat <= 90; lat += spacing {
		var lons, lats []float64
		for lon := -180.0; lon <= 180; lon += step {
			lons, lats = append(lons, lon), append(lats, lat)
		}
		if err := strokeLine(dc, proj, f, lons, lats); err != nil {
			return err
		}
	}
	return nil
}

// strokeLine draws the visible runs of a projected polyline.
func strokeLine(dc *gg.Context, proj MapProjection, f frame, lons, lats []float64) error {
	x, y, ok, err := proj.Forward(lons, lats)
	if err != nil {
		return err
	}
	open := false
	for i := range x {
		if !ok[i] {
			open = false
			continue
		}
		px, py := f.toCanvas(x[i], y[i])
		if open {
			dc.LineTo(px, py)
		} else {
			dc.NewSubPath()
			dc.MoveTo(px, py)
			open = true
		}
	}
	dc.Stroke()
	return nil
}

func drawColorbar(dc *gg.Context, p *Palette, f frame) {
	x := f.x0 + f.w*(1+colorbarGap)
	w := f.w * colorbarWidth
	ext := f.h * extendFrac
	barTop, barBottom := f.y0+ext, f.y0+f.h-ext
	binH := (barBottom - barTop) / float64(len(p.Colors))

	for i, c := range p.Colors {
		dc.SetColor(c)
		dc.DrawRectangle(x, barBottom-float64(i+1)*binH, w, binH+0.5)
		dc.Fill()
	}

	dc.SetColor(p.Over)
	dc.MoveTo(x, barTop)
	dc.LineTo(x+w/2, f.y0)
	dc.LineTo(x+w, barTop)
	dc.ClosePath()
	dc.Fill()
	dc.SetColor(p.Under)
	dc.MoveTo(x, barBottom)
	dc.LineTo(x+w/2, f.y0+f.h)
	dc.LineTo(x+w, barBottom)
	dc.ClosePath()
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, barTop, w, barBottom-barTop)
	dc.Stroke()

	for _, t := range p.Ticks {
		pos, ok := levelPosition(p.Levels, t)
		if !ok {
			continue
		}
		y := barBottom - pos*binH
		dc.DrawLine(x+w, y, x+w+4, y)
		dc.Stroke()
		dc.DrawStringAnchored(formatTick(t), x+w+6, y, 0, 0.35)
	}
}

// levelPosition is the fractional bin index of v, every bin counting one unit.
func levelPosition(levels []float64, v float64) (float64, bool) {
	for i := 0; i+1 < len(levels); i++ {
		lo, hi := levels[i], levels[i+1]
		if v >= lo-1e-9 && v <= hi+1e-9 {
			return float64(i) + (v-lo)/(hi-lo), true
		}
	}
	return 0, false
}

func formatTick(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func drawCaption(dc *gg.Context, text string, f frame) {
	const pad = 4
	tw, th := dc.MeasureString(text)
	x := f.x0 + 0.02*f.w
	y := f.y0 + f.h - 0.02*f.h

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(x, y-th-2*pad, tw+2*pad, th+2*pad)
	dc.Fill()
	dc.SetColor(color.White)
	dc.DrawStringAnchored(text, x+pad, y-pad, 0, 0)
}

// CropWhitespace removes the white rows above and below the content of img.
func CropWhitespace(img image.Image) image.Image {
	b := img.Bounds()
	first, last := -1, -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if !whiteRow(img, y) {
			if first < 0 {
				first = y
			}
			last = y
		}
	}
	if first < 0 {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), last-first+1))
	draw.Draw(out, out.Bounds(), img, image.Pt(b.Min.X, first), draw.Src)
	return out
}

func whiteRow(img image.Image, y int) bool {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 255 {
			return false
		}
	}
	return true
}

// SavePNG writes img, creating the parent directories.
func SavePNG(path string, img image.Image) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
