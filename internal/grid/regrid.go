package grid

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// sphere points are unit vectors so that nearest neighbours are found by chord length,
// which orders the same as great circle distance.
type spherePoint struct {
	xyz [3]float64
	row int
	col int
}

func toSphere(lat, lon float64) [3]float64 {
	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	return [3]float64{math.Cos(phi) * math.Cos(lambda), math.Cos(phi) * math.Sin(lambda), math.Sin(phi)}
}

func (p spherePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.xyz[d] - c.(spherePoint).xyz[d]
}

func (p spherePoint) Dims() int { return 3 }

func (p spherePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(spherePoint)
	var sum float64
	for k := range p.xyz {
		d := p.xyz[k] - q.xyz[k]
		sum += d * d
	}
	return sum
}

type spherePoints []spherePoint

func (p spherePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p spherePoints) Len() int                      { return len(p) }
func (p spherePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p spherePoints) Pivot(d kdtree.Dim) int {
	return spherePlane{spherePoints: p, Dim: d}.Pivot()
}

type spherePlane struct {
	kdtree.Dim
	spherePoints
}

func (p spherePlane) Less(i, j int) bool {
	return p.spherePoints[i].xyz[p.Dim] < p.spherePoints[j].xyz[p.Dim]
}
func (p spherePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p spherePlane) Slice(start, end int) kdtree.SortSlicer {
	p.spherePoints = p.spherePoints[start:end]
	return p
}
func (p spherePlane) Swap(i, j int) {
	p.spherePoints[i], p.spherePoints[j] = p.spherePoints[j], p.spherePoints[i]
}

// NearestIndex answers nearest-pixel queries against the coordinates of a source grid.
type NearestIndex struct {
	tree *kdtree.Tree
	size int
}

// NewNearestIndex indexes every pixel of lats/lons with valid coordinates.
func NewNearestIndex(lats, lons [][]float64) (*NearestIndex, error) {
	if err := CheckShape("nearest index", lats, lons); err != nil {
		return nil, err
	}
	var pts spherePoints
	for i := range lats {
		for j := range lats[i] {
			lat, lon := lats[i][j], lons[i][j]
			if math.IsNaN(lat) || math.IsNaN(lon) {
				continue
			}
			pts = append(pts, spherePoint{xyz: toSphere(lat, lon), row: i, col: j})
		}
	}
	idx := &NearestIndex{size: len(pts)}
	if len(pts) > 0 {
		idx.tree = kdtree.New(pts, false)
	}
	return idx, nil
}

// Nearest returns the source pixel closest to (lat, lon). ok is false for NaN queries and
// empty indexes.
func (n *NearestIndex) Nearest(lat, lon float64) (row, col int, ok bool) {
	if n.tree == nil || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, false
	}
	got, _ := n.tree.Nearest(spherePoint{xyz: toSphere(lat, lon)})
	p := got.(spherePoint)
	return p.row, p.col, true
}

// Within is Nearest restricted to pixels at most maxDeg degrees of arc away.
func (n *NearestIndex) Within(lat, lon, maxDeg float64) (row, col int, ok bool) {
	if n.tree == nil || math.IsNaN(lat) || math.IsNaN(lon) {
		return 0, 0, false
	}
	got, dist := n.tree.Nearest(spherePoint{xyz: toSphere(lat, lon)})
	chord := 2 * math.Sin(maxDeg*math.Pi/360)
	if dist > chord*chord {
		return 0, 0, false
	}
	p := got.(spherePoint)
	return p.row, p.col, true
}

// Spacing estimates the typical distance in degrees of arc between horizontally adjacent
// pixels with valid coordinates. It returns NaN when no such pair exists.
func Spacing(lats, lons [][]float64) float64 {
	var d []float64
	stride := max(1, len(lats)/64)
	for i := 0; i < len(lats); i += stride {
		colStride := max(1, len(lats[i])/64)
		for j := 0; j+1 < len(lats[i]); j += colStride {
			a, b := lats[i][j], lats[i][j+1]
			if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(lons[i][j]) || math.IsNaN(lons[i][j+1]) {
				continue
			}
			d = append(d, arc(toSphere(a, lons[i][j]), toSphere(b, lons[i][j+1])))
		}
	}
	if len(d) == 0 {
		return math.NaN()
	}
	sort.Float64s(d)
	return d[len(d)/2]
}

func arc(p, q [3]float64) float64 {
	dot := p[0]*q[0] + p[1]*q[1] + p[2]*q[2]
	return math.Acos(math.Max(-1, math.Min(1, dot))) * 180 / math.Pi
}

// Resample picks for every target cell the value of the nearest source pixel. Cells with
// invalid target coordinates become NaN.
func (n *NearestIndex) Resample(values, targetLats, targetLons [][]float64) ([][]float64, error) {
	if err := CheckShape("resample target", targetLats, targetLons); err != nil {
		return nil, err
	}
	out := make([][]float64, len(targetLats))
	for i := range targetLats {
		row := make([]float64, len(targetLats[i]))
		for j := range row {
			r, c, ok := n.Nearest(targetLats[i][j], targetLons[i][j])
			if !ok {
				row[j] = math.NaN()
				continue
			}
			row[j] = values[r][c]
		}
		out[i] = row
	}
	return out, nil
}

// RegridNearest moves src onto the coordinates of target by nearest-neighbour lookup.
func RegridNearest(src *GeoGrid, target *GeoGrid) (*GeoGrid, error) {
	idx, err := NewNearestIndex(src.Lats, src.Lons)
	if err != nil {
		return nil, err
	}
	values, err := idx.Resample(src.Values, target.Lats, target.Lons)
	if err != nil {
		return nil, err
	}
	return target.WithValues(values)
}
