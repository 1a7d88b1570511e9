package export

import (
	"fmt"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// writeCellSVG draws one cell's cut geometry: each ring filled in the cell
// colour with a black outline, holes knocked out in white, the three fiducial
// circles, and the cell name drawn from stroke segments so the file carries
// no font dependence. The view box covers rings, markers and label plus the
// configured padding.
func (e *Exporter) writeCellSVG(path string, tile model.CellTile, blob *model.Blob) error {
	outers, holes := cellOutlines(tile, blob)
	if len(outers) == 0 {
		return fmt.Errorf("cell %s: no outline to draw", tile.Name)
	}
	col := e.cellColor(tile, blob)
	fids := e.fiducialsFor(tile, blob)
	label := TextSegments(tile.Name, fids[0].X-10, fids[0].Y-25)

	view := svgBounds(outers, holes, fids, label, e.Settings)

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	canvas := svg.New(f)
	w := int(math.Ceil(view.W))
	h := int(math.Ceil(view.H))
	canvas.Startview(w, h, px(view.X), px(view.Y), w, h)

	fillStyle := fmt.Sprintf("fill:%s;stroke:black;stroke-width:1", col.Hex())
	for _, ring := range outers {
		xs, ys := ringCoords(ring)
		canvas.Polygon(xs, ys, fillStyle)
	}
	for _, ring := range holes {
		xs, ys := ringCoords(ring)
		canvas.Polygon(xs, ys, "fill:white;stroke:black;stroke-width:1")
	}

	const markStyle = "fill:none;stroke:black;stroke-width:1"
	r := px(e.Settings.FiducialRadius)
	for _, p := range fids {
		canvas.Circle(px(p.X), px(p.Y), r, markStyle)
	}
	for _, seg := range label {
		canvas.Line(px(seg.X1), px(seg.Y1), px(seg.X2), px(seg.Y2), markStyle)
	}

	canvas.End()
	return f.Close()
}

// svgBounds returns the world rectangle the view box must cover: ring
// extents, fiducial circles and label strokes, expanded by SVGPadding.
func svgBounds(outers, holes []model.Outline, fids [3]model.Point2D, label []Segment, s model.CutSettings) model.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	for _, ring := range outers {
		for _, p := range ring {
			grow(p.X, p.Y)
		}
	}
	for _, ring := range holes {
		for _, p := range ring {
			grow(p.X, p.Y)
		}
	}
	for _, p := range fids {
		grow(p.X-s.FiducialRadius, p.Y-s.FiducialRadius)
		grow(p.X+s.FiducialRadius, p.Y+s.FiducialRadius)
	}
	for _, seg := range label {
		grow(seg.X1, seg.Y1)
		grow(seg.X2, seg.Y2)
	}
	return model.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}.Expand(s.SVGPadding)
}

// ringCoords splits an outline into the parallel int slices svgo draws with.
func ringCoords(o model.Outline) (xs, ys []int) {
	xs = make([]int, len(o))
	ys = make([]int, len(o))
	for i, p := range o {
		xs[i] = px(p.X)
		ys[i] = px(p.Y)
	}
	return xs, ys
}

// px rounds a world coordinate to the nearest SVG user unit.
func px(v float64) int {
	return int(math.Round(v))
}
