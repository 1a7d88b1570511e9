// Package raster renders classified layouts into image buffers and recovers
// cell-local outlines from them by colour segmentation. It reproduces the
// editor's compositing exactly, so traced contours match what an operator
// sees on screen, overlap rules included.
package raster

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/mosaicfab/MosaicCut/internal/logging"
	"github.com/mosaicfab/MosaicCut/internal/model"
)

// Render paints the classified layout into a BGR raster at 1:1 world-to-pixel
// scale over the grid bounds. Paint order: white background, populated cell
// rectangles in their palette colour, then every shape in ascending serial
// order tinted by its owning cell (white when unassigned). The caller owns
// the returned Mat and must Close it.
func Render(grid model.Grid, shapes []model.Shape, cls model.Classification) gocv.Mat {
	bounds := grid.Bounds()
	w := int(math.Round(bounds.W))
	h := int(math.Round(bounds.H))
	if w <= 0 || h <= 0 {
		logging.Logger().Warn("degenerate grid bounds, nothing to render",
			slog.Int("width", w), slog.Int("height", h))
		return gocv.NewMat()
	}

	scene := gocv.NewMatWithSizeFromScalar(bgrScalar(model.White), h, w, gocv.MatTypeCV8UC3)

	for _, cell := range cls.PopulatedCells() {
		fillRect(&scene, grid.CellRect(cell), bounds, cls.ColorOf(cell))
	}
	for _, i := range serialOrder(shapes) {
		col := model.White
		if cell := cls.CellOf(i); cell != model.Unassigned {
			col = cls.ColorOf(cell)
		}
		fillOutline(&scene, shapes[i].Outline(), bounds, col)
	}

	logging.Logger().Debug("scene rendered",
		slog.Int("width", w), slog.Int("height", h),
		slog.Int("shapes", len(shapes)))
	return scene
}

// RenderCell paints one cell and every shape crossing its neighbourhood into
// a standalone preview raster. The view covers the cell rectangle expanded by
// margin pixels on each side. The caller owns the returned Mat.
func RenderCell(grid model.Grid, shapes []model.Shape, cls model.Classification, cell int, margin float64) gocv.Mat {
	view := grid.CellRect(cell).Expand(margin)
	w := int(math.Round(view.W))
	h := int(math.Round(view.H))
	if w <= 0 || h <= 0 {
		return gocv.NewMat()
	}

	plate := gocv.NewMatWithSizeFromScalar(bgrScalar(model.White), h, w, gocv.MatTypeCV8UC3)

	fillRect(&plate, grid.CellRect(cell), view, cls.ColorOf(cell))
	for _, i := range serialOrder(shapes) {
		if !shapes[i].BoundingBox().Intersects(view) {
			continue
		}
		col := model.White
		if owner := cls.CellOf(i); owner != model.Unassigned {
			col = cls.ColorOf(owner)
		}
		fillOutline(&plate, shapes[i].Outline(), view, col)
	}
	return plate
}

// EncodePNG serializes a raster to PNG bytes.
func EncodePNG(m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, m)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// serialOrder returns shape indices sorted by ascending serial number, the
// deterministic paint order shared by the editor and the exports.
func serialOrder(shapes []model.Shape) []int {
	order := make([]int, len(shapes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return shapes[order[a]].Serial < shapes[order[b]].Serial
	})
	return order
}

func fillRect(m *gocv.Mat, r model.Rect, view model.Rect, col model.Color) {
	px := image.Rect(
		int(math.Round(r.X-view.X)), int(math.Round(r.Y-view.Y)),
		int(math.Round(r.Right()-view.X)), int(math.Round(r.Bottom()-view.Y)))
	gocv.Rectangle(m, px, rgba(col), -1)
}

func fillOutline(m *gocv.Mat, outline model.Outline, view model.Rect, col model.Color) {
	if len(outline) < 3 {
		return
	}
	pts := make([]image.Point, 0, len(outline))
	for _, p := range outline {
		pts = append(pts, toPixel(p, view))
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.FillPoly(m, pv, rgba(col))
}

// toPixel maps a world coordinate into the raster, whose origin sits at the
// top-left of the rendered view.
func toPixel(p model.Point2D, view model.Rect) image.Point {
	return image.Pt(int(math.Round(p.X-view.X)), int(math.Round(p.Y-view.Y)))
}

// bgrScalar returns the colour in the channel order the Mat stores.
func bgrScalar(c model.Color) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

func rgba(c model.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
