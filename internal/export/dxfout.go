package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// DXF layer names recognised by downstream CAM tooling.
const (
	layerBorder = "BLOB_BORDER"
	layerMarks  = "CIRCLES"
	layerText   = "TEXT"
)

// writeCellDXF writes one cell's cut geometry as a DXF drawing: every ring as
// a closed LWPOLYLINE on BLOB_BORDER (red), the fiducials as circles on
// CIRCLES (yellow), and the cell name as LINE strokes on TEXT (green).
func (e *Exporter) writeCellDXF(path string, tile model.CellTile, blob *model.Blob) error {
	outers, holes := cellOutlines(tile, blob)
	if len(outers) == 0 {
		return fmt.Errorf("cell %s: no outline to draw", tile.Name)
	}
	fids := e.fiducialsFor(tile, blob)

	d := dxf.NewDrawing()

	if _, err := d.AddLayer(layerBorder, color.Red, table.LT_CONTINUOUS, true); err != nil {
		return err
	}
	for _, ring := range outers {
		if _, err := d.LwPolyline(true, ringVertices(ring)...); err != nil {
			return err
		}
	}
	for _, ring := range holes {
		if _, err := d.LwPolyline(true, ringVertices(ring)...); err != nil {
			return err
		}
	}

	if _, err := d.AddLayer(layerMarks, color.Yellow, table.LT_CONTINUOUS, true); err != nil {
		return err
	}
	for _, p := range fids {
		if _, err := d.Circle(p.X, p.Y, 0, e.Settings.FiducialRadius); err != nil {
			return err
		}
	}

	if _, err := d.AddLayer(layerText, color.Green, table.LT_CONTINUOUS, true); err != nil {
		return err
	}
	for _, seg := range TextSegments(tile.Name, fids[0].X-10, fids[0].Y-25) {
		if _, err := d.Line(seg.X1, seg.Y1, 0, seg.X2, seg.Y2, 0); err != nil {
			return err
		}
	}

	return d.SaveAs(path)
}

// ringVertices converts an outline to the vertex slices LwPolyline takes.
func ringVertices(o model.Outline) [][]float64 {
	verts := make([][]float64, len(o))
	for i, p := range o {
		verts[i] = []float64{p.X, p.Y}
	}
	return verts
}
