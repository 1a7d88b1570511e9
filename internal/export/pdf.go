package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendGap    = 5.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// writeCutSheets generates the printable cut sheet document: a job summary
// page with the per-cell breakdown table, followed by one page per populated
// cell showing the tile geometry, fiducials and owned shapes scaled to fit.
func (e *Exporter) writeCutSheets(path string) error {
	if len(e.Tiles) == 0 {
		return fmt.Errorf("no tiles to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	e.renderSummaryPage(pdf)

	for _, tile := range e.Tiles {
		pdf.AddPage()
		e.renderCellPage(pdf, tile)
	}

	return pdf.OutputFileAndClose(path)
}

// renderSummaryPage draws the job overview: layout statistics, the per-cell
// breakdown table and the cut settings in effect.
func (e *Exporter) renderSummaryPage(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	title := "Mosaic Cut Summary"
	if e.Name != "" {
		title = fmt.Sprintf("Mosaic Cut Summary - %s", e.Name)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18.0

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Layout", "", 0, "L", false, 0, "")
	y += 9

	var totalArea float64
	for _, t := range e.Tiles {
		totalArea += t.Area
	}
	cut := model.CalculateCutLength(e.Tiles, 0, e.Settings.FeedRate)

	summaryItems := []struct {
		label string
		value string
	}{
		{"Grid", fmt.Sprintf("%d x %d cells of %.0f units", e.Grid.Rows, e.Grid.Cols, e.Grid.CellSize)},
		{"Shapes", fmt.Sprintf("%d (%d assigned, %d unassigned)", len(e.Shapes), e.Cls.AssignedCount(), e.Cls.UnassignedCount())},
		{"Populated Cells", fmt.Sprintf("%d", len(e.Tiles))},
		{"Total Tile Area", fmt.Sprintf("%.0f units²", totalArea)},
		{"Total Cut Length", fmt.Sprintf("%.0f units (%d rings)", cut.TotalLinearMM, cut.RingCount)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cell Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 25, 25, 45, 45, 40}
	headers := []string{"Cell", "Shapes", "Rings", "Tile Area", "Cut Length", "Color"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, tile := range e.Tiles {
		col := e.Cls.ColorOf(tile.CellIndex)
		rowData := []string{
			tile.Name,
			fmt.Sprintf("%d", len(e.Cls.ByCell[tile.CellIndex])),
			fmt.Sprintf("%d", tile.RingCount()),
			fmt.Sprintf("%.0f units²", tile.Area),
			fmt.Sprintf("%.0f units", tile.Perimeter()),
			col.Hex(),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}

		// Colour swatch inside the last column
		pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		pdf.Rect(xPos-colWidths[len(colWidths)-1]+2, y+1.5, 3, 3, "F")
		y += 6

		if y > pageHeight-marginBottom-40 {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(100, 5, fmt.Sprintf("... and %d more cells", len(e.Tiles)-i-1), "", 0, "L", false, 0, "")
			y += 6
			break
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cut Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Min Overlap Ratio", fmt.Sprintf("%.2f", e.Settings.MinOverlapRatio)},
		{"Raster Tolerance", fmt.Sprintf("%d", e.Settings.RasterTolerance)},
		{"Tool Diameter", fmt.Sprintf("%.2f mm", e.Settings.ToolDiameter)},
		{"Cut Depth", fmt.Sprintf("%.1f mm in %.1f mm passes", e.Settings.CutDepth, e.Settings.PassDepth)},
		{"Feed Rate", fmt.Sprintf("%.0f mm/min", e.Settings.FeedRate)},
		{"GCode Profile", e.Settings.GCodeProfile},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by MosaicCut - Mosaic Fabrication Partitioner", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// renderCellPage draws one populated cell: the tile rings filled in the cell
// colour with holes knocked out, owned shape outlines with serial labels,
// the fiducial markers, dimension annotations and a shape legend.
func (e *Exporter) renderCellPage(pdf *fpdf.Fpdf, tile model.CellTile) {
	cellRect := e.Grid.CellRect(tile.CellIndex)
	col := e.Cls.ColorOf(tile.CellIndex)
	shapes := e.shapesInCell(tile.CellIndex)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Cell %s (%d shapes)", tile.Name, len(shapes))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Tile area: %.0f units² | Rings: %d | Cut length: %.0f units | Color: %s",
		tile.Area, tile.RingCount(), tile.Perimeter(), col.Hex())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	view := tileBounds(tile)
	view = unionRect(view, cellRect).Expand(5)

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - 20

	scale := math.Min(drawWidth/view.W, drawHeight/view.H)
	canvasW := view.W * scale
	canvasH := view.H * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Cell rectangle as a light reference frame behind the tile
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Rect(offsetX+(cellRect.X-view.X)*scale, offsetY+(cellRect.Y-view.Y)*scale,
		cellRect.W*scale, cellRect.H*scale, "D")

	pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	for _, part := range tile.Parts {
		if len(part.Outer) >= 3 {
			pdf.Polygon(pagePoly(part.Outer, view, scale, offsetX, offsetY), "FD")
		}
	}
	pdf.SetFillColor(255, 255, 255)
	for _, part := range tile.Parts {
		for _, hole := range part.Holes {
			if len(hole) >= 3 {
				pdf.Polygon(pagePoly(hole, view, scale, offsetX, offsetY), "FD")
			}
		}
	}

	// Owned shapes as thin outlines with serial labels where they fit
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.15)
	for _, s := range shapes {
		outline := s.Outline()
		if len(outline) < 3 {
			continue
		}
		pdf.Polygon(pagePoly(outline, view, scale, offsetX, offsetY), "D")

		bb := s.BoundingBox()
		bw := bb.W * scale
		bh := bb.H * scale
		if bw > 8 && bh > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(bw, bh))
			pdf.SetTextColor(0, 0, 0)
			label := fmt.Sprintf("%d", s.Serial)
			labelW := pdf.GetStringWidth(label)
			if labelW < bw-1 {
				c := bb.Center()
				pdf.SetXY(offsetX+(c.X-view.X)*scale-labelW/2, offsetY+(c.Y-view.Y)*scale-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	// Fiducial markers
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.3)
	for _, p := range model.FiducialPoints(cellRect) {
		r := e.Settings.FiducialRadius * scale
		if r < 0.8 {
			r = 0.8
		}
		pdf.Circle(offsetX+(p.X-view.X)*scale, offsetY+(p.Y-view.Y)*scale, r, "D")
	}
	pdf.SetDrawColor(0, 0, 0)

	drawDimensionAnnotations(pdf, view, offsetX, offsetY, canvasW, canvasH)
	e.drawShapeLegend(pdf, shapes, offsetY+canvasH+legendGap)
}

// drawDimensionAnnotations adds the drawn region's width and height in world
// units outside the canvas, height rotated along the left edge.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, view model.Rect, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f units", view.W)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f units", view.H)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawShapeLegend renders a compact legend of the cell's shapes, wrapping
// lines and truncating once the page runs out.
func (e *Exporter) drawShapeLegend(pdf *fpdf.Fpdf, shapes []model.Shape, startY float64) {
	if len(shapes) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Shapes:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	maxY := pageHeight - marginBottom - 4

	for i, s := range shapes {
		label := fmt.Sprintf("#%d %s %.0fx%.0f", s.Serial, s.Type, s.Width, s.Height)
		if s.Rotation != 0 {
			label += fmt.Sprintf(" @%.0f\xb0", s.Rotation)
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY > maxY {
			pdf.SetXY(xPos, startY)
			pdf.CellFormat(40, 4, fmt.Sprintf("+ %d more", len(shapes)-i), "", 0, "L", false, 0, "")
			return
		}

		if c, err := model.ParseHexColor(s.FillColor); err == nil && s.Filled {
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		} else {
			pdf.SetDrawColor(150, 150, 150)
			pdf.Rect(xPos, startY+0.5, 3, 3, "D")
		}

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// pagePoly maps a world outline into page coordinates.
func pagePoly(ring model.Outline, view model.Rect, scale, offsetX, offsetY float64) []fpdf.PointType {
	pts := make([]fpdf.PointType, len(ring))
	for i, p := range ring {
		pts[i] = fpdf.PointType{
			X: offsetX + (p.X-view.X)*scale,
			Y: offsetY + (p.Y-view.Y)*scale,
		}
	}
	return pts
}

// tileBounds returns the world bounding box over every ring of a tile.
func tileBounds(tile model.CellTile) model.Rect {
	first := true
	var bb model.Rect
	add := func(o model.Outline) {
		if len(o) == 0 {
			return
		}
		b := o.BoundingBox()
		if first {
			bb = b
			first = false
			return
		}
		bb = unionRect(bb, b)
	}
	for _, part := range tile.Parts {
		add(part.Outer)
		for _, h := range part.Holes {
			add(h)
		}
	}
	return bb
}

// unionRect returns the smallest rectangle covering both inputs.
func unionRect(a, b model.Rect) model.Rect {
	minX := math.Min(a.X, b.X)
	minY := math.Min(a.Y, b.Y)
	maxX := math.Max(a.Right(), b.Right())
	maxY := math.Max(a.Bottom(), b.Bottom())
	return model.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// labelFontSize returns a font size matched to the labelled region.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
