package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// inventoryHeader is the canonical shape inventory column set. The importer
// accepts aliases, but every file this package writes uses exactly these
// names in this order.
var inventoryHeader = []string{
	"Serial_Number", "Shape_Type", "X", "Y", "Width", "Height",
	"Rotation", "Frame_Color", "Fill_Color", "Is_Filled",
}

// writeCellCSV writes the shape inventory for one cell. Coordinates are
// cell-local with the origin CSVMarginX/Y units above-left of the cell
// corner; rows run top to bottom by world Y, serial order on ties, and each
// row carries the shape's own serial.
func (e *Exporter) writeCellCSV(path string, tile model.CellTile) error {
	cell := e.Grid.CellRect(tile.CellIndex)
	originX := cell.X - e.Settings.CSVMarginX
	originY := cell.Y - e.Settings.CSVMarginY

	shapes := e.shapesInCell(tile.CellIndex)
	sort.SliceStable(shapes, func(a, b int) bool {
		if shapes[a].Position.Y != shapes[b].Position.Y {
			return shapes[a].Position.Y < shapes[b].Position.Y
		}
		return shapes[a].Serial < shapes[b].Serial
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(inventoryHeader); err != nil {
		return err
	}
	for _, s := range shapes {
		row := []string{
			strconv.Itoa(s.Serial),
			s.Type.String(),
			formatUnit(s.Position.X - originX),
			formatUnit(s.Position.Y - originY),
			formatUnit(s.Width),
			formatUnit(s.Height),
			formatUnit(s.Rotation),
			s.FrameColor,
			s.FillColor,
			strconv.FormatBool(s.Filled),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writePolygonSummary writes one row per tile part across the whole layout:
// sequential polygon id, owning cell, the outer ring as a closed JSON
// coordinate list, the cell colour in unit-interval channels, and part area.
func (e *Exporter) writePolygonSummary(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"polygon_id", "box_name", "coordinates",
		"color_r", "color_g", "color_b", "color_a", "area",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	id := 0
	for _, tile := range e.Tiles {
		col := e.Cls.ColorOf(tile.CellIndex)
		for _, part := range tile.Parts {
			row := []string{
				strconv.Itoa(id),
				tile.Name,
				ringJSON(part.Outer),
				formatChannel(col.R),
				formatChannel(col.G),
				formatChannel(col.B),
				formatChannel(col.A),
				formatFloat(part.Area()),
			}
			if err := w.Write(row); err != nil {
				return err
			}
			id++
		}
	}
	w.Flush()
	return w.Error()
}

// writeColorSummary writes the per-colour material usage table: total tile
// area per classification colour and its share of the whole layout, largest
// first.
func (e *Exporter) writeColorSummary(path string) error {
	areas := make(map[string]float64)
	var total float64
	for _, tile := range e.Tiles {
		hex := e.Cls.ColorOf(tile.CellIndex).Hex()
		areas[hex] += tile.Area
		total += tile.Area
	}

	type colorArea struct {
		hex  string
		area float64
	}
	rows := make([]colorArea, 0, len(areas))
	for hex, a := range areas {
		rows = append(rows, colorArea{hex: hex, area: a})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].area != rows[b].area {
			return rows[a].area > rows[b].area
		}
		return rows[a].hex < rows[b].hex
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"color_hex", "total_area", "percentage"}); err != nil {
		return err
	}
	for _, r := range rows {
		pct := 0.0
		if total > 0 {
			pct = r.area / total * 100
		}
		row := []string{r.hex, formatFloat(r.area), fmt.Sprintf("%.2f%%", pct)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ringJSON renders an outline as a JSON array of [x, y] pairs, repeating the
// first point at the end so the ring reads closed.
func ringJSON(o model.Outline) string {
	var b strings.Builder
	writePoint := func(p model.Point2D) {
		b.WriteByte('[')
		b.WriteString(formatFloat(p.X))
		b.WriteString(", ")
		b.WriteString(formatFloat(p.Y))
		b.WriteByte(']')
	}
	b.WriteByte('[')
	for i, p := range o {
		if i > 0 {
			b.WriteString(", ")
		}
		writePoint(p)
	}
	if len(o) > 0 {
		b.WriteString(", ")
		writePoint(o[0])
	}
	b.WriteByte(']')
	return b.String()
}

// formatUnit renders lengths and angles with two decimals.
func formatUnit(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// formatFloat renders a float at full precision without trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatChannel converts an 8-bit colour channel to its unit-interval form.
func formatChannel(v uint8) string {
	return formatFloat(float64(v) / 255.0)
}
