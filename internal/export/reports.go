package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// reportKey groups shapes for tallying: a size label and a colour label.
type reportKey struct {
	size  string
	color string
}

// sizeKey renders the grouping label for one shape. Rectangles read WxH with
// the larger side first so a piece and its rotation land in the same row;
// triangles and free polygons carry their kind in the label.
func sizeKey(s model.Shape) string {
	w := int(s.Width)
	h := int(s.Height)
	switch s.Type {
	case model.ShapeTriangle:
		return fmt.Sprintf("%dX%d Triangle", w, w)
	case model.ShapePolygon:
		return fmt.Sprintf("%dX%d Polygon", w, h)
	default:
		if w < h {
			w, h = h, w
		}
		return fmt.Sprintf("%dX%d", w, h)
	}
}

// colorKey renders the colour label: the fill colour uppercased, or
// "Transparent" for unfilled shapes.
func colorKey(s model.Shape) string {
	if s.Filled && strings.TrimSpace(s.FillColor) != "" {
		return strings.ToUpper(s.FillColor)
	}
	return "Transparent"
}

// countShapes tallies shapes by (size, colour).
func countShapes(shapes []model.Shape) map[reportKey]int {
	counts := make(map[reportKey]int)
	for _, s := range shapes {
		counts[reportKey{size: sizeKey(s), color: colorKey(s)}]++
	}
	return counts
}

// sortedKeys orders tally keys by size label, then colour label.
func sortedKeys(counts map[reportKey]int) []reportKey {
	keys := make([]reportKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].size != keys[b].size {
			return keys[a].size < keys[b].size
		}
		return keys[a].color < keys[b].color
	})
	return keys
}

// reportStyles holds the shared style ids for one workbook.
type reportStyles struct {
	title  int
	header int
	cell   int
	total  int
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
}

func buildReportStyles(f *excelize.File) (reportStyles, error) {
	var st reportStyles
	var err error

	st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return st, err
	}
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return st, err
	}
	st.cell, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return st, err
	}
	st.total, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	return st, err
}

// colorCellStyle returns the centred, bordered style for one colour label:
// the colour as cell background with black or white bold text picked by
// brightness, or the light-gray italic "Transparent" treatment. Styles are
// cached per workbook.
func colorCellStyle(f *excelize.File, cache map[string]int, label string) (int, error) {
	if id, ok := cache[label]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	}
	if label == "Transparent" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F0F0F0"}}
		style.Font = &excelize.Font{Color: "666666", Italic: true}
	} else if c, err := model.ParseHexColor(label); err == nil {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(c.Hex(), "#")}}
		text := "000000"
		if c.Brightness() < 128 {
			text = "FFFFFF"
		}
		style.Font = &excelize.Font{Color: text, Bold: true}
	}

	id, err := f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	cache[label] = id
	return id, nil
}

// axis returns the A1-style reference for a 1-based column and row.
func axis(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}

// writeTable writes the header row, the sorted tally rows and the TOTAL row
// (one blank row below the data) starting at startRow.
func writeTable(f *excelize.File, sheet string, st reportStyles, cache map[string]int, counts map[reportKey]int, startRow int) error {
	for i, h := range []string{"Shape Type", "Color", "Count"} {
		if err := f.SetCellValue(sheet, axis(i+1, startRow), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, axis(1, startRow), axis(3, startRow), st.header); err != nil {
		return err
	}

	keys := sortedKeys(counts)
	total := 0
	for i, k := range keys {
		row := startRow + 1 + i
		if err := f.SetCellValue(sheet, axis(1, row), k.size); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, axis(2, row), k.color); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, axis(3, row), counts[k]); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, axis(1, row), axis(1, row), st.cell); err != nil {
			return err
		}
		colStyle, err := colorCellStyle(f, cache, k.color)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, axis(2, row), axis(2, row), colStyle); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, axis(3, row), axis(3, row), st.cell); err != nil {
			return err
		}
		total += counts[k]
	}

	totalRow := startRow + len(keys) + 2
	if err := f.MergeCell(sheet, axis(1, totalRow), axis(2, totalRow)); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, axis(1, totalRow), "TOTAL"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, axis(3, totalRow), total); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, axis(1, totalRow), axis(3, totalRow), st.total)
}

// adjustColumns sizes every column to its longest content plus two
// characters, capped at 30.
func adjustColumns(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	widths := make(map[int]int)
	for _, row := range rows {
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(w + 2)
		if width > 30 {
			width = 30
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// writeGeneralReport writes the layout-wide tally workbook: a single sheet
// counting every classified shape by size and colour.
func (e *Exporter) writeGeneralReport(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "General Shape Report"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	st, err := buildReportStyles(f)
	if err != nil {
		return err
	}
	cache := make(map[string]int)

	counts := make(map[reportKey]int)
	for _, cell := range e.Cls.PopulatedCells() {
		for k, n := range countShapes(e.shapesInCell(cell)) {
			counts[k] += n
		}
	}

	if err := writeTable(f, sheet, st, cache, counts, 1); err != nil {
		return err
	}

	// Shapes below the overlap threshold get their own section so the tally
	// still accounts for every piece of material.
	var unassigned []model.Shape
	for i, s := range e.Shapes {
		if e.Cls.CellOf(i) == model.Unassigned {
			unassigned = append(unassigned, s)
		}
	}
	if len(unassigned) > 0 {
		row := len(counts) + 5
		if err := f.SetCellValue(sheet, axis(1, row), "UNASSIGNED"); err != nil {
			return err
		}
		if err := f.MergeCell(sheet, axis(1, row), axis(3, row)); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, axis(1, row), axis(3, row), st.title); err != nil {
			return err
		}
		if err := writeTable(f, sheet, st, cache, countShapes(unassigned), row+1); err != nil {
			return err
		}
	}
	if err := adjustColumns(f, sheet); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// writeCellReports writes the per-cell workbook: one sheet per populated
// cell, each with a merged title row above the same tally layout.
func (e *Exporter) writeCellReports(path string) error {
	cells := e.Cls.PopulatedCells()
	if len(cells) == 0 {
		return fmt.Errorf("no populated cells to report")
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := buildReportStyles(f)
	if err != nil {
		return err
	}
	cache := make(map[string]int)

	first := f.GetSheetName(0)
	for i, cell := range cells {
		name := e.Grid.CellName(cell)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		if err := f.SetCellValue(name, "A1", fmt.Sprintf("BOX %s REPORT", name)); err != nil {
			return err
		}
		if err := f.MergeCell(name, "A1", "C1"); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", "C1", st.title); err != nil {
			return err
		}

		if err := writeTable(f, name, st, cache, countShapes(e.shapesInCell(cell)), 3); err != nil {
			return err
		}
		if err := adjustColumns(f, name); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
