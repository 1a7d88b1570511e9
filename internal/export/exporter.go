// Package export writes fabrication files for a partitioned mosaic layout:
// per-cell shape inventories, cut outlines as SVG/DXF/PNG, aggregate colour
// summaries, Excel shape reports, printable cut sheets and label sheets, and
// per-tile GCode programs.
//
// All geometry handed in is read-only; writing files is the only I/O this
// package performs. Failures are isolated per output file so one unwritable
// path never aborts a batch.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mosaicfab/MosaicCut/internal/gcode"
	"github.com/mosaicfab/MosaicCut/internal/logging"
	"github.com/mosaicfab/MosaicCut/internal/model"
)

// Exporter bundles one layout's data for a batch export run.
type Exporter struct {
	Name     string // Job name shown on cut sheets
	Grid     model.Grid
	Shapes   []model.Shape
	Cls      model.Classification
	Tiles    []model.CellTile
	Blobs    []model.Blob // Optional; empty when raster extraction was skipped
	Settings model.CutSettings
}

// Formats selects which outputs ExportAll writes.
type Formats struct {
	CSV    bool
	SVG    bool
	DXF    bool
	PNG    bool
	Excel  bool
	PDF    bool
	Labels bool
	GCode  bool
}

// AllFormats enables every output.
func AllFormats() Formats {
	return Formats{
		CSV: true, SVG: true, DXF: true, PNG: true,
		Excel: true, PDF: true, Labels: true, GCode: true,
	}
}

// ParseFormats reads a comma-separated selection such as "csv,svg,gcode".
// The token "all" selects everything; unknown tokens are an error.
func ParseFormats(s string) (Formats, error) {
	var f Formats
	for _, tok := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "":
			continue
		case "all":
			return AllFormats(), nil
		case "csv":
			f.CSV = true
		case "svg":
			f.SVG = true
		case "dxf":
			f.DXF = true
		case "png":
			f.PNG = true
		case "excel", "xlsx":
			f.Excel = true
		case "pdf":
			f.PDF = true
		case "labels":
			f.Labels = true
		case "gcode", "nc":
			f.GCode = true
		default:
			return Formats{}, fmt.Errorf("unknown export format %q", strings.TrimSpace(tok))
		}
	}
	return f, nil
}

// ExportError pairs a failed output path with its cause.
type ExportError struct {
	Path string
	Err  error
}

// ExportSummary lists what a batch run produced and what it could not.
type ExportSummary struct {
	Written []string
	Failed  []ExportError
}

func (s *ExportSummary) record(log *slog.Logger, path string, err error) {
	if err != nil {
		log.Warn("export failed",
			slog.String("path", path), slog.Any("error", err))
		s.Failed = append(s.Failed, ExportError{Path: path, Err: err})
		return
	}
	s.Written = append(s.Written, path)
}

// ExportAll writes every selected output into dir, creating it if needed.
// Per-cell files are named after the cell ("B2_shapes.csv", "B2_blob.svg");
// aggregates keep fixed names. The returned summary lists written and failed
// paths; only an unusable output directory ends the run early.
func (e *Exporter) ExportAll(dir string, formats Formats) ExportSummary {
	log := logging.Logger()
	var sum ExportSummary

	if err := os.MkdirAll(dir, 0o755); err != nil {
		sum.record(log, dir, err)
		return sum
	}

	var gen *gcode.Generator
	if formats.GCode {
		gen = gcode.New(e.Settings)
	}

	for _, tile := range e.Tiles {
		blob := e.blobFor(tile.CellIndex)
		if formats.CSV {
			p := filepath.Join(dir, tile.Name+"_shapes.csv")
			sum.record(log, p, e.writeCellCSV(p, tile))
		}
		if formats.SVG {
			p := filepath.Join(dir, tile.Name+"_blob.svg")
			sum.record(log, p, e.writeCellSVG(p, tile, blob))
		}
		if formats.DXF {
			p := filepath.Join(dir, tile.Name+"_blob.dxf")
			sum.record(log, p, e.writeCellDXF(p, tile, blob))
		}
		if formats.PNG {
			p := filepath.Join(dir, tile.Name+"_box.png")
			sum.record(log, p, e.writeCellPNG(p, tile))
		}
		if formats.GCode {
			p := filepath.Join(dir, tile.Name+".gcode")
			code := gen.GenerateTile(tile, e.fiducialsFor(tile, blob))
			sum.record(log, p, os.WriteFile(p, []byte(code), 0o644))
		}
	}

	if formats.CSV {
		p := filepath.Join(dir, "all_polygons_general.csv")
		sum.record(log, p, e.writePolygonSummary(p))
		p = filepath.Join(dir, "color_area_summary.csv")
		sum.record(log, p, e.writeColorSummary(p))
	}
	if formats.Excel {
		p := filepath.Join(dir, "shape_report_general.xlsx")
		sum.record(log, p, e.writeGeneralReport(p))
		p = filepath.Join(dir, "shape_report_boxes.xlsx")
		sum.record(log, p, e.writeCellReports(p))
	}
	if formats.PDF {
		p := filepath.Join(dir, "cut_sheets.pdf")
		sum.record(log, p, e.writeCutSheets(p))
	}
	if formats.Labels {
		p := filepath.Join(dir, "cell_labels.pdf")
		sum.record(log, p, ExportLabels(p, BuildLabels(e.Tiles, e.Cls)))
	}

	log.Info("export complete",
		slog.String("dir", dir),
		slog.Int("tiles", len(e.Tiles)),
		slog.Int("written", len(sum.Written)),
		slog.Int("failed", len(sum.Failed)))
	return sum
}

// blobFor returns the traced contour for a cell, or nil when raster
// extraction was skipped or found nothing there. Blobs arrive sorted largest
// first within a cell, so the first hit is the main region.
func (e *Exporter) blobFor(cell int) *model.Blob {
	for i := range e.Blobs {
		if e.Blobs[i].CellIndex == cell {
			return &e.Blobs[i]
		}
	}
	return nil
}

// cellOutlines returns the closed rings to draw for one cell: the traced
// blob when available, otherwise the exact boolean tile parts.
func cellOutlines(tile model.CellTile, blob *model.Blob) (outers, holes []model.Outline) {
	if blob != nil && len(blob.Points) >= 3 {
		return []model.Outline{blob.Points}, nil
	}
	for _, part := range tile.Parts {
		if len(part.Outer) >= 3 {
			outers = append(outers, part.Outer)
		}
		for _, h := range part.Holes {
			if len(h) >= 3 {
				holes = append(holes, h)
			}
		}
	}
	return outers, holes
}

// cellColor returns the display colour for a cell's cut geometry.
func (e *Exporter) cellColor(tile model.CellTile, blob *model.Blob) model.Color {
	if blob != nil {
		return blob.Color
	}
	return e.Cls.ColorOf(tile.CellIndex)
}

// fiducialsFor returns the three alignment markers for a cell, preferring
// the ones captured with the traced blob.
func (e *Exporter) fiducialsFor(tile model.CellTile, blob *model.Blob) [3]model.Point2D {
	if blob != nil {
		return blob.Fiducials
	}
	return model.FiducialPoints(e.Grid.CellRect(tile.CellIndex))
}

// shapesInCell returns the shapes classified into a cell, in serial order.
func (e *Exporter) shapesInCell(cell int) []model.Shape {
	indices := e.Cls.ByCell[cell]
	shapes := make([]model.Shape, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(e.Shapes) {
			shapes = append(shapes, e.Shapes[i])
		}
	}
	sort.Slice(shapes, func(a, b int) bool { return shapes[a].Serial < shapes[b].Serial })
	return shapes
}
