package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// buildTestExporter assembles a small two-cell layout: A1 with two filled
// rectangles and a traced blob, B2 with an unfilled triangle and a tile that
// carries a hole but no blob, so exports exercise the fallback path.
func buildTestExporter() *Exporter {
	grid := model.Grid{CellSize: 250, Cols: 6, Rows: 6}

	shapes := []model.Shape{
		filledRect(1, 50, 50, 100, 80, "#FF0000"),
		filledRect(2, 60, 150, 100, 60, "#00FF00"),
		model.NewTriangle(3, 300, 300, 125),
	}
	cls := model.Classification{
		Cells:  []int{0, 0, 7},
		ByCell: map[int][]int{0: {0, 1}, 7: {2}},
		Colors: map[int]model.Color{0: model.CellColor(0), 7: model.CellColor(7)},
	}
	tiles := []model.CellTile{
		{
			CellIndex: 0,
			Name:      "A1",
			Parts: []model.PolygonPart{
				{Outer: model.Outline{{X: 0, Y: 0}, {X: 250, Y: 0}, {X: 250, Y: 250}, {X: 0, Y: 250}}},
			},
			UnifiedSerials: []int{1, 2},
			Area:           62500,
		},
		{
			CellIndex: 7,
			Name:      "B2",
			Parts: []model.PolygonPart{
				{
					Outer: model.Outline{{X: 250, Y: 250}, {X: 500, Y: 250}, {X: 500, Y: 500}, {X: 250, Y: 500}},
					Holes: []model.Outline{{{X: 300, Y: 300}, {X: 350, Y: 300}, {X: 350, Y: 350}, {X: 300, Y: 350}}},
				},
			},
			UnifiedSerials: []int{3},
			Area:           60000,
		},
	}
	blobs := []model.Blob{
		{
			CellIndex: 0,
			Name:      "A1",
			Color:     model.CellColor(0),
			Points:    model.Outline{{X: 0, Y: 0}, {X: 250, Y: 0}, {X: 250, Y: 250}, {X: 0, Y: 250}},
			Fiducials: model.FiducialPoints(grid.CellRect(0)),
			PixelArea: 62500,
		},
	}

	return &Exporter{
		Name:     "Test Mosaic",
		Grid:     grid,
		Shapes:   shapes,
		Cls:      cls,
		Tiles:    tiles,
		Blobs:    blobs,
		Settings: model.DefaultSettings(),
	}
}

func filledRect(serial int, x, y, w, h float64, fill string) model.Shape {
	s := model.NewRectangle(serial, x, y, w, h)
	s.FillColor = fill
	s.Filled = true
	return s
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    Formats
		wantErr bool
	}{
		{"csv,svg", Formats{CSV: true, SVG: true}, false},
		{"all", AllFormats(), false},
		{" xlsx , gcode ", Formats{Excel: true, GCode: true}, false},
		{"excel", Formats{Excel: true}, false},
		{"nc", Formats{GCode: true}, false},
		{"CSV,PDF,labels", Formats{CSV: true, PDF: true, Labels: true}, false},
		{"", Formats{}, false},
		{"csv,,png", Formats{CSV: true, PNG: true}, false},
		{"bogus", Formats{}, true},
		{"csv,stl", Formats{}, true},
	}
	for _, tt := range tests {
		got, err := ParseFormats(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormats(%q): expected error, got none", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormats(%q) returned error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormats(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestExportAll_WritesSelectedFormats(t *testing.T) {
	dir := t.TempDir()
	e := buildTestExporter()

	sum := e.ExportAll(dir, Formats{CSV: true, SVG: true, DXF: true, GCode: true})

	if len(sum.Failed) != 0 {
		t.Fatalf("unexpected failures: %+v", sum.Failed)
	}

	wantFiles := []string{
		"A1_shapes.csv", "B2_shapes.csv",
		"A1_blob.svg", "B2_blob.svg",
		"A1_blob.dxf", "B2_blob.dxf",
		"A1.gcode", "B2.gcode",
		"all_polygons_general.csv", "color_area_summary.csv",
	}
	if len(sum.Written) != len(wantFiles) {
		t.Errorf("wrote %d files, want %d: %v", len(sum.Written), len(wantFiles), sum.Written)
	}
	for _, name := range wantFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing output %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("output %s is empty", name)
		}
	}
}

func TestExportAll_SkipsUnselectedFormats(t *testing.T) {
	dir := t.TempDir()
	e := buildTestExporter()

	sum := e.ExportAll(dir, Formats{CSV: true})

	for _, p := range sum.Written {
		ext := filepath.Ext(p)
		if ext != ".csv" {
			t.Errorf("unexpected output for CSV-only run: %s", p)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "A1_blob.svg")); !os.IsNotExist(err) {
		t.Error("SVG written despite not being selected")
	}
}

func TestExportAll_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	e := buildTestExporter()

	// A directory squatting on A1's path makes that one file unwritable.
	if err := os.Mkdir(filepath.Join(dir, "A1_shapes.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	sum := e.ExportAll(dir, Formats{CSV: true})

	if len(sum.Failed) != 1 {
		t.Fatalf("expected exactly 1 failure, got %d: %+v", len(sum.Failed), sum.Failed)
	}
	if filepath.Base(sum.Failed[0].Path) != "A1_shapes.csv" {
		t.Errorf("failed path = %s, want A1_shapes.csv", sum.Failed[0].Path)
	}

	// The rest of the batch still lands.
	for _, name := range []string{"B2_shapes.csv", "all_polygons_general.csv", "color_area_summary.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s after isolated failure: %v", name, err)
		}
	}
}

func TestExportAll_UnusableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not_a_dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	e := buildTestExporter()
	sum := e.ExportAll(filepath.Join(blocker, "out"), Formats{CSV: true})

	if len(sum.Written) != 0 {
		t.Errorf("expected no writes, got %v", sum.Written)
	}
	if len(sum.Failed) != 1 {
		t.Errorf("expected 1 failure for the directory, got %d", len(sum.Failed))
	}
}

func TestBlobFor(t *testing.T) {
	e := buildTestExporter()

	if blob := e.blobFor(0); blob == nil || blob.Name != "A1" {
		t.Errorf("blobFor(0) = %+v, want the A1 blob", blob)
	}
	if blob := e.blobFor(7); blob != nil {
		t.Errorf("blobFor(7) = %+v, want nil", blob)
	}
}

func TestCellOutlines_FallsBackToTileParts(t *testing.T) {
	e := buildTestExporter()

	outers, holes := cellOutlines(e.Tiles[1], nil)
	if len(outers) != 1 || len(holes) != 1 {
		t.Fatalf("expected 1 outer and 1 hole from tile parts, got %d/%d", len(outers), len(holes))
	}

	outers, holes = cellOutlines(e.Tiles[0], e.blobFor(0))
	if len(outers) != 1 || len(holes) != 0 {
		t.Fatalf("expected the blob ring only, got %d/%d", len(outers), len(holes))
	}
}

func TestShapesInCell_SerialOrder(t *testing.T) {
	e := buildTestExporter()
	// Reverse the classification order; output must still be serial-sorted.
	e.Cls.ByCell[0] = []int{1, 0}

	shapes := e.shapesInCell(0)
	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(shapes))
	}
	if shapes[0].Serial != 1 || shapes[1].Serial != 2 {
		t.Errorf("serial order = %d,%d, want 1,2", shapes[0].Serial, shapes[1].Serial)
	}
}
