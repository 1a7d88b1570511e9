package model

import (
	"math"
	"testing"
	"time"
)

func TestGridIndexRoundTrip(t *testing.T) {
	g := DefaultGrid()
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			idx := g.CellIndex(row, col)
			r, c := g.RowCol(idx)
			if r != row || c != col {
				t.Errorf("index %d: got (%d,%d), want (%d,%d)", idx, r, c, row, col)
			}
		}
	}
}

func TestGridCellName(t *testing.T) {
	g := DefaultGrid()
	tests := []struct {
		index int
		want  string
	}{
		{0, "A1"},
		{1, "B1"},
		{5, "F1"},
		{6, "A2"},
		{7, "B2"},
		{35, "F6"},
	}
	for _, tt := range tests {
		if got := g.CellName(tt.index); got != tt.want {
			t.Errorf("CellName(%d) = %s, want %s", tt.index, got, tt.want)
		}
	}
}

func TestGridCellNameWideColumns(t *testing.T) {
	g := Grid{CellSize: 10, Cols: 30, Rows: 2}
	// Column 26 wraps to double letters.
	if got := g.CellName(g.CellIndex(0, 26)); got != "AA1" {
		t.Errorf("expected AA1, got %s", got)
	}
	if got := g.CellName(g.CellIndex(1, 27)); got != "AB2" {
		t.Errorf("expected AB2, got %s", got)
	}
}

func TestGridCellRectWithOrigin(t *testing.T) {
	g := Grid{CellSize: 250, Cols: 6, Rows: 6, Origin: Point2D{X: 100, Y: 50}}
	r := g.CellRect(7) // row 1, col 1
	if r.X != 350 || r.Y != 300 || r.W != 250 || r.H != 250 {
		t.Errorf("unexpected cell rect: %+v", r)
	}
}

func TestGridCellAt(t *testing.T) {
	g := DefaultGrid()
	tests := []struct {
		name string
		p    Point2D
		want int
	}{
		{"origin corner", Point2D{0, 0}, 0},
		{"inside B2", Point2D{300, 300}, 7},
		{"right of grid", Point2D{1501, 10}, Unassigned},
		{"above grid", Point2D{10, -1}, Unassigned},
		{"bottom-right inside", Point2D{1499, 1499}, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CellAt(tt.p); got != tt.want {
				t.Errorf("CellAt(%+v) = %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestGridBounds(t *testing.T) {
	g := Grid{CellSize: 100, Cols: 4, Rows: 3, Origin: Point2D{X: -50, Y: 20}}
	b := g.Bounds()
	if b.X != -50 || b.Y != 20 || b.W != 400 || b.H != 300 {
		t.Errorf("unexpected bounds: %+v", b)
	}
}

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 100, H: 100}
	tests := []struct {
		name     string
		other    Rect
		wantArea float64
	}{
		{"fully inside", Rect{25, 25, 50, 50}, 2500},
		{"overlapping corner", Rect{50, 50, 100, 100}, 2500},
		{"edge touching only", Rect{100, 0, 50, 50}, 0},
		{"disjoint", Rect{200, 200, 10, 10}, 0},
		{"identical", Rect{0, 0, 100, 100}, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Intersect(tt.other).Area()
			if math.Abs(got-tt.wantArea) > 1e-9 {
				t.Errorf("intersect area = %f, want %f", got, tt.wantArea)
			}
			if (tt.wantArea > 0) != a.Intersects(tt.other) {
				t.Errorf("Intersects disagrees with Intersect for %+v", tt.other)
			}
		})
	}
}

func TestOutlineAreaAndPerimeter(t *testing.T) {
	square := Outline{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if a := square.Area(); math.Abs(a-100) > 1e-9 {
		t.Errorf("square area = %f, want 100", a)
	}
	if p := square.Perimeter(); math.Abs(p-40) > 1e-9 {
		t.Errorf("square perimeter = %f, want 40", p)
	}
	degenerate := Outline{{0, 0}, {10, 0}}
	if a := degenerate.Area(); a != 0 {
		t.Errorf("two-point outline area = %f, want 0", a)
	}
}

func TestRectangleOutline(t *testing.T) {
	s := NewRectangle(1, 100, 200, 40, 30)
	o := s.Outline()
	if len(o) != 4 {
		t.Fatalf("expected 4 points, got %d", len(o))
	}
	if o[0].X != 100 || o[0].Y != 200 {
		t.Errorf("unexpected first corner: %+v", o[0])
	}
	if a := s.Area(); math.Abs(a-1200) > 1e-9 {
		t.Errorf("area = %f, want 1200", a)
	}
}

func TestRectangleRotationAboutCenter(t *testing.T) {
	s := NewRectangle(1, 0, 0, 100, 100)
	s.Rotation = 45
	bb := s.BoundingBox()
	want := 100 * math.Sqrt2
	if math.Abs(bb.W-want) > 1e-6 || math.Abs(bb.H-want) > 1e-6 {
		t.Errorf("rotated bbox = %f x %f, want %f", bb.W, bb.H, want)
	}
	// Rotation about the centre keeps the bbox centre fixed.
	c := bb.Center()
	if math.Abs(c.X-50) > 1e-6 || math.Abs(c.Y-50) > 1e-6 {
		t.Errorf("rotated centre moved to %+v", c)
	}
	if a := s.Area(); math.Abs(a-10000) > 1e-6 {
		t.Errorf("rotation changed area to %f", a)
	}
}

func TestTriangleOutline(t *testing.T) {
	s := NewTriangle(2, 50, 60, 100)
	o := s.Outline()
	if len(o) != 3 {
		t.Fatalf("expected 3 points, got %d", len(o))
	}
	if a := s.Area(); math.Abs(a-5000) > 1e-9 {
		t.Errorf("triangle area = %f, want 5000", a)
	}
	if s.Height != s.Width {
		t.Errorf("triangle height %f should mirror width %f", s.Height, s.Width)
	}
}

func TestTriangleRotationPreservesArea(t *testing.T) {
	s := NewTriangle(3, 10, 10, 90)
	base := s.Area()
	for _, deg := range []float64{30, 90, 123.4, 270} {
		s.Rotation = deg
		if a := s.Area(); math.Abs(a-base) > 1e-6 {
			t.Errorf("rotation %f changed area from %f to %f", deg, base, a)
		}
	}
}

func TestPolygonShape(t *testing.T) {
	verts := Outline{{0, 0}, {60, 0}, {60, 40}, {30, 55}, {0, 40}}
	s := NewPolygon(4, 500, 500, verts)
	if s.Width != 60 || s.Height != 55 {
		t.Errorf("derived size = %f x %f, want 60 x 55", s.Width, s.Height)
	}
	bb := s.BoundingBox()
	if bb.X != 500 || bb.Y != 500 {
		t.Errorf("polygon not anchored at position: %+v", bb)
	}
}

func TestParseShapeType(t *testing.T) {
	tests := []struct {
		in      string
		want    ShapeType
		wantErr bool
	}{
		{"Rectangle", ShapeRectangle, false},
		{"rect", ShapeRectangle, false},
		{"TRIANGLE", ShapeTriangle, false},
		{"tri", ShapeTriangle, false},
		{"Polygon", ShapePolygon, false},
		{"free_polygon", ShapePolygon, false},
		{"blob", ShapeRectangle, true},
	}
	for _, tt := range tests {
		got, err := ParseShapeType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShapeType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseShapeType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShapeTypeString(t *testing.T) {
	if ShapeRectangle.String() != "Rectangle" ||
		ShapeTriangle.String() != "Triangle" ||
		ShapePolygon.String() != "Polygon" {
		t.Error("unexpected shape type labels")
	}
}

func TestClassificationHelpers(t *testing.T) {
	c := Classification{
		Cells: []int{7, Unassigned, 7, 3},
		ByCell: map[int][]int{
			7: {0, 2},
			3: {3},
		},
		Colors: map[int]Color{
			7: RGB(255, 0, 0),
			3: RGB(0, 255, 0),
		},
	}
	if c.CellOf(0) != 7 || c.CellOf(1) != Unassigned {
		t.Error("CellOf returned wrong cells")
	}
	if c.CellOf(99) != Unassigned {
		t.Error("out-of-range shape index should be unassigned")
	}
	pop := c.PopulatedCells()
	if len(pop) != 2 || pop[0] != 3 || pop[1] != 7 {
		t.Errorf("populated cells = %v, want [3 7]", pop)
	}
	if c.AssignedCount() != 3 || c.UnassignedCount() != 1 {
		t.Errorf("counts = %d/%d, want 3/1", c.AssignedCount(), c.UnassignedCount())
	}
	if c.ColorOf(7) != RGB(255, 0, 0) {
		t.Error("wrong colour for cell 7")
	}
	if c.ColorOf(Unassigned) != White {
		t.Error("unassigned colour should be white")
	}
}

func TestFiducialPoints(t *testing.T) {
	pts := FiducialPoints(Rect{X: 0, Y: 0, W: 250, H: 250})
	want := [3]Point2D{{125, 62.5}, {62.5, 187.5}, {187.5, 187.5}}
	for i := range pts {
		if pts[i] != want[i] {
			t.Errorf("fiducial %d = %+v, want %+v", i, pts[i], want[i])
		}
	}
}

func TestCellTilePerimeterAndRings(t *testing.T) {
	tile := CellTile{
		Parts: []PolygonPart{
			{
				Outer: Outline{{0, 0}, {100, 0}, {100, 100}, {0, 100}},
				Holes: []Outline{{{40, 40}, {60, 40}, {60, 60}, {40, 60}}},
			},
			{Outer: Outline{{200, 0}, {250, 0}, {250, 50}, {200, 50}}},
		},
	}
	if tile.RingCount() != 3 {
		t.Errorf("ring count = %d, want 3", tile.RingCount())
	}
	want := 400.0 + 80.0 + 200.0
	if p := tile.Perimeter(); math.Abs(p-want) > 1e-9 {
		t.Errorf("perimeter = %f, want %f", p, want)
	}
}

func TestPolygonPartArea(t *testing.T) {
	part := PolygonPart{
		Outer: Outline{{0, 0}, {100, 0}, {100, 100}, {0, 100}},
		Holes: []Outline{{{10, 10}, {30, 10}, {30, 30}, {10, 30}}},
	}
	if a := part.Area(); math.Abs(a-(10000-400)) > 1e-9 {
		t.Errorf("part area = %f, want 9600", a)
	}
}

func TestNewProjectDefaults(t *testing.T) {
	p := NewProject()
	if p.Name != "Untitled" {
		t.Errorf("expected Untitled, got %s", p.Name)
	}
	if p.Grid.Rows != 6 || p.Grid.Cols != 6 || p.Grid.CellSize != 250 {
		t.Errorf("unexpected default grid: %+v", p.Grid)
	}
	if p.Settings.MinOverlapRatio != 0.25 {
		t.Errorf("unexpected default overlap ratio: %f", p.Settings.MinOverlapRatio)
	}
	if p.CreatedAt == "" || p.ModifiedAt != p.CreatedAt {
		t.Errorf("expected matching creation timestamps, got %q / %q", p.CreatedAt, p.ModifiedAt)
	}
	if _, err := time.Parse(time.RFC3339, p.CreatedAt); err != nil {
		t.Errorf("CreatedAt is not RFC3339: %v", err)
	}
}

func TestAllProfilesIncludesBuiltInAndCustom(t *testing.T) {
	CustomProfiles = nil

	builtInCount := len(GCodeProfiles)
	all := AllProfiles()
	if len(all) != builtInCount {
		t.Errorf("expected %d profiles with no custom, got %d", builtInCount, len(all))
	}

	CustomProfiles = []GCodeProfile{
		{Name: "Custom1", Description: "Test custom"},
	}
	defer func() { CustomProfiles = nil }()

	all = AllProfiles()
	if len(all) != builtInCount+1 {
		t.Errorf("expected %d profiles with 1 custom, got %d", builtInCount+1, len(all))
	}
}

func TestGetProfileFindsCustom(t *testing.T) {
	CustomProfiles = []GCodeProfile{
		{Name: "MyCustom", Description: "Custom profile", RapidMove: "G0", FeedMove: "G1"},
	}
	defer func() { CustomProfiles = nil }()

	p := GetProfile("MyCustom")
	if p.Name != "MyCustom" {
		t.Errorf("expected MyCustom, got %s", p.Name)
	}
}

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	p := GetProfile("NonExistent")
	if p.Name != "Generic" {
		t.Errorf("expected Generic fallback, got %s", p.Name)
	}
}

func TestAddCustomProfileRejectsBuiltInName(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	p := GCodeProfile{Name: "Grbl", Description: "Conflict"}
	if err := AddCustomProfile(p); err == nil {
		t.Fatal("expected error when adding profile with built-in name")
	}
}

func TestAddCustomProfileUpdatesExisting(t *testing.T) {
	CustomProfiles = nil
	defer func() { CustomProfiles = nil }()

	p1 := GCodeProfile{Name: "MyProfile", Description: "Version 1"}
	_ = AddCustomProfile(p1)

	p2 := GCodeProfile{Name: "MyProfile", Description: "Version 2"}
	_ = AddCustomProfile(p2)

	if len(CustomProfiles) != 1 {
		t.Fatalf("expected 1 custom profile after update, got %d", len(CustomProfiles))
	}
	if CustomProfiles[0].Description != "Version 2" {
		t.Errorf("expected updated description, got %s", CustomProfiles[0].Description)
	}
}

func TestRemoveCustomProfile(t *testing.T) {
	CustomProfiles = []GCodeProfile{
		{Name: "ToRemove", Description: "Remove me"},
	}
	defer func() { CustomProfiles = nil }()

	if err := RemoveCustomProfile("ToRemove"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(CustomProfiles) != 0 {
		t.Error("profile was not removed")
	}
	if err := RemoveCustomProfile("Grbl"); err == nil {
		t.Fatal("expected error when removing built-in profile")
	}
	if err := RemoveCustomProfile("NonExistent"); err == nil {
		t.Fatal("expected error when removing non-existent profile")
	}
}

func TestNewCustomProfile(t *testing.T) {
	p := NewCustomProfile("Test Custom")
	if p.Name != "Test Custom" {
		t.Errorf("expected name 'Test Custom', got %s", p.Name)
	}
	if p.IsBuiltIn {
		t.Error("custom profile should not be built-in")
	}
	// Should inherit Generic defaults
	if p.RapidMove != "G0" {
		t.Errorf("expected G0 rapid move from Generic, got %s", p.RapidMove)
	}
}

func TestBuiltInProfilesMarkedCorrectly(t *testing.T) {
	for _, p := range GCodeProfiles {
		if !p.IsBuiltIn {
			t.Errorf("built-in profile %s should have IsBuiltIn=true", p.Name)
		}
	}
}
