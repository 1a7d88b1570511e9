package gcode

import (
	"strings"
	"testing"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// newTestSettings returns CutSettings suitable for testing with predictable output.
func newTestSettings() model.CutSettings {
	s := model.DefaultSettings()
	s.ToolDiameter = 6.0
	s.FeedRate = 1000.0
	s.PlungeRate = 300.0
	s.SpindleSpeed = 12000
	s.SafeZ = 5.0
	s.CutDepth = 6.0
	s.PassDepth = 6.0
	s.DrillFiducials = false
	s.GCodeProfile = "Generic"
	return s
}

// newTestTile is a 100x100 square tile with a 20x20 square hole in the middle.
func newTestTile() model.CellTile {
	return model.CellTile{
		CellIndex: 0,
		Name:      "A1",
		Parts: []model.PolygonPart{
			{
				Outer: model.Outline{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}},
				Holes: []model.Outline{
					{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}, {X: 40, Y: 60}},
				},
			},
		},
		Area: 100*100 - 20*20,
	}
}

func testFiducials() [3]model.Point2D {
	return model.FiducialPoints(model.Rect{X: 0, Y: 0, W: 100, H: 100})
}

func TestGenerateTile_HeaderAndFooter(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateTile(newTestTile(), testFiducials())

	if !strings.Contains(code, "Cell A1") {
		t.Error("expected header to name the cell")
	}
	if !strings.Contains(code, "G90") || !strings.Contains(code, "G21") {
		t.Error("expected Generic profile start codes G90/G21")
	}
	if !strings.Contains(code, "M3 S12000") {
		t.Error("expected spindle start with configured speed")
	}
	if !strings.Contains(code, "M5") {
		t.Error("expected spindle stop in footer")
	}
	if !strings.Contains(code, "=== Cell complete ===") {
		t.Error("expected completion comment in footer")
	}
	if strings.Contains(code, "[SafeZ]") {
		t.Error("expected [SafeZ] placeholder to be substituted")
	}
}

func TestGenerateTile_CutsHoleBeforeOuter(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateTile(newTestTile(), testFiducials())

	holeIdx := strings.Index(code, "Part 1 hole 1")
	outerIdx := strings.Index(code, "Part 1 outer")
	if holeIdx == -1 || outerIdx == -1 {
		t.Fatalf("expected both ring comments, hole at %d outer at %d", holeIdx, outerIdx)
	}
	if holeIdx > outerIdx {
		t.Error("expected hole to be cut before the outer ring")
	}
}

func TestGenerateTile_MultiPass(t *testing.T) {
	settings := newTestSettings()
	settings.CutDepth = 6.0
	settings.PassDepth = 2.5
	gen := New(settings)
	code := gen.GenerateTile(newTestTile(), testFiducials())

	// ceil(6.0 / 2.5) = 3 passes per ring, two rings.
	if got := strings.Count(code, "Pass 1/3"); got != 2 {
		t.Errorf("expected 2 first-pass comments, got %d", got)
	}
	if !strings.Contains(code, "Pass 3/3, depth=6.00mm") {
		t.Error("expected final pass clamped to the full cut depth")
	}
	if strings.Contains(code, "depth=7.50mm") {
		t.Error("expected no pass deeper than the cut depth")
	}
}

func TestGenerateTile_ClosesEachRing(t *testing.T) {
	settings := newTestSettings()
	settings.ToolDiameter = 0 // no offset, toolpath equals the ring
	gen := New(settings)
	code := gen.GenerateTile(newTestTile(), testFiducials())

	// The outer ring starts at its first vertex and must return to it. The
	// cutting feed is set once per pass and carries through the ring.
	first := "G0 X0.000 Y0.000"
	closing := "G1 X0.000 Y0.000\n"
	if !strings.Contains(code, first) {
		t.Fatalf("expected rapid to the outer ring's first vertex:\n%s", code)
	}
	if !strings.Contains(code, closing) {
		t.Error("expected a closing feed move back to the first vertex")
	}
	if !strings.Contains(code, "G1 X100.000 Y0.000 F1000.000") {
		t.Error("expected the first cutting move of the pass to carry the feed rate")
	}
	if strings.Contains(code, "G1 X100.000 Y100.000 F") {
		t.Error("expected later cutting moves to rely on the modal feed")
	}
}

func TestGenerateTile_FiducialDrills(t *testing.T) {
	settings := newTestSettings()
	settings.DrillFiducials = true
	gen := New(settings)
	code := gen.GenerateTile(newTestTile(), testFiducials())

	if !strings.Contains(code, "Fiducial drills") {
		t.Fatal("expected fiducial drill section")
	}
	for _, want := range []string{"Fiducial 1", "Fiducial 2", "Fiducial 3"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q drill cycle", want)
		}
	}
	// Fiducials of a 100-unit cell at (1/2,1/4), (1/4,3/4), (3/4,3/4).
	if !strings.Contains(code, "G0 X50.000 Y25.000") {
		t.Error("expected rapid to the first fiducial position")
	}
}

func TestGenerateTile_NoFiducialsWhenDisabled(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.GenerateTile(newTestTile(), testFiducials())

	if strings.Contains(code, "Fiducial") {
		t.Error("expected no fiducial section when drilling is disabled")
	}
}

func TestGenerateTile_SkipsDegenerateRing(t *testing.T) {
	tile := model.CellTile{
		CellIndex: 0,
		Name:      "A1",
		Parts: []model.PolygonPart{
			{Outer: model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}}},
		},
	}
	gen := New(newTestSettings())
	code := gen.GenerateTile(tile, testFiducials())

	if !strings.Contains(code, "WARNING") {
		t.Error("expected a warning comment for the degenerate ring")
	}
	if strings.Contains(code, "Pass 1/") {
		t.Error("expected no cutting passes for the degenerate ring")
	}
}

func TestGenerateAll_OneProgramPerTile(t *testing.T) {
	grid := model.DefaultGrid()
	tiles := []model.CellTile{newTestTile(), newTestTile()}
	tiles[1].CellIndex = 7
	tiles[1].Name = "B2"

	gen := New(newTestSettings())
	codes := gen.GenerateAll(grid, tiles)

	if len(codes) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(codes))
	}
	if !strings.Contains(codes[0], "Cell A1") || !strings.Contains(codes[1], "Cell B2") {
		t.Error("expected each program to name its own cell")
	}
}

func TestGenerateTile_ProfileFormatting(t *testing.T) {
	settings := newTestSettings()
	settings.GCodeProfile = "LinuxCNC" // 4 decimal places
	gen := New(settings)
	code := gen.GenerateTile(newTestTile(), testFiducials())

	if !strings.Contains(code, "Z5.0000") {
		t.Error("expected LinuxCNC profile to format with 4 decimals")
	}
	if !strings.Contains(code, "Profile: LinuxCNC") {
		t.Error("expected header to name the profile")
	}
}

func TestOffsetRing_OuterGrowsHoleShrinks(t *testing.T) {
	square := model.Outline{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

	grown := offsetRing(square, 3, false)
	if got := grown.Area(); got <= square.Area() {
		t.Errorf("outward offset should grow the ring: %.1f <= %.1f", got, square.Area())
	}

	shrunk := offsetRing(square, 3, true)
	if got := shrunk.Area(); got >= square.Area() {
		t.Errorf("inward offset should shrink the ring: %.1f >= %.1f", got, square.Area())
	}

	// Winding must not change which way is out.
	reversed := model.Outline{{X: 0, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 0}, {X: 0, Y: 0}}
	grownRev := offsetRing(reversed, 3, false)
	if got := grownRev.Area(); got <= square.Area() {
		t.Errorf("outward offset of reversed ring should still grow it: %.1f", got)
	}
}
