package gcode

import (
	"strings"
	"testing"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

func TestCheckWorkArea_InsideEnvelope(t *testing.T) {
	settings := newTestSettings()
	settings.WorkAreaWidth = 300
	settings.WorkAreaHeight = 300

	code := `G0 X10.000 Y10.000
G1 X290.000 Y290.000 F1000.0
G0 X0.000 Y0.000
`
	if v := CheckWorkArea(code, settings); len(v) != 0 {
		t.Errorf("expected no violations inside the envelope, got %d", len(v))
	}
}

func TestCheckWorkArea_OutsideEnvelope(t *testing.T) {
	settings := newTestSettings()
	settings.WorkAreaWidth = 300
	settings.WorkAreaHeight = 300

	code := `G0 X10.000 Y10.000
G1 X350.000 Y10.000 F1000.0
G1 X10.000 Y-5.000 F1000.0
`
	violations := CheckWorkArea(code, settings)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(violations))
	}
	if violations[0].X != 350 || violations[0].Kind != KindFeed {
		t.Errorf("expected feed violation at X=350, got %v at X=%.1f",
			violations[0].Kind, violations[0].X)
	}
	if violations[1].Y != -5 {
		t.Errorf("expected violation at Y=-5, got Y=%.1f", violations[1].Y)
	}
}

func TestCheckWorkArea_DeduplicatesRepeatedPositions(t *testing.T) {
	settings := newTestSettings()
	settings.WorkAreaWidth = 100
	settings.WorkAreaHeight = 100

	// Three passes over the same out-of-envelope corner.
	code := `G0 X150.000 Y50.000
G0 X0.000 Y0.000
G0 X150.000 Y50.000
G0 X0.000 Y0.000
G0 X150.000 Y50.000
`
	violations := CheckWorkArea(code, settings)
	if len(violations) != 1 {
		t.Errorf("expected 1 deduplicated violation, got %d", len(violations))
	}
}

func TestCheckWorkArea_ZeroAreaDisablesCheck(t *testing.T) {
	settings := newTestSettings()
	settings.WorkAreaWidth = 0
	settings.WorkAreaHeight = 0

	code := "G0 X9999.000 Y9999.000\n"
	if v := CheckWorkArea(code, settings); v != nil {
		t.Errorf("expected nil with no work area configured, got %d violations", len(v))
	}
}

func TestCheckTiles_ReportsOnlyOffendingTiles(t *testing.T) {
	settings := newTestSettings()
	settings.WorkAreaWidth = 200
	settings.WorkAreaHeight = 200
	gen := New(settings)

	grid := model.DefaultGrid()
	// Sits clear of the envelope edge even after the outward tool offset.
	inside := model.CellTile{
		CellIndex: 0,
		Name:      "A1",
		Parts: []model.PolygonPart{
			{Outer: model.Outline{{X: 10, Y: 10}, {X: 110, Y: 10}, {X: 110, Y: 110}, {X: 10, Y: 110}}},
		},
		Area: 100 * 100,
	}
	outside := model.CellTile{
		CellIndex: 7,
		Name:      "B2",
		Parts: []model.PolygonPart{
			{Outer: model.Outline{{X: 250, Y: 250}, {X: 450, Y: 250}, {X: 450, Y: 450}, {X: 250, Y: 450}}},
		},
		Area: 200 * 200,
	}

	result := CheckTiles(gen, grid, []model.CellTile{inside, outside})
	if len(result) != 1 {
		t.Fatalf("expected 1 offending tile, got %d", len(result))
	}
	if _, ok := result["B2"]; !ok {
		t.Error("expected violations keyed by tile name B2")
	}
}

func TestFormatWorkAreaWarnings(t *testing.T) {
	settings := newTestSettings()
	settings.WorkAreaWidth = 300
	settings.WorkAreaHeight = 200

	violations := []WorkAreaViolation{
		{MoveIndex: 4, Kind: KindFeed, X: 350.0, Y: 10.0},
	}
	warnings := FormatWorkAreaWarnings(violations, settings)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0], "Move 5 (feed)") {
		t.Errorf("expected 1-based move index and kind, got %q", warnings[0])
	}
	if !strings.Contains(warnings[0], "300x200 mm") {
		t.Errorf("expected envelope dimensions in message, got %q", warnings[0])
	}
}
