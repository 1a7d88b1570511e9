package gcode

import (
	"fmt"
	"math"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// WorkAreaViolation records one toolpath position outside the machine
// envelope.
type WorkAreaViolation struct {
	MoveIndex int      // Index into the parsed move list
	Kind      MoveKind // What the tool was doing when it left the envelope
	X, Y      float64  // The offending destination
}

// CheckWorkArea parses a generated program and reports every destination
// outside the [0, WorkAreaWidth] x [0, WorkAreaHeight] envelope. A zero
// work area dimension disables the check. Tiles keep their world coordinates
// in the program, so a layout placed far from the grid origin trips this
// before it trips a limit switch.
//
// Nearby repeats are collapsed: multiple passes over the same ring revisit
// the same positions, and one report per spot is enough.
func CheckWorkArea(program string, settings model.CutSettings) []WorkAreaViolation {
	if settings.WorkAreaWidth <= 0 || settings.WorkAreaHeight <= 0 {
		return nil
	}

	moves := Parse(program)
	seen := make(map[[2]int64]bool)
	var violations []WorkAreaViolation

	for i, m := range moves {
		if m.ToX >= 0 && m.ToX <= settings.WorkAreaWidth &&
			m.ToY >= 0 && m.ToY <= settings.WorkAreaHeight {
			continue
		}
		key := [2]int64{int64(math.Round(m.ToX * 10)), int64(math.Round(m.ToY * 10))}
		if seen[key] {
			continue
		}
		seen[key] = true
		violations = append(violations, WorkAreaViolation{
			MoveIndex: i,
			Kind:      m.Kind,
			X:         m.ToX,
			Y:         m.ToY,
		})
	}

	return violations
}

// CheckTiles runs the work-area check over every tile's program and returns
// the violations per tile name.
func CheckTiles(gen *Generator, grid model.Grid, tiles []model.CellTile) map[string][]WorkAreaViolation {
	out := make(map[string][]WorkAreaViolation)
	for _, tile := range tiles {
		fids := model.FiducialPoints(grid.CellRect(tile.CellIndex))
		if v := CheckWorkArea(gen.GenerateTile(tile, fids), gen.Settings); len(v) > 0 {
			out[tile.Name] = v
		}
	}
	return out
}

// FormatWorkAreaWarnings renders violations as operator-readable messages.
func FormatWorkAreaWarnings(violations []WorkAreaViolation, settings model.CutSettings) []string {
	var warnings []string
	for _, v := range violations {
		warnings = append(warnings, fmt.Sprintf(
			"Move %d (%s) reaches X%.1f Y%.1f, outside the %.0fx%.0f mm work area",
			v.MoveIndex+1, v.Kind, v.X, v.Y,
			settings.WorkAreaWidth, settings.WorkAreaHeight))
	}
	return warnings
}
