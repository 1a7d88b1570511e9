package model

import "math"

// CutLengthSummary holds the total cut distance a machine travels to cut a
// set of tiles, used for run-length and consumable planning.
type CutLengthSummary struct {
	TotalLinearMM    float64 `json:"total_linear_mm"`     // Total cut length in mm (no waste)
	TotalLinearM     float64 `json:"total_linear_m"`      // Total cut length in meters (no waste)
	WastePercent     float64 `json:"waste_percent"`       // Waste percentage applied (lead-ins, reruns)
	TotalWithWasteMM float64 `json:"total_with_waste_mm"` // Total with waste in mm
	TotalWithWasteM  float64 `json:"total_with_waste_m"`  // Total with waste in meters
	CellCount        int     `json:"cell_count"`          // Number of tiles contributing cuts
	RingCount        int     `json:"ring_count"`          // Total closed rings to cut
	EstimatedMinutes float64 `json:"estimated_minutes"`   // At the given feed rate, 0 if unknown
}

// CalculateCutLength sums the perimeter of every tile ring (outer rings and
// holes) and applies a waste percentage. feedRate is mm/min; pass 0 to skip
// the time estimate.
func CalculateCutLength(tiles []CellTile, wastePercent, feedRate float64) CutLengthSummary {
	var totalMM float64
	var cellCount, ringCount int

	for _, t := range tiles {
		p := t.Perimeter()
		if p <= 0 {
			continue
		}
		totalMM += p
		cellCount++
		ringCount += t.RingCount()
	}

	wasteFactor := 1.0 + (wastePercent / 100.0)
	totalWithWaste := totalMM * wasteFactor

	summary := CutLengthSummary{
		TotalLinearMM:    totalMM,
		TotalLinearM:     totalMM / 1000.0,
		WastePercent:     wastePercent,
		TotalWithWasteMM: math.Ceil(totalWithWaste), // Round up
		TotalWithWasteM:  math.Ceil(totalWithWaste) / 1000.0,
		CellCount:        cellCount,
		RingCount:        ringCount,
	}
	if feedRate > 0 {
		summary.EstimatedMinutes = totalWithWaste / feedRate
	}
	return summary
}

// PerCellCutLength returns a per-cell breakdown of cut distance.
type PerCellCutLength struct {
	Name        string  `json:"name"`
	CellIndex   int     `json:"cell_index"`
	Rings       int     `json:"rings"`
	TotalLength float64 `json:"total_length"` // mm
}

// CalculatePerCellCutLength returns a breakdown of cut distance per tile.
func CalculatePerCellCutLength(tiles []CellTile) []PerCellCutLength {
	var results []PerCellCutLength
	for _, t := range tiles {
		p := t.Perimeter()
		if p <= 0 {
			continue
		}
		results = append(results, PerCellCutLength{
			Name:        t.Name,
			CellIndex:   t.CellIndex,
			Rings:       t.RingCount(),
			TotalLength: p,
		})
	}
	return results
}
