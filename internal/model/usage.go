package model

import "sort"

// PlateUsage describes how much of a cell's stock plate one tile consumes.
// The plate is the cell rectangle plus the preview margin on every side, the
// same blank the preview raster shows.
type PlateUsage struct {
	CellIndex          int     `json:"cell_index"`
	Name               string  `json:"name"`
	PlateArea          float64 `json:"plate_area"`          // Blank area (sq mm)
	TileArea           float64 `json:"tile_area"`           // Material kept (sq mm)
	RemnantArea        float64 `json:"remnant_area"`        // Material removed (sq mm)
	UtilizationPercent float64 `json:"utilization_percent"` // TileArea / PlateArea * 100
	Reusable           bool    `json:"reusable"`            // Remnant big enough to keep
}

// MinRemnantArea is the minimum leftover area (sq mm) worth keeping for reuse.
const MinRemnantArea = 10000.0

// CollectPlateUsage computes per-cell plate utilization for a set of tiles,
// sorted worst-first so wasteful cells surface at the top of reports.
func CollectPlateUsage(tiles []CellTile, grid Grid, settings CutSettings) []PlateUsage {
	usages := make([]PlateUsage, 0, len(tiles))
	for _, t := range tiles {
		plate := grid.CellRect(t.CellIndex).Expand(settings.PNGMargin)
		plateArea := plate.Area()
		remnant := plateArea - t.Area
		if remnant < 0 {
			// Owned shapes can stick out past the blank; clamp rather than
			// report negative waste.
			remnant = 0
		}
		u := PlateUsage{
			CellIndex:   t.CellIndex,
			Name:        t.Name,
			PlateArea:   plateArea,
			TileArea:    t.Area,
			RemnantArea: remnant,
			Reusable:    remnant >= MinRemnantArea,
		}
		if plateArea > 0 {
			u.UtilizationPercent = t.Area / plateArea * 100.0
		}
		usages = append(usages, u)
	}

	sort.Slice(usages, func(i, j int) bool {
		if usages[i].UtilizationPercent != usages[j].UtilizationPercent {
			return usages[i].UtilizationPercent < usages[j].UtilizationPercent
		}
		return usages[i].CellIndex < usages[j].CellIndex
	})
	return usages
}

// AverageUtilization returns the mean utilization percentage, 0 for no tiles.
func AverageUtilization(usages []PlateUsage) float64 {
	if len(usages) == 0 {
		return 0
	}
	var sum float64
	for _, u := range usages {
		sum += u.UtilizationPercent
	}
	return sum / float64(len(usages))
}
