package model

import "math"

// MaterialEstimate holds the results of a stock purchasing calculation for a
// set of cell tiles.
type MaterialEstimate struct {
	TotalTileArea     float64 `json:"total_tile_area"`     // Total area of all tiles (sq mm)
	TotalBoardFeet    float64 `json:"total_board_feet"`    // Total area in board feet (1 bf = 144 sq in = 92903.04 sq mm)
	SheetArea         float64 `json:"sheet_area"`          // Area of one sheet (sq mm)
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Minimum sheets (ceiling of exact)
	SheetsWithWaste   int     `json:"sheets_with_waste"`   // Recommended sheets including waste factor
	WastePercent      float64 `json:"waste_percent"`       // Waste factor applied (e.g., 15 for 15%)
	EstimatedCost     float64 `json:"estimated_cost"`      // Total cost if pricing available
	PricePerSheet     float64 `json:"price_per_sheet"`     // Price used for estimation
}

// sqmmPerBoardFoot is the number of square millimeters in one board foot.
// 1 board foot = 12" x 12" x 1" (area) = 144 sq inches = 144 * 645.16 sq mm = 92903.04 sq mm.
const sqmmPerBoardFoot = 92903.04

// CalculateMaterialEstimate computes how many stock sheets to buy to cut the
// given tiles. Tiles are not nested; the estimate is area-based with a waste
// percentage on top.
func CalculateMaterialEstimate(tiles []CellTile, sheetWidth, sheetHeight, wastePercent, pricePerSheet float64) MaterialEstimate {
	var totalTileArea float64
	for _, t := range tiles {
		totalTileArea += t.Area
	}

	sheetArea := sheetWidth * sheetHeight
	if sheetArea <= 0 {
		return MaterialEstimate{
			TotalTileArea:  totalTileArea,
			TotalBoardFeet: totalTileArea / sqmmPerBoardFoot,
			WastePercent:   wastePercent,
		}
	}

	exactSheets := totalTileArea / sheetArea
	minSheets := int(math.Ceil(exactSheets))

	// Apply waste factor
	wasteFactor := 1.0 + (wastePercent / 100.0)
	sheetsWithWaste := int(math.Ceil(exactSheets * wasteFactor))
	if sheetsWithWaste < minSheets {
		sheetsWithWaste = minSheets
	}

	estimatedCost := float64(sheetsWithWaste) * pricePerSheet

	return MaterialEstimate{
		TotalTileArea:     totalTileArea,
		TotalBoardFeet:    totalTileArea / sqmmPerBoardFoot,
		SheetArea:         sheetArea,
		SheetsNeededExact: exactSheets,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   sheetsWithWaste,
		WastePercent:      wastePercent,
		EstimatedCost:     estimatedCost,
		PricePerSheet:     pricePerSheet,
	}
}
