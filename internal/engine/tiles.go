package engine

import (
	"log/slog"

	"github.com/mosaicfab/MosaicCut/internal/geometry"
	"github.com/mosaicfab/MosaicCut/internal/logging"
	"github.com/mosaicfab/MosaicCut/internal/model"
)

// BuildTiles constructs the fabrication tile for every populated cell in
// classification order: the cell rectangle united with the shapes it owns,
// minus every shape owned by a different cell whose bounds reach into the
// rectangle. Shapes the classifier left Unassigned claim no material and are
// never subtracted.
func BuildTiles(grid model.Grid, shapes []model.Shape, cls model.Classification) []model.CellTile {
	log := logging.Logger()
	cells := cls.PopulatedCells()
	tiles := make([]model.CellTile, 0, len(cells))
	for _, cell := range cells {
		tiles = append(tiles, buildTile(grid, cell, shapes, cls, log))
	}
	log.Info("tiles built", slog.Int("cells", len(tiles)))
	return tiles
}

// buildTile folds one cell's boolean pipeline. A failed union or difference
// skips that one shape and leaves the accumulated polygon unchanged, so a
// single bad outline cannot abort the cell.
func buildTile(grid model.Grid, cell int, shapes []model.Shape, cls model.Classification, log *slog.Logger) model.CellTile {
	cellRect := grid.CellRect(cell)
	acc := geometry.RectPolygon(cellRect)

	tile := model.CellTile{
		CellIndex: cell,
		Name:      grid.CellName(cell),
	}

	for _, si := range cls.ByCell[cell] {
		s := shapes[si]
		outline := s.Outline()
		if len(outline) < 3 {
			continue
		}
		merged, err := geometry.Union(acc, geometry.Repair(geometry.ToPolygon(outline)))
		if err != nil {
			log.Warn("union failed, skipping shape",
				slog.Int("serial", s.Serial),
				slog.String("cell", tile.Name),
				slog.Any("error", err))
			continue
		}
		acc = merged
		tile.UnifiedSerials = append(tile.UnifiedSerials, s.Serial)
	}

	for i, s := range shapes {
		owner := cls.CellOf(i)
		if owner == cell || owner == model.Unassigned {
			continue
		}
		if !s.BoundingBox().Intersects(cellRect) {
			continue
		}
		outline := s.Outline()
		if len(outline) < 3 {
			continue
		}
		remain, err := geometry.Difference(acc, geometry.Repair(geometry.ToPolygon(outline)))
		if err != nil {
			log.Warn("difference failed, skipping neighbor shape",
				slog.Int("serial", s.Serial),
				slog.String("cell", tile.Name),
				slog.Any("error", err))
			continue
		}
		acc = remain
		tile.SubtractedSerials = append(tile.SubtractedSerials, s.Serial)
	}

	tile.Parts = geometry.FromPolygon(acc)
	tile.Area = geometry.PartsArea(tile.Parts)
	if len(tile.Parts) == 0 {
		log.Warn("tile emptied by neighbor subtraction", slog.String("cell", tile.Name))
	}
	return tile
}
