package engine

import (
	"log/slog"
	"math"

	"github.com/mosaicfab/MosaicCut/internal/geometry"
	"github.com/mosaicfab/MosaicCut/internal/logging"
	"github.com/mosaicfab/MosaicCut/internal/model"
)

// Classifier assigns every shape to the grid cell holding the largest share
// of its area.
type Classifier struct {
	Settings model.CutSettings
}

func New(settings model.CutSettings) *Classifier {
	return &Classifier{Settings: settings}
}

// Classify runs one dominant-cell pass over the shapes. Each shape is
// assigned to the cell with the maximum exact overlap area, or left
// Unassigned when the best overlap covers less than MinOverlapRatio of the
// shape. The result also carries the display colour of each populated cell.
//
// Inputs are read-only for the duration of the pass; callers mutating the
// shape list concurrently must snapshot it first.
func (c *Classifier) Classify(grid model.Grid, shapes []model.Shape) model.Classification {
	cls := model.Classification{
		Cells:  make([]int, len(shapes)),
		ByCell: make(map[int][]int),
		Colors: make(map[int]model.Color),
	}

	log := logging.Logger()
	for i, s := range shapes {
		cell := c.classifyShape(grid, s, log)
		cls.Cells[i] = cell
		if cell == model.Unassigned {
			continue
		}
		cls.ByCell[cell] = append(cls.ByCell[cell], i)
		if _, ok := cls.Colors[cell]; !ok {
			cls.Colors[cell] = model.CellColor(cell)
		}
	}

	log.Info("classification complete",
		slog.Int("shapes", len(shapes)),
		slog.Int("assigned", cls.AssignedCount()),
		slog.Int("unassigned", cls.UnassignedCount()),
		slog.Int("populated_cells", len(cls.ByCell)))
	return cls
}

// classifyShape returns the dominant cell index for one shape, or Unassigned.
func (c *Classifier) classifyShape(grid model.Grid, s model.Shape, log *slog.Logger) int {
	outline := s.Outline()
	if len(outline) < 3 {
		log.Debug("skipping degenerate shape",
			slog.Int("serial", s.Serial), slog.Int("vertices", len(outline)))
		return model.Unassigned
	}
	shapeArea := outline.Area()
	if shapeArea <= 0 {
		log.Debug("skipping zero-area shape", slog.Int("serial", s.Serial))
		return model.Unassigned
	}

	minRow, minCol, maxRow, maxCol, ok := candidateCells(grid, outline.BoundingBox())
	if !ok {
		return model.Unassigned
	}

	best := model.Unassigned
	bestArea := 0.0
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := grid.CellIndex(row, col)
			a, err := geometry.IntersectionArea(outline, grid.CellRect(idx))
			if err != nil {
				log.Warn("cell overlap computation failed",
					slog.Int("serial", s.Serial),
					slog.String("cell", grid.CellName(idx)),
					slog.Any("error", err))
				continue
			}
			// Ascending row-major scan with a strict comparison keeps the
			// lowest cell index on exact ties.
			if a > bestArea {
				bestArea = a
				best = idx
			}
		}
	}

	if best == model.Unassigned || bestArea/shapeArea < c.Settings.MinOverlapRatio {
		return model.Unassigned
	}
	return best
}

// candidateCells clamps a shape's bounding box to the grid, returning the
// inclusive row and column range whose cells can overlap it. ok is false when
// the box lies entirely outside the grid.
func candidateCells(grid model.Grid, bb model.Rect) (minRow, minCol, maxRow, maxCol int, ok bool) {
	if grid.CellSize <= 0 || grid.Rows <= 0 || grid.Cols <= 0 {
		return 0, 0, 0, 0, false
	}
	minCol = int(math.Floor((bb.X - grid.Origin.X) / grid.CellSize))
	maxCol = int(math.Floor((bb.Right() - grid.Origin.X) / grid.CellSize))
	minRow = int(math.Floor((bb.Y - grid.Origin.Y) / grid.CellSize))
	maxRow = int(math.Floor((bb.Bottom() - grid.Origin.Y) / grid.CellSize))
	if maxCol < 0 || maxRow < 0 || minCol >= grid.Cols || minRow >= grid.Rows {
		return 0, 0, 0, 0, false
	}
	return clampInt(minRow, 0, grid.Rows-1), clampInt(minCol, 0, grid.Cols-1),
		clampInt(maxRow, 0, grid.Rows-1), clampInt(maxCol, 0, grid.Cols-1), true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
