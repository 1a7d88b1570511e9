package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/mosaicfab/MosaicCut/internal/engine"
	"github.com/mosaicfab/MosaicCut/internal/model"
)

func defaultTestSettings() model.CutSettings {
	return model.DefaultSettings()
}

func TestColorRangeClampsAtChannelBounds(t *testing.T) {
	lo, hi := colorRange(model.RGB(255, 0, 0), 15)

	assert.Equal(t, 0.0, lo.Val1)   // B floor
	assert.Equal(t, 0.0, lo.Val2)   // G floor
	assert.Equal(t, 240.0, lo.Val3) // R
	assert.Equal(t, 15.0, hi.Val1)
	assert.Equal(t, 15.0, hi.Val2)
	assert.Equal(t, 255.0, hi.Val3) // R ceiling
}

func TestColorRangeMidChannel(t *testing.T) {
	lo, hi := colorRange(model.RGB(128, 64, 0), 15)

	assert.Equal(t, 0.0, lo.Val1)
	assert.Equal(t, 49.0, lo.Val2)
	assert.Equal(t, 113.0, lo.Val3)
	assert.Equal(t, 15.0, hi.Val1)
	assert.Equal(t, 79.0, hi.Val2)
	assert.Equal(t, 143.0, hi.Val3)
}

func TestToPixelRoundsToNearest(t *testing.T) {
	view := model.Rect{X: 100, Y: 50, W: 1500, H: 1500}

	p := toPixel(model.Point2D{X: 350.4, Y: 260.6}, view)
	assert.Equal(t, 250, p.X)
	assert.Equal(t, 211, p.Y)
}

func TestSerialOrderSortsAscending(t *testing.T) {
	shapes := []model.Shape{
		model.NewRectangle(3, 0, 0, 10, 10),
		model.NewRectangle(1, 0, 0, 10, 10),
		model.NewRectangle(2, 0, 0, 10, 10),
	}

	assert.Equal(t, []int{1, 2, 0}, serialOrder(shapes))
}

func TestRenderMatchesGridBounds(t *testing.T) {
	grid := model.DefaultGrid()
	scene := Render(grid, nil, model.Classification{})
	defer scene.Close()

	require.False(t, scene.Empty())
	assert.Equal(t, 1500, scene.Cols())
	assert.Equal(t, 1500, scene.Rows())
}

func TestRenderDegenerateGridReturnsEmptyMat(t *testing.T) {
	grid := model.Grid{Rows: 6, Cols: 6, CellSize: 0}
	scene := Render(grid, nil, model.Classification{})
	defer scene.Close()

	assert.True(t, scene.Empty())
}

func TestRenderCellRespectsMargin(t *testing.T) {
	grid := model.DefaultGrid()
	cls := model.Classification{
		Cells:  []int{7},
		ByCell: map[int][]int{7: {0}},
		Colors: map[int]model.Color{7: model.CellColor(7)},
	}
	shapes := []model.Shape{model.NewRectangle(1, 300, 300, 100, 100)}

	plate := RenderCell(grid, shapes, cls, 7, 20)
	defer plate.Close()

	require.False(t, plate.Empty())
	assert.Equal(t, 290, plate.Cols())
	assert.Equal(t, 290, plate.Rows())
}

func TestExtractEmptySceneReturnsNil(t *testing.T) {
	scene := gocv.NewMat()
	defer scene.Close()

	blobs := Extract(scene, model.DefaultGrid(), model.Classification{}, defaultTestSettings())
	assert.Nil(t, blobs)
}

func TestRenderExtractRoundTrip(t *testing.T) {
	grid := model.DefaultGrid()
	shapes := []model.Shape{
		model.NewRectangle(1, 50, 50, 100, 100),   // Inside A1
		model.NewRectangle(2, 300, 300, 100, 100), // Inside B2
	}
	cls := model.Classification{
		Cells: []int{0, 7},
		ByCell: map[int][]int{
			0: {0},
			7: {1},
		},
		Colors: map[int]model.Color{
			0: model.CellColor(0),
			7: model.CellColor(7),
		},
	}

	scene := Render(grid, shapes, cls)
	defer scene.Close()
	require.False(t, scene.Empty())

	blobs := Extract(scene, grid, cls, defaultTestSettings())
	require.Len(t, blobs, 2)

	assert.Equal(t, 0, blobs[0].CellIndex)
	assert.Equal(t, "A1", blobs[0].Name)
	assert.Equal(t, 7, blobs[1].CellIndex)
	assert.Equal(t, "B2", blobs[1].Name)

	for _, b := range blobs {
		cell := grid.CellRect(b.CellIndex)
		assert.Equal(t, model.FiducialPoints(cell), b.Fiducials)
		assert.GreaterOrEqual(t, b.PixelArea, defaultTestSettings().MinBlobArea)
		assert.GreaterOrEqual(t, len(b.Points), 3)
		for _, p := range b.Points {
			assert.True(t, cell.Expand(2).Contains(p),
				"blob point %v outside cell %s", p, b.Name)
		}
	}
}

// segmentDistance is the distance from p to the segment a-b.
func segmentDistance(p, a, b model.Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	t := 0.0
	if l2 := dx*dx + dy*dy; l2 > 0 {
		t = math.Max(0, math.Min(1, ((p.X-a.X)*dx+(p.Y-a.Y)*dy)/l2))
	}
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

func ringDistance(p model.Point2D, ring model.Outline) float64 {
	best := math.Inf(1)
	for i := range ring {
		if d := segmentDistance(p, ring[i], ring[(i+1)%len(ring)]); d < best {
			best = d
		}
	}
	return best
}

// hausdorff is the symmetric vertex-to-boundary Hausdorff distance between
// two closed rings.
func hausdorff(a, b model.Outline) float64 {
	var worst float64
	for _, p := range a {
		if d := ringDistance(p, b); d > worst {
			worst = d
		}
	}
	for _, p := range b {
		if d := ringDistance(p, a); d > worst {
			worst = d
		}
	}
	return worst
}

// For axis-aligned rectangles the traced contour and the boolean tile
// outline describe the same region, so the two extraction paths must agree
// to within a pixel at the 1:1 render scale.
func TestExtractAgreesWithTileOutline(t *testing.T) {
	grid := model.DefaultGrid()
	shapes := []model.Shape{
		model.NewRectangle(1, 50, 50, 100, 100),   // Inside A1
		model.NewRectangle(2, 300, 300, 100, 100), // Inside B2
	}
	cls := model.Classification{
		Cells: []int{0, 7},
		ByCell: map[int][]int{
			0: {0},
			7: {1},
		},
		Colors: map[int]model.Color{
			0: model.CellColor(0),
			7: model.CellColor(7),
		},
	}

	tiles := engine.BuildTiles(grid, shapes, cls)
	require.Len(t, tiles, 2)
	byCell := make(map[int]model.CellTile)
	for _, tile := range tiles {
		byCell[tile.CellIndex] = tile
	}

	scene := Render(grid, shapes, cls)
	defer scene.Close()
	require.False(t, scene.Empty())

	blobs := Extract(scene, grid, cls, defaultTestSettings())
	require.Len(t, blobs, 2)

	for _, b := range blobs {
		tile, ok := byCell[b.CellIndex]
		require.True(t, ok, "blob %s has no matching tile", b.Name)
		require.Len(t, tile.Parts, 1)

		d := hausdorff(b.Points, tile.Parts[0].Outer)
		assert.LessOrEqual(t, d, 1.0,
			"cell %s: contour deviates %.3f units from the tile outline", b.Name, d)
	}
}
