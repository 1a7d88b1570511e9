package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(defaultTestSettings())

	require.GreaterOrEqual(t, len(scenarios), 3)
	assert.Equal(t, "Current Settings", scenarios[0].Name)

	names := make(map[string]bool)
	ratios := make(map[float64]bool)
	for _, s := range scenarios {
		names[s.Name] = true
		assert.False(t, ratios[s.Settings.MinOverlapRatio], "duplicate scenario ratio %f", s.Settings.MinOverlapRatio)
		ratios[s.Settings.MinOverlapRatio] = true
	}
	assert.True(t, names["No Overlap Threshold"])
}

func TestBuildDefaultScenariosZeroThreshold(t *testing.T) {
	base := defaultTestSettings()
	base.MinOverlapRatio = 0

	scenarios := BuildDefaultScenarios(base)

	// No looser variant exists below zero, and doubling zero adds nothing.
	require.Len(t, scenarios, 1)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
}

func TestCompareScenarios(t *testing.T) {
	grid := model.DefaultGrid()
	shapes := []model.Shape{
		model.NewRectangle(1, 550, 550, 100, 100), // fully inside cell 14
		model.NewRectangle(2, 210, 220, 100, 100), // 42% dominant in cell 7
		model.NewRectangle(3, -80, 100, 100, 100), // 20% inside the grid
	}

	loose := defaultTestSettings()
	loose.MinOverlapRatio = 0
	strict := defaultTestSettings()
	strict.MinOverlapRatio = 0.5

	results := CompareScenarios([]ComparisonScenario{
		{Name: "loose", Settings: loose},
		{Name: "default", Settings: defaultTestSettings()},
		{Name: "strict", Settings: strict},
	}, grid, shapes)

	require.Len(t, results, 3)

	assert.Equal(t, 3, results[0].Assigned)
	assert.Equal(t, 2, results[1].Assigned)
	assert.Equal(t, 1, results[2].Assigned)

	assert.Equal(t, 1, results[2].PopulatedCells)
	// Fewer assigned shapes cannot grow the combined tile area.
	assert.GreaterOrEqual(t, results[0].TotalTileArea, results[1].TotalTileArea)
	assert.GreaterOrEqual(t, results[1].TotalTileArea, results[2].TotalTileArea)
	assert.Greater(t, results[2].TotalTileArea, 0.0)
}
