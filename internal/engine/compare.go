package engine

import (
	"fmt"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.CutSettings
}

// ComparisonResult holds the classification outcome and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Classification model.Classification
	Assigned       int
	Unassigned     int
	PopulatedCells int
	TotalTileArea  float64
}

// CompareScenarios classifies the same shapes under each scenario and
// returns the results in scenario order. This enables side-by-side
// comparison of different partitioning parameters before committing to a
// fabrication run.
func CompareScenarios(scenarios []ComparisonScenario, grid model.Grid, shapes []model.Shape) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		cls := New(scenario.Settings).Classify(grid, shapes)
		tiles := BuildTiles(grid, shapes, cls)

		var tileArea float64
		for _, t := range tiles {
			tileArea += t.Area
		}

		results = append(results, ComparisonResult{
			Scenario:       scenario,
			Classification: cls,
			Assigned:       cls.AssignedCount(),
			Unassigned:     cls.UnassignedCount(),
			PopulatedCells: len(cls.ByCell),
			TotalTileArea:  tileArea,
		})
	}

	return results
}

// BuildDefaultScenarios generates a set of comparison scenarios based on
// the current settings, varying the overlap threshold to show what-if
// alternatives.
func BuildDefaultScenarios(baseSettings model.CutSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	// Scenario: accept any overlap at all
	if baseSettings.MinOverlapRatio > 0 {
		anyOverlap := baseSettings
		anyOverlap.MinOverlapRatio = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Overlap Threshold",
			Settings: anyOverlap,
		})
	}

	// Scenario: looser threshold (half)
	if baseSettings.MinOverlapRatio > 0.05 {
		loose := baseSettings
		loose.MinOverlapRatio = baseSettings.MinOverlapRatio * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Overlap %.0f%% (half)", loose.MinOverlapRatio*100),
			Settings: loose,
		})
	}

	// Scenario: stricter threshold (double, capped at requiring a majority)
	strict := baseSettings
	strict.MinOverlapRatio = baseSettings.MinOverlapRatio * 2
	if strict.MinOverlapRatio > 0.5 {
		strict.MinOverlapRatio = 0.5
	}
	if strict.MinOverlapRatio > baseSettings.MinOverlapRatio {
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Overlap %.0f%% (strict)", strict.MinOverlapRatio*100),
			Settings: strict,
		})
	}

	return scenarios
}
