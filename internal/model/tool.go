package model

import "github.com/google/uuid"

// ToolProfile represents a reusable cutting tool configuration.
type ToolProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	ToolDiameter float64 `json:"tool_diameter"`
	FeedRate     float64 `json:"feed_rate"`
	PlungeRate   float64 `json:"plunge_rate"`
	SpindleSpeed int     `json:"spindle_speed"`
	SafeZ        float64 `json:"safe_z"`
	CutDepth     float64 `json:"cut_depth"`
	PassDepth    float64 `json:"pass_depth"`
}

// NewToolProfile creates a new ToolProfile with a generated ID.
func NewToolProfile(name string, diameter, feedRate, plungeRate float64, spindleSpeed int, safeZ, cutDepth, passDepth float64) ToolProfile {
	return ToolProfile{
		ID:           uuid.New().String()[:8],
		Name:         name,
		ToolDiameter: diameter,
		FeedRate:     feedRate,
		PlungeRate:   plungeRate,
		SpindleSpeed: spindleSpeed,
		SafeZ:        safeZ,
		CutDepth:     cutDepth,
		PassDepth:    passDepth,
	}
}

// ApplyToSettings copies this tool profile's parameters into the given CutSettings.
func (tp ToolProfile) ApplyToSettings(s *CutSettings) {
	s.ToolDiameter = tp.ToolDiameter
	s.FeedRate = tp.FeedRate
	s.PlungeRate = tp.PlungeRate
	s.SpindleSpeed = tp.SpindleSpeed
	s.SafeZ = tp.SafeZ
	s.CutDepth = tp.CutDepth
	s.PassDepth = tp.PassDepth
}

// FromSettings captures the current CNC parameters as a named tool profile.
func FromSettings(name string, s CutSettings) ToolProfile {
	return NewToolProfile(name, s.ToolDiameter, s.FeedRate, s.PlungeRate, s.SpindleSpeed, s.SafeZ, s.CutDepth, s.PassDepth)
}

// GridPreset represents a reusable grid layout definition.
type GridPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	CellSize float64 `json:"cell_size"`
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
}

// NewGridPreset creates a new GridPreset with a generated ID.
func NewGridPreset(name string, cellSize float64, cols, rows int) GridPreset {
	return GridPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		CellSize: cellSize,
		Cols:     cols,
		Rows:     rows,
	}
}

// ToGrid converts a GridPreset into a Grid anchored at the given origin.
func (gp GridPreset) ToGrid(origin Point2D) Grid {
	return Grid{
		CellSize: gp.CellSize,
		Cols:     gp.Cols,
		Rows:     gp.Rows,
		Origin:   origin,
	}
}

// Inventory holds the user's saved tool profiles and grid presets.
type Inventory struct {
	Tools []ToolProfile `json:"tools"`
	Grids []GridPreset  `json:"grids"`
}

// DefaultInventory returns an inventory populated with common defaults.
func DefaultInventory() Inventory {
	return Inventory{
		Tools: []ToolProfile{
			NewToolProfile("6mm End Mill", 6.0, 1500, 500, 18000, 5.0, 18.0, 6.0),
			NewToolProfile("3mm End Mill", 3.0, 1000, 300, 20000, 5.0, 12.0, 3.0),
			NewToolProfile("1/4\" End Mill (6.35mm)", 6.35, 1500, 500, 18000, 5.0, 18.0, 6.0),
			NewToolProfile("1/8\" End Mill (3.175mm)", 3.175, 800, 250, 22000, 5.0, 12.0, 3.0),
			NewToolProfile("V-Bit 60deg 6mm", 6.0, 800, 300, 18000, 5.0, 3.0, 1.0),
		},
		Grids: []GridPreset{
			NewGridPreset("Standard 6x6 (250mm cells)", 250, 6, 6),
			NewGridPreset("Fine 8x8 (150mm cells)", 150, 8, 8),
			NewGridPreset("Coarse 4x4 (400mm cells)", 400, 4, 4),
			NewGridPreset("Wide 8x4 (250mm cells)", 250, 8, 4),
			NewGridPreset("Sample 3x3 (100mm cells)", 100, 3, 3),
		},
	}
}

// FindToolByID returns a pointer to the tool with the given ID, or nil.
func (inv *Inventory) FindToolByID(id string) *ToolProfile {
	for i := range inv.Tools {
		if inv.Tools[i].ID == id {
			return &inv.Tools[i]
		}
	}
	return nil
}

// FindGridByID returns a pointer to the grid preset with the given ID, or nil.
func (inv *Inventory) FindGridByID(id string) *GridPreset {
	for i := range inv.Grids {
		if inv.Grids[i].ID == id {
			return &inv.Grids[i]
		}
	}
	return nil
}

// ToolNames returns the tool profile names in inventory order.
func (inv *Inventory) ToolNames() []string {
	names := make([]string, len(inv.Tools))
	for i, t := range inv.Tools {
		names[i] = t.Name
	}
	return names
}

// GridNames returns the grid preset names in inventory order.
func (inv *Inventory) GridNames() []string {
	names := make([]string, len(inv.Grids))
	for i, g := range inv.Grids {
		names[i] = g.Name
	}
	return names
}

// FindToolByName returns a pointer to the first tool with the given name, or nil.
func (inv *Inventory) FindToolByName(name string) *ToolProfile {
	for i := range inv.Tools {
		if inv.Tools[i].Name == name {
			return &inv.Tools[i]
		}
	}
	return nil
}

// FindGridByName returns a pointer to the first grid preset with the given name, or nil.
func (inv *Inventory) FindGridByName(name string) *GridPreset {
	for i := range inv.Grids {
		if inv.Grids[i].Name == name {
			return &inv.Grids[i]
		}
	}
	return nil
}
