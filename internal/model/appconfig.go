package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default partitioning settings applied to new projects
	DefaultMinOverlapRatio float64 `json:"default_min_overlap_ratio"`
	DefaultRasterTolerance int     `json:"default_raster_tolerance"`
	DefaultMinBlobArea     float64 `json:"default_min_blob_area"`
	DefaultCellSize        float64 `json:"default_cell_size"`
	DefaultRows            int     `json:"default_rows"`
	DefaultCols            int     `json:"default_cols"`

	// Default CNC settings applied to new projects
	DefaultToolDiameter float64 `json:"default_tool_diameter"`
	DefaultFeedRate     float64 `json:"default_feed_rate"`
	DefaultPlungeRate   float64 `json:"default_plunge_rate"`
	DefaultSpindleSpeed int     `json:"default_spindle_speed"`
	DefaultSafeZ        float64 `json:"default_safe_z"`
	DefaultCutDepth     float64 `json:"default_cut_depth"`
	DefaultPassDepth    float64 `json:"default_pass_depth"`
	DefaultGCodeProfile string  `json:"default_gcode_profile"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings() and DefaultGrid().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	grid := DefaultGrid()
	return AppConfig{
		DefaultMinOverlapRatio: defaults.MinOverlapRatio,
		DefaultRasterTolerance: defaults.RasterTolerance,
		DefaultMinBlobArea:     defaults.MinBlobArea,
		DefaultCellSize:        grid.CellSize,
		DefaultRows:            grid.Rows,
		DefaultCols:            grid.Cols,
		DefaultToolDiameter:    defaults.ToolDiameter,
		DefaultFeedRate:        defaults.FeedRate,
		DefaultPlungeRate:      defaults.PlungeRate,
		DefaultSpindleSpeed:    defaults.SpindleSpeed,
		DefaultSafeZ:           defaults.SafeZ,
		DefaultCutDepth:        defaults.CutDepth,
		DefaultPassDepth:       defaults.PassDepth,
		DefaultGCodeProfile:    defaults.GCodeProfile,
		RecentProjects:         []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a CutSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *CutSettings) {
	s.MinOverlapRatio = c.DefaultMinOverlapRatio
	s.RasterTolerance = c.DefaultRasterTolerance
	s.MinBlobArea = c.DefaultMinBlobArea
	s.ToolDiameter = c.DefaultToolDiameter
	s.FeedRate = c.DefaultFeedRate
	s.PlungeRate = c.DefaultPlungeRate
	s.SpindleSpeed = c.DefaultSpindleSpeed
	s.SafeZ = c.DefaultSafeZ
	s.CutDepth = c.DefaultCutDepth
	s.PassDepth = c.DefaultPassDepth
	s.GCodeProfile = c.DefaultGCodeProfile
}

// ApplyToGrid copies the default grid dimensions from AppConfig into a Grid.
func (c AppConfig) ApplyToGrid(g *Grid) {
	if c.DefaultCellSize > 0 {
		g.CellSize = c.DefaultCellSize
	}
	if c.DefaultRows > 0 {
		g.Rows = c.DefaultRows
	}
	if c.DefaultCols > 0 {
		g.Cols = c.DefaultCols
	}
}
