package model

import "fmt"

// CutSettings holds classification, extraction, export and CNC configuration.
type CutSettings struct {
	// Classification settings
	MinOverlapRatio float64 `json:"min_overlap_ratio"` // Below this share of shape area a shape stays unassigned

	// Raster extraction settings
	RasterTolerance int     `json:"raster_tolerance"` // Per-channel colour match tolerance (0-255)
	MinBlobArea     float64 `json:"min_blob_area"`    // Noise floor for traced contours, px^2

	// Export layout
	CSVMarginX     float64 `json:"csv_margin_x"`    // Cell-local origin offset, world units
	CSVMarginY     float64 `json:"csv_margin_y"`    // Cell-local origin offset, world units
	PNGMargin      float64 `json:"png_margin"`      // Preview raster margin around the cell, px
	SVGPadding     float64 `json:"svg_padding"`     // Canvas padding around the blob bounds, px
	FiducialRadius float64 `json:"fiducial_radius"` // Alignment marker radius, world units

	// CNC / GCode settings
	ToolDiameter   float64 `json:"tool_diameter"`   // End mill diameter in mm
	FeedRate       float64 `json:"feed_rate"`       // Cutting feed rate mm/min
	PlungeRate     float64 `json:"plunge_rate"`     // Plunge feed rate mm/min
	SpindleSpeed   int     `json:"spindle_speed"`   // RPM
	SafeZ          float64 `json:"safe_z"`          // Safe retract height mm
	CutDepth       float64 `json:"cut_depth"`       // Total material thickness mm
	PassDepth      float64 `json:"pass_depth"`      // Depth per pass mm
	DrillFiducials bool    `json:"drill_fiducials"` // Drill the three alignment markers per cell
	WorkAreaWidth  float64 `json:"work_area_width"` // Machine envelope mm, 0 = unchecked
	WorkAreaHeight float64 `json:"work_area_height"`

	// GCode post-processor profile
	GCodeProfile string `json:"gcode_profile"` // Name of the GCode profile to use
}

func DefaultSettings() CutSettings {
	return CutSettings{
		MinOverlapRatio: 0.25,
		RasterTolerance: 15,
		MinBlobArea:     100.0,
		CSVMarginX:      175.0,
		CSVMarginY:      135.0,
		PNGMargin:       20.0,
		SVGPadding:      10.0,
		FiducialRadius:  3.0,
		ToolDiameter:    3.175,
		FeedRate:        1200.0,
		PlungeRate:      400.0,
		SpindleSpeed:    18000,
		SafeZ:           5.0,
		CutDepth:        6.0,
		PassDepth:       2.0,
		DrillFiducials:  true,
		WorkAreaWidth:   0,
		WorkAreaHeight:  0,
		GCodeProfile:    "Generic",
	}
}

// GCodeProfile defines a post-processor configuration for different CNC controllers.
type GCodeProfile struct {
	Name        string `json:"name"`        // Profile name
	Description string `json:"description"` // Profile description
	IsBuiltIn   bool   `json:"is_built_in"` // True for the profiles shipped with the tool
	Units       string `json:"units"`       // "mm" or "inches"

	// Startup codes
	StartCode    []string `json:"start_code"`    // Commands at start of file
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%d")
	SpindleStop  string   `json:"spindle_stop"`  // Spindle off command
	HomeAll      string   `json:"home_all"`      // Home all axes command
	HomeXY       string   `json:"home_xy"`       // Home XY only command

	// Motion settings
	AbsoluteMode string `json:"absolute_mode"` // G90 or equivalent
	FeedMode     string `json:"feed_mode"`     // Feed rate mode
	RapidMove    string `json:"rapid_move"`    // G0 or equivalent
	FeedMove     string `json:"feed_move"`     // G1 or equivalent

	// End codes
	EndCode []string `json:"end_code"` // Commands at end of file

	// Comment style
	CommentPrefix string `json:"comment_prefix"` // Comment start (e.g., ";")
	CommentSuffix string `json:"comment_suffix"` // Comment end (if needed, e.g., ")" for Fanuc)

	// Number formatting
	DecimalPlaces int  `json:"decimal_places"` // Number of decimal places for coordinates
	LeadingZeros  bool `json:"leading_zeros"`  // Whether to pad with leading zeros
}

// Built-in GCode profiles
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "$H",
		HomeXY:        "$H",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
		LeadingZeros:  false,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		HomeXY:        "G28 X0 Y0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 4,
		LeadingZeros:  false,
	},
	{
		Name:          "Marlin",
		Description:   "Marlin firmware with laser/spindle support",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28",
		HomeXY:        "G28 X Y",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M84"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
		LeadingZeros:  false,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		IsBuiltIn:     true,
		Units:         "mm",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		HomeAll:       "G28 X0 Y0 Z0",
		HomeXY:        "G28 X0 Y0",
		AbsoluteMode:  "G90",
		FeedMode:      "G94",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M5", "M2"},
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
		LeadingZeros:  false,
	},
}

// CustomProfiles holds user-defined post-processor profiles loaded from disk.
var CustomProfiles []GCodeProfile

// AllProfiles returns built-in profiles followed by any custom ones.
func AllProfiles() []GCodeProfile {
	all := make([]GCodeProfile, 0, len(GCodeProfiles)+len(CustomProfiles))
	all = append(all, GCodeProfiles...)
	all = append(all, CustomProfiles...)
	return all
}

// GetProfile returns a GCode profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range AllProfiles() {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1] // Return Generic (last one)
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range AllProfiles() {
		names = append(names, p.Name)
	}
	return names
}

// NewCustomProfile creates a custom profile seeded with the Generic defaults.
func NewCustomProfile(name string) GCodeProfile {
	p := GetProfile("Generic")
	p.Name = name
	p.Description = ""
	p.IsBuiltIn = false
	return p
}

// AddCustomProfile registers a custom profile, replacing any existing custom
// profile with the same name. Built-in profile names are rejected.
func AddCustomProfile(p GCodeProfile) error {
	for _, b := range GCodeProfiles {
		if b.Name == p.Name {
			return fmt.Errorf("profile name %q is reserved by a built-in profile", p.Name)
		}
	}
	p.IsBuiltIn = false
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == p.Name {
			CustomProfiles[i] = p
			return nil
		}
	}
	CustomProfiles = append(CustomProfiles, p)
	return nil
}

// RemoveCustomProfile removes a custom profile by name.
func RemoveCustomProfile(name string) error {
	for _, b := range GCodeProfiles {
		if b.Name == name {
			return fmt.Errorf("cannot remove built-in profile %q", name)
		}
	}
	for i := range CustomProfiles {
		if CustomProfiles[i].Name == name {
			CustomProfiles = append(CustomProfiles[:i], CustomProfiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("custom profile %q not found", name)
}
