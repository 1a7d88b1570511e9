// Command mosaiccut partitions a 2D shape layout onto a fabrication grid and
// writes per-cell cut files: it imports shapes, classifies them to dominant
// cells, builds boolean cell tiles, optionally traces raster contours, and
// exports CSV/SVG/DXF/PNG/Excel/PDF/label/GCode outputs.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mosaicfab/MosaicCut/internal/engine"
	"github.com/mosaicfab/MosaicCut/internal/export"
	"github.com/mosaicfab/MosaicCut/internal/gcode"
	"github.com/mosaicfab/MosaicCut/internal/importer"
	"github.com/mosaicfab/MosaicCut/internal/logging"
	"github.com/mosaicfab/MosaicCut/internal/model"
	"github.com/mosaicfab/MosaicCut/internal/project"
	"github.com/mosaicfab/MosaicCut/internal/raster"
)

func main() {
	in := flag.String("in", "", "Input shapes file (.csv, .xlsx, .dxf) or saved project (.mosaic)")
	out := flag.String("out", "", "Output directory for fabrication files")
	name := flag.String("name", "", "Job name (default: input file name)")
	projectOut := flag.String("project", "", "Write the assembled project to this .mosaic file")
	fromTemplate := flag.String("template", "", "Start from a saved layout template instead of -in")
	saveTemplate := flag.String("save-template", "", "Record the assembled layout as a reusable template")
	rows := flag.Int("rows", 6, "Grid rows")
	cols := flag.Int("cols", 6, "Grid columns")
	size := flag.Float64("size", 250, "Cell size in mm")
	originX := flag.Float64("origin-x", 0, "Grid origin X in mm")
	originY := flag.Float64("origin-y", 0, "Grid origin Y in mm")
	minOverlap := flag.Float64("min-overlap", 0.25, "Dominant-cell overlap threshold (0-1)")
	toolName := flag.String("tool", "", "Apply a tool profile from the inventory by name")
	gridName := flag.String("grid", "", "Apply a grid preset from the inventory by name")
	gcodeProfile := flag.String("gcode-profile", "", "GCode post-processor profile (Grbl, LinuxCNC, Marlin, Generic or custom)")
	useRaster := flag.Bool("raster", false, "Trace cell contours from a rendered scene")
	sheetW := flag.Float64("sheet-w", 0, "Stock sheet width in mm for the purchasing estimate")
	sheetH := flag.Float64("sheet-h", 0, "Stock sheet height in mm for the purchasing estimate")
	waste := flag.Float64("waste", 15, "Waste percentage for the purchasing estimate")
	formatsFlag := flag.String("formats", "all", "Comma-separated outputs: csv,svg,dxf,png,xlsx,pdf,labels,gcode or all")
	withLabels := flag.Bool("labels", false, "Include the QR label sheet")
	compare := flag.Bool("compare", false, "Print a scenario comparison table and exit")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")
	flag.Parse()

	if *in == "" && *fromTemplate == "" {
		fmt.Println("Usage: mosaiccut -in <shapes.csv|shapes.xlsx|drawing.dxf|project.mosaic> [-out <dir>] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *in != "" && *fromTemplate != "" {
		fmt.Fprintln(os.Stderr, "Use either -in or -template, not both")
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read config: %v\n", err)
		cfg = model.DefaultAppConfig()
	}
	if custom, err := project.LoadCustomProfilesFromDefault(); err == nil {
		model.CustomProfiles = custom
	}

	formats, err := export.ParseFormats(*formatsFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *withLabels {
		formats.Labels = true
	}

	var proj *model.Project
	if *in != "" {
		proj, err = buildProject(*in, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *in, err)
			os.Exit(1)
		}
	} else {
		proj, err = projectFromTemplate(*fromTemplate)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if *toolName != "" || *gridName != "" {
		if err := applyInventoryPresets(proj, *toolName, *gridName); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *gcodeProfile != "" {
		if found := model.GetProfile(*gcodeProfile); found.Name != *gcodeProfile {
			fmt.Fprintf(os.Stderr, "Unknown GCode profile %q, using %s. Available: %s\n",
				*gcodeProfile, found.Name, strings.Join(model.GetProfileNames(), ", "))
		}
		proj.Settings.GCodeProfile = *gcodeProfile
	}

	// Explicit flags win over config defaults and saved project values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rows":
			proj.Grid.Rows = *rows
		case "cols":
			proj.Grid.Cols = *cols
		case "size":
			proj.Grid.CellSize = *size
		case "origin-x":
			proj.Grid.Origin.X = *originX
		case "origin-y":
			proj.Grid.Origin.Y = *originY
		case "min-overlap":
			proj.Settings.MinOverlapRatio = *minOverlap
		case "name":
			proj.Name = *name
		}
	})

	if proj.Grid.Rows < 1 || proj.Grid.Cols < 1 || proj.Grid.CellSize <= 0 {
		fmt.Fprintf(os.Stderr, "Invalid grid: %dx%d cells of %.1f mm\n",
			proj.Grid.Cols, proj.Grid.Rows, proj.Grid.CellSize)
		os.Exit(1)
	}

	if *saveTemplate != "" {
		store, err := project.LoadDefaultTemplates()
		if err == nil {
			store.Add(model.NewProjectTemplate(*saveTemplate, "", proj.Grid, proj.Shapes, proj.Settings))
			err = project.SaveDefaultTemplates(store)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Template %q saved\n", *saveTemplate)
	}

	if *compare {
		printComparison(proj)
		return
	}

	fmt.Printf("=== Classifying %d shapes on %dx%d grid (%.0f mm cells) ===\n",
		len(proj.Shapes), proj.Grid.Cols, proj.Grid.Rows, proj.Grid.CellSize)
	cls := engine.New(proj.Settings).Classify(proj.Grid, proj.Shapes)
	fmt.Printf("Assigned: %d  Unassigned: %d  Populated cells: %d\n",
		cls.AssignedCount(), cls.UnassignedCount(), len(cls.ByCell))

	proj.Tiles = engine.BuildTiles(proj.Grid, proj.Shapes, cls)
	var tileArea float64
	for _, t := range proj.Tiles {
		tileArea += t.Area
	}
	fmt.Printf("Tiles: %d  Total tile area: %.0f mm2\n", len(proj.Tiles), tileArea)

	usage := model.CollectPlateUsage(proj.Tiles, proj.Grid, proj.Settings)
	reusable := 0
	for _, u := range usage {
		if u.Reusable {
			reusable++
		}
	}
	fmt.Printf("Average plate utilization: %.1f%%  Reusable remnants: %d\n",
		model.AverageUtilization(usage), reusable)

	if *sheetW > 0 && *sheetH > 0 {
		est := model.CalculateMaterialEstimate(proj.Tiles, *sheetW, *sheetH, *waste, 0)
		fmt.Printf("Stock sheets %gx%g mm: %d minimum, %d with %.0f%% waste (%.1f board feet)\n",
			*sheetW, *sheetH, est.SheetsNeededMin, est.SheetsWithWaste, est.WastePercent, est.TotalBoardFeet)
	}

	if formats.GCode && proj.Settings.WorkAreaWidth > 0 && proj.Settings.WorkAreaHeight > 0 {
		printWorkAreaWarnings(proj)
	}

	var blobs []model.Blob
	if *useRaster {
		fmt.Printf("\n=== Tracing cell contours ===\n")
		scene := raster.Render(proj.Grid, proj.Shapes, cls)
		blobs = raster.Extract(scene, proj.Grid, cls, proj.Settings)
		scene.Close()
		fmt.Printf("Traced %d contours\n", len(blobs))
	}

	if *projectOut != "" {
		if err := project.Save(*projectOut, proj); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save project: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Project saved to %s\n", *projectOut)
		project.AddRecentProject(&cfg, *projectOut)
		if err := project.SaveAppConfig(project.DefaultConfigPath(), cfg); err != nil {
			logging.Logger().Warn("could not update config", slog.Any("error", err))
		}
	}

	if *out == "" {
		if *projectOut == "" {
			fmt.Println("\nAnalysis complete. Use -out to write fabrication files.")
		}
		return
	}

	fmt.Printf("\n=== Exporting to %s ===\n", *out)
	exp := &export.Exporter{
		Name:     proj.Name,
		Grid:     proj.Grid,
		Shapes:   proj.Shapes,
		Cls:      cls,
		Tiles:    proj.Tiles,
		Blobs:    blobs,
		Settings: proj.Settings,
	}
	sum := exp.ExportAll(*out, formats)
	for _, f := range sum.Failed {
		fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", f.Path, f.Err)
	}
	fmt.Printf("Wrote %d files (%d failed)\n", len(sum.Written), len(sum.Failed))
	if len(sum.Written) == 0 && len(sum.Failed) > 0 {
		os.Exit(1)
	}
}

// buildProject assembles the working project from the input path: a saved
// .mosaic file is loaded as-is, anything else is imported as a shape list
// into a fresh project seeded with the user's config defaults.
func buildProject(path string, cfg model.AppConfig) (*model.Project, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == project.FileExtension {
		return project.Load(path)
	}

	p := model.NewProject()
	cfg.ApplyToSettings(&p.Settings)
	cfg.ApplyToGrid(&p.Grid)
	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var result importer.ImportResult
	switch ext {
	case ".csv":
		result = importer.ImportCSV(path)
	case ".xlsx", ".xls":
		result = importer.ImportExcel(path)
	case ".dxf":
		result = importer.ImportDXF(path)
	default:
		return nil, fmt.Errorf("unsupported input type %q", ext)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e)
	}
	if len(result.Shapes) == 0 {
		return nil, fmt.Errorf("no usable shapes in %s", path)
	}
	p.Shapes = result.Shapes
	return &p, nil
}

// projectFromTemplate builds a fresh project from a saved layout template.
func projectFromTemplate(name string) (*model.Project, error) {
	store, err := project.LoadDefaultTemplates()
	if err != nil {
		return nil, fmt.Errorf("could not load templates: %w", err)
	}
	tmpl := store.FindByName(name)
	if tmpl == nil {
		return nil, fmt.Errorf("unknown template %q; available: %s",
			name, strings.Join(store.Names(), ", "))
	}
	p := tmpl.ToProject(name)
	return &p, nil
}

// applyInventoryPresets looks up the named tool profile and grid preset in
// the user's inventory and applies them to the project. The grid keeps its
// current origin.
func applyInventoryPresets(p *model.Project, toolName, gridName string) error {
	inv, _, err := project.LoadOrCreateInventory()
	if err != nil {
		return fmt.Errorf("could not load inventory: %w", err)
	}
	if toolName != "" {
		tp := inv.FindToolByName(toolName)
		if tp == nil {
			return fmt.Errorf("unknown tool profile %q; available: %s",
				toolName, strings.Join(inv.ToolNames(), ", "))
		}
		tp.ApplyToSettings(&p.Settings)
	}
	if gridName != "" {
		gp := inv.FindGridByName(gridName)
		if gp == nil {
			return fmt.Errorf("unknown grid preset %q; available: %s",
				gridName, strings.Join(inv.GridNames(), ", "))
		}
		p.Grid = gp.ToGrid(p.Grid.Origin)
	}
	return nil
}

// printComparison classifies the same layout under the default scenario
// variants and tabulates the outcomes side by side.
func printComparison(p *model.Project) {
	fmt.Printf("=== Scenario comparison: %s ===\n", p.Name)
	results := engine.CompareScenarios(engine.BuildDefaultScenarios(p.Settings), p.Grid, p.Shapes)

	fmt.Printf("%-24s %9s %11s %6s %14s\n", "Scenario", "Assigned", "Unassigned", "Cells", "Tile area mm2")
	for _, r := range results {
		fmt.Printf("%-24s %9d %11d %6d %14.0f\n",
			r.Scenario.Name, r.Assigned, r.Unassigned, r.PopulatedCells, r.TotalTileArea)
	}
}

// printWorkAreaWarnings reports tiles whose toolpaths leave the machine
// envelope, in cell order.
func printWorkAreaWarnings(p *model.Project) {
	gen := gcode.New(p.Settings)
	offenders := gcode.CheckTiles(gen, p.Grid, p.Tiles)
	if len(offenders) == 0 {
		return
	}
	names := make([]string, 0, len(offenders))
	for n := range offenders {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		for _, w := range gcode.FormatWorkAreaWarnings(offenders[n], p.Settings) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", n, w)
		}
	}
}
