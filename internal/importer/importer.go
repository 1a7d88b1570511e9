// Package importer reads shape inventories from CSV, Excel, and DXF files.
// Tabular imports support automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mosaicfab/MosaicCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Shapes   []model.Shape
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// An index of -1 means the column is absent.
type ColumnMapping struct {
	Serial   int
	Type     int
	X        int
	Y        int
	Width    int
	Height   int
	Rotation int
	Frame    int
	Fill     int
	Filled   int
}

// headerAliases maps canonical column roles to their accepted header
// spellings (all lowercase).
var headerAliases = map[string][]string{
	"serial":   {"serial_number", "serial number", "serial", "number", "#"},
	"type":     {"shape_type", "shape type", "type", "shape", "kind"},
	"x":        {"x", "x_position", "x position", "xpos", "left"},
	"y":        {"y", "y_position", "y position", "ypos", "top"},
	"width":    {"width", "w", "size"},
	"height":   {"height", "h"},
	"rotation": {"rotation", "rotation_deg", "rot", "angle"},
	"frame":    {"frame_color", "frame color", "frame", "border_color", "border color", "border"},
	"fill":     {"fill_color", "fill color", "fill"},
	"filled":   {"is_filled", "is filled", "filled"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV
// delimiter. It tries comma, semicolon, tab, and pipe. The delimiter that
// produces the most consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the first row.
		// Only consider delimiters that produce more than 1 column.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column
// role. Returns the mapping and true if a header was detected, or the default
// positional mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Serial: -1, Type: -1, X: -1, Y: -1, Width: -1,
		Height: -1, Rotation: -1, Frame: -1, Fill: -1, Filled: -1,
	}
	slots := map[string]*int{
		"serial":   &mapping.Serial,
		"type":     &mapping.Type,
		"x":        &mapping.X,
		"y":        &mapping.Y,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"rotation": &mapping.Rotation,
		"frame":    &mapping.Frame,
		"fill":     &mapping.Fill,
		"filled":   &mapping.Filled,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if slot := slots[role]; *slot == -1 {
						*slot = i
					}
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping(), false
	}

	return mapping, true
}

// positionalMapping is the column order written by the CSV exporter:
// Serial, Type, X, Y, Width, Height, Rotation, Frame, Fill, Filled.
func positionalMapping() ColumnMapping {
	return ColumnMapping{
		Serial: 0, Type: 1, X: 2, Y: 3, Width: 4,
		Height: 5, Rotation: 6, Frame: 7, Fill: 8, Filled: 9,
	}
}

// parseFilled reports whether a fill flag cell means "filled". Accepted true
// spellings follow the inventory format; anything else is false.
func parseFilled(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Shape from a row using the given column mapping.
// Returns the shape, an error message that invalidates the row, and any
// warnings for values that fell back to a default.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, shapeCount int) (model.Shape, string, []string) {
	var warnings []string

	serial := shapeCount + 1
	if serialStr := getCell(row, mapping.Serial); serialStr != "" {
		n, err := strconv.Atoi(serialStr)
		if err != nil {
			return model.Shape{}, fmt.Sprintf("%s: Invalid serial number '%s'", rowLabel, serialStr), nil
		}
		serial = n
	}

	shapeType := model.ShapeRectangle
	if typeStr := getCell(row, mapping.Type); typeStr != "" {
		st, err := model.ParseShapeType(typeStr)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown shape type '%s', defaulting to Rectangle", rowLabel, typeStr))
		} else {
			shapeType = st
		}
	}

	x, errMsg := parseRequiredFloat(row, mapping.X, "X", rowLabel)
	if errMsg != "" {
		return model.Shape{}, errMsg, nil
	}
	y, errMsg := parseRequiredFloat(row, mapping.Y, "Y", rowLabel)
	if errMsg != "" {
		return model.Shape{}, errMsg, nil
	}
	width, errMsg := parseRequiredFloat(row, mapping.Width, "Width", rowLabel)
	if errMsg != "" {
		return model.Shape{}, errMsg, nil
	}
	if width <= 0 {
		return model.Shape{}, fmt.Sprintf("%s: Width must be positive", rowLabel), nil
	}

	height := width
	if heightStr := getCell(row, mapping.Height); heightStr != "" {
		h, err := strconv.ParseFloat(heightStr, 64)
		if err != nil {
			return model.Shape{}, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr), nil
		}
		if h <= 0 {
			return model.Shape{}, fmt.Sprintf("%s: Height must be positive", rowLabel), nil
		}
		height = h
	}

	rotation := 0.0
	if rotStr := getCell(row, mapping.Rotation); rotStr != "" {
		r, err := strconv.ParseFloat(rotStr, 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: Invalid rotation '%s', defaulting to 0", rowLabel, rotStr))
		} else {
			rotation = r
		}
	}

	var shape model.Shape
	switch shapeType {
	case model.ShapeTriangle:
		shape = model.NewTriangle(serial, x, y, width)
	case model.ShapePolygon:
		// Inventory rows carry no vertex list, so a polygon row degrades to
		// its bounding rectangle.
		verts := model.Outline{{X: 0, Y: 0}, {X: width, Y: 0}, {X: width, Y: height}, {X: 0, Y: height}}
		shape = model.NewPolygon(serial, x, y, verts)
		warnings = append(warnings, fmt.Sprintf("%s: Polygon rows have no vertex data, using the bounding rectangle", rowLabel))
	default:
		shape = model.NewRectangle(serial, x, y, width, height)
	}
	shape.Rotation = rotation

	if frame := getCell(row, mapping.Frame); frame != "" {
		if _, err := model.ParseHexColor(frame); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: Invalid frame color '%s', using default", rowLabel, frame))
		} else {
			shape.FrameColor = frame
		}
	}
	if fill := getCell(row, mapping.Fill); fill != "" {
		if _, err := model.ParseHexColor(fill); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: Invalid fill color '%s', ignoring", rowLabel, fill))
		} else {
			shape.FillColor = fill
		}
	}
	shape.Filled = parseFilled(getCell(row, mapping.Filled))

	return shape, "", warnings
}

// parseRequiredFloat reads one mandatory numeric cell.
func parseRequiredFloat(row []string, idx int, name, rowLabel string) (float64, string) {
	str := getCell(row, idx)
	if str == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, name)
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, name, str)
	}
	return val, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports shapes from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	result = importFromRows(records, "Line", result.Warnings)
	return result
}

// ImportCSVFromReader imports shapes from a CSV reader with a specific
// delimiter. This is useful for testing or when the delimiter is already
// known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports shapes from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into shapes.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		// Validate that required columns were found
		missing := []string{}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No header: the X column of a positional row must be numeric. If it
		// is not, the first row is an unrecognized header and gets skipped.
		if len(rows[0]) >= 3 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][2]), 64); err != nil {
				startRow = 1
				result.Warnings = append(result.Warnings, "Detected header row, skipping")
			}
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		shape, errMsg, warnings := parseRow(row, mapping, rowLabel, len(result.Shapes))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)

		result.Shapes = append(result.Shapes, shape)
	}

	return result
}
