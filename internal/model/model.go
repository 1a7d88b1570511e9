package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ShapeType identifies the geometric kind of a shape.
type ShapeType int

const (
	ShapeRectangle ShapeType = iota // Axis-aligned rectangle before rotation
	ShapeTriangle                   // Right triangle with two equal legs
	ShapePolygon                    // Free-form polygon with explicit vertices
)

func (t ShapeType) String() string {
	switch t {
	case ShapeTriangle:
		return "Triangle"
	case ShapePolygon:
		return "Polygon"
	default:
		return "Rectangle"
	}
}

// ParseShapeType maps a type label (as used in inventory CSV files) to a ShapeType.
func ParseShapeType(s string) (ShapeType, error) {
	switch normalizeLabel(s) {
	case "rectangle", "rect", "square":
		return ShapeRectangle, nil
	case "triangle", "tri":
		return ShapeTriangle, nil
	case "polygon", "poly", "freepolygon":
		return ShapePolygon, nil
	}
	return ShapeRectangle, fmt.Errorf("unknown shape type %q", s)
}

func normalizeLabel(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '_' || r == '-':
			// strip separators
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// Point2D represents a 2D coordinate in world units (Y grows downward).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon ring as a sequence of 2D points.
// The ring is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the axis-aligned bounds of the outline.
func (o Outline) BoundingBox() Rect {
	if len(o) == 0 {
		return Rect{}
	}
	minX, minY := o[0].X, o[0].Y
	maxX, maxY := o[0].X, o[0].Y
	for _, p := range o[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Area returns the absolute shoelace area of the ring.
func (o Outline) Area() float64 {
	if len(o) < 3 {
		return 0
	}
	var sum float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// Centroid returns the vertex average of the ring.
func (o Outline) Centroid() Point2D {
	if len(o) == 0 {
		return Point2D{}
	}
	var cx, cy float64
	for _, p := range o {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(o))
	return Point2D{X: cx / n, Y: cy / n}
}

// Perimeter returns the closed length of the ring.
func (o Outline) Perimeter() float64 {
	if len(o) < 2 {
		return 0
	}
	var total float64
	for i, p := range o {
		q := o[(i+1)%len(o)]
		total += math.Hypot(q.X-p.X, q.Y-p.Y)
	}
	return total
}

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) Area() float64   { return r.W * r.H }

// Center returns the rectangle midpoint.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies inside the half-open rectangle.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Intersects reports whether two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Intersect returns the overlapping region, or a zero Rect when disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.Right(), o.Right())
	y2 := math.Min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Expand grows the rectangle by m on every side.
func (r Rect) Expand(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Corners returns the rectangle as a four-point outline (TL, TR, BR, BL).
func (r Rect) Corners() Outline {
	return Outline{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}

// DefaultFrameColor is the frame colour applied when an inventory row omits one.
const DefaultFrameColor = "#8B4513"

// Shape represents a single drawable piece of the mosaic. All variants share
// this one struct; Type selects which fields are meaningful. Vertices is used
// only by ShapePolygon and holds local, pre-transform coordinates.
type Shape struct {
	ID       string    `json:"id"`
	Serial   int       `json:"serial"` // Stable numbering used by exports
	Type     ShapeType `json:"type"`
	Position Point2D   `json:"position"` // World anchor of the local frame
	Width    float64   `json:"width"`    // Triangle: leg size (Height mirrors it)
	Height   float64   `json:"height"`
	Rotation float64   `json:"rotation"` // Degrees
	Vertices Outline   `json:"vertices,omitempty"`

	FrameColor string `json:"frame_color"`
	FillColor  string `json:"fill_color,omitempty"` // Empty = no fill recorded
	Filled     bool   `json:"filled"`
}

// NewRectangle creates a rectangle shape anchored at (x, y).
func NewRectangle(serial int, x, y, w, h float64) Shape {
	return Shape{
		ID:         uuid.New().String()[:8],
		Serial:     serial,
		Type:       ShapeRectangle,
		Position:   Point2D{X: x, Y: y},
		Width:      w,
		Height:     h,
		FrameColor: DefaultFrameColor,
	}
}

// NewTriangle creates a right triangle with legs of the given size, anchored
// at (x, y).
func NewTriangle(serial int, x, y, size float64) Shape {
	return Shape{
		ID:         uuid.New().String()[:8],
		Serial:     serial,
		Type:       ShapeTriangle,
		Position:   Point2D{X: x, Y: y},
		Width:      size,
		Height:     size,
		FrameColor: DefaultFrameColor,
	}
}

// NewPolygon creates a free-form polygon from local vertices anchored at (x, y).
func NewPolygon(serial int, x, y float64, vertices Outline) Shape {
	bb := vertices.BoundingBox()
	return Shape{
		ID:         uuid.New().String()[:8],
		Serial:     serial,
		Type:       ShapePolygon,
		Position:   Point2D{X: x, Y: y},
		Width:      bb.W,
		Height:     bb.H,
		Vertices:   vertices,
		FrameColor: DefaultFrameColor,
	}
}

// localVertices returns the shape outline in its local frame, before rotation.
func (s Shape) localVertices() Outline {
	switch s.Type {
	case ShapeTriangle:
		return Outline{{X: 0, Y: 0}, {X: s.Width, Y: 0}, {X: 0, Y: s.Width}}
	case ShapePolygon:
		return s.Vertices
	default:
		return Outline{{X: 0, Y: 0}, {X: s.Width, Y: 0}, {X: s.Width, Y: s.Height}, {X: 0, Y: s.Height}}
	}
}

// rotationCenter returns the local pivot the shape rotates about: rectangle
// centre, triangle centroid, or vertex centroid for free polygons.
func (s Shape) rotationCenter() Point2D {
	switch s.Type {
	case ShapeTriangle:
		return Point2D{X: s.Width / 3, Y: s.Width / 3}
	case ShapePolygon:
		return s.Vertices.Centroid()
	default:
		return Point2D{X: s.Width / 2, Y: s.Height / 2}
	}
}

// Outline returns the shape's true world-space outline with rotation applied.
func (s Shape) Outline() Outline {
	local := s.localVertices()
	result := make(Outline, len(local))
	if s.Rotation == 0 {
		for i, p := range local {
			result[i] = Point2D{X: p.X + s.Position.X, Y: p.Y + s.Position.Y}
		}
		return result
	}
	c := s.rotationCenter()
	rad := s.Rotation * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	for i, p := range local {
		dx, dy := p.X-c.X, p.Y-c.Y
		result[i] = Point2D{
			X: s.Position.X + c.X + dx*cos - dy*sin,
			Y: s.Position.Y + c.Y + dx*sin + dy*cos,
		}
	}
	return result
}

// Area returns the world-space area of the shape.
func (s Shape) Area() float64 {
	return s.Outline().Area()
}

// BoundingBox returns the world-space bounds of the rotated outline.
func (s Shape) BoundingBox() Rect {
	return s.Outline().BoundingBox()
}

// Grid is the uniform square-cell overlay shapes are partitioned against.
// Origin is the world position of cell (0,0)'s top-left corner; cell (row, col)
// occupies [origin.x+col*size, origin.x+(col+1)*size) x
// [origin.y+row*size, origin.y+(row+1)*size).
type Grid struct {
	CellSize float64 `json:"cell_size"` // Edge length of one cell, world units
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	Origin   Point2D `json:"origin"`
}

// DefaultGrid returns the reference layout: 6x6 with 250-unit cells.
func DefaultGrid() Grid {
	return Grid{CellSize: 250, Cols: 6, Rows: 6}
}

// NumCells returns the total cell count.
func (g Grid) NumCells() int { return g.Rows * g.Cols }

// CellIndex returns the row-major linear index of (row, col).
func (g Grid) CellIndex(row, col int) int { return row*g.Cols + col }

// RowCol splits a linear index back into (row, col).
func (g Grid) RowCol(index int) (row, col int) {
	return index / g.Cols, index % g.Cols
}

// CellRect returns the world rectangle of the cell at the given index.
func (g Grid) CellRect(index int) Rect {
	row, col := g.RowCol(index)
	return Rect{
		X: g.Origin.X + float64(col)*g.CellSize,
		Y: g.Origin.Y + float64(row)*g.CellSize,
		W: g.CellSize,
		H: g.CellSize,
	}
}

// CellName formats a cell label: column letter followed by 1-based row number,
// so index 7 of a 6-wide grid is "B2" and index 6 is "A2". Columns past 'Z'
// continue AA, AB, ...
func (g Grid) CellName(index int) string {
	row, col := g.RowCol(index)
	letters := ""
	c := col
	for {
		letters = string(rune('A'+c%26)) + letters
		c = c/26 - 1
		if c < 0 {
			break
		}
	}
	return fmt.Sprintf("%s%d", letters, row+1)
}

// CellAt returns the index of the cell containing p, or -1 outside the grid.
func (g Grid) CellAt(p Point2D) int {
	if g.CellSize <= 0 {
		return -1
	}
	col := int(math.Floor((p.X - g.Origin.X) / g.CellSize))
	row := int(math.Floor((p.Y - g.Origin.Y) / g.CellSize))
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return -1
	}
	return g.CellIndex(row, col)
}

// Bounds returns the world rectangle covered by the whole grid.
func (g Grid) Bounds() Rect {
	return Rect{
		X: g.Origin.X,
		Y: g.Origin.Y,
		W: float64(g.Cols) * g.CellSize,
		H: float64(g.Rows) * g.CellSize,
	}
}

// Unassigned is the classification value for shapes owned by no cell.
const Unassigned = -1

// Classification is the result of one dominant-cell pass. Cells is aligned
// with the classified shape slice; each entry is a cell index or Unassigned.
// It is rebuilt wholesale whenever the grid or the shape set changes.
type Classification struct {
	Cells  []int         `json:"cells"`
	ByCell map[int][]int `json:"by_cell"` // Cell index -> indices of owned shapes
	Colors map[int]Color `json:"colors"`  // Cell index -> display colour
}

// CellOf returns the owning cell of shape i, or Unassigned.
func (c Classification) CellOf(i int) int {
	if i < 0 || i >= len(c.Cells) {
		return Unassigned
	}
	return c.Cells[i]
}

// PopulatedCells returns the sorted indices of cells owning at least one shape.
func (c Classification) PopulatedCells() []int {
	cells := make([]int, 0, len(c.ByCell))
	for idx := range c.ByCell {
		cells = append(cells, idx)
	}
	sortInts(cells)
	return cells
}

// AssignedCount returns how many shapes were assigned to a cell.
func (c Classification) AssignedCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell != Unassigned {
			n++
		}
	}
	return n
}

// UnassignedCount returns how many shapes fell below the overlap threshold.
func (c Classification) UnassignedCount() int {
	return len(c.Cells) - c.AssignedCount()
}

// ColorOf returns the display colour of a cell; unknown cells map to white.
func (c Classification) ColorOf(cell int) Color {
	if col, ok := c.Colors[cell]; ok {
		return col
	}
	return White
}

func sortInts(v []int) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

// PolygonPart is one connected piece of a (possibly multi-part) polygon.
type PolygonPart struct {
	Outer Outline   `json:"outer"`
	Holes []Outline `json:"holes,omitempty"`
}

// Area returns the part area: outer ring minus holes.
func (p PolygonPart) Area() float64 {
	a := p.Outer.Area()
	for _, h := range p.Holes {
		a -= h.Area()
	}
	if a < 0 {
		return 0
	}
	return a
}

// CellTile is the authoritative fabrication outline for one grid cell:
// (cell rectangle union owned shapes) minus material owned by other cells.
// Multi-part results are preserved, never flattened.
type CellTile struct {
	CellIndex         int           `json:"cell_index"`
	Name              string        `json:"name"`
	Parts             []PolygonPart `json:"parts"`
	UnifiedSerials    []int         `json:"unified_serials"`    // Shapes merged into the tile
	SubtractedSerials []int         `json:"subtracted_serials"` // Intruding shapes carved out
	Area              float64       `json:"area"`
}

// Perimeter returns the total cut length over all rings of the tile.
func (t CellTile) Perimeter() float64 {
	var total float64
	for _, part := range t.Parts {
		total += part.Outer.Perimeter()
		for _, h := range part.Holes {
			total += h.Perimeter()
		}
	}
	return total
}

// RingCount returns the number of closed rings the tile cuts into.
func (t CellTile) RingCount() int {
	n := 0
	for _, part := range t.Parts {
		n += 1 + len(part.Holes)
	}
	return n
}

// Blob is a raster-traced contour for one colour-classified region, carrying
// the three alignment fiducials of its owning cell. Points are world
// coordinates.
type Blob struct {
	CellIndex int        `json:"cell_index"`
	Name      string     `json:"name"`
	Color     Color      `json:"color"`
	Points    Outline    `json:"points"`
	Fiducials [3]Point2D `json:"fiducials"`
	PixelArea float64    `json:"pixel_area"`
}

// FiducialPoints returns the three alignment marker positions for a cell,
// measured from its top-left corner at (1/2, 1/4), (1/4, 3/4) and (3/4, 3/4)
// of the cell size.
func FiducialPoints(cell Rect) [3]Point2D {
	return [3]Point2D{
		{X: cell.X + cell.W/2, Y: cell.Y + cell.H/4},
		{X: cell.X + cell.W/4, Y: cell.Y + 3*cell.H/4},
		{X: cell.X + 3*cell.W/4, Y: cell.Y + 3*cell.H/4},
	}
}

// Project ties everything together for save/load.
type Project struct {
	Name       string      `json:"name"`
	CreatedAt  string      `json:"created_at"`
	ModifiedAt string      `json:"modified_at"`
	Grid       Grid        `json:"grid"`
	Shapes     []Shape     `json:"shapes"`
	Settings   CutSettings `json:"settings"`
	Tiles      []CellTile  `json:"tiles,omitempty"`
}

func NewProject() Project {
	now := time.Now().UTC().Format(time.RFC3339)
	return Project{
		Name:       "Untitled",
		CreatedAt:  now,
		ModifiedAt: now,
		Grid:       DefaultGrid(),
		Shapes:     []Shape{},
		Settings:   DefaultSettings(),
	}
}

// Touch stamps the project as modified now.
func (p *Project) Touch() {
	p.ModifiedAt = time.Now().UTC().Format(time.RFC3339)
}
