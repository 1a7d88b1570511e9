package export

// Stroke-font label drawing. Cut files carry no font dependence: the cell
// label is emitted as plain line segments a laser or plotter can follow.
// Several glyphs leave a 2-unit gap where strokes would otherwise close a
// loop, so lasered labels do not drop material.

const (
	glyphWidth   = 8.0
	glyphHeight  = 12.0
	glyphSpacing = 2.0
)

// Segment is one stroke of a drawn label, in the same coordinate space as
// the anchor passed to TextSegments.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// glyphs holds the stroke table per character, in glyph-local coordinates
// with the origin at the glyph box top-left.
var glyphs = map[rune][]Segment{
	'A': {
		{0, 12, 0, 2},
		{8, 12, 8, 2},
		{0, 2, 6, 2},
		{0, 6, 8, 6},
	},
	'B': {
		{0, 0, 0, 12},
		{0, 0, 6, 0},
		{0, 6, 8, 6},
		{0, 12, 6, 12},
		{8, 2, 8, 6},
		{8, 6, 8, 10},
	},
	'C': {
		{0, 2, 0, 10},
		{0, 2, 8, 2},
		{0, 10, 8, 10},
	},
	'D': {
		{0, 0, 0, 12},
		{0, 0, 6, 0},
		{0, 12, 6, 12},
		{6, 0, 8, 2},
		{8, 2, 8, 10},
		{8, 10, 6, 12},
	},
	'E': {
		{0, 0, 0, 12},
		{0, 0, 8, 0},
		{0, 6, 4, 6},
		{0, 12, 8, 12},
	},
	'F': {
		{0, 0, 0, 12},
		{0, 0, 8, 0},
		{0, 6, 4, 6},
	},
	'G': {
		{0, 2, 0, 10},
		{0, 2, 8, 2},
		{0, 10, 8, 10},
		{8, 6, 8, 10},
		{4, 6, 8, 6},
	},
	'H': {
		{0, 0, 0, 12},
		{8, 0, 8, 12},
		{0, 6, 8, 6},
	},
	'0': {
		{0, 2, 0, 10},
		{8, 2, 8, 10},
		{0, 2, 8, 2},
		{0, 10, 8, 10},
	},
	'1': {
		{4, 0, 4, 12},
		{2, 2, 4, 0},
		{0, 12, 8, 12},
	},
	'2': {
		{0, 0, 8, 0},
		{8, 0, 8, 6},
		{0, 6, 8, 6},
		{0, 6, 0, 12},
		{0, 12, 8, 12},
	},
	'3': {
		{0, 0, 8, 0},
		{0, 6, 8, 6},
		{0, 12, 8, 12},
		{8, 0, 8, 12},
	},
	'4': {
		{0, 0, 0, 6},
		{8, 0, 8, 12},
		{0, 6, 8, 6},
	},
	'5': {
		{0, 0, 8, 0},
		{0, 0, 0, 6},
		{0, 6, 8, 6},
		{8, 6, 8, 12},
		{0, 12, 8, 12},
	},
	'6': {
		{0, 0, 0, 12},
		{0, 0, 8, 0},
		{0, 6, 8, 6},
		{0, 12, 8, 12},
		{8, 6, 8, 12},
	},
	'7': {
		{0, 0, 8, 0},
		{8, 0, 4, 12},
	},
	'8': {
		{0, 0, 0, 12},
		{8, 0, 8, 12},
		{0, 0, 8, 0},
		{0, 6, 8, 6},
		{0, 12, 8, 12},
	},
	'9': {
		{0, 0, 8, 0},
		{0, 0, 0, 6},
		{0, 6, 8, 6},
		{8, 0, 8, 12},
		{0, 12, 8, 12},
	},
}

// glyphBox is the fallback for characters without a stroke table.
var glyphBox = []Segment{
	{0, 0, 8, 0},
	{8, 0, 8, 12},
	{8, 12, 0, 12},
	{0, 12, 0, 0},
}

// TextSegments lays a label out as stroke segments. The anchor (x, y) is the
// top-left corner of the first glyph box; glyphs advance left to right.
func TextSegments(text string, x, y float64) []Segment {
	var segs []Segment
	offset := 0.0
	for _, ch := range text {
		table, ok := glyphs[ch]
		if !ok {
			table = glyphBox
		}
		for _, g := range table {
			segs = append(segs, Segment{
				X1: x + offset + g.X1, Y1: y + g.Y1,
				X2: x + offset + g.X2, Y2: y + g.Y2,
			})
		}
		offset += glyphWidth + glyphSpacing
	}
	return segs
}

// TextWidth returns the drawn width of a label.
func TextWidth(text string) float64 {
	n := 0
	for range text {
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(n)*(glyphWidth+glyphSpacing) - glyphSpacing
}
