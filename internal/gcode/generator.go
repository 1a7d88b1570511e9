// Package gcode turns fabrication tiles into CNC contour programs and
// provides the move parser and work-envelope check used to vet them.
package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/mosaicfab/MosaicCut/internal/model"
)

// Generator produces GCode for tile outlines under one settings/profile pair.
type Generator struct {
	Settings model.CutSettings
	profile  model.GCodeProfile
}

func New(settings model.CutSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.GCodeProfile),
	}
}

// GenerateTile produces the contour program for one cell tile: every ring cut
// in multiple passes, holes before the outer ring so interior cutouts are
// freed while the blank still holds the part, then the fiducial drill cycles
// when enabled.
func (g *Generator) GenerateTile(tile model.CellTile, fiducials [3]model.Point2D) string {
	var b strings.Builder

	g.writeHeader(&b, tile)

	for pi, part := range tile.Parts {
		for hi, hole := range part.Holes {
			g.writeRing(&b, hole, true, fmt.Sprintf("Part %d hole %d", pi+1, hi+1))
		}
		g.writeRing(&b, part.Outer, false, fmt.Sprintf("Part %d outer", pi+1))
	}

	if g.Settings.DrillFiducials {
		g.writeFiducials(&b, fiducials)
	}

	g.writeFooter(&b)
	return b.String()
}

// GenerateAll produces one program per tile, in tile order.
func (g *Generator) GenerateAll(grid model.Grid, tiles []model.CellTile) []string {
	var codes []string
	for _, tile := range tiles {
		fids := model.FiducialPoints(grid.CellRect(tile.CellIndex))
		codes = append(codes, g.GenerateTile(tile, fids))
	}
	return codes
}

func (g *Generator) writeHeader(b *strings.Builder, tile model.CellTile) {
	p := g.profile

	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" MosaicCut GCode, Cell %s\n", tile.Name))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Tile: %.0f units², %d rings\n", tile.Area, tile.RingCount()))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Tool: %.1fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min\n",
		g.Settings.ToolDiameter, g.Settings.FeedRate, g.Settings.PlungeRate))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Depth: %.1fmm in %.1fmm passes\n", g.Settings.CutDepth, g.Settings.PassDepth))
	b.WriteString(p.CommentPrefix)
	b.WriteString(fmt.Sprintf(" Profile: %s\n", p.Name))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(p.CommentPrefix + " === Cell complete ===\n")

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writeRing cuts one closed ring in as many passes as the pass depth needs.
// The toolpath is the ring offset by the tool radius: outward for outer rings,
// inward for holes, so the finished edge lands on the ring itself.
func (g *Generator) writeRing(b *strings.Builder, ring model.Outline, isHole bool, label string) {
	if len(ring) < 3 {
		b.WriteString(g.comment(fmt.Sprintf("WARNING: %s has fewer than 3 points, skipping", label)))
		return
	}

	toolpath := offsetRing(ring, g.Settings.ToolDiameter/2.0, isHole)

	b.WriteString(g.comment(fmt.Sprintf("--- %s: %d vertices ---", label, len(ring))))

	numPasses := int(math.Ceil(g.Settings.CutDepth / g.Settings.PassDepth))
	for pass := 1; pass <= numPasses; pass++ {
		depth := float64(pass) * g.Settings.PassDepth
		if depth > g.Settings.CutDepth {
			depth = g.Settings.CutDepth
		}

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, numPasses, depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove,
			g.format(toolpath[0].X), g.format(toolpath[0].Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove,
			g.format(-depth), g.format(g.Settings.PlungeRate)))

		// F is modal: set the cutting feed on the first move of the pass and
		// let it carry through the rest of the ring.
		for i := 1; i < len(toolpath); i++ {
			if i == 1 {
				b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
					g.format(toolpath[i].X), g.format(toolpath[i].Y),
					g.format(g.Settings.FeedRate)))
				continue
			}
			b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.FeedMove,
				g.format(toolpath[i].X), g.format(toolpath[i].Y)))
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.FeedMove,
			g.format(toolpath[0].X), g.format(toolpath[0].Y)))

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}

	b.WriteString("\n")
}

// writeFiducials drills the three alignment markers: rapid over each point,
// plunge to full depth, retract.
func (g *Generator) writeFiducials(b *strings.Builder, fiducials [3]model.Point2D) {
	b.WriteString(g.comment("--- Fiducial drills ---"))
	for i, p := range fiducials {
		b.WriteString(g.comment(fmt.Sprintf("Fiducial %d", i+1)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(p.X), g.format(p.Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove,
			g.format(-g.Settings.CutDepth), g.format(g.Settings.PlungeRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(g.Settings.SafeZ)))
	}
	b.WriteString("\n")
}

// offsetRing shifts every vertex along the average normal of its two adjacent
// edges, by dist toward the ring interior for holes and away from it for
// outer rings. Which side the edge normals call "interior" depends on the
// ring's winding, so the signed area decides the sign.
func offsetRing(ring model.Outline, dist float64, inward bool) model.Outline {
	n := len(ring)
	if n < 3 || dist == 0 {
		return ring
	}

	// Left-of-travel normals point at the interior exactly when the signed
	// area is positive.
	leftIsInward := signedArea(ring) > 0
	sign := 1.0
	if inward != leftIsInward {
		sign = -1.0
	}

	result := make(model.Outline, n)
	for i := 0; i < n; i++ {
		prev := ring[(i-1+n)%n]
		curr := ring[i]
		next := ring[(i+1)%n]

		e1x := curr.X - prev.X
		e1y := curr.Y - prev.Y
		e2x := next.X - curr.X
		e2y := next.Y - curr.Y

		n1x, n1y := normalize(-e1y, e1x)
		n2x, n2y := normalize(-e2y, e2x)

		nx := (n1x + n2x) / 2
		ny := (n1y + n2y) / 2
		nLen := math.Sqrt(nx*nx + ny*ny)
		if nLen > 1e-9 {
			nx /= nLen
			ny /= nLen
		}

		result[i] = model.Point2D{
			X: curr.X + sign*nx*dist,
			Y: curr.Y + sign*ny*dist,
		}
	}
	return result
}

// signedArea is the raw shoelace sum over the ring, sign intact.
func signedArea(ring model.Outline) float64 {
	var sum float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	return fmt.Sprintf(format, v)
}

// normalize returns a unit vector in the given direction.
func normalize(x, y float64) (float64, float64) {
	length := math.Sqrt(x*x + y*y)
	if length < 1e-9 {
		return 0, 0
	}
	return x / length, y / length
}
