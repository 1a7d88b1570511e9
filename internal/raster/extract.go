package raster

import (
	"image"
	"log/slog"
	"sort"

	"gocv.io/x/gocv"

	"github.com/mosaicfab/MosaicCut/internal/logging"
	"github.com/mosaicfab/MosaicCut/internal/model"
)

// Extract recovers one Blob per colour-connected region of a rendered scene.
// For each palette colour worn by a populated cell it builds a binary mask by
// per-channel range matching, cleans it with a morphological close-then-open,
// and traces external contours. Contours below the noise floor are dropped.
//
// The owning cell comes from the contour position, not the colour: with more
// cells than palette entries a colour repeats, so one mask can hold blobs
// belonging to several cells. Results are sorted by cell index, largest blob
// first within a cell.
func Extract(scene gocv.Mat, grid model.Grid, cls model.Classification, settings model.CutSettings) []model.Blob {
	if scene.Empty() {
		return nil
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	log := logging.Logger()
	seen := make(map[model.Color]bool)
	var blobs []model.Blob
	for _, cell := range cls.PopulatedCells() {
		col := cls.ColorOf(cell)
		if seen[col] {
			continue
		}
		seen[col] = true
		blobs = append(blobs, traceColor(scene, grid, col, kernel, settings, log)...)
	}

	sort.Slice(blobs, func(i, j int) bool {
		if blobs[i].CellIndex != blobs[j].CellIndex {
			return blobs[i].CellIndex < blobs[j].CellIndex
		}
		return blobs[i].PixelArea > blobs[j].PixelArea
	})

	log.Info("contour extraction complete",
		slog.Int("colors", len(seen)),
		slog.Int("blobs", len(blobs)))
	return blobs
}

// traceColor segments the scene for a single palette colour and converts each
// surviving contour into a world-space blob.
func traceColor(scene gocv.Mat, grid model.Grid, col model.Color, kernel gocv.Mat, settings model.CutSettings, log *slog.Logger) []model.Blob {
	lo, hi := colorRange(col, settings.RasterTolerance)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(scene, lo, hi, &mask)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	origin := grid.Bounds()
	var blobs []model.Blob
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < settings.MinBlobArea {
			log.Debug("contour below noise floor, skipping",
				slog.String("color", col.Hex()), slog.Float64("area", area))
			continue
		}

		rect := gocv.BoundingRect(contour)
		centre := model.Point2D{
			X: origin.X + float64(rect.Min.X+rect.Max.X)/2,
			Y: origin.Y + float64(rect.Min.Y+rect.Max.Y)/2,
		}
		cell := grid.CellAt(centre)
		if cell == model.Unassigned {
			log.Debug("contour centre outside grid, skipping",
				slog.String("color", col.Hex()))
			continue
		}

		pts := contour.ToPoints()
		outline := make(model.Outline, 0, len(pts))
		for _, p := range pts {
			outline = append(outline, model.Point2D{
				X: origin.X + float64(p.X),
				Y: origin.Y + float64(p.Y),
			})
		}

		blobs = append(blobs, model.Blob{
			CellIndex: cell,
			Name:      grid.CellName(cell),
			Color:     col,
			Points:    outline,
			Fiducials: model.FiducialPoints(grid.CellRect(cell)),
			PixelArea: area,
		})
	}
	return blobs
}

// colorRange builds the BGR segmentation window for one palette colour,
// clamped to valid channel values.
func colorRange(c model.Color, tolerance int) (lo, hi gocv.Scalar) {
	lo = gocv.NewScalar(
		clampChannel(int(c.B)-tolerance),
		clampChannel(int(c.G)-tolerance),
		clampChannel(int(c.R)-tolerance), 0)
	hi = gocv.NewScalar(
		clampChannel(int(c.B)+tolerance),
		clampChannel(int(c.G)+tolerance),
		clampChannel(int(c.R)+tolerance), 0)
	return lo, hi
}

func clampChannel(v int) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return float64(v)
}
