package export

import (
	"os"

	"github.com/mosaicfab/MosaicCut/internal/model"
	"github.com/mosaicfab/MosaicCut/internal/raster"
)

// writeCellPNG renders the cell preview raster: the cell rectangle plus the
// configured margin on white, the cell fill and every intersecting shape in
// its classification colour, exactly as the full scene render composites
// them.
func (e *Exporter) writeCellPNG(path string, tile model.CellTile) error {
	m := raster.RenderCell(e.Grid, e.Shapes, e.Cls, tile.CellIndex, e.Settings.PNGMargin)
	defer m.Close()

	buf, err := raster.EncodePNG(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
