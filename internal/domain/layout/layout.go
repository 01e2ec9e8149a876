// Package layout turns regions of interest into crop geometry: single
// centered crops, two-way vertical splits, or square grids, plus the final
// coalescing of near-identical adjacent segments.
package layout

import (
	"math"

	"github.com/forPelevin/reframe/internal/domain/geometry"
	"github.com/forPelevin/reframe/internal/types"
)

// ResizeDims returns the crop size for a source of the given dimensions and
// a target width:height aspect ratio. The longer-fitting source dimension is
// kept and the other floors to the target ratio.
func ResizeDims(srcWidth, srcHeight, arWidth, arHeight int) (cropWidth, cropHeight int) {
	// compare ratios without float rounding: srcW/srcH > arW/arH
	if srcWidth*arHeight > arWidth*srcHeight {
		cropHeight = srcHeight
		cropWidth = cropHeight * arWidth / arHeight
		return cropWidth, cropHeight
	}
	cropWidth = srcWidth
	cropHeight = cropWidth * arHeight / arWidth
	return cropWidth, cropHeight
}

// CalcCrop centers a crop of the given size on the ROI. Only the lower bound
// is clamped; a crop may extend past the right/bottom source edge when the
// ROI sits near it. Downstream consumers inherit that behavior knowingly.
func CalcCrop(roi geometry.Rect, cropWidth, cropHeight int) geometry.Rect {
	cx, cy := roi.Center()
	return geometry.Rect{
		X:      max(cx-cropWidth/2, 0),
		Y:      max(cy-cropHeight/2, 0),
		Width:  cropWidth,
		Height: cropHeight,
	}
}

// Decide converts merged ROIs into a crop decision for one segment. One ROI
// yields a single crop; two yield a vertical split; more yield a square
// grid. Zero ROIs fall back to a source-centered crop.
func Decide(rois []geometry.Rect, cropWidth, cropHeight, srcWidth, srcHeight int) (types.CropType, int, int, []types.SubCrop) {
	switch len(rois) {
	case 0:
		return types.CropSingle, (srcWidth - cropWidth) / 2, (srcHeight - cropHeight) / 2, nil
	case 1:
		crop := CalcCrop(rois[0], cropWidth, cropHeight)
		return types.CropSingle, crop.X, crop.Y, nil
	case 2:
		half := cropHeight / 2
		subs := make([]types.SubCrop, 0, 2)
		for i, roi := range rois {
			crop := CalcCrop(roi, cropWidth, half)
			subs = append(subs, types.SubCrop{
				X:       crop.X,
				Y:       crop.Y,
				Width:   cropWidth,
				Height:  half,
				TargetY: i * half,
			})
		}
		return types.CropSplit, 0, 0, subs
	default:
		grid := int(math.Ceil(math.Sqrt(float64(len(rois)))))
		cellWidth := cropWidth / grid
		cellHeight := cropHeight / grid
		subs := make([]types.SubCrop, 0, len(rois))
		for i, roi := range rois {
			crop := CalcCrop(roi, cellWidth, cellHeight)
			subs = append(subs, types.SubCrop{
				X:       crop.X,
				Y:       crop.Y,
				Width:   cellWidth,
				Height:  cellHeight,
				TargetX: (i % grid) * cellWidth,
				TargetY: (i / grid) * cellHeight,
			})
		}
		return types.CropSplit, 0, 0, subs
	}
}
