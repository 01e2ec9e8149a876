package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/forPelevin/reframe/internal/types"
)

// renderPlan formats a resize plan as a human-readable summary table.
func renderPlan(plan types.ResizePlan) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%dx%d -> %dx%d crop",
		plan.OriginalWidth, plan.OriginalHeight, plan.CropWidth, plan.CropHeight)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Speakers", "Layout", "Position"})

	for i, seg := range plan.Segments {
		tw.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.2fs", seg.Start),
			fmt.Sprintf("%.2fs", seg.End),
			formatSpeakers(seg.Speakers),
			formatLayout(seg),
			formatPosition(seg),
		})
	}
	return tw.Render()
}

func formatSpeakers(speakers []int) string {
	if len(speakers) == 0 {
		return "-"
	}
	parts := make([]string, len(speakers))
	for i, s := range speakers {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ",")
}

func formatLayout(seg types.CropSegment) string {
	if seg.Type == types.CropSplit {
		return fmt.Sprintf("split x%d", len(seg.SubCrops))
	}
	return "single"
}

func formatPosition(seg types.CropSegment) string {
	if seg.Type == types.CropSplit {
		parts := make([]string, len(seg.SubCrops))
		for i, sc := range seg.SubCrops {
			parts[i] = fmt.Sprintf("(%d,%d)", sc.X, sc.Y)
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprintf("(%d,%d)", seg.X, seg.Y)
}
