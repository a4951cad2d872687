package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ayusman/hanuman/internal/chime"
	"github.com/ayusman/hanuman/internal/shape"
)

var shapesSeed uint64

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "List the shape cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), shapesTable(shape.FromSeed(shapesSeed)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shapesCmd)

	shapesCmd.Flags().Uint64Var(&shapesSeed, "seed", 1, "geometry seed for the bounds")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF9933"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// shapesTable renders one row per shape: order, name, title in its own
// color, chime pitch and bounding box.
func shapesTable(set *shape.Set) string {
	columns := [][]string{
		{"#"}, {"NAME"}, {"TITLE"}, {"CHIME"}, {"BOUNDS"},
	}
	titles := []string{"TITLE"}
	for i, id := range shape.All() {
		lo, hi := set.Bounds(id)
		columns[0] = append(columns[0], fmt.Sprint(i))
		columns[1] = append(columns[1], id.String())
		columns[2] = append(columns[2], id.Title())
		columns[3] = append(columns[3], fmt.Sprintf("%.1f Hz", chime.Frequency(id)))
		columns[4] = append(columns[4], fmt.Sprintf("[%.1f %.1f %.1f]..[%.1f %.1f %.1f]", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2]))
		titles = append(titles, id.Title())
	}

	blocks := make([]string, len(columns))
	for c, col := range columns {
		width := 0
		for _, cell := range col {
			width = max(width, lipgloss.Width(cell))
		}
		rows := make([]string, len(col))
		for r, cell := range col {
			style := cellStyle.Width(width + 2)
			switch {
			case r == 0:
				style = style.Inherit(headerStyle)
			case c == 2:
				style = style.Foreground(lipgloss.Color(shape.All()[r-1].Color().Hex()))
			}
			rows[r] = style.Render(cell)
		}
		blocks[c] = strings.Join(rows, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}
