package render

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// WriteText draws fig as a character plot, for terminals. Shaded columns
// mark rejection regions and '|' marks the observed statistic.
func WriteText(w io.Writer, fig *Figure, width, height int) error {
	if width < 10 || height < 3 {
		return fmt.Errorf("text plot too small: %dx%d", width, height)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	yMax := fig.PeakDensity
	if yMax == 0 {
		yMax = 1
	}
	step := (fig.Max - fig.Min) / float64(width-1)
	statCol := -1
	if fig.Statistic >= fig.Min && fig.Statistic <= fig.Max {
		statCol = int(math.Round((fig.Statistic - fig.Min) / step))
	}

	for col := 0; col < width; col++ {
		x := fig.Min + float64(col)*step
		y := densityAt(fig, x)
		level := int(math.Round(y / yMax * float64(height-1)))
		row := height - 1 - level

		if fig.InRegion(x) {
			for r := row + 1; r < height; r++ {
				grid[r][col] = '#'
			}
		}
		grid[row][col] = '*'
		if col == statCol {
			for r := 0; r < height; r++ {
				if grid[r][col] == ' ' || grid[r][col] == '#' {
					grid[r][col] = '|'
				}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", fig.Title, fig.Subtitle)
	for _, line := range grid {
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("-", width))
	b.WriteByte('\n')
	left := fmt.Sprintf("%.1f", fig.Min)
	right := fmt.Sprintf("%.1f", fig.Max)
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	fmt.Fprintf(&b, "%s%s%s\n", left, strings.Repeat(" ", pad), right)

	crit := make([]string, len(fig.Critical))
	for i, c := range fig.Critical {
		crit[i] = fmt.Sprintf("%.3f", c)
	}
	fmt.Fprintf(&b, "critical: %s   # %s   | %s\n", strings.Join(crit, ", "), fig.RegionLabel, fig.StatLabel)

	_, err := io.WriteString(w, b.String())
	return err
}

// densityAt interpolates the sampled curve at x.
func densityAt(fig *Figure, x float64) float64 {
	c := fig.Curve
	if len(c) == 0 {
		return 0
	}
	if x <= c[0].X {
		return c[0].Y
	}
	if x >= c[len(c)-1].X {
		return c[len(c)-1].Y
	}
	step := (c[len(c)-1].X - c[0].X) / float64(len(c)-1)
	i := int((x - c[0].X) / step)
	if i >= len(c)-1 {
		i = len(c) - 2
	}
	frac := (x - c[i].X) / step
	return c[i].Y + frac*(c[i+1].Y-c[i].Y)
}
