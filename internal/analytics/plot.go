package analytics

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is one named line of a text plot. Percent series share the fixed
// 0-100 axis; the rest are scaled to their own min/max, noted in the legend.
type Series struct {
	Name    string
	Values  []float64
	Percent bool
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 16
	fallbackTermWidth = 80
)

var seriesMarkers = []rune{'*', '+', 'o', 'x'}

const sparkRamp = " .:-=+*#%@"

// PlotWidthFor returns the plot width that fits a terminal of totalWidth,
// leaving room for the axis gutter.
func PlotWidthFor(totalWidth int) int {
	width := totalWidth - 7
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallbackTermWidth
}

// MovingAverage smooths a series with a trailing window. Window sizes below 2
// return a copy unchanged.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a compact single-line chart of the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := len(sparkRamp) / 2
		if hi-lo > 1e-9 {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkRamp)-1)))
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkRamp) {
			idx = len(sparkRamp) - 1
		}
		b.WriteByte(sparkRamp[idx])
	}
	return b.String()
}

// PlotSeries renders a multi-series text chart. Width and height of 0 pick
// defaults (terminal width, 10 rows). Empty series are skipped; when nothing
// remains, nothing is rendered.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	kept := series[:0:0]
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	if height <= 0 {
		height = defaultPlotHeight
	}

	grid := make([][]rune, height)
	for row := range grid {
		grid[row] = make([]rune, width)
		for col := range grid[row] {
			grid[row][col] = ' '
		}
	}
	for si, s := range kept {
		marker := seriesMarkers[si%len(seriesMarkers)]
		lo, hi := seriesRange(s)
		for col := 0; col < width; col++ {
			value := sampleAt(s.Values, col, width)
			row := rowFor(value, lo, hi, height)
			grid[row][col] = marker
		}
	}

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for row, line := range grid {
		label := "      "
		switch row {
		case 0:
			label = " high "
		case height - 1:
			label = "  low "
		}
		if _, err := fmt.Fprintf(w, "%s|%s\n", label, string(line)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "      +%s\n", strings.Repeat("-", width)); err != nil {
		return err
	}
	for si, s := range kept {
		marker := seriesMarkers[si%len(seriesMarkers)]
		lo, hi := seriesRange(s)
		legend := fmt.Sprintf("      %c %s", marker, s.Name)
		if s.Percent {
			legend += " (0-100%)"
		} else {
			legend += fmt.Sprintf(" (min %.1f, max %.1f)", lo, hi)
		}
		if _, err := fmt.Fprintln(w, legend); err != nil {
			return err
		}
	}
	return nil
}

func seriesRange(s Series) (lo, hi float64) {
	if s.Percent {
		return 0, 100
	}
	lo, hi = s.Values[0], s.Values[0]
	for _, v := range s.Values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		hi = lo + 1
	}
	return lo, hi
}

// sampleAt maps a plot column back onto the series by linear interpolation,
// so short series stretch and long series compress to the plot width.
func sampleAt(values []float64, col, width int) float64 {
	if len(values) == 1 || width == 1 {
		return values[0]
	}
	pos := float64(col) / float64(width-1) * float64(len(values)-1)
	left := int(math.Floor(pos))
	right := int(math.Ceil(pos))
	if right >= len(values) {
		right = len(values) - 1
	}
	frac := pos - float64(left)
	return values[left]*(1-frac) + values[right]*frac
}

func rowFor(value, lo, hi float64, height int) int {
	norm := (value - lo) / (hi - lo)
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	row := int(math.Round((1 - norm) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}
