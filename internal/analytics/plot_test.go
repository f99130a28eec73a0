package analytics

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotSeriesRendersTitleAndLegend(t *testing.T) {
	var buf bytes.Buffer
	series := []Series{
		{Name: "Score", Values: []float64{50, 75, 100}, Percent: true},
		{Name: "Duration", Values: []float64{120, 90, 60}},
	}
	if err := PlotSeries(&buf, "Trend", series, 20, 5); err != nil {
		t.Fatalf("plot: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Trend\n") {
		t.Fatalf("missing title: %q", out)
	}
	if !strings.Contains(out, "* Score (0-100%)") {
		t.Fatalf("missing percent legend: %q", out)
	}
	if !strings.Contains(out, "+ Duration (min 60.0, max 120.0)") {
		t.Fatalf("missing min/max legend: %q", out)
	}
	if !strings.Contains(out, " high |") || !strings.Contains(out, "  low |") {
		t.Fatalf("missing gutter labels: %q", out)
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Trend", []Series{{Name: "Score"}}, 20, 5); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series, got %q", buf.String())
	}
}

func TestPlotSeriesSingleValue(t *testing.T) {
	var buf bytes.Buffer
	series := []Series{{Name: "Score", Values: []float64{80}, Percent: true}}
	if err := PlotSeries(&buf, "Trend", series, 10, 3); err != nil {
		t.Fatalf("plot: %v", err)
	}
	if !strings.Contains(buf.String(), "*") {
		t.Fatalf("expected marker for single value: %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 73 {
		t.Fatalf("expected 73, got %d", got)
	}
	if got := PlotWidthFor(10); got != 16 {
		t.Fatalf("narrow terminals clamp to 16, got %d", got)
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	got := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	got = MovingAverage(values, 1)
	for i := range values {
		if got[i] != values[i] {
			t.Fatalf("window 1 must copy unchanged, got %v", got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 100})
	if len(got) != 2 {
		t.Fatalf("expected 2 runes, got %q", got)
	}
	if got[0] != ' ' || got[1] != '@' {
		t.Fatalf("expected extremes of the ramp, got %q", got)
	}
	// Flat series render the mid-ramp character.
	got = Sparkline([]float64{5, 5, 5})
	if got != "+++" {
		t.Fatalf("expected flat mid-ramp, got %q", got)
	}
}
