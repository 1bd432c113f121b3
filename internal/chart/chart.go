// Package chart draws reading history as coloured terminal sparklines.
package chart

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cloudpico-climate/internal/climate"
	"cloudpico-climate/internal/types"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	lowColor    = lipgloss.Color("33")  // blue
	okColor     = lipgloss.Color("78")  // soft green
	highColor   = lipgloss.Color("196") // red
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Band is the comfortable range of one quantity. Values outside it are
// drawn in the low or high colour.
type Band struct {
	Low, High float64
}

func (b Band) color(v float64) lipgloss.Color {
	switch {
	case v < b.Low:
		return lowColor
	case v > b.High:
		return highColor
	default:
		return okColor
	}
}

// Sparkline renders values (oldest first) into exactly width cells. Longer
// series are averaged into width buckets; shorter ones are left-padded.
func Sparkline(values []float64, width int, band Band) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return dimStyle.Render(strings.Repeat("╌", width))
	}

	values = downsample(values, width)
	lo, hi := slices.Min(values), slices.Max(values)
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	if pad := width - len(values); pad > 0 {
		sb.WriteString(dimStyle.Render(strings.Repeat("╌", pad)))
	}
	for _, v := range values {
		norm := math.Max(0, math.Min(1, (v-lo)/span))
		idx := min(int(norm*7), 7)
		style := lipgloss.NewStyle().Foreground(band.color(v))
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}
	return sb.String()
}

func downsample(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// Render draws the temperature and humidity sparklines for readings given
// newest first, as the store returns them.
func Render(readings []types.Telemetry, width int, th climate.Thresholds) string {
	if len(readings) == 0 {
		return legendStyle.Render("no readings in this window")
	}

	n := len(readings)
	temps := make([]float64, n)
	hums := make([]float64, n)
	for i, r := range readings {
		temps[n-1-i] = r.Temperature
		hums[n-1-i] = r.Humidity
	}

	tempBand := Band{Low: float64(th.ColdBelow), High: float64(th.HotAbove)}
	humBand := Band{Low: float64(th.DryBelow), High: float64(th.HumidAbove)}

	var sb strings.Builder
	writeRow(&sb, "temp", "°C", temps, width, tempBand)
	writeRow(&sb, "hum ", "% ", hums, width, humBand)

	first, last := readings[n-1].Timestamp.Local(), readings[0].Timestamp.Local()
	timeline := fmt.Sprintf("%-*s%s", max(width-8, 0), first.Format("15:04:05"), last.Format("15:04:05"))
	sb.WriteString(strings.Repeat(" ", 6) + legendStyle.Render(timeline) + "\n")
	return sb.String()
}

func writeRow(sb *strings.Builder, label, unit string, values []float64, width int, band Band) {
	fmt.Fprintf(sb, "%s  %s  %s\n",
		labelStyle.Render(label),
		Sparkline(values, width, band),
		legendStyle.Render(fmt.Sprintf("%6.2f..%.2f %s  ok %g..%g", slices.Min(values), slices.Max(values), unit, band.Low, band.High)),
	)
}
