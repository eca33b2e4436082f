package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/preset"
)

// Fraction returns where v sits in r as 0.0 - 1.0, clamped
func Fraction(v float64, r config.Range) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	f := (v - r.Min) / span
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// NewGaugeBar returns a progress bar model styled for value gauges
func NewGaugeBar(width int) progress.Model {
	return progress.New(
		progress.WithGradient(string(PrimaryColor), string(SuccessColor)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
}

// Gauge renders "Label  [bar]  value  (min-max)". A value outside the
// range is shown in the warning colour with the bar pinned at the end.
func Gauge(label string, v float64, r config.Range, barWidth int) string {
	bar := NewGaugeBar(barWidth)

	value := preset.FormatValue(v)
	if !r.Contains(v) {
		value = WarningStyle.Render(value + " " + WarningMarker)
	} else {
		value = ValueStyle.Bold(true).Render(value)
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		KeyStyle.Render(label),
		bar.ViewAs(Fraction(v, r)),
		"  ",
		value,
		MutedStyle.Render(fmt.Sprintf("  (%s-%s)", preset.FormatValue(r.Min), preset.FormatValue(r.Max))),
	)
}
