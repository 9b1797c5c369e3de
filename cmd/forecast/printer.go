package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"forecast-viewer/forecastview"
)

// printer renders view states to a terminal
type printer struct {
	out       io.Writer
	useColors bool
}

// resolveColors maps --color to a decision, honouring NO_COLOR for "auto"
func resolveColors(mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		return !color.NoColor, nil
	default:
		return false, fmt.Errorf("invalid color mode %q: must be auto, always, or never", mode)
	}
}

func (p *printer) bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}

func (p *printer) dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}
	return text
}

// temperature colours the label by band
func (p *printer) temperature(kelvin float64) string {
	label := forecastview.TemperatureLabel(kelvin)
	if !p.useColors {
		return label
	}
	switch c := forecastview.Celsius(kelvin); {
	case c <= 0:
		return color.CyanString(label)
	case c >= 25:
		return color.RedString(label)
	default:
		return color.GreenString(label)
	}
}

// Day prints the selected day of state
func (p *printer) Day(location string, state forecastview.ViewState, format forecastview.Formatter) {
	if !state.HasData {
		fmt.Fprintln(p.out, "No weather data available")
		return
	}

	if location != "" {
		fmt.Fprintf(p.out, "Weather at %s\n", p.bold(location))
	}
	title := fmt.Sprintf("Date: %s", state.SelectedDate)
	fmt.Fprintf(p.out, "\n%s\n%s\n", p.bold(title), strings.Repeat("-", len(title)))

	for _, s := range state.Samples {
		fmt.Fprintf(p.out, "%s  %-24s %s\n",
			p.bold(format.LocalTimeLabel(s.Timestamp)),
			s.Description,
			p.temperature(s.TemperatureKelvin),
		)
	}

	prev, next := "  ", "  "
	if state.CanGoPrevious {
		prev = "< "
	}
	if state.CanGoNext {
		next = " >"
	}
	fmt.Fprintln(p.out, p.dim(fmt.Sprintf("%sday %d of %d%s", prev, state.DayIndex+1, state.DayCount, next)))
}
