// Package forecastview groups a flat list of 3-hour forecast samples into
// calendar days and tracks which day is selected.
package forecastview

import (
	"forecast-viewer/models"
)

// DayGroup is one calendar date and the samples that fall on it, in their
// original order.
type DayGroup struct {
	Date    string                  `json:"date"`
	Samples []models.ForecastSample `json:"samples"`
}

// ViewState is everything a front end needs to render the selected day.
type ViewState struct {
	Location      string                  `json:"location,omitempty"`
	HasData       bool                    `json:"hasData"`
	SelectedDate  string                  `json:"selectedDate"`
	Samples       []models.ForecastSample `json:"samples"`
	DayIndex      int                     `json:"dayIndex"`
	DayCount      int                     `json:"dayCount"`
	CanGoPrevious bool                    `json:"canGoPrevious"`
	CanGoNext     bool                    `json:"canGoNext"`
}

// View holds one loaded forecast and the selected-day cursor.
// It is not safe for concurrent use.
type View struct {
	format  Formatter
	samples []models.ForecastSample
	days    []string
	cursor  int
}

// New creates an empty view that groups days with the given formatter.
func New(format Formatter) *View {
	return &View{format: format}
}

// Formatter returns the formatter the view groups with.
func (v *View) Formatter() Formatter {
	return v.format
}

// Load replaces the current forecast and selects the first day.
// An empty sample list leaves the view without data.
func (v *View) Load(samples []models.ForecastSample) ViewState {
	v.samples = samples
	v.days = v.distinctDays(samples)
	v.cursor = 0
	return v.State()
}

// distinctDays returns each local date once, in first-seen order.
func (v *View) distinctDays(samples []models.ForecastSample) []string {
	if len(samples) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(samples)/8+1)
	days := make([]string, 0, len(samples)/8+1)
	for _, s := range samples {
		key := v.format.LocalDateKey(s.Timestamp)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, key)
	}
	return days
}

// HasData reports whether a non-empty forecast is loaded.
func (v *View) HasData() bool {
	return len(v.days) > 0
}

// Days returns a copy of the distinct date list.
func (v *View) Days() []string {
	out := make([]string, len(v.days))
	copy(out, v.days)
	return out
}

// Cursor returns the selected day index, or -1 when nothing is loaded.
func (v *View) Cursor() int {
	if !v.HasData() {
		return -1
	}
	return v.cursor
}

// SelectedDay returns the samples for the selected date. The second value
// is false when no data is loaded.
func (v *View) SelectedDay() (DayGroup, bool) {
	if !v.HasData() {
		return DayGroup{}, false
	}

	date := v.days[v.cursor]
	group := DayGroup{Date: date}
	for _, s := range v.samples {
		if v.format.LocalDateKey(s.Timestamp) == date {
			group.Samples = append(group.Samples, s)
		}
	}
	return group, true
}

// Next moves to the following day. It reports whether the cursor moved.
func (v *View) Next() bool {
	if !v.HasData() || v.cursor+1 >= len(v.days) {
		return false
	}
	v.cursor++
	return true
}

// Previous moves to the preceding day. It reports whether the cursor moved.
func (v *View) Previous() bool {
	if !v.HasData() || v.cursor <= 0 {
		return false
	}
	v.cursor--
	return true
}

// Select jumps to the day at index. Out-of-range indexes are ignored.
func (v *View) Select(index int) bool {
	if !v.HasData() || index < 0 || index >= len(v.days) || index == v.cursor {
		return false
	}
	v.cursor = index
	return true
}

// State derives the view state for the current cursor.
func (v *View) State() ViewState {
	day, ok := v.SelectedDay()
	if !ok {
		return ViewState{DayIndex: -1}
	}

	return ViewState{
		HasData:       true,
		SelectedDate:  day.Date,
		Samples:       day.Samples,
		DayIndex:      v.cursor,
		DayCount:      len(v.days),
		CanGoPrevious: v.cursor > 0,
		CanGoNext:     v.cursor < len(v.days)-1,
	}
}
