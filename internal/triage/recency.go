package triage

import (
	"time"

	"NewsTriage/internal/domain"
)

// defaultWindows holds the per-category lookback in hours. Different news
// categories decay at different rates: policy stays actionable for a week,
// structural shifts for two.
var defaultWindows = map[string]int{
	domain.CategoryMarkets:     48,
	domain.CategoryEarnings:    72,
	domain.CategoryPolicy:      168,
	domain.CategoryGeopolitics: 72,
	domain.CategoryStructural:  336,
	domain.CategoryCyclical:    48,
	domain.CategoryNarrative:   48,
	domain.CategoryNoise:       48,
}

const defaultWindowHours = 48

// RecencyGate decides whether an entry falls inside the lookback window of
// its category. The category comes from the classifier before the window
// lookup; the coupling is intentional.
type RecencyGate struct {
	windows      map[string]int
	defaultHours int
	now          func() time.Time
}

// NewRecencyGate builds a gate from configured windows. Nil windows or a
// zero default fall back to the built-in table.
func NewRecencyGate(windows map[string]int, defaultHours int) *RecencyGate {
	if len(windows) == 0 {
		windows = defaultWindows
	}
	if defaultHours <= 0 {
		defaultHours = defaultWindowHours
	}
	return &RecencyGate{
		windows:      windows,
		defaultHours: defaultHours,
		now:          time.Now,
	}
}

// WindowHours returns the lookback for a category, defaulting for
// unrecognized labels.
func (g *RecencyGate) WindowHours(category string) int {
	if hours, ok := g.windows[category]; ok {
		return hours
	}
	return g.defaultHours
}

// IsRecent reports whether publishedAt falls inside the category window.
// A missing or unparseable timestamp is never recent; the gate fails closed.
func (g *RecencyGate) IsRecent(publishedAt, category string) bool {
	if publishedAt == "" {
		return false
	}
	published, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return false
	}
	cutoff := g.now().UTC().Add(-time.Duration(g.WindowHours(category)) * time.Hour)
	return !published.Before(cutoff)
}
