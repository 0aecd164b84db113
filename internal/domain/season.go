package domain

import (
	"strings"
	"time"
)

type Season string

const (
	SeasonSummer  Season = "summer"
	SeasonWinter  Season = "winter"
	SeasonMonsoon Season = "monsoon"
	SeasonAll     Season = "all"
)

var seasonMonths = map[Season][]time.Month{
	SeasonSummer:  {time.May, time.June, time.July, time.August},
	SeasonWinter:  {time.November, time.December, time.January, time.February},
	SeasonMonsoon: {time.June, time.July, time.August, time.September},
	SeasonAll: {
		time.January, time.February, time.March, time.April, time.May, time.June,
		time.July, time.August, time.September, time.October, time.November, time.December,
	},
}

// Seasons lists the known seasons in display order.
func Seasons() []Season {
	return []Season{SeasonSummer, SeasonWinter, SeasonMonsoon, SeasonAll}
}

// ParseSeason resolves a season name (case-insensitive). Unknown names resolve to
// SeasonAll and report ok=false.
func ParseSeason(name string) (Season, bool) {
	s := Season(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := seasonMonths[s]; ok {
		return s, true
	}

	return SeasonAll, false
}

// Months returns the calendar months covered by s.
func (s Season) Months() []time.Month {
	months := seasonMonths[s]
	if months == nil {
		months = seasonMonths[SeasonAll]
	}

	out := make([]time.Month, len(months))
	copy(out, months)
	return out
}

// Contains reports whether m falls in s.
func (s Season) Contains(m time.Month) bool {
	for _, month := range s.Months() {
		if month == m {
			return true
		}
	}
	return false
}
