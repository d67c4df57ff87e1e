package domain

import "slices"

// Season is a named grouping of calendar months.
type Season string

const (
	Winter  Season = "Winter"
	Spring  Season = "Spring"
	Summer  Season = "Summer"
	Monsoon Season = "Monsoon"
)

// SeasonDefinition binds a season to its constituent months.
type SeasonDefinition struct {
	Season Season
	Label  string
	Months []int
}

// Contains reports whether month belongs to the season.
func (d SeasonDefinition) Contains(month int) bool {
	return slices.Contains(d.Months, month)
}

// CanonicalSeasons partitions the twelve months into four buckets.
var CanonicalSeasons = []SeasonDefinition{
	{Season: Winter, Label: "Winter (Dec-Feb)", Months: []int{12, 1, 2}},
	{Season: Spring, Label: "Spring (Mar-May)", Months: []int{3, 4, 5}},
	{Season: Summer, Label: "Summer (Jun-Aug)", Months: []int{6, 7, 8}},
	{Season: Monsoon, Label: "Monsoon (Sep-Nov)", Months: []int{9, 10, 11}},
}

// SeasonOf maps a month (1-12) onto its canonical season. Out-of-range
// months return the empty season.
func SeasonOf(month int) Season {
	for _, d := range CanonicalSeasons {
		if d.Contains(month) {
			return d.Season
		}
	}
	return ""
}
