package jikan

import (
	"fmt"
	"strings"
)

// Season is one of the four quarterly partitions of the Jikan catalog.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// Seasons is the fixed order in which seasons are fetched within a year.
var Seasons = []Season{SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall}

// ParseSeason converts a label into a Season, case-insensitively.
func ParseSeason(label string) (Season, error) {
	s := Season(strings.ToLower(strings.TrimSpace(label)))
	switch s {
	case SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall:
		return s, nil
	default:
		return "", fmt.Errorf("unknown season %q (want winter, spring, summer or fall)", label)
	}
}

// SeasonKey identifies one fetch partition.
type SeasonKey struct {
	Year   int
	Season Season
}

// String returns "<year>/<season>".
func (k SeasonKey) String() string {
	return fmt.Sprintf("%d/%s", k.Year, k.Season)
}

// Endpoint returns the API path for this partition, without query.
func (k SeasonKey) Endpoint() string {
	return fmt.Sprintf("/v4/seasons/%d/%s", k.Year, k.Season)
}
