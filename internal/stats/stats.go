// Package stats extracts database-size statistics from the upstream README.
package stats

import (
	"regexp"
	"strconv"
	"strings"
)

// StatRecord holds the five extracted statistics. A nil field means the
// corresponding pattern did not match; that is never a hard failure.
type StatRecord struct {
	Regions    *int
	Subregions *int
	Countries  *int
	States     *int
	Cities     *int
}

// Empty reports whether none of the five patterns matched.
func (r StatRecord) Empty() bool {
	return r.Regions == nil && r.Subregions == nil && r.Countries == nil && r.States == nil && r.Cities == nil
}

// FoundCount returns how many of the five statistics were extracted.
func (r StatRecord) FoundCount() int {
	n := 0
	for _, v := range []*int{r.Regions, r.Subregions, r.Countries, r.States, r.Cities} {
		if v != nil {
			n++
		}
	}
	return n
}

// Label patterns tolerate the README's pluralization and composite-label
// variants ("States/Regions/Municipalities", "Cities/Towns/Districts").
// Each is applied to the whole text independently; matching is not scoped to
// a section, which is acceptable for the narrow upstream format.
var patterns = map[string]*regexp.Regexp{
	"regions":    compileStat(`regions?`),
	"subregions": compileStat(`sub[\s-]?regions?`),
	"countries":  compileStat(`countr(?:y|ies)`),
	"states":     compileStat(`states?(?:\s*/\s*regions?\s*/\s*municipalities)?`),
	"cities":     compileStat(`cit(?:y|ies)(?:\s*/\s*towns?(?:\s*/\s*districts?)?)?`),
}

func compileStat(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)total\s+` + label + `\s*:\s*([0-9][0-9,]*)`)
}

// Extract applies the five label patterns to readme and returns whatever
// matched. Thousands separators are stripped before parsing.
func Extract(readme string) StatRecord {
	return StatRecord{
		Regions:    match(patterns["regions"], readme),
		Subregions: match(patterns["subregions"], readme),
		Countries:  match(patterns["countries"], readme),
		States:     match(patterns["states"], readme),
		Cities:     match(patterns["cities"], readme),
	}
}

func match(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
