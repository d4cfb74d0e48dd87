// Package overview patches the statistics shown on the overview page in
// place, leaving every byte outside its anchors untouched.
package overview

import (
	"fmt"
	"regexp"
	"time"

	"github.com/countrystatecity/docsync/internal/frontmatter"
	"github.com/countrystatecity/docsync/internal/stats"
)

// Each statistic is anchored by the color class unique to its stat card.
// The rewriter replaces only the numeric portion inside the matched markup.
var fieldAnchors = []struct {
	name  string
	color string
	value func(stats.StatRecord) *int
}{
	{"regions", "sky", func(r stats.StatRecord) *int { return r.Regions }},
	{"subregions", "violet", func(r stats.StatRecord) *int { return r.Subregions }},
	{"countries", "blue", func(r stats.StatRecord) *int { return r.Countries }},
	{"states", "green", func(r stats.StatRecord) *int { return r.States }},
	{"cities", "orange", func(r stats.StatRecord) *int { return r.Cities }},
}

var anchorRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(fieldAnchors))
	for _, f := range fieldAnchors {
		// e.g. <div className="text-3xl font-bold text-sky-600">6</div>
		res[f.name] = regexp.MustCompile(`(className="[^"]*\btext-` + f.color + `-600\b[^"]*"[^>]*>)([0-9][0-9,]*)(</)`)
	}
	return res
}()

var (
	dateAnchorRe = regexp.MustCompile(`(\*\*Last Updated:\*\* )([^\r\n]+)`)
	// frontmatter description template: "...with 250+ countries, 5,000+ states, and 151,000+ cities..."
	descriptionRe = regexp.MustCompile(`(with )([0-9][0-9,]*)(\+ countries, )([0-9][0-9,]*)(\+ states, and )([0-9][0-9,]*)(\+ cities)`)
)

// Result describes what a rewrite run changed.
type Result struct {
	Text               string
	UpdatedFields      []string
	DateReplaced       bool
	DateAnchorMissing  bool // an update occurred but no date line was found
	DescriptionUpdated bool
}

// FieldsUpdated returns the number of stat anchors that were rewritten.
func (r Result) FieldsUpdated() int { return len(r.UpdatedFields) }

// Rewrite applies rec to doc.
//
// Fields whose value is unset, and fields whose anchor is absent from the
// document, are skipped silently. If no field was updated the document is
// returned byte-identical. Otherwise the "Last Updated" line is set to now
// and the frontmatter description is refreshed with rounded values.
func Rewrite(doc string, rec stats.StatRecord, now time.Time) (Result, error) {
	res := Result{Text: doc}
	if rec.Empty() {
		return res, nil
	}

	for _, f := range fieldAnchors {
		v := f.value(rec)
		if v == nil {
			continue
		}
		replaced, ok := replaceFirst(res.Text, anchorRes[f.name], formatThousands(*v))
		if !ok {
			continue // anchor absent: tolerate upstream format drift
		}
		res.Text = replaced
		res.UpdatedFields = append(res.UpdatedFields, f.name)
	}

	if len(res.UpdatedFields) == 0 {
		return res, nil
	}

	dated, ok := replaceFirst(res.Text, dateAnchorRe, ordinalDate(now))
	if ok {
		res.Text = dated
		res.DateReplaced = true
	} else {
		res.DateAnchorMissing = true
	}

	if updated, ok := rewriteDescription(res.Text, rec); ok {
		res.Text = updated
		res.DescriptionUpdated = true
	}

	return res, nil
}

// replaceFirst substitutes the value capture group of the first match only;
// each anchor is replaced at most once per run.
func replaceFirst(doc string, re *regexp.Regexp, value string) (string, bool) {
	loc := re.FindStringSubmatchIndex(doc)
	if loc == nil {
		return doc, false
	}
	// Group 2 is the replaceable portion for every anchor pattern here.
	start, end := loc[4], loc[5]
	return doc[:start] + value + doc[end:], true
}

// rewriteDescription refreshes the frontmatter description with rounded
// values: countries floored to the nearest 50, states and cities floored to
// whole thousands. It requires all three values to be present.
func rewriteDescription(doc string, rec stats.StatRecord) (string, bool) {
	if rec.Countries == nil || rec.States == nil || rec.Cities == nil {
		return doc, false
	}

	fm, body, had, style, err := frontmatter.Split([]byte(doc))
	if err != nil || !had {
		return doc, false
	}

	loc := descriptionRe.FindSubmatchIndex(fm)
	if loc == nil {
		return doc, false
	}

	countries := formatThousands(*rec.Countries / 50 * 50)
	states := formatThousands(*rec.States / 1000 * 1000)
	cities := formatThousands(*rec.Cities / 1000 * 1000)

	replacement := fmt.Sprintf("${1}%s${3}%s${5}%s${7}", countries, states, cities)
	newFM := []byte{}
	newFM = append(newFM, fm[:loc[0]]...)
	newFM = append(newFM, descriptionRe.Expand(nil, []byte(replacement), fm, loc)...)
	newFM = append(newFM, fm[loc[1]:]...)

	return string(frontmatter.Join(newFM, body, had, style)), true
}

// ordinalDate renders now as "21st September 2025".
func ordinalDate(now time.Time) string {
	day := now.Day()
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s %s %d", day, suffix, now.Month().String(), now.Year())
}

// formatThousands renders n with comma separators ("5038" -> "5,038").
func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
