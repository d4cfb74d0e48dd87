// Package docverify runs structural checks over the generated documents so
// drift in the templates or anchors is caught before it ships.
package docverify

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/countrystatecity/docsync/internal/frontmatter"
)

// Severity of a verification finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one verification finding.
type Issue struct {
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Severity, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

const maxSectionItems = 8

var sectionHeadings = map[string]bool{
	"New Features": true,
	"Improvements": true,
	"Bug Fixes":    true,
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// VerifyChangelog checks the generated changelog document: parseable
// frontmatter, year headings strictly descending, and no section exceeding
// the item cap.
func VerifyChangelog(content []byte) []Issue {
	var issues []Issue

	fm, body, had, _, err := frontmatter.Split(content)
	if err != nil {
		return append(issues, Issue{SeverityError, err.Error()})
	}
	if !had {
		issues = append(issues, Issue{SeverityError, "document has no frontmatter"})
	} else if _, err := frontmatter.ParseYAML(fm); err != nil {
		issues = append(issues, Issue{SeverityError, fmt.Sprintf("frontmatter does not parse: %v", err)})
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var years []int
	var lastSection string

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.Heading:
			heading := string(node.Text(body))
			switch node.Level {
			case 2:
				if yearRe.MatchString(heading) {
					year, _ := strconv.Atoi(heading)
					years = append(years, year)
				}
				lastSection = ""
			case 4:
				if sectionHeadings[heading] {
					lastSection = heading
				} else {
					lastSection = ""
				}
			default:
				lastSection = ""
			}
		case *gmast.List:
			if lastSection == "" {
				continue
			}
			if count := childCount(node); count > maxSectionItems {
				issues = append(issues, Issue{SeverityError,
					fmt.Sprintf("section %q has %d items, cap is %d", lastSection, count, maxSectionItems)})
			}
			lastSection = ""
		}
	}

	for i := 1; i < len(years); i++ {
		if years[i] >= years[i-1] {
			issues = append(issues, Issue{SeverityError,
				fmt.Sprintf("year headings not strictly descending: %d before %d", years[i-1], years[i])})
			break
		}
	}

	return issues
}

var statColors = []string{"sky", "violet", "blue", "green", "orange"}

// VerifyOverview checks the overview document: parseable frontmatter, each
// stat anchor unique, and a warning when the date line is missing.
func VerifyOverview(content []byte) []Issue {
	var issues []Issue

	fm, _, had, _, err := frontmatter.Split(content)
	if err != nil {
		return append(issues, Issue{SeverityError, err.Error()})
	}
	if !had {
		issues = append(issues, Issue{SeverityError, "document has no frontmatter"})
	} else if _, err := frontmatter.ParseYAML(fm); err != nil {
		issues = append(issues, Issue{SeverityError, fmt.Sprintf("frontmatter does not parse: %v", err)})
	}

	for _, color := range statColors {
		re := regexp.MustCompile(`text-` + color + `-600\b`)
		matches := re.FindAll(content, -1)
		switch {
		case len(matches) == 0:
			issues = append(issues, Issue{SeverityWarning,
				fmt.Sprintf("stat anchor %q not found", color)})
		case len(matches) > 1:
			issues = append(issues, Issue{SeverityError,
				fmt.Sprintf("stat anchor %q appears %d times, must be unique", color, len(matches))})
		}
	}

	if !regexp.MustCompile(`\*\*Last Updated:\*\* `).Match(content) {
		issues = append(issues, Issue{SeverityWarning, "no Last Updated line found"})
	}

	return issues
}

func childCount(n gmast.Node) int {
	count := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		count++
	}
	return count
}
