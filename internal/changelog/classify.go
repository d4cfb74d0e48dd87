package changelog

import (
	"regexp"
	"strings"
)

// Category is the bucket a release-note bullet lands in.
type Category int

const (
	CategoryFix Category = iota
	CategoryFeature
	CategoryImprovement
)

// classificationRule pairs a predicate with the category it assigns. Rules
// are evaluated top-down; the first match wins, which keeps precedence
// explicit and independently testable.
type classificationRule struct {
	name     string
	matches  func(lower string) bool
	category Category
}

var classificationRules = []classificationRule{
	{
		name: "fix",
		matches: func(s string) bool {
			return strings.Contains(s, "fix") || strings.Contains(s, "resolve") || strings.Contains(s, "solved")
		},
		category: CategoryFix,
	},
	{
		name: "feature",
		matches: func(s string) bool {
			if strings.Contains(s, "add") || strings.Contains(s, "new") {
				return true
			}
			return strings.Contains(s, "support") && !strings.Contains(s, "fix")
		},
		category: CategoryFeature,
	},
}

// classifyBullet assigns a category; anything no rule claims is an improvement.
func classifyBullet(text string) Category {
	lower := strings.ToLower(text)
	for _, rule := range classificationRules {
		if rule.matches(lower) {
			return rule.category
		}
	}
	return CategoryImprovement
}

// discarded reports whether a bullet is auto-generated boilerplate that
// contributes to no category: first-time-contributor lines, PR attribution,
// and "Full Changelog" diff links.
func discarded(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "made their first contribution") {
		return true
	}
	if strings.Contains(text, "@") && strings.Contains(text, "in #") {
		return true
	}
	return strings.Contains(lower, "full changelog")
}

var breakingLineRe = regexp.MustCompile(`(?im)^.*breaking change:\s*(.+)$`)

// genericBreakingDescription is used when the body mentions a breaking change
// but carries no "BREAKING CHANGE:" marker line to quote.
const genericBreakingDescription = "This release contains breaking changes. Review the release notes before upgrading."

// Classify splits a release body into classified bullets and detects
// breaking changes.
//
// Only lines starting with "* " or "- " are considered; the marker is
// stripped. Breaking-change detection scans the whole body independently of
// bullet classification.
func Classify(r Release) ClassifiedRelease {
	out := ClassifiedRelease{Release: r}
	if r.Body == "" {
		return out
	}

	for _, raw := range strings.Split(r.Body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var text string
		switch {
		case strings.HasPrefix(line, "* "):
			text = strings.TrimSpace(line[2:])
		case strings.HasPrefix(line, "- "):
			text = strings.TrimSpace(line[2:])
		default:
			continue
		}
		if text == "" || discarded(text) {
			continue
		}

		switch classifyBullet(text) {
		case CategoryFix:
			out.Fixes = append(out.Fixes, text)
		case CategoryFeature:
			out.Features = append(out.Features, text)
		default:
			out.Improvements = append(out.Improvements, text)
		}
	}

	lower := strings.ToLower(r.Body)
	if strings.Contains(lower, "breaking change") || strings.Contains(lower, "!!breaking") {
		out.Breaking = true
		if m := breakingLineRe.FindStringSubmatch(r.Body); m != nil {
			out.BreakingDescription = strings.TrimSpace(m[1])
		} else {
			out.BreakingDescription = genericBreakingDescription
		}
	}

	return out
}
