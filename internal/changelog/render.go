package changelog

import (
	"fmt"
	"sort"
	"strings"
)

// maxItemsPerSection caps each rendered section; truncation is silent.
const maxItemsPerSection = 8

const documentHeader = `---
title: Changelog
description: New updates and improvements to the countries states cities database.
icon: clock
---

Every database release, newest first. Each release groups its changes into
new features, improvements, and bug fixes; releases that require consumer
migration carry a breaking-change warning.
`

const documentFooter = `## Versioning

Database releases follow semantic versioning. Major versions may change the
schema or remove fields and are always flagged as breaking changes above.
Minor versions add data or fields without removing anything. Patch versions
correct existing data.

## Contributing

Spotted outdated or missing data? Open an issue or a pull request in the
[source repository](https://github.com/dr5hn/countries-states-cities-database)
and it will land in the next release.
`

// Render produces the complete replacement changelog document: fixed
// frontmatter and intro, year-grouped release blocks (years descending,
// releases within a year by publish date descending), then the static
// footer. The output depends only on the release list, so re-rendering
// unchanged input reproduces identical bytes.
func Render(releases []Release) string {
	classified := make([]ClassifiedRelease, 0, len(releases))
	for _, r := range releases {
		classified = append(classified, Classify(r))
	}

	byYear := make(map[int][]ClassifiedRelease)
	for _, c := range classified {
		year := c.PublishedAt.Year()
		byYear[year] = append(byYear[year], c)
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	var b strings.Builder
	b.WriteString(documentHeader)

	for _, year := range years {
		group := byYear[year]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].PublishedAt.After(group[j].PublishedAt)
		})

		fmt.Fprintf(&b, "\n## %d\n", year)
		for _, c := range group {
			renderRelease(&b, c)
		}
	}

	b.WriteString("\n")
	b.WriteString(documentFooter)
	return b.String()
}

func renderRelease(b *strings.Builder, c ClassifiedRelease) {
	fmt.Fprintf(b, "\n<Update label=%q description=%q>\n", c.TagName, c.PublishedAt.Format("January 2, 2006"))

	if c.Prerelease {
		b.WriteString("\n**Pre-release**\n")
	}

	if c.Breaking {
		fmt.Fprintf(b, "\n<Warning>\n**Breaking change:** %s\n</Warning>\n", c.BreakingDescription)
	}

	renderSection(b, "New Features", c.Features)
	renderSection(b, "Improvements", c.Improvements)
	renderSection(b, "Bug Fixes", c.Fixes)

	b.WriteString("\n</Update>\n")
}

func renderSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	if len(items) > maxItemsPerSection {
		items = items[:maxItemsPerSection]
	}
	fmt.Fprintf(b, "\n#### %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
