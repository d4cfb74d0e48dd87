// Package changelog classifies upstream release notes and renders the
// changelog document from them.
package changelog

import "time"

// Release is the read-only upstream input: one tagged publication event.
type Release struct {
	TagName     string
	PublishedAt time.Time
	Body        string
	Prerelease  bool
}

// ClassifiedRelease is a Release whose note bullets have been sorted into
// feature/improvement/fix buckets. Every kept bullet appears in exactly one
// bucket, in its original order within that bucket.
type ClassifiedRelease struct {
	Release

	Features     []string
	Improvements []string
	Fixes        []string

	Breaking            bool
	BreakingDescription string
}
