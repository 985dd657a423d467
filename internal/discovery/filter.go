package discovery

import (
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// IsExcluded reports whether a candidate must be dropped: either the caller
// dismissed it ("not interested") or it already sits on the reading list.
//
// Reading-list membership is a case-insensitive (title, author) comparison,
// not an id lookup — catalog ids and reading-list ids come from different
// systems. Pure, no side effects.
func IsExcluded(candidate domain.BookSummary, readingList []domain.ReadingListEntry, notInterested func(id string) bool) bool {
	if notInterested != nil && notInterested(candidate.ID) {
		return true
	}

	candidateAuthor := candidate.AuthorDisplay()
	for _, entry := range readingList {
		if strings.EqualFold(strings.TrimSpace(entry.Title), strings.TrimSpace(candidate.Title)) &&
			strings.EqualFold(strings.TrimSpace(entry.Author), strings.TrimSpace(candidateAuthor)) {
			return true
		}
	}
	return false
}

// ExcludeFunc decides whether a candidate must be dropped from results.
type ExcludeFunc func(domain.BookSummary) bool

// Excluder builds an ExcludeFunc closed over a reading list and a
// not-interested membership test.
func Excluder(readingList []domain.ReadingListEntry, notInterested func(id string) bool) ExcludeFunc {
	return func(candidate domain.BookSummary) bool {
		return IsExcluded(candidate, readingList, notInterested)
	}
}
