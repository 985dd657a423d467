package discovery

import (
	"slices"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// SortKey selects the field the refinement view sorts by.
type SortKey string

// Sort keys supported by the refinement view.
const (
	SortBySimilarity SortKey = "similarity"
	SortByRating     SortKey = "rating"
	SortByTitle      SortKey = "title"
	SortByAuthor     SortKey = "author"
)

// SortOrder selects ascending or descending refinement order.
type SortOrder string

// Sort orders supported by the refinement view.
const (
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

// RefineOptions configures the pure sort/filter pass over fetched candidates.
type RefineOptions struct {
	// Seed, when set, is dropped from the output by (title, author) identity.
	Seed *domain.BookSummary
	// Genre, when non-empty, keeps only candidates carrying that exact genre
	// token. The match is case-sensitive, like the browse vocabulary.
	Genre string
	// MinRating, when positive, keeps only candidates rated at or above it.
	MinRating float64
	// SortBy defaults to similarity score.
	SortBy SortKey
	// Order defaults to descending.
	Order SortOrder
}

// Refine applies the user-chosen view over an already-fetched candidate list.
// Entirely in-memory: no catalog requests. Missing scores and ratings compare
// as zero. The sort is stable.
func Refine(candidates []domain.BookSummary, opts RefineOptions) []domain.BookSummary {
	result := make([]domain.BookSummary, 0, len(candidates))

	genreFilter := strings.TrimSpace(opts.Genre)

	for _, c := range candidates {
		if opts.Seed != nil &&
			strings.EqualFold(c.Title, opts.Seed.Title) &&
			strings.EqualFold(c.AuthorDisplay(), opts.Seed.AuthorDisplay()) {
			continue
		}

		if genreFilter != "" && !hasGenre(c, genreFilter) {
			continue
		}

		if opts.MinRating > 0 && c.AverageRating < opts.MinRating {
			continue
		}

		result = append(result, c)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortBySimilarity
	}
	order := opts.Order
	if order == "" {
		order = OrderDescending
	}

	slices.SortStableFunc(result, func(a, b domain.BookSummary) int {
		cmp := compareBy(a, b, sortBy)
		if order == OrderDescending {
			return -cmp
		}
		return cmp
	})

	return result
}

// hasGenre reports whether the candidate carries the genre token exactly.
func hasGenre(c domain.BookSummary, genre string) bool {
	for _, g := range trimTokens(c.Genres) {
		if g == genre {
			return true
		}
	}
	return false
}

// compareBy compares two candidates ascending on the given key.
func compareBy(a, b domain.BookSummary, key SortKey) int {
	switch key {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByAuthor:
		return strings.Compare(a.AuthorDisplay(), b.AuthorDisplay())
	case SortByRating:
		return compareFloat(a.AverageRating, b.AverageRating)
	default: // SortBySimilarity
		return a.Score() - b.Score()
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
