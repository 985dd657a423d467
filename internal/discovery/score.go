package discovery

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// Similarity weights. The heuristic is fixed, not learned: genre overlap
// dominates, shared authorship is nearly as strong, and a close rating adds
// a small nudge. The total stays within [0,100].
const (
	genreWeight  = 50
	authorWeight = 40
	ratingWeight = 10

	// ratingDelta is the maximum rating difference considered "similar".
	ratingDelta = 0.5
)

// Score computes the heuristic similarity between a seed and a candidate.
// Deterministic and pure: any overlap between the genre sets scores, any
// overlap between the author sets scores, and a rating within ratingDelta
// scores. All of the seed's tokens participate, not just the ones used to
// build the seeded catalog query. Tokens are trimmed but compared
// case-sensitively; the reason explainer folds case, the scorer does not.
func Score(seed, candidate domain.BookSummary) int {
	score := 0

	if sharesToken(seed.Genres, candidate.Genres) {
		score += genreWeight
	}
	if sharesToken(seed.Authors, candidate.Authors) {
		score += authorWeight
	}
	if math.Abs(seed.AverageRating-candidate.AverageRating) < ratingDelta {
		score += ratingWeight
	}

	return score
}

// sharesToken reports whether any trimmed token appears in both lists,
// compared exactly.
func sharesToken(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, t := range trimTokens(a) {
		set[t] = struct{}{}
	}
	for _, t := range trimTokens(b) {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// Rank annotates each candidate with its similarity to the seed and sorts
// descending by score. The sort is stable: ties keep provider arrival order.
func Rank(seed domain.BookSummary, candidates []domain.BookSummary) {
	for i := range candidates {
		candidates[i].SetScore(Score(seed, candidates[i]))
	}
	slices.SortStableFunc(candidates, func(a, b domain.BookSummary) int {
		return b.Score() - a.Score()
	})
}

// SeedQuery builds the catalog query for seeded recommendations from the
// FIRST genre and FIRST author of the seed only. Scoring still considers
// every token; the narrow query keeps provider results focused while the
// scorer re-widens the comparison.
func SeedQuery(seed domain.BookSummary) string {
	var parts []string
	if genres := cleanFirst(seed.Genres); genres != "" {
		parts = append(parts, "subject:"+genres)
	}
	if author := cleanFirst(seed.Authors); author != "" {
		parts = append(parts, fmt.Sprintf("inauthor:%q", author))
	}
	if len(parts) == 0 {
		return "fiction"
	}
	return strings.Join(parts, " ")
}

// cleanFirst returns the first non-empty trimmed token.
func cleanFirst(tokens []string) string {
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}
