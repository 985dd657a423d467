package discovery

import (
	"fmt"
	"math"
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

const (
	// reasonKeywordCap limits how many shared keywords are shown.
	reasonKeywordCap = 3

	// lengthRatio is the min(pages)/max(pages) threshold for "similar length".
	lengthRatio = 0.8
)

// noReasons is shown when no signal fires and the candidate has no score.
const noReasons = "No specific reasons identified."

// Reason derives a human-readable justification for recommending a candidate
// relative to a seed. Signals are concatenated with "; "; when none fire the
// numeric similarity score is shown instead, and failing that a generic
// message. Pure function, no network access.
func Reason(seed, candidate domain.BookSummary) string {
	var reasons []string

	if shared := sharedTokens(seed.Genres, candidate.Genres); len(shared) > 0 {
		reasons = append(reasons, "Genre: "+strings.Join(capitalize(shared), ", "))
	}

	if shared := sharedTokens(seed.Authors, candidate.Authors); len(shared) > 0 {
		reasons = append(reasons, "Author: "+strings.Join(capitalize(shared), ", "))
	}

	if shared := sharedKeywords(seed.Description, candidate.Description); len(shared) > 0 {
		shown := shared
		suffix := ""
		if len(shown) > reasonKeywordCap {
			shown = shown[:reasonKeywordCap]
			suffix = "..."
		}
		reasons = append(reasons, "Keywords: "+strings.Join(shown, ", ")+suffix)
	}

	if seed.AverageRating > 0 && candidate.AverageRating > 0 {
		if math.Abs(seed.AverageRating-candidate.AverageRating) <= ratingDelta {
			reasons = append(reasons, fmt.Sprintf("Similar rating (%.1f vs %.1f)", seed.AverageRating, candidate.AverageRating))
		}
	}

	if seed.PageCount > 0 && candidate.PageCount > 0 {
		ratio := float64(min(seed.PageCount, candidate.PageCount)) / float64(max(seed.PageCount, candidate.PageCount))
		if ratio >= lengthRatio {
			reasons = append(reasons, fmt.Sprintf("Similar length (%d vs %d pages)", seed.PageCount, candidate.PageCount))
		}
	}

	if len(reasons) == 0 {
		if candidate.SimilarityScore != nil {
			return fmt.Sprintf("(Score: %d)", *candidate.SimilarityScore)
		}
		return noReasons
	}

	return strings.Join(reasons, "; ")
}

// sharedTokens returns the seed tokens (lowercased) also present in the
// candidate's tokens, preserving seed order.
func sharedTokens(seed, candidate []string) []string {
	candidateSet := tokenSet(candidate)
	var shared []string
	for _, t := range lowerTokens(seed) {
		if _, ok := candidateSet[t]; ok {
			shared = append(shared, t)
		}
	}
	return shared
}

// sharedKeywords intersects the description keyword sets, preserving the
// seed description's keyword order.
func sharedKeywords(seedDescription, candidateDescription string) []string {
	seedOrdered, _ := descriptionKeywords(seedDescription)
	_, candidateSet := descriptionKeywords(candidateDescription)

	var shared []string
	for _, kw := range seedOrdered {
		if _, ok := candidateSet[kw]; ok {
			shared = append(shared, kw)
		}
	}
	return shared
}

// capitalize title-cases each token for display.
func capitalize(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = titleCase(t)
	}
	return out
}
