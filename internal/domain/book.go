// Package domain contains the core business entities for the BookHaven discovery engine.
package domain

import "strings"

// Sentinel defaults substituted for missing catalog provider fields.
const (
	DefaultTitle       = "N/A"
	DefaultAuthor      = "N/A"
	DefaultDescription = "No description available."
	DefaultGenre       = "General"
	DefaultCoverURL    = "https://placehold.co/100x150/FDF8ED/5A4434?text=No+Cover"
	DefaultPublished   = "N/A"
)

// BookSummary is the canonical normalized representation of a catalog record.
// Summaries are constructed fresh per query and never mutated afterwards,
// except for the SimilarityScore annotation applied before ranking.
type BookSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
	CoverImageURL string   `json:"cover_image_url"`
	AverageRating float64  `json:"average_rating"`
	RatingsCount  int      `json:"ratings_count"`
	PageCount     int      `json:"page_count"`
	PublishedDate string   `json:"published_date"`

	// SimilarityScore is set only for seeded recommendations, in [0,100].
	SimilarityScore *int `json:"similarity_score,omitempty"`
}

// ReadingListEntry is the read-only shape the engine needs from the caller's
// reading list. Author may hold several comma-separated names, matching the
// catalog's display form.
type ReadingListEntry struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// PrimaryAuthor returns the first author for display, or the sentinel default.
func (b *BookSummary) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return DefaultAuthor
	}
	return b.Authors[0]
}

// AuthorDisplay joins all authors for display and membership matching.
func (b *BookSummary) AuthorDisplay() string {
	if len(b.Authors) == 0 {
		return DefaultAuthor
	}
	return strings.Join(b.Authors, ", ")
}

// GenreDisplay joins all genres for display.
func (b *BookSummary) GenreDisplay() string {
	if len(b.Genres) == 0 {
		return DefaultGenre
	}
	return strings.Join(b.Genres, ", ")
}

// Score returns the similarity score, or 0 when the book has not been scored.
func (b *BookSummary) Score() int {
	if b.SimilarityScore == nil {
		return 0
	}
	return *b.SimilarityScore
}

// SetScore annotates the summary with a similarity score.
func (b *BookSummary) SetScore(score int) {
	b.SimilarityScore = &score
}
