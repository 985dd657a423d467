// Package catalog provides a client for the external book catalog volumes API.
package catalog

import (
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// volumesResponse is the raw catalog API response.
type volumesResponse struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

// rawVolume is a single catalog record before normalization.
type rawVolume struct {
	ID         string        `json:"id"`
	VolumeInfo rawVolumeInfo `json:"volumeInfo"`
}

type rawVolumeInfo struct {
	Title         string        `json:"title"`
	Authors       []string      `json:"authors"`
	Description   string        `json:"description"`
	Categories    []string      `json:"categories"`
	ImageLinks    rawImageLinks `json:"imageLinks"`
	AverageRating float64       `json:"averageRating"`
	RatingsCount  int           `json:"ratingsCount"`
	PageCount     int           `json:"pageCount"`
	PublishedDate string        `json:"publishedDate"`
}

type rawImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// toSummary normalizes a raw volume into a BookSummary, substituting
// sentinel defaults for missing provider fields.
func (v *rawVolume) toSummary() domain.BookSummary {
	info := v.VolumeInfo

	title := info.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	authors := cleanTokens(info.Authors)
	if len(authors) == 0 {
		authors = []string{domain.DefaultAuthor}
	}

	description := info.Description
	if description == "" {
		description = domain.DefaultDescription
	}

	genres := cleanTokens(info.Categories)
	if len(genres) == 0 {
		genres = []string{domain.DefaultGenre}
	}

	coverURL := info.ImageLinks.Thumbnail
	if coverURL == "" {
		coverURL = info.ImageLinks.SmallThumbnail
	}
	if coverURL == "" {
		coverURL = domain.DefaultCoverURL
	}

	published := info.PublishedDate
	if published == "" {
		published = domain.DefaultPublished
	}

	return domain.BookSummary{
		ID:            v.ID,
		Title:         title,
		Authors:       authors,
		Description:   description,
		Genres:        genres,
		CoverImageURL: coverURL,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		PageCount:     info.PageCount,
		PublishedDate: published,
	}
}

// cleanTokens trims whitespace and drops empty entries, preserving order.
func cleanTokens(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
