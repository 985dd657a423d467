package discovery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// Categorizer assembles the per-genre browse view by running the retrieval
// controller once per genre.
type Categorizer struct {
	controller *Controller
	genres     []string
	workers    int
	logger     *slog.Logger
}

// NewCategorizer creates a categorizer over a fixed ordered genre list.
// workers bounds how many genres are fetched at once; 1 means sequential.
func NewCategorizer(controller *Controller, genres []string, workers int, logger *slog.Logger) *Categorizer {
	if workers < 1 {
		workers = 1
	}
	return &Categorizer{
		controller: controller,
		genres:     genres,
		workers:    workers,
		logger:     logger,
	}
}

// Genres returns the configured genre list in display order.
func (c *Categorizer) Genres() []string {
	return c.genres
}

// Categorize fetches a candidate bucket per genre with query
// `subject:<genre>`. A genre appears in the mapping only when at least one
// candidate survived filtering. One genre's failure never aborts the others.
//
// Genres fan out across a fixed-size worker pool; each bucket is assembled
// independently, so the output contract matches a sequential pass. The
// catalog client's rate limiter keeps the fan-out within provider limits.
func (c *Categorizer) Categorize(ctx context.Context, p Params, exclude ExcludeFunc) map[string][]domain.BookSummary {
	if len(c.genres) == 0 {
		return map[string][]domain.BookSummary{}
	}

	buckets := make([][]domain.BookSummary, len(c.genres))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.workers)

	for i, genre := range c.genres {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := c.controller.Collect(ctx, "subject:"+genre, p, exclude)
			if result.FailedPages > 0 {
				c.logger.Warn("genre bucket assembled with failed pages",
					"genre", genre,
					"failed_pages", result.FailedPages,
				)
			}
			buckets[i] = result.Books
		}()
	}

	wg.Wait()

	categorized := make(map[string][]domain.BookSummary)
	for i, genre := range c.genres {
		if len(buckets[i]) > 0 {
			categorized[genre] = buckets[i]
		}
	}
	return categorized
}
