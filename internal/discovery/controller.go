package discovery

import (
	"context"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// PageFetcher is the catalog dependency of the retrieval loop. The catalog
// client satisfies it; tests substitute stubs.
type PageFetcher interface {
	FetchPage(ctx context.Context, query string, pageSize, startIndex int) ([]domain.BookSummary, error)
}

// Params bounds a single retrieval run.
type Params struct {
	// TargetQuota is the number of novel candidates to collect.
	TargetQuota int
	// MaxAttempts bounds how many pages are fetched.
	MaxAttempts int
	// PageSize is the page size per attempt.
	PageSize int
}

// Result is the outcome of a retrieval run.
type Result struct {
	// Books holds at most TargetQuota novel candidates, provider order
	// preserved, no duplicate ids, none matching the exclusion test at
	// the moment it ran.
	Books []domain.BookSummary
	// FailedPages counts attempts that degraded to zero items because the
	// page fetch failed. Non-fatal; surfaced so callers can warn the user.
	FailedPages int
}

// Controller accumulates novel candidates from successive catalog pages
// until a quota is met or the attempt budget runs out.
type Controller struct {
	fetcher PageFetcher
	logger  *slog.Logger
}

// NewController creates a retrieval controller over a page fetcher.
func NewController(fetcher PageFetcher, logger *slog.Logger) *Controller {
	return &Controller{fetcher: fetcher, logger: logger}
}

// Collect runs the fetch-until-quota loop for one query.
//
// The offset advances by a full page per attempt regardless of how many of
// that page's items survived filtering. When the exclusion rate within a
// page is high this under-samples the tail of that page; the next attempt
// starts at the following page boundary anyway.
//
// A failed page fetch is logged and contributes zero items; the loop never
// aborts because of one page.
func (c *Controller) Collect(ctx context.Context, query string, p Params, exclude ExcludeFunc) Result {
	var result Result
	seen := make(map[string]struct{}, p.TargetQuota)

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if len(result.Books) >= p.TargetQuota {
			break
		}

		page, err := c.fetcher.FetchPage(ctx, query, p.PageSize, attempt*p.PageSize)
		if err != nil {
			c.logger.Warn("catalog page fetch failed, continuing",
				"query", query,
				"attempt", attempt,
				"error", err,
			)
			result.FailedPages++
			continue
		}

		for _, candidate := range page {
			if _, dup := seen[candidate.ID]; dup {
				continue
			}
			if exclude != nil && exclude(candidate) {
				continue
			}
			seen[candidate.ID] = struct{}{}
			result.Books = append(result.Books, candidate)
		}
	}

	if len(result.Books) > p.TargetQuota {
		result.Books = result.Books[:p.TargetQuota]
	}

	return result
}
