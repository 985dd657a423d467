package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// FetchPage queries the catalog for one page of volumes matching the query.
// The query may carry qualifiers such as `subject:<genre>` or
// `inauthor:"<name>"`, which the provider interprets server-side.
//
// An absent items array is an empty result, not an error. Transport and
// provider failures surface as errors; callers degrade them to zero items.
func (c *Client) FetchPage(ctx context.Context, query string, pageSize, startIndex int) ([]domain.BookSummary, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("startIndex", strconv.Itoa(startIndex))

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("fetching catalog page",
		"query", query,
		"page_size", pageSize,
		"start_index", startIndex,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to parsing.
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("catalog: unexpected status %d", resp.StatusCode)
	}

	var volumes volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumes); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("catalog page fetched",
		"query", query,
		"count", len(volumes.Items),
		"total_items", volumes.TotalItems,
	)

	results := make([]domain.BookSummary, 0, len(volumes.Items))
	for i := range volumes.Items {
		results = append(results, volumes.Items[i].toSummary())
	}

	return results, nil
}
