package discovery

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func pageOf(prefix string, n, offset int) []domain.BookSummary {
	page := make([]domain.BookSummary, 0, n)
	for i := 0; i < n; i++ {
		id := prefix + string(rune('a'+offset+i))
		page = append(page, book(id, "Title "+id, nil, nil))
	}
	return page
}

func TestCollect_QuotaMetOnFirstPage(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"fiction": {pageOf("p", 10, 0)},
	}}
	c := NewController(fetcher, testLogger())

	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 10, MaxAttempts: 3, PageSize: 10}, nil)

	assert.Len(t, result.Books, 10)
	assert.Zero(t, result.FailedPages)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestCollect_OffsetAdvancesFullPagePerAttempt(t *testing.T) {
	// Every candidate is excluded, so each attempt contributes nothing. The
	// offset still advances by a full page each time.
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"fiction": {pageOf("p", 10, 0), pageOf("q", 10, 0), pageOf("r", 10, 0)},
	}}
	c := NewController(fetcher, testLogger())

	excludeAll := func(domain.BookSummary) bool { return true }
	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 10, MaxAttempts: 3, PageSize: 10}, excludeAll)

	assert.Empty(t, result.Books)
	assert.Equal(t, 3, fetcher.callCount())
	assert.Equal(t, []fetchCall{
		{query: "fiction", pageSize: 10, startIndex: 0},
		{query: "fiction", pageSize: 10, startIndex: 10},
		{query: "fiction", pageSize: 10, startIndex: 20},
	}, fetcher.calls)
}

func TestCollect_AllPagesFail(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("provider down")}
	c := NewController(fetcher, testLogger())

	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 10, MaxAttempts: 3, PageSize: 10}, nil)

	assert.Empty(t, result.Books)
	assert.Equal(t, 3, result.FailedPages)
	assert.Equal(t, 3, fetcher.callCount())
}

func TestCollect_DeduplicatesAcrossPages(t *testing.T) {
	shared := book("dup", "Duplicate", nil, nil)
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"fiction": {
			{shared, book("v1", "One", nil, nil)},
			{shared, book("v2", "Two", nil, nil)},
		},
	}}
	c := NewController(fetcher, testLogger())

	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 10, MaxAttempts: 2, PageSize: 2}, nil)

	ids := make([]string, 0, len(result.Books))
	for _, b := range result.Books {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"dup", "v1", "v2"}, ids)
}

func TestCollect_TruncatesToQuota(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"fiction": {pageOf("p", 10, 0)},
	}}
	c := NewController(fetcher, testLogger())

	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 4, MaxAttempts: 3, PageSize: 10}, nil)

	assert.Len(t, result.Books, 4)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestCollect_StopsWhenQuotaReachedBeforeAttemptBudget(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"fiction": {pageOf("p", 5, 0), pageOf("q", 5, 0), pageOf("r", 5, 0)},
	}}
	c := NewController(fetcher, testLogger())

	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 10, MaxAttempts: 3, PageSize: 5}, nil)

	assert.Len(t, result.Books, 10)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCollect_PreservesProviderOrder(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"fiction": {{
			book("z", "Zebra", nil, nil),
			book("a", "Aardvark", nil, nil),
			book("m", "Middle", nil, nil),
		}},
	}}
	c := NewController(fetcher, testLogger())

	result := c.Collect(context.Background(), "fiction", Params{TargetQuota: 3, MaxAttempts: 1, PageSize: 3}, nil)

	assert.Equal(t, "z", result.Books[0].ID)
	assert.Equal(t, "a", result.Books[1].ID)
	assert.Equal(t, "m", result.Books[2].ID)
}
