package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

func TestCategorize_BucketsPerGenre(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"subject:Fantasy": {{
			book("f1", "Fantasy One", nil, []string{"Fantasy"}),
			book("f2", "Fantasy Two", nil, []string{"Fantasy"}),
		}},
		"subject:Mystery": {{
			book("m1", "Mystery One", nil, []string{"Mystery"}),
		}},
		// No page for Horror: the provider has nothing for it.
	}}
	controller := NewController(fetcher, testLogger())
	categorizer := NewCategorizer(controller, []string{"Fantasy", "Mystery", "Horror"}, 2, testLogger())

	got := categorizer.Categorize(context.Background(), Params{TargetQuota: 4, MaxAttempts: 1, PageSize: 10}, nil)

	assert.Len(t, got, 2)
	assert.Len(t, got["Fantasy"], 2)
	assert.Len(t, got["Mystery"], 1)
	// Genres with no surviving candidates are absent, not empty.
	_, ok := got["Horror"]
	assert.False(t, ok)
}

func TestCategorize_EmptyGenreListMakesNoRequests(t *testing.T) {
	fetcher := &stubFetcher{}
	controller := NewController(fetcher, testLogger())
	categorizer := NewCategorizer(controller, nil, 4, testLogger())

	got := categorizer.Categorize(context.Background(), Params{TargetQuota: 4, MaxAttempts: 3, PageSize: 10}, nil)

	assert.Empty(t, got)
	assert.Zero(t, fetcher.callCount())
}

func TestCategorize_ExclusionAppliesPerBucket(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"subject:Fantasy": {{
			book("keep", "Keeper", nil, []string{"Fantasy"}),
			book("drop", "Dropped", nil, []string{"Fantasy"}),
		}},
	}}
	controller := NewController(fetcher, testLogger())
	categorizer := NewCategorizer(controller, []string{"Fantasy"}, 1, testLogger())

	exclude := func(b domain.BookSummary) bool { return b.ID == "drop" }
	got := categorizer.Categorize(context.Background(), Params{TargetQuota: 4, MaxAttempts: 1, PageSize: 10}, exclude)

	assert.Len(t, got["Fantasy"], 1)
	assert.Equal(t, "keep", got["Fantasy"][0].ID)
}

func TestCategorize_OneGenreFailureDoesNotAbortOthers(t *testing.T) {
	// The stub returns pages only for Fantasy; Mystery yields empty pages,
	// which is indistinguishable from a failed genre at the mapping level.
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"subject:Fantasy": {{book("f1", "Fantasy One", nil, []string{"Fantasy"})}},
	}}
	controller := NewController(fetcher, testLogger())
	categorizer := NewCategorizer(controller, []string{"Mystery", "Fantasy"}, 2, testLogger())

	got := categorizer.Categorize(context.Background(), Params{TargetQuota: 4, MaxAttempts: 2, PageSize: 10}, nil)

	assert.Len(t, got, 1)
	assert.Len(t, got["Fantasy"], 1)
}

func TestCategorize_BucketSizeBounded(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][][]domain.BookSummary{
		"subject:Fantasy": {pageOf("f", 10, 0)},
	}}
	controller := NewController(fetcher, testLogger())
	categorizer := NewCategorizer(controller, []string{"Fantasy"}, 1, testLogger())

	got := categorizer.Categorize(context.Background(), Params{TargetQuota: 4, MaxAttempts: 3, PageSize: 10}, nil)

	assert.Len(t, got["Fantasy"], 4)
}

func TestGenres_ReturnsConfiguredOrder(t *testing.T) {
	controller := NewController(&stubFetcher{}, testLogger())
	genres := []string{"Fantasy", "Science Fiction", "Mystery"}
	categorizer := NewCategorizer(controller, genres, 4, testLogger())

	assert.Equal(t, genres, categorizer.Genres())
}
