package discovery

import (
	"context"
	"sync"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// fetchCall records one FetchPage invocation.
type fetchCall struct {
	query      string
	pageSize   int
	startIndex int
}

// stubFetcher serves canned pages keyed by query and page number.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string][][]domain.BookSummary
	err   error
	calls []fetchCall
}

func (f *stubFetcher) FetchPage(_ context.Context, query string, pageSize, startIndex int) ([]domain.BookSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fetchCall{query: query, pageSize: pageSize, startIndex: startIndex})

	if f.err != nil {
		return nil, f.err
	}

	page := 0
	if pageSize > 0 {
		page = startIndex / pageSize
	}
	queryPages := f.pages[query]
	if page >= len(queryPages) {
		return nil, nil
	}
	return queryPages[page], nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func book(id, title string, authors, genres []string) domain.BookSummary {
	return domain.BookSummary{
		ID:          id,
		Title:       title,
		Authors:     authors,
		Genres:      genres,
		Description: domain.DefaultDescription,
	}
}
