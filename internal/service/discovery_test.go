package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/catalog"
	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/discovery"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// volumeJSON renders one raw catalog volume.
func volumeJSON(id, title, author, genre string, rating float64) string {
	return fmt.Sprintf(`{
		"id": %q,
		"volumeInfo": {
			"title": %q,
			"authors": [%q],
			"categories": [%q],
			"averageRating": %g,
			"description": "A tale of adventure and discovery."
		}
	}`, id, title, author, genre, rating)
}

// setupDiscoveryTest creates a discovery service backed by a fake catalog.
// The handler picks the response by the q parameter's substring.
func setupDiscoveryTest(t *testing.T, responses map[string]string) *DiscoveryService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		for fragment, body := range responses {
			if strings.Contains(q, fragment) {
				w.Write([]byte(body))
				return
			}
		}
		w.Write([]byte(`{"totalItems": 0}`))
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.DiscardHandler)

	client := catalog.NewClient(catalog.Options{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, logger)

	st, err := store.New("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DiscoveryConfig{
		TargetQuota:     10,
		MaxAttempts:     3,
		PageSize:        10,
		CategoryTarget:  4,
		CategoryWorkers: 2,
		SearchPageSize:  20,
	}

	return NewDiscoveryService(client, st, cfg, logger)
}

func TestDiscoveryService_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, nil)

	session, err := svc.CreateSession(ctx, []domain.ReadingListEntry{
		{Title: "Dune", Author: "Frank Herbert"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(session.ID, "sess-"))

	found, err := svc.Session(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	_, err = svc.Session(session.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	err = svc.DeleteSession(ctx, session.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestDiscoveryService_SeededRecommendationsCarryReasons(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, map[string]string{
		"subject:Fantasy": fmt.Sprintf(`{"totalItems": 2, "items": [%s, %s]}`,
			volumeJSON("v1", "Royal Assassin", "Robin Hobb", "Fantasy", 4.4),
			volumeJSON("v2", "Annual Report", "Acme Corp", "Business", 2.0),
		),
	})

	session, err := svc.CreateSession(ctx, nil)
	require.NoError(t, err)

	seed := &domain.BookSummary{
		Title:         "Assassin's Apprentice",
		Authors:       []string{"Robin Hobb"},
		Genres:        []string{"Fantasy"},
		AverageRating: 4.3,
	}

	recs, err := svc.Recommend(ctx, session.ID, seed)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Strongest match first, with a readable reason.
	assert.Equal(t, "v1", recs[0].ID)
	assert.Contains(t, recs[0].Reason, "Genre: Fantasy")
	assert.Contains(t, recs[0].Reason, "Author: Robin hobb")
	assert.Equal(t, 100, recs[0].Score())

	// The weak match falls back to its numeric score.
	assert.Equal(t, "(Score: 0)", recs[1].Reason)
}

func TestDiscoveryService_UnseededRecommendationsHaveNoReasons(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, map[string]string{
		"bestsellers fiction": fmt.Sprintf(`{"totalItems": 1, "items": [%s]}`,
			volumeJSON("v1", "Some Bestseller", "Anon", "Fiction", 4.0),
		),
	})

	session, err := svc.CreateSession(ctx, nil)
	require.NoError(t, err)

	recs, err := svc.Recommend(ctx, session.ID, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Empty(t, recs[0].Reason)
	assert.Nil(t, recs[0].SimilarityScore)
}

func TestDiscoveryService_MarkNotInterestedPrunesView(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, map[string]string{
		"bestsellers fiction": fmt.Sprintf(`{"totalItems": 2, "items": [%s, %s]}`,
			volumeJSON("drop", "Drop Me", "A", "Fiction", 3.0),
			volumeJSON("keep", "Keep Me", "B", "Fiction", 4.0),
		),
	})

	session, err := svc.CreateSession(ctx, nil)
	require.NoError(t, err)

	_, err = svc.Recommend(ctx, session.ID, nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkNotInterested(ctx, session.ID, "drop"))

	recs, err := svc.Recommendations(session.ID, discovery.RefineOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "keep", recs[0].ID)
}

func TestDiscoveryService_RecommendationsBeforeFetchIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, nil)

	session, err := svc.CreateSession(ctx, nil)
	require.NoError(t, err)

	recs, err := svc.Recommendations(session.ID, discovery.RefineOptions{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDiscoveryService_UnknownSession(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, nil)

	_, err := svc.Recommend(ctx, "sess-missing", nil)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	err = svc.MarkNotInterested(ctx, "sess-missing", "vol-1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestDiscoveryService_Categorize(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, map[string]string{
		"subject:Fantasy": fmt.Sprintf(`{"totalItems": 1, "items": [%s]}`,
			volumeJSON("f1", "Fantasy Pick", "Author", "Fantasy", 4.1),
		),
	})

	session, err := svc.CreateSession(ctx, nil)
	require.NoError(t, err)

	categorized, err := svc.Categorize(ctx, session.ID)
	require.NoError(t, err)

	// Only genres with at least one surviving candidate appear.
	require.Contains(t, categorized, "Fantasy")
	assert.Len(t, categorized, 1)
	assert.Equal(t, "f1", categorized["Fantasy"][0].ID)

	held, err := svc.Categories(session.ID)
	require.NoError(t, err)
	assert.Len(t, held["Fantasy"], 1)
}

func TestDiscoveryService_SearchDefaultsToSuggestionQuery(t *testing.T) {
	ctx := context.Background()
	svc := setupDiscoveryTest(t, map[string]string{
		"fiction best sellers": fmt.Sprintf(`{"totalItems": 1, "items": [%s]}`,
			volumeJSON("sug-1", "Suggested Pick", "Anon", "Fiction", 4.0),
		),
	})

	books, err := svc.Search(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "sug-1", books[0].ID)
}

func TestDiscoveryService_SearchErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.DiscardHandler)
	client := catalog.NewClient(catalog.Options{
		BaseURL:           server.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, logger)

	st, err := store.New("", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := NewDiscoveryService(client, st, config.DiscoveryConfig{
		TargetQuota: 10, MaxAttempts: 3, PageSize: 10,
		CategoryTarget: 4, CategoryWorkers: 2, SearchPageSize: 20,
	}, logger)

	_, err = svc.Search(context.Background(), "dune", 0)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
}
