// Package service provides the business logic layer for discovery sessions
// and recommendation assembly.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookhavenapp/bookhaven-server/internal/catalog"
	"github.com/bookhavenapp/bookhaven-server/internal/config"
	"github.com/bookhavenapp/bookhaven-server/internal/discovery"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/genre"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// DiscoverySession is one user's discovery state: their reading list and the
// engine holding fetched result sets and the dismissal set.
type DiscoverySession struct {
	ID          string
	ReadingList []domain.ReadingListEntry
	Engine      *discovery.Engine
	CreatedAt   time.Time
}

// RecommendedBook is a candidate annotated with its human-readable reason.
// The reason is present only for seeded recommendation views.
type RecommendedBook struct {
	domain.BookSummary
	Reason string `json:"reason,omitempty"`
}

// DiscoveryService orchestrates discovery sessions over the external catalog.
type DiscoveryService struct {
	catalog     *catalog.Client
	store       *store.Store
	controller  *discovery.Controller
	categorizer *discovery.Categorizer
	cfg         config.DiscoveryConfig
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*DiscoverySession
}

// NewDiscoveryService creates a discovery service. The controller and
// categorizer are shared across sessions; per-session state lives in each
// session's engine.
func NewDiscoveryService(client *catalog.Client, st *store.Store, cfg config.DiscoveryConfig, logger *slog.Logger) *DiscoveryService {
	controller := discovery.NewController(client, logger)
	return &DiscoveryService{
		catalog:     client,
		store:       st,
		controller:  controller,
		categorizer: discovery.NewCategorizer(controller, genre.BrowseGenres, cfg.CategoryWorkers, logger),
		cfg:         cfg,
		logger:      logger,
		sessions:    make(map[string]*DiscoverySession),
	}
}

// CreateSession starts a discovery session for a reading list. Dismissals
// recorded under the session id persist in the store.
func (s *DiscoveryService) CreateSession(ctx context.Context, readingList []domain.ReadingListEntry) (*DiscoverySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	engine := discovery.NewEngine(discovery.EngineConfig{
		Controller:  s.controller,
		Categorizer: s.categorizer,
		Dismissed:   s.store.NotInterestedForSession(sessionID),
		Params: discovery.Params{
			TargetQuota: s.cfg.TargetQuota,
			MaxAttempts: s.cfg.MaxAttempts,
			PageSize:    s.cfg.PageSize,
		},
		CategoryParams: discovery.Params{
			TargetQuota: s.cfg.CategoryTarget,
			MaxAttempts: s.cfg.MaxAttempts,
			PageSize:    s.cfg.PageSize,
		},
		Logger: s.logger,
	})

	session := &DiscoverySession{
		ID:          sessionID,
		ReadingList: readingList,
		Engine:      engine,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	s.logger.Info("discovery session created",
		"session_id", sessionID,
		"reading_list_size", len(readingList),
	)

	return session, nil
}

// Session looks up a session by id.
func (s *DiscoveryService) Session(sessionID string) (*DiscoverySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domainerrors.NotFound("Discovery session not found")
	}
	return session, nil
}

// DeleteSession removes a session and its persisted dismissals.
func (s *DiscoveryService) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return domainerrors.NotFound("Discovery session not found")
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session dismissals: %w", err)
	}

	s.logger.Info("discovery session deleted", "session_id", sessionID)
	return nil
}

// defaultSearchQuery drives suggestions when the caller supplies no query.
const defaultSearchQuery = "fiction best sellers"

// Search runs a free-text catalog search. Stateless: results are not held
// by any session and nothing is filtered. An empty query falls back to the
// general suggestion query; a non-positive limit falls back to the
// configured page size.
func (s *DiscoveryService) Search(ctx context.Context, query string, limit int) ([]domain.BookSummary, error) {
	if query == "" {
		query = defaultSearchQuery
		s.logger.Debug("empty search query, using suggestion default", "query", query)
	}
	if limit <= 0 {
		limit = s.cfg.SearchPageSize
	}

	books, err := s.catalog.FetchPage(ctx, query, limit, 0)
	if err != nil {
		return nil, s.catalogError(err)
	}
	return books, nil
}

// Recommend assembles the session's ranked recommendation list. A nil seed
// runs general discovery; results then carry no scores or reasons.
func (s *DiscoveryService) Recommend(ctx context.Context, sessionID string, seed *domain.BookSummary) ([]RecommendedBook, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	books, err := session.Engine.Recommend(ctx, session.ReadingList, seed)
	if err != nil {
		return nil, fmt.Errorf("assemble recommendations: %w", err)
	}

	return annotate(seed, books), nil
}

// Categorize assembles the session's per-genre browse view.
func (s *DiscoveryService) Categorize(ctx context.Context, sessionID string) (map[string][]domain.BookSummary, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	categorized, err := session.Engine.Categorize(ctx, session.ReadingList)
	if err != nil {
		return nil, fmt.Errorf("assemble categories: %w", err)
	}
	return categorized, nil
}

// MarkNotInterested records a dismissal and prunes the session's held
// result sets.
func (s *DiscoveryService) MarkNotInterested(ctx context.Context, sessionID, bookID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}

	if err := session.Engine.MarkNotInterested(ctx, bookID); err != nil {
		return fmt.Errorf("record dismissal: %w", err)
	}

	s.logger.Debug("book dismissed", "session_id", sessionID, "book_id", bookID)
	return nil
}

// Recommendations applies the refinement view over the session's held ranked
// list. Purely in-memory: no catalog requests. An empty result with no prior
// Recommend call is not an error.
func (s *DiscoveryService) Recommendations(sessionID string, opts discovery.RefineOptions) ([]RecommendedBook, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	refined, seed := session.Engine.RankedView(opts)
	return annotate(seed, refined), nil
}

// Categories returns the session's held browse view.
func (s *DiscoveryService) Categories(sessionID string) (map[string][]domain.BookSummary, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Engine.Categories(), nil
}

// annotate attaches reasons to candidates when a seed is held. Without a
// seed the candidates pass through reasonless.
func annotate(seed *domain.BookSummary, books []domain.BookSummary) []RecommendedBook {
	annotated := make([]RecommendedBook, 0, len(books))
	for _, b := range books {
		rec := RecommendedBook{BookSummary: b}
		if seed != nil {
			rec.Reason = discovery.Reason(*seed, b)
		}
		annotated = append(annotated, rec)
	}
	return annotated
}

// catalogError maps catalog client failures onto domain errors so handlers
// can render the right status.
func (s *DiscoveryService) catalogError(err error) error {
	switch {
	case domainerrors.Is(err, catalog.ErrBadRequest):
		return domainerrors.Validation("Catalog rejected the search query").WithCause(err)
	case domainerrors.Is(err, catalog.ErrRateLimited):
		return domainerrors.Unavailable("Catalog rate limit exceeded, retry later").WithCause(err)
	case domainerrors.Is(err, catalog.ErrServer):
		return domainerrors.Unavailable("Catalog is temporarily unavailable").WithCause(err)
	default:
		return fmt.Errorf("catalog search: %w", err)
	}
}
