package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookhavenapp/bookhaven-server/internal/discovery"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/http/response"
)

// maxSearchLimit caps the search limit parameter at the catalog provider's
// per-request maximum.
const maxSearchLimit = 40

// ReadingListEntryRequest is one owned or saved book in the user's list.
type ReadingListEntryRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author"`
}

// CreateSessionRequest represents the request body for starting a session.
type CreateSessionRequest struct {
	ReadingList []ReadingListEntryRequest `json:"reading_list" validate:"dive"`
}

// SeedBookRequest is the seed candidate recommendations are scored against.
type SeedBookRequest struct {
	ID            string   `json:"id"`
	Title         string   `json:"title" validate:"required"`
	Authors       []string `json:"authors"`
	Genres        []string `json:"genres"`
	Description   string   `json:"description"`
	AverageRating float64  `json:"average_rating" validate:"gte=0,lte=5"`
	PageCount     int      `json:"page_count" validate:"gte=0"`
}

// RecommendRequest represents the request body for assembling
// recommendations. A missing seed runs general discovery.
type RecommendRequest struct {
	Seed *SeedBookRequest `json:"seed"`
}

// NotInterestedRequest represents the request body for dismissing a book.
type NotInterestedRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

// SessionResponse is the public view of a discovery session.
type SessionResponse struct {
	ID              string `json:"id"`
	ReadingListSize int    `json:"reading_list_size"`
	CreatedAt       string `json:"created_at"`
}

// handleCreateSession starts a discovery session for a reading list.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	readingList := make([]domain.ReadingListEntry, 0, len(req.ReadingList))
	for _, entry := range req.ReadingList {
		readingList = append(readingList, domain.ReadingListEntry{
			Title:  entry.Title,
			Author: entry.Author,
		})
	}

	session, err := s.discoveryService.CreateSession(ctx, readingList)
	if err != nil {
		s.logger.Error("Failed to create discovery session", "error", err)
		response.InternalError(w, "Failed to create discovery session", s.logger)
		return
	}

	response.Created(w, SessionResponse{
		ID:              session.ID,
		ReadingListSize: len(session.ReadingList),
		CreatedAt:       session.CreatedAt.UTC().Format(time.RFC3339),
	}, s.logger)
}

// handleDeleteSession removes a session and its persisted dismissals.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	if err := s.discoveryService.DeleteSession(ctx, sessionID); err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSearch runs a stateless free-text catalog search. An empty q is
// allowed; the service substitutes the suggestion default.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxSearchLimit {
			response.BadRequest(w, "Limit must be an integer between 1 and 40", s.logger)
			return
		}
		limit = parsed
	}

	books, err := s.discoveryService.Search(ctx, query, limit)
	if err != nil {
		s.logger.Error("Catalog search failed", "error", err, "query", query)
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleRecommend assembles the session's ranked recommendation list.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	var req RecommendRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	var seed *domain.BookSummary
	if req.Seed != nil {
		seed = &domain.BookSummary{
			ID:            req.Seed.ID,
			Title:         req.Seed.Title,
			Authors:       req.Seed.Authors,
			Genres:        req.Seed.Genres,
			Description:   req.Seed.Description,
			AverageRating: req.Seed.AverageRating,
			PageCount:     req.Seed.PageCount,
		}
	}

	books, err := s.discoveryService.Recommend(ctx, sessionID, seed)
	if err != nil {
		s.logger.Error("Failed to assemble recommendations", "error", err, "session_id", sessionID)
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetRecommendations returns the held ranked list through the
// refinement view. Purely in-memory; an empty list before any POST is fine.
func (s *Server) handleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	opts, ok := s.parseRefineOptions(w, r)
	if !ok {
		return
	}

	books, err := s.discoveryService.Recommendations(sessionID, opts)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleCategorize assembles the session's per-genre browse view.
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	categorized, err := s.discoveryService.Categorize(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to assemble categories", "error", err, "session_id", sessionID)
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, categorized, s.logger)
}

// handleGetCategories returns the held browse view.
func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	categorized, err := s.discoveryService.Categories(sessionID)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, categorized, s.logger)
}

// handleNotInterested dismisses a book for the session.
func (s *Server) handleNotInterested(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	var req NotInterestedRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	if err := s.discoveryService.MarkNotInterested(ctx, sessionID, req.BookID); err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// parseRefineOptions reads the refinement query parameters. Writes the error
// response itself and reports false on invalid input.
func (s *Server) parseRefineOptions(w http.ResponseWriter, r *http.Request) (discovery.RefineOptions, bool) {
	opts := discovery.RefineOptions{
		Genre: r.URL.Query().Get("genre"),
	}

	switch sort := r.URL.Query().Get("sort"); sort {
	case "":
	case "similarity", "rating", "title", "author":
		opts.SortBy = discovery.SortKey(sort)
	default:
		response.BadRequest(w, "Sort must be one of: similarity, rating, title, author", s.logger)
		return opts, false
	}

	switch order := r.URL.Query().Get("order"); order {
	case "":
	case "asc", "desc":
		opts.Order = discovery.SortOrder(order)
	default:
		response.BadRequest(w, "Order must be asc or desc", s.logger)
		return opts, false
	}

	if minRating := r.URL.Query().Get("min_rating"); minRating != "" {
		parsed, err := strconv.ParseFloat(minRating, 64)
		if err != nil || parsed < 0 || parsed > 5 {
			response.BadRequest(w, "Minimum rating must be a number between 0 and 5", s.logger)
			return opts, false
		}
		opts.MinRating = parsed
	}

	return opts, true
}
