package discovery

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// generalQuery drives discovery when no seed book is supplied.
const generalQuery = "bestsellers fiction"

// Operation names for the per-operation fetch state machine.
const (
	opRecommend  = "recommend"
	opCategorize = "categorize"
)

// opPhase is the per-operation fetch state.
type opPhase int

const (
	phaseIdle opPhase = iota
	phaseFetching
)

// opState tracks one operation's phase and request epoch. A completion
// whose epoch is no longer the latest is discarded, so a slow early run can
// never overwrite the results of a later one.
type opState struct {
	phase opPhase
	epoch uint64
}

// Engine is one user session's discovery state: the monotonic dismissal set
// and the currently held result sets. Everything fetched flows through the
// exclusion filter; everything held is pruned when a dismissal arrives.
type Engine struct {
	controller  *Controller
	categorizer *Categorizer
	dismissed   NotInterestedStore
	params      Params
	catParams   Params
	logger      *slog.Logger

	mu         sync.Mutex
	seed       *domain.BookSummary
	ranked     []domain.BookSummary
	categories map[string][]domain.BookSummary
	ops        map[string]*opState
}

// EngineConfig assembles an Engine.
type EngineConfig struct {
	Controller  *Controller
	Categorizer *Categorizer
	Dismissed   NotInterestedStore
	// Params bounds ranked recommendation runs.
	Params Params
	// CategoryParams bounds per-genre browse runs.
	CategoryParams Params
	Logger         *slog.Logger
}

// NewEngine creates a discovery engine for one session.
func NewEngine(cfg EngineConfig) *Engine {
	dismissed := cfg.Dismissed
	if dismissed == nil {
		dismissed = NewMemoryNotInterested()
	}
	return &Engine{
		controller:  cfg.Controller,
		categorizer: cfg.Categorizer,
		dismissed:   dismissed,
		params:      cfg.Params,
		catParams:   cfg.CategoryParams,
		logger:      cfg.Logger,
		categories:  make(map[string][]domain.BookSummary),
		ops:         make(map[string]*opState),
	}
}

// Recommend assembles the ranked recommendation list. With a seed the
// catalog query is built from the seed's first genre and first author and
// results are scored and ranked; without one a general discovery query runs
// and results keep provider order, unscored.
//
// The engine holds the outcome as its current ranked list unless a newer
// Recommend started while this one was in flight.
func (e *Engine) Recommend(ctx context.Context, readingList []domain.ReadingListEntry, seed *domain.BookSummary) ([]domain.BookSummary, error) {
	epoch := e.begin(opRecommend)

	query := generalQuery
	if seed != nil {
		query = SeedQuery(*seed)
	}

	exclude, err := e.excluder(ctx, readingList)
	if err != nil {
		return nil, err
	}

	result := e.controller.Collect(ctx, query, e.params, exclude)
	books := result.Books
	if seed != nil {
		Rank(*seed, books)
	}

	// Hold a private copy. The returned slice stays with the caller and must
	// never share a backing array with state a later dismissal prunes.
	e.complete(opRecommend, epoch, func() {
		e.seed = seed
		e.ranked = slices.Clone(books)
	})

	return books, nil
}

// Categorize assembles the per-genre browse mapping and holds it as the
// current category view unless a newer Categorize started meanwhile.
func (e *Engine) Categorize(ctx context.Context, readingList []domain.ReadingListEntry) (map[string][]domain.BookSummary, error) {
	epoch := e.begin(opCategorize)

	exclude, err := e.excluder(ctx, readingList)
	if err != nil {
		return nil, err
	}

	categorized := e.categorizer.Categorize(ctx, e.catParams, exclude)

	// Hold a private copy, same as Recommend: the caller serializes the
	// returned map without the engine mutex.
	e.complete(opCategorize, epoch, func() {
		held := make(map[string][]domain.BookSummary, len(categorized))
		for genre, bucket := range categorized {
			held[genre] = slices.Clone(bucket)
		}
		e.categories = held
	})

	return categorized, nil
}

// MarkNotInterested appends an id to the dismissal set and removes it from
// every currently held result set in the same logical step. Category
// buckets that empty out disappear from the mapping.
func (e *Engine) MarkNotInterested(ctx context.Context, id string) error {
	if err := e.dismissed.Add(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.ranked = slices.DeleteFunc(e.ranked, func(b domain.BookSummary) bool {
		return b.ID == id
	})

	for genre, bucket := range e.categories {
		pruned := slices.DeleteFunc(bucket, func(b domain.BookSummary) bool {
			return b.ID == id
		})
		if len(pruned) == 0 {
			delete(e.categories, genre)
		} else {
			e.categories[genre] = pruned
		}
	}

	return nil
}

// Ranked returns a snapshot of the held ranked list and its seed.
func (e *Engine) Ranked() ([]domain.BookSummary, *domain.BookSummary) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.ranked), e.seed
}

// Categories returns a snapshot of the held browse mapping.
func (e *Engine) Categories() map[string][]domain.BookSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := make(map[string][]domain.BookSummary, len(e.categories))
	for genre, bucket := range e.categories {
		snapshot[genre] = slices.Clone(bucket)
	}
	return snapshot
}

// RankedView applies the refinement layer over the held ranked list. The
// held seed is always excluded from the view; opts.Seed is overridden.
func (e *Engine) RankedView(opts RefineOptions) ([]domain.BookSummary, *domain.BookSummary) {
	ranked, seed := e.Ranked()
	opts.Seed = seed
	return Refine(ranked, opts), seed
}

// excluder snapshots the dismissal set and closes the exclusion predicate
// over it and the caller's reading list.
func (e *Engine) excluder(ctx context.Context, readingList []domain.ReadingListEntry) (ExcludeFunc, error) {
	ids, err := e.dismissed.IDs(ctx)
	if err != nil {
		return nil, err
	}
	dismissed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		dismissed[id] = struct{}{}
	}
	return Excluder(readingList, func(id string) bool {
		_, ok := dismissed[id]
		return ok
	}), nil
}

// begin advances the operation's epoch and marks it fetching. A newer run
// supersedes an in-flight one; the older completion will be discarded.
func (e *Engine) begin(op string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.ops[op]
	if !ok {
		st = &opState{}
		e.ops[op] = st
	}
	if st.phase == phaseFetching {
		e.logger.Debug("superseding in-flight operation", "op", op, "epoch", st.epoch)
	}
	st.epoch++
	st.phase = phaseFetching
	return st.epoch
}

// complete applies the result only when the epoch is still the latest.
func (e *Engine) complete(op string, epoch uint64, apply func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.ops[op]
	if st == nil || st.epoch != epoch {
		e.logger.Debug("discarding stale operation result", "op", op, "epoch", epoch)
		return
	}
	st.phase = phaseIdle
	apply()
}

// DismissedIDs exposes a snapshot of the dismissal set.
func (e *Engine) DismissedIDs(ctx context.Context) ([]string, error) {
	return e.dismissed.IDs(ctx)
}

// HeldCategories reports the genres currently held, in no particular order.
func (e *Engine) HeldCategories() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Collect(maps.Keys(e.categories))
}
