// Package state owns the application state of one browser session: the
// current recipe, the search results with their pagination cursor, and
// the persisted bookmark list.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// BookmarksKey is the storage key holding the JSON bookmark list.
const BookmarksKey = "bookmarks"

// DefaultResultsPerPage is the search page size.
const DefaultResultsPerPage = 10

// Option configures the store.
type Option func(*Store)

// WithResultsPerPage sets the search page size. Non-positive values are
// ignored.
func WithResultsPerPage(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// WithBookmarksKey overrides the storage key, letting several stores
// share one backend.
func WithBookmarksKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.bookmarksKey = key
		}
	}
}

// Store is the state of one session. Methods are safe for concurrent use;
// network calls run without holding the lock.
type Store struct {
	api          domain.RecipeAPI
	kv           domain.KeyValueStore
	log          *logger.Logger
	perPage      int
	bookmarksKey string

	mu        sync.Mutex
	recipe    *domain.Recipe
	search    domain.SearchState
	bookmarks []*domain.Recipe

	// In-flight recipe load. seq increases whenever a load for a new id
	// starts; a load only commits if its seq is still current.
	loads      singleflight.Group
	seq        uint64
	loadingID  string
	loadCtx    context.Context
	cancelLoad context.CancelFunc
}

// New creates an empty store. Call Init to restore bookmarks.
func New(api domain.RecipeAPI, kv domain.KeyValueStore, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		api:          api,
		kv:           kv,
		log:          log,
		perPage:      DefaultResultsPerPage,
		bookmarksKey: BookmarksKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.search.ResultsPerPage = s.perPage
	s.search.Page = 1
	return s
}

// Init restores the bookmark list from storage. A missing key leaves the
// list empty; an unreadable payload is logged and discarded.
func (s *Store) Init(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.bookmarksKey)
	if err != nil {
		return fmt.Errorf("state: read bookmarks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks = nil
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var stored []*domain.Recipe
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.log.Warn("discarding unreadable bookmarks: %v", err)
		return nil
	}
	seen := make(map[string]bool, len(stored))
	for _, r := range stored {
		if r == nil || r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		r.Bookmarked = true
		s.bookmarks = append(s.bookmarks, r)
	}
	s.log.Debug("restored %d bookmarks", len(s.bookmarks))
	return nil
}

// Recipe returns a copy of the current recipe, or nil if none is loaded.
func (s *Store) Recipe() *domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recipe.Clone()
}

// Search returns a snapshot of the search state.
func (s *Store) Search() domain.SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.search
	out.Results = append([]domain.SearchResult(nil), s.search.Results...)
	return out
}

// LoadRecipe fetches recipe id and makes it the current recipe. Starting a
// load for a different id cancels the one in flight, whose caller gets
// domain.ErrSuperseded. Concurrent loads of the same id share one fetch.
func (s *Store) LoadRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.Lock()
	if s.loadCtx == nil || s.loadingID != id {
		s.supersedeLocked()
		s.loadCtx, s.cancelLoad = context.WithCancel(context.WithoutCancel(ctx))
		s.loadingID = id
	}
	seq, loadCtx := s.seq, s.loadCtx
	s.mu.Unlock()

	ch := s.loads.DoChan(strconv.FormatUint(seq, 10), func() (any, error) {
		return s.api.GetRecipe(loadCtx, id)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq != seq {
		s.log.Debug("load of %s superseded", id)
		return nil, domain.ErrSuperseded
	}
	s.finishLoadLocked()
	if res.Err != nil {
		return nil, fmt.Errorf("state: load recipe %s: %w", id, res.Err)
	}

	fetched, _ := res.Val.(*domain.Recipe)
	if fetched == nil {
		return nil, fmt.Errorf("state: load recipe %s: %w", id, domain.ErrNotFound)
	}
	recipe := fetched.Clone()
	recipe.Bookmarked = s.bookmarkIndexLocked(recipe.ID) >= 0
	s.recipe = recipe
	s.log.Debug("loaded recipe %s (%q)", recipe.ID, recipe.Title)
	return recipe.Clone(), nil
}

// supersedeLocked cancels the in-flight load, if any, and invalidates
// every pending commit.
func (s *Store) supersedeLocked() {
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.seq++
	s.loadCtx, s.cancelLoad, s.loadingID = nil, nil, ""
}

func (s *Store) finishLoadLocked() {
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.loadCtx, s.cancelLoad, s.loadingID = nil, nil, ""
}

// LoadSearchResults runs query and replaces the results, resetting the
// page to 1. On failure the previous results are kept and the error is
// returned.
func (s *Store) LoadSearchResults(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	results, err := s.api.SearchRecipes(ctx, query)
	if err != nil {
		return fmt.Errorf("state: search %q: %w", query, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.search.Query = query
	s.search.Results = results
	s.search.Page = 1
	s.log.Debug("search %q: %d results", query, len(results))
	return nil
}

// ResultsPage returns results [(page-1)*size, page*size) clamped to the
// available length, and stores page as the current page. A page <= 0
// means the stored page.
func (s *Store) ResultsPage(page int) []domain.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page <= 0 {
		page = s.search.Page
	}
	s.search.Page = page

	n := len(s.search.Results)
	// Past the last page; also keeps the products below from overflowing.
	if page-1 > n/s.perPage {
		return []domain.SearchResult{}
	}
	start := (page - 1) * s.perPage
	end := page * s.perPage
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return append([]domain.SearchResult(nil), s.search.Results[start:end]...)
}

// UpdateServings rescales the current recipe to n servings. It reports
// false, leaving state untouched, when there is no recipe to scale or n is
// not positive.
func (s *Store) UpdateServings(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recipe == nil || len(s.recipe.Ingredients) == 0 || s.recipe.Servings <= 0 {
		s.log.Warn("no ingredients or servings found in the recipe")
		return false
	}
	if n <= 0 {
		s.log.Warn("servings must be greater than 0, got %d", n)
		return false
	}
	s.recipe.ScaleServings(n)
	return true
}

// AddBookmark appends a snapshot of recipe to the bookmark list and
// persists it. Adding an id that is already bookmarked is a no-op.
func (s *Store) AddBookmark(ctx context.Context, recipe *domain.Recipe) error {
	if recipe == nil || recipe.ID == "" {
		return errors.New("state: add bookmark: recipe has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bookmarkIndexLocked(recipe.ID) >= 0 {
		s.markCurrentLocked(recipe.ID, true)
		return nil
	}

	snap := recipe.Clone()
	snap.Bookmarked = true
	prev := s.bookmarks
	s.bookmarks = append(append([]*domain.Recipe(nil), prev...), snap)

	if err := s.persistLocked(ctx); err != nil {
		s.bookmarks = prev
		return err
	}
	s.markCurrentLocked(recipe.ID, true)
	s.log.Debug("bookmarked %s", recipe.ID)
	return nil
}

// RemoveBookmark drops id from the bookmark list and persists it. Unknown
// ids are a no-op.
func (s *Store) RemoveBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.bookmarkIndexLocked(id)
	if i < 0 {
		return nil
	}

	prev := s.bookmarks
	next := make([]*domain.Recipe, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	s.bookmarks = append(next, prev[i+1:]...)

	if err := s.persistLocked(ctx); err != nil {
		s.bookmarks = prev
		return err
	}
	s.markCurrentLocked(id, false)
	s.log.Debug("removed bookmark %s", id)
	return nil
}

// ToggleBookmark bookmarks the current recipe, or removes it if it is
// already bookmarked. It reports the new bookmarked flag.
func (s *Store) ToggleBookmark(ctx context.Context) (bool, error) {
	current := s.Recipe()
	if current == nil {
		return false, domain.ErrEmptyResult
	}
	if current.Bookmarked {
		return false, s.RemoveBookmark(ctx, current.ID)
	}
	return true, s.AddBookmark(ctx, current)
}

// ClearBookmarks empties the bookmark list and persists it.
func (s *Store) ClearBookmarks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.bookmarks
	s.bookmarks = nil
	if err := s.persistLocked(ctx); err != nil {
		s.bookmarks = prev
		return err
	}
	if s.recipe != nil {
		s.recipe.Bookmarked = false
	}
	return nil
}

// Bookmarks returns copies of the bookmarked recipes in insertion order.
func (s *Store) Bookmarks() []*domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Recipe, len(s.bookmarks))
	for i, r := range s.bookmarks {
		out[i] = r.Clone()
	}
	return out
}

// UploadRecipe parses the upload form fields, creates the recipe through
// the API, makes it the current recipe and bookmarks it. A malformed
// field fails with a *FormatError before any network call.
func (s *Store) UploadRecipe(ctx context.Context, fields map[string]string) (*domain.Recipe, error) {
	draft, err := ParseUpload(fields)
	if err != nil {
		return nil, err
	}

	created, err := s.api.CreateRecipe(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("state: upload recipe: %w", err)
	}

	s.mu.Lock()
	// The upload replaces the current recipe, so a pending load must not
	// overwrite it afterwards.
	s.supersedeLocked()
	s.recipe = created.Clone()
	s.mu.Unlock()

	if err := s.AddBookmark(ctx, created); err != nil {
		return nil, err
	}
	s.log.Info("uploaded recipe %s (%q)", created.ID, created.Title)
	return s.Recipe(), nil
}

func (s *Store) bookmarkIndexLocked(id string) int {
	for i, r := range s.bookmarks {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) markCurrentLocked(id string, bookmarked bool) {
	if s.recipe != nil && s.recipe.ID == id {
		s.recipe.Bookmarked = bookmarked
	}
}

// persistLocked overwrites the stored list with the current one.
func (s *Store) persistLocked(ctx context.Context) error {
	list := s.bookmarks
	if list == nil {
		list = []*domain.Recipe{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("state: encode bookmarks: %w", err)
	}
	if err := s.kv.Set(ctx, s.bookmarksKey, string(b)); err != nil {
		return fmt.Errorf("state: persist bookmarks: %w", err)
	}
	return nil
}
