// Package engine is the control layer. It wires view events to use cases,
// runs each use case against the state store and then pushes the updated
// state back into the views.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/state"
	"github.com/hammamikhairi/recipebook/internal/view"
)

// Option configures the engine.
type Option func(*Engine)

// WithModalCloseDelay sets how long the upload window stays open after a
// successful upload. Zero closes it immediately.
func WithModalCloseDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.closeDelay = d
	}
}

// Engine drives one document. It depends only on the store and the views
// and is fully testable with the in-memory recipe source.
type Engine struct {
	doc   *dom.Document
	store *state.Store
	log   *logger.Logger

	recipe     *view.RecipeView
	search     *view.SearchView
	results    *view.ResultsView
	pagination *view.PaginationView
	bookmarks  *view.BookmarksView
	addRecipe  *view.AddRecipeView

	closeDelay time.Duration
}

// New creates the views over doc and returns an engine. Call Init to wire
// the event handlers.
func New(doc *dom.Document, store *state.Store, log *logger.Logger, opts ...Option) (*Engine, error) {
	addRecipe, err := view.NewAddRecipeView(doc, log.With("upload"))
	if err != nil {
		return nil, fmt.Errorf("engine: upload view: %w", err)
	}
	e := &Engine{
		doc:        doc,
		store:      store,
		log:        log,
		recipe:     view.NewRecipeView(doc, log.With("recipe")),
		search:     view.NewSearchView(doc, log.With("search")),
		results:    view.NewResultsView(doc, log.With("results")),
		pagination: view.NewPaginationView(doc, log.With("pagination")),
		bookmarks:  view.NewBookmarksView(doc, log.With("bookmarks")),
		addRecipe:  addRecipe,
		closeDelay: view.ModalCloseDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Init subscribes every use case to its view events and shows the welcome
// message.
func (e *Engine) Init() error {
	e.bookmarks.AddHandlerRender(e.handle("bookmarks", e.ControlBookmarks))
	e.recipe.AddHandlerRender(e.handle("recipe", e.ControlRecipe))
	e.recipe.AddHandlerUpdateServings(func(ctx context.Context, n int) {
		e.report("servings", e.ControlServings(ctx, n))
	})
	e.recipe.AddHandlerAddBookmark(e.handle("bookmark", e.ControlAddBookmark))
	e.search.AddHandlerSearch(e.handle("search", e.ControlSearchResults))
	e.pagination.AddHandlerClick(func(ctx context.Context, page int) {
		e.report("pagination", e.ControlPagination(ctx, page))
	})
	e.addRecipe.AddHandlerUpload(func(ctx context.Context, fields map[string]string) {
		e.report("upload", e.ControlAddRecipe(ctx, fields))
	})
	return e.recipe.RenderMessage("")
}

func (e *Engine) handle(name string, fn func(context.Context) error) func(context.Context) {
	return func(ctx context.Context) {
		e.report(name, fn(ctx))
	}
}

func (e *Engine) report(name string, err error) {
	if err != nil {
		e.log.Error("%s: %v", name, err)
	}
}

// ControlRecipe loads the recipe named by the location hash and renders
// it. An empty hash is a no-op.
func (e *Engine) ControlRecipe(ctx context.Context) error {
	id := e.doc.Hash()
	if id == "" {
		return nil
	}
	if err := e.recipe.RenderSpinner(); err != nil {
		return err
	}

	// Mark the selected preview in both lists.
	if err := e.results.Update(e.store.ResultsPage(0)); err != nil {
		return err
	}
	if err := e.bookmarks.Update(e.store.Bookmarks()); err != nil {
		return err
	}

	r, err := e.store.LoadRecipe(ctx, id)
	if errors.Is(err, domain.ErrSuperseded) {
		e.log.Debug("recipe %s superseded", id)
		return nil
	}
	if err != nil {
		e.log.Warn("load recipe %s: %v", id, err)
		return e.recipe.RenderError(describe(err))
	}
	return e.recipe.Render(r)
}

// ControlSearchResults runs the submitted query and renders the first page.
func (e *Engine) ControlSearchResults(ctx context.Context) error {
	query := e.search.Query()
	if query == "" {
		return nil
	}
	if err := e.results.RenderSpinner(); err != nil {
		return err
	}

	if err := e.store.LoadSearchResults(ctx, query); err != nil {
		e.log.Warn("search %q: %v", query, err)
		if err := e.pagination.Clear(); err != nil {
			return err
		}
		return e.results.RenderError(describe(err))
	}

	if err := e.results.Render(e.store.ResultsPage(1)); err != nil {
		return err
	}
	return e.pagination.Render(e.store.Search())
}

// ControlPagination renders page of the current results.
func (e *Engine) ControlPagination(ctx context.Context, page int) error {
	if err := e.results.Render(e.store.ResultsPage(page)); err != nil {
		return err
	}
	return e.pagination.Render(e.store.Search())
}

// ControlServings rescales the current recipe and patches the view.
func (e *Engine) ControlServings(ctx context.Context, servings int) error {
	if !e.store.UpdateServings(servings) {
		return nil
	}
	return e.recipe.Update(e.store.Recipe())
}

// ControlAddBookmark toggles the current recipe's bookmark.
func (e *Engine) ControlAddBookmark(ctx context.Context) error {
	if _, err := e.store.ToggleBookmark(ctx); err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			return nil
		}
		return fmt.Errorf("toggle bookmark: %w", err)
	}
	if err := e.recipe.Update(e.store.Recipe()); err != nil {
		return err
	}
	return e.bookmarks.Render(e.store.Bookmarks())
}

// ControlBookmarks renders the bookmark list.
func (e *Engine) ControlBookmarks(ctx context.Context) error {
	return e.bookmarks.Render(e.store.Bookmarks())
}

// ControlAddRecipe uploads the submitted recipe, shows it, bookmarks it and
// points the location hash at it. The window closes after the configured
// delay.
func (e *Engine) ControlAddRecipe(ctx context.Context, fields map[string]string) error {
	if err := e.addRecipe.RenderSpinner(); err != nil {
		return err
	}

	r, err := e.store.UploadRecipe(ctx, fields)
	if err != nil {
		e.log.Warn("upload: %v", err)
		return e.addRecipe.RenderError(describe(err))
	}

	if err := e.recipe.Render(r); err != nil {
		return err
	}
	if err := e.addRecipe.RenderMessage(""); err != nil {
		return err
	}
	if err := e.bookmarks.Render(e.store.Bookmarks()); err != nil {
		return err
	}
	e.doc.SetHash(r.ID)

	if e.closeDelay <= 0 {
		return e.addRecipe.CloseWindow()
	}
	time.AfterFunc(e.closeDelay, func() {
		e.report("close upload window", e.addRecipe.CloseWindow())
	})
	return nil
}

// describe turns a use case error into the text shown to the user. An
// empty string selects the view's default message.
func describe(err error) string {
	var fe *state.FormatError
	switch {
	case errors.As(err, &fe):
		return fmt.Sprintf("Wrong format in %s: %s", fe.Field, fe.Reason)
	case errors.Is(err, domain.ErrTimeout):
		return "The recipe service took too long to answer. Please try again!"
	case errors.Is(err, domain.ErrNotFound):
		return ""
	case errors.Is(err, domain.ErrNetwork):
		return "Could not reach the recipe service. Please try again!"
	}
	return ""
}
