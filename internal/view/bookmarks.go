package view

import (
	"context"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// BookmarksView renders the bookmark list in the header.
type BookmarksView struct {
	*View[[]*domain.Recipe]
}

// NewBookmarksView creates the view owning ".bookmarks__list".
func NewBookmarksView(doc *dom.Document, log *logger.Logger) *BookmarksView {
	v := newView(doc, ".bookmarks__list", log, func(bookmarks []*domain.Recipe) (string, error) {
		summaries := make([]domain.SearchResult, len(bookmarks))
		for i, b := range bookmarks {
			summaries[i] = b.Summary()
		}
		return PreviewMarkup(summaries, doc.Hash())
	})
	v.empty = func(bookmarks []*domain.Recipe) bool { return len(bookmarks) == 0 }
	v.errorMessage = "No bookmarks yet. Find a nice recipe and bookmark it ;)"
	return &BookmarksView{View: v}
}

// AddHandlerRender calls fn on page load.
func (v *BookmarksView) AddHandlerRender(fn func(ctx context.Context)) {
	v.doc.AddEventListener(dom.EventLoad, "", func(ctx context.Context, _ dom.Event) { fn(ctx) })
}
