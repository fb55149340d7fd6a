package view

import (
	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// ResultsView renders one page of search results.
type ResultsView struct {
	*View[[]domain.SearchResult]
}

// NewResultsView creates the view owning ".results". The result matching
// the location hash is marked active.
func NewResultsView(doc *dom.Document, log *logger.Logger) *ResultsView {
	v := newView(doc, ".results", log, func(results []domain.SearchResult) (string, error) {
		return PreviewMarkup(results, doc.Hash())
	})
	v.empty = func(results []domain.SearchResult) bool { return len(results) == 0 }
	v.errorMessage = "No recipes found for your query. Please try again!"
	return &ResultsView{View: v}
}
