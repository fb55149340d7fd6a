package view

import (
	"github.com/hammamikhairi/recipebook/internal/domain"
)

type preview struct {
	Result domain.SearchResult
	Active bool
}

// PreviewMarkup renders one list item per result, marking activeID.
// Results and bookmarks both build on it.
func PreviewMarkup(results []domain.SearchResult, activeID string) (string, error) {
	items := make([]preview, len(results))
	for i, r := range results {
		items[i] = preview{Result: r, Active: r.ID != "" && r.ID == activeID}
	}
	return execute("previews", items)
}
