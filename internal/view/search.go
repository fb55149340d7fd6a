package view

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// SearchView is the search box. It has no render step.
type SearchView struct {
	doc    *dom.Document
	parent string
	log    *logger.Logger
}

// NewSearchView creates the view owning ".search".
func NewSearchView(doc *dom.Document, log *logger.Logger) *SearchView {
	return &SearchView{doc: doc, parent: ".search", log: log}
}

// Query returns the submitted query and clears the field.
func (v *SearchView) Query() string {
	var q string
	_ = v.doc.Do(func(doc *goquery.Document) error {
		field := doc.Find(v.parent + " .search__field")
		q, _ = field.Attr("value")
		field.SetAttr("value", "")
		return nil
	})
	return q
}

// AddHandlerSearch calls fn when the search form is submitted.
func (v *SearchView) AddHandlerSearch(fn func(ctx context.Context)) {
	v.doc.AddEventListener(dom.EventSubmit, v.parent, func(ctx context.Context, _ dom.Event) {
		fn(ctx)
	})
}
