package view

import (
	"context"
	"strconv"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// PaginationView renders the previous/next page buttons.
type PaginationView struct {
	*View[domain.SearchState]
}

type pageButtons struct {
	Prev, Next int // zero hides the button
}

// NewPaginationView creates the view owning ".pagination".
func NewPaginationView(doc *dom.Document, log *logger.Logger) *PaginationView {
	v := newView(doc, ".pagination", log, func(s domain.SearchState) (string, error) {
		return execute("pagination", buttonsFor(s))
	})
	return &PaginationView{View: v}
}

// buttonsFor picks the buttons for the current page: next only on the
// first of several pages, previous only on the last, both in between and
// none for a single page.
func buttonsFor(s domain.SearchState) pageButtons {
	pages := s.NumPages()
	cur := s.Page
	switch {
	case cur == 1 && pages > 1:
		return pageButtons{Next: 2}
	case cur == pages && pages > 1:
		return pageButtons{Prev: cur - 1}
	case cur > 1 && cur < pages:
		return pageButtons{Prev: cur - 1, Next: cur + 1}
	}
	return pageButtons{}
}

// AddHandlerClick calls fn with the page carried by the clicked button.
func (v *PaginationView) AddHandlerClick(fn func(ctx context.Context, page int)) {
	v.doc.AddEventListener(dom.EventClick, v.parent, func(ctx context.Context, ev dom.Event) {
		btn := v.doc.Closest(ev.Target, ".btn--inline")
		if btn == nil {
			return
		}
		raw, _ := v.doc.Attr(btn, "data-goto")
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			v.log.Debug("ignoring page target %q", raw)
			return
		}
		fn(ctx, page)
	})
}
