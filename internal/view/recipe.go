package view

import (
	"context"
	"strconv"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// RecipeView renders the recipe detail pane.
type RecipeView struct {
	*View[*domain.Recipe]
}

// NewRecipeView creates the view owning ".recipe".
func NewRecipeView(doc *dom.Document, log *logger.Logger) *RecipeView {
	v := newView(doc, ".recipe", log, func(r *domain.Recipe) (string, error) {
		return execute("recipe", r)
	})
	v.empty = func(r *domain.Recipe) bool { return r == nil }
	v.errorMessage = "We could not find that recipe. Please try another one!"
	v.message = "Start by searching for a recipe or an ingredient. Have fun!"
	return &RecipeView{View: v}
}

// AddHandlerRender calls fn on page load and on every hash change.
func (v *RecipeView) AddHandlerRender(fn func(ctx context.Context)) {
	for _, typ := range []string{dom.EventHashChange, dom.EventLoad} {
		v.doc.AddEventListener(typ, "", func(ctx context.Context, _ dom.Event) { fn(ctx) })
	}
}

// AddHandlerUpdateServings calls fn with the servings carried by the
// clicked ± button. Non-positive targets are ignored.
func (v *RecipeView) AddHandlerUpdateServings(fn func(ctx context.Context, servings int)) {
	v.doc.AddEventListener(dom.EventClick, v.parent, func(ctx context.Context, ev dom.Event) {
		btn := v.doc.Closest(ev.Target, ".btn--update-servings")
		if btn == nil {
			return
		}
		raw, _ := v.doc.Attr(btn, "data-update-to")
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			v.log.Debug("ignoring servings target %q", raw)
			return
		}
		fn(ctx, n)
	})
}

// AddHandlerAddBookmark calls fn when the bookmark button is clicked.
func (v *RecipeView) AddHandlerAddBookmark(fn func(ctx context.Context)) {
	v.doc.AddEventListener(dom.EventClick, v.parent, func(ctx context.Context, ev dom.Event) {
		if v.doc.Closest(ev.Target, ".btn--bookmark") == nil {
			return
		}
		fn(ctx)
	})
}
