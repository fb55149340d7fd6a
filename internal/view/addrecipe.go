package view

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// ModalCloseDelay is how long the upload success message stays up before
// the window closes.
const ModalCloseDelay = 2500 * time.Millisecond

// IngredientSlots is how many ingredient inputs the upload form offers.
const IngredientSlots = 6

const (
	windowSelector  = ".add-recipe-window"
	overlaySelector = ".overlay"
	hiddenClass     = "hidden"
)

// AddRecipeView is the upload form inside its modal window.
type AddRecipeView struct {
	*View[int]
}

// NewAddRecipeView creates the view owning ".upload", renders the form and
// wires the open and close buttons.
func NewAddRecipeView(doc *dom.Document, log *logger.Logger) (*AddRecipeView, error) {
	v := newView(doc, ".upload", log, func(slots int) (string, error) {
		idx := make([]int, slots)
		for i := range idx {
			idx[i] = i + 1
		}
		return execute("upload", idx)
	})
	v.message = "Recipe was successfully uploaded :)"
	v.errorMessage = "Wrong ingredient format! Please use the correct format :)"

	av := &AddRecipeView{View: v}
	if err := av.Render(IngredientSlots); err != nil {
		return nil, err
	}
	av.addHandlerShowWindow()
	av.addHandlerHideWindow()
	return av, nil
}

// IsOpen reports whether the modal window is visible.
func (v *AddRecipeView) IsOpen() bool {
	open := false
	_ = v.doc.Do(func(doc *goquery.Document) error {
		open = !doc.Find(windowSelector).HasClass(hiddenClass)
		return nil
	})
	return open
}

// ToggleWindow shows or hides the modal. Hiding it leaves an empty form:
// a form still on screen is reset, an overlay is replaced by a fresh one.
func (v *AddRecipeView) ToggleWindow() error {
	_ = v.doc.Do(func(doc *goquery.Document) error {
		doc.Find(windowSelector).ToggleClass(hiddenClass)
		doc.Find(overlaySelector).ToggleClass(hiddenClass)
		return nil
	})
	if v.IsOpen() {
		return nil
	}
	if v.State() != StateRendered {
		return v.Render(IngredientSlots)
	}
	form, err := v.doc.Resolve(v.parent)
	if err != nil {
		return err
	}
	v.doc.ResetForm(form)
	return nil
}

// CloseWindow hides the modal if it is open.
func (v *AddRecipeView) CloseWindow() error {
	if !v.IsOpen() {
		return nil
	}
	return v.ToggleWindow()
}

func (v *AddRecipeView) addHandlerShowWindow() {
	v.doc.AddEventListener(dom.EventClick, ".nav__btn--add-recipe", func(ctx context.Context, _ dom.Event) {
		v.toggle()
	})
}

func (v *AddRecipeView) addHandlerHideWindow() {
	for _, scope := range []string{".btn--close-modal", overlaySelector} {
		v.doc.AddEventListener(dom.EventClick, scope, func(ctx context.Context, _ dom.Event) {
			v.toggle()
		})
	}
}

func (v *AddRecipeView) toggle() {
	if err := v.ToggleWindow(); err != nil {
		v.log.Error("toggle upload window: %v", err)
	}
}

// AddHandlerUpload calls fn with the submitted form fields.
func (v *AddRecipeView) AddHandlerUpload(fn func(ctx context.Context, fields map[string]string)) {
	v.doc.AddEventListener(dom.EventSubmit, v.parent, func(ctx context.Context, ev dom.Event) {
		fields := v.doc.FormValues(ev.Target)
		delete(fields, "form")
		fn(ctx, fields)
	})
}
