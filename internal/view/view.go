// Package view turns application state into markup and writes it into the
// document subtree each view owns.
package view

import (
	"fmt"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// State is the display state of a view.
type State int

const (
	StateEmpty State = iota
	StateRendered
	StateSpinner
	StateError
	StateMessage
)

func (s State) String() string {
	switch s {
	case StateRendered:
		return "rendered"
	case StateSpinner:
		return "spinner"
	case StateError:
		return "error"
	case StateMessage:
		return "message"
	default:
		return "empty"
	}
}

// Renderable is what every data-driven view can do.
type Renderable[T any] interface {
	Render(data T) error
	Update(data T) error
	RenderSpinner() error
	RenderError(msg string) error
	RenderMessage(msg string) error
	State() State
}

// Compile-time interface check.
var _ Renderable[int] = (*View[int])(nil)

// View is the shared render/update machinery. Concrete views embed it and
// supply the markup step.
type View[T any] struct {
	doc          *dom.Document
	parent       string
	errorMessage string
	message      string
	markup       func(T) (string, error)
	empty        func(T) bool
	log          *logger.Logger

	mu    sync.Mutex
	data  T
	state State
}

func newView[T any](doc *dom.Document, parent string, log *logger.Logger, markup func(T) (string, error)) *View[T] {
	return &View[T]{
		doc:    doc,
		parent: parent,
		markup: markup,
		empty:  func(T) bool { return false },
		log:    log,
	}
}

// Render fully replaces the owned subtree. Empty data renders the error
// overlay instead.
func (v *View[T]) Render(data T) error {
	if v.empty(data) {
		return v.RenderError("")
	}
	markup, err := v.markup(data)
	if err != nil {
		return err
	}
	if err := v.doc.Replace(v.parent, markup); err != nil {
		return fmt.Errorf("view: render %s: %w", v.parent, err)
	}
	v.set(data, StateRendered)
	return nil
}

// Update patches the rendered subtree in place. It is a no-op while the
// view shows nothing or an overlay.
func (v *View[T]) Update(data T) error {
	if v.State() != StateRendered || v.empty(data) {
		return nil
	}
	markup, err := v.markup(data)
	if err != nil {
		return err
	}
	stats, err := v.doc.Patch(v.parent, markup)
	if err != nil {
		return fmt.Errorf("view: update %s: %w", v.parent, err)
	}
	v.set(data, StateRendered)
	v.log.Debug("patched %s: %+v", v.parent, stats)
	return nil
}

// RenderSpinner shows the loading overlay.
func (v *View[T]) RenderSpinner() error {
	return v.overlay("spinner", nil, StateSpinner)
}

// RenderError shows msg, or the view's default error message when empty.
func (v *View[T]) RenderError(msg string) error {
	if msg == "" {
		msg = v.errorMessage
	}
	return v.overlay("error", msg, StateError)
}

// RenderMessage shows msg, or the view's default message when empty.
func (v *View[T]) RenderMessage(msg string) error {
	if msg == "" {
		msg = v.message
	}
	return v.overlay("message", msg, StateMessage)
}

// Clear empties the owned subtree and forgets the data.
func (v *View[T]) Clear() error {
	if err := v.doc.Clear(v.parent); err != nil {
		return fmt.Errorf("view: clear %s: %w", v.parent, err)
	}
	var zero T
	v.set(zero, StateEmpty)
	return nil
}

// State returns the current display state.
func (v *View[T]) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Data returns the data of the last render or update.
func (v *View[T]) Data() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data
}

func (v *View[T]) overlay(name string, data any, state State) error {
	markup, err := execute(name, data)
	if err != nil {
		return err
	}
	if err := v.doc.Replace(v.parent, markup); err != nil {
		return fmt.Errorf("view: %s %s: %w", name, v.parent, err)
	}
	v.mu.Lock()
	v.state = state
	v.mu.Unlock()
	return nil
}

func (v *View[T]) set(data T, state State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data = data
	v.state = state
}
