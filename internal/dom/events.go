package dom

import (
	"context"

	"golang.org/x/net/html"
)

// Event types dispatched by the web layer.
const (
	EventLoad       = "load"
	EventHashChange = "hashchange"
	EventClick      = "click"
	EventSubmit     = "submit"
)

// Event is one user or navigation event. Target is nil for window events
// (load, hashchange).
type Event struct {
	Type   string
	Target *html.Node
}

// Listener handles a dispatched event.
type Listener func(ctx context.Context, ev Event)

type listener struct {
	typ   string
	scope string
	fn    Listener
}

// AddEventListener registers fn for events of type typ. An empty scope
// listens on the window and sees every event of that type; otherwise fn
// only sees events whose target lies inside an element matching scope.
func (d *Document) AddEventListener(typ, scope string, fn Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listener{typ: typ, scope: scope, fn: fn})
}

// Dispatch delivers ev to the matching listeners in registration order and
// returns how many ran.
func (d *Document) Dispatch(ctx context.Context, ev Event) int {
	d.mu.Lock()
	var matched []Listener
	for _, l := range d.listeners {
		if l.typ != ev.Type {
			continue
		}
		if l.scope != "" {
			if ev.Target == nil || d.closestLocked(ev.Target, l.scope) == nil {
				continue
			}
		}
		matched = append(matched, l.fn)
	}
	d.mu.Unlock()

	d.log.Debug("dispatch %s to %d listeners", ev.Type, len(matched))
	for _, fn := range matched {
		fn(ctx, ev)
	}
	return len(matched)
}
