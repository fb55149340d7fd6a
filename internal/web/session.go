package web

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/engine"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/state"
	"github.com/hammamikhairi/recipebook/internal/view"
)

// DefaultSessionTTL is how long an idle session is kept in memory. Its
// bookmarks outlive it in the key-value store.
const DefaultSessionTTL = 24 * time.Hour

// Session is one browser's document, state and control layer.
type Session struct {
	ID     string
	Doc    *dom.Document
	Store  *state.Store
	Engine *engine.Engine

	// events serializes dispatch and rendering of the document, so one
	// request's use case finishes before another's starts.
	events sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionOption configures the session registry.
type SessionOption func(*Sessions)

// WithSessionTTL sets the idle time after which sessions are dropped.
func WithSessionTTL(d time.Duration) SessionOption {
	return func(s *Sessions) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithStateOptions passes options to every session's state store.
func WithStateOptions(opts ...state.Option) SessionOption {
	return func(s *Sessions) {
		s.stateOpts = append(s.stateOpts, opts...)
	}
}

// WithEngineOptions passes options to every session's engine.
func WithEngineOptions(opts ...engine.Option) SessionOption {
	return func(s *Sessions) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithTitle sets the page title.
func WithTitle(title string) SessionOption {
	return func(s *Sessions) {
		s.title = title
	}
}

// Sessions creates and tracks sessions. All sessions share the recipe API
// and the key-value store; each keeps its bookmarks under its own key.
type Sessions struct {
	api        domain.RecipeAPI
	kv         domain.KeyValueStore
	log        *logger.Logger
	ttl        time.Duration
	title      string
	stateOpts  []state.Option
	engineOpts []engine.Option
	now        func() time.Time

	mu   sync.Mutex
	byID map[string]*Session
}

// NewSessions creates an empty registry.
func NewSessions(api domain.RecipeAPI, kv domain.KeyValueStore, log *logger.Logger, opts ...SessionOption) *Sessions {
	s := &Sessions{
		api:   api,
		kv:    kv,
		log:   log,
		ttl:   DefaultSessionTTL,
		title: "recipebook",
		now:   time.Now,
		byID:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookmarksKey is the storage key holding a session's bookmarks.
func BookmarksKey(sessionID string) string {
	return state.BookmarksKey + "/" + sessionID
}

// Get returns the live session for id. created reports whether a new
// session had to be built, either because id was unknown or empty or
// because it had expired. A rebuilt session keeps id so its bookmarks are
// restored.
func (s *Sessions) Get(ctx context.Context, id string) (sess *Session, created bool, err error) {
	now := s.now()
	s.sweep(now)

	// uuid.Parse accepts braces and urn prefixes; one spelling per session.
	if parsed, perr := uuid.Parse(id); perr != nil {
		id = ""
	} else {
		id = parsed.String()
	}

	s.mu.Lock()
	sess, ok := s.byID[id]
	s.mu.Unlock()
	if ok {
		sess.touch(now)
		return sess, false, nil
	}

	if id == "" {
		id = uuid.NewString()
	}
	sess, err = s.build(ctx, id)
	if err != nil {
		return nil, false, err
	}
	sess.touch(now)

	s.mu.Lock()
	// Another request for the same cookie may have won the race.
	if existing, ok := s.byID[id]; ok {
		s.mu.Unlock()
		return existing, false, nil
	}
	s.byID[id] = sess
	s.mu.Unlock()

	s.log.Info("session %s started", id)
	return sess, true, nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Sessions) build(ctx context.Context, id string) (*Session, error) {
	page, err := view.Page(s.title)
	if err != nil {
		return nil, err
	}
	log := s.log.With(id[:8])
	doc, err := dom.ParseString(page, log)
	if err != nil {
		return nil, err
	}

	opts := append([]state.Option{state.WithBookmarksKey(BookmarksKey(id))}, s.stateOpts...)
	store := state.New(s.api, s.kv, log, opts...)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("web: init session state: %w", err)
	}

	eng, err := engine.New(doc, store, log, s.engineOpts...)
	if err != nil {
		return nil, err
	}
	if err := eng.Init(); err != nil {
		return nil, fmt.Errorf("web: init session engine: %w", err)
	}
	return &Session{ID: id, Doc: doc, Store: store, Engine: eng}, nil
}

func (s *Sessions) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.byID {
		if sess.idleSince(now) > s.ttl {
			delete(s.byID, id)
			s.log.Debug("session %s expired", id)
		}
	}
}
