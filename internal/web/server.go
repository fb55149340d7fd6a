// Package web serves the recipebook page. Each browser gets a session
// whose document is rendered server side; clicks and form submissions
// arrive as POSTs and are dispatched on that document as DOM events.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hammamikhairi/recipebook/internal/dom"
	"github.com/hammamikhairi/recipebook/internal/export"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// CookieName holds the session id.
const CookieName = "rb_session"

// Form fields naming the event target.
const (
	fieldTarget = "target"
	fieldForm   = "form"
)

//go:embed static
var staticFS embed.FS

// Server routes HTTP requests to sessions.
type Server struct {
	sessions *Sessions
	log      *logger.Logger
	router   chi.Router
}

// NewServer builds the router.
func NewServer(sessions *Sessions, log *logger.Logger) *Server {
	s := &Server{sessions: sessions, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Get("/recipes/{id}", s.handleRecipe)
	r.Post("/events/click", s.handleClick)
	r.Post("/events/submit", s.handleSubmit)
	r.Get("/bookmarks.xlsx", s.handleExport)
	r.Post("/bookmarks/clear", s.handleClearBookmarks)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	defer sess.events.Unlock()
	sess.Doc.SetHash("")
	s.render(w, sess)
}

// handleRecipe navigates to a recipe. A reload of the page of a recipe
// that failed to load tries again.
func (s *Server) handleRecipe(w http.ResponseWriter, r *http.Request) {
	sess, created, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer sess.events.Unlock()

	id := chi.URLParam(r, "id")
	cur := sess.Store.Recipe()
	if !created && (sess.Doc.Hash() != id || cur == nil || cur.ID != id) {
		sess.Doc.SetHash(id)
		sess.Doc.Dispatch(r.Context(), dom.Event{Type: dom.EventHashChange})
	}
	s.render(w, sess)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	defer sess.events.Unlock()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	target, err := sess.Doc.Resolve(r.PostForm.Get(fieldTarget))
	if err != nil {
		s.log.Debug("click: %v", err)
		http.Error(w, "unknown target", http.StatusBadRequest)
		return
	}
	sess.Doc.Dispatch(r.Context(), dom.Event{Type: dom.EventClick, Target: target})
	s.redirect(w, r, sess)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	defer sess.events.Unlock()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form, err := sess.Doc.Resolve(r.PostForm.Get(fieldForm))
	if err != nil {
		s.log.Debug("submit: %v", err)
		http.Error(w, "unknown form", http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		if k != fieldForm {
			values[k] = r.PostForm.Get(k)
		}
	}
	sess.Doc.SetFormValues(form, values)
	sess.Doc.Dispatch(r.Context(), dom.Event{Type: dom.EventSubmit, Target: form})
	s.redirect(w, r, sess)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	defer sess.events.Unlock()
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.xlsx"`)
	if err := export.WriteBookmarks(w, sess.Store.Bookmarks()); err != nil {
		s.log.Error("export bookmarks: %v", err)
	}
}

func (s *Server) handleClearBookmarks(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	defer sess.events.Unlock()
	if err := sess.Store.ClearBookmarks(r.Context()); err != nil {
		s.log.Error("clear bookmarks: %v", err)
		http.Error(w, "could not clear bookmarks", http.StatusInternalServerError)
		return
	}
	if err := sess.Engine.ControlBookmarks(r.Context()); err != nil {
		s.log.Error("render bookmarks: %v", err)
	}
	s.redirect(w, r, sess)
}

// session resolves the caller's session, locked for event dispatch. The
// caller must unlock sess.events.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, _, ok := s.acquire(w, r)
	return sess, ok
}

// acquire is session that also reports whether the session was just
// created. A new session gets the cookie and fires the page load event.
func (s *Server) acquire(w http.ResponseWriter, r *http.Request) (sess *Session, created bool, ok bool) {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}

	sess, created, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.log.Error("session: %v", err)
		http.Error(w, "could not start session", http.StatusInternalServerError)
		return nil, false, false
	}
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	sess.events.Lock()
	if created {
		if id := chi.URLParam(r, "id"); id != "" {
			sess.Doc.SetHash(id)
		}
		sess.Doc.Dispatch(r.Context(), dom.Event{Type: dom.EventLoad})
	}
	return sess, created, true
}

func (s *Server) render(w http.ResponseWriter, sess *Session) {
	page, err := sess.Doc.HTML()
	if err != nil {
		s.log.Error("render: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// redirect sends the browser back to the page matching the location hash,
// so reloading never replays the event.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *Session) {
	http.Redirect(w, r, location(sess.Doc.Hash()), http.StatusSeeOther)
}

func location(hash string) string {
	if hash == "" {
		return "/"
	}
	return "/recipes/" + url.PathEscape(hash)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
