package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"taskboard/internal/service"
)

// Options configures the HTTP server.
type Options struct {
	Addr          string
	SessionSecret string
	SecureCookies bool
	// Renderer defaults to JSONRenderer.
	Renderer Renderer
	// Location is used to read dates submitted without a zone. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Server is the web front end of the task board.
type Server struct {
	addr     string
	auth     *service.AuthService
	groups   *service.GroupService
	tasks    *service.TaskService
	accounts *service.AccountService
	views    *service.ViewService
	sessions *sessionManager
	render   Renderer
	loc      *time.Location
	now      func() time.Time
}

func New(opts Options, auth *service.AuthService, groups *service.GroupService, tasks *service.TaskService, accounts *service.AccountService, views *service.ViewService) *Server {
	if opts.Renderer == nil {
		opts.Renderer = JSONRenderer{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		addr:     opts.Addr,
		auth:     auth,
		groups:   groups,
		tasks:    tasks,
		accounts: accounts,
		views:    views,
		sessions: newSessionManager(opts.SessionSecret, opts.SecureCookies, opts.Now),
		render:   opts.Renderer,
		loc:      opts.Location,
		now:      opts.Now,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /{$}", s.requireUser(s.handleBoard))

	mux.HandleFunc("POST /groups", s.requireUser(s.handleCreateGroup))
	mux.HandleFunc("POST /groups/{id}/delete", s.requireUser(s.handleDeleteGroup))

	mux.HandleFunc("POST /tasks", s.requireUser(s.handleCreateTask))
	mux.HandleFunc("POST /tasks/{id}/update", s.requireUser(s.handleUpdateTask))
	mux.HandleFunc("POST /tasks/{id}/toggle", s.requireUser(s.handleToggleTask))
	mux.HandleFunc("POST /tasks/{id}/delete", s.requireUser(s.handleDeleteTask))

	mux.HandleFunc("POST /subtasks", s.requireUser(s.handleCreateSubtask))
	mux.HandleFunc("POST /subtasks/{id}/toggle", s.requireUser(s.handleToggleSubtask))

	mux.HandleFunc("POST /accounts", s.requireUser(s.handleCreateAccount))
	mux.HandleFunc("POST /accounts/{id}/default", s.requireUser(s.handleSwitchAccount))

	mux.HandleFunc("POST /settings/telegram", s.requireUser(s.handleLinkTelegram))

	return logRequests(mux)
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[info] http listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return ctx.Err()
}

type authedHandler func(w http.ResponseWriter, r *http.Request, id identity)

// requireUser resolves the session and hands the identity to next, or
// redirects anonymous visitors to the login page.
func (s *Server) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.sessions.resolve(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, id)
	}
}

// fail maps service errors onto responses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.render.Error(w, r, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		s.render.Error(w, r, http.StatusNotFound, "not found")
	default:
		log.Printf("[error] %s %s: %v", r.Method, r.URL.Path, err)
		s.render.Error(w, r, http.StatusInternalServerError, "something went wrong")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[info] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
