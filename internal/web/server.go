package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/conorfennell/flashreview/internal/controls"
	"github.com/conorfennell/flashreview/internal/domain"
	"github.com/conorfennell/flashreview/internal/export"
	"github.com/conorfennell/flashreview/internal/review"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Server renders the review session over HTTP. Requests are handled one at a
// time so the manager only ever sees a single stream of events.
type Server struct {
	mu        sync.Mutex
	manager   *review.Manager
	opts      []controls.Option
	router    *http.ServeMux
	templates *template.Template
	logger    *slog.Logger
}

// NewServer creates a server for m. opts are applied to the controller used
// for every action; the reset confirmation is supplied per request.
func NewServer(m *review.Manager, logger *slog.Logger, opts ...controls.Option) (*Server, error) {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		manager:   m,
		opts:      opts,
		router:    http.NewServeMux(),
		templates: tpl,
		logger:    logger,
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return err
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.HandleFunc("GET /{$}", s.handleGetCard())
	s.router.HandleFunc("GET /state", s.handleGetState())
	s.router.HandleFunc("GET /export", s.handleGetExport())
	s.router.HandleFunc("POST /action/{name}", s.handlePostAction())
	return nil
}

type cardView struct {
	Card     domain.Card
	Position int
	Total    int
	Revealed bool
	Stats    review.Stats
	Actions  []controls.Action
	Prompt   string
}

func (s *Server) view() cardView {
	cursor, total := s.manager.Position()
	return cardView{
		Card:     s.manager.Current(),
		Position: cursor + 1,
		Total:    total,
		Revealed: s.manager.Revealed(),
		Stats:    s.manager.Stats(),
		Actions:  controls.Actions,
		Prompt:   controls.ResetPrompt,
	}
}

// handleGetCard renders the current card with progress.
func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		data := s.view()
		s.mu.Unlock()

		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, "review", data); err != nil {
			s.logger.Error("Failed to render card", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		buf.WriteTo(w)
	}
}

type stateResponse struct {
	Session  review.Session `json:"session"`
	Current  domain.Card    `json:"current"`
	Revealed bool           `json:"revealed"`
	Stats    review.Stats   `json:"stats"`
}

// handleGetState returns the session and derived values as JSON.
func (s *Server) handleGetState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		resp := stateResponse{
			Session:  s.manager.Session(),
			Current:  s.manager.Current(),
			Revealed: s.manager.Revealed(),
			Stats:    s.manager.Stats(),
		}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			s.logger.Warn("Failed to write state", "error", err)
		}
	}
}

// handleGetExport downloads the progress export.
func (s *Server) handleGetExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		blob := s.manager.Export()
		s.mu.Unlock()

		var buf bytes.Buffer
		if err := export.Encode(&buf, blob); err != nil {
			s.logger.Error("Failed to encode export", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFileName+`"`)
		buf.WriteTo(w)
	}
}

// handlePostAction applies one action and sends the browser back to the card.
// A reset only goes through with confirm=yes in the form.
func (s *Server) handlePostAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, err := controls.ParseAction(r.PathValue("name"))
		if err != nil {
			http.Error(w, "Unknown action", http.StatusNotFound)
			return
		}
		if action == controls.Export {
			http.Redirect(w, r, "/export", http.StatusSeeOther)
			return
		}

		confirmed := r.PostFormValue("confirm") == "yes"
		opts := append(append([]controls.Option(nil), s.opts...),
			controls.WithConfirm(func(string) bool { return confirmed }))

		s.mu.Lock()
		err = controls.New(s.manager, opts...).Do(action)
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("Action failed", "action", action, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, controls.ErrUnknownAction) {
				status = http.StatusNotFound
			}
			http.Error(w, "Action failed", status)
			return
		}
		s.logger.Debug("Action applied", "action", action)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
