// Package web serves the browser form for generating portfolio pages.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jmylchreest/folio/internal/logger"
	"github.com/jmylchreest/folio/internal/output"
	"github.com/jmylchreest/folio/pkg/folio"
	"github.com/jmylchreest/folio/pkg/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Generator produces a result for a profile; *folio.Folio implements it.
type Generator interface {
	Generate(ctx context.Context, p profile.Profile) (*folio.Result, error)
	Generator() string
}

// Config configures a Server.
type Config struct {
	Generator Generator

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// MaxResults bounds how many results stay downloadable.
	MaxResults int

	// MaxUpload bounds the multipart form size in bytes.
	MaxUpload int64

	// Defaults pre-fills the form.
	Defaults profile.Profile
}

// Server handles the web UI.
type Server struct {
	cfg   Config
	store *store
}

// New creates a Server.
func New(cfg Config) *Server {
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 100
	}
	if cfg.MaxUpload == 0 {
		cfg.MaxUpload = 32 << 20
	}
	return &Server{cfg: cfg, store: newStore(cfg.MaxResults)}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /result/{id}", s.handleResult)
	mux.HandleFunc("GET /download/{id}", s.handleDownload)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.cfg.Metrics != nil {
		mux.Handle("GET /metrics", s.cfg.Metrics)
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server listening", "addr", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type formPage struct {
	Title     string
	Generator string
	Profile   profile.Profile
	Errors    profile.ValidationErrors
}

type resultPage struct {
	Title  string
	Result *folio.Result
	Raw    string
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "form.html", formPage{
		Title:     "Portfolio generator",
		Generator: s.cfg.Generator.Generator(),
		Profile:   s.cfg.Defaults,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	p, err := profileFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := p.Validate(); err != nil {
		var verrs profile.ValidationErrors
		if !errors.As(err, &verrs) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.render(w, http.StatusUnprocessableEntity, "form.html", formPage{
			Title:     "Portfolio generator",
			Generator: s.cfg.Generator.Generator(),
			Profile:   p,
			Errors:    verrs,
		})
		return
	}

	result, err := s.cfg.Generator.Generate(r.Context(), p)
	if err != nil {
		logger.Error("generation failed", "profile", p.FullName, "error", err)
		http.Error(w, "generation failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.store.put(result)

	logger.Info("portfolio generated",
		"run_id", result.RunID,
		"found", result.Found,
		"status", result.StatusCode,
		"duration", result.GenerateDuration)

	s.renderResult(w, result)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result, ok := s.store.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.renderResult(w, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	result, ok := s.store.get(r.PathValue("id"))
	if !ok || !result.Found {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.DefaultPageName))
	_, _ = w.Write([]byte(result.HTML))
}

func (s *Server) renderResult(w http.ResponseWriter, result *folio.Result) {
	raw, err := json.MarshalIndent(result.Response, "", "  ")
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", result.Response))
	}

	s.render(w, http.StatusOK, "result.html", resultPage{
		Title:  "Portfolio for " + result.Profile,
		Result: result,
		Raw:    string(raw),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		logger.Error("template failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(sb.String()))
}

// profileFromRequest reads the form fields and attachment metadata.
func profileFromRequest(r *http.Request) (profile.Profile, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			return profile.Profile{}, fmt.Errorf("invalid form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return profile.Profile{}, fmt.Errorf("invalid form: %w", err)
	}

	p := profile.Profile{
		FullName:        r.FormValue("full_name"),
		JobTitle:        r.FormValue("job_title"),
		AboutMe:         r.FormValue("about_me"),
		Skills:          r.FormValue("skills"),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Phone:           r.FormValue("phone"),
		Location:        r.FormValue("location"),
		Birth:           strings.TrimSpace(r.FormValue("birth")),
		ExperienceYears: strings.TrimSpace(r.FormValue("experience_years")),
		Education:       r.FormValue("education"),
		SocialLinks:     r.FormValue("social_links"),
		UserID:          strings.TrimSpace(r.FormValue("user_id")),
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			p.Files = append(p.Files, profile.FileRef{
				Name: fh.Filename,
				Size: fh.Size,
				MIME: fh.Header.Get("Content-Type"),
			})
		}
	}

	return p, nil
}
