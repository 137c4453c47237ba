package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/veritas/internal/database"
	"github.com/TobiSchelling/veritas/internal/hybrid"
	"github.com/TobiSchelling/veritas/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

var validate = validator.New()

// DefaultMaxUploadMB caps video uploads when no limit is configured.
const DefaultMaxUploadMB = 200

const sniffBytes = 3072

// Analyzer is the analysis service behind the API.
type Analyzer interface {
	AnalyzeText(ctx context.Context, req pipeline.TextRequest) (*pipeline.Outcome, error)
	AnalyzeVideo(ctx context.Context, req pipeline.VideoRequest) (*pipeline.VideoOutcome, error)
	Status() hybrid.SystemStatus
}

// Server is the HTTP server for the analysis API and history pages.
type Server struct {
	svc       Analyzer
	db        *database.DB
	maxUpload int64
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a new Server. maxUploadMB <= 0 selects DefaultMaxUploadMB.
func New(svc Analyzer, db *database.DB, maxUploadMB int) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":     renderMarkdown,
		"formatPeriod": database.FormatPeriodDisplay,
		"percent":      func(f float64) string { return fmt.Sprintf("%.1f%%", f*100) },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so its "title" and "content"
	// blocks don't collide with other pages.
	pageNames := []string{"index.html", "analysis.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	if maxUploadMB <= 0 {
		maxUploadMB = DefaultMaxUploadMB
	}
	s := &Server{
		svc:       svc,
		db:        db,
		maxUpload: int64(maxUploadMB) << 20,
		pages:     pages,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// JSON API
	s.mux.HandleFunc("POST /predict", s.handlePredict)
	s.mux.HandleFunc("GET /system-status", s.handleSystemStatus)
	s.mux.HandleFunc("GET /analysis-modes", s.handleAnalysisModes)
	s.mux.HandleFunc("GET /user-stats", s.handleUserStats)
	s.mux.HandleFunc("GET /user-history", s.handleUserHistory)
	s.mux.HandleFunc("POST /analyze-video", s.handleAnalyzeVideo)

	// HTML pages
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /analysis/{uid}", s.handleAnalysis)
}

type predictRequest struct {
	Text string `json:"text" validate:"required_without=URL,max=100000"`
	URL  string `json:"url" validate:"omitempty,url"`
	Mode string `json:"mode" validate:"max=32"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Text" && verrs[0].Tag() == "required_without" {
			writeError(w, http.StatusBadRequest, "Either text or URL must be provided")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.svc.AnalyzeText(r.Context(), pipeline.TextRequest{
		Text:     req.Text,
		URL:      req.URL,
		Mode:     req.Mode,
		Username: userFrom(r),
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, pipeline.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "Either text or URL must be provided")
	case errors.Is(err, pipeline.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrExtraction):
		log.Printf("URL extraction failed for %s: %v", req.URL, err)
		writeError(w, http.StatusBadRequest, "Could not extract text from URL")
	default:
		log.Printf("Error analyzing text: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleAnalysisModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, hybrid.ModeMap())
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetUserStats(userOrAnonymous(r))
	if err != nil {
		log.Printf("Error loading user stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUserHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	analyses, err := s.db.GetUserHistory(userOrAnonymous(r), limit)
	if err != nil {
		log.Printf("Error loading user history: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if analyses == nil {
		analyses = []database.Analysis{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"analyses": analyses,
		"total":    len(analyses),
	})
}

func (s *Server) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Video file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No video file provided")
		return
	}
	defer file.Close()

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		writeError(w, http.StatusBadRequest, "Could not read video file")
		return
	}
	head = head[:n]
	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "video/") {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Sprintf("Unsupported file type %s", mt.String()))
		return
	}

	tmp, err := os.CreateTemp("", "veritas-*"+mt.Extension())
	if err != nil {
		log.Printf("Error creating temp file: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, io.MultiReader(bytes.NewReader(head), file))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Printf("Error storing upload: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out, err := s.svc.AnalyzeVideo(r.Context(), pipeline.VideoRequest{
		Path:     tmp.Name(),
		Filename: filepath.Base(header.Filename),
		Username: userFrom(r),
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, pipeline.ErrVideoDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("Error analyzing video: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.db.GetRecentAnalyses(50)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	runs, _ := s.db.GetScanRuns(10)
	stats, _ := s.db.GetStats()

	s.render(w, "index.html", map[string]any{
		"Analyses": analyses,
		"ScanRuns": runs,
		"Stats":    stats,
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.db.GetAnalysis(r.PathValue("uid"))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if a == nil {
		http.NotFound(w, r)
		return
	}

	var details bytes.Buffer
	if len(a.TechnicalDetails) > 0 {
		_ = json.Indent(&details, a.TechnicalDetails, "", "  ")
	}
	s.render(w, "analysis.html", map[string]any{
		"Analysis": a,
		"Details":  details.String(),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// userFrom returns the caller named by the X-User header or the user query
// parameter.
func userFrom(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get("X-User")); u != "" {
		return u
	}
	return strings.TrimSpace(r.URL.Query().Get("user"))
}

func userOrAnonymous(r *http.Request) string {
	if u := userFrom(r); u != "" {
		return u
	}
	return pipeline.AnonymousUser
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(svc Analyzer, db *database.DB, maxUploadMB, port int) error {
	srv, err := New(svc, db, maxUploadMB)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
