package main

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// PageData is the model rendered by index.gohtml.
type PageData struct {
	Text         string
	Order        int
	Orders       []int
	Sentences    int
	MaxSentences int
	Results      []string
	Words        int
	States       int
	Error        string
}

type Server struct {
	config    *Config
	db        *sql.DB
	logger    *slog.Logger
	metrics   *Metrics
	markovAPI *MarkovAPI
	statsAPI  *StatsAPI
	serverAPI *ServerAPI
	mux       *http.ServeMux
	page      *template.Template
}

func NewServer(config *Config, logger *slog.Logger, db *sql.DB) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	metrics := NewMetrics()
	statsAPI := NewStatsAPI(db, logger)
	markovAPI := NewMarkovAPI(config.Generation, statsAPI, metrics, logger)
	serverAPI := NewServerAPI(logger)

	server := &Server{
		config:    config,
		db:        db,
		logger:    logger,
		metrics:   metrics,
		markovAPI: markovAPI,
		statsAPI:  statsAPI,
		serverAPI: serverAPI,
		mux:       http.NewServeMux(),
		page:      page,
	}

	server.markovAPI.RegisterRoutes(server.mux)
	server.statsAPI.RegisterRoutes(server.mux)
	server.serverAPI.RegisterRoutes(server.mux)
	if config.Server.MetricsPath != "" {
		server.mux.Handle(config.Server.MetricsPath, metrics.Handler())
	}
	server.mux.HandleFunc("/favicon.ico", handleFavicon)
	server.mux.HandleFunc("/", server.handleIndex)

	return server, nil
}

// ServeHTTP makes the Server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleIndex renders the form on GET and the form plus results on POST.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	gen := s.config.Generation
	data := PageData{
		Order:        gen.DefaultOrder,
		Sentences:    gen.DefaultSentences,
		MaxSentences: gen.MaxSentences,
	}
	for o := gen.MinOrder; o <= gen.MaxOrder; o++ {
		data.Orders = append(data.Orders, o)
	}

	status := http.StatusOK
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		status = s.handleForm(w, r, &data)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.page.ExecuteTemplate(w, "index.gohtml", data); err != nil {
		s.logger.Error("Failed to render page template", "error", err)
	}
}

// handleForm runs a form submission through the generator, filling in data,
// and returns the status code for the page.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request, data *PageData) int {
	gen := s.config.Generation
	r.Body = http.MaxBytesReader(w, r.Body, gen.MaxInputBytes+bodyOverhead)
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			data.Error = "The text is too large."
			return http.StatusRequestEntityTooLarge
		}
		data.Error = "The form could not be read."
		return http.StatusBadRequest
	}

	data.Text = r.PostForm.Get("text")
	req := GenerateRequest{Text: data.Text}
	// Unparseable numbers fall back to the defaults, like missing ones.
	if order, err := strconv.Atoi(r.PostForm.Get("order")); err == nil {
		req.Order = order
		data.Order = order
	}
	if n, err := strconv.Atoi(r.PostForm.Get("sentences")); err == nil {
		req.Sentences = n
		data.Sentences = max(1, min(n, gen.MaxSentences))
	}

	resp, err := s.markovAPI.Generate(r.Context(), req)
	if resp != nil {
		data.Words, data.States = resp.Words, resp.States
	}
	if err != nil {
		code := statusForError(err)
		switch code {
		case http.StatusUnprocessableEntity:
			if resp != nil && resp.Words == 0 {
				data.Error = "The text has no words to generate from."
			} else {
				data.Error = fmt.Sprintf("No sentence has at least %d words, so there is nothing to generate from.", data.Order)
			}
		case http.StatusInternalServerError:
			s.logger.Error("Generation failed", "error", err)
			data.Error = "Something went wrong while generating."
		default:
			data.Error = err.Error()
		}
		return code
	}
	data.Results = resp.Sentences
	return http.StatusOK
}

// handleFavicon returns no content so browsers stop asking.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}
