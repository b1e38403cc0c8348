package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CTAG07/parrot/pkg/markov"
)

// bodyOverhead is the allowance for the JSON envelope around the text when
// limiting request bodies.
const bodyOverhead = 4096

var (
	errInvalidRequest = errors.New("invalid request")
	errInputTooLarge  = errors.New("input text too large")
)

// GenerateRequest is the body of POST /api/markov/generate. Zero values select
// the configured defaults.
type GenerateRequest struct {
	Text      string `json:"text"`
	Order     int    `json:"order"`
	Sentences int    `json:"sentences"`
}

// GenerateResponse carries the generated sentences and the size of the chain
// they came from.
type GenerateResponse struct {
	Sentences []string `json:"sentences"`
	Order     int      `json:"order"`
	Words     int      `json:"words"`
	States    int      `json:"states"`
}

// MarkovAPI builds a fresh chain per request and generates from it.
type MarkovAPI struct {
	config  *GenerationConfig
	stats   *StatsAPI
	metrics *Metrics
	logger  *slog.Logger
}

// NewMarkovAPI creates a new instance of the MarkovAPI.
func NewMarkovAPI(config *GenerationConfig, stats *StatsAPI, metrics *Metrics, logger *slog.Logger) *MarkovAPI {
	return &MarkovAPI{
		config:  config,
		stats:   stats,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for all /api/markov endpoints.
func (m *MarkovAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/markov/generate", m.handleGenerate)
}

// Generate validates req, trains a chain on its text and generates the
// requested number of sentences. Every call is recorded in the run history
// and metrics, whatever its outcome. On ErrEmptyModel the response still
// carries the chain's size.
func (m *MarkovAPI) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	run := &Run{InputBytes: len(req.Text)}

	resp, err := m.generate(req, run)

	switch {
	case err == nil:
		run.Outcome = outcomeOK
	case errors.Is(err, markov.ErrEmptyModel):
		run.Outcome = outcomeEmptyModel
	case errors.Is(err, errInvalidRequest), errors.Is(err, errInputTooLarge), errors.Is(err, markov.ErrInvalidOrder):
		run.Outcome = outcomeInvalid
	default:
		run.Outcome = outcomeError
	}
	m.metrics.observeRun(run, time.Since(start).Seconds())
	if recErr := m.stats.RecordRun(ctx, run); recErr != nil {
		m.logger.Warn("Failed to record generation run", "error", recErr)
	}

	m.logger.Debug("Generation request served",
		slog.String("run_id", run.ID),
		slog.String("outcome", run.Outcome),
		slog.Int("order", run.Order),
		slog.Int("words", run.Words),
		slog.Int("states", run.States),
		slog.Int("sentences", run.Sentences),
	)
	return resp, err
}

func (m *MarkovAPI) generate(req GenerateRequest, run *Run) (*GenerateResponse, error) {
	if int64(len(req.Text)) > m.config.MaxInputBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds the limit of %d", errInputTooLarge, len(req.Text), m.config.MaxInputBytes)
	}

	order := req.Order
	if order == 0 {
		order = m.config.DefaultOrder
	}
	run.Order = order
	if order < m.config.MinOrder || order > m.config.MaxOrder {
		return nil, fmt.Errorf("%w: order must be between %d and %d, got %d", errInvalidRequest, m.config.MinOrder, m.config.MaxOrder, order)
	}

	count := req.Sentences
	if count == 0 {
		count = m.config.DefaultSentences
	}
	count = max(1, min(count, m.config.MaxSentences))

	chain, err := markov.Build(req.Text, order,
		markov.WithMaxWords(m.config.MaxWords),
		markov.WithLogger(m.logger),
	)
	if err != nil {
		return nil, err
	}
	run.Words, run.States = chain.WordCount(), chain.StateCount()
	resp := &GenerateResponse{
		Sentences: []string{},
		Order:     order,
		Words:     run.Words,
		States:    run.States,
	}

	sentences, err := chain.GenerateSentences(count)
	if err != nil {
		return resp, err
	}
	for i, s := range sentences {
		sentences[i] = capitalizeFirstASCII(s)
	}
	resp.Sentences = sentences
	run.Sentences = len(sentences)
	return resp, nil
}

// handleGenerate serves POST /api/markov/generate.
func (m *MarkovAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, m.config.MaxInputBytes+bodyOverhead)
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	resp, err := m.Generate(r.Context(), req)
	if err != nil {
		code := statusForError(err)
		if code == http.StatusInternalServerError {
			m.logger.Error("Generation failed", "error", err)
		}
		respondWithError(w, code, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// statusForError maps a generation error to an HTTP status code.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInvalidRequest), errors.Is(err, markov.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, markov.ErrEmptyModel):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// capitalizeFirstASCII upper-cases the first ASCII letter of s, wherever it is.
// Text without ASCII letters is returned unchanged.
func capitalizeFirstASCII(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z':
			return s[:i] + string(c-('a'-'A')) + s[i+1:]
		case 'A' <= c && c <= 'Z':
			return s
		}
	}
	return s
}
