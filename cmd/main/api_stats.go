package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS generation_runs (
    run_id        TEXT PRIMARY KEY,
    created_at    INTEGER NOT NULL,
    model_order   INTEGER NOT NULL,
    input_bytes   INTEGER NOT NULL,
    word_count    INTEGER NOT NULL,
    state_count   INTEGER NOT NULL,
    sentences     INTEGER NOT NULL,
    outcome       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS generation_runs_created_at ON generation_runs (created_at);
`

// Run outcomes recorded in generation_runs.
const (
	outcomeOK         = "ok"
	outcomeEmptyModel = "empty_model"
	outcomeInvalid    = "invalid"
	outcomeError      = "error"
)

// recentRunsLimit caps how many rows /api/stats/recent returns.
const recentRunsLimit = 50

// Run is one generation request as recorded in the history. Only sizes are
// kept; neither the input text nor the model is stored.
type Run struct {
	ID         string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
	Order      int       `json:"order"`
	InputBytes int       `json:"input_bytes"`
	Words      int       `json:"words"`
	States     int       `json:"states"`
	Sentences  int       `json:"sentences"`
	Outcome    string    `json:"outcome"`
}

// StatsSummary provides a high-level overview of all recorded runs.
type StatsSummary struct {
	TotalRuns      int64   `json:"total_runs"`
	SuccessfulRuns int64   `json:"successful_runs"`
	EmptyModelRuns int64   `json:"empty_model_runs"`
	AverageWords   float64 `json:"average_words"`
	AverageStates  float64 `json:"average_states"`
}

// StatsAPI records generation runs and serves the history handlers.
type StatsAPI struct {
	db     *sql.DB
	logger *slog.Logger
}

func initDB(dataSource string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriver, dataSource)
	if err != nil {
		return nil, err
	}
	// The same pragmas work for both drivers, unlike their DSN parameters.
	if _, err = db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not configure database: %w", err)
	}
	return db, nil
}

func setupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

func NewStatsAPI(db *sql.DB, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		db:     db,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
	mux.HandleFunc("/api/stats/recent", s.handleRecent)
}

// RecordRun stores a run, assigning its ID and timestamp when unset.
func (s *StatsAPI) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO generation_runs (run_id, created_at, model_order, input_bytes, word_count, state_count, sentences, outcome)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, run.ID, run.CreatedAt.UnixNano(), run.Order, run.InputBytes, run.Words, run.States, run.Sentences, run.Outcome)
	if err != nil {
		return fmt.Errorf("failed to insert generation run %s: %w", run.ID, err)
	}
	return nil
}

// Summary aggregates every recorded run.
func (s *StatsAPI) Summary(ctx context.Context) (*StatsSummary, error) {
	var summary StatsSummary
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*),
               COALESCE(SUM(outcome = ?), 0),
               COALESCE(SUM(outcome = ?), 0),
               COALESCE(AVG(CASE WHEN outcome = ? THEN word_count END), 0),
               COALESCE(AVG(CASE WHEN outcome = ? THEN state_count END), 0)
        FROM generation_runs
    `, outcomeOK, outcomeEmptyModel, outcomeOK, outcomeOK).Scan(
		&summary.TotalRuns,
		&summary.SuccessfulRuns,
		&summary.EmptyModelRuns,
		&summary.AverageWords,
		&summary.AverageStates,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize generation runs: %w", err)
	}
	return &summary, nil
}

// Recent returns up to limit runs, newest first.
func (s *StatsAPI) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT run_id, created_at, model_order, input_bytes, word_count, state_count, sentences, outcome
        FROM generation_runs ORDER BY created_at DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		var createdAt int64
		if err = rows.Scan(&run.ID, &createdAt, &run.Order, &run.InputBytes, &run.Words, &run.States, &run.Sentences, &run.Outcome); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.Unix(0, createdAt).UTC()
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	summary, err := s.Summary(r.Context())
	if err != nil {
		s.logger.Error("Failed to summarize runs", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (s *StatsAPI) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := recentRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, recentRunsLimit)
	}
	runs, err := s.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query recent runs", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, runs)
}
