package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatsAPI(t *testing.T) *StatsAPI {
	t.Helper()
	return NewStatsAPI(newTestDB(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecordRun(t *testing.T) {
	api := newTestStatsAPI(t)
	ctx := context.Background()

	run := &Run{Order: 2, InputBytes: 120, Words: 9, States: 14, Sentences: 3, Outcome: outcomeOK}
	require.NoError(t, api.RecordRun(ctx, run))

	_, err := uuid.Parse(run.ID)
	assert.NoError(t, err, "RecordRun should assign a UUID")
	assert.False(t, run.CreatedAt.IsZero(), "RecordRun should assign a timestamp")

	runs, err := api.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.True(t, run.CreatedAt.Equal(runs[0].CreatedAt), "created_at should round-trip")
	assert.Equal(t, run.Words, runs[0].Words)
	assert.Equal(t, run.States, runs[0].States)

	// IDs are primary keys.
	assert.Error(t, api.RecordRun(ctx, &Run{ID: run.ID, Outcome: outcomeOK}))
}

func TestRecentRuns(t *testing.T) {
	api := newTestStatsAPI(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, api.RecordRun(ctx, &Run{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Order:     i + 1,
			Outcome:   outcomeOK,
		}))
	}

	runs, err := api.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int{5, 4, 3}, []int{runs[0].Order, runs[1].Order, runs[2].Order}, "newest runs come first")
}

func TestStatsSummary(t *testing.T) {
	api := newTestStatsAPI(t)
	ctx := context.Background()

	summary, err := api.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatsSummary{}, *summary)

	for _, run := range []*Run{
		{Words: 4, States: 2, Outcome: outcomeOK},
		{Words: 6, States: 4, Outcome: outcomeOK},
		{Words: 3, Outcome: outcomeEmptyModel},
		{Outcome: outcomeInvalid},
	} {
		require.NoError(t, api.RecordRun(ctx, run))
	}

	summary, err = api.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatsSummary{
		TotalRuns:      4,
		SuccessfulRuns: 2,
		EmptyModelRuns: 1,
		AverageWords:   5,
		AverageStates:  3,
	}, *summary)
}

func TestStatsHandlers(t *testing.T) {
	server := newTestServer(t, nil)
	_, err := server.markovAPI.Generate(context.Background(), GenerateRequest{Text: testCorpus})
	require.NoError(t, err)

	t.Run("Summary", func(t *testing.T) {
		rec := get(server, "/api/stats/summary")
		require.Equal(t, http.StatusOK, rec.Code)
		var summary StatsSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.EqualValues(t, 1, summary.TotalRuns)
		assert.EqualValues(t, 1, summary.SuccessfulRuns)
	})

	t.Run("Recent", func(t *testing.T) {
		rec := get(server, "/api/stats/recent?limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		var runs []Run
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
		require.Len(t, runs, 1)
		assert.Equal(t, outcomeOK, runs[0].Outcome)
	})

	t.Run("Recent with bad limit", func(t *testing.T) {
		for _, limit := range []string{"0", "-3", "ten"} {
			rec := get(server, "/api/stats/recent?limit="+limit)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
		}
	})

	t.Run("Wrong method", func(t *testing.T) {
		rec := postJSON(t, server, "/api/stats/summary", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
