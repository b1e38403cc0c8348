package markov

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateStream(t *testing.T) {
	t.Run("Successful stream", func(t *testing.T) {
		c := newTestChain(t, 2, "one fish two fish")
		stream, err := c.GenerateStream(context.Background())
		if err != nil {
			t.Fatalf("GenerateStream failed: %v", err)
		}

		var pieces []string
		for piece := range stream {
			pieces = append(pieces, piece)
		}
		if len(pieces) == 0 || pieces[len(pieces)-1] != Terminator {
			t.Fatalf("stream pieces = %q, want a trailing %q", pieces, Terminator)
		}

		// Every start state lies on the single training sentence.
		valid := map[string]bool{
			"onefishtwofish。": true,
			"fishtwofish。":    true,
			"twofish。":        true,
		}
		if got := strings.Join(pieces, ""); !valid[got] {
			t.Errorf("expected stream to generate a suffix of the corpus, but got %q", got)
		}
	})

	t.Run("Leading comma is dropped", func(t *testing.T) {
		c := newTestChain(t, 1, "， hello")
		for i := 0; i < 10; i++ {
			stream, err := c.GenerateStream(context.Background())
			if err != nil {
				t.Fatalf("GenerateStream failed: %v", err)
			}
			var sb strings.Builder
			for piece := range stream {
				if piece == "" {
					t.Error("stream sent an empty piece")
				}
				sb.WriteString(piece)
			}
			if got := sb.String(); got != "hello。" {
				t.Errorf("stream = %q, want %q", got, "hello。")
			}
		}
	})

	t.Run("Empty model", func(t *testing.T) {
		c := newTestChain(t, 2)
		if _, err := c.GenerateStream(context.Background()); !errors.Is(err, ErrEmptyModel) {
			t.Errorf("GenerateStream error = %v, want ErrEmptyModel", err)
		}
	})

	t.Run("Broken walk", func(t *testing.T) {
		for _, damage := range []string{"no transitions", "no state for window"} {
			stream, err := brokenChain(t, damage).GenerateStream(context.Background())
			if err != nil {
				t.Fatalf("GenerateStream failed: %v", err)
			}
			var pieces []string
			for piece := range stream {
				pieces = append(pieces, piece)
			}
			if len(pieces) > 0 && pieces[len(pieces)-1] == Terminator {
				t.Errorf("%s: stream pieces = %q, want no terminator", damage, pieces)
			}
		}
	})

	t.Run("Stream cancellation", func(t *testing.T) {
		// A loop with no end of sentence keeps the stream going until cancelled.
		c, err := NewChain(1, WithSeed(3))
		if err != nil {
			t.Fatal(err)
		}
		c.Train([][]string{{"a", "b"}})
		c.states.stateFor([]WordID{1}, false).next = distribution[WordID]{
			outcomes: []outcome[WordID]{{value: 0, prob: 1}},
			total:    1,
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stream, err := c.GenerateStream(ctx)
		if err != nil {
			t.Fatalf("GenerateStream failed: %v", err)
		}

		// Read one piece, then cancel
		<-stream
		cancel()

		// The channel should now close quickly
		timeout := time.After(time.Second)
		for {
			select {
			case piece, ok := <-stream:
				if !ok {
					return // Success, channel is closed.
				}
				if piece == Terminator {
					t.Fatal("stream finished a sentence that has no end")
				}
			case <-timeout:
				t.Fatal("timed out waiting for stream channel to close after cancellation")
			}
		}
	})
}

func BenchmarkGenerateStream(b *testing.B) {
	c, err := BuildFromReader(strings.NewReader(createBenchmarkCorpus()), 2, WithSeed(1), WithMaxWords(50))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stream, err := c.GenerateStream(ctx)
		if err != nil {
			b.Fatal(err)
		}
		for range stream {
		}
	}
}
