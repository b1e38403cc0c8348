package markov

import (
	"go/build"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const probabilityTolerance = 1e-9

// newTestChain creates a seeded chain of the given order and trains it on the
// given sentences, each a space separated list of tokens.
func newTestChain(t testing.TB, order int, sentences ...string) *Chain {
	t.Helper()
	c, err := NewChain(order, WithSeed(42))
	if err != nil {
		t.Fatalf("NewChain(%d) error = %v", order, err)
	}
	tokenized := make([][]string, 0, len(sentences))
	for _, s := range sentences {
		tokenized = append(tokenized, strings.Fields(s))
	}
	c.Train(tokenized)
	return c
}

// setupTrainedChain is a convenience helper that trains an order 2 chain on a
// small fixed corpus.
func setupTrainedChain(t testing.TB) *Chain {
	t.Helper()
	return newTestChain(t, 2, "one fish two fish", "red fish blue fish")
}

// assertNormalized checks that every word and state of c carries a
// distribution summing to one.
func assertNormalized(t *testing.T, c *Chain) {
	t.Helper()
	for _, w := range c.words.words {
		if sum := w.variants.sum(); math.Abs(sum-1) > probabilityTolerance {
			t.Errorf("variants of %q sum to %v, want 1", w.key, sum)
		}
	}
	for _, s := range c.states.states {
		if sum := s.next.sum(); math.Abs(sum-1) > probabilityTolerance {
			t.Errorf("transitions of state %q sum to %v, want 1", s.key, sum)
		}
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= probabilityTolerance
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
