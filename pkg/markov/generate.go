package markov

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// Terminator is appended to every generated sentence.
	Terminator = "。"
	// LeadingComma is stripped from the start of a generated sentence, which
	// happens when the random starting state begins mid-clause.
	LeadingComma = "，"
)

// GenerateSentence walks the chain from a uniformly random state until an
// end-of-sentence transition is drawn (or the WithMaxWords cap is reached), then
// renders every word with a sampled surface form. Words are joined without a
// separator and the result ends with Terminator.
//
// It returns ErrEmptyModel if the chain has no states. Capitalization and
// escaping are left to the caller.
func (c *Chain) GenerateSentence() (string, error) {
	var ids []WordID
	err := c.walk(func(id WordID) bool {
		ids = append(ids, id)
		return true
	})
	if err != nil {
		return "", err
	}
	return c.render(ids), nil
}

// walk draws one sentence, passing each word to yield in order. It stops early
// when yield returns false.
func (c *Chain) walk(yield func(WordID) bool) error {
	if c.states.size() == 0 {
		return fmt.Errorf("cannot generate a sentence: %w", ErrEmptyModel)
	}

	start := c.states.at(c.rng.IntN(c.states.size()))
	window := append(make([]WordID, 0, c.order), start.words...)
	for _, id := range window {
		if !yield(id) {
			return nil
		}
	}

	for length := len(window); ; length++ {
		if c.maxWords > 0 && length >= c.maxWords {
			c.logger.Debug("Generation terminated by reaching max words",
				slog.Int("max_words", c.maxWords),
				slog.Int("generated_length", length),
			)
			return nil
		}

		// Every window reachable from a trained state was itself trained, so a
		// miss means the chain is inconsistent rather than merely unlucky.
		state := c.states.stateFor(window, false)
		if state == nil {
			return fmt.Errorf("no state for window %v: %w", window, ErrEmptyModel)
		}
		next, ok := state.next.pick(c.rng.Float64())
		if !ok {
			return fmt.Errorf("state %q has no transitions: %w", state.key, ErrEmptyModel)
		}
		if next == EndOfSentence {
			c.logger.Debug("Generation terminated by end of sentence",
				slog.Int("generated_length", length),
			)
			return nil
		}
		if !yield(next) {
			return nil
		}
		copy(window, window[1:])
		window[len(window)-1] = next
	}
}

// GenerateSentences generates n independent sentences.
func (c *Chain) GenerateSentences(n int) ([]string, error) {
	sentences := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := c.GenerateSentence()
		if err != nil {
			return nil, err
		}
		sentences = append(sentences, s)
	}
	return sentences, nil
}

func (c *Chain) render(ids []WordID) string {
	var builder strings.Builder
	for _, id := range ids {
		builder.WriteString(c.words.get(id).surface(c.rng.Float64()))
	}
	builder.WriteString(Terminator)
	return strings.TrimPrefix(builder.String(), LeadingComma)
}
