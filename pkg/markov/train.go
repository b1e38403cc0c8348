package markov

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Build tokenizes raw text with the default Tokenizer and trains a new chain of
// the given order on it. Empty or unusable text yields an empty chain, not an
// error; only an invalid order fails.
func Build(raw string, order int, opts ...ChainOption) (*Chain, error) {
	c, err := NewChain(order, opts...)
	if err != nil {
		return nil, err
	}
	c.Train(NewTokenizer().Sentences(raw))
	return c, nil
}

// BuildFromReader is like Build but streams the text from r.
func BuildFromReader(r io.Reader, order int, opts ...ChainOption) (*Chain, error) {
	c, err := NewChain(order, opts...)
	if err != nil {
		return nil, err
	}
	if err = c.TrainReader(r, NewTokenizer()); err != nil {
		return nil, err
	}
	return c, nil
}

// Train learns from already tokenized sentences. Every token is interned, but a
// sentence shorter than the chain's order adds no states. Transitions
// accumulate across sentences: the same window seen in two sentences is one
// state.
func (c *Chain) Train(sentences [][]string) {
	var trained, skipped int
	for _, sentence := range sentences {
		if c.trainSentence(sentence) {
			trained++
		} else {
			skipped++
		}
	}
	c.logTrained(trained, skipped)
}

// TrainReader learns from a stream of raw text split by tokenizer. It only fails
// if the stream itself does, in which case sentences read so far stay learned.
func (c *Chain) TrainReader(r io.Reader, tokenizer *Tokenizer) error {
	stream := tokenizer.NewStream(r)
	var trained, skipped int
	for {
		sentence, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("tokenizer error: %w", err)
		}
		if c.trainSentence(sentence) {
			trained++
		} else {
			skipped++
		}
	}
	c.logTrained(trained, skipped)
	return nil
}

// trainSentence reports whether the sentence was long enough to form a state.
func (c *Chain) trainSentence(sentence []string) bool {
	ids := make([]WordID, len(sentence))
	for i, form := range sentence {
		w, _ := c.words.resolve(form, true)
		ids[i] = w.id
	}
	if len(ids) < c.order {
		return false
	}

	last := len(ids) - 1
	for j := c.order - 1; j <= last; j++ {
		next := EndOfSentence
		if j < last {
			next = ids[j+1]
		}
		state := c.states.stateFor(ids[j-c.order+1:j+1], true)
		state.next.observe(next)
	}
	return true
}

func (c *Chain) logTrained(trained, skipped int) {
	c.logger.Info("Training completed",
		slog.Int("order", c.order),
		slog.Int("sentences_processed", trained),
		slog.Int("sentences_skipped", skipped),
		slog.Int("words", c.words.size()),
		slog.Int("states", c.states.size()),
	)
}
