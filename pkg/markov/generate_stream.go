package markov

import (
	"context"
	"fmt"
	"strings"
)

// GenerateStream generates one sentence and returns a read-only channel of its
// rendered pieces: one surface form per word, followed by Terminator.
// Concatenating everything received gives the same kind of sentence as
// GenerateSentence. The channel is closed once the sentence is complete or ctx
// is cancelled.
//
// The chain is used by the streaming goroutine until the channel is closed, so
// the caller must wait for the close, by draining the channel or by cancelling
// ctx and then draining it, before using the chain again.
// It returns ErrEmptyModel if the chain has no states.
func (c *Chain) GenerateStream(ctx context.Context) (<-chan string, error) {
	if c.states.size() == 0 {
		return nil, fmt.Errorf("cannot generate a sentence: %w", ErrEmptyModel)
	}

	pieceChan := make(chan string)

	go func() {
		defer close(pieceChan)

		send := func(piece string) bool {
			select {
			case <-ctx.Done():
				return false
			case pieceChan <- piece:
				return true
			}
		}

		first := true
		err := c.walk(func(id WordID) bool {
			form := c.words.get(id).surface(c.rng.Float64())
			if first {
				first = false
				form = strings.TrimPrefix(form, LeadingComma)
				if form == "" {
					return true
				}
			}
			return send(form)
		})
		if err != nil {
			c.logger.ErrorContext(ctx, "Generation stream failed", "error", err)
			return
		}
		if ctx.Err() != nil {
			c.logger.DebugContext(ctx, "Generation stream cancelled by context")
			return
		}
		send(Terminator)
	}()

	return pieceChan, nil
}
