package markov

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
)

// Chain is an n-th order Markov chain over words. It owns its words and states;
// nothing is ever removed once learned.
//
// A Chain is not safe for concurrent use. Training and generation both mutate it
// (generation advances the random source), so callers sharing a chain across
// goroutines must serialize access themselves.
type Chain struct {
	order    int
	words    *registry
	states   *stateTable
	rng      *rand.Rand
	maxWords int
	logger   *slog.Logger
}

// ChainOption configures a Chain at construction.
type ChainOption func(*Chain)

// WithRand sets the random source used for every sampling decision. Passing a
// seeded source makes generation reproducible.
func WithRand(r *rand.Rand) ChainOption {
	return func(c *Chain) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithSeed is a shorthand for WithRand with a PCG source seeded from seed.
func WithSeed(seed uint64) ChainOption {
	return func(c *Chain) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithMaxWords caps the number of words in a generated sentence. Once the cap is
// reached the walk stops and the words so far are rendered as a sentence.
// A cap below the chain's order is raised to the order, since a sentence always
// starts with a whole state. A value of 0 or less disables the cap, which is the default: a walk then only
// ends when an end-of-sentence transition is drawn.
func WithMaxWords(n int) ChainOption {
	return func(c *Chain) { c.maxWords = n }
}

// WithLogger sets the logger. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) { c.SetLogger(logger) }
}

// NewChain creates an empty chain of the given order, the number of preceding
// words used to predict the next one.
func NewChain(order int, opts ...ChainOption) (*Chain, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}
	c := &Chain{
		order:  order,
		words:  newRegistry(),
		states: newStateTable(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	// The starting state is always emitted whole.
	if c.maxWords > 0 && c.maxWords < c.order {
		c.maxWords = c.order
	}
	return c, nil
}

// SetLogger sets the logger for the Chain. A nil logger is ignored.
func (c *Chain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Order returns the number of words in each state.
func (c *Chain) Order() int { return c.order }

// WordCount returns the number of distinct canonical words learned.
func (c *Chain) WordCount() int { return c.words.size() }

// StateCount returns the number of distinct states learned.
func (c *Chain) StateCount() int { return c.states.size() }

// Lookup returns the Word a surface form folds to, without recording an
// observation. It reports false if the word was never trained.
func (c *Chain) Lookup(form string) (*Word, bool) {
	return c.words.resolve(form, false)
}

// Word returns the Word with the given ID, or nil if the ID is unknown.
func (c *Chain) Word(id WordID) *Word {
	return c.words.get(id)
}

// State returns the State made of the given surface forms, or false if any form
// is unknown, the number of forms differs from the order, or the window was
// never trained.
func (c *Chain) State(forms ...string) (*State, bool) {
	if len(forms) != c.order {
		return nil, false
	}
	ids := make([]WordID, len(forms))
	for i, form := range forms {
		w, ok := c.words.resolve(form, false)
		if !ok {
			return nil, false
		}
		ids[i] = w.id
	}
	s := c.states.stateFor(ids, false)
	return s, s != nil
}

// States returns every state in the order it was first learned.
func (c *Chain) States() []*State {
	return append([]*State(nil), c.states.states...)
}
