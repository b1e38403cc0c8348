package markov

import "errors"

var (
	// ErrEmptyModel is returned when there is nothing to sample from: the chain
	// has no states, or a walk reached a window with no learned transitions.
	ErrEmptyModel = errors.New("markov: empty model")
	// ErrInvalidOrder is returned when a chain is constructed with an order below 1.
	ErrInvalidOrder = errors.New("markov: order must be at least 1")
)
