package markov

import (
	"bufio"
	"io"
	"regexp"
)

const (
	// DefaultSentenceRegex matches the punctuation that ends a sentence.
	DefaultSentenceRegex = `[.!?。！？]`
	// DefaultWordRegex matches one token: a maximal run of ASCII letters, CJK
	// unified ideographs, digits, underscores, apostrophes, hyphens and
	// full-width commas. Runs are never split further, so "co-op，ok" is a
	// single token.
	DefaultWordRegex = `[A-Za-z\x{4e00}-\x{9fff}0-9_'\-，]+`
	// DefaultMaxSentenceBytes bounds the size of one sentence read from a stream.
	DefaultMaxSentenceBytes = 1 << 20
)

// Tokenizer splits raw text into sentences of word tokens.
// Its behavior can be customized with functional options.
type Tokenizer struct {
	sentenceRegex    *regexp.Regexp
	wordRegex        *regexp.Regexp
	maxSentenceBytes int
}

// Option is a function that configures a Tokenizer.
type Option func(*Tokenizer)

// WithSentenceRegex sets the regex that separates sentences.
// Default: DefaultSentenceRegex
func WithSentenceRegex(sentenceRegex string) Option {
	return func(t *Tokenizer) {
		t.sentenceRegex = regexp.MustCompile(sentenceRegex)
	}
}

// WithWordRegex sets the regex whose matches become tokens.
// Default: DefaultWordRegex
func WithWordRegex(wordRegex string) Option {
	return func(t *Tokenizer) {
		t.wordRegex = regexp.MustCompile(wordRegex)
	}
}

// WithMaxSentenceBytes sets the largest sentence a stream will buffer before
// failing with bufio.ErrTooLong.
// Default: DefaultMaxSentenceBytes
func WithMaxSentenceBytes(n int) Option {
	return func(t *Tokenizer) {
		if n > 0 {
			t.maxSentenceBytes = n
		}
	}
}

// NewTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		sentenceRegex:    regexp.MustCompile(DefaultSentenceRegex),
		wordRegex:        regexp.MustCompile(DefaultWordRegex),
		maxSentenceBytes: DefaultMaxSentenceBytes,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Sentences tokenizes all of text. Segments without any token are dropped.
func (t *Tokenizer) Sentences(text string) [][]string {
	var out [][]string
	for _, segment := range t.sentenceRegex.Split(text, -1) {
		if tokens := t.Tokens(segment); len(tokens) > 0 {
			out = append(out, tokens)
		}
	}
	return out
}

// Tokens returns the tokens of a single sentence.
func (t *Tokenizer) Tokens(sentence string) []string {
	return t.wordRegex.FindAllString(sentence, -1)
}

// NewStream returns a SentenceStream reading from r.
func (t *Tokenizer) NewStream(r io.Reader) *SentenceStream {
	scanner := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > t.maxSentenceBytes {
		initial = t.maxSentenceBytes
	}
	scanner.Buffer(make([]byte, 0, initial), t.maxSentenceBytes)
	scanner.Split(t.splitSentences)
	return &SentenceStream{scanner: scanner, tokenizer: t}
}

// splitSentences is a bufio.SplitFunc yielding the text between sentence
// terminators. A multi-byte terminator cut at a buffer boundary does not match
// until the rest of it has been read.
func (t *Tokenizer) splitSentences(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if loc := t.sentenceRegex.FindIndex(data); loc != nil {
		if loc[1] == 0 {
			// An empty match would never advance the scanner.
			return len(data), data, nil
		}
		return loc[1], data[:loc[0]], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// SentenceStream is a stateful tokenizer over an io.Reader, returning one
// sentence of tokens at a time.
type SentenceStream struct {
	scanner   *bufio.Scanner
	tokenizer *Tokenizer
}

// Next returns the tokens of the next non-empty sentence. When the stream is
// exhausted, it returns nil and io.EOF. Any other error indicates a problem
// reading from the underlying stream.
func (s *SentenceStream) Next() ([]string, error) {
	for s.scanner.Scan() {
		if tokens := s.tokenizer.Tokens(s.scanner.Text()); len(tokens) > 0 {
			return tokens, nil
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
