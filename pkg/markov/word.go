package markov

// WordID is the stable identity of a Word inside a Chain. IDs are assigned in
// order of first observation, starting at zero.
type WordID int

// EndOfSentence is the reserved transition target meaning "the sentence ends here".
// It never identifies a Word.
const EndOfSentence WordID = -1

// Variant is one observed surface form of a Word and its estimated probability.
type Variant struct {
	Form        string
	Probability float64
}

// Word is a canonical token. Every surface form that folds to the same key is
// tracked as a Variant, weighted by how often it was observed.
type Word struct {
	id       WordID
	key      string
	variants distribution[string]
}

// ID returns the word's identity within its chain.
func (w *Word) ID() WordID { return w.id }

// Key returns the canonical key the word was interned under.
func (w *Word) Key() string { return w.key }

// Count returns the number of times the word has been observed.
func (w *Word) Count() int { return w.variants.total }

// Variants returns a copy of the word's surface forms in first-seen order.
func (w *Word) Variants() []Variant {
	out := make([]Variant, len(w.variants.outcomes))
	for i, o := range w.variants.outcomes {
		out[i] = Variant{Form: o.value, Probability: o.prob}
	}
	return out
}

// surface picks a surface form for u drawn uniformly from [0, 1).
func (w *Word) surface(u float64) string {
	form, _ := w.variants.pick(u)
	return form
}

// foldKey lower-cases ASCII letters and leaves every other byte untouched. Bytes
// of multi-byte UTF-8 sequences are all >= 0x80, so CJK text passes through as is.
func foldKey(form string) string {
	for i := 0; i < len(form); i++ {
		if c := form[i]; 'A' <= c && c <= 'Z' {
			b := []byte(form)
			for j := i; j < len(b); j++ {
				if 'A' <= b[j] && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return form
}

// registry owns every Word of a chain. Words are stored in an arena indexed by
// WordID; states refer to them by ID only.
type registry struct {
	words []*Word
	index map[string]WordID
}

func newRegistry() *registry {
	return &registry{index: make(map[string]WordID)}
}

// resolve finds the Word for a surface form. With record set, the observation is
// counted, creating the Word if needed. Without it, a missing Word is reported
// as not found and nothing changes.
func (r *registry) resolve(form string, record bool) (*Word, bool) {
	key := foldKey(form)
	if id, ok := r.index[key]; ok {
		w := r.words[id]
		if record {
			w.variants.observe(form)
		}
		return w, true
	}
	if !record {
		return nil, false
	}
	w := &Word{id: WordID(len(r.words)), key: key}
	w.variants.observe(form)
	r.words = append(r.words, w)
	r.index[key] = w.id
	return w, true
}

// get returns the Word with the given ID, or nil if there is none.
func (r *registry) get(id WordID) *Word {
	if id < 0 || int(id) >= len(r.words) {
		return nil
	}
	return r.words[id]
}

func (r *registry) size() int { return len(r.words) }
