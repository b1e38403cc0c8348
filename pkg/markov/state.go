package markov

import "strconv"

// Transition is a learned next step out of a State. Next is EndOfSentence when
// the sentence ends after the state's words.
type Transition struct {
	Next        WordID
	Probability float64
}

// State is a context of exactly order consecutive words together with the
// distribution of what followed it in the corpus.
type State struct {
	key   string
	words []WordID
	next  distribution[WordID]
}

// Key returns the state's lookup key: the word IDs in decimal, space separated.
func (s *State) Key() string { return s.key }

// Words returns a copy of the word IDs that make up the state.
func (s *State) Words() []WordID {
	return append([]WordID(nil), s.words...)
}

// Observations returns the number of transitions recorded out of the state.
func (s *State) Observations() int { return s.next.total }

// Transitions returns a copy of the state's transitions in first-seen order.
func (s *State) Transitions() []Transition {
	out := make([]Transition, len(s.next.outcomes))
	for i, o := range s.next.outcomes {
		out[i] = Transition{Next: o.value, Probability: o.prob}
	}
	return out
}

// stateKey builds the key for a window of word IDs, reusing buf.
func stateKey(buf []byte, ids []WordID) ([]byte, string) {
	buf = buf[:0]
	for j, id := range ids {
		if j > 0 {
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(id), 10)
	}
	return buf, string(buf)
}

// stateTable owns every State of a chain. The slice keeps insertion order so a
// uniformly random state can be drawn by index.
type stateTable struct {
	byKey  map[string]*State
	states []*State
	keyBuf []byte
}

func newStateTable() *stateTable {
	return &stateTable{byKey: make(map[string]*State)}
}

// stateFor returns the State for a window of word IDs. With create set, a
// missing state is added with no transitions; otherwise nil is returned.
func (t *stateTable) stateFor(ids []WordID, create bool) *State {
	var key string
	t.keyBuf, key = stateKey(t.keyBuf, ids)
	if s, ok := t.byKey[key]; ok {
		return s
	}
	if !create {
		return nil
	}
	s := &State{key: key, words: append([]WordID(nil), ids...)}
	t.byKey[key] = s
	t.states = append(t.states, s)
	return s
}

// at returns the i-th state in insertion order.
func (t *stateTable) at(i int) *State { return t.states[i] }

func (t *stateTable) size() int { return len(t.states) }
